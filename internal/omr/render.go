package omr

import (
	"image"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/omr-grader/internal/imaging"
)

// Outline colors of the annotated canvas.
var (
	ColorSelected = mustHex("#00c800") // confidently selected option
	ColorRejected = mustHex("#ffb400") // inked, but the question was not answered
	ColorUnmarked = mustHex("#b4b4b4")
)

// thresholdOpacity is the weight of the binary mask blended under the
// annotations.
const thresholdOpacity = 0.2

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Renderer draws the annotated canvas. It only reads selections; nothing
// it does feeds back into grading.
type Renderer struct {
	params Params
}

// NewRenderer creates a renderer using p.MinFillPixels to decide which
// rejected bubbles to highlight.
func NewRenderer(p Params) *Renderer {
	return &Renderer{params: p}
}

// Render returns a copy of sheet with the binary mask faintly blended in and
// every bubble of questions outlined and lettered. selections are indexed by
// question number minus one.
func (r *Renderer) Render(sheet image.Image, bin *image.Gray, questions []Question, selections []Selection) *image.NRGBA {
	canvas := imaging.Blend(sheet, bin, thresholdOpacity)

	for _, q := range questions {
		if q.Number < 1 || q.Number > len(selections) {
			continue
		}
		sel := selections[q.Number-1]
		for i, b := range q.Bubbles {
			fill := 0
			if i < len(sel.Fills) {
				fill = sel.Fills[i]
			}
			c, thickness := r.style(sel, i, fill)

			// Outline includes the far edge pixel, like a closed rectangle.
			box := image.Rect(b.Bounds.Min.X, b.Bounds.Min.Y, b.Bounds.Max.X+1, b.Bounds.Max.Y+1)
			imaging.DrawRect(canvas, box, c, thickness)
			imaging.DrawLabel(canvas, b.Bounds.Min.X+3, b.Bounds.Max.Y+14, OptionLetter(i), c)
		}
	}
	return canvas
}

func (r *Renderer) style(sel Selection, option, fill int) (color.Color, int) {
	switch {
	case sel.Selected() && sel.Option == option:
		return ColorSelected, 2
	case !sel.Selected() && fill >= r.params.MinFillPixels:
		if fill > r.params.MinFillPixels {
			return ColorRejected, 2
		}
		return ColorRejected, 1
	default:
		return ColorUnmarked, 1
	}
}
