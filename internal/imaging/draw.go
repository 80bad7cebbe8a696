package imaging

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Blend returns a copy of base with overlay composited on top at the given
// opacity (0 = base only, 1 = overlay only). Both images are aligned at
// their top-left corners; the result has base's size and starts at (0,0).
func Blend(base, overlay image.Image, opacity float64) *image.NRGBA {
	return imaging.Overlay(imaging.Clone(base), overlay, image.Pt(0, 0), opacity)
}

// DrawRect outlines r on img with the given stroke thickness. The stroke
// grows inward from r's edges; pixels outside img are ignored.
func DrawRect(img draw.Image, r image.Rectangle, c color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	src := image.NewUniform(c)
	clip := img.Bounds()
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+thickness), // top
		image.Rect(r.Min.X, r.Max.Y-thickness, r.Max.X, r.Max.Y), // bottom
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+thickness, r.Max.Y), // left
		image.Rect(r.Max.X-thickness, r.Min.Y, r.Max.X, r.Max.Y), // right
	}
	for _, e := range edges {
		e = e.Intersect(clip)
		if e.Empty() {
			continue
		}
		draw.Draw(img, e, src, image.Point{}, draw.Over)
	}
}

// DrawLabel draws text with its baseline starting at (x, y) using the
// 7x13 bitmap face. Glyphs falling outside img are clipped.
func DrawLabel(img draw.Image, x, y int, text string, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
