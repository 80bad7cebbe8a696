package omr

import (
	"image"
)

// fillEpsilon keeps the ambiguity ratio finite when the best fill is zero.
const fillEpsilon = 1e-6

// AnswerSelector reads one question from the binary mask.
//
// A question is marked only when its fullest bubble holds at least
// MinFillPixels ink pixels; it is ambiguous when the runner-up reaches more
// than AmbiguityRatio of that count.
type AnswerSelector struct {
	params Params
}

// NewAnswerSelector creates a selector with p's fill thresholds.
func NewAnswerSelector(p Params) *AnswerSelector {
	return &AnswerSelector{params: p}
}

// Select measures every bubble of q in bin and decides the answer.
func (s *AnswerSelector) Select(bin *image.Gray, q Question) Selection {
	fills := make([]int, len(q.Bubbles))
	for i, b := range q.Bubbles {
		fills[i] = FillCount(bin, b)
	}
	mark, option := s.Decide(fills)
	return Selection{Question: q.Number, Mark: mark, Option: option, Fills: fills}
}

// Decide applies the fill policy to per-option fill counts and returns the
// mark and, for MarkSelected, the chosen option (else -1). The first
// maximum wins ties, and a tie at or above the minimum fill is ambiguous.
func (s *AnswerSelector) Decide(fills []int) (Mark, int) {
	if len(fills) == 0 {
		return MarkNone, -1
	}
	best := 0
	for i, f := range fills {
		if f > fills[best] {
			best = i
		}
	}
	second := 0
	for i, f := range fills {
		if i != best && f > second {
			second = f
		}
	}

	if fills[best] < s.params.MinFillPixels {
		return MarkNone, -1
	}
	if float64(second)/(float64(fills[best])+fillEpsilon) > s.params.AmbiguityRatio {
		return MarkAmbiguous, -1
	}
	return MarkSelected, best
}

// FillCount returns the number of foreground pixels of bin that fall inside
// the bubble's filled outline. Mask coordinates are relative to bin's
// bounds.
func FillCount(bin *image.Gray, b Bubble) int {
	if b.Mask == nil {
		return 0
	}
	origin := bin.Bounds().Min
	area := b.Mask.Bounds().Intersect(image.Rect(0, 0, bin.Bounds().Dx(), bin.Bounds().Dy()))
	n := 0
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if b.Mask.Pix[b.Mask.PixOffset(x, y)] == 0 {
				continue
			}
			if bin.Pix[bin.PixOffset(origin.X+x, origin.Y+y)] != 0 {
				n++
			}
		}
	}
	return n
}
