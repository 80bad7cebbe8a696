package omr

import (
	"image"

	"github.com/ironsheep/omr-grader/internal/imaging"
)

// Quad is a document boundary ordered top-left, top-right, bottom-right,
// bottom-left.
type Quad [4]imaging.Point

// Bubble is a candidate mark region found in the binary mask.
type Bubble struct {
	// Bounds is the bounding box; Bounds.Dx() and Bounds.Dy() are the
	// pixel width and height.
	Bounds image.Rectangle `json:"bounds"`

	// Mask covers Bounds and is non-zero exactly where the bubble's filled
	// outline lies.
	Mask *image.Alpha `json:"-"`
}

// Question is one multiple-choice item: its bubbles in option order (A, B, ...).
type Question struct {
	Number  int      `json:"question"`
	Bubbles []Bubble `json:"bubbles"`
}

// Mark is the outcome of reading one question.
type Mark int

const (
	// MarkNone means no option reached the minimum fill.
	MarkNone Mark = iota
	// MarkSelected means exactly one option was confidently filled.
	MarkSelected
	// MarkAmbiguous means the two fullest options were too close to call.
	MarkAmbiguous
)

func (m Mark) String() string {
	switch m {
	case MarkSelected:
		return "selected"
	case MarkAmbiguous:
		return "ambiguous"
	default:
		return "none"
	}
}

// MarshalText encodes the mark by name.
func (m Mark) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Selection is the reading of one question.
type Selection struct {
	Question int `json:"question"`

	Mark Mark `json:"mark"`

	// Option is the 0-based selected option; meaningful only when Mark is
	// MarkSelected, -1 otherwise.
	Option int `json:"option"`

	// Fills holds the fill count of every option in order. Empty for
	// questions the grid did not recover.
	Fills []int `json:"fill_pixels"`
}

// Selected reports whether an option was confidently chosen.
func (s Selection) Selected() bool {
	return s.Mark == MarkSelected && s.Option >= 0
}

// Ambiguous reports whether the question was rejected as a double mark.
func (s Selection) Ambiguous() bool {
	return s.Mark == MarkAmbiguous
}

// Letter returns the selected option letter, or "" when nothing was selected.
func (s Selection) Letter() string {
	if !s.Selected() {
		return ""
	}
	return OptionLetter(s.Option)
}

// OptionLetter maps a 0-based option index to its letter (0 -> "A").
func OptionLetter(i int) string {
	if i < 0 || i >= 26 {
		return ""
	}
	return string(rune('A' + i))
}

// blankSelection is the reading of a question the grid did not recover.
func blankSelection(number int) Selection {
	return Selection{Question: number, Mark: MarkNone, Option: -1, Fills: []int{}}
}
