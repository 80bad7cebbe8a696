package omr

import (
	"image"

	"github.com/ironsheep/omr-grader/internal/detection"
	"github.com/ironsheep/omr-grader/internal/imaging"
)

// BubbleDetector binarizes a rectified sheet and extracts bubble-shaped
// outer contours from it.
type BubbleDetector struct {
	params Params
}

// NewBubbleDetector creates a detector using p's size and aspect bounds.
func NewBubbleDetector(p Params) *BubbleDetector {
	return &BubbleDetector{params: p}
}

// Binarize returns the inverted Otsu mask of img: ink is 255, paper is 0.
// A median filter removes salt-and-pepper noise first.
func (d *BubbleDetector) Binarize(img image.Image) *image.Gray {
	gray := imaging.ToGray(img)
	gray = imaging.MedianGray(gray, float64(d.params.MedianKernel-1)/2)
	return imaging.BinarizeInverse(gray, imaging.OtsuThreshold(gray))
}

// Detect binarizes img and returns the mask together with its bubbles.
func (d *BubbleDetector) Detect(img image.Image) (*image.Gray, []Bubble) {
	bin := d.Binarize(img)
	return bin, d.Find(bin)
}

// Find returns every external contour of bin whose bounding box passes the
// size and aspect filters, ordered top-to-bottom then left-to-right.
// Shapes nested inside a bubble (the pencil mark) belong to the bubble.
func (d *BubbleDetector) Find(bin *image.Gray) []Bubble {
	contours := detection.FindExternalContours(bin, d.accept)
	bubbles := make([]Bubble, len(contours))
	for i, c := range contours {
		bubbles[i] = Bubble{Bounds: c.Bounds, Mask: c.Mask}
	}
	return bubbles
}

func (d *BubbleDetector) accept(r image.Rectangle) bool {
	w, h := r.Dx(), r.Dy()
	if w < d.params.BubbleMinSize || h < d.params.BubbleMinSize {
		return false
	}
	if w > d.params.BubbleMaxSize || h > d.params.BubbleMaxSize {
		return false
	}
	aspect := float64(w) / float64(h)
	return aspect >= d.params.BubbleMinAspect && aspect <= d.params.BubbleMaxAspect
}
