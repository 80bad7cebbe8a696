package imaging

import (
	"image"

	"github.com/disintegration/imaging"
)

// GaussianSigma5 is the sigma of a 5x5 Gaussian kernel when none is given
// explicitly: 0.3*((5-1)*0.5-1) + 0.8.
const GaussianSigma5 = 1.1

// Downscale shrinks img so that its longest side is at most maxDim pixels.
//
// The second return value is the factor that maps coordinates in the
// returned image back onto img (1 when no resize happened). maxDim <= 0
// disables resizing.
func Downscale(img image.Image, maxDim int) (image.Image, float64) {
	b := img.Bounds()
	longest := b.Dx()
	if b.Dy() > longest {
		longest = b.Dy()
	}
	if maxDim <= 0 || longest <= maxDim {
		return img, 1
	}

	scale := float64(longest) / float64(maxDim)
	w := int(float64(b.Dx())/scale + 0.5)
	h := int(float64(b.Dy())/scale + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	out := imaging.Resize(img, w, h, imaging.Linear)
	return out, float64(b.Dx()) / float64(w)
}

// SmoothGray converts img to grayscale and applies a Gaussian blur.
// sigma <= 0 skips the blur.
func SmoothGray(img image.Image, sigma float64) *image.Gray {
	gray := imaging.Grayscale(img)
	if sigma > 0 {
		gray = imaging.Blur(gray, sigma)
	}
	return ToGray(gray)
}
