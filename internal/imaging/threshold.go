package imaging

import (
	"image"
	"image/draw"

	"github.com/anthonynsimon/bild/effect"
)

// ToGray converts any image to an 8-bit grayscale image with bounds at (0,0),
// using the ITU-R BT.601 luma weights.
func ToGray(img image.Image) *image.Gray {
	return asGray(effect.GrayscaleWithWeights(img, 0.299, 0.587, 0.114))
}

// asGray copies a gray-valued RGBA result from bild into an *image.Gray.
func asGray(img *image.RGBA) *image.Gray {
	b := img.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// MedianGray applies a square median filter of the given radius
// (radius 2 is a 5x5 window) and returns the grayscale result.
func MedianGray(gray *image.Gray, radius float64) *image.Gray {
	if radius <= 0 {
		return gray
	}
	return asGray(effect.Median(gray, radius))
}

// Histogram returns the 256-bin intensity histogram of gray.
func Histogram(gray *image.Gray) [256]int {
	var hist [256]int
	b := gray.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[gray.PixOffset(b.Min.X, y) : gray.PixOffset(b.Min.X, y)+b.Dx()]
		for _, v := range row {
			hist[v]++
		}
	}
	return hist
}

// OtsuThreshold computes Otsu's global threshold for a grayscale image.
//
// The returned value t splits the histogram into the classes [0, t] and
// (t, 255] with maximal between-class variance. A uniform image has no
// between-class variance and returns 0.
//
// See https://en.wikipedia.org/wiki/Otsu%27s_method
func OtsuThreshold(gray *image.Gray) uint8 {
	hist := Histogram(gray)

	total := 0
	sum := 0.0
	for i, n := range hist {
		total += n
		sum += float64(i * n)
	}
	if total == 0 {
		return 0
	}

	var (
		sumB   float64
		weight int
		best   int
		maxVar = -1.0
	)
	for t := 0; t < 256; t++ {
		weight += hist[t]
		if weight == 0 {
			continue
		}
		rest := total - weight
		if rest == 0 {
			break
		}
		sumB += float64(t * hist[t])
		meanB := sumB / float64(weight)
		meanF := (sum - sumB) / float64(rest)
		between := float64(weight) * float64(rest) * (meanB - meanF) * (meanB - meanF)
		if between > maxVar && between > 0 {
			maxVar = between
			best = t
		}
	}
	return uint8(best)
}

// BinarizeInverse thresholds gray with inverted polarity: pixels at or
// below t become foreground (255), brighter pixels become 0. Dark ink on
// white paper therefore ends up white on black.
func BinarizeInverse(gray *image.Gray, t uint8) *image.Gray {
	b := gray.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		src := gray.Pix[gray.PixOffset(b.Min.X, b.Min.Y+y):]
		dst := out.Pix[y*out.Stride:]
		for x := 0; x < b.Dx(); x++ {
			if src[x] <= t {
				dst[x] = 255
			}
		}
	}
	return out
}

// Dilate grows the white regions of a binary image by radius pixels.
func Dilate(bin *image.Gray, radius float64) *image.Gray {
	if radius <= 0 {
		return bin
	}
	return asGray(effect.Dilate(bin, radius))
}

// CountNonZero returns the number of foreground pixels in a binary image.
func CountNonZero(gray *image.Gray) int {
	n := 0
	b := gray.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[gray.PixOffset(b.Min.X, y) : gray.PixOffset(b.Min.X, y)+b.Dx()]
		for _, v := range row {
			if v != 0 {
				n++
			}
		}
	}
	return n
}
