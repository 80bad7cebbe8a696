package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrDegenerateTransform is returned when four point pairs do not define a
// perspective transform (e.g. three collinear points).
var ErrDegenerateTransform = errors.New("degenerate perspective transform")

// Point is a sub-pixel 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Distance returns the Euclidean distance between p and q.
func (p Point) Distance(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

// Homography is a 3x3 projective transform in row-major order with H[8] == 1.
type Homography [9]float64

// Apply maps (x, y) through the transform.
func (h Homography) Apply(x, y float64) (float64, float64, bool) {
	denom := h[6]*x + h[7]*y + h[8]
	if math.Abs(denom) < 1e-12 {
		return 0, 0, false
	}
	return (h[0]*x + h[1]*y + h[2]) / denom, (h[3]*x + h[4]*y + h[5]) / denom, true
}

// SolveHomography computes H such that H maps src[i] onto dst[i].
//
// The eight unknowns h00..h21 (h22 fixed at 1) come from the linear system
//
//	x' = (h00 X + h01 Y + h02) / (h20 X + h21 Y + 1)
//	y' = (h10 X + h11 Y + h12) / (h20 X + h21 Y + 1)
//
// written twice per correspondence.
func SolveHomography(src, dst [4]Point) (Homography, error) {
	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		X, Y := src[i].X, src[i].Y
		x, y := dst[i].X, dst[i].Y
		r := 2 * i

		a.Set(r, 0, X)
		a.Set(r, 1, Y)
		a.Set(r, 2, 1)
		a.Set(r, 6, -X*x)
		a.Set(r, 7, -Y*x)
		b.SetVec(r, x)

		a.Set(r+1, 3, X)
		a.Set(r+1, 4, Y)
		a.Set(r+1, 5, 1)
		a.Set(r+1, 6, -X*y)
		a.Set(r+1, 7, -Y*y)
		b.SetVec(r+1, y)
	}

	var h mat.VecDense
	if err := h.SolveVec(a, b); err != nil {
		return Homography{}, fmt.Errorf("%w: %v", ErrDegenerateTransform, err)
	}
	var out Homography
	for i := 0; i < 8; i++ {
		v := h.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Homography{}, ErrDegenerateTransform
		}
		out[i] = v
	}
	out[8] = 1
	return out, nil
}

// WarpPerspective renders a width x height image whose pixel (x, y) is
// sampled from img at inverse(x, y). inverse maps output coordinates back
// into the source, so every output pixel is visited exactly once.
// Samples use bilinear interpolation; points outside the source are black.
func WarpPerspective(img image.Image, inverse Homography, width, height int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, width, height))
	src := toNRGBA(img)
	sb := src.Bounds()

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sx, sy, ok := inverse.Apply(float64(x), float64(y))
			if !ok {
				continue
			}
			sx += float64(sb.Min.X)
			sy += float64(sb.Min.Y)
			px := bilinear(src, sx, sy)
			copy(out.Pix[out.PixOffset(x, y):], px[:])
		}
	}
	return out
}

// bilinear samples src at a sub-pixel position. Coordinates outside the
// image produce opaque black, matching a constant border.
func bilinear(src *image.NRGBA, fx, fy float64) [4]uint8 {
	b := src.Bounds()
	if fx < float64(b.Min.X)-0.5 || fy < float64(b.Min.Y)-0.5 ||
		fx > float64(b.Max.X)-0.5 || fy > float64(b.Max.Y)-0.5 {
		return [4]uint8{0, 0, 0, 255}
	}

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)
	x0c, x1c := clamp(x0, b.Min.X, b.Max.X-1), clamp(x0+1, b.Min.X, b.Max.X-1)
	y0c, y1c := clamp(y0, b.Min.Y, b.Max.Y-1), clamp(y0+1, b.Min.Y, b.Max.Y-1)

	p00 := src.Pix[src.PixOffset(x0c, y0c):]
	p10 := src.Pix[src.PixOffset(x1c, y0c):]
	p01 := src.Pix[src.PixOffset(x0c, y1c):]
	p11 := src.Pix[src.PixOffset(x1c, y1c):]

	var out [4]uint8
	for c := 0; c < 4; c++ {
		top := float64(p00[c])*(1-tx) + float64(p10[c])*tx
		bottom := float64(p01[c])*(1-tx) + float64(p11[c])*tx
		out[c] = uint8(math.Round(top*(1-ty) + bottom*ty))
	}
	return out
}

// toNRGBA returns img as *image.NRGBA, converting only when needed.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}
