//go:build gocv

package omr

import (
	"image"
	"math"
	"sort"

	"gocv.io/x/gocv"

	"github.com/ironsheep/omr-grader/internal/imaging"
)

// Built with -tags gocv, the "opencv" backend runs the boundary search and
// warp through OpenCV. It needs the OpenCV 4 shared libraries at runtime.
func init() {
	rectifierBackends[BackendOpenCV] = func(p Params) Rectifier { return NewOpenCVRectifier(p) }
}

// OpenCVRectifier finds the sheet with OpenCV contours instead of the
// pure-Go component search.
type OpenCVRectifier struct {
	params Params
}

// NewOpenCVRectifier creates an OpenCV-backed rectifier.
func NewOpenCVRectifier(p Params) *OpenCVRectifier {
	return &OpenCVRectifier{params: p}
}

// FindDocument returns the ordered sheet corners in img's coordinates.
func (r *OpenCVRectifier) FindDocument(img gocv.Mat) (Quad, bool) {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(gray, &blurred, image.Point{5, 5}, 0, 0, gocv.BorderDefault)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(blurred, &edges, float32(r.params.CannyLow), float32(r.params.CannyHigh))

	contours := gocv.FindContours(edges, gocv.RetrievalList, gocv.ChainApproxSimple)
	defer contours.Close()

	type candidate struct {
		index int
		area  float64
	}
	minArea := r.params.DocumentMinAreaRatio * float64(img.Cols()*img.Rows())
	candidates := make([]candidate, 0, contours.Size())
	for i := 0; i < contours.Size(); i++ {
		area := gocv.ContourArea(contours.At(i))
		if area <= 0 || area < minArea {
			continue
		}
		candidates = append(candidates, candidate{index: i, area: area})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].area > candidates[j].area
	})
	if len(candidates) > r.params.DocumentCandidates {
		candidates = candidates[:r.params.DocumentCandidates]
	}

	for _, c := range candidates {
		contour := contours.At(c.index)
		epsilon := 0.02 * gocv.ArcLength(contour, true)
		approx := gocv.ApproxPolyDP(contour, epsilon, true)
		if approx.Size() != 4 {
			approx.Close()
			continue
		}
		var pts [4]imaging.Point
		for i, p := range approx.ToPoints() {
			pts[i] = imaging.Point{X: float64(p.X), Y: float64(p.Y)}
		}
		approx.Close()
		return OrderPoints(pts), true
	}
	return Quad{}, false
}

// Rectify implements Rectifier.
func (r *OpenCVRectifier) Rectify(img image.Image) (image.Image, bool) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return img, false
	}
	defer mat.Close()

	quad, ok := r.FindDocument(mat)
	if !ok {
		return img, false
	}
	w, h := quad.Size()
	if w < 2 || h < 2 {
		return img, false
	}

	srcPts := make([]image.Point, 4)
	for i, p := range quad {
		srcPts[i] = image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
	}
	src := gocv.NewPointVectorFromPoints(srcPts)
	defer src.Close()
	dst := gocv.NewPointVectorFromPoints([]image.Point{
		{0, 0}, {w - 1, 0}, {w - 1, h - 1}, {0, h - 1},
	})
	defer dst.Close()

	m := gocv.GetPerspectiveTransform(src, dst)
	defer m.Close()
	warped := gocv.NewMat()
	defer warped.Close()
	gocv.WarpPerspective(mat, &warped, m, image.Pt(w, h))

	out, err := warped.ToImage()
	if err != nil {
		return img, false
	}
	return out, true
}
