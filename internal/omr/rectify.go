package omr

import (
	"fmt"
	"image"
	"sort"

	"github.com/ironsheep/omr-grader/internal/detection"
	"github.com/ironsheep/omr-grader/internal/imaging"
)

// Rectifier backend names accepted in Params.Backend.
const (
	BackendNative = "native"
	BackendOpenCV = "opencv"
)

// Rectifier locates the sheet in a photo and returns a fronto-parallel view
// of it.
type Rectifier interface {
	// Rectify returns the warped sheet and true, or img itself and false
	// when no sheet boundary was found. It never fails: an unrectified
	// photo is still processed downstream.
	Rectify(img image.Image) (image.Image, bool)
}

type rectifierFactory func(Params) Rectifier

// rectifierBackends is extended by build-tagged files at init time.
var rectifierBackends = map[string]rectifierFactory{
	BackendNative: func(p Params) Rectifier { return NewDocumentRectifier(p) },
}

// Backends lists the rectifier backends compiled into this binary.
func Backends() []string {
	names := make([]string, 0, len(rectifierBackends))
	for name := range rectifierBackends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewRectifier returns the rectifier selected by p.Backend.
func NewRectifier(p Params) (Rectifier, error) {
	factory, ok := rectifierBackends[p.Backend]
	if !ok {
		return nil, fmt.Errorf("%w: unknown rectifier backend %q (available: %v)", ErrInvalidParams, p.Backend, Backends())
	}
	return factory(p), nil
}

// DocumentRectifier is the pure-Go rectifier.
//
// The boundary search runs on a grayscale, blurred copy of the photo capped
// at Params.DetectMaxDimension. Canny edges are dilated by one pixel so that
// a sheet outline broken by noise stays connected, each edge component is
// reduced to its convex hull, and the largest hulls are simplified with
// Douglas-Peucker at 2% of their perimeter. The first one that collapses to
// exactly four vertices is the sheet.
type DocumentRectifier struct {
	params Params
}

// NewDocumentRectifier creates a rectifier using p's boundary-search settings.
func NewDocumentRectifier(p Params) *DocumentRectifier {
	return &DocumentRectifier{params: p}
}

type boundaryCandidate struct {
	hull []detection.Point
	area float64
}

// FindDocument searches img for the sheet boundary. Corners are returned in
// img's coordinates relative to its bounds' top-left, ordered by OrderPoints.
func (r *DocumentRectifier) FindDocument(img image.Image) (Quad, bool) {
	work, scale := imaging.Downscale(img, r.params.DetectMaxDimension)
	gray := imaging.SmoothGray(work, imaging.GaussianSigma5)
	edges := imaging.Dilate(imaging.Canny(gray, r.params.CannyLow, r.params.CannyHigh), 1)

	gb := gray.Bounds()
	minArea := r.params.DocumentMinAreaRatio * float64(gb.Dx()*gb.Dy())

	candidates := make([]boundaryCandidate, 0)
	for _, comp := range detection.FindComponents(edges, 3) {
		hull := detection.ConvexHull(comp.Points)
		a := detection.PolygonArea(hull)
		if a <= 0 || a < minArea {
			continue
		}
		candidates = append(candidates, boundaryCandidate{hull: hull, area: a})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].area > candidates[j].area
	})
	if len(candidates) > r.params.DocumentCandidates {
		candidates = candidates[:r.params.DocumentCandidates]
	}

	for _, c := range candidates {
		peri := detection.Perimeter(c.hull, true)
		approx := detection.ApproxPolygon(c.hull, 0.02*peri, true)
		if len(approx) != 4 || detection.PolygonArea(approx) <= 0 {
			continue
		}
		var pts [4]imaging.Point
		for i, p := range approx {
			pts[i] = imaging.Point{X: float64(p.X) * scale, Y: float64(p.Y) * scale}
		}
		return OrderPoints(pts), true
	}
	return Quad{}, false
}

// Rectify implements Rectifier.
func (r *DocumentRectifier) Rectify(img image.Image) (image.Image, bool) {
	quad, ok := r.FindDocument(img)
	if !ok {
		return img, false
	}
	warped, err := WarpQuad(img, quad)
	if err != nil {
		return img, false
	}
	return warped, true
}

// OrderPoints orders four corners as top-left, top-right, bottom-right,
// bottom-left. Top-left has the smallest x+y and bottom-right the largest;
// top-right has the smallest y-x and bottom-left the largest.
func OrderPoints(pts [4]imaging.Point) Quad {
	var q Quad
	minSum, maxSum, minDiff, maxDiff := 0, 0, 0, 0
	for i, p := range pts {
		if p.X+p.Y < pts[minSum].X+pts[minSum].Y {
			minSum = i
		}
		if p.X+p.Y > pts[maxSum].X+pts[maxSum].Y {
			maxSum = i
		}
		if p.Y-p.X < pts[minDiff].Y-pts[minDiff].X {
			minDiff = i
		}
		if p.Y-p.X > pts[maxDiff].Y-pts[maxDiff].X {
			maxDiff = i
		}
	}
	q[0] = pts[minSum]
	q[1] = pts[minDiff]
	q[2] = pts[maxSum]
	q[3] = pts[maxDiff]
	return q
}

// Size returns the rectified output size: the longer of each pair of
// opposite edges, truncated to whole pixels.
func (q Quad) Size() (width, height int) {
	tl, tr, br, bl := q[0], q[1], q[2], q[3]
	width = max(int(br.Distance(bl)), int(tr.Distance(tl)))
	height = max(int(tr.Distance(br)), int(tl.Distance(bl)))
	return width, height
}

// WarpQuad maps the quadrilateral q of img onto an axis-aligned image of
// q.Size(), sending the corners to (0,0), (W-1,0), (W-1,H-1) and (0,H-1).
func WarpQuad(img image.Image, q Quad) (*image.NRGBA, error) {
	w, h := q.Size()
	if w < 2 || h < 2 {
		return nil, fmt.Errorf("%w: output size %dx%d", imaging.ErrDegenerateTransform, w, h)
	}
	dst := [4]imaging.Point{
		{X: 0, Y: 0},
		{X: float64(w - 1), Y: 0},
		{X: float64(w - 1), Y: float64(h - 1)},
		{X: 0, Y: float64(h - 1)},
	}
	// Solve output -> source so every output pixel is sampled once.
	inverse, err := imaging.SolveHomography(dst, [4]imaging.Point(q))
	if err != nil {
		return nil, err
	}
	return imaging.WarpPerspective(img, inverse, w, h), nil
}
