package detection

import (
	"math"
	"sort"
)

// ConvexHull returns the convex hull of points using Andrew's monotone
// chain. The hull is returned without repeating the first vertex and with
// collinear points removed. Fewer than three distinct points are returned
// as-is (deduplicated).
func ConvexHull(points []Point) []Point {
	pts := make([]Point, len(points))
	copy(pts, points)
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	// Deduplicate
	uniq := pts[:0]
	for i, p := range pts {
		if i == 0 || p != pts[i-1] {
			uniq = append(uniq, p)
		}
	}
	pts = uniq
	if len(pts) < 3 {
		return pts
	}

	hull := make([]Point, 0, 2*len(pts))
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := len(pts) - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

// PolygonArea returns the absolute area of a simple polygon (shoelace formula).
func PolygonArea(poly []Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	var sum int
	for i := range poly {
		j := (i + 1) % len(poly)
		sum += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return math.Abs(float64(sum)) / 2
}

// Perimeter returns the length of the polyline through poly, including the
// closing edge when closed is true.
func Perimeter(poly []Point, closed bool) float64 {
	if len(poly) < 2 {
		return 0
	}
	var total float64
	for i := 0; i+1 < len(poly); i++ {
		total += dist(poly[i], poly[i+1])
	}
	if closed {
		total += dist(poly[len(poly)-1], poly[0])
	}
	return total
}

// ApproxPolygon simplifies a polyline with the Douglas-Peucker algorithm:
// vertices closer than epsilon to the simplified shape are dropped.
//
// A closed curve is split at two far-apart vertices: a, the vertex farthest
// from the first one, and b, the vertex farthest from a. Both arcs are
// simplified on their own, so the starting vertex is not kept unless it is a
// real corner. The result starts at a and never repeats a vertex.
func ApproxPolygon(poly []Point, epsilon float64, closed bool) []Point {
	if len(poly) < 3 {
		out := make([]Point, len(poly))
		copy(out, poly)
		return out
	}
	if !closed {
		return douglasPeucker(poly, epsilon)
	}

	a := farthestFrom(poly, poly[0])
	rot := make([]Point, 0, len(poly)+1)
	rot = append(rot, poly[a:]...)
	rot = append(rot, poly[:a]...)
	b := farthestFrom(rot, rot[0])
	if b == 0 {
		return []Point{rot[0]}
	}

	first := douglasPeucker(rot[:b+1], epsilon)
	rest := douglasPeucker(append(rot[b:], rot[0]), epsilon)

	out := make([]Point, 0, len(first)+len(rest))
	out = append(out, first...)
	// rest runs from rot[b] (already in first) back to rot[0].
	out = append(out, rest[1:len(rest)-1]...)
	return out
}

// farthestFrom returns the index of the first point of pts farthest from p.
func farthestFrom(pts []Point, p Point) int {
	far, farDist := 0, -1.0
	for i, q := range pts {
		if d := dist(p, q); d > farDist {
			far, farDist = i, d
		}
	}
	return far
}

func douglasPeucker(pts []Point, epsilon float64) []Point {
	if len(pts) < 3 {
		out := make([]Point, len(pts))
		copy(out, pts)
		return out
	}
	a, b := pts[0], pts[len(pts)-1]
	idx, maxD := 0, -1.0
	for i := 1; i < len(pts)-1; i++ {
		if d := segmentDistance(pts[i], a, b); d > maxD {
			idx, maxD = i, d
		}
	}
	if maxD <= epsilon {
		return []Point{a, b}
	}
	left := douglasPeucker(pts[:idx+1], epsilon)
	right := douglasPeucker(pts[idx:], epsilon)
	return append(left[:len(left)-1], right...)
}

// segmentDistance is the distance from p to segment ab.
func segmentDistance(p, a, b Point) float64 {
	dx, dy := float64(b.X-a.X), float64(b.Y-a.Y)
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return dist(p, a)
	}
	t := (float64(p.X-a.X)*dx + float64(p.Y-a.Y)*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(float64(a.X)+t*dx-float64(p.X), float64(a.Y)+t*dy-float64(p.Y))
}

func cross(o, a, b Point) int {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func dist(a, b Point) float64 {
	return math.Hypot(float64(a.X-b.X), float64(a.Y-b.Y))
}
