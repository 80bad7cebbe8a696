package detection

import (
	"image"
	"sort"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Component is an 8-connected group of foreground pixels.
type Component struct {
	// Bounds is the bounding box of the pixels; Max is exclusive, so
	// Bounds.Dx() is the pixel width.
	Bounds image.Rectangle

	// Points holds every member pixel in discovery order.
	Points []Point
}

// Contour is an external contour of a binary mask together with the
// region it encloses.
type Contour struct {
	// Bounds is the bounding box of the contour (Max exclusive).
	Bounds image.Rectangle

	// Mask covers Bounds and is 255 wherever the filled contour lies:
	// the component's own pixels plus every hole it encloses.
	Mask *image.Alpha

	// Pixels is the number of foreground pixels in the component itself.
	Pixels int
}

// FindComponents groups the foreground pixels of a binary image into
// 8-connected components.
//
// Components with fewer than minPixels pixels are discarded as noise.
// Components are returned in raster order of their first pixel. Point
// coordinates are relative to bin's bounds.
func FindComponents(bin *image.Gray, minPixels int) []Component {
	_, comps := label(bin, true)

	out := make([]Component, 0, len(comps))
	for _, c := range comps {
		if len(c.points) < minPixels {
			continue
		}
		out = append(out, Component{Bounds: c.bounds, Points: c.points})
	}
	return out
}

// FindExternalContours returns the outermost contours of a binary image.
//
// A component nested inside a hole of another component is not external and
// is absorbed into its container's filled region, so its pixels count toward
// the container's fill. keep decides, from the bounding box alone, which
// external contours are returned; nil keeps all of them. Every component
// still takes part in nesting decisions whether kept or not.
//
// Results are sorted top-to-bottom, then left-to-right by bounding box.
func FindExternalContours(bin *image.Gray, keep func(image.Rectangle) bool) []Contour {
	labels, comps := label(bin, false)
	b := bin.Bounds()
	width, height := b.Dx(), b.Dy()

	// Containers always have a strictly larger bounding box than anything
	// nested inside them, so visiting by decreasing box area settles every
	// container before its contents.
	order := make([]int, len(comps))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return area(comps[order[i]].bounds) > area(comps[order[j]].bounds)
	})

	owner := make([]int32, len(labels))
	contours := make([]Contour, 0)
	for _, idx := range order {
		c := comps[idx]
		id := int32(idx + 1)
		if owner[c.first] != 0 {
			continue
		}

		mask := fillEnclosed(labels, width, height, c.bounds, id)
		mb := mask.Bounds()
		for y := mb.Min.Y; y < mb.Max.Y; y++ {
			for x := mb.Min.X; x < mb.Max.X; x++ {
				if mask.Pix[mask.PixOffset(x, y)] != 0 {
					owner[y*width+x] = id
				}
			}
		}

		if keep != nil && !keep(c.bounds) {
			continue
		}
		contours = append(contours, Contour{Bounds: c.bounds, Mask: mask, Pixels: c.count})
	}

	sort.SliceStable(contours, func(i, j int) bool {
		a, b := contours[i].Bounds.Min, contours[j].Bounds.Min
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return contours
}

type component struct {
	first  int
	bounds image.Rectangle
	count  int
	points []Point
}

// label assigns every foreground pixel of bin the 1-based index of its
// 8-connected component. Coordinates are relative to bin's bounds.
//
// Uses a stack-based flood fill (not recursive) to avoid stack overflow
// on large regions.
func label(bin *image.Gray, collect bool) ([]int32, []component) {
	b := bin.Bounds()
	width, height := b.Dx(), b.Dy()
	labels := make([]int32, width*height)
	comps := make([]component, 0)
	stack := make([]int, 0, 256)

	fg := func(x, y int) bool {
		return bin.Pix[bin.PixOffset(b.Min.X+x, b.Min.Y+y)] != 0
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			start := y*width + x
			if labels[start] != 0 || !fg(x, y) {
				continue
			}

			id := int32(len(comps) + 1)
			c := component{first: start, bounds: image.Rect(x, y, x+1, y+1)}
			labels[start] = id
			stack = append(stack[:0], start)

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				px, py := p%width, p/width

				c.count++
				if collect {
					c.points = append(c.points, Point{X: px, Y: py})
				}
				c.bounds = c.bounds.Union(image.Rect(px, py, px+1, py+1))

				// 8-connected neighbors
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := px+dx, py+dy
						if nx < 0 || ny < 0 || nx >= width || ny >= height {
							continue
						}
						n := ny*width + nx
						if labels[n] == 0 && fg(nx, ny) {
							labels[n] = id
							stack = append(stack, n)
						}
					}
				}
			}
			comps = append(comps, c)
		}
	}
	return labels, comps
}

// fillEnclosed returns the filled region of component id: its own pixels
// plus every cell of its bounding box that background flooding from
// outside the box cannot reach. Background flooding is 4-connected, so
// diagonal gaps in an 8-connected outline do not leak.
func fillEnclosed(labels []int32, width, height int, bounds image.Rectangle, id int32) *image.Alpha {
	// Padded box one cell larger on each side so the flood can enter
	// from every direction.
	px0, py0 := bounds.Min.X-1, bounds.Min.Y-1
	pw, ph := bounds.Dx()+2, bounds.Dy()+2
	outside := make([]bool, pw*ph)

	wall := func(x, y int) bool {
		if x < 0 || y < 0 || x >= width || y >= height {
			return false
		}
		return labels[y*width+x] == id
	}

	stack := make([]int, 0, 2*(pw+ph))
	push := func(i int) {
		if outside[i] {
			return
		}
		if wall(px0+i%pw, py0+i/pw) {
			return
		}
		outside[i] = true
		stack = append(stack, i)
	}
	for x := 0; x < pw; x++ {
		push(x)
		push((ph-1)*pw + x)
	}
	for y := 0; y < ph; y++ {
		push(y * pw)
		push(y*pw + pw - 1)
	}
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%pw, i/pw
		if x > 0 {
			push(i - 1)
		}
		if x < pw-1 {
			push(i + 1)
		}
		if y > 0 {
			push(i - pw)
		}
		if y < ph-1 {
			push(i + pw)
		}
	}

	mask := image.NewAlpha(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if !outside[(y-py0)*pw+(x-px0)] {
				mask.Pix[mask.PixOffset(x, y)] = 255
			}
		}
	}
	return mask
}

func area(r image.Rectangle) int {
	return r.Dx() * r.Dy()
}
