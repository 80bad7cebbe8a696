package omr

import (
	"image"
	"image/color"
	"image/draw"
)

// Synthetic sheet layout: square outline bubbles on white paper.
const (
	bubbleSide   = 30
	bubbleStroke = 3
	bubbleGapX   = 50
	sheetLeft    = 20
)

var rowTops = []int{20, 80, 140}

// testParams is a small layout: four questions of four options in two
// subjects. Only three rows are drawn, so question 4 is never recovered.
func testParams() Params {
	p := DefaultParams()
	p.Questions = 4
	p.QuestionsPerSubject = 2
	p.Subjects = 2
	p.Choices = 4
	return p
}

func newCanvas(width, height int, c color.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return img
}

func fillRect(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func bubbleRect(row, option int) image.Rectangle {
	x := sheetLeft + option*bubbleGapX
	y := rowTops[row]
	return image.Rect(x, y, x+bubbleSide, y+bubbleSide)
}

// drawSheet renders a 300x220 sheet with one row per question. filled maps
// a row to the options inked in it.
func drawSheet(filled map[int][]int) *image.NRGBA {
	img := newCanvas(300, 220, color.White)
	for row := range rowTops {
		for opt := 0; opt < 4; opt++ {
			r := bubbleRect(row, opt)
			s := bubbleStroke
			fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+s), color.Black)
			fillRect(img, image.Rect(r.Min.X, r.Max.Y-s, r.Max.X, r.Max.Y), color.Black)
			fillRect(img, image.Rect(r.Min.X, r.Min.Y, r.Min.X+s, r.Max.Y), color.Black)
			fillRect(img, image.Rect(r.Max.X-s, r.Min.Y, r.Max.X, r.Max.Y), color.Black)
		}
		for _, opt := range filled[row] {
			fillRect(img, bubbleRect(row, opt), color.Black)
		}
	}
	return img
}

// bubbleAt returns a mask-less bubble with the given top-left corner.
func bubbleAt(x, y int) Bubble {
	return Bubble{Bounds: image.Rect(x, y, x+20, y+20)}
}
