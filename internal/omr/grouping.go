package omr

import (
	"sort"
)

// QuestionGrouper turns a bag of bubbles into numbered questions.
//
// Rows are formed by walking the bubbles top-to-bottom: a bubble joins the
// current row while its top edge is within RowYTolerance of the row's first
// bubble, otherwise it starts a new row. Each row is read left-to-right and
// cut into questions of Choices bubbles; a short remainder is noise.
//
// When rows do not produce exactly Questions questions the grouper retries
// by cutting the whole top-to-bottom list every Choices bubbles, and keeps
// that reading only if it lands on the expected count.
type QuestionGrouper struct {
	params Params
}

// NewQuestionGrouper creates a grouper for p.Choices options per question
// and p.Questions expected questions.
func NewQuestionGrouper(p Params) *QuestionGrouper {
	return &QuestionGrouper{params: p}
}

// Group returns the questions numbered from 1 and reports whether the
// fallback chunking produced them. The result may hold more or fewer than
// the expected count; callers pad or truncate.
func (g *QuestionGrouper) Group(bubbles []Bubble) ([]Question, bool) {
	sorted := sortTopToBottom(bubbles)

	questions := make([]Question, 0, g.params.Questions)
	for _, row := range g.Rows(sorted) {
		questions = append(questions, g.chunk(sortLeftToRight(row))...)
	}
	if len(questions) == g.params.Questions {
		return number(questions), false
	}

	fallback := g.chunk(sorted)
	if len(fallback) == g.params.Questions {
		for i := range fallback {
			fallback[i].Bubbles = sortLeftToRight(fallback[i].Bubbles)
		}
		return number(fallback), true
	}
	return number(questions), false
}

// Rows clusters bubbles, already sorted top-to-bottom, into rows.
func (g *QuestionGrouper) Rows(sorted []Bubble) [][]Bubble {
	rows := make([][]Bubble, 0)
	var current []Bubble
	refY := 0
	for _, b := range sorted {
		y := b.Bounds.Min.Y
		if len(current) > 0 && abs(y-refY) <= g.params.RowYTolerance {
			current = append(current, b)
			continue
		}
		if len(current) > 0 {
			rows = append(rows, current)
		}
		current = []Bubble{b}
		refY = y
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}
	return rows
}

// chunk cuts bubbles into consecutive questions of Choices bubbles and
// drops a trailing partial group.
func (g *QuestionGrouper) chunk(bubbles []Bubble) []Question {
	n := g.params.Choices
	out := make([]Question, 0, len(bubbles)/n)
	for i := 0; i+n <= len(bubbles); i += n {
		group := make([]Bubble, n)
		copy(group, bubbles[i:i+n])
		out = append(out, Question{Bubbles: group})
	}
	return out
}

func number(questions []Question) []Question {
	for i := range questions {
		questions[i].Number = i + 1
	}
	return questions
}

// sortTopToBottom returns a copy of bubbles ordered by top edge, then by
// left edge.
func sortTopToBottom(bubbles []Bubble) []Bubble {
	out := make([]Bubble, len(bubbles))
	copy(out, bubbles)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Bounds.Min, out[j].Bounds.Min
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return out
}

func sortLeftToRight(bubbles []Bubble) []Bubble {
	out := make([]Bubble, len(bubbles))
	copy(out, bubbles)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Bounds.Min.X < out[j].Bounds.Min.X
	})
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
