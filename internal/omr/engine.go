package omr

import (
	"fmt"
	"image"

	"github.com/ironsheep/omr-grader/internal/grading"
)

// Engine runs the full pipeline for one sheet at a time. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	params    Params
	rectifier Rectifier
	detector  *BubbleDetector
	grouper   *QuestionGrouper
	selector  *AnswerSelector
	renderer  *Renderer
}

// NewEngine validates p and builds every stage from it.
func NewEngine(p Params) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	rectifier, err := NewRectifier(p)
	if err != nil {
		return nil, err
	}
	return &Engine{
		params:    p,
		rectifier: rectifier,
		detector:  NewBubbleDetector(p),
		grouper:   NewQuestionGrouper(p),
		selector:  NewAnswerSelector(p),
		renderer:  NewRenderer(p),
	}, nil
}

// Params returns the configuration the engine was built with.
func (e *Engine) Params() Params {
	return e.params
}

// Rectify runs only the rectification stage.
func (e *Engine) Rectify(img image.Image) (image.Image, bool) {
	return e.rectifier.Rectify(img)
}

// Analysis is everything the pipeline derived from one image.
type Analysis struct {
	// Sheet is the rectified sheet, or the input when DocumentFound is false.
	Sheet image.Image

	// DocumentFound is false when the sheet boundary was not located and
	// the input was processed as-is.
	DocumentFound bool

	// Binary is the inverted threshold mask of Sheet.
	Binary *image.Gray

	// Bubbles holds every candidate bubble.
	Bubbles []Bubble

	// Questions holds the graded questions, at most Params.Questions.
	Questions []Question

	// QuestionsDetected is the number of questions grouping produced
	// before truncation.
	QuestionsDetected int

	// GridFallback reports that strict top-to-bottom chunking replaced row
	// clustering.
	GridFallback bool

	// Selections has exactly Params.Questions entries; questions the grid
	// did not recover read as MarkNone.
	Selections []Selection

	// Canvas is Sheet annotated with the outcome of every bubble.
	Canvas *image.NRGBA
}

// Analyze runs rectification, detection, grouping and selection on img.
// It never fails: every recoverable problem is reported through the
// Analysis flags.
func (e *Engine) Analyze(img image.Image) *Analysis {
	sheet, found := e.rectifier.Rectify(img)
	bin, bubbles := e.detector.Detect(sheet)
	questions, fallback := e.grouper.Group(bubbles)

	detected := len(questions)
	if len(questions) > e.params.Questions {
		questions = questions[:e.params.Questions]
	}

	selections := make([]Selection, e.params.Questions)
	for i := range selections {
		selections[i] = blankSelection(i + 1)
	}
	for _, q := range questions {
		selections[q.Number-1] = e.selector.Select(bin, q)
	}

	return &Analysis{
		Sheet:             sheet,
		DocumentFound:     found,
		Binary:            bin,
		Bubbles:           bubbles,
		Questions:         questions,
		QuestionsDetected: detected,
		GridFallback:      fallback,
		Selections:        selections,
		Canvas:            e.renderer.Render(sheet, bin, questions, selections),
	}
}

// Answers converts the selections into grader input.
func (a *Analysis) Answers() []grading.Answer {
	answers := make([]grading.Answer, len(a.Selections))
	for i, s := range a.Selections {
		answers[i] = grading.Answer{
			Question:  s.Question,
			Selected:  s.Letter(),
			Ambiguous: s.Ambiguous(),
		}
	}
	return answers
}

// GradingConfig returns the subject layout of p.
func (p Params) GradingConfig() grading.Config {
	return grading.Config{
		QuestionsPerSubject: p.QuestionsPerSubject,
		Subjects:            p.Subjects,
	}
}

// Grade analyzes img and scores it against key.
func (e *Engine) Grade(img image.Image, key *grading.AnswerKey) (*Analysis, *grading.Report) {
	analysis := e.Analyze(img)
	return analysis, grading.Grade(e.params.GradingConfig(), analysis.Answers(), key)
}

// String summarizes the analysis for logs.
func (a *Analysis) String() string {
	b := a.Sheet.Bounds()
	return fmt.Sprintf("sheet %dx%d document_found=%t bubbles=%d questions=%d fallback=%t",
		b.Dx(), b.Dy(), a.DocumentFound, len(a.Bubbles), a.QuestionsDetected, a.GridFallback)
}
