package batch

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/omr-grader/internal/grading"
	"github.com/ironsheep/omr-grader/internal/imaging"
	"github.com/ironsheep/omr-grader/internal/omr"
)

// SheetReport is the JSON record of one graded sheet: the grading report
// plus what the pipeline observed while reading it.
type SheetReport struct {
	File              string  `json:"file"`
	DocumentFound     bool    `json:"document_found"`
	GridFallback      bool    `json:"grid_fallback"`
	BubblesDetected   int     `json:"bubbles_detected"`
	QuestionsDetected int     `json:"questions_detected"`
	FillPixels        [][]int `json:"fill_pixels"`
	*grading.Report
}

// NewSheetReport combines an analysis and its grading report.
func NewSheetReport(file string, a *omr.Analysis, r *grading.Report) *SheetReport {
	fills := make([][]int, len(a.Selections))
	for i, s := range a.Selections {
		fills[i] = s.Fills
	}
	return &SheetReport{
		File:              file,
		DocumentFound:     a.DocumentFound,
		GridFallback:      a.GridFallback,
		BubblesDetected:   len(a.Bubbles),
		QuestionsDetected: a.QuestionsDetected,
		FillPixels:        fills,
		Report:            r,
	}
}

// Result is the outcome of one sheet. Exactly one of Sheet and Err is set.
type Result struct {
	Path     string
	Sheet    *SheetReport
	Analysis *omr.Analysis
	Err      error
}

// LoadFunc decodes the sheet at path.
type LoadFunc func(path string) (image.Image, error)

// Runner grades many sheets against one key on a bounded worker pool.
type Runner struct {
	engine  *omr.Engine
	key     *grading.AnswerKey
	workers int
	load    LoadFunc
	after   func(Result) error
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets the pool size (default 1).
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLoader replaces imaging.Open as the sheet decoder.
func WithLoader(load LoadFunc) Option {
	return func(r *Runner) {
		r.load = load
	}
}

// WithAfter registers a hook run on every successfully graded sheet, for
// example to write artifacts. A hook error fails that sheet only.
func WithAfter(fn func(Result) error) Option {
	return func(r *Runner) {
		r.after = fn
	}
}

// NewRunner creates a runner. The engine and key are shared read-only by
// all workers.
func NewRunner(engine *omr.Engine, key *grading.AnswerKey, opts ...Option) *Runner {
	r := &Runner{
		engine:  engine,
		key:     key,
		workers: 1,
		load:    imaging.Open,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run grades paths and returns one Result per path, in input order.
//
// A sheet that cannot be read or written fails on its own; the rest of the
// batch continues. Cancelling ctx stops sheets that have not started yet
// (their results carry ctx.Err()) and Run then returns ctx.Err() alongside
// the partial results.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))

	var g errgroup.Group
	g.SetLimit(r.workers)
	for i, path := range paths {
		g.Go(func() error {
			results[i] = r.grade(ctx, path)
			return nil
		})
	}
	_ = g.Wait()

	return results, ctx.Err()
}

// Grade runs a single sheet through the pipeline.
func (r *Runner) Grade(ctx context.Context, path string) Result {
	return r.grade(ctx, path)
}

func (r *Runner) grade(ctx context.Context, path string) Result {
	res := Result{Path: path}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	img, err := r.load(path)
	if err != nil {
		res.Err = err
		return res
	}

	analysis, report := r.engine.Grade(img, r.key)
	res.Analysis = analysis
	res.Sheet = NewSheetReport(filepath.Base(path), analysis, report)

	if r.after != nil {
		if err := r.after(res); err != nil {
			res.Err = err
			res.Sheet = nil
		}
	}
	return res
}

// CollectImages lists the decodable images directly inside dir, sorted by
// name. Subdirectories are not searched.
func CollectImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet folder: %w", err)
	}
	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !imaging.IsSupported(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
