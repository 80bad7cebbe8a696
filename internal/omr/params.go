package omr

import (
	"errors"
	"fmt"
)

// ErrInvalidParams is returned by Params.Validate and NewEngine when the
// pipeline configuration cannot be used.
var ErrInvalidParams = errors.New("invalid omr parameters")

// Params holds every tuning value of the grading pipeline.
//
// A Params value is read once when the pipeline is constructed and is never
// mutated afterwards. The defaults were tuned for one physical sheet layout
// (100 questions, 5 subjects of 20, four options); treat them as starting
// points rather than constants that carry over to other layouts.
type Params struct {
	// Questions is the number of questions on the sheet (N).
	Questions int `yaml:"questions" json:"questions"`

	// QuestionsPerSubject is the size of each contiguous subject block.
	QuestionsPerSubject int `yaml:"questions_per_subject" json:"questions_per_subject"`

	// Subjects is the number of subject blocks scored separately.
	Subjects int `yaml:"subjects" json:"subjects"`

	// Choices is the number of options per question (A, B, C, ...).
	Choices int `yaml:"choices" json:"choices"`

	// BubbleMinSize and BubbleMaxSize bound a bubble's width and height in pixels.
	BubbleMinSize int `yaml:"bubble_min_size" json:"bubble_min_size"`
	BubbleMaxSize int `yaml:"bubble_max_size" json:"bubble_max_size"`

	// BubbleMinAspect and BubbleMaxAspect bound width/height of a bubble.
	BubbleMinAspect float64 `yaml:"bubble_min_aspect" json:"bubble_min_aspect"`
	BubbleMaxAspect float64 `yaml:"bubble_max_aspect" json:"bubble_max_aspect"`

	// MedianKernel is the side of the square median filter applied before
	// thresholding (odd, 1 disables).
	MedianKernel int `yaml:"median_kernel" json:"median_kernel"`

	// RowYTolerance is the maximum vertical offset, in pixels, between a
	// bubble and the first bubble of its row.
	RowYTolerance int `yaml:"row_y_tolerance" json:"row_y_tolerance"`

	// AmbiguityRatio is the second-best/best fill ratio above which a
	// question is reported as ambiguous.
	AmbiguityRatio float64 `yaml:"ambiguity_ratio" json:"ambiguity_ratio"`

	// MinFillPixels is the fill count the best option must reach to count
	// as marked at all.
	MinFillPixels int `yaml:"min_fill_pixels" json:"min_fill_pixels"`

	// DocumentCandidates is how many of the largest contours are tried as
	// the sheet boundary.
	DocumentCandidates int `yaml:"document_candidates" json:"document_candidates"`

	// DocumentMinAreaRatio rejects boundary candidates enclosing less than
	// this fraction of the image. Zero keeps every non-degenerate candidate.
	DocumentMinAreaRatio float64 `yaml:"document_min_area_ratio" json:"document_min_area_ratio"`

	// CannyLow and CannyHigh are the hysteresis thresholds of the edge detector.
	CannyLow  float64 `yaml:"canny_low" json:"canny_low"`
	CannyHigh float64 `yaml:"canny_high" json:"canny_high"`

	// DetectMaxDimension caps the longest side of the copy used to search
	// for the sheet boundary. Zero searches at full resolution.
	DetectMaxDimension int `yaml:"detect_max_dimension" json:"detect_max_dimension"`

	// Backend selects the rectifier implementation: "native" or "opencv".
	Backend string `yaml:"backend" json:"backend"`
}

// DefaultParams returns the parameters for the standard 100-question sheet.
func DefaultParams() Params {
	return Params{
		Questions:            100,
		QuestionsPerSubject:  20,
		Subjects:             5,
		Choices:              4,
		BubbleMinSize:        4,
		BubbleMaxSize:        400,
		BubbleMinAspect:      0.6,
		BubbleMaxAspect:      1.4,
		MedianKernel:         5,
		RowYTolerance:        25,
		AmbiguityRatio:       0.65,
		MinFillPixels:        10,
		DocumentCandidates:   8,
		DocumentMinAreaRatio: 0.1,
		CannyLow:             75,
		CannyHigh:            200,
		DetectMaxDimension:   1000,
		Backend:              BackendNative,
	}
}

// Validate reports the first unusable value, wrapped in ErrInvalidParams.
func (p Params) Validate() error {
	switch {
	case p.Questions <= 0:
		return fmt.Errorf("%w: questions must be positive, got %d", ErrInvalidParams, p.Questions)
	case p.QuestionsPerSubject <= 0:
		return fmt.Errorf("%w: questions_per_subject must be positive, got %d", ErrInvalidParams, p.QuestionsPerSubject)
	case p.Subjects <= 0:
		return fmt.Errorf("%w: subjects must be positive, got %d", ErrInvalidParams, p.Subjects)
	case p.Choices < 1 || p.Choices > 26:
		return fmt.Errorf("%w: choices must be between 1 and 26, got %d", ErrInvalidParams, p.Choices)
	case p.BubbleMinSize < 1 || p.BubbleMaxSize < p.BubbleMinSize:
		return fmt.Errorf("%w: bubble size bounds [%d, %d]", ErrInvalidParams, p.BubbleMinSize, p.BubbleMaxSize)
	case p.BubbleMinAspect <= 0 || p.BubbleMaxAspect < p.BubbleMinAspect:
		return fmt.Errorf("%w: bubble aspect bounds [%g, %g]", ErrInvalidParams, p.BubbleMinAspect, p.BubbleMaxAspect)
	case p.MedianKernel < 1 || p.MedianKernel%2 == 0:
		return fmt.Errorf("%w: median_kernel must be odd and positive, got %d", ErrInvalidParams, p.MedianKernel)
	case p.RowYTolerance < 0:
		return fmt.Errorf("%w: row_y_tolerance must not be negative, got %d", ErrInvalidParams, p.RowYTolerance)
	case p.AmbiguityRatio <= 0 || p.AmbiguityRatio > 1:
		return fmt.Errorf("%w: ambiguity_ratio must be in (0, 1], got %g", ErrInvalidParams, p.AmbiguityRatio)
	case p.MinFillPixels < 0:
		return fmt.Errorf("%w: min_fill_pixels must not be negative, got %d", ErrInvalidParams, p.MinFillPixels)
	case p.DocumentCandidates <= 0:
		return fmt.Errorf("%w: document_candidates must be positive, got %d", ErrInvalidParams, p.DocumentCandidates)
	case p.DocumentMinAreaRatio < 0 || p.DocumentMinAreaRatio >= 1:
		return fmt.Errorf("%w: document_min_area_ratio must be in [0, 1), got %g", ErrInvalidParams, p.DocumentMinAreaRatio)
	case p.CannyLow < 0 || p.CannyHigh < p.CannyLow:
		return fmt.Errorf("%w: canny thresholds [%g, %g]", ErrInvalidParams, p.CannyLow, p.CannyHigh)
	case p.DetectMaxDimension < 0:
		return fmt.Errorf("%w: detect_max_dimension must not be negative, got %d", ErrInvalidParams, p.DetectMaxDimension)
	}
	if _, ok := rectifierBackends[p.Backend]; !ok {
		return fmt.Errorf("%w: unknown rectifier backend %q (available: %v)", ErrInvalidParams, p.Backend, Backends())
	}
	return nil
}
