package batch

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Summary aggregates the scores of a batch.
type Summary struct {
	Sheets   int `json:"sheets"`
	Graded   int `json:"graded"`
	Failed   int `json:"failed"`
	Degraded int `json:"degraded"` // graded without locating the sheet boundary

	MeanScore   float64 `json:"mean_score"`
	StdDevScore float64 `json:"stddev_score"`
	MedianScore float64 `json:"median_score"`
	MinScore    int     `json:"min_score"`
	MaxScore    int     `json:"max_score"`
}

// Summarize computes batch statistics over the graded sheets. The standard
// deviation is the sample deviation and is 0 for fewer than two sheets.
func Summarize(results []Result) Summary {
	s := Summary{Sheets: len(results)}
	scores := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Err != nil || r.Sheet == nil || r.Sheet.Report == nil {
			s.Failed++
			continue
		}
		s.Graded++
		if !r.Sheet.DocumentFound {
			s.Degraded++
		}
		scores = append(scores, float64(r.Sheet.TotalScore))
	}
	if len(scores) == 0 {
		return s
	}

	sort.Float64s(scores)
	s.MinScore = int(scores[0])
	s.MaxScore = int(scores[len(scores)-1])
	s.MedianScore = stat.Quantile(0.5, stat.Empirical, scores, nil)
	if n := len(scores); n%2 == 0 {
		// Empirical yields the lower middle value.
		s.MedianScore = (s.MedianScore + scores[n/2]) / 2
	}
	if len(scores) == 1 {
		s.MeanScore = scores[0]
		return s
	}
	s.MeanScore, s.StdDevScore = stat.MeanStdDev(scores, nil)
	return s
}
