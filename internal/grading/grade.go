package grading

import (
	"sort"
)

// Config partitions the question range into subject blocks.
type Config struct {
	QuestionsPerSubject int
	Subjects            int
}

// Answer is what was read for one question. Selected is the option letter,
// or "" when nothing was selected.
type Answer struct {
	Question  int
	Selected  string
	Ambiguous bool
}

// QuestionResult is one per_question record. Nil pointers encode to JSON
// null: no selection, no key entry, or correctness undefined.
type QuestionResult struct {
	Question  int     `json:"question"`
	Selected  *string `json:"selected"`
	Correct   *string `json:"correct"`
	IsCorrect *bool   `json:"is_correct"`
	Ambiguous bool    `json:"ambiguous"`
}

// Report is the grading result of one sheet.
type Report struct {
	PerQuestion []QuestionResult `json:"per_question"`

	// SubjectScores holds the correct answers per subject block.
	SubjectScores []int `json:"subject_scores"`

	// TotalScore is the sum of SubjectScores.
	TotalScore int `json:"total_score"`

	// TotalCorrect counts every correct answer, including questions
	// outside the subject blocks.
	TotalCorrect int `json:"total_correct"`

	// TotalMarkedQuestionsInKey is the number of entries in the key.
	TotalMarkedQuestionsInKey int `json:"total_marked_questions_in_key"`
}

// Grade scores answers against key. Answers are reported in question order;
// a question without a key entry has undefined correctness and is left out
// of every total. A nil key grades nothing.
func Grade(cfg Config, answers []Answer, key *AnswerKey) *Report {
	ordered := make([]Answer, len(answers))
	copy(ordered, answers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Question < ordered[j].Question
	})

	report := &Report{
		PerQuestion:               make([]QuestionResult, 0, len(ordered)),
		SubjectScores:             make([]int, max(cfg.Subjects, 0)),
		TotalMarkedQuestionsInKey: key.Len(),
	}

	for _, a := range ordered {
		res := QuestionResult{Question: a.Question, Ambiguous: a.Ambiguous}
		if a.Selected != "" {
			res.Selected = ptr(a.Selected)
		}

		if correct, ok := key.Correct(a.Question); ok {
			res.Correct = ptr(correct)
			isCorrect := a.Selected != "" && a.Selected == correct
			res.IsCorrect = ptr(isCorrect)
			if isCorrect {
				report.TotalCorrect++
				if subject, ok := cfg.subjectOf(a.Question); ok {
					report.SubjectScores[subject]++
				}
			}
		}
		report.PerQuestion = append(report.PerQuestion, res)
	}

	for _, s := range report.SubjectScores {
		report.TotalScore += s
	}
	return report
}

// subjectOf returns the 0-based subject block of question q.
func (c Config) subjectOf(q int) (int, bool) {
	if q < 1 || c.QuestionsPerSubject <= 0 {
		return 0, false
	}
	s := (q - 1) / c.QuestionsPerSubject
	return s, s < c.Subjects
}

func ptr[T any](v T) *T {
	return &v
}
