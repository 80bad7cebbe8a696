// Package omr reads bubble answer sheets.
//
// The pipeline has five stages, each built from an immutable Params value:
//
//	Rectifier        finds the sheet in a photo and removes perspective
//	BubbleDetector   thresholds the sheet and extracts bubble contours
//	QuestionGrouper  arranges bubbles into numbered questions
//	AnswerSelector   decides the marked option from bubble fill counts
//	Renderer         draws the annotated canvas from the decisions
//
// Engine chains them and hands the selections to the grading package.
//
// # Degraded Modes
//
// Nothing in the pipeline returns an error for a hard-to-read sheet. A
// missing sheet boundary leaves the photo unrectified (DocumentFound is
// false), a grid that does not come out to the expected question count is
// retried with strict chunking (GridFallback) and otherwise padded, and a
// question without a confident mark reads as MarkNone or MarkAmbiguous.
//
// # Backends
//
// The default rectifier is pure Go. Building with -tags gocv adds an
// "opencv" backend that performs the same search through OpenCV.
package omr
