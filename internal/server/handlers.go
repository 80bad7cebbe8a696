package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"log"
	"path/filepath"

	"github.com/ironsheep/omr-grader/internal/batch"
	"github.com/ironsheep/omr-grader/internal/grading"
	"github.com/ironsheep/omr-grader/internal/imaging"
	"github.com/ironsheep/omr-grader/internal/omr"
)

// errInvalidArgs marks tool failures caused by the caller's arguments.
var errInvalidArgs = errors.New("invalid arguments")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "omr_grade_sheet").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Bad arguments and unknown key versions return code -32602; any other
// tool failure returns -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		if errors.Is(err, errInvalidArgs) || errors.Is(err, grading.ErrVersionNotFound) {
			return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each grading handler resolves the answer key before touching the image,
// so an unknown version fails without decoding anything.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Grading
	case "omr_grade_sheet":
		return s.handleGradeSheet(args)
	case "omr_grade_batch":
		return s.handleGradeBatch(args)

	// Inspection
	case "omr_detect_bubbles":
		return s.handleDetectBubbles(args)
	case "omr_rectify":
		return s.handleRectify(args)

	// Answer keys
	case "omr_key_versions":
		return s.handleKeyVersions(args)

	default:
		return nil, fmt.Errorf("%w: unknown tool: %s", errInvalidArgs, name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments; absent arguments leave v untouched.
func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 || string(args) == "null" {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidArgs, err)
	}
	return nil
}

// resolveKey loads the key file (argument or configured) and resolves
// version (argument or configured).
func (s *Server) resolveKey(keysPath, version string) (*grading.AnswerKey, string, error) {
	if keysPath == "" {
		keysPath = s.cfg.AnswerKeys
	}
	if keysPath == "" {
		return nil, "", fmt.Errorf("%w: no answer_keys file given or configured", errInvalidArgs)
	}
	if version == "" {
		version = s.cfg.Version
	}
	set, err := grading.LoadKeySet(keysPath)
	if err != nil {
		return nil, "", err
	}
	key, err := set.Resolve(version)
	if err != nil {
		return nil, "", err
	}
	return key, version, nil
}

func (s *Server) outputOptions(dir string, saveThreshold *bool) (string, bool) {
	if dir == "" {
		dir = s.cfg.OutputDir
	}
	save := s.cfg.SaveThreshold
	if saveThreshold != nil {
		save = *saveThreshold
	}
	return dir, save
}

// === Grading Handlers ===

type gradeSheetArgs struct {
	Path          string `json:"path"`
	Version       string `json:"version"`
	AnswerKeys    string `json:"answer_keys"`
	OutputDir     string `json:"output_dir"`
	SaveThreshold *bool  `json:"save_threshold"`
}

type gradeSheetResult struct {
	Version string `json:"version"`
	*batch.SheetReport
	Artifacts *batch.Artifacts `json:"artifacts,omitempty"`
}

func (s *Server) handleGradeSheet(args json.RawMessage) (interface{}, error) {
	var a gradeSheetArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArgs)
	}

	key, version, err := s.resolveKey(a.AnswerKeys, a.Version)
	if err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	analysis, report := s.engine.Grade(img, key)
	if !analysis.DocumentFound {
		log.Printf("Warning: document not detected in %s; grading the unrectified image", a.Path)
	}
	s.debugf("%s: %s", a.Path, analysis)

	res := batch.Result{
		Path:     a.Path,
		Analysis: analysis,
		Sheet:    batch.NewSheetReport(filepath.Base(a.Path), analysis, report),
	}
	out := gradeSheetResult{Version: version, SheetReport: res.Sheet}

	if dir, save := s.outputOptions(a.OutputDir, a.SaveThreshold); dir != "" {
		arts, err := batch.WriteArtifacts(dir, res, save)
		if err != nil {
			return nil, err
		}
		out.Artifacts = &arts
	}
	return out, nil
}

type gradeBatchArgs struct {
	Folder        string   `json:"folder"`
	Paths         []string `json:"paths"`
	Version       string   `json:"version"`
	AnswerKeys    string   `json:"answer_keys"`
	OutputDir     string   `json:"output_dir"`
	SaveThreshold *bool    `json:"save_threshold"`
	Workers       int      `json:"workers"`
}

type batchItem struct {
	File          string           `json:"file"`
	DocumentFound bool             `json:"document_found,omitempty"`
	TotalScore    *int             `json:"total_score,omitempty"`
	SubjectScores []int            `json:"subject_scores,omitempty"`
	Artifacts     *batch.Artifacts `json:"artifacts,omitempty"`
	Error         string           `json:"error,omitempty"`
}

type gradeBatchResult struct {
	Version string        `json:"version"`
	Results []batchItem   `json:"results"`
	Summary batch.Summary `json:"summary"`
}

func (s *Server) handleGradeBatch(args json.RawMessage) (interface{}, error) {
	var a gradeBatchArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Folder == "" && len(a.Paths) == 0 {
		return nil, fmt.Errorf("%w: folder or paths is required", errInvalidArgs)
	}

	key, version, err := s.resolveKey(a.AnswerKeys, a.Version)
	if err != nil {
		return nil, err
	}

	paths := a.Paths
	if len(paths) == 0 {
		if paths, err = batch.CollectImages(a.Folder); err != nil {
			return nil, err
		}
	}

	workers := a.Workers
	if workers <= 0 {
		workers = s.cfg.Workers
	}
	opts := []batch.Option{batch.WithWorkers(workers)}
	dir, save := s.outputOptions(a.OutputDir, a.SaveThreshold)
	if dir != "" {
		opts = append(opts, batch.WithAfter(func(r batch.Result) error {
			_, err := batch.WriteArtifacts(dir, r, save)
			return err
		}))
	}

	results, err := batch.NewRunner(s.engine, key, opts...).Run(context.Background(), paths)
	if err != nil {
		return nil, err
	}

	out := gradeBatchResult{
		Version: version,
		Results: make([]batchItem, len(results)),
		Summary: batch.Summarize(results),
	}
	for i, r := range results {
		item := batchItem{File: r.Path}
		if r.Err != nil {
			log.Printf("Failed to grade %s: %v", r.Path, r.Err)
			item.Error = r.Err.Error()
			out.Results[i] = item
			continue
		}
		if !r.Sheet.DocumentFound {
			log.Printf("Warning: document not detected in %s; graded the unrectified image", r.Path)
		}
		score := r.Sheet.TotalScore
		item.DocumentFound = r.Sheet.DocumentFound
		item.TotalScore = &score
		item.SubjectScores = r.Sheet.SubjectScores
		if dir != "" {
			arts := batch.ArtifactPaths(dir, r.Path)
			if !save {
				arts.Threshold = ""
			}
			item.Artifacts = &arts
		}
		out.Results[i] = item
	}
	s.debugf("batch of %d: %d graded, %d failed", out.Summary.Sheets, out.Summary.Graded, out.Summary.Failed)
	return out, nil
}

// === Inspection Handlers ===

type pathArgs struct {
	Path string `json:"path"`
}

type bubbleBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

type questionReading struct {
	Question   int    `json:"question"`
	Mark       string `json:"mark"`
	Selected   string `json:"selected,omitempty"`
	FillPixels []int  `json:"fill_pixels"`
}

type detectBubblesResult struct {
	DocumentFound     bool              `json:"document_found"`
	Width             int               `json:"width"`
	Height            int               `json:"height"`
	GridFallback      bool              `json:"grid_fallback"`
	BubblesDetected   int               `json:"bubbles_detected"`
	QuestionsDetected int               `json:"questions_detected"`
	Bubbles           []bubbleBox       `json:"bubbles"`
	Questions         []questionReading `json:"questions"`
}

func (s *Server) handleDetectBubbles(args json.RawMessage) (interface{}, error) {
	var a pathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	analysis := s.engine.Analyze(img)
	b := analysis.Sheet.Bounds()
	out := detectBubblesResult{
		DocumentFound:     analysis.DocumentFound,
		Width:             b.Dx(),
		Height:            b.Dy(),
		GridFallback:      analysis.GridFallback,
		BubblesDetected:   len(analysis.Bubbles),
		QuestionsDetected: analysis.QuestionsDetected,
		Bubbles:           make([]bubbleBox, len(analysis.Bubbles)),
		Questions:         make([]questionReading, len(analysis.Selections)),
	}
	for i, bb := range analysis.Bubbles {
		out.Bubbles[i] = bubbleBox{X: bb.Bounds.Min.X, Y: bb.Bounds.Min.Y, Width: bb.Bounds.Dx(), Height: bb.Bounds.Dy()}
	}
	for i, sel := range analysis.Selections {
		out.Questions[i] = questionReading{
			Question:   sel.Question,
			Mark:       sel.Mark.String(),
			Selected:   sel.Letter(),
			FillPixels: sel.Fills,
		}
	}
	return out, nil
}

type rectifyArgs struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path"`
}

type rectifyResult struct {
	DocumentFound bool      `json:"document_found"`
	Width         int       `json:"width"`
	Height        int       `json:"height"`
	Corners       *omr.Quad `json:"corners,omitempty"`
	OutputPath    string    `json:"output_path,omitempty"`
	ImageBase64   string    `json:"image_base64,omitempty"`
}

func (s *Server) handleRectify(args json.RawMessage) (interface{}, error) {
	var a rectifyArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("%w: path is required", errInvalidArgs)
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	sheet, found := s.engine.Rectify(img)
	b := sheet.Bounds()
	out := rectifyResult{DocumentFound: found, Width: b.Dx(), Height: b.Dy()}
	if found && s.engine.Params().Backend == omr.BackendNative {
		if quad, ok := omr.NewDocumentRectifier(s.engine.Params()).FindDocument(img); ok {
			out.Corners = &quad
		}
	}

	if a.OutputPath != "" {
		if err := imaging.Save(sheet, a.OutputPath); err != nil {
			return nil, err
		}
		out.OutputPath = a.OutputPath
		return out, nil
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, sheet); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	out.ImageBase64 = base64.StdEncoding.EncodeToString(buf.Bytes())
	return out, nil
}

// === Answer Key Handlers ===

type keyVersionsArgs struct {
	AnswerKeys string `json:"answer_keys"`
}

type keyVersion struct {
	Version   string `json:"version"`
	Questions int    `json:"questions"`
}

type keyVersionsResult struct {
	File        string       `json:"file"`
	Versions    []keyVersion `json:"versions"`
	FlatEntries int          `json:"flat_entries"`
}

func (s *Server) handleKeyVersions(args json.RawMessage) (interface{}, error) {
	var a keyVersionsArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	path := a.AnswerKeys
	if path == "" {
		path = s.cfg.AnswerKeys
	}
	if path == "" {
		return nil, fmt.Errorf("%w: no answer_keys file given or configured", errInvalidArgs)
	}

	set, err := grading.LoadKeySet(path)
	if err != nil {
		return nil, err
	}
	out := keyVersionsResult{File: path, Versions: make([]keyVersion, 0)}
	for _, v := range set.Versions() {
		key, err := set.Resolve(v)
		if err != nil {
			return nil, err
		}
		out.Versions = append(out.Versions, keyVersion{Version: v, Questions: key.Len()})
	}
	if flat, err := set.Resolve(grading.FlatVersion); err == nil {
		out.FlatEntries = flat.Len()
	}
	return out, nil
}
