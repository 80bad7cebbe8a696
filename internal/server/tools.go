package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// Shared schema fragments.
var (
	pathProperty = map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the answer-sheet image (PNG, JPEG, GIF, BMP or TIFF)",
	}
	versionProperty = map[string]interface{}{
		"type":        "string",
		"description": "Answer-key version to grade against, or \"flat\" for an unversioned key file. Defaults to the configured version.",
	}
	answerKeysProperty = map[string]interface{}{
		"type":        "string",
		"description": "Optional path to a JSON or YAML answer-key file. Defaults to the configured file.",
	}
	outputDirProperty = map[string]interface{}{
		"type":        "string",
		"description": "Optional directory for <name>_graded.jpg and <name>_results.json. Defaults to the configured output_dir; empty writes nothing.",
	}
	saveThresholdProperty = map[string]interface{}{
		"type":        "boolean",
		"description": "Also write the binary threshold mask as <name>_thresh.png",
		"default":     false,
	}
)

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Grading
		{
			Name:        "omr_grade_sheet",
			Description: "Grade one bubble answer sheet: locate and flatten the sheet, read every question, and score it against an answer-key version. Returns per-question results, subject subtotals and the total score.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":           pathProperty,
					"version":        versionProperty,
					"answer_keys":    answerKeysProperty,
					"output_dir":     outputDirProperty,
					"save_threshold": saveThresholdProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_grade_batch",
			Description: "Grade every sheet in a folder (or an explicit list of files) against one answer-key version. Unreadable files are reported individually; the rest of the batch is still graded. Returns per-file scores and a summary.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"folder": map[string]interface{}{
						"type":        "string",
						"description": "Folder whose images are graded (not recursive)",
					},
					"paths": map[string]interface{}{
						"type":        "array",
						"items":       map[string]interface{}{"type": "string"},
						"description": "Explicit image paths; used instead of folder when given",
					},
					"version":        versionProperty,
					"answer_keys":    answerKeysProperty,
					"output_dir":     outputDirProperty,
					"save_threshold": saveThresholdProperty,
					"workers": map[string]interface{}{
						"type":        "integer",
						"description": "Sheets graded concurrently. Defaults to the configured worker count.",
					},
				},
			},
		},

		// Inspection
		{
			Name:        "omr_detect_bubbles",
			Description: "Run detection without grading: report whether the sheet boundary was found, every bubble's bounding box, the question grid and the fill counts behind each reading. Use this to tune parameters for a new sheet layout.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "omr_rectify",
			Description: "Locate the answer sheet in a photo and return the perspective-corrected image as base64-encoded PNG, or write it to output_path.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Optional file to save the rectified sheet to instead of returning base64",
					},
				},
				"required": []string{"path"},
			},
		},

		// Answer keys
		{
			Name:        "omr_key_versions",
			Description: "List the versions available in an answer-key file and how many questions each one keys.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"answer_keys": answerKeysProperty,
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
