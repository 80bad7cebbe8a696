// Package server implements the MCP (Model Context Protocol) server for
// answer-sheet grading tools.
//
// This package provides a JSON-RPC 2.0 server that exposes the grading
// pipeline through the MCP protocol, so that an MCP client can grade sheets,
// inspect what the detector saw and tune parameters without a separate UI.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Grading:
//   - omr_grade_sheet: Grade one sheet against an answer-key version
//   - omr_grade_batch: Grade a folder or list of sheets concurrently
//
// Inspection:
//   - omr_detect_bubbles: Bubbles, question grid and fill counts
//   - omr_rectify: Perspective-corrected sheet image
//
// Answer keys:
//   - omr_key_versions: Versions available in a key file
//
// # Image Caching
//
// Single-sheet tools share an in-memory cache of decoded images keyed by
// path, so detecting and then grading the same photo decodes it once. Batch
// grading bypasses the cache.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32602 for bad arguments or an unknown key version,
//     -32000 for any other tool failure (unreadable image, I/O)
//   - message: Human-readable error description
//   - data: The Go error string
//
// The key version is resolved before any image is decoded.
//
// # Usage
//
//	srv, err := server.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Serve(os.Stdin, os.Stdout); err != nil {
//	    log.Fatal(err)
//	}
package server
