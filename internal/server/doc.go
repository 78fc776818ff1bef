// Package server implements the MCP (Model Context Protocol) server that
// exposes the annotation audit to AI assistants.
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
// Audit:
//   - annotation_audit: Validate the annotations of one image
//   - annotation_rules: Show the thresholds in effect
//
// Region inspection:
//   - annotation_color_profile: Average color, brightness and palette under a box
//   - annotation_crop: Pixels under a box as base64 PNG
//   - annotation_iou: Overlap of two boxes
//   - image_dimensions: Width and height of an image
//
// # Image Caching
//
// Images are cached by path for the lifetime of the server process, so an
// assistant can audit a task and then inspect its regions without reloading.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string
//
// # Usage
//
//	srv := server.New(pipeline, version)
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
