// Package server implements the MCP (Model Context Protocol) server for label mask tools.
//
// This package provides a JSON-RPC 2.0 server that exposes mask outline
// extraction through the MCP protocol, so MCP clients can inspect
// segmentation masks, pull per-label polygons and check the result visually.
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
// Mask Information:
//   - mask_load: Dimensions, format, color model and label set
//   - mask_labels: Pixel count per label
//
// Extraction:
//   - mask_extract: Per-label WKT polygons in percent-of-image coordinates
//   - mask_extract_to_file: Same, written as a JSON document
//
// Visual Check:
//   - mask_preview: Colored label fill with extracted outlines, as base64 PNG
//
// The extraction tools accept optional simplify_polygons and grid_resolution
// arguments. Omitted values fall back to the options the server was created
// with (see NewWithOptions).
//
// # Image Caching
//
// The server maintains an in-memory cache of loaded masks. Masks are cached
// by path and reused across multiple tool calls, avoiding redundant disk I/O.
// The cache persists for the lifetime of the server process.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New()
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
