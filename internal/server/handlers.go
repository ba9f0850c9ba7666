package server

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/ironsheep/mask-tools-mcp/internal/config"
	"github.com/ironsheep/mask-tools-mcp/internal/extract"
	"github.com/ironsheep/mask-tools-mcp/internal/imaging"
	"github.com/ironsheep/mask-tools-mcp/internal/output"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "mask_load", "mask_extract").
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
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
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
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Merges optional extraction settings over the server defaults
//  3. Loads the mask from cache
//  4. Calls the appropriate imaging/extract function
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Mask Information
	case "mask_load":
		return s.handleMaskLoad(args)
	case "mask_labels":
		return s.handleMaskLabels(args)

	// Extraction
	case "mask_extract":
		return s.handleMaskExtract(args)
	case "mask_extract_to_file":
		return s.handleMaskExtractToFile(args)

	// Visual Check
	case "mask_preview":
		return s.handleMaskPreview(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
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
// On marshal failure the error is logged and an empty string returned.
func mustMarshalJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("Failed to marshal tool result %T: %v", v, err)
		return ""
	}
	return string(b)
}

// extractionArgs are the optional settings shared by the extraction tools.
// Nil fields fall back to the server defaults.
type extractionArgs struct {
	SimplifyPolygons *bool    `json:"simplify_polygons"`
	GridResolution   *float64 `json:"grid_resolution"`
}

func (a extractionArgs) options(defaults config.Options) config.Options {
	opts := defaults
	if a.SimplifyPolygons != nil {
		opts.SimplifyPolygons = *a.SimplifyPolygons
	}
	if a.GridResolution != nil {
		opts.GridResolution = *a.GridResolution
	}
	return opts
}

// === Mask Information Handlers ===

type maskPathArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleMaskLoad(args json.RawMessage) (interface{}, error) {
	var a maskPathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadMaskInfo(s.cache, a.Path)
}

// maskLabelsResult lists every non-zero label with its pixel count.
type maskLabelsResult struct {
	Width  int                  `json:"width"`
	Height int                  `json:"height"`
	Labels []imaging.LabelCount `json:"labels"`
}

func (s *Server) handleMaskLabels(args json.RawMessage) (interface{}, error) {
	var a maskPathArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	labels, err := imaging.LoadLabels(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	return &maskLabelsResult{
		Width:  labels.Width(),
		Height: labels.Height(),
		Labels: labels.LabelCounts(),
	}, nil
}

// === Extraction Handlers ===

type maskExtractArgs struct {
	Path  string `json:"path"`
	Label *int   `json:"label"`
	extractionArgs
}

func (s *Server) handleMaskExtract(args json.RawMessage) (interface{}, error) {
	var a maskExtractArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	opts := a.options(s.defaults)

	if a.Label == nil {
		return extract.FromFile(s.cache, a.Path, opts)
	}

	if *a.Label == 0 {
		return nil, fmt.Errorf("label 0 is background and has no outline")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	labels, err := imaging.LoadLabels(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	seg, err := extract.ExtractLabel(labels, *a.Label, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to extract label %d: %w", *a.Label, err)
	}
	return &extract.Document{
		ImagePath:     a.Path,
		Width:         labels.Width(),
		Height:        labels.Height(),
		Segmentations: []extract.Segmentation{seg},
	}, nil
}

type maskExtractToFileArgs struct {
	Path        string `json:"path"`
	Destination string `json:"destination"`
	extractionArgs
}

// extractToFileResult reports where a document was written.
type extractToFileResult struct {
	OutputPath    string `json:"output_path"`
	Segmentations int    `json:"segmentations"`
	Polygons      int    `json:"polygons"`
}

func (s *Server) handleMaskExtractToFile(args json.RawMessage) (interface{}, error) {
	var a maskExtractToFileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Destination == "" {
		a.Destination = a.Path
	}

	doc, err := extract.FromFile(s.cache, a.Path, a.options(s.defaults))
	if err != nil {
		return nil, err
	}
	path, err := output.WriteJSON(doc, a.Destination)
	if err != nil {
		return nil, err
	}

	result := &extractToFileResult{OutputPath: path, Segmentations: len(doc.Segmentations)}
	for _, seg := range doc.Segmentations {
		result.Polygons += len(seg.Polygons)
	}
	return result, nil
}

// === Visual Check Handlers ===

type maskPreviewArgs struct {
	Path         string  `json:"path"`
	Scale        float64 `json:"scale"`
	OutlineColor string  `json:"outline_color"`
	ShowLabels   *bool   `json:"show_labels"`
	extractionArgs
}

func (s *Server) handleMaskPreview(args json.RawMessage) (interface{}, error) {
	var a maskPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	if a.OutlineColor == "" {
		a.OutlineColor = "#FFFFFF"
	}
	showLabels := a.ShowLabels == nil || *a.ShowLabels

	labels, err := imaging.LoadLabels(s.cache, a.Path)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Segmentations(a.Path, labels, a.options(s.defaults))
	if err != nil {
		return nil, err
	}
	outlines, err := extract.PreviewOutlines(doc)
	if err != nil {
		return nil, err
	}

	img, err := imaging.RenderPreview(labels, outlines, imaging.PreviewOptions{
		Scale:        a.Scale,
		OutlineColor: a.OutlineColor,
		ShowLabels:   showLabels,
	})
	if err != nil {
		return nil, err
	}
	return imaging.EncodePreview(img)
}
