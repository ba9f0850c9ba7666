package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema of the mask path argument every tool takes.
func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the label mask image (PNG, GIF, BMP, TIFF; gray or indexed)",
	}
}

// extractionProperties returns the optional settings shared by extraction tools.
func extractionProperties() map[string]interface{} {
	return map[string]interface{}{
		"simplify_polygons": map[string]interface{}{
			"type":        "boolean",
			"description": "Simplify outlines with Douglas-Peucker before rescaling. Defaults to the server setting (false unless configured)",
		},
		"grid_resolution": map[string]interface{}{
			"type":        "number",
			"description": "Pixel grid spacing; simplification tolerance is sqrt(2) times this. Must be positive. Default 1.0",
			"default":     1.0,
		},
	}
}

// withExtraction merges the shared extraction properties into props.
func withExtraction(props map[string]interface{}) map[string]interface{} {
	for k, v := range extractionProperties() {
		props[k] = v
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Mask Information
		{
			Name:        "mask_load",
			Description: "Load a label mask and return its dimensions, format, color model and the distinct non-zero labels it contains.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "mask_labels",
			Description: "List every non-zero label of a mask in ascending order with its pixel count. Label 0 is background and never listed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Extraction
		{
			Name:        "mask_extract",
			Description: "Trace the outline of every label (or one label) of a mask and return polygons as WKT in percent-of-image coordinates, grouped per label, with image path, width and height.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withExtraction(map[string]interface{}{
					"path": pathProperty(),
					"label": map[string]interface{}{
						"type":        "integer",
						"description": "Optional single label to extract. Omit to extract all non-zero labels",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "mask_extract_to_file",
			Description: "Extract all label outlines of a mask and write the result as a JSON document. The destination extension is always replaced with .json.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withExtraction(map[string]interface{}{
					"path": pathProperty(),
					"destination": map[string]interface{}{
						"type":        "string",
						"description": "Output path. Defaults to the mask path with a .json extension",
					},
				}),
				"required": []string{"path"},
			},
		},

		// Visual Check
		{
			Name:        "mask_preview",
			Description: "Render the mask with each label filled in its own color and the extracted outlines drawn on top. Returns a base64-encoded PNG for visually checking extraction results.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withExtraction(map[string]interface{}{
					"path": pathProperty(),
					"scale": map[string]interface{}{
						"type":        "number",
						"description": "Optional scale factor (e.g., 4.0 for small masks). Default 1.0",
						"default":     1.0,
					},
					"outline_color": map[string]interface{}{
						"type":        "string",
						"description": "Outline color in hex format (#RRGGBB or #RRGGBBAA). Default #FFFFFF",
						"default":     "#FFFFFF",
					},
					"show_labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Draw label numbers next to each outline. Default true",
						"default":     true,
					},
				}),
				"required": []string{"path"},
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
