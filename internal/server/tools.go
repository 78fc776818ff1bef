package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func boxSchema(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"left":   map[string]interface{}{"type": "number", "description": "Left edge X coordinate"},
			"top":    map[string]interface{}{"type": "number", "description": "Top edge Y coordinate"},
			"width":  map[string]interface{}{"type": "number", "description": "Box width in pixels"},
			"height": map[string]interface{}{"type": "number", "description": "Box height in pixels"},
		},
		"required": []string{"left", "top", "width", "height"},
	}
}

var pathProperty = map[string]interface{}{
	"type":        "string",
	"description": "Absolute path to the image file",
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
				},
				"required": []string{"path"},
			},
		},

		// Audit
		{
			Name:        "annotation_audit",
			Description: "Run the full quality audit on the bounding-box annotations of one image. Returns only the annotations that were flagged, each with its severity (warning or error) and the messages explaining why.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"task_id": map[string]interface{}{
						"type":        "string",
						"description": "Optional identifier echoed back in the result",
					},
					"annotations": map[string]interface{}{
						"type":        "array",
						"description": "Annotation records as exported by the labeling service",
						"items": map[string]interface{}{
							"type": "object",
							"properties": map[string]interface{}{
								"uuid":  map[string]interface{}{"type": "string"},
								"label": map[string]interface{}{"type": "string"},
								"attributes": map[string]interface{}{
									"type": "object",
									"properties": map[string]interface{}{
										"occlusion":        map[string]interface{}{"type": "string"},
										"truncation":       map[string]interface{}{"type": "string"},
										"background_color": map[string]interface{}{"type": "string"},
									},
								},
								"left":   map[string]interface{}{"type": "number"},
								"top":    map[string]interface{}{"type": "number"},
								"width":  map[string]interface{}{"type": "number"},
								"height": map[string]interface{}{"type": "number"},
							},
						},
					},
					"include_crops": map[string]interface{}{
						"type":        "boolean",
						"description": "Attach each flagged region as a base64 PNG. Default false",
						"default":     false,
					},
				},
				"required": []string{"path", "annotations"},
			},
		},
		{
			Name:        "annotation_rules",
			Description: "Return the thresholds and label vocabularies the audit applies.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},

		// Region inspection
		{
			Name:        "annotation_color_profile",
			Description: "Compute the average color, brightness and dominant color palette of the pixels under a bounding box, using the same clustering the audit uses.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"box":  boxSchema("Region to profile"),
				},
				"required": []string{"path", "box"},
			},
		},
		{
			Name:        "annotation_crop",
			Description: "Crop the pixels under a bounding box and return them as base64-encoded PNG. Use this to look at a flagged annotation.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty,
					"box":  boxSchema("Region to crop"),
				},
				"required": []string{"path", "box"},
			},
		},
		{
			Name:        "annotation_iou",
			Description: "Compute the intersection-over-union of two bounding boxes and whether the audit would call them overlapping or duplicates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"a": boxSchema("First box"),
					"b": boxSchema("Second box"),
				},
				"required": []string{"a", "b"},
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
