package server

import (
	"encoding/json"
	"fmt"

	"github.com/ironsheep/annotation-audit/internal/annotation"
	"github.com/ironsheep/annotation-audit/internal/geometry"
	"github.com/ironsheep/annotation-audit/internal/imaging"
	"github.com/ironsheep/annotation-audit/internal/report"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "annotation_audit").
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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Audit
	case "annotation_audit":
		return s.handleAnnotationAudit(args)
	case "annotation_rules":
		return s.pipeline.Rules(), nil

	// Region inspection
	case "annotation_color_profile":
		return s.handleAnnotationColorProfile(args)
	case "annotation_crop":
		return s.handleAnnotationCrop(args)
	case "annotation_iou":
		return s.handleAnnotationIoU(args)

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
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

func decodeArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return fmt.Errorf("missing arguments")
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// === Image Handlers ===

type imagePathArgs struct {
	Path string `json:"path"`
}

// DimensionsResult is the size of a loaded image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imagePathArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	d := imaging.Dimensions(img)
	return &DimensionsResult{Width: d.Width, Height: d.Height}, nil
}

// === Audit Handlers ===

type annotationAuditArgs struct {
	Path         string              `json:"path"`
	TaskID       string              `json:"task_id"`
	Annotations  []annotation.Record `json:"annotations"`
	IncludeCrops bool                `json:"include_crops"`
}

func (s *Server) handleAnnotationAudit(args json.RawMessage) (interface{}, error) {
	var a annotationAuditArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	res := s.pipeline.RunRecords(a.TaskID, img, a.Annotations)
	return report.NewTaskReport(res, a.IncludeCrops)
}

// === Region Handlers ===

type annotationRegionArgs struct {
	Path string        `json:"path"`
	Box  geometry.Rect `json:"box"`
}

// ColorProfileResult describes the colors under a box.
type ColorProfileResult struct {
	Region     RegionInfo             `json:"region"`
	Average    *imaging.Color         `json:"average,omitempty"`
	Dominant   *imaging.Color         `json:"dominant,omitempty"`
	Brightness *float64               `json:"brightness,omitempty"`
	Palette    []imaging.PaletteEntry `json:"palette"`
}

// RegionInfo is the pixel area a box resolved to after rounding and
// clipping.
type RegionInfo struct {
	X1     int `json:"x1"`
	Y1     int `json:"y1"`
	X2     int `json:"x2"`
	Y2     int `json:"y2"`
	Pixels int `json:"pixels"`
}

func (s *Server) handleAnnotationColorProfile(args json.RawMessage) (interface{}, error) {
	var a annotationRegionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	rect := imaging.PixelRect(img, a.Box).Intersect(img.Bounds())
	region := imaging.CropRegion(img, a.Box)
	profile := imaging.ProfileRegion(region, s.pipeline.Rules().Profile)

	result := &ColorProfileResult{
		Region: RegionInfo{
			X1: rect.Min.X, Y1: rect.Min.Y, X2: rect.Max.X, Y2: rect.Max.Y,
			Pixels: rect.Dx() * rect.Dy(),
		},
		Average:  profile.Average,
		Dominant: profile.Dominant,
		Palette:  profile.Palette,
	}
	if profile.Average != nil {
		b := profile.Average.Brightness()
		result.Brightness = &b
	}
	return result, nil
}

// CropResult is an annotated region encoded as PNG.
type CropResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
}

func (s *Server) handleAnnotationCrop(args json.RawMessage) (interface{}, error) {
	var a annotationRegionArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	region := imaging.CropRegion(img, a.Box)
	encoded, err := imaging.EncodePNGBase64(region)
	if err != nil {
		return nil, fmt.Errorf("box %v does not cover any pixels: %w", a.Box, err)
	}
	return &CropResult{
		Width:       region.Bounds().Dx(),
		Height:      region.Bounds().Dy(),
		ImageBase64: encoded,
	}, nil
}

type annotationIoUArgs struct {
	A geometry.Rect `json:"a"`
	B geometry.Rect `json:"b"`
}

// IoUResult reports how two boxes overlap.
type IoUResult struct {
	IoU          float64 `json:"iou"`
	Intersection float64 `json:"intersection"`
	Overlapping  bool    `json:"overlapping"`
	Duplicate    bool    `json:"duplicate"`
}

func (s *Server) handleAnnotationIoU(args json.RawMessage) (interface{}, error) {
	var a annotationIoUArgs
	if err := decodeArgs(args, &a); err != nil {
		return nil, err
	}

	ra, rb := a.A, a.B
	iou := geometry.IoU(ra, rb)
	rules := s.pipeline.Rules()
	return &IoUResult{
		IoU:          iou,
		Intersection: ra.Intersect(rb).Area(),
		Overlapping:  iou > rules.OverlapIoU,
		Duplicate:    iou > rules.DuplicateIoU,
	}, nil
}
