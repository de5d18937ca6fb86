package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/appdriver/appdriver/internal/bridge"
	"github.com/appdriver/appdriver/internal/capture"
	"github.com/appdriver/appdriver/internal/resolve"
)

// handlePing echoes the payload value back, for liveness checks.
func (s *Service) handlePing(_ context.Context, payload json.RawMessage) Response {
	var req struct {
		Value any `json:"value"`
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			return failf("invalid payload for ping: %v", err)
		}
	}
	return ok(map[string]any{"value": req.Value})
}

// screenshotRequest is shared by the native and script-based screenshot
// handlers.
type screenshotRequest struct {
	WindowLabel string
	Quality     int
	MaxWidth    int
}

func parseScreenshotRequest(payload json.RawMessage) screenshotRequest {
	req := screenshotRequest{
		WindowLabel: resolve.DefaultWindowLabel,
		Quality:     capture.DefaultQuality,
		MaxWidth:    capture.DefaultMaxWidth,
	}
	if len(payload) == 0 {
		return req
	}
	var s string
	if err := json.Unmarshal(payload, &s); err == nil {
		if s != "" {
			req.WindowLabel = s
		}
		return req
	}
	var obj struct {
		WindowLabel *string `json:"window_label"`
		Quality     *int    `json:"quality"`
		MaxWidth    *int    `json:"max_width"`
	}
	if err := json.Unmarshal(payload, &obj); err != nil {
		return req
	}
	if obj.WindowLabel != nil && *obj.WindowLabel != "" {
		req.WindowLabel = *obj.WindowLabel
	}
	if obj.Quality != nil {
		req.Quality = *obj.Quality
	}
	if obj.MaxWidth != nil {
		req.MaxWidth = *obj.MaxWidth
	}
	return req
}

// handleTakeScreenshot captures the target window natively: resolve the
// window, read its live title, and hand both to the capture engine.
func (s *Service) handleTakeScreenshot(_ context.Context, payload json.RawMessage) Response {
	if s.deps.Engine == nil {
		return failf("native screenshot capture is not available in this build")
	}
	req := parseScreenshotRequest(payload)

	w, err := resolve.Window(s.deps.Host, req.WindowLabel)
	if err != nil {
		return fail(err)
	}
	title, err := w.Title()
	if err != nil {
		return failf("failed to read window title: %v", err)
	}

	res, err := s.deps.Engine.Capture(capture.Options{
		Title:    title,
		AppHint:  s.deps.AppName,
		Quality:  req.Quality,
		MaxWidth: req.MaxWidth,
	})
	if err != nil {
		return fail(err)
	}

	return ok(map[string]any{
		"data":      "data:" + res.MIME + ";base64," + base64.StdEncoding.EncodeToString(res.Data),
		"mime_type": res.MIME,
		"width":     res.Width,
		"height":    res.Height,
	})
}

// handleCaptureScreenshot captures the surface content from inside the
// script context, bypassing OS screen-capture permissions.
func (s *Service) handleCaptureScreenshot(ctx context.Context, payload json.RawMessage) Response {
	req := parseScreenshotRequest(payload)

	effective, _, err := resolve.Surface(s.deps.Host, req.WindowLabel)
	if err != nil {
		return fail(err)
	}

	data, err := bridge.CaptureViaScript(ctx, s.deps.Host, effective, req.Quality, req.MaxWidth)
	if err != nil {
		return fail(err)
	}
	return ok(json.RawMessage(data))
}

// handleGetDOM fetches the rendered DOM text from the resolved surface.
func (s *Service) handleGetDOM(ctx context.Context, payload json.RawMessage) Response {
	label, err := parseWindowLabel(payload)
	if err != nil {
		return fail(err)
	}
	effective, _, err := resolve.Surface(s.deps.Host, label)
	if err != nil {
		return fail(err)
	}
	text, err := bridge.FetchDOMText(ctx, s.deps.Host, effective)
	if err != nil {
		return fail(err)
	}
	return ok(text)
}

// handleGetElementPosition locates (and optionally clicks) an element
// inside the resolved surface.
func (s *Service) handleGetElementPosition(ctx context.Context, payload json.RawMessage) Response {
	var req struct {
		WindowLabel    string `json:"window_label"`
		SelectorType   string `json:"selector_type"`
		SelectorValue  string `json:"selector_value"`
		ShouldClick    bool   `json:"should_click"`
		RawCoordinates bool   `json:"raw_coordinates"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return failf("invalid payload for get_element_position: %v", err)
	}
	if req.SelectorType == "" || req.SelectorValue == "" {
		return failf("get_element_position requires selector_type and selector_value")
	}
	if req.WindowLabel == "" {
		req.WindowLabel = resolve.DefaultWindowLabel
	}

	effective, _, err := resolve.Surface(s.deps.Host, req.WindowLabel)
	if err != nil {
		return fail(err)
	}

	data, err := bridge.LocateElement(ctx, s.deps.Host, effective, bridge.LocateRequest{
		SelectorType:   req.SelectorType,
		SelectorValue:  req.SelectorValue,
		ShouldClick:    req.ShouldClick,
		RawCoordinates: req.RawCoordinates,
	})
	if err != nil {
		return fail(err)
	}
	return ok(json.RawMessage(data))
}

// handleSendTextToElement types text into an element inside the resolved
// surface, character by character when a delay is set.
func (s *Service) handleSendTextToElement(ctx context.Context, payload json.RawMessage) Response {
	var req struct {
		WindowLabel   string `json:"window_label"`
		SelectorType  string `json:"selector_type"`
		SelectorValue string `json:"selector_value"`
		Text          string `json:"text"`
		DelayMs       *int   `json:"delay_ms"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return failf("invalid payload for send_text_to_element: %v", err)
	}
	if req.SelectorType == "" || req.SelectorValue == "" {
		return failf("send_text_to_element requires selector_type and selector_value")
	}
	if req.WindowLabel == "" {
		req.WindowLabel = resolve.DefaultWindowLabel
	}
	delayMs := 20
	if req.DelayMs != nil {
		delayMs = *req.DelayMs
	}

	effective, _, err := resolve.Surface(s.deps.Host, req.WindowLabel)
	if err != nil {
		return fail(err)
	}

	data, err := bridge.TypeIntoElement(ctx, s.deps.Host, effective, bridge.TypeRequest{
		SelectorType:  req.SelectorType,
		SelectorValue: req.SelectorValue,
		Text:          req.Text,
		DelayMs:       delayMs,
	})
	if err != nil {
		return fail(err)
	}
	return ok(json.RawMessage(data))
}

// handleRPC invokes a named method on the script content of the resolved
// surface and returns the interpreted envelope.
func (s *Service) handleRPC(ctx context.Context, payload json.RawMessage) Response {
	var req struct {
		Method      string `json:"method"`
		Args        []any  `json:"args"`
		WindowLabel string `json:"window_label"`
		TimeoutMs   int    `json:"timeout_ms"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return failf("invalid payload for iframe_rpc: %v", err)
	}
	if req.Method == "" {
		return failf("iframe_rpc requires a method name")
	}
	if req.WindowLabel == "" {
		req.WindowLabel = resolve.DefaultWindowLabel
	}

	effective, _, err := resolve.Surface(s.deps.Host, req.WindowLabel)
	if err != nil {
		return fail(err)
	}

	env, err := bridge.Call(ctx, s.deps.Host, effective, req.Method, req.Args,
		time.Duration(req.TimeoutMs)*time.Millisecond)
	if err != nil {
		return fail(err)
	}
	return ok(env)
}
