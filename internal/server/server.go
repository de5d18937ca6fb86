// Package server hosts the action handlers: thin orchestrators that parse
// a client request, resolve the target window or surface, perform exactly
// one capture, bridge call, window-management call, or input-simulation
// call, and map the outcome into a uniform response envelope. No failure
// propagates past a handler boundary.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/appdriver/appdriver/internal/capture"
	"github.com/appdriver/appdriver/internal/host"
	"github.com/appdriver/appdriver/internal/input"
	"github.com/appdriver/appdriver/internal/resolve"
)

// Response is the uniform envelope every handler returns to the outer
// dispatcher.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func ok(data any) Response {
	return Response{Success: true, Data: data}
}

func fail(err error) Response {
	return Response{Success: false, Error: err.Error()}
}

func failf(format string, args ...any) Response {
	return Response{Success: false, Error: fmt.Sprintf(format, args...)}
}

// Deps bundles the collaborators handlers operate on. Engine and Simulator
// may be nil when the corresponding capability is not linked into the
// build; the affected handlers then return a failure envelope.
type Deps struct {
	Host      host.Host
	Engine    *capture.Engine
	Simulator *input.Simulator

	// AppName is the owning-application hint used for capture matching.
	AppName string
}

// HandlerFunc handles one parsed client request.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) Response

// Service owns the handler registry.
type Service struct {
	deps     Deps
	log      *slog.Logger
	handlers map[string]HandlerFunc
}

// NewService builds a Service over the given collaborators.
func NewService(deps Deps) *Service {
	s := &Service{
		deps: deps,
		log:  slog.Default(),
	}
	s.handlers = map[string]HandlerFunc{
		"ping":                    s.handlePing,
		"take_screenshot":         s.handleTakeScreenshot,
		"capture_screenshot":      s.handleCaptureScreenshot,
		"get_dom":                 s.handleGetDOM,
		"get_element_position":    s.handleGetElementPosition,
		"send_text_to_element":    s.handleSendTextToElement,
		"iframe_rpc":              s.handleRPC,
		"manage_window":           s.handleManageWindow,
		"simulate_text_input":     s.handleSimulateTextInput,
		"simulate_mouse_movement": s.handleSimulateMouseMovement,
	}
	return s
}

// Commands returns the registered command names.
func (s *Service) Commands() []string {
	names := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		names = append(names, name)
	}
	return names
}

// Dispatch routes a named command to its handler. This is the entry point
// the outer socket server calls with the parsed request.
func (s *Service) Dispatch(ctx context.Context, command string, payload json.RawMessage) Response {
	h, ok := s.handlers[command]
	if !ok {
		return failf("unknown command: %s", command)
	}
	resp := h(ctx, payload)
	if !resp.Success {
		s.log.Debug("command failed", "command", command, "error", resp.Error)
	}
	return resp
}

// parseWindowLabel accepts the two inbound payload shapes for
// label-addressed operations: a bare string label, or an object with an
// optional window_label field. Absent labels default to "main".
func parseWindowLabel(payload json.RawMessage) (string, error) {
	if len(payload) == 0 || string(payload) == "null" {
		return resolve.DefaultWindowLabel, nil
	}
	var s string
	if err := json.Unmarshal(payload, &s); err == nil {
		if s == "" {
			return resolve.DefaultWindowLabel, nil
		}
		return s, nil
	}
	var obj struct {
		WindowLabel string `json:"window_label"`
	}
	if err := json.Unmarshal(payload, &obj); err != nil {
		return "", fmt.Errorf("invalid payload: expected a label string or an object with window_label")
	}
	if obj.WindowLabel == "" {
		return resolve.DefaultWindowLabel, nil
	}
	return obj.WindowLabel, nil
}
