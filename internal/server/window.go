package server

import (
	"context"
	"encoding/json"

	"github.com/appdriver/appdriver/internal/host"
	"github.com/appdriver/appdriver/internal/resolve"
)

// windowRequest is the manage_window payload. Coordinates and dimensions
// are pointers so missing parameters can be told apart from zero.
type windowRequest struct {
	WindowLabel string `json:"window_label"`
	Operation   string `json:"operation"`
	X           *int   `json:"x"`
	Y           *int   `json:"y"`
	Width       *int   `json:"width"`
	Height      *int   `json:"height"`
}

// handleManageWindow performs a single window-management operation,
// delegated to the host's window capability after parameter validation.
func (s *Service) handleManageWindow(_ context.Context, payload json.RawMessage) Response {
	var req windowRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return failf("invalid payload for manage_window: %v", err)
	}
	if req.Operation == "" {
		return failf("manage_window requires an operation")
	}
	if req.WindowLabel == "" {
		req.WindowLabel = resolve.DefaultWindowLabel
	}

	w, err := resolve.Window(s.deps.Host, req.WindowLabel)
	if err != nil {
		return fail(err)
	}

	if err := applyWindowOperation(w, req); err != nil {
		return fail(err)
	}
	return ok(nil)
}

func applyWindowOperation(w host.Window, req windowRequest) error {
	switch req.Operation {
	case "minimize":
		return w.Minimize()
	case "maximize":
		return w.Maximize()
	case "unmaximize":
		return w.Unmaximize()
	case "close":
		return w.Close()
	case "show":
		return w.Show()
	case "hide":
		return w.Hide()
	case "focus":
		return w.Focus()
	case "center":
		return w.Center()
	case "setPosition":
		if req.X == nil || req.Y == nil {
			return errSetPosition
		}
		return w.SetPosition(*req.X, *req.Y)
	case "setSize":
		if req.Width == nil || req.Height == nil {
			return errSetSize
		}
		return w.SetSize(*req.Width, *req.Height)
	case "toggleFullscreen":
		fullscreen, err := w.IsFullscreen()
		if err != nil {
			return err
		}
		return w.SetFullscreen(!fullscreen)
	default:
		return &unknownOperationError{Operation: req.Operation}
	}
}

var (
	errSetPosition = &invalidRequestError{Message: "setPosition requires x and y coordinates"}
	errSetSize     = &invalidRequestError{Message: "setSize requires width and height parameters"}
)

type invalidRequestError struct {
	Message string
}

func (e *invalidRequestError) Error() string { return e.Message }

type unknownOperationError struct {
	Operation string
}

func (e *unknownOperationError) Error() string {
	return "unknown window operation: " + e.Operation
}
