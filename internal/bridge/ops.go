package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/appdriver/appdriver/internal/host"
)

// Per-operation event names. Each request event is paired with a fixed
// response event the script side replies on.
const (
	domEvent            = "got-dom-content"
	domResponseEvent    = "got-dom-content-response"
	locateEvent         = "get-element-position"
	locateResponseEvent = "get-element-position-response"
	typeEvent           = "send-text-to-element"
	typeResponseEvent   = "send-text-to-element-response"
	shotEvent           = "capture-screenshot"
	shotResponseEvent   = "capture-screenshot-response"
)

// Per-operation timeouts. Typing and rendering are given longer budgets.
const (
	domTimeout    = 5 * time.Second
	locateTimeout = 5 * time.Second
	typeTimeout   = 30 * time.Second
	shotTimeout   = 30 * time.Second
)

// FetchDOMText retrieves the rendered DOM text from the surface with the
// given label. An empty reply is an error: the script side always has at
// least a document element to report.
func FetchDOMText(ctx context.Context, bus host.Bus, surfaceLabel string) (string, error) {
	raw, err := request(ctx, bus, surfaceLabel, domEvent, domResponseEvent, "", domTimeout)
	if err != nil {
		return "", err
	}

	text := string(raw)
	// Replies arrive as JSON; unwrap a quoted string payload.
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		text = s
	}
	if text == "" {
		return "", fmt.Errorf("retrieved DOM text is empty")
	}
	return text, nil
}

// LocateRequest names an element inside the surface and what to do once
// it is found.
type LocateRequest struct {
	SelectorType   string
	SelectorValue  string
	ShouldClick    bool
	RawCoordinates bool
}

// LocateElement asks the script side to find (and optionally click) an
// element, returning the operation's data payload.
func LocateElement(ctx context.Context, bus host.Bus, surfaceLabel string, req LocateRequest) (json.RawMessage, error) {
	payload := map[string]any{
		"windowLabel":    surfaceLabel,
		"selectorType":   req.SelectorType,
		"selectorValue":  req.SelectorValue,
		"shouldClick":    req.ShouldClick,
		"rawCoordinates": req.RawCoordinates,
	}
	raw, err := request(ctx, bus, surfaceLabel, locateEvent, locateResponseEvent, payload, locateTimeout)
	if err != nil {
		return nil, err
	}
	return dataReply(raw)
}

// TypeRequest carries text to inject into an element, character by
// character when DelayMs > 0.
type TypeRequest struct {
	SelectorType  string
	SelectorValue string
	Text          string
	DelayMs       int
}

// TypeIntoElement asks the script side to focus an element and type text
// into it.
func TypeIntoElement(ctx context.Context, bus host.Bus, surfaceLabel string, req TypeRequest) (json.RawMessage, error) {
	payload := map[string]any{
		"selectorType":  req.SelectorType,
		"selectorValue": req.SelectorValue,
		"text":          req.Text,
		"delayMs":       req.DelayMs,
	}
	raw, err := request(ctx, bus, surfaceLabel, typeEvent, typeResponseEvent, payload, typeTimeout)
	if err != nil {
		return nil, err
	}
	return dataReply(raw)
}

// CaptureViaScript captures the surface's content from inside the script
// context. Unlike native capture this needs no OS screen-capture
// permission and no window focus. Returns the encoded image data URL.
func CaptureViaScript(ctx context.Context, bus host.Bus, surfaceLabel string, quality, maxWidth int) (json.RawMessage, error) {
	payload := map[string]any{
		"quality":  quality,
		"maxWidth": maxWidth,
	}

	reply := make(chan []byte, 1)
	cancel := bus.Once(shotResponseEvent, func(p []byte) {
		select {
		case reply <- p:
		default:
		}
	})
	defer cancel()

	// Addressed emit first, then broadcast: addressed delivery does not
	// reach child surfaces on every host, and the broadcast is harmless
	// given the single listener.
	if err := bus.EmitTo(surfaceLabel, shotEvent, payload); err != nil {
		slog.Warn("addressed screenshot emit failed, relying on broadcast", "label", surfaceLabel, "err", err)
	}
	if err := bus.Emit(shotEvent, payload); err != nil {
		return nil, &UnavailableError{Event: shotEvent, Err: err}
	}

	timer := time.NewTimer(shotTimeout)
	defer timer.Stop()

	select {
	case p := <-reply:
		return dataReply(p)
	case <-timer.C:
		return nil, &TimeoutError{Event: shotEvent, Timeout: shotTimeout}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// dataReply parses a {success, data, error} reply and extracts the data
// payload or the reported error.
func dataReply(raw []byte) (json.RawMessage, error) {
	var reply struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   *string         `json:"error"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("failed to parse reply: %w", err)
	}
	if !reply.Success {
		msg := "unknown error"
		if reply.Error != nil && *reply.Error != "" {
			msg = *reply.Error
		}
		return nil, fmt.Errorf("%s", msg)
	}
	return reply.Data, nil
}
