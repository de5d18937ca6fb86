// Package bridge issues request/response calls against script content
// running inside a host surface. Each call registers a one-shot response
// listener before emitting the request, then blocks on a timeout-bounded
// channel wait. Every event kind shares one fixed response event name, so
// at most one call per event kind per surface may be in flight at a time;
// concurrent same-kind calls race and may cross-deliver replies (caller
// responsibility, not serialized here).
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/appdriver/appdriver/internal/host"
)

// Event names shared with the script side for generic RPC.
const (
	rpcEvent         = "iframe-rpc"
	rpcResponseEvent = "iframe-rpc-response"
)

// DefaultCallTimeout bounds generic RPC calls when the caller doesn't
// supply a timeout.
const DefaultCallTimeout = 10 * time.Second

// Envelope is the interpreted result of a bridged call.
type Envelope struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// TimeoutError reports that no reply arrived within the budget. The
// orphaned listener is inert: its reply channel is buffered, so a late
// reply is silently discarded.
type TimeoutError struct {
	Event   string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %s reply", e.Timeout, e.Event)
}

// UnavailableError reports that the request event could not be emitted.
type UnavailableError struct {
	Event string
	Err   error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("failed to emit %s event: %v", e.Event, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// request performs one listener-before-emit round trip and returns the raw
// reply payload. Registering the listener first is the ordering invariant
// the whole bridge depends on: a reply emitted synchronously during the
// request emit must still be received.
func request(ctx context.Context, bus host.Bus, label, event, responseEvent string, payload any, timeout time.Duration) ([]byte, error) {
	reply := make(chan []byte, 1)
	cancel := bus.Once(responseEvent, func(p []byte) {
		select {
		case reply <- p:
		default:
		}
	})
	defer cancel()

	if err := bus.EmitTo(label, event, payload); err != nil {
		return nil, &UnavailableError{Event: event, Err: err}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case p := <-reply:
		return p, nil
	case <-timer.C:
		slog.Warn("bridge call timed out", "event", event, "label", label, "timeout", timeout)
		return nil, &TimeoutError{Event: event, Timeout: timeout}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Call invokes a named RPC method on the surface with the given label and
// interprets the reply. A zero timeout means DefaultCallTimeout.
func Call(ctx context.Context, bus host.Bus, surfaceLabel, method string, args []any, timeout time.Duration) (Envelope, error) {
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	if args == nil {
		args = []any{}
	}

	payload := map[string]any{
		"method": method,
		"args":   args,
	}

	raw, err := request(ctx, bus, surfaceLabel, rpcEvent, rpcResponseEvent, payload, timeout)
	if err != nil {
		return Envelope{}, err
	}

	var reply map[string]json.RawMessage
	if err := json.Unmarshal(raw, &reply); err != nil {
		return Envelope{}, fmt.Errorf("failed to parse RPC reply: %w", err)
	}

	// The script-side responder always includes an "error" key for
	// uniformity; null, false, and "" all mean "no error".
	if errVal, ok := reply["error"]; ok {
		if msg, real := realError(errVal); real {
			return Envelope{Success: false, Error: msg}, nil
		}
	}

	return Envelope{Success: true, Result: reply["result"]}, nil
}

// realError decides whether a reply's error field carries a genuine error
// and, if so, returns its text.
func realError(raw json.RawMessage) (string, bool) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw), true
	}
	switch val := v.(type) {
	case nil:
		return "", false
	case bool:
		if !val {
			return "", false
		}
		return string(raw), true
	case string:
		if val == "" {
			return "", false
		}
		return val, true
	default:
		return string(raw), true
	}
}
