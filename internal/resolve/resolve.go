// Package resolve maps caller-supplied logical window labels to concrete
// host windows and surfaces. It is the single chokepoint that hides whether
// the host runs a combined window+surface or a split window/child-surface
// topology, so the ambiguity never leaks into handlers.
package resolve

import (
	"fmt"

	"github.com/appdriver/appdriver/internal/host"
)

const (
	// DefaultWindowLabel is the label callers get when they don't name one.
	DefaultWindowLabel = "main"

	// childSurfaceLabel is the fixed convention for the split topology:
	// a window labeled "main" may host a child surface labeled "preview".
	childSurfaceLabel = "preview"
)

// NotFoundError reports that no window or surface exists under a label.
type NotFoundError struct {
	Label string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no window or surface found for label %q", e.Label)
}

// Surface resolves a logical label to a concrete surface and its effective
// label (the label events must be addressed to). Lookup order:
//
//  1. combined window+surface under the label
//  2. window under the label with the conventional child surface
//  3. direct surface lookup under the label
func Surface(h host.Host, label string) (string, host.Surface, error) {
	if cw, ok := h.CombinedWindow(label); ok {
		return label, cw, nil
	}
	if label == DefaultWindowLabel {
		if _, ok := h.Window(label); ok {
			if s, ok := h.Surface(childSurfaceLabel); ok {
				return childSurfaceLabel, s, nil
			}
		}
	}
	if s, ok := h.Surface(label); ok {
		return label, s, nil
	}
	return "", nil, &NotFoundError{Label: label}
}

// Window resolves a logical label to a manageable window, trying the
// combined variant first and falling back to a plain window.
func Window(h host.Host, label string) (host.Window, error) {
	if cw, ok := h.CombinedWindow(label); ok {
		return cw, nil
	}
	if w, ok := h.Window(label); ok {
		return w, nil
	}
	return nil, &NotFoundError{Label: label}
}
