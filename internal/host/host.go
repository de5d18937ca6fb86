// Package host defines the capability surface this module expects from the
// embedding desktop application: window/surface lookup, window management,
// and the event channel shared with script content. The embedding app
// implements these interfaces; this module never constructs the concrete
// types itself.
package host

import "fmt"

// Window manages a single host window. Both host topologies (a combined
// window+surface, or a window hosting a separate child surface) are exposed
// through this one interface.
type Window interface {
	Title() (string, error)
	Minimize() error
	Maximize() error
	Unmaximize() error
	Close() error
	Show() error
	Hide() error
	Focus() error
	SetPosition(x, y int) error
	SetSize(width, height int) error
	Center() error
	SetFullscreen(fullscreen bool) error
	IsFullscreen() (bool, error)
}

// Surface is an addressable rendering surface capable of running script
// content. Handles are owned by the host and held only for the duration of
// a single operation.
type Surface interface {
	// Label returns the surface's own label, which may differ from the
	// logical window label a caller supplied.
	Label() string
}

// CombinedWindow is a window that is itself the rendering surface
// (single-surface topology).
type CombinedWindow interface {
	Window
	Surface
}

// Bus is the event channel between native code and script content.
type Bus interface {
	// EmitTo sends an event to the surface with the given label.
	EmitTo(label, event string, payload any) error

	// Emit broadcasts an event to every surface.
	Emit(event string, payload any) error

	// Once registers a one-shot listener for event. The returned cancel
	// function deregisters the listener; calling it after the listener has
	// fired is a no-op. The listener fires at most once.
	Once(event string, fn func(payload []byte)) (cancel func())
}

// Host is the full capability bundle the embedding application provides.
type Host interface {
	Bus

	// CombinedWindow looks up a window that is also a surface.
	CombinedWindow(label string) (CombinedWindow, bool)

	// Window looks up a window by label (split topology).
	Window(label string) (Window, bool)

	// Surface looks up a surface directly by its own label.
	Surface(label string) (Surface, bool)
}

// ConnectFunc is set by the embedding application (or a platform bridge
// package) to provide the live Host. Mirrors the platform registration
// hook pattern: nil means no host backend is linked into this build.
var ConnectFunc func() (Host, error)

// Connect returns the registered Host.
func Connect() (Host, error) {
	if ConnectFunc == nil {
		return nil, fmt.Errorf("no host application backend is linked into this build")
	}
	return ConnectFunc()
}
