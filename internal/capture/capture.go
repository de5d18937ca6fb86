// Package capture locates OS-level windows and captures their pixels.
// Window enumeration is fickle: no single API sees every window class on
// every platform, and some report nothing useful without an OS privacy
// permission. The engine therefore walks a prioritized chain of
// enumeration sources, applies a deterministic first-match heuristic to
// each, and distinguishes "permission denied" from "not found" so callers
// can surface actionable remediation.
package capture

import (
	"errors"
	"fmt"
	"image"
)

// Candidate is a transient window record enumerated from the OS. Candidates
// are produced fresh on every capture attempt and never cached: windows
// open, close, and move between calls.
type Candidate struct {
	Title     string
	App       string // owning application name
	Minimized bool
	Layer     int // stacking layer; LayerNormal for ordinary windows
	Bounds    image.Rectangle
	ID        uint32 // opaque platform window id
}

// LayerNormal is the stacking layer of ordinary application windows.
// Overlay and decoration layers are excluded from secondary-source
// matching.
const LayerNormal = 0

// Source enumerates windows through one platform API and captures pixels
// through the same API's native capture call.
type Source interface {
	Name() string
	List() ([]Candidate, error)
	Capture(c Candidate) (image.Image, error)
}

// Result is a successful capture: encoded image data plus its MIME type.
type Result struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// ErrWindowNotFound reports that no enumeration source matched the target
// window in any pass.
var ErrWindowNotFound = errors.New("window not found using any detection method; ensure the window is visible and not minimized")

// PermissionError reports that window enumeration is blocked by an OS
// privacy control. This is the one failure a human operator, not the
// automation client, must resolve, so it carries remediation text.
type PermissionError struct {
	Remediation string
}

func (e *PermissionError) Error() string {
	return "screen capture permission required: " + e.Remediation
}

// CaptureError reports that an enumeration or capture API call itself
// failed after a window was targeted.
type CaptureError struct {
	Source string
	Err    error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture via %s failed: %v", e.Source, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// shellOwners are process names of OS compositors and shells. When an
// enumeration sees at most one window and every such window belongs to one
// of these, the real window list is being withheld by a privacy control.
var shellOwners = map[string]bool{
	"Window Server": true,
	"gnome-shell":   true,
	"kwin_wayland":  true,
	"kwin_x11":      true,
	"mutter":        true,
	"xfwm4":         true,
}

// belongsToShell reports whether a candidate is owned by the OS
// compositor/shell rather than an application.
func belongsToShell(c Candidate) bool {
	return shellOwners[c.App] || c.Title == "Menubar"
}

// permissionWithheld reports whether an enumeration result looks like a
// permission-gated empty list rather than a genuine miss.
func permissionWithheld(cands []Candidate) bool {
	if len(cands) > 1 {
		return false
	}
	for _, c := range cands {
		if !belongsToShell(c) {
			return false
		}
	}
	return true
}
