package capture

import (
	"fmt"
	"log/slog"
)

// Options configures a single capture attempt.
type Options struct {
	Title    string // window title resolved from the logical label
	AppHint  string // owning-application name hint, may be empty
	Quality  int    // JPEG quality 1-100 (0 = default 85)
	MaxWidth int    // downscale wider images to this width (0 = default 1920)
}

// Engine matches a logical window against live enumeration results and
// captures its pixels. Every call re-enumerates; the engine holds no
// window state between calls.
type Engine struct {
	primary   Source
	secondary Source // may be nil
	log       *slog.Logger
}

// NewEngine builds an engine over an explicit source chain. secondary may
// be nil on platforms with a single usable enumeration API.
func NewEngine(primary, secondary Source) *Engine {
	return &Engine{
		primary:   primary,
		secondary: secondary,
		log:       slog.Default(),
	}
}

// NewSourcesFunc is set by platform-specific packages via init() and
// provides the enumeration sources for the current OS. Nil means no
// capture backend is linked into this build.
var NewSourcesFunc func() (primary, secondary Source, err error)

// NewPlatformEngine returns an engine over the registered platform
// sources.
func NewPlatformEngine() (*Engine, error) {
	if NewSourcesFunc == nil {
		return nil, fmt.Errorf("window capture is not supported in this build")
	}
	primary, secondary, err := NewSourcesFunc()
	if err != nil {
		return nil, err
	}
	return NewEngine(primary, secondary), nil
}

// Capture enumerates, matches, and captures the target window, then
// converts the pixels to an encoded image. Failures are typed:
// ErrWindowNotFound, *PermissionError, or *CaptureError. No retries; a
// fresh enumeration happens only on a fresh caller request.
func (e *Engine) Capture(opts Options) (*Result, error) {
	primaries, err := e.primary.List()
	if err != nil {
		return nil, &CaptureError{Source: e.primary.Name(), Err: fmt.Errorf("enumeration failed: %w", err)}
	}
	e.log.Debug("enumerated windows", "source", e.primary.Name(), "count", len(primaries),
		"title", opts.Title, "app", opts.AppHint)

	if c := matchPrimary(primaries, opts.Title, opts.AppHint); c != nil {
		e.log.Debug("matched window", "source", e.primary.Name(), "title", c.Title, "app", c.App)
		return e.grab(e.primary, *c, opts)
	}

	if e.secondary != nil {
		secondaries, err := e.secondary.List()
		if err != nil {
			return nil, &CaptureError{Source: e.secondary.Name(), Err: fmt.Errorf("enumeration failed: %w", err)}
		}
		if c := matchSecondary(secondaries, opts.Title, opts.AppHint); c != nil {
			e.log.Debug("matched window", "source", e.secondary.Name(), "title", c.Title, "app", c.App)
			return e.grab(e.secondary, *c, opts)
		}
	}

	if permissionWithheld(primaries) {
		e.log.Warn("window list withheld by OS privacy control", "source", e.primary.Name())
		return nil, &PermissionError{
			Remediation: "grant screen recording permission to the host application in the " +
				"system privacy settings (on macOS: System Settings > Privacy & Security > " +
				"Screen Recording), then restart the application",
		}
	}

	return nil, ErrWindowNotFound
}

// grab captures the matched candidate through its source and runs the
// shared image conversion step.
func (e *Engine) grab(src Source, c Candidate, opts Options) (*Result, error) {
	img, err := src.Capture(c)
	if err != nil {
		return nil, &CaptureError{Source: src.Name(), Err: err}
	}
	res, err := Process(img, opts.Quality, opts.MaxWidth)
	if err != nil {
		return nil, &CaptureError{Source: src.Name(), Err: err}
	}
	e.log.Debug("captured window", "source", src.Name(),
		"width", res.Width, "height", res.Height, "bytes", len(res.Data))
	return res, nil
}
