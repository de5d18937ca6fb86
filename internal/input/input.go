// Package input simulates keyboard and mouse activity through a host
// injection capability. The low-level injection primitives are provided by
// the embedding application; this package only drives pacing (initial
// delay, per-character delay, interpolated pointer paths) and reporting.
package input

import (
	"fmt"
	"time"
)

// Injector is the host's low-level injection capability.
type Injector interface {
	// TypeText injects the whole string atomically.
	TypeText(text string) error

	// MoveMouse moves the pointer to absolute screen coordinates.
	MoveMouse(x, y int) error
}

// Default pacing applied when a request leaves the fields unset.
const (
	DefaultTypeDelayMs    = 20
	DefaultInitialDelayMs = 500
	DefaultMouseSteps     = 20
)

// TypeResult reports a completed text-input simulation.
type TypeResult struct {
	CharsTyped int   `json:"chars_typed"`
	DurationMs int64 `json:"duration_ms"`
}

// MoveResult reports a completed mouse movement.
type MoveResult struct {
	Steps      int   `json:"steps"`
	DurationMs int64 `json:"duration_ms"`
}

// Simulator paces injection calls. The sleep and now functions are
// replaceable so tests can run without real delays.
type Simulator struct {
	inj   Injector
	sleep func(time.Duration)
	now   func() time.Time
}

// NewSimulator wraps an injector with real pacing.
func NewSimulator(inj Injector) *Simulator {
	return &Simulator{inj: inj, sleep: time.Sleep, now: time.Now}
}

// TypeText waits initialDelayMs, then injects text: atomically when
// delayMs is zero, otherwise one character at a time with delayMs between
// characters. Character counting is rune-based.
func (s *Simulator) TypeText(text string, delayMs, initialDelayMs int) (TypeResult, error) {
	if initialDelayMs > 0 {
		s.sleep(time.Duration(initialDelayMs) * time.Millisecond)
	}

	start := s.now()
	runes := []rune(text)

	if delayMs == 0 {
		if err := s.inj.TypeText(text); err != nil {
			return TypeResult{}, fmt.Errorf("failed to inject text: %w", err)
		}
	} else {
		for _, r := range runes {
			if err := s.inj.TypeText(string(r)); err != nil {
				return TypeResult{}, fmt.Errorf("failed to inject text: %w", err)
			}
			s.sleep(time.Duration(delayMs) * time.Millisecond)
		}
	}

	return TypeResult{
		CharsTyped: len(runes),
		DurationMs: s.now().Sub(start).Milliseconds(),
	}, nil
}

// MoveMouse moves the pointer from (fromX, fromY) to (toX, toY) along a
// straight interpolated path. steps <= 1 jumps directly to the target.
func (s *Simulator) MoveMouse(fromX, fromY, toX, toY, steps, stepDelayMs int) (MoveResult, error) {
	if steps <= 0 {
		steps = DefaultMouseSteps
	}

	start := s.now()
	if steps == 1 {
		if err := s.inj.MoveMouse(toX, toY); err != nil {
			return MoveResult{}, fmt.Errorf("failed to move pointer: %w", err)
		}
	} else {
		for i := 1; i <= steps; i++ {
			x := fromX + (toX-fromX)*i/steps
			y := fromY + (toY-fromY)*i/steps
			if err := s.inj.MoveMouse(x, y); err != nil {
				return MoveResult{}, fmt.Errorf("failed to move pointer: %w", err)
			}
			if stepDelayMs > 0 && i < steps {
				s.sleep(time.Duration(stepDelayMs) * time.Millisecond)
			}
		}
	}

	return MoveResult{
		Steps:      steps,
		DurationMs: s.now().Sub(start).Milliseconds(),
	}, nil
}

// NewInjectorFunc is set by platform or embedding packages via init() to
// provide the live injection backend. Nil means input simulation is not
// available in this build.
var NewInjectorFunc func() (Injector, error)

// NewInjector returns the registered injection backend.
func NewInjector() (Injector, error) {
	if NewInjectorFunc == nil {
		return nil, fmt.Errorf("input simulation is not supported in this build")
	}
	return NewInjectorFunc()
}
