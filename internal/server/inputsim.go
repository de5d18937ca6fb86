package server

import (
	"context"
	"encoding/json"

	"github.com/appdriver/appdriver/internal/input"
)

// handleSimulateTextInput types text through the OS-level injection
// capability (as opposed to send_text_to_element, which types inside the
// surface's script context).
func (s *Service) handleSimulateTextInput(_ context.Context, payload json.RawMessage) Response {
	if s.deps.Simulator == nil {
		return failf("input simulation is not available in this build")
	}
	var req struct {
		Text           string `json:"text"`
		DelayMs        *int   `json:"delay_ms"`
		InitialDelayMs *int   `json:"initial_delay_ms"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return failf("invalid payload for simulate_text_input: %v", err)
	}
	if req.Text == "" {
		return failf("simulate_text_input requires text")
	}

	delayMs := input.DefaultTypeDelayMs
	if req.DelayMs != nil {
		delayMs = *req.DelayMs
	}
	initialDelayMs := input.DefaultInitialDelayMs
	if req.InitialDelayMs != nil {
		initialDelayMs = *req.InitialDelayMs
	}

	result, err := s.deps.Simulator.TypeText(req.Text, delayMs, initialDelayMs)
	if err != nil {
		return fail(err)
	}
	return ok(result)
}

// handleSimulateMouseMovement moves the pointer to a target point, by
// default along an interpolated path.
func (s *Service) handleSimulateMouseMovement(_ context.Context, payload json.RawMessage) Response {
	if s.deps.Simulator == nil {
		return failf("input simulation is not available in this build")
	}
	var req struct {
		X           *int `json:"x"`
		Y           *int `json:"y"`
		FromX       int  `json:"from_x"`
		FromY       int  `json:"from_y"`
		Steps       int  `json:"steps"`
		StepDelayMs int  `json:"step_delay_ms"`
	}
	if err := json.Unmarshal(payload, &req); err != nil {
		return failf("invalid payload for simulate_mouse_movement: %v", err)
	}
	if req.X == nil || req.Y == nil {
		return failf("simulate_mouse_movement requires x and y coordinates")
	}

	result, err := s.deps.Simulator.MoveMouse(req.FromX, req.FromY, *req.X, *req.Y,
		req.Steps, req.StepDelayMs)
	if err != nil {
		return fail(err)
	}
	return ok(result)
}
