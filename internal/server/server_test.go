package server

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/appdriver/appdriver/internal/host"
	"github.com/appdriver/appdriver/internal/input"
)

// stubWindow records window-management calls.
type stubWindow struct {
	title      string
	calls      []string
	x, y       int
	w, h       int
	fullscreen bool
}

func (w *stubWindow) record(name string) error {
	w.calls = append(w.calls, name)
	return nil
}

func (w *stubWindow) Title() (string, error) { return w.title, nil }
func (w *stubWindow) Minimize() error        { return w.record("minimize") }
func (w *stubWindow) Maximize() error        { return w.record("maximize") }
func (w *stubWindow) Unmaximize() error      { return w.record("unmaximize") }
func (w *stubWindow) Close() error           { return w.record("close") }
func (w *stubWindow) Show() error            { return w.record("show") }
func (w *stubWindow) Hide() error            { return w.record("hide") }
func (w *stubWindow) Focus() error           { return w.record("focus") }
func (w *stubWindow) Center() error          { return w.record("center") }

func (w *stubWindow) SetPosition(x, y int) error {
	w.x, w.y = x, y
	return w.record("setPosition")
}

func (w *stubWindow) SetSize(width, height int) error {
	w.w, w.h = width, height
	return w.record("setSize")
}

func (w *stubWindow) SetFullscreen(fullscreen bool) error {
	w.fullscreen = fullscreen
	return w.record("setFullscreen")
}

func (w *stubWindow) IsFullscreen() (bool, error) { return w.fullscreen, nil }

type stubSurface struct{ label string }

func (s *stubSurface) Label() string { return s.label }

type stubCombined struct {
	stubWindow
	stubSurface
}

// fakeHost implements host.Host over fixed lookup maps and a bus that can
// reply synchronously from onEmitTo.
type fakeHost struct {
	combined  map[string]host.CombinedWindow
	windows   map[string]host.Window
	surfaces  map[string]host.Surface
	listeners map[string]func([]byte)
	emitted   []string
	onEmitTo  func(label, event string, payload any)
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		combined:  map[string]host.CombinedWindow{},
		windows:   map[string]host.Window{},
		surfaces:  map[string]host.Surface{},
		listeners: map[string]func([]byte){},
	}
}

func (h *fakeHost) CombinedWindow(label string) (host.CombinedWindow, bool) {
	w, ok := h.combined[label]
	return w, ok
}

func (h *fakeHost) Window(label string) (host.Window, bool) {
	w, ok := h.windows[label]
	return w, ok
}

func (h *fakeHost) Surface(label string) (host.Surface, bool) {
	s, ok := h.surfaces[label]
	return s, ok
}

func (h *fakeHost) EmitTo(label, event string, payload any) error {
	h.emitted = append(h.emitted, event)
	if h.onEmitTo != nil {
		h.onEmitTo(label, event, payload)
	}
	return nil
}

func (h *fakeHost) Emit(event string, payload any) error {
	h.emitted = append(h.emitted, event)
	return nil
}

func (h *fakeHost) Once(event string, fn func([]byte)) func() {
	h.listeners[event] = fn
	return func() { delete(h.listeners, event) }
}

func (h *fakeHost) reply(event, payload string) {
	if fn, ok := h.listeners[event]; ok {
		fn([]byte(payload))
	}
}

func newTestService(h host.Host) *Service {
	return NewService(Deps{Host: h, AppName: "MyApp"})
}

func TestDispatchUnknownCommand(t *testing.T) {
	s := newTestService(newFakeHost())
	resp := s.Dispatch(context.Background(), "explode", nil)
	if resp.Success {
		t.Fatal("unknown command reported success")
	}
	if !strings.Contains(resp.Error, "unknown command") {
		t.Errorf("error = %q, want unknown-command text", resp.Error)
	}
}

func TestCommandsRegistered(t *testing.T) {
	s := newTestService(newFakeHost())
	want := []string{
		"ping", "take_screenshot", "capture_screenshot", "get_dom",
		"get_element_position", "send_text_to_element", "iframe_rpc",
		"manage_window", "simulate_text_input", "simulate_mouse_movement",
	}
	got := map[string]bool{}
	for _, name := range s.Commands() {
		got[name] = true
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("command %q is not registered", name)
		}
	}
}

func TestPingEchoesValue(t *testing.T) {
	s := newTestService(newFakeHost())
	resp := s.Dispatch(context.Background(), "ping", json.RawMessage(`{"value": "hello"}`))
	if !resp.Success {
		t.Fatalf("ping failed: %s", resp.Error)
	}
	data := resp.Data.(map[string]any)
	if data["value"] != "hello" {
		t.Errorf("echoed value = %v, want hello", data["value"])
	}
}

func TestParseWindowLabel(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"empty payload", "", "main"},
		{"null payload", "null", "main"},
		{"bare string", `"settings"`, "settings"},
		{"empty string", `""`, "main"},
		{"object", `{"window_label": "settings"}`, "settings"},
		{"object without label", `{}`, "main"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseWindowLabel(json.RawMessage(tt.payload))
			if err != nil {
				t.Fatalf("parseWindowLabel failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("label = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := parseWindowLabel(json.RawMessage(`123`)); err == nil {
		t.Error("numeric payload accepted")
	}
}

func TestTakeScreenshotWithoutEngine(t *testing.T) {
	s := newTestService(newFakeHost())
	resp := s.Dispatch(context.Background(), "take_screenshot", nil)
	if resp.Success {
		t.Fatal("expected failure with no capture engine")
	}
	if !strings.Contains(resp.Error, "not available") {
		t.Errorf("error = %q, want unavailability text", resp.Error)
	}
}

func TestGetDOM(t *testing.T) {
	h := newFakeHost()
	h.combined["main"] = &stubCombined{stubSurface: stubSurface{label: "main"}}
	h.onEmitTo = func(label, event string, payload any) {
		if event == "got-dom-content" {
			h.reply("got-dom-content-response", `"<body>text</body>"`)
		}
	}
	s := newTestService(h)

	resp := s.Dispatch(context.Background(), "get_dom", json.RawMessage(`"main"`))
	if !resp.Success {
		t.Fatalf("get_dom failed: %s", resp.Error)
	}
	if resp.Data != "<body>text</body>" {
		t.Errorf("data = %v", resp.Data)
	}
}

func TestGetDOMUnknownLabel(t *testing.T) {
	s := newTestService(newFakeHost())
	resp := s.Dispatch(context.Background(), "get_dom", json.RawMessage(`"ghost"`))
	if resp.Success {
		t.Fatal("expected failure for unknown label")
	}
	if !strings.Contains(resp.Error, "ghost") {
		t.Errorf("error = %q, want the missing label named", resp.Error)
	}
}

func TestGetDOMRoutesToChildSurface(t *testing.T) {
	// Split topology: window "main" plus child surface "preview". The
	// bridge traffic must address the child's own label.
	h := newFakeHost()
	h.windows["main"] = &stubWindow{}
	h.surfaces["preview"] = &stubSurface{label: "preview"}
	var emittedTo string
	h.onEmitTo = func(label, event string, payload any) {
		emittedTo = label
		h.reply("got-dom-content-response", `"<body/>"`)
	}
	s := newTestService(h)

	resp := s.Dispatch(context.Background(), "get_dom", json.RawMessage(`"main"`))
	if !resp.Success {
		t.Fatalf("get_dom failed: %s", resp.Error)
	}
	if emittedTo != "preview" {
		t.Errorf("emitted to %q, want the child surface label", emittedTo)
	}
}

func TestGetElementPositionRequiresSelectors(t *testing.T) {
	s := newTestService(newFakeHost())
	resp := s.Dispatch(context.Background(), "get_element_position",
		json.RawMessage(`{"selector_type": "id"}`))
	if resp.Success {
		t.Fatal("expected failure without selector_value")
	}
	if !strings.Contains(resp.Error, "selector_value") {
		t.Errorf("error = %q, want the missing field named", resp.Error)
	}
}

func TestSendTextToElementRequiresSelectors(t *testing.T) {
	s := newTestService(newFakeHost())
	resp := s.Dispatch(context.Background(), "send_text_to_element",
		json.RawMessage(`{"text": "hi"}`))
	if resp.Success {
		t.Fatal("expected failure without selectors")
	}
}

func TestIframeRPC(t *testing.T) {
	h := newFakeHost()
	h.combined["main"] = &stubCombined{stubSurface: stubSurface{label: "main"}}
	h.onEmitTo = func(label, event string, payload any) {
		if event == "iframe-rpc" {
			h.reply("iframe-rpc-response", `{"result": {"state": "ready"}, "error": null}`)
		}
	}
	s := newTestService(h)

	resp := s.Dispatch(context.Background(), "iframe_rpc",
		json.RawMessage(`{"method": "getState"}`))
	if !resp.Success {
		t.Fatalf("iframe_rpc failed: %s", resp.Error)
	}
}

func TestIframeRPCRequiresMethod(t *testing.T) {
	s := newTestService(newFakeHost())
	resp := s.Dispatch(context.Background(), "iframe_rpc", json.RawMessage(`{}`))
	if resp.Success {
		t.Fatal("expected failure without a method name")
	}
}

func TestSimulateTextInput(t *testing.T) {
	inj := &recordingInjector{}
	s := NewService(Deps{Host: newFakeHost(), Simulator: input.NewSimulator(inj)})

	resp := s.Dispatch(context.Background(), "simulate_text_input",
		json.RawMessage(`{"text": "ok", "delay_ms": 0, "initial_delay_ms": 0}`))
	if !resp.Success {
		t.Fatalf("simulate_text_input failed: %s", resp.Error)
	}
	if len(inj.typed) != 1 || inj.typed[0] != "ok" {
		t.Errorf("injections = %v", inj.typed)
	}
	res, ok := resp.Data.(input.TypeResult)
	if !ok {
		t.Fatalf("data type = %T, want input.TypeResult", resp.Data)
	}
	if res.CharsTyped != 2 {
		t.Errorf("chars typed = %d, want 2", res.CharsTyped)
	}
}

func TestSimulateTextInputRequiresText(t *testing.T) {
	inj := &recordingInjector{}
	s := NewService(Deps{Host: newFakeHost(), Simulator: input.NewSimulator(inj)})

	resp := s.Dispatch(context.Background(), "simulate_text_input", json.RawMessage(`{}`))
	if resp.Success {
		t.Fatal("expected failure without text")
	}
}

func TestSimulateTextInputWithoutSimulator(t *testing.T) {
	s := newTestService(newFakeHost())
	resp := s.Dispatch(context.Background(), "simulate_text_input",
		json.RawMessage(`{"text": "hi"}`))
	if resp.Success {
		t.Fatal("expected failure with no simulator")
	}
}

func TestSimulateMouseMovement(t *testing.T) {
	inj := &recordingInjector{}
	s := NewService(Deps{Host: newFakeHost(), Simulator: input.NewSimulator(inj)})

	resp := s.Dispatch(context.Background(), "simulate_mouse_movement",
		json.RawMessage(`{"x": 100, "y": 50, "steps": 2}`))
	if !resp.Success {
		t.Fatalf("simulate_mouse_movement failed: %s", resp.Error)
	}
	if last := inj.moves[len(inj.moves)-1]; last != [2]int{100, 50} {
		t.Errorf("final position = %v, want 100,50", last)
	}
}

func TestSimulateMouseMovementRequiresTarget(t *testing.T) {
	inj := &recordingInjector{}
	s := NewService(Deps{Host: newFakeHost(), Simulator: input.NewSimulator(inj)})

	resp := s.Dispatch(context.Background(), "simulate_mouse_movement",
		json.RawMessage(`{"x": 100}`))
	if resp.Success {
		t.Fatal("expected failure without y")
	}
}

// recordingInjector mirrors the input package's test double.
type recordingInjector struct {
	typed []string
	moves [][2]int
}

func (r *recordingInjector) TypeText(text string) error {
	r.typed = append(r.typed, text)
	return nil
}

func (r *recordingInjector) MoveMouse(x, y int) error {
	r.moves = append(r.moves, [2]int{x, y})
	return nil
}
