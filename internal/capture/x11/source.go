//go:build linux

// Package x11 provides the X11 enumeration and capture sources. The
// primary source walks the window manager's EWMH client list, which only
// sees windows the WM manages. The secondary source walks the raw window
// tree, which also sees windows without WM cooperation but reports less
// metadata, so it is only consulted when the client list yields no match.
package x11

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/appdriver/appdriver/internal/capture"
)

func init() {
	capture.NewSourcesFunc = newSources
}

func newSources() (capture.Source, capture.Source, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to X server: %w", err)
	}
	return &clientListSource{xu: xu}, &treeSource{xu: xu}, nil
}

// clientListSource enumerates via _NET_CLIENT_LIST.
type clientListSource struct {
	xu *xgbutil.XUtil
}

func (s *clientListSource) Name() string { return "x11-client-list" }

func (s *clientListSource) List() ([]capture.Candidate, error) {
	wins, err := ewmh.ClientListGet(s.xu)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	cands := make([]capture.Candidate, 0, len(wins))
	for _, win := range wins {
		c := capture.Candidate{
			ID:    uint32(win),
			Title: windowTitle(s.xu, win),
			App:   windowClass(s.xu, win),
		}
		if states, err := ewmh.WmStateGet(s.xu, win); err == nil {
			for _, st := range states {
				if st == "_NET_WM_STATE_HIDDEN" {
					c.Minimized = true
					break
				}
			}
		}
		if geom, err := xwindow.New(s.xu, win).DecorGeometry(); err == nil {
			c.Bounds = image.Rect(geom.X(), geom.Y(),
				geom.X()+geom.Width(), geom.Y()+geom.Height())
		}
		cands = append(cands, c)
	}
	return cands, nil
}

// Capture grabs the window's own drawable, so content is correct even when
// the window is partially covered (on compositing WMs).
func (s *clientListSource) Capture(c capture.Candidate) (image.Image, error) {
	win := xproto.Window(c.ID)
	geom, err := xproto.GetGeometry(s.xu.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get window geometry: %w", err)
	}
	return grabImage(s.xu, xproto.Drawable(win), 0, 0, geom.Width, geom.Height)
}

// treeSource enumerates by querying the root window's child tree directly.
type treeSource struct {
	xu *xgbutil.XUtil
}

func (s *treeSource) Name() string { return "x11-query-tree" }

func (s *treeSource) List() ([]capture.Candidate, error) {
	root := s.xu.RootWin()
	tree, err := xproto.QueryTree(s.xu.Conn(), root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to query window tree: %w", err)
	}

	var cands []capture.Candidate
	for _, win := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(s.xu.Conn(), win).Reply()
		if err != nil || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		// Override-redirect windows are menus, tooltips, and other
		// decoration the WM never manages.
		if attrs.OverrideRedirect {
			continue
		}

		c := capture.Candidate{
			ID:    uint32(win),
			Title: windowTitle(s.xu, win),
			App:   windowClass(s.xu, win),
			Layer: windowLayer(s.xu, win),
		}

		geom, err := xproto.GetGeometry(s.xu.Conn(), xproto.Drawable(win)).Reply()
		if err != nil {
			continue
		}
		pos, err := xproto.TranslateCoordinates(s.xu.Conn(), win, root, 0, 0).Reply()
		if err != nil {
			continue
		}
		c.Bounds = image.Rect(int(pos.DstX), int(pos.DstY),
			int(pos.DstX)+int(geom.Width), int(pos.DstY)+int(geom.Height))

		cands = append(cands, c)
	}
	return cands, nil
}

// Capture reads the candidate's recorded bounds out of the root drawable.
// The tree source may match windows whose own drawable is not readable, so
// the root grab is the reliable path here.
func (s *treeSource) Capture(c capture.Candidate) (image.Image, error) {
	b := c.Bounds
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("window %d has empty bounds", c.ID)
	}
	return grabImage(s.xu, xproto.Drawable(s.xu.RootWin()),
		int16(b.Min.X), int16(b.Min.Y), uint16(b.Dx()), uint16(b.Dy()))
}

// windowTitle prefers the EWMH name and falls back to the ICCCM one.
func windowTitle(xu *xgbutil.XUtil, win xproto.Window) string {
	if name, err := ewmh.WmNameGet(xu, win); err == nil && name != "" {
		return name
	}
	if name, err := icccm.WmNameGet(xu, win); err == nil {
		return name
	}
	return ""
}

// windowClass returns the WM_CLASS class name, the closest X11 has to an
// owning-application name.
func windowClass(xu *xgbutil.XUtil, win xproto.Window) string {
	if class, err := icccm.WmClassGet(xu, win); err == nil {
		return class.Class
	}
	return ""
}

// windowLayer maps the EWMH window type onto the engine's stacking layers:
// normal application windows get LayerNormal, docks/splashes/notifications
// get a non-normal layer so secondary matching skips them.
func windowLayer(xu *xgbutil.XUtil, win xproto.Window) int {
	types, err := ewmh.WmWindowTypeGet(xu, win)
	if err != nil || len(types) == 0 {
		// No type set: assume a normal window.
		return capture.LayerNormal
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" {
			return capture.LayerNormal
		}
	}
	return capture.LayerNormal + 1
}

// grabImage fetches raw ZPixmap data and converts the X server's BGRX byte
// order into an RGBA image.
func grabImage(xu *xgbutil.XUtil, drawable xproto.Drawable, x, y int16, w, h uint16) (image.Image, error) {
	reply, err := xproto.GetImage(xu.Conn(), xproto.ImageFormatZPixmap,
		drawable, x, y, w, h, 0xffffffff).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get image data: %w", err)
	}
	if reply.Depth != 24 && reply.Depth != 32 {
		return nil, fmt.Errorf("unsupported image depth %d", reply.Depth)
	}

	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	data := reply.Data
	for i := 0; i+3 < len(data) && i < len(img.Pix); i += 4 {
		img.Pix[i+0] = data[i+2] // R
		img.Pix[i+1] = data[i+1] // G
		img.Pix[i+2] = data[i+0] // B
		img.Pix[i+3] = 0xff
	}
	return img, nil
}
