package ebitenhost

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	text "github.com/hajimehoshi/ebiten/v2/text/v2"

	"heboris/ygs"
)

// refreshRate is reported for every mode; ebiten does not expose the
// monitor's rate.
const refreshRate = 60

func (h *Host) Init() error {
	select {
	case <-h.ready:
		return nil
	default:
		return ErrNotRunning
	}
}

func (h *Host) Quit() {}

func (h *Host) monitor(display int) (*ebiten.MonitorType, error) {
	ms := ebiten.AppendMonitors(nil)
	if display < 0 || display >= len(ms) {
		return nil, fmt.Errorf("ebitenhost: no display %d (have %d)", display, len(ms))
	}
	return ms[display], nil
}

func (h *Host) NumDisplays() (int, error) {
	n := len(ebiten.AppendMonitors(nil))
	if n == 0 {
		return 0, fmt.Errorf("ebitenhost: no displays")
	}
	return n, nil
}

// DesktopDisplayMode is the monitor size in device pixels.
func (h *Host) DesktopDisplayMode(display int) (ygs.DisplayMode, error) {
	m, err := h.monitor(display)
	if err != nil {
		return ygs.DisplayMode{}, err
	}
	w, hh := m.Size()
	s := m.DeviceScaleFactor()
	return ygs.DisplayMode{
		W:           int(math.Round(float64(w) * s)),
		H:           int(math.Round(float64(hh) * s)),
		RefreshRate: refreshRate,
	}, nil
}

func (h *Host) modes(display int) ([]ygs.DisplayMode, error) {
	d, err := h.DesktopDisplayMode(display)
	if err != nil {
		return nil, err
	}
	return modeList(d.W, d.H, d.RefreshRate), nil
}

func (h *Host) NumDisplayModes(display int) (int, error) {
	ms, err := h.modes(display)
	return len(ms), err
}

func (h *Host) DisplayMode(display, index int) (ygs.DisplayMode, error) {
	ms, err := h.modes(display)
	if err != nil {
		return ygs.DisplayMode{}, err
	}
	if index < 0 || index >= len(ms) {
		return ygs.DisplayMode{}, fmt.Errorf("ebitenhost: display %d has no mode %d", display, index)
	}
	return ms[index], nil
}

// CreateWindow configures ebiten's single window.
func (h *Host) CreateWindow(spec ygs.WindowSpec) (ygs.Window, error) {
	if h.win != nil && !h.win.destroyed {
		return nil, fmt.Errorf("ebitenhost: window already exists")
	}
	ebiten.SetWindowTitle(spec.Title)
	w := &window{host: h}
	w.SetPosition(spec.Display)
	switch spec.Type {
	case ygs.Windowed, ygs.WindowMaximized:
		ebiten.SetFullscreen(false)
		ebiten.SetWindowSize(spec.W, spec.H)
		w.SetResizable(resizable(spec.Type))
		if spec.Type == ygs.WindowMaximized {
			w.Maximize()
		}
	case ygs.FullscreenDesktop, ygs.Fullscreen:
		ebiten.SetFullscreen(true)
	default:
		return nil, fmt.Errorf("%w: %d", ygs.ErrWindowType, spec.Type)
	}
	h.win = w
	h.log.Debug("window created", "w", spec.W, "h", spec.H, "display", spec.Display)
	return w, nil
}

func (h *Host) CreateRenderer(w ygs.Window) (ygs.Renderer, error) {
	if _, ok := w.(*window); !ok {
		return nil, fmt.Errorf("ebitenhost: foreign window %T", w)
	}
	if h.ren != nil && !h.ren.destroyed {
		return nil, fmt.Errorf("ebitenhost: renderer already exists")
	}
	h.ren = newRenderer(h)
	return h.ren, nil
}

func (h *Host) ShowCursor(show bool) error {
	if show {
		ebiten.SetCursorMode(ebiten.CursorModeVisible)
	} else {
		ebiten.SetCursorMode(ebiten.CursorModeHidden)
	}
	return nil
}

func (h *Host) CursorShown() bool { return ebiten.CursorMode() == ebiten.CursorModeVisible }

type font struct {
	face *text.GoTextFace
}

func (f *font) Close() {}

// OpenFont parses a TrueType or OpenType font at size pixels.
func (h *Host) OpenFont(r io.Reader, size int) (ygs.Font, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	src, err := text.NewGoTextFaceSource(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("ebitenhost: parse font: %w", err)
	}
	return &font{face: &text.GoTextFace{Source: src, Size: float64(size)}}, nil
}
