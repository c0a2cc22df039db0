package ebitenhost

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"heboris/ygs"
)

type window struct {
	host      *Host
	mode      ygs.DisplayMode
	destroyed bool
}

// SetPosition moves the window to display. ebiten centres it there.
func (w *window) SetPosition(display int) {
	m, err := w.host.monitor(display)
	if err != nil {
		w.host.log.Debug("set position", "err", err)
		return
	}
	ebiten.SetMonitor(m)
}

func (w *window) SetSize(width, height int) { ebiten.SetWindowSize(width, height) }

// resizable reports whether a window of type t starts out resizable.
func resizable(t ygs.ScreenMode) bool {
	return t == ygs.Windowed || t == ygs.WindowMaximized
}

func (w *window) SetResizable(on bool) {
	if on {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	}
}

func (w *window) Maximize() { ebiten.MaximizeWindow() }
func (w *window) Restore()  { ebiten.RestoreWindow() }

// SetFullscreen cannot change the monitor's video mode, so Fullscreen
// behaves like FullscreenDesktop.
func (w *window) SetFullscreen(t ygs.ScreenMode) error {
	switch t {
	case ygs.Windowed, ygs.WindowMaximized:
		ebiten.SetFullscreen(false)
	case ygs.FullscreenDesktop, ygs.Fullscreen:
		ebiten.SetFullscreen(true)
	default:
		return fmt.Errorf("%w: %d", ygs.ErrWindowType, t)
	}
	return nil
}

// SetDisplayMode only records m; the scaler fits the frame to whatever the
// monitor is running.
func (w *window) SetDisplayMode(m ygs.DisplayMode) error {
	w.mode = m
	w.host.log.Debug("display mode", "w", m.W, "h", m.H)
	return nil
}

// Destroy leaves ebiten's window open; a new CreateWindow reconfigures it.
func (w *window) Destroy() { w.destroyed = true }
