package ygs

import (
	"fmt"
)

// ScreenMode packs the window type and the display flags of a screen
// configuration into one word, as stored in the configuration record.
type ScreenMode int32

// Window types, held in the WindowTypeMask bits.
const (
	Windowed ScreenMode = iota
	WindowMaximized
	FullscreenDesktop
	Fullscreen
	NumWindowTypes
)

const (
	WindowTypeMask ScreenMode = 0x7

	// DetailLevel selects the 640x480 logical resolution instead of 320x240.
	DetailLevel ScreenMode = 1 << 3

	VSync ScreenMode = 1 << 4

	// IntegerScale restricts presentation to whole multiples.
	IntegerScale ScreenMode = 1 << 5

	// NoRenderTarget draws straight to the window instead of an offscreen
	// target. It is forced on when the renderer has no target support.
	NoRenderTarget ScreenMode = 1 << 6

	// DefaultScreenMode replaces a request that cannot be honoured.
	DefaultScreenMode = Windowed | VSync
)

// WindowType returns the window type bits.
func (m ScreenMode) WindowType() ScreenMode { return m & WindowTypeMask }

func (m ScreenMode) fullscreen() bool {
	t := m.WindowType()
	return t == Fullscreen || t == FullscreenDesktop
}

// LogicalSize returns the logical resolution selected by the detail bit.
func (m ScreenMode) LogicalSize() (w, h int) {
	if m&DetailLevel != 0 {
		return 640, 480
	}
	return 320, 240
}

// ScreenIndex packs a display index in the high 16 bits and a mode index in
// the low 16 bits. For windowed modes the mode index is the window scale
// minus one.
type ScreenIndex int32

// MakeScreenIndex packs display and mode.
func MakeScreenIndex(display, mode int) ScreenIndex {
	return ScreenIndex(int32(display)<<16 | int32(mode&0xffff))
}

func (i ScreenIndex) Display() int { return int(i >> 16) }
func (i ScreenIndex) Mode() int    { return int(uint16(i)) }

// subpixelNudge is the fraction of a device pixel added to float draws.
const subpixelNudge = 0.375

// maxWindowScale is the largest whole scale of a lw x lh window that still
// leaves room on a desk x deskH desktop.
func maxWindowScale(deskW, deskH, lw, lh int) int {
	switch {
	case deskW <= lw || deskH <= lh:
		return 1
	case deskW > deskH:
		s := deskH / lh
		if deskH%lh == 0 {
			s--
		}
		return s
	default:
		s := deskW / lw
		if deskW%lw == 0 {
			s--
		}
		return s
	}
}

// SetScreen negotiates a window, renderer and render target for the
// requested configuration and returns the configuration actually applied.
// Requests naming a display or fullscreen mode that does not exist are
// replaced by DefaultScreenMode on display 0; a windowed scale that does not
// fit the desktop falls back to 1x. When a backend call fails, every display
// resource is released and the returned error wraps ErrScreenSetup.
func (c *Context) SetScreen(mode ScreenMode, index ScreenIndex) (ScreenMode, ScreenIndex, error) {
	if !c.initialized {
		return mode, index, fmt.Errorf("%w: %w", ErrScreenSetup, ErrNotInitialized)
	}
	mode, index, err := c.setScreen(mode, index)
	if err != nil {
		c.releaseDisplay()
		return mode, index, fmt.Errorf("%w: %w", ErrScreenSetup, err)
	}
	c.log.Info("screen set", "mode", fmt.Sprintf("%#x", int32(mode)), "display", index.Display(),
		"index", index.Mode(), "logical", fmt.Sprintf("%dx%d", c.logicalW, c.logicalH),
		"target", c.target != nil)
	return mode, index, nil
}

func (c *Context) setScreen(mode ScreenMode, index ScreenIndex) (ScreenMode, ScreenIndex, error) {
	if mode.WindowType() >= NumWindowTypes {
		return mode, index, fmt.Errorf("%w: %d", ErrWindowType, mode.WindowType())
	}

	numDisplays, err := c.video.NumDisplays()
	if err != nil {
		return mode, index, err
	}
	display, modeIndex := index.Display(), index.Mode()
	substitute := display < 0 || display >= numDisplays
	if !substitute && mode.fullscreen() {
		numModes, err := c.video.NumDisplayModes(display)
		if err != nil {
			return mode, index, err
		}
		substitute = modeIndex >= numModes
	}
	if substitute {
		c.log.Debug("screen request out of range, using default", "display", display, "index", modeIndex)
		mode, index = DefaultScreenMode, 0
		display, modeIndex = 0, 0
	}

	lw, lh := mode.LogicalSize()
	c.logicalW, c.logicalH = lw, lh

	if mode.fullscreen() {
		mode, index, err = c.applyFullscreen(mode, index, display, modeIndex)
	} else {
		index, err = c.applyWindowed(mode, index, display, modeIndex)
	}
	if err != nil {
		return mode, index, err
	}

	if c.renderer == nil {
		r, err := c.video.CreateRenderer(c.window)
		if err != nil {
			return mode, index, err
		}
		c.renderer = r
	}
	if err := c.renderer.Clear(); err != nil {
		return mode, index, err
	}
	if err := c.renderer.Present(); err != nil {
		return mode, index, err
	}

	// Renderer settings may only change with the window surface bound.
	if c.target != nil {
		if err := c.renderer.SetTarget(nil); err != nil {
			return mode, index, err
		}
	}
	if err := c.renderer.Clear(); err != nil {
		return mode, index, err
	}
	if err := c.applyRendererSettings(mode, lw, lh); err != nil {
		return mode, index, err
	}

	if mode, err = c.applyTarget(mode, lw, lh); err != nil {
		return mode, index, err
	}

	c.screenMode, c.screenIndex = mode, index
	if err := c.video.ShowCursor(false); err != nil {
		return mode, index, err
	}
	c.cursorIdle = 0
	return mode, index, nil
}

func (c *Context) applyFullscreen(mode ScreenMode, index ScreenIndex, display, modeIndex int) (ScreenMode, ScreenIndex, error) {
	lw, lh := mode.LogicalSize()
	var (
		dm  DisplayMode
		err error
	)
	if mode.WindowType() == Fullscreen {
		dm, err = c.video.DisplayMode(display, modeIndex)
	} else {
		dm, err = c.video.DesktopDisplayMode(display)
	}
	if err != nil {
		c.log.Warn("display mode unavailable, falling back to a window", "display", display, "index", modeIndex, "err", err)
		mode = mode&^WindowTypeMask | Windowed
		index = 0
		if c.window == nil {
			w, err := c.video.CreateWindow(WindowSpec{Title: c.opts.Title, Display: display, W: lw, H: lh, Type: Windowed})
			if err != nil {
				return mode, index, err
			}
			c.window = w
			return mode, index, nil
		}
		c.window.Restore()
		c.window.SetSize(lw, lh)
		c.window.SetResizable(true)
		c.window.SetPosition(display)
		return mode, index, c.window.SetFullscreen(Windowed)
	}

	if c.window == nil {
		w, err := c.video.CreateWindow(WindowSpec{Title: c.opts.Title, Display: display, W: dm.W, H: dm.H, Type: mode.WindowType()})
		if err != nil {
			return mode, index, err
		}
		c.window = w
	} else {
		c.window.SetPosition(display)
		if err := c.window.SetFullscreen(mode.WindowType()); err != nil {
			return mode, index, err
		}
	}
	return mode, index, c.window.SetDisplayMode(dm)
}

func (c *Context) applyWindowed(mode ScreenMode, index ScreenIndex, display, modeIndex int) (ScreenIndex, error) {
	lw, lh := mode.LogicalSize()
	desk, err := c.video.DesktopDisplayMode(display)
	if err != nil {
		return index, err
	}
	maxScale := maxWindowScale(desk.W, desk.H, lw, lh)
	scale := modeIndex + 1
	w, h := scale*lw, scale*lh
	if scale > maxScale {
		w, h = lw, lh
		index = MakeScreenIndex(display, 0)
	}

	if c.window == nil {
		win, err := c.video.CreateWindow(WindowSpec{Title: c.opts.Title, Display: display, W: w, H: h, Type: mode.WindowType()})
		if err != nil {
			return index, err
		}
		c.window = win
		return index, nil
	}
	if mode.WindowType() == WindowMaximized {
		c.window.Maximize()
	} else {
		c.window.Restore()
	}
	c.window.SetResizable(true)
	if err := c.window.SetFullscreen(Windowed); err != nil {
		return index, err
	}
	c.window.SetSize(w, h)
	c.window.SetPosition(display)
	return index, nil
}

// applyRendererSettings changes vsync, logical size and scaling. It refuses
// to run while a render target is bound.
func (c *Context) applyRendererSettings(mode ScreenMode, lw, lh int) error {
	if c.renderer.Target() != nil {
		return ErrTargetBound
	}
	if err := c.renderer.SetVSync(mode&VSync != 0); err != nil {
		return err
	}
	if err := c.renderer.SetLogicalSize(lw, lh); err != nil {
		return err
	}
	if err := c.renderer.SetIntegerScale(mode&IntegerScale != 0); err != nil {
		return err
	}
	c.updateSubpixel()
	return nil
}

// applyTarget binds an offscreen target of the logical size, reusing the
// current one when it already has that size.
func (c *Context) applyTarget(mode ScreenMode, lw, lh int) (ScreenMode, error) {
	if !c.renderer.TargetSupported() {
		c.destroyTarget()
		return mode | NoRenderTarget, nil
	}
	if mode&NoRenderTarget != 0 {
		c.destroyTarget()
		return mode, nil
	}

	if c.target != nil {
		w, h, err := c.target.Size()
		if err != nil {
			return mode, err
		}
		if w != lw || h != lh {
			c.destroyTarget()
		}
	}
	if c.target == nil {
		t, err := c.renderer.CreateTarget(lw, lh)
		if err != nil {
			return mode, err
		}
		c.target = t
	}
	if err := c.renderer.SetTarget(c.target); err != nil {
		return mode, err
	}
	return mode, c.renderer.Clear()
}

func (c *Context) destroyTarget() {
	if c.target == nil {
		return
	}
	if c.renderer != nil && c.renderer.Target() != nil {
		c.renderer.SetTarget(nil)
	}
	c.target.Destroy()
	c.target = nil
}

func (c *Context) updateSubpixel() {
	if c.renderer == nil {
		c.subpixel = 0
		return
	}
	scale := c.renderer.Scale()
	if scale <= 0 {
		scale = 1
	}
	c.subpixel = subpixelNudge / scale
}

// releaseDisplay destroys every texture tied to the renderer, then the
// target, the renderer and the window.
func (c *Context) releaseDisplay() {
	for i := range c.layers {
		l := &c.layers[i]
		if l.tex != nil {
			l.tex.Destroy()
			l.tex = nil
			l.dirty = true
		}
	}
	for i, t := range c.textures {
		if t != nil {
			t.Destroy()
			c.textures[i] = nil
		}
	}
	c.destroyTarget()
	if c.renderer != nil {
		c.renderer.Destroy()
		c.renderer = nil
	}
	if c.window != nil {
		c.window.Destroy()
		c.window = nil
	}
	c.subpixel = 0
}

// SubpixelOffset is the bias added to float draw positions: 0.375 divided by
// the presentation scale, or 0 without a renderer.
func (c *Context) SubpixelOffset() float32 { return c.subpixel }

// LogicalSize returns the logical resolution of the current screen.
func (c *Context) LogicalSize() (w, h int) { return c.logicalW, c.logicalH }

// ScreenMode returns the last successfully applied screen mode.
func (c *Context) ScreenMode() ScreenMode { return c.screenMode }

// ScreenIndex returns the last successfully applied screen index.
func (c *Context) ScreenIndex() ScreenIndex { return c.screenIndex }

// NumDisplays returns how many displays are attached.
func (c *Context) NumDisplays() (int, error) { return c.video.NumDisplays() }

// NumDisplayModes returns how many fullscreen modes display offers.
func (c *Context) NumDisplayModes(display int) (int, error) {
	return c.video.NumDisplayModes(display)
}

// DisplayMode describes fullscreen mode index of display.
func (c *Context) DisplayMode(display, index int) (DisplayMode, error) {
	return c.video.DisplayMode(display, index)
}

// RenderTargetSupported reports whether the current renderer can draw to an
// offscreen target. It is false before the first SetScreen.
func (c *Context) RenderTargetSupported() bool {
	return c.renderer != nil && c.renderer.TargetSupported()
}
