package ygs

import "errors"

// AdvanceFrame ends the current frame: it presents what was drawn, waits for
// the next frame slot, drains pending events and promotes the pending screen
// offset. It returns false once the user asked to quit. Errors are always
// fatal.
//
// With frame skipping enabled a frame that finished late is still drawn by
// the caller but not presented, so the following frame can catch up.
func (c *Context) AdvanceFrame() (bool, error) {
	if c.renderer != nil {
		if err := c.renderer.Flush(); err != nil {
			return false, fatal("flush", err)
		}
		if !c.frameSkip {
			if err := c.present(); err != nil {
				return false, err
			}
			c.lastSkipped = !c.pacer.Step()
			if err := c.renderer.Clear(); err != nil {
				return false, fatal("clear", err)
			}
		} else {
			if !c.lastSkipped {
				if err := c.present(); err != nil {
					return false, err
				}
				if err := c.renderer.Clear(); err != nil {
					return false, fatal("clear", err)
				}
			}
			c.lastSkipped = !c.pacer.Step()
		}
	} else {
		c.pacer.Step()
	}
	c.pacer.Tick()

	showCursor, slotsChanged := false, false
	for {
		ev, ok := c.video.PollEvent()
		if !ok {
			break
		}
		switch ev.Kind {
		case EventQuit:
			return false, nil
		case EventResized:
			c.updateSubpixel()
		case EventDeviceAdded, EventDeviceRemoved:
			slotsChanged = true
		case EventPointer:
			showCursor = true
		}
	}

	if showCursor {
		if err := c.video.ShowCursor(true); err != nil {
			c.logDrawError("show cursor", err)
		}
		c.cursorIdle = 0
	}
	if c.video.CursorShown() {
		idle := c.cursorIdle
		c.cursorIdle++
		if idle >= c.cursorHideFrames() {
			if err := c.video.ShowCursor(false); err != nil {
				c.logDrawError("hide cursor", err)
			}
		}
	}

	if slotsChanged && c.opts.Slots != nil {
		if err := c.opts.Slots.PlayerSlotsChanged(); err != nil {
			return false, fatal("player slots changed", err)
		}
	}

	c.offX, c.offY = c.nextOffX, c.nextOffY
	return true, nil
}

// present copies the offscreen target to the window, or presents the window
// surface directly when drawing without a target.
func (c *Context) present() error {
	if c.target == nil {
		if err := c.renderer.Present(); err != nil {
			return fatal("present", err)
		}
		return nil
	}
	if err := c.renderer.SetTarget(nil); err != nil {
		return fatal("present", err)
	}
	err := errors.Join(
		c.renderer.Clear(),
		c.renderer.Copy(c.target, nil, nil),
		c.renderer.Present(),
	)
	if err != nil {
		return fatal("present", err)
	}
	if err := c.renderer.SetTarget(c.target); err != nil {
		return fatal("present", err)
	}
	return nil
}

func (c *Context) cursorHideFrames() int {
	if c.opts.CursorHideFrames > 0 {
		return c.opts.CursorHideFrames
	}
	return c.pacer.FPS()
}

// SetFrameSkip controls whether late frames may skip presentation.
func (c *Context) SetFrameSkip(enabled bool) { c.frameSkip = enabled }

// BltAlways disables frame skipping when always is true.
func (c *Context) BltAlways(always bool) { c.frameSkip = !always }

// FrameSkip reports whether late frames may skip presentation.
func (c *Context) FrameSkip() bool { return c.frameSkip }

// SetFPS sets the target frame rate and restarts pacing. Zero becomes one.
func (c *Context) SetFPS(fps int) {
	c.pacer.SetFPS(fps)
	c.ResetFrameStep()
}

// ResetFrameStep restarts pacing from now, dropping any accumulated lag.
func (c *Context) ResetFrameStep() { c.pacer.Reset() }

// FPS returns the target frame rate.
func (c *Context) FPS() int { return c.pacer.FPS() }

// RealFPS returns the frame rate measured over the last second.
func (c *Context) RealFPS() int { return c.pacer.RealFPS() }

// SetOffset shifts every draw of the next frame by x, y. The shift takes
// effect at the next AdvanceFrame so one frame never mixes two offsets.
func (c *Context) SetOffset(x, y int) {
	c.nextOffX, c.nextOffY = x, y
}

// Offset returns the shift applied to the current frame.
func (c *Context) Offset() (x, y int) { return c.offX, c.offY }
