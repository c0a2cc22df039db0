package ygs

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/remeh/sizedwaitgroup"
)

// maxParallelReads bounds concurrent asset reads in LoadBitmaps.
const maxParallelReads = 8

// BitmapRequest names one image and the slot it is loaded into.
type BitmapRequest struct {
	Name string
	Slot int
}

func slotOK(slot, n int) bool { return slot >= 0 && slot < n }

func (c *Context) readAsset(name string) ([]byte, error) {
	f, err := c.files.OpenRead(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// LoadBitmap decodes the image asset name into slot, replacing what was
// there. On failure the slot is left empty. Without a renderer it does
// nothing.
func (c *Context) LoadBitmap(name string, slot int) error {
	if !slotOK(slot, MaxTextures) {
		return fmt.Errorf("load bitmap %s: %w: %d", name, ErrSlot, slot)
	}
	if c.renderer == nil {
		return nil
	}
	c.freeTexture(slot)
	data, err := c.readAsset(name)
	if err != nil {
		return fmt.Errorf("load bitmap %s: %w", name, err)
	}
	return c.installTexture(name, slot, data)
}

// LoadBitmaps loads several images. Files are read concurrently; textures are
// created in order on the calling goroutine. Every failure is reported in the
// joined error and leaves its slot empty.
func (c *Context) LoadBitmaps(reqs []BitmapRequest) error {
	if c.renderer == nil {
		return nil
	}
	data := make([][]byte, len(reqs))
	errs := make([]error, len(reqs))
	swg := sizedwaitgroup.New(maxParallelReads)
	for i, req := range reqs {
		if !slotOK(req.Slot, MaxTextures) {
			errs[i] = fmt.Errorf("load bitmap %s: %w: %d", req.Name, ErrSlot, req.Slot)
			continue
		}
		swg.Add()
		go func(i int, name string) {
			defer swg.Done()
			data[i], errs[i] = c.readAsset(name)
		}(i, req.Name)
	}
	swg.Wait()

	for i, req := range reqs {
		if errs[i] != nil {
			if !errors.Is(errs[i], ErrSlot) {
				c.freeTexture(req.Slot)
				errs[i] = fmt.Errorf("load bitmap %s: %w", req.Name, errs[i])
			}
			continue
		}
		c.freeTexture(req.Slot)
		errs[i] = c.installTexture(req.Name, req.Slot, data[i])
	}
	return errors.Join(errs...)
}

func (c *Context) installTexture(name string, slot int, data []byte) error {
	t, err := c.renderer.LoadTexture(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("load bitmap %s: %w", name, err)
	}
	if err := t.SetBlend(true); err != nil {
		t.Destroy()
		return fmt.Errorf("load bitmap %s: %w", name, err)
	}
	c.textures[slot] = t
	if w, h, err := t.Size(); err == nil {
		c.log.Debug("bitmap loaded", "name", name, "slot", slot, "size", fmt.Sprintf("%dx%d", w, h),
			"bytes", humanize.Bytes(uint64(len(data))))
	}
	return nil
}

func (c *Context) freeTexture(slot int) {
	if t := c.textures[slot]; t != nil {
		t.Destroy()
		c.textures[slot] = nil
	}
}

// ImageSize returns the pixel size of the image in slot.
func (c *Context) ImageSize(slot int) (w, h int, ok bool) {
	if !slotOK(slot, MaxTextures) || c.textures[slot] == nil {
		return 0, 0, false
	}
	w, h, err := c.textures[slot].Size()
	return w, h, err == nil
}

func (c *Context) texture(slot int) Texture {
	if c.renderer == nil || !slotOK(slot, MaxTextures) {
		return nil
	}
	return c.textures[slot]
}

// Blt draws the whole image in slot at dx, dy.
func (c *Context) Blt(slot, dx, dy int) {
	w, h, ok := c.ImageSize(slot)
	if !ok {
		return
	}
	c.blit(slot, dx, dy, Rect{0, 0, w, h}, FixedOne, FixedOne, 0xff)
}

// BltRect draws the sx, sy, w, h part of the image in slot at dx, dy.
func (c *Context) BltRect(slot, dx, dy, sx, sy, w, h int) {
	c.blit(slot, dx, dy, Rect{sx, sy, w, h}, FixedOne, FixedOne, 0xff)
}

// BltR draws the whole image scaled by scx, scy.
func (c *Context) BltR(slot, dx, dy int, scx, scy Fixed) {
	w, h, ok := c.ImageSize(slot)
	if !ok {
		return
	}
	c.blit(slot, dx, dy, Rect{0, 0, w, h}, scx, scy, 0xff)
}

// BltRectR draws part of the image scaled by scx, scy.
func (c *Context) BltRectR(slot, dx, dy, sx, sy, w, h int, scx, scy Fixed) {
	c.blit(slot, dx, dy, Rect{sx, sy, w, h}, scx, scy, 0xff)
}

// BlendBlt draws the whole image with alpha for this draw only.
func (c *Context) BlendBlt(slot, dx, dy int, alpha uint8) {
	w, h, ok := c.ImageSize(slot)
	if !ok {
		return
	}
	c.blit(slot, dx, dy, Rect{0, 0, w, h}, FixedOne, FixedOne, alpha)
}

func (c *Context) BlendBltRect(slot, dx, dy, sx, sy, w, h int, alpha uint8) {
	c.blit(slot, dx, dy, Rect{sx, sy, w, h}, FixedOne, FixedOne, alpha)
}

func (c *Context) BlendBltR(slot, dx, dy int, alpha uint8, scx, scy Fixed) {
	w, h, ok := c.ImageSize(slot)
	if !ok {
		return
	}
	c.blit(slot, dx, dy, Rect{0, 0, w, h}, scx, scy, alpha)
}

func (c *Context) BlendBltRectR(slot, dx, dy, sx, sy, w, h int, alpha uint8, scx, scy Fixed) {
	c.blit(slot, dx, dy, Rect{sx, sy, w, h}, scx, scy, alpha)
}

// blit copies src of the image in slot to dx, dy plus the active offset.
// Integer rectangles are used against the offscreen target; otherwise the
// destination is a float rectangle nudged by the subpixel offset.
func (c *Context) blit(slot, dx, dy int, src Rect, scx, scy Fixed, alpha uint8) {
	t := c.texture(slot)
	if t == nil {
		return
	}
	dw, dh := scx.scale(src.W), scy.scale(src.H)
	if src.W <= 0 || src.H <= 0 || dw <= 0 || dh <= 0 {
		return
	}

	if alpha != 0xff {
		if err := t.SetAlphaMod(alpha); err != nil {
			c.logDrawError("alpha", err)
		}
		defer func() {
			if err := t.SetAlphaMod(0xff); err != nil {
				c.logDrawError("alpha", err)
			}
		}()
	}

	var err error
	if c.target != nil {
		err = c.renderer.Copy(t, &src, &Rect{dx + c.offX, dy + c.offY, dw, dh})
	} else {
		err = c.renderer.CopyF(t, &src, &FRect{
			X: float32(dx+c.offX) + c.subpixel,
			Y: float32(dy+c.offY) + c.subpixel,
			W: float32(dw),
			H: float32(dh),
		})
	}
	if err != nil {
		c.logDrawError("blit", err)
	}
}

// logDrawError logs failures of individual draws without flooding the log
// when the same draw fails every frame.
func (c *Context) logDrawError(op string, err error) {
	if c.drawErrs.Allow() {
		c.log.Error("draw failed", "op", op, "err", err)
	}
}
