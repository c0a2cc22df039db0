package ygs

import (
	"fmt"
	"image/color"
	"unicode/utf8"
)

// numFonts is the number of font size buckets.
const numFonts = 3

// DefaultTextSize is the size of a freshly reset layer.
const DefaultTextSize = 16

func (c *Context) resetTextLayers() {
	for i := range c.layers {
		if c.layers[i].tex != nil {
			c.layers[i].tex.Destroy()
		}
		c.layers[i] = textLayer{
			color: color.RGBA{0xff, 0xff, 0xff, 0xff},
			size:  DefaultTextSize,
		}
	}
}

func (c *Context) layer(n int) *textLayer {
	if !slotOK(n, MaxTextLayers) {
		return nil
	}
	return &c.layers[n]
}

// fontBucket picks the font for a text size: 0 below 12, 1 below 16, else 2.
func fontBucket(size int) int {
	b := 0
	if size >= 12 {
		b++
	}
	if size >= 16 {
		b++
	}
	return b
}

// clampText cuts s to at most maxTextLen bytes without splitting a rune.
func clampText(s string) string {
	if len(s) <= maxTextLen {
		return s
	}
	n := maxTextLen
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// TextLayerOn enables layer at x, y.
func (c *Context) TextLayerOn(layer, x, y int) {
	if l := c.layer(layer); l != nil {
		l.enabled = true
		l.x, l.y = x, y
	}
}

// TextMove repositions layer. The cached text image is kept.
func (c *Context) TextMove(layer, x, y int) {
	if l := c.layer(layer); l != nil {
		l.x, l.y = x, y
	}
}

func (c *Context) TextColor(layer int, r, g, b uint8) {
	l := c.layer(layer)
	if l == nil {
		return
	}
	col := color.RGBA{r, g, b, 0xff}
	if l.color != col {
		l.color = col
		l.dirty = true
	}
}

func (c *Context) TextSize(layer, size int) {
	l := c.layer(layer)
	if l == nil {
		return
	}
	if l.size != size {
		l.size = size
		l.dirty = true
	}
}

// TextOut sets the text of layer.
func (c *Context) TextOut(layer int, s string) {
	l := c.layer(layer)
	if l == nil {
		return
	}
	s = clampText(s)
	if l.text != s {
		l.text = s
		l.dirty = true
	}
}

// TextOutLegacy sets the text of layer from Shift_JIS encoded bytes.
func (c *Context) TextOutLegacy(layer int, b []byte) error {
	s, err := decodeShiftJIS(b)
	if err != nil {
		return fmt.Errorf("text layer %d: %w", layer, err)
	}
	c.TextOut(layer, s)
	return nil
}

func (c *Context) TextLayerOff(layer int) {
	if l := c.layer(layer); l != nil {
		l.enabled = false
	}
}

// TextBlt draws layer, rebuilding its image first when the text, color or
// size changed since the last build. Failing to build or draw the image is
// fatal.
func (c *Context) TextBlt(layer int) error {
	l := c.layer(layer)
	if l == nil || c.renderer == nil || !l.enabled {
		return nil
	}
	font := c.fonts[fontBucket(l.size)]
	if font == nil {
		return nil
	}

	if l.dirty {
		if l.tex != nil {
			l.tex.Destroy()
			l.tex = nil
		}
		l.w, l.h = 0, 0
		if l.text != "" {
			t, err := c.renderer.RenderText(font, l.text, l.color)
			if err != nil {
				return fatal(fmt.Sprintf("build text layer %d", layer), err)
			}
			if t != nil {
				l.tex = t
				if l.w, l.h, err = t.Size(); err != nil {
					return fatal(fmt.Sprintf("size text layer %d", layer), err)
				}
			}
		}
		l.dirty = false
	}
	if l.tex == nil {
		return nil
	}

	var err error
	if c.target != nil {
		err = c.renderer.Copy(l.tex, nil, &Rect{l.x + c.offX, l.y + c.offY, l.w, l.h})
	} else {
		err = c.renderer.CopyF(l.tex, nil, &FRect{
			X: float32(l.x+c.offX) + c.subpixel,
			Y: float32(l.y+c.offY) + c.subpixel,
			W: float32(l.w),
			H: float32(l.h),
		})
	}
	if err != nil {
		return fatal(fmt.Sprintf("draw text layer %d", layer), err)
	}
	return nil
}
