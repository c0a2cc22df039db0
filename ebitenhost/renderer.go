package ebitenhost

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	text "github.com/hajimehoshi/ebiten/v2/text/v2"
	_ "golang.org/x/image/bmp"

	"heboris/ygs"
)

var errDestroyed = errors.New("ebitenhost: texture destroyed")

const (
	defaultLogicalW = 640
	defaultLogicalH = 480
)

type texture struct {
	img   *ebiten.Image
	base  *ebiten.Image
	pool  *imagePool
	alpha uint8
	blend bool
}

func (t *texture) Size() (int, int, error) {
	if t.img == nil {
		return 0, 0, errDestroyed
	}
	b := t.img.Bounds()
	return b.Dx(), b.Dy(), nil
}

func (t *texture) SetAlphaMod(a uint8) error {
	t.alpha = a
	return nil
}

func (t *texture) SetBlend(on bool) error {
	t.blend = on
	return nil
}

func (t *texture) Destroy() {
	switch {
	case t.pool != nil:
		t.pool.put(t.base)
	case t.img != nil:
		t.img.Deallocate()
	}
	t.img, t.base, t.pool = nil, nil, nil
}

// renderer draws into back, the window surface at the logical size, or into
// a bound target. Present hands back to the host.
type renderer struct {
	host      *Host
	back      *ebiten.Image
	target    *texture
	logicalW  int
	logicalH  int
	integer   bool
	destroyed bool
}

var _ ygs.Renderer = (*renderer)(nil)

func newRenderer(h *Host) *renderer {
	r := &renderer{host: h, logicalW: defaultLogicalW, logicalH: defaultLogicalH}
	r.back = newSurface(r.logicalW, r.logicalH)
	return r
}

func newSurface(w, h int) *ebiten.Image {
	return ebiten.NewImageWithOptions(image.Rect(0, 0, max(w, 1), max(h, 1)), &ebiten.NewImageOptions{Unmanaged: true})
}

func (r *renderer) dest() *ebiten.Image {
	if r.target != nil {
		return r.target.img
	}
	return r.back
}

func (r *renderer) TargetSupported() bool { return true }

func (r *renderer) SetTarget(t ygs.Texture) error {
	if t == nil {
		r.target = nil
		return nil
	}
	tex, ok := t.(*texture)
	if !ok || tex.img == nil {
		return fmt.Errorf("ebitenhost: bad target %T", t)
	}
	r.target = tex
	return nil
}

func (r *renderer) Target() ygs.Texture {
	if r.target == nil {
		return nil
	}
	return r.target
}

func (r *renderer) Clear() error {
	r.dest().Clear()
	return nil
}

// Present shows the window surface and reuses the previous frame as the new
// back buffer. The new back buffer's contents are undefined.
func (r *renderer) Present() error {
	old := r.host.swap(r.back, r.integer)
	ob := image.Rectangle{}
	if old != nil {
		ob = old.Bounds()
	}
	if old == nil || ob.Dx() != r.logicalW || ob.Dy() != r.logicalH {
		if old != nil {
			old.Deallocate()
		}
		old = newSurface(r.logicalW, r.logicalH)
	}
	r.back = old
	return nil
}

func (r *renderer) Flush() error { return nil }

func (r *renderer) SetVSync(on bool) error {
	ebiten.SetVsyncEnabled(on)
	return nil
}

// SetLogicalSize resizes the window surface; its contents are dropped.
func (r *renderer) SetLogicalSize(w, h int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("ebitenhost: logical size %dx%d", w, h)
	}
	if w == r.logicalW && h == r.logicalH {
		return nil
	}
	r.logicalW, r.logicalH = w, h
	r.back.Deallocate()
	r.back = newSurface(w, h)
	return nil
}

func (r *renderer) SetIntegerScale(on bool) error {
	r.integer = on
	return nil
}

func (r *renderer) Scale() float32 {
	ow, oh := r.host.outsideSize()
	s, _, _ := fit(ow, oh, r.logicalW, r.logicalH, r.integer)
	return float32(s)
}

func (r *renderer) CreateTarget(w, h int) (ygs.Texture, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("ebitenhost: target size %dx%d", w, h)
	}
	return &texture{img: newSurface(w, h), alpha: 0xff}, nil
}

// LoadTexture decodes a PNG, JPEG or BMP image.
func (r *renderer) LoadTexture(src io.Reader) (ygs.Texture, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("ebitenhost: decode image: %w", err)
	}
	return &texture{img: ebiten.NewImageFromImage(img), alpha: 0xff}, nil
}

// RenderText draws s once into a pooled image sized to fit it. Text that
// measures zero in either direction yields no texture.
func (r *renderer) RenderText(f ygs.Font, s string, c color.RGBA) (ygs.Texture, error) {
	ft, ok := f.(*font)
	if !ok {
		return nil, fmt.Errorf("ebitenhost: foreign font %T", f)
	}
	m := ft.face.Metrics()
	lineSpacing := m.HAscent + m.HDescent + m.HLineGap
	tw, th := text.Measure(s, ft.face, lineSpacing)
	w, h := int(math.Ceil(tw)), int(math.Ceil(th))
	if w <= 0 || h <= 0 {
		return nil, nil
	}
	view, base := r.host.pool.get(w, h)
	op := &text.DrawOptions{}
	op.LineSpacing = lineSpacing
	op.ColorScale.ScaleWithColor(c)
	text.Draw(view, s, ft.face, op)
	return &texture{img: view, base: base, pool: r.host.pool, alpha: 0xff, blend: true}, nil
}

func (r *renderer) Copy(t ygs.Texture, src, dst *ygs.Rect) error {
	var df *ygs.FRect
	if dst != nil {
		df = &ygs.FRect{X: float32(dst.X), Y: float32(dst.Y), W: float32(dst.W), H: float32(dst.H)}
	}
	return r.CopyF(t, src, df)
}

func (r *renderer) CopyF(t ygs.Texture, src *ygs.Rect, dst *ygs.FRect) error {
	tex, ok := t.(*texture)
	if !ok {
		return fmt.Errorf("ebitenhost: foreign texture %T", t)
	}
	if tex.img == nil {
		return errDestroyed
	}
	img := tex.img
	if src != nil {
		img = img.SubImage(subRect(img.Bounds(), *src)).(*ebiten.Image)
	}
	into := r.dest()
	if tex == r.target || img == into {
		return fmt.Errorf("ebitenhost: texture drawn onto itself")
	}
	sb := img.Bounds()
	if sb.Dx() <= 0 || sb.Dy() <= 0 {
		return nil
	}
	into.DrawImage(img, copyOptions(tex.alpha, tex.blend, sb, into.Bounds(), dst))
	return nil
}

// subRect is src relative to the top-left of b. Pooled textures are views
// whose bounds do not start at the origin.
func subRect(b image.Rectangle, src ygs.Rect) image.Rectangle {
	return image.Rect(b.Min.X+src.X, b.Min.Y+src.Y, b.Min.X+src.X+src.W, b.Min.Y+src.Y+src.H).Intersect(b)
}

// copyOptions maps a source of bounds sb onto dst, or onto all of db when
// dst is nil. sb must not be empty.
func copyOptions(alpha uint8, blend bool, sb, db image.Rectangle, dst *ygs.FRect) *ebiten.DrawImageOptions {
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterNearest}
	if dst == nil {
		op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	} else {
		op.GeoM.Scale(float64(dst.W)/float64(sb.Dx()), float64(dst.H)/float64(sb.Dy()))
		op.GeoM.Translate(float64(dst.X), float64(dst.Y))
	}
	op.ColorScale.ScaleAlpha(float32(alpha) / 0xff)
	if !blend {
		op.Blend = ebiten.BlendCopy
	}
	return op
}

// Destroy drops the surfaces and blanks the screen.
func (r *renderer) Destroy() {
	if r.destroyed {
		return
	}
	r.destroyed = true
	r.target = nil
	if old := r.host.swap(nil, r.integer); old != nil {
		old.Deallocate()
	}
	if r.back != nil {
		r.back.Deallocate()
		r.back = nil
	}
}
