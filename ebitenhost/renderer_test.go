package ebitenhost

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font/gofont/goregular"

	"heboris/ygs"
)

func TestSubRect(t *testing.T) {
	cases := []struct {
		name string
		b    image.Rectangle
		src  ygs.Rect
		want image.Rectangle
	}{
		{"origin", image.Rect(0, 0, 64, 64), ygs.Rect{X: 8, Y: 4, W: 16, H: 16}, image.Rect(8, 4, 24, 20)},
		{"pooled view", image.Rect(128, 32, 192, 96), ygs.Rect{X: 8, Y: 4, W: 16, H: 16}, image.Rect(136, 36, 152, 52)},
		{"clipped", image.Rect(0, 0, 32, 32), ygs.Rect{X: 24, Y: 24, W: 16, H: 16}, image.Rect(24, 24, 32, 32)},
		{"outside", image.Rect(0, 0, 32, 32), ygs.Rect{X: 40, Y: 0, W: 8, H: 8}, image.Rectangle{}},
	}
	for _, tc := range cases {
		if got := subRect(tc.b, tc.src); !got.Eq(tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestCopyOptions(t *testing.T) {
	type pt struct{ x, y float64 }
	cases := []struct {
		name     string
		sb, db   image.Rectangle
		dst      *ygs.FRect
		from, to [2]pt
	}{
		{
			name: "nil dst fills the destination",
			sb:   image.Rect(0, 0, 100, 50), db: image.Rect(0, 0, 200, 100),
			from: [2]pt{{0, 0}, {100, 50}}, to: [2]pt{{0, 0}, {200, 100}},
		},
		{
			name: "scaled dst",
			sb:   image.Rect(0, 0, 32, 32), db: image.Rect(0, 0, 640, 480),
			dst:  &ygs.FRect{X: 10, Y: 20, W: 64, H: 16},
			from: [2]pt{{0, 0}, {32, 32}}, to: [2]pt{{10, 20}, {74, 36}},
		},
		{
			name: "sub-rect at its own size",
			sb:   image.Rect(136, 36, 152, 52), db: image.Rect(0, 0, 320, 240),
			dst:  &ygs.FRect{X: 5.375, Y: 7.375, W: 16, H: 16},
			from: [2]pt{{0, 0}, {16, 16}}, to: [2]pt{{5.375, 7.375}, {21.375, 23.375}},
		},
	}
	for _, tc := range cases {
		op := copyOptions(0xff, true, tc.sb, tc.db, tc.dst)
		for i := range tc.from {
			x, y := op.GeoM.Apply(tc.from[i].x, tc.from[i].y)
			if math.Abs(x-tc.to[i].x) > 1e-9 || math.Abs(y-tc.to[i].y) > 1e-9 {
				t.Fatalf("%s: %v maps to %v,%v want %v", tc.name, tc.from[i], x, y, tc.to[i])
			}
		}
		if op.Filter != ebiten.FilterNearest {
			t.Fatalf("%s: filter %v", tc.name, op.Filter)
		}
	}
}

func TestCopyOptionsAlphaAndBlend(t *testing.T) {
	sb := image.Rect(0, 0, 8, 8)
	op := copyOptions(0xff, true, sb, sb, nil)
	if op.ColorScale.A() != 1 || op.Blend != (ebiten.Blend{}) {
		t.Fatalf("opaque blended copy: alpha %v blend %+v", op.ColorScale.A(), op.Blend)
	}
	op = copyOptions(0x80, true, sb, sb, nil)
	if a := op.ColorScale.A(); math.Abs(float64(a)-128.0/255) > 1e-6 {
		t.Fatalf("alpha %v", a)
	}
	op = copyOptions(0xff, false, sb, sb, nil)
	if op.Blend != ebiten.BlendCopy {
		t.Fatalf("unblended copy uses %+v", op.Blend)
	}
}

func TestCopyDestroyedTexture(t *testing.T) {
	r := &renderer{host: New(nil)}
	tex := &texture{img: ebiten.NewImage(4, 4), alpha: 0xff}
	tex.Destroy()
	if err := r.CopyF(tex, nil, nil); !errors.Is(err, errDestroyed) {
		t.Fatalf("got %v", err)
	}
}

func TestPresentSwapsBackBuffer(t *testing.T) {
	h := New(nil)
	r := newRenderer(h)
	first := r.back
	if err := r.Present(); err != nil {
		t.Fatalf("present: %v", err)
	}
	if h.front != first || r.back == first {
		t.Fatalf("first present did not hand the back buffer over")
	}
	second := r.back

	if err := r.Present(); err != nil {
		t.Fatalf("present: %v", err)
	}
	if h.front != second || r.back != first {
		t.Fatalf("same-size front not reused as back buffer")
	}

	if err := r.SetLogicalSize(320, 240); err != nil {
		t.Fatalf("logical size: %v", err)
	}
	third := r.back
	if b := third.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Fatalf("back buffer %v after resize", b)
	}
	if err := r.Present(); err != nil {
		t.Fatalf("present: %v", err)
	}
	if h.front != third || r.back == second {
		t.Fatalf("stale 640x480 front reused after resize")
	}
	if b := r.back.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Fatalf("reallocated back buffer %v", b)
	}

	r.Destroy()
	if h.front != nil || r.back != nil {
		t.Fatalf("destroy left surfaces behind")
	}
}

func TestRenderText(t *testing.T) {
	h := New(nil)
	r := newRenderer(h)
	f, err := h.OpenFont(bytes.NewReader(goregular.TTF), 16)
	if err != nil {
		t.Fatalf("font: %v", err)
	}
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}

	blank, err := r.RenderText(f, "\n", white)
	if err != nil || blank != nil {
		t.Fatalf("blank text: %v, %v", blank, err)
	}

	tex, err := r.RenderText(f, "READY", white)
	if err != nil || tex == nil {
		t.Fatalf("text: %v, %v", tex, err)
	}
	w, hh, err := tex.Size()
	if err != nil || w <= 0 || hh <= 0 {
		t.Fatalf("size %dx%d: %v", w, hh, err)
	}
	tex.Destroy()
	if _, _, err := tex.Size(); !errors.Is(err, errDestroyed) {
		t.Fatalf("destroyed text texture: %v", err)
	}
}
