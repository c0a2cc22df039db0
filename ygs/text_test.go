package ygs

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func textHarness(t *testing.T, setup func(*harness, *Options)) *harness {
	t.Helper()
	h := newHarness(t, setup)
	h.screen(t, Windowed, 0)
	h.ctx.TextLayerOn(0, 8, 8)
	return h
}

func blt(t *testing.T, h *harness, layer int) {
	t.Helper()
	if err := h.ctx.TextBlt(layer); err != nil {
		t.Fatalf("TextBlt: %v", err)
	}
}

func TestTextRebuiltOncePerTuple(t *testing.T) {
	h := textHarness(t, nil)
	ren := h.video.ren

	steps := []struct {
		name   string
		mutate func()
		builds int
	}{
		{"first text", func() { h.ctx.TextOut(0, "SCORE") }, 1},
		{"redraw", func() {}, 1},
		{"move", func() { h.ctx.TextMove(0, 100, 50) }, 1},
		{"same text", func() { h.ctx.TextOut(0, "SCORE") }, 1},
		{"same color", func() { h.ctx.TextColor(0, 0xff, 0xff, 0xff) }, 1},
		{"same size", func() { h.ctx.TextSize(0, DefaultTextSize) }, 1},
		{"new color", func() { h.ctx.TextColor(0, 0xff, 0, 0) }, 2},
		{"new size", func() { h.ctx.TextSize(0, 12) }, 3},
		{"new text", func() { h.ctx.TextOut(0, "LEVEL") }, 4},
		{"all three", func() {
			h.ctx.TextOut(0, "TIME")
			h.ctx.TextColor(0, 0, 0xff, 0)
			h.ctx.TextSize(0, 10)
		}, 5},
	}
	for _, st := range steps {
		st.mutate()
		for i := 0; i < 3; i++ {
			blt(t, h, 0)
		}
		if ren.textBuilds != st.builds {
			t.Fatalf("%s: %d builds want %d", st.name, ren.textBuilds, st.builds)
		}
	}
}

func TestTextDrawPosition(t *testing.T) {
	h := textHarness(t, nil)
	h.ctx.TextOut(0, "AB")
	h.video.ren.copies = nil
	blt(t, h, 0)
	cp := h.video.ren.copies[0]
	if cp.dst == nil || *cp.dst != (Rect{8, 8, 16, 16}) {
		t.Fatalf("dst %+v", cp.dst)
	}
	if cp.tex.text != "AB" || cp.tex.color.R != 0xff || cp.tex.color.A != 0xff {
		t.Fatalf("texture %+v", cp.tex)
	}
}

func TestFontBucket(t *testing.T) {
	cases := []struct{ size, want int }{
		{1, 0}, {10, 0}, {11, 0}, {12, 1}, {15, 1}, {16, 2}, {40, 2},
	}
	for _, tc := range cases {
		if got := fontBucket(tc.size); got != tc.want {
			t.Fatalf("fontBucket(%d)=%d want %d", tc.size, got, tc.want)
		}
	}
}

func TestMissingFontDrawsNothing(t *testing.T) {
	h := textHarness(t, func(h *harness, _ *Options) { delete(h.fs.files, DefaultFonts[0]) })
	h.ctx.TextSize(0, 10)
	h.ctx.TextOut(0, "tiny")
	h.video.ren.copies = nil
	blt(t, h, 0)
	if h.video.ren.textBuilds != 0 || len(h.video.ren.copies) != 0 {
		t.Fatalf("drew without a font")
	}

	h.ctx.TextSize(0, 16)
	blt(t, h, 0)
	if h.video.ren.textBuilds != 1 {
		t.Fatalf("large font not used")
	}
}

func TestBuiltinFontReplacesMissingAsset(t *testing.T) {
	h := textHarness(t, func(h *harness, o *Options) {
		delete(h.fs.files, DefaultFonts[0])
		o.BuiltinFont = []byte("builtin")
	})
	if f := h.ctx.fonts[0].(*fakeFont); f.data != "builtin" || f.size != 10 {
		t.Fatalf("font %+v", f)
	}
}

func TestTextBuildFailureIsFatal(t *testing.T) {
	h := textHarness(t, nil)
	h.video.ren.textErr = errors.New("no glyphs")
	h.ctx.TextOut(0, "x")
	if err := h.ctx.TextBlt(0); !IsFatal(err) {
		t.Fatalf("got %v want fatal", err)
	}
}

func TestBlankTextDrawsNothing(t *testing.T) {
	h := textHarness(t, nil)
	h.ctx.TextOut(0, "\n")
	h.video.ren.copies = nil
	blt(t, h, 0)
	blt(t, h, 0)
	if h.video.ren.textBuilds != 1 {
		t.Fatalf("built %d times", h.video.ren.textBuilds)
	}
	if len(h.video.ren.copies) != 0 {
		t.Fatalf("blank layer drawn: %+v", h.video.ren.copies)
	}
	h.ctx.TextOut(0, "x")
	blt(t, h, 0)
	if len(h.video.ren.copies) != 1 {
		t.Fatalf("text after blank not drawn")
	}
}

func TestDisabledLayerSkipped(t *testing.T) {
	h := textHarness(t, nil)
	h.ctx.TextOut(0, "hidden")
	h.ctx.TextLayerOff(0)
	h.video.ren.copies = nil
	blt(t, h, 0)
	if h.video.ren.textBuilds != 0 || len(h.video.ren.copies) != 0 {
		t.Fatalf("disabled layer drawn")
	}
	if err := h.ctx.TextBlt(MaxTextLayers); err != nil {
		t.Fatalf("out of range layer: %v", err)
	}
}

func TestClampText(t *testing.T) {
	ascii := strings.Repeat("a", 300)
	if got := clampText(ascii); len(got) != maxTextLen {
		t.Fatalf("len %d", len(got))
	}
	accented := strings.Repeat("é", 200)
	got := clampText(accented)
	if len(got) != 254 || !utf8.ValidString(got) {
		t.Fatalf("len %d valid %v", len(got), utf8.ValidString(got))
	}
}

func TestTextOutLegacy(t *testing.T) {
	h := textHarness(t, nil)
	sjis := []byte{0x83, 0x65, 0x83, 0x58, 0x83, 0x67}
	if err := h.ctx.TextOutLegacy(0, sjis); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if h.ctx.layers[0].text != "テスト" {
		t.Fatalf("got %q", h.ctx.layers[0].text)
	}
}

func TestTextRebuiltAfterRendererLost(t *testing.T) {
	h := textHarness(t, nil)
	h.ctx.TextOut(0, "HOLD")
	blt(t, h, 0)
	old := h.ctx.layers[0].tex.(*fakeTexture)

	h.ctx.releaseDisplay()
	if !old.destroyed {
		t.Fatalf("text texture outlived its renderer")
	}
	h.screen(t, Windowed, 0)
	blt(t, h, 0)
	if h.video.ren.textBuilds != 1 {
		t.Fatalf("text not rebuilt on the new renderer")
	}
}
