package ebitenhost

import (
	"math"
	"sort"

	"heboris/ygs"
)

// fit returns the scale and top-left offset that place a lw x lh frame in
// the middle of an ow x oh screen. With integer set the scale is rounded
// down to a whole number whenever the frame fits at least once.
func fit(ow, oh, lw, lh int, integer bool) (scale, x, y float64) {
	if ow <= 0 || oh <= 0 || lw <= 0 || lh <= 0 {
		return 1, 0, 0
	}
	scale = math.Min(float64(ow)/float64(lw), float64(oh)/float64(lh))
	if integer && scale >= 1 {
		scale = math.Floor(scale)
	}
	x = math.Floor((float64(ow) - float64(lw)*scale) / 2)
	y = math.Floor((float64(oh) - float64(lh)*scale) / 2)
	return scale, x, y
}

var standardModes = []ygs.DisplayMode{
	{W: 3840, H: 2160}, {W: 2560, H: 1440}, {W: 1920, H: 1200}, {W: 1920, H: 1080},
	{W: 1680, H: 1050}, {W: 1600, H: 1200}, {W: 1280, H: 1024}, {W: 1280, H: 960},
	{W: 1280, H: 720}, {W: 1024, H: 768}, {W: 800, H: 600}, {W: 640, H: 480},
}

// modeList is the mode table offered for a desktop of w x h pixels: the
// desktop itself followed by the standard sizes that fit inside it, largest
// first.
func modeList(w, h, refresh int) []ygs.DisplayMode {
	if w <= 0 || h <= 0 {
		return nil
	}
	modes := []ygs.DisplayMode{{W: w, H: h, RefreshRate: refresh}}
	for _, m := range standardModes {
		if m.W > w || m.H > h || (m.W == w && m.H == h) {
			continue
		}
		m.RefreshRate = refresh
		modes = append(modes, m)
	}
	sort.SliceStable(modes[1:], func(i, j int) bool {
		a, b := modes[1+i], modes[1+j]
		return a.W*a.H > b.W*b.H
	})
	return modes
}
