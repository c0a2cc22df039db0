package ebitenhost

import (
	"image"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
)

// maxPooled limits how many spare images are kept per size.
const maxPooled = 32

// nextPow2 returns the next power-of-two value >= n.
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// imagePool recycles square power-of-two images for text textures, which
// are rebuilt whenever a layer's string changes.
type imagePool struct {
	mu   sync.Mutex
	free map[int][]*ebiten.Image
}

func newImagePool() *imagePool {
	return &imagePool{free: make(map[int][]*ebiten.Image)}
}

// get returns a cleared w x h view of a pooled image.
func (p *imagePool) get(w, h int) (view, base *ebiten.Image) {
	s := nextPow2(max(w, h, 1))
	p.mu.Lock()
	list := p.free[s]
	if n := len(list); n > 0 {
		base = list[n-1]
		p.free[s] = list[:n-1]
	}
	p.mu.Unlock()
	if base == nil {
		base = ebiten.NewImage(s, s)
	} else {
		base.Clear()
	}
	return base.SubImage(image.Rect(0, 0, w, h)).(*ebiten.Image), base
}

func (p *imagePool) put(img *ebiten.Image) {
	if img == nil {
		return
	}
	s := img.Bounds().Dx()
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free[s]) < maxPooled {
		p.free[s] = append(p.free[s], img)
		return
	}
	img.Deallocate()
}

// drain releases every pooled image.
func (p *imagePool) drain() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for s, list := range p.free {
		for _, img := range list {
			img.Deallocate()
		}
		delete(p.free, s)
	}
}
