// Package ebitenhost runs the platform layer on ebiten. ebiten owns the main
// goroutine; the game logic runs on a second goroutine and hands finished
// frames over through Present.
package ebitenhost

import (
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"heboris/ygs"
)

// ErrNotRunning is returned by Init when called outside Run.
var ErrNotRunning = errors.New("ebitenhost: ebiten is not running")

// Host implements ygs.Video and ebiten.Game.
type Host struct {
	log  *log.Logger
	pool *imagePool

	ready     chan struct{}
	readyOnce sync.Once
	stop      chan struct{}
	done      chan struct{}

	mu       sync.Mutex
	events   []ygs.Event
	outW     int
	outH     int
	cursorX  int
	cursorY  int
	pointed  bool
	pads     map[ebiten.GamepadID]struct{}
	front    *ebiten.Image
	integer  bool
	logicErr error

	// Only touched from the logic goroutine.
	win *window
	ren *renderer
}

var _ ygs.Video = (*Host)(nil)

// New returns a host. A nil logger uses the default one.
func New(l *log.Logger) *Host {
	if l == nil {
		l = log.Default().WithPrefix("ebiten")
	}
	return &Host{
		log:   l,
		pool:  newImagePool(),
		ready: make(chan struct{}),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
		pads:  make(map[ebiten.GamepadID]struct{}),
	}
}

// Run starts ebiten on the calling goroutine and logic on another once the
// first tick has happened. It returns when logic returns or ebiten fails.
func (h *Host) Run(logic func() error) error {
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetTPS(ebiten.SyncWithFPS)

	h.startLogic(logic)
	if err := ebiten.RunGameWithOptions(h, &ebiten.RunGameOptions{}); err != nil {
		close(h.stop)
		return err
	}
	h.pool.drain()
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.logicErr
}

// startLogic runs logic after the first tick. If stop closes first, logic
// never runs and done is closed straight away.
func (h *Host) startLogic(logic func() error) {
	go func() {
		defer close(h.done)
		select {
		case <-h.ready:
		case <-h.stop:
			return
		}
		err := logic()
		h.mu.Lock()
		h.logicErr = err
		h.mu.Unlock()
	}()
}

// Update runs on the ebiten goroutine and only gathers events.
func (h *Host) Update() error {
	h.readyOnce.Do(func() { close(h.ready) })
	select {
	case <-h.done:
		return ebiten.Termination
	default:
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if ebiten.IsWindowBeingClosed() {
		h.events = append(h.events, ygs.Event{Kind: ygs.EventQuit})
	}

	for _, id := range inpututil.AppendJustConnectedGamepadIDs(nil) {
		h.pads[id] = struct{}{}
		h.events = append(h.events, ygs.Event{Kind: ygs.EventDeviceAdded, Device: int(id)})
	}
	for id := range h.pads {
		if inpututil.IsGamepadJustDisconnected(id) {
			delete(h.pads, id)
			h.events = append(h.events, ygs.Event{Kind: ygs.EventDeviceRemoved, Device: int(id)})
		}
	}

	x, y := ebiten.CursorPosition()
	_, wy := ebiten.Wheel()
	h.trackPointer(x, y, wy != 0 || inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft))
	return nil
}

// trackPointer queues EventPointer when the pointer moved or was used. The
// first position seen only sets the baseline. Called with mu held.
func (h *Host) trackPointer(x, y int, used bool) {
	if !h.pointed {
		h.pointed = true
		h.cursorX, h.cursorY = x, y
	}
	if x != h.cursorX || y != h.cursorY || used {
		h.cursorX, h.cursorY = x, y
		h.events = append(h.events, ygs.Event{Kind: ygs.EventPointer})
	}
}

// Draw scales the last presented frame onto the screen.
func (h *Host) Draw(screen *ebiten.Image) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.front == nil {
		return
	}
	b := screen.Bounds()
	f := h.front.Bounds()
	scale, x, y := fit(b.Dx(), b.Dy(), f.Dx(), f.Dy(), h.integer)
	op := &ebiten.DrawImageOptions{Filter: ebiten.FilterNearest}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(x, y)
	screen.DrawImage(h.front, op)
}

// Layout keeps the screen at the window size and reports size changes.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if outsideWidth != h.outW || outsideHeight != h.outH {
		h.outW, h.outH = outsideWidth, outsideHeight
		h.events = append(h.events, ygs.Event{Kind: ygs.EventResized, W: outsideWidth, H: outsideHeight})
	}
	return outsideWidth, outsideHeight
}

func (h *Host) outsideSize() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.outW, h.outH
}

// swap makes back the displayed frame and returns the previous one.
func (h *Host) swap(back *ebiten.Image, integer bool) *ebiten.Image {
	h.mu.Lock()
	defer h.mu.Unlock()
	old := h.front
	h.front = back
	h.integer = integer
	return old
}

func (h *Host) PollEvent() (ygs.Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.events) == 0 {
		return ygs.Event{}, false
	}
	ev := h.events[0]
	h.events = h.events[1:]
	return ev, true
}
