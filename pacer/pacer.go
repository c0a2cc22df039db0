// Package pacer holds a game loop to a fixed frame rate and reports when the
// loop has fallen far enough behind that the next presentation should be
// skipped.
package pacer

import "time"

// DefaultFPS is the rate a new Pacer runs at when given a non-positive rate.
const DefaultFPS = 60

// Clock is the time source used by a Pacer.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock returns the wall clock.
func SystemClock() Clock { return systemClock{} }

// Pacer tracks the deadline of the next frame and a rolling one-second
// frame counter.
type Pacer struct {
	clock    Clock
	fps      int
	interval time.Duration
	next     time.Time

	windowStart time.Time
	frames      int
	realFPS     int
}

// New returns a Pacer for fps frames per second. A nil clock uses the wall
// clock.
func New(fps int, clock Clock) *Pacer {
	if clock == nil {
		clock = SystemClock()
	}
	p := &Pacer{clock: clock}
	p.SetFPS(fps)
	p.Reset()
	return p
}

// SetFPS changes the target rate. Values below 1 are raised to 1.
func (p *Pacer) SetFPS(fps int) {
	if fps < 1 {
		fps = 1
	}
	p.fps = fps
	p.interval = time.Second / time.Duration(fps)
}

// FPS returns the target rate.
func (p *Pacer) FPS() int { return p.fps }

// Interval returns the duration of one frame at the target rate.
func (p *Pacer) Interval() time.Duration { return p.interval }

// RealFPS returns the number of frames counted during the last complete
// one-second window.
func (p *Pacer) RealFPS() int { return p.realFPS }

// Reset restarts the deadline and the measurement window from now.
func (p *Pacer) Reset() {
	now := p.clock.Now()
	p.next = now.Add(p.interval)
	p.windowStart = now
	p.frames = 0
}

// Step waits until the current frame's deadline and advances it by one
// interval. It returns false when the caller is already a full interval or
// more past the deadline; the deadline is then resynchronised to now so a
// long stall does not produce a burst of catch-up frames.
func (p *Pacer) Step() bool {
	now := p.clock.Now()
	diff := p.next.Sub(now)
	if diff > 0 {
		p.clock.Sleep(diff)
		p.next = p.next.Add(p.interval)
		return true
	}
	if -diff >= p.interval {
		p.next = now.Add(p.interval)
		return false
	}
	p.next = p.next.Add(p.interval)
	return true
}

// Tick counts one frame. Once at least a second has elapsed since the window
// opened, the count becomes the measured rate and a new window opens.
func (p *Pacer) Tick() {
	p.frames++
	now := p.clock.Now()
	if now.Sub(p.windowStart) >= time.Second {
		p.realFPS = p.frames
		p.frames = 0
		p.windowStart = now
	}
}

// Now reads the pacer's clock.
func (p *Pacer) Now() time.Time { return p.clock.Now() }
