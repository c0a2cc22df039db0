package ygs

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"strings"
	"testing"
	"time"
)

type fakeClock struct {
	now   time.Time
	slept time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.slept += d
	c.now = c.now.Add(d)
}

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeDisplay struct {
	desktop DisplayMode
	modes   []DisplayMode
}

type fakeVideo struct {
	displays  []fakeDisplay
	initErr   error
	modeErr   error
	noTargets bool
	fontErr   error

	inits, quits     int
	windowsCreated   int
	renderersCreated int
	win              *fakeWindow
	ren              *fakeRenderer

	// failVSync is handed to the next renderer created.
	failVSync error

	events      []Event
	cursorShown bool
}

func newFakeVideo() *fakeVideo {
	modes := make([]DisplayMode, 5)
	for i := range modes {
		modes[i] = DisplayMode{W: 640 * (i + 1), H: 480 * (i + 1), RefreshRate: 60}
	}
	return &fakeVideo{
		displays:    []fakeDisplay{{desktop: DisplayMode{W: 1920, H: 1080, RefreshRate: 60}, modes: modes}},
		cursorShown: true,
	}
}

func (v *fakeVideo) Init() error { v.inits++; return v.initErr }
func (v *fakeVideo) Quit()       { v.quits++ }

func (v *fakeVideo) NumDisplays() (int, error) { return len(v.displays), nil }

func (v *fakeVideo) NumDisplayModes(d int) (int, error) {
	if d < 0 || d >= len(v.displays) {
		return 0, errors.New("no such display")
	}
	return len(v.displays[d].modes), nil
}

func (v *fakeVideo) DisplayMode(d, i int) (DisplayMode, error) {
	if v.modeErr != nil {
		return DisplayMode{}, v.modeErr
	}
	if d < 0 || d >= len(v.displays) || i >= len(v.displays[d].modes) {
		return DisplayMode{}, errors.New("no such mode")
	}
	return v.displays[d].modes[i], nil
}

func (v *fakeVideo) DesktopDisplayMode(d int) (DisplayMode, error) {
	if d < 0 || d >= len(v.displays) {
		return DisplayMode{}, errors.New("no such display")
	}
	return v.displays[d].desktop, nil
}

func (v *fakeVideo) CreateWindow(spec WindowSpec) (Window, error) {
	v.windowsCreated++
	v.win = &fakeWindow{spec: spec, w: spec.W, h: spec.H, fullscreen: spec.Type}
	if spec.Type == WindowMaximized {
		v.win.fullscreen = Windowed
		v.win.maximized = true
	}
	return v.win, nil
}

func (v *fakeVideo) CreateRenderer(w Window) (Renderer, error) {
	v.renderersCreated++
	v.ren = &fakeRenderer{win: w.(*fakeWindow), targets: !v.noTargets, vsyncErr: v.failVSync}
	return v.ren, nil
}

func (v *fakeVideo) PollEvent() (Event, bool) {
	if len(v.events) == 0 {
		return Event{}, false
	}
	ev := v.events[0]
	v.events = v.events[1:]
	return ev, true
}

func (v *fakeVideo) ShowCursor(show bool) error {
	v.cursorShown = show
	return nil
}

func (v *fakeVideo) CursorShown() bool { return v.cursorShown }

func (v *fakeVideo) OpenFont(r io.Reader, size int) (Font, error) {
	if v.fontErr != nil {
		return nil, v.fontErr
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &fakeFont{size: size, data: string(b)}, nil
}

type fakeFont struct {
	size   int
	data   string
	closed bool
}

func (f *fakeFont) Close() { f.closed = true }

type fakeWindow struct {
	spec       WindowSpec
	w, h       int
	display    int
	fullscreen ScreenMode
	maximized  bool
	resizable  bool
	mode       DisplayMode
	destroyed  bool
}

func (w *fakeWindow) SetPosition(d int)   { w.display = d }
func (w *fakeWindow) SetSize(x, y int)    { w.w, w.h = x, y }
func (w *fakeWindow) SetResizable(b bool) { w.resizable = b }
func (w *fakeWindow) Maximize()           { w.maximized = true }
func (w *fakeWindow) Restore()            { w.maximized = false }
func (w *fakeWindow) Destroy()            { w.destroyed = true }

func (w *fakeWindow) SetFullscreen(t ScreenMode) error {
	w.fullscreen = t
	return nil
}

func (w *fakeWindow) SetDisplayMode(m DisplayMode) error {
	w.mode = m
	return nil
}

type copyCall struct {
	tex   *fakeTexture
	src   *Rect
	dst   *Rect
	dstF  *FRect
	alpha uint8

	// into is the bound target, nil for the window.
	into *fakeTexture
}

type fakeRenderer struct {
	win     *fakeWindow
	targets bool

	target   *fakeTexture
	logicalW int
	logicalH int
	integer  bool
	vsync    bool

	vsyncErr error
	textErr  error

	clears, presents, flushes int
	settingsWithTarget        int
	targetsCreated            int
	textBuilds                int
	copies                    []copyCall
	destroyed                 bool
}

func (r *fakeRenderer) TargetSupported() bool { return r.targets }

func (r *fakeRenderer) SetTarget(t Texture) error {
	if t == nil {
		r.target = nil
		return nil
	}
	r.target = t.(*fakeTexture)
	return nil
}

func (r *fakeRenderer) Target() Texture {
	if r.target == nil {
		return nil
	}
	return r.target
}

func (r *fakeRenderer) Clear() error   { r.clears++; return nil }
func (r *fakeRenderer) Present() error { r.presents++; return nil }
func (r *fakeRenderer) Flush() error   { r.flushes++; return nil }

func (r *fakeRenderer) setting() {
	if r.target != nil {
		r.settingsWithTarget++
	}
}

func (r *fakeRenderer) SetVSync(on bool) error {
	r.setting()
	if r.vsyncErr != nil {
		return r.vsyncErr
	}
	r.vsync = on
	return nil
}

func (r *fakeRenderer) SetLogicalSize(w, h int) error {
	r.setting()
	r.logicalW, r.logicalH = w, h
	return nil
}

func (r *fakeRenderer) SetIntegerScale(on bool) error {
	r.setting()
	r.integer = on
	return nil
}

func (r *fakeRenderer) Scale() float32 {
	if r.logicalW == 0 || r.logicalH == 0 {
		return 1
	}
	sx := float32(r.win.w) / float32(r.logicalW)
	sy := float32(r.win.h) / float32(r.logicalH)
	s := min(sx, sy)
	if r.integer && s >= 1 {
		s = float32(int(s))
	}
	return s
}

func (r *fakeRenderer) CreateTarget(w, h int) (Texture, error) {
	r.targetsCreated++
	return &fakeTexture{w: w, h: h, alpha: 0xff, target: true}, nil
}

// LoadTexture accepts "WxH" image sources.
func (r *fakeRenderer) LoadTexture(src io.Reader) (Texture, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	var w, h int
	if _, err := fmt.Sscanf(string(b), "%dx%d", &w, &h); err != nil {
		return nil, fmt.Errorf("bad image: %w", err)
	}
	return &fakeTexture{w: w, h: h, alpha: 0xff}, nil
}

func (r *fakeRenderer) RenderText(f Font, s string, c color.RGBA) (Texture, error) {
	if r.textErr != nil {
		return nil, r.textErr
	}
	r.textBuilds++
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	size := f.(*fakeFont).size
	return &fakeTexture{w: len(s) * size / 2, h: size, alpha: 0xff, text: s, color: c}, nil
}

func (r *fakeRenderer) Copy(t Texture, src, dst *Rect) error {
	ft := t.(*fakeTexture)
	r.copies = append(r.copies, copyCall{tex: ft, src: src, dst: dst, alpha: ft.alpha, into: r.target})
	return nil
}

func (r *fakeRenderer) CopyF(t Texture, src *Rect, dst *FRect) error {
	ft := t.(*fakeTexture)
	r.copies = append(r.copies, copyCall{tex: ft, src: src, dstF: dst, alpha: ft.alpha, into: r.target})
	return nil
}

func (r *fakeRenderer) Destroy() { r.destroyed = true }

type fakeTexture struct {
	w, h      int
	alpha     uint8
	alphas    []uint8
	blend     bool
	target    bool
	text      string
	color     color.RGBA
	destroyed bool
}

func (t *fakeTexture) Size() (int, int, error) { return t.w, t.h, nil }

func (t *fakeTexture) SetAlphaMod(a uint8) error {
	t.alpha = a
	t.alphas = append(t.alphas, a)
	return nil
}

func (t *fakeTexture) SetBlend(on bool) error {
	t.blend = on
	return nil
}

func (t *fakeTexture) Destroy() { t.destroyed = true }

type fakeChunk struct {
	data  string
	freed bool
}

func (c *fakeChunk) Free() { c.freed = true }

type fakeMusic struct {
	r     io.ReadSeekCloser
	freed bool
}

func (m *fakeMusic) Free() {
	m.freed = true
	m.r.Close()
}

type fakeChannel struct {
	chunk   *fakeChunk
	loops   int
	playing bool
	paused  bool
	vol     int
}

type fakeMixer struct {
	formats FormatSet
	initErr error
	openErr error

	opened    bool
	rate      int
	buffer    int
	allocated int
	closed    bool
	quit      bool

	channels map[int]*fakeChannel

	music        *fakeMusic
	musicLoops   int
	musicPlaying bool
	musicVol     int
}

func newFakeMixer() *fakeMixer {
	return &fakeMixer{formats: Formats(WaveOGG, WaveMP3), channels: map[int]*fakeChannel{}}
}

func (m *fakeMixer) Init() (FormatSet, error) { return m.formats, m.initErr }
func (m *fakeMixer) Quit()                    { m.quit = true }
func (m *fakeMixer) Close()                   { m.closed = true }
func (m *fakeMixer) AllocateChannels(n int)   { m.allocated = n }

func (m *fakeMixer) Open(rate, channels, bufferFrames int) error {
	if m.openErr != nil {
		return m.openErr
	}
	m.opened, m.rate, m.buffer = true, rate, bufferFrames
	return nil
}

func (m *fakeMixer) channel(ch int) *fakeChannel {
	c, ok := m.channels[ch]
	if !ok {
		c = &fakeChannel{vol: MaxVolume}
		m.channels[ch] = c
	}
	return c
}

func (m *fakeMixer) LoadChunk(r io.ReadSeeker) (Chunk, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, errors.New("empty sound")
	}
	return &fakeChunk{data: string(b)}, nil
}

func (m *fakeMixer) PlayChannel(ch int, c Chunk, loops int) error {
	fc := m.channel(ch)
	fc.chunk, fc.loops, fc.playing, fc.paused = c.(*fakeChunk), loops, true, false
	return nil
}

// finishCycle plays one pass of the sound on ch to its end.
func (m *fakeMixer) finishCycle(ch int) {
	fc := m.channel(ch)
	if !fc.playing {
		return
	}
	if fc.loops > 0 {
		fc.loops--
		return
	}
	fc.playing = false
}

func (m *fakeMixer) HaltChannel(ch int)         { m.channel(ch).playing = false }
func (m *fakeMixer) PauseChannel(ch int)        { m.channel(ch).paused = true }
func (m *fakeMixer) ResumeChannel(ch int)       { m.channel(ch).paused = false }
func (m *fakeMixer) ChannelPlaying(ch int) bool { return m.channel(ch).playing }
func (m *fakeMixer) ChannelVolume(ch, vol int)  { m.channel(ch).vol = vol }

func (m *fakeMixer) LoadMusic(r io.ReadSeekCloser) (Music, error) {
	return &fakeMusic{r: r}, nil
}

func (m *fakeMixer) PlayMusic(mu Music, loops int) error {
	m.music, m.musicLoops, m.musicPlaying = mu.(*fakeMusic), loops, true
	return nil
}

func (m *fakeMixer) HaltMusic()          { m.musicPlaying = false }
func (m *fakeMixer) PauseMusic()         {}
func (m *fakeMixer) ResumeMusic()        {}
func (m *fakeMixer) MusicPlaying() bool  { return m.musicPlaying }
func (m *fakeMixer) MusicVolume(vol int) { m.musicVol = vol }

type memFile struct {
	*bytes.Reader
	closed *bool
}

func (f memFile) Close() error {
	if f.closed != nil {
		*f.closed = true
	}
	return nil
}

type memWriter struct {
	fs   *memFS
	name string
	buf  bytes.Buffer
}

func (w *memWriter) Write(p []byte) (int, error) { return w.buf.Write(p) }

func (w *memWriter) Close() error {
	w.fs.files[w.name] = append(w.fs.files[w.name], w.buf.Bytes()...)
	return nil
}

type memFS struct {
	files  map[string][]byte
	closed map[string]*bool
}

func newMemFS() *memFS {
	return &memFS{files: map[string][]byte{}, closed: map[string]*bool{}}
}

func (m *memFS) OpenRead(name string) (io.ReadSeekCloser, error) {
	b, ok := m.files[name]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	closed := new(bool)
	m.closed[name] = closed
	return memFile{Reader: bytes.NewReader(b), closed: closed}, nil
}

func (m *memFS) OpenWrite(name string) (io.WriteCloser, error) {
	m.files[name] = nil
	return &memWriter{fs: m, name: name}, nil
}

func (m *memFS) OpenAppend(name string) (io.WriteCloser, error) {
	return &memWriter{fs: m, name: name}, nil
}

type fakeSlots struct {
	calls int
	err   error
}

func (s *fakeSlots) PlayerSlotsChanged() error {
	s.calls++
	return s.err
}

type harness struct {
	ctx   *Context
	video *fakeVideo
	mixer *fakeMixer
	fs    *memFS
	clock *fakeClock
	slots *fakeSlots
	exit  []int
}

// newHarness builds a Context over fakes with all three fonts present. The
// setup func may adjust the fakes and options before Init runs.
func newHarness(t *testing.T, setup func(h *harness, o *Options)) *harness {
	t.Helper()
	h := &harness{
		video: newFakeVideo(),
		mixer: newFakeMixer(),
		fs:    newMemFS(),
		clock: &fakeClock{now: time.Unix(5000, 0)},
		slots: &fakeSlots{},
	}
	for _, name := range DefaultFonts {
		h.fs.files[name] = []byte("font:" + name)
	}
	opts := Options{
		Video: h.video,
		Mixer: h.mixer,
		Files: h.fs,
		Slots: h.slots,
		Clock: h.clock,
		Exit:  func(code int) { h.exit = append(h.exit, code) },
	}
	if setup != nil {
		setup(h, &opts)
	}
	h.ctx = New(opts)
	if err := h.ctx.Init(1024); err != nil {
		t.Fatalf("init: %v", err)
	}
	return h
}

// screen applies mode and index and fails the test on error.
func (h *harness) screen(t *testing.T, mode ScreenMode, index ScreenIndex) (ScreenMode, ScreenIndex) {
	t.Helper()
	m, i, err := h.ctx.SetScreen(mode, index)
	if err != nil {
		t.Fatalf("SetScreen(%#x, %#x): %v", mode, index, err)
	}
	return m, i
}
