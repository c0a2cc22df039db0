package ygs

import (
	"image/color"
	"io"
)

// Rect is an integer rectangle in logical pixels.
type Rect struct {
	X, Y, W, H int
}

// FRect is a floating point rectangle in logical pixels.
type FRect struct {
	X, Y, W, H float32
}

// DisplayMode describes one mode a display can be switched to.
type DisplayMode struct {
	W, H        int
	RefreshRate int
}

// WindowSpec is used when the window is first created.
type WindowSpec struct {
	Title   string
	Display int
	W, H    int
	Type    ScreenMode
}

// EventKind classifies the events the frame loop cares about.
type EventKind int

const (
	EventQuit EventKind = iota + 1
	EventResized
	EventDeviceAdded
	EventDeviceRemoved
	EventPointer
)

// Event is one queued platform event.
type Event struct {
	Kind   EventKind
	W, H   int
	Device int
}

// Video is the windowing side of the host platform.
type Video interface {
	Init() error
	Quit()

	NumDisplays() (int, error)
	NumDisplayModes(display int) (int, error)
	DisplayMode(display, index int) (DisplayMode, error)
	DesktopDisplayMode(display int) (DisplayMode, error)

	CreateWindow(spec WindowSpec) (Window, error)
	CreateRenderer(w Window) (Renderer, error)

	PollEvent() (Event, bool)
	ShowCursor(show bool) error
	CursorShown() bool

	OpenFont(r io.Reader, size int) (Font, error)
}

// Window is the single top level window. It is mutated in place across mode
// changes and only destroyed at teardown or rollback.
type Window interface {
	// SetPosition centres the window on display.
	SetPosition(display int)
	SetSize(w, h int)
	SetResizable(on bool)
	Maximize()
	Restore()
	// SetFullscreen switches between windowed (Windowed), desktop
	// fullscreen (FullscreenDesktop) and exclusive fullscreen (Fullscreen).
	SetFullscreen(t ScreenMode) error
	SetDisplayMode(m DisplayMode) error
	Destroy()
}

// Renderer draws textures into the window or into a target texture.
type Renderer interface {
	TargetSupported() bool
	// SetTarget binds t as the destination of draws. Nil restores the
	// window surface.
	SetTarget(t Texture) error
	Target() Texture

	Clear() error
	Present() error
	Flush() error

	SetVSync(on bool) error
	SetLogicalSize(w, h int) error
	SetIntegerScale(on bool) error
	// Scale is the presentation scale from logical to window pixels.
	Scale() float32

	CreateTarget(w, h int) (Texture, error)
	LoadTexture(r io.Reader) (Texture, error)
	// RenderText returns a nil Texture when s has no visible extent.
	RenderText(f Font, s string, c color.RGBA) (Texture, error)

	// Copy draws src of t to dst. A nil src means the whole texture and a
	// nil dst the whole destination.
	Copy(t Texture, src, dst *Rect) error
	CopyF(t Texture, src *Rect, dst *FRect) error

	Destroy()
}

// Texture is an image owned by a Renderer.
type Texture interface {
	Size() (w, h int, err error)
	SetAlphaMod(a uint8) error
	SetBlend(on bool) error
	Destroy()
}

// Font is a rasterisable face at a fixed pixel size.
type Font interface {
	Close()
}

// Chunk is a decoded short sound.
type Chunk interface {
	Free()
}

// Music is a streamed piece of music.
type Music interface {
	Free()
}

// Mixer is the audio side of the host platform. Channels are addressed by
// the wave slot number.
type Mixer interface {
	Init() (FormatSet, error)
	Quit()
	Open(rate, channels, bufferFrames int) error
	Close()
	AllocateChannels(n int)

	LoadChunk(r io.ReadSeeker) (Chunk, error)
	PlayChannel(ch int, c Chunk, loops int) error
	HaltChannel(ch int)
	PauseChannel(ch int)
	ResumeChannel(ch int)
	ChannelPlaying(ch int) bool
	ChannelVolume(ch, vol int)

	// LoadMusic streams from r and closes it when the Music is freed.
	LoadMusic(r io.ReadSeekCloser) (Music, error)
	// PlayMusic starts m; loops < 0 repeats forever.
	PlayMusic(m Music, loops int) error
	HaltMusic()
	PauseMusic()
	ResumeMusic()
	MusicPlaying() bool
	MusicVolume(vol int)
}

// FileSystem opens assets and save files by logical name.
type FileSystem interface {
	OpenRead(name string) (io.ReadSeekCloser, error)
	OpenWrite(name string) (io.WriteCloser, error)
	OpenAppend(name string) (io.WriteCloser, error)
}

// SlotWatcher is told when input devices come and go so it can remap player
// slots. An error from it ends the session.
type SlotWatcher interface {
	PlayerSlotsChanged() error
}
