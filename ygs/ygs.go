// Package ygs is the platform layer of the game: it owns the window, the
// renderer and its offscreen target, the image and sound banks, the overlay
// text layers and the frame pacing loop.
//
// All state lives in a Context that must only be used from one goroutine.
package ygs

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hako/durafmt"
	"golang.org/x/time/rate"

	"heboris/pacer"
)

const (
	MaxTextures   = 100
	MaxTextLayers = 16
	MaxWaves      = 100

	// AudioRate and AudioChannels describe the opened audio device.
	AudioRate     = 44100
	AudioChannels = 2

	// DefaultFPS is the frame rate set by Init.
	DefaultFPS = 60

	// maxTextLen is the longest string a text layer keeps, in bytes.
	maxTextLen = 255
)

const (
	quitNone = iota
	quitVideo
	quitFormats
	quitAudio
)

// DefaultFonts are the font assets for the small, medium and large text
// buckets.
var DefaultFonts = [numFonts]string{
	"res/font/font10.ttf",
	"res/font/font12.ttf",
	"res/font/font16.ttf",
}

var fontSizes = [numFonts]int{10, 12, 16}

// Options configures a Context.
type Options struct {
	Video Video
	Mixer Mixer
	Files FileSystem
	// Slots is notified of input device hot plugging. Optional.
	Slots SlotWatcher

	Logger *log.Logger
	Clock  pacer.Clock

	Title string

	// Fonts overrides DefaultFonts entry by entry when non-empty.
	Fonts [numFonts]string

	// BuiltinFont is decoded in place of a font asset that cannot be found.
	BuiltinFont []byte

	// CursorHideFrames is how many idle frames pass before the pointer is
	// hidden. Zero means one second at the current frame rate.
	CursorHideFrames int

	// HostOrder is the memory byte order word files are converted from and
	// to. Defaults to the machine's own order.
	HostOrder binary.ByteOrder

	// Exit terminates the process. Defaults to os.Exit.
	Exit func(code int)
}

type textLayer struct {
	enabled bool
	x, y    int
	color   color.RGBA
	size    int
	text    string
	dirty   bool
	tex     Texture
	w, h    int
}

type wave struct {
	chunk Chunk
	loops int
}

// Context is the explicit owner of all platform state.
type Context struct {
	opts  Options
	log   *log.Logger
	video Video
	mixer Mixer
	files FileSystem

	initialized bool
	quitLevel   int
	started     time.Time

	window   Window
	renderer Renderer
	target   Texture
	subpixel float32

	logicalW, logicalH int
	screenMode         ScreenMode
	screenIndex        ScreenIndex

	textures [MaxTextures]Texture
	layers   [MaxTextLayers]textLayer
	fonts    [numFonts]Font

	waves   [MaxWaves]wave
	music   Music
	formats FormatSet

	pacer       *pacer.Pacer
	frameSkip   bool
	lastSkipped bool
	cursorIdle  int

	offX, offY         int
	nextOffX, nextOffY int

	drawErrs *rate.Limiter
}

// New returns an uninitialised Context.
func New(opts Options) *Context {
	l := opts.Logger
	if l == nil {
		l = log.Default().WithPrefix("ygs")
	}
	if opts.Exit == nil {
		opts.Exit = os.Exit
	}
	if opts.Title == "" {
		opts.Title = "Heboris C.E."
	}
	for i, name := range opts.Fonts {
		if name == "" {
			opts.Fonts[i] = DefaultFonts[i]
		}
	}
	return &Context{
		opts:      opts,
		log:       l,
		video:     opts.Video,
		mixer:     opts.Mixer,
		files:     opts.Files,
		pacer:     pacer.New(DefaultFPS, opts.Clock),
		frameSkip: true,
		drawErrs:  rate.NewLimiter(rate.Every(time.Second), 4),
	}
}

// Init starts the video and audio subsystems, opens the audio device with a
// buffer of soundBufferFrames sample frames and loads the text fonts. Any
// failure is fatal. Calling Init again after it succeeded only resets the
// per-session state (offsets, frame rate, text layers, frame skipping).
func (c *Context) Init(soundBufferFrames int) error {
	if soundBufferFrames <= 0 {
		return fatal("init", ErrSoundBuffer)
	}

	if !c.initialized {
		c.quitLevel = quitNone
		if err := c.video.Init(); err != nil {
			return fatal("video init", err)
		}
		c.quitLevel = quitVideo

		formats, err := c.mixer.Init()
		if err != nil {
			return fatal("sound init", err)
		}
		c.formats = formats.With(WaveWAV)
		c.quitLevel = quitFormats

		if err := c.mixer.Open(AudioRate, AudioChannels, soundBufferFrames); err != nil {
			return fatal("open audio", err)
		}
		c.quitLevel = quitAudio
		c.mixer.AllocateChannels(MaxWaves)
		c.started = c.pacer.Now()
	}

	c.offX, c.offY = 0, 0
	c.nextOffX, c.nextOffY = 0, 0
	c.SetFPS(DefaultFPS)

	if !c.initialized {
		c.textures = [MaxTextures]Texture{}
		c.waves = [MaxWaves]wave{}
		c.music = nil
	}
	c.resetTextLayers()

	if !c.initialized {
		if err := c.loadFonts(); err != nil {
			return err
		}
	}

	c.lastSkipped = false
	c.frameSkip = true
	c.initialized = true
	c.log.Debug("platform initialised", "formats", c.formats, "buffer", soundBufferFrames)
	return nil
}

func (c *Context) openFont(name string) (io.ReadCloser, error) {
	f, err := c.files.OpenRead(name)
	if err == nil {
		return f, nil
	}
	if c.opts.BuiltinFont == nil {
		return nil, err
	}
	c.log.Debug("font missing, using builtin", "name", name)
	return io.NopCloser(bytes.NewReader(c.opts.BuiltinFont)), nil
}

func (c *Context) loadFonts() error {
	for i, name := range c.opts.Fonts {
		r, err := c.openFont(name)
		if err != nil {
			c.log.Warn("font missing", "name", name, "err", err)
			continue
		}
		font, err := c.video.OpenFont(r, fontSizes[i])
		r.Close()
		if err != nil {
			return fatal("open font "+name, err)
		}
		c.fonts[i] = font
	}
	return nil
}

// Deinit releases everything Init and SetScreen acquired, in reverse order.
// It is safe to call on a partially initialised Context.
func (c *Context) Deinit() {
	for i := range c.waves {
		if c.waves[i].chunk != nil {
			c.waves[i].chunk.Free()
		}
		c.waves[i] = wave{}
	}
	if c.music != nil {
		c.music.Free()
		c.music = nil
	}

	c.releaseDisplay()

	for i, f := range c.fonts {
		if f != nil {
			f.Close()
			c.fonts[i] = nil
		}
	}

	switch c.quitLevel {
	case quitAudio:
		c.mixer.Close()
		fallthrough
	case quitFormats:
		c.mixer.Quit()
		fallthrough
	case quitVideo:
		c.video.Quit()
	}
	if c.quitLevel != quitNone {
		up := c.pacer.Now().Sub(c.started)
		c.log.Info("platform shut down", "uptime", durafmt.Parse(up).LimitFirstN(2).String())
	}
	c.quitLevel = quitNone
	c.initialized = false
}

// Exit tears everything down and terminates the process with code.
func (c *Context) Exit(code int) {
	c.Deinit()
	c.opts.Exit(code)
}
