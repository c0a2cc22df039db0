// Package snd plays the game's sound effects and music through ebiten's
// audio context.
package snd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2/audio"

	"heboris/ygs"
)

var errNotOpen = errors.New("snd: audio device not open")

// Chunk is a fully decoded sound: 16-bit little-endian stereo PCM at the
// device rate.
type Chunk struct {
	pcm []byte
}

func (c *Chunk) Free() { c.pcm = nil }

// Len is the size of the decoded PCM in bytes.
func (c *Chunk) Len() int { return len(c.pcm) }

type channel struct {
	player *audio.Player
	paused bool
	vol    int
}

// Music is a streamed track. Its source stays open until Free.
type Music struct {
	stream io.ReadSeeker
	length int64
	src    io.Closer
	player *audio.Player
}

func (m *Music) Free() {
	if m.player != nil {
		m.player.Close()
		m.player = nil
	}
	if m.src != nil {
		m.src.Close()
		m.src = nil
	}
}

// Mixer implements ygs.Mixer on top of an ebiten audio context. It is used
// from the game goroutine only; ebiten mixes on its own threads.
type Mixer struct {
	log *log.Logger

	ctx      *audio.Context
	rate     int
	buffer   time.Duration
	channels []channel

	music    *Music
	musicVol int
	paused   bool
}

var _ ygs.Mixer = (*Mixer)(nil)

// New returns a closed mixer. A nil logger uses the default one.
func New(l *log.Logger) *Mixer {
	if l == nil {
		l = log.Default().WithPrefix("snd")
	}
	return &Mixer{log: l, musicVol: ygs.MaxVolume}
}

// Init reports the formats the decoders below understand.
func (m *Mixer) Init() (ygs.FormatSet, error) {
	return ygs.Formats(ygs.WaveWAV, ygs.WaveOGG, ygs.WaveMP3, ygs.WaveFLAC), nil
}

func (m *Mixer) Quit() {}

// Open binds the mixer to the process audio context, creating it at rate on
// first use. bufferFrames sets the per-player buffer length.
func (m *Mixer) Open(rate, channels, bufferFrames int) error {
	if channels != 2 {
		return fmt.Errorf("snd: %d channels unsupported", channels)
	}
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(rate)
	}
	if ctx.SampleRate() != rate {
		return fmt.Errorf("snd: audio context runs at %d Hz, want %d", ctx.SampleRate(), rate)
	}
	m.ctx = ctx
	m.rate = rate
	m.buffer = bufferDuration(bufferFrames, rate)
	m.log.Debug("audio open", "rate", rate, "buffer", m.buffer)
	return nil
}

func bufferDuration(frames, rate int) time.Duration {
	if frames <= 0 || rate <= 0 {
		return 0
	}
	return time.Duration(frames) * time.Second / time.Duration(rate)
}

// Close stops every player.
func (m *Mixer) Close() {
	for i := range m.channels {
		m.HaltChannel(i)
	}
	m.HaltMusic()
	m.ctx = nil
}

func (m *Mixer) AllocateChannels(n int) {
	for len(m.channels) > n {
		m.HaltChannel(len(m.channels) - 1)
		m.channels = m.channels[:len(m.channels)-1]
	}
	for len(m.channels) < n {
		m.channels = append(m.channels, channel{vol: ygs.MaxVolume})
	}
}

func (m *Mixer) channel(ch int) *channel {
	if ch < 0 || ch >= len(m.channels) {
		return nil
	}
	return &m.channels[ch]
}

// LoadChunk decodes r completely.
func (m *Mixer) LoadChunk(r io.ReadSeeker) (ygs.Chunk, error) {
	if m.ctx == nil {
		return nil, errNotOpen
	}
	pcm, err := decodeAll(r, m.rate)
	if err != nil {
		return nil, err
	}
	return &Chunk{pcm: pcm}, nil
}

func (m *Mixer) newPlayer(src io.Reader, vol int) (*audio.Player, error) {
	p, err := m.ctx.NewPlayer(src)
	if err != nil {
		return nil, err
	}
	if m.buffer > 0 {
		p.SetBufferSize(m.buffer)
	}
	p.SetVolume(float64(vol) / ygs.MaxVolume)
	return p, nil
}

// PlayChannel starts c on ch, replacing whatever ch was playing. The chunk
// plays loops+1 times.
func (m *Mixer) PlayChannel(ch int, c ygs.Chunk, loops int) error {
	chunk, ok := c.(*Chunk)
	if !ok {
		return fmt.Errorf("snd: foreign chunk %T", c)
	}
	cs := m.channel(ch)
	if cs == nil {
		return fmt.Errorf("snd: no channel %d", ch)
	}
	if m.ctx == nil {
		return errNotOpen
	}
	m.HaltChannel(ch)
	p, err := m.newPlayer(newRepeatReader(chunk.pcm, loops), cs.vol)
	if err != nil {
		return fmt.Errorf("snd: channel %d: %w", ch, err)
	}
	cs.player = p
	p.Play()
	return nil
}

func (m *Mixer) HaltChannel(ch int) {
	cs := m.channel(ch)
	if cs == nil || cs.player == nil {
		return
	}
	cs.player.Close()
	cs.player = nil
	cs.paused = false
}

func (m *Mixer) PauseChannel(ch int) {
	if cs := m.channel(ch); cs != nil && cs.player != nil && cs.player.IsPlaying() {
		cs.player.Pause()
		cs.paused = true
	}
}

func (m *Mixer) ResumeChannel(ch int) {
	if cs := m.channel(ch); cs != nil && cs.player != nil && cs.paused {
		cs.player.Play()
		cs.paused = false
	}
}

// ChannelPlaying counts a paused channel as playing.
func (m *Mixer) ChannelPlaying(ch int) bool {
	cs := m.channel(ch)
	if cs == nil || cs.player == nil {
		return false
	}
	return cs.paused || cs.player.IsPlaying()
}

func (m *Mixer) ChannelVolume(ch, vol int) {
	cs := m.channel(ch)
	if cs == nil {
		return
	}
	cs.vol = vol
	if cs.player != nil {
		cs.player.SetVolume(float64(vol) / ygs.MaxVolume)
	}
}

// LoadMusic opens a stream over r. FLAC is decoded up front; the other
// formats are decoded while playing and keep r open until Free.
func (m *Mixer) LoadMusic(r io.ReadSeekCloser) (ygs.Music, error) {
	if m.ctx == nil {
		return nil, errNotOpen
	}
	stream, length, err := decodeStream(r, m.rate)
	if err != nil {
		return nil, err
	}
	if _, ok := stream.(*bytes.Reader); ok {
		r.Close()
		return &Music{stream: stream, length: length}, nil
	}
	return &Music{stream: stream, length: length, src: r}, nil
}

// PlayMusic starts mu from the beginning. Negative loops repeat forever.
func (m *Mixer) PlayMusic(mu ygs.Music, loops int) error {
	music, ok := mu.(*Music)
	if !ok {
		return fmt.Errorf("snd: foreign music %T", mu)
	}
	if m.ctx == nil {
		return errNotOpen
	}
	m.HaltMusic()
	if _, err := music.stream.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("snd: rewind music: %w", err)
	}
	var src io.Reader = audio.NewInfiniteLoop(music.stream, music.length)
	if loops >= 0 {
		src = io.LimitReader(src, music.length*int64(loops+1))
	}
	p, err := m.newPlayer(src, m.musicVol)
	if err != nil {
		return fmt.Errorf("snd: music: %w", err)
	}
	music.player = p
	m.music = music
	m.paused = false
	p.Play()
	return nil
}

func (m *Mixer) HaltMusic() {
	if m.music == nil {
		return
	}
	if m.music.player != nil {
		m.music.player.Close()
		m.music.player = nil
	}
	m.music = nil
	m.paused = false
}

func (m *Mixer) PauseMusic() {
	if m.music != nil && m.music.player != nil && m.music.player.IsPlaying() {
		m.music.player.Pause()
		m.paused = true
	}
}

func (m *Mixer) ResumeMusic() {
	if m.music != nil && m.music.player != nil && m.paused {
		m.music.player.Play()
		m.paused = false
	}
}

func (m *Mixer) MusicPlaying() bool {
	if m.music == nil || m.music.player == nil {
		return false
	}
	return m.paused || m.music.player.IsPlaying()
}

func (m *Mixer) MusicVolume(vol int) {
	m.musicVol = vol
	if m.music != nil && m.music.player != nil {
		m.music.player.SetVolume(float64(vol) / ygs.MaxVolume)
	}
}
