package ygs

import (
	"fmt"
	"math"
	"strings"
)

// MaxVolume is the mixer's full volume.
const MaxVolume = 128

// LoopForever is the repeat count used for looping sounds. Short sounds
// cannot loop without end, so a count that never runs out in practice
// stands in for it.
const LoopForever = math.MaxInt32

// WaveFormat identifies an audio encoding.
type WaveFormat int

const (
	WaveMID WaveFormat = iota
	WaveWAV
	WaveOGG
	WaveMP3
	WaveFLAC
	WaveOPUS
	WaveMOD
	WaveIT
	WaveXM
	WaveS3M
	NumWaveFormats
)

var waveFormatNames = [NumWaveFormats]string{"mid", "wav", "ogg", "mp3", "flac", "opus", "mod", "it", "xm", "s3m"}

func (f WaveFormat) String() string {
	if f < 0 || f >= NumWaveFormats {
		return fmt.Sprintf("WaveFormat(%d)", int(f))
	}
	return waveFormatNames[f]
}

// FormatSet is a set of decodable formats.
type FormatSet uint32

// Formats returns a set holding fs.
func Formats(fs ...WaveFormat) FormatSet {
	var s FormatSet
	for _, f := range fs {
		s = s.With(f)
	}
	return s
}

func (s FormatSet) With(f WaveFormat) FormatSet { return s | 1<<uint(f) }

func (s FormatSet) Has(f WaveFormat) bool {
	return f >= 0 && f < NumWaveFormats && s&(1<<uint(f)) != 0
}

func (s FormatSet) String() string {
	var names []string
	for f := WaveFormat(0); f < NumWaveFormats; f++ {
		if s.Has(f) {
			names = append(names, f.String())
		}
	}
	return strings.Join(names, ",")
}

// WaveFormatSupported reports whether the mixer could decode f when it was
// initialised. WAV is always supported.
func (c *Context) WaveFormatSupported(f WaveFormat) bool { return c.formats.Has(f) }

// mixerVolume maps 0-100 onto 0-MaxVolume.
func mixerVolume(vol int) int {
	v := int(float32(vol) / 100 * MaxVolume)
	if v > MaxVolume {
		v = MaxVolume
	}
	if v < 0 {
		v = 0
	}
	return v
}

// LoadWave decodes the sound asset name into slot. The previous sound is
// only dropped once the new asset could be opened. Loop mode is reset.
func (c *Context) LoadWave(name string, slot int) error {
	if !slotOK(slot, MaxWaves) {
		return fmt.Errorf("load wave %s: %w: %d", name, ErrSlot, slot)
	}
	f, err := c.files.OpenRead(name)
	if err != nil {
		return fmt.Errorf("load wave %s: %w", name, err)
	}
	defer f.Close()

	w := &c.waves[slot]
	if w.chunk != nil {
		w.chunk.Free()
		w.chunk = nil
	}
	w.loops = 0
	chunk, err := c.mixer.LoadChunk(f)
	if err != nil {
		return fmt.Errorf("load wave %s: %w", name, err)
	}
	w.chunk = chunk
	return nil
}

// SetLoopModeWave makes slot repeat for as long as it plays, or play once.
func (c *Context) SetLoopModeWave(slot int, loop bool) {
	if !slotOK(slot, MaxWaves) {
		return
	}
	if loop {
		c.waves[slot].loops = LoopForever
	} else {
		c.waves[slot].loops = 0
	}
}

// LoopModeWave reports whether slot is set to loop.
func (c *Context) LoopModeWave(slot int) bool {
	return slotOK(slot, MaxWaves) && c.waves[slot].loops != 0
}

func (c *Context) PlayWave(slot int) {
	if !slotOK(slot, MaxWaves) || c.waves[slot].chunk == nil {
		return
	}
	if err := c.mixer.PlayChannel(slot, c.waves[slot].chunk, c.waves[slot].loops); err != nil {
		c.log.Warn("play wave", "slot", slot, "err", err)
	}
}

func (c *Context) StopWave(slot int) {
	if slotOK(slot, MaxWaves) {
		c.mixer.HaltChannel(slot)
	}
}

func (c *Context) PauseWave(slot int) {
	if slotOK(slot, MaxWaves) {
		c.mixer.PauseChannel(slot)
	}
}

// ReplayWave resumes a paused slot.
func (c *Context) ReplayWave(slot int) {
	if slotOK(slot, MaxWaves) {
		c.mixer.ResumeChannel(slot)
	}
}

// SetVolumeWave sets the volume of slot on a 0-100 scale.
func (c *Context) SetVolumeWave(slot, vol int) {
	if slotOK(slot, MaxWaves) {
		c.mixer.ChannelVolume(slot, mixerVolume(vol))
	}
}

func (c *Context) IsPlayWave(slot int) bool {
	return slotOK(slot, MaxWaves) && c.mixer.ChannelPlaying(slot)
}

// StopAllWaves halts every sound channel.
func (c *Context) StopAllWaves() {
	for i := range c.waves {
		c.mixer.HaltChannel(i)
	}
}

// SetVolumeAllWaves sets every sound channel to vol on a 0-100 scale.
func (c *Context) SetVolumeAllWaves(vol int) {
	v := mixerVolume(vol)
	for i := range c.waves {
		c.mixer.ChannelVolume(i, v)
	}
}

// LoadMusic replaces the music stream with the asset name.
func (c *Context) LoadMusic(name string) error {
	if c.music != nil {
		c.music.Free()
		c.music = nil
	}
	f, err := c.files.OpenRead(name)
	if err != nil {
		return fmt.Errorf("load music %s: %w", name, err)
	}
	m, err := c.mixer.LoadMusic(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("load music %s: %w", name, err)
	}
	c.music = m
	c.mixer.MusicVolume(MaxVolume)
	return nil
}

// PlayMusic starts the loaded music, repeating forever.
func (c *Context) PlayMusic() {
	if c.music == nil {
		return
	}
	if err := c.mixer.PlayMusic(c.music, -1); err != nil {
		c.log.Warn("play music", "err", err)
	}
}

func (c *Context) StopMusic()   { c.mixer.HaltMusic() }
func (c *Context) PauseMusic()  { c.mixer.PauseMusic() }
func (c *Context) ReplayMusic() { c.mixer.ResumeMusic() }

// SetVolumeMusic sets the music volume on a 0-100 scale.
func (c *Context) SetVolumeMusic(vol int) { c.mixer.MusicVolume(mixerVolume(vol)) }

func (c *Context) IsPlayMusic() bool { return c.mixer.MusicPlaying() }
