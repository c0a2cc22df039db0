package snd

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// NoteLength is how long each note of a tone lasts.
const NoteLength = 200 * time.Millisecond

var noteOffsets = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// parseNote converts a note such as "C4" into a frequency in Hz. The octave
// defaults to 4 and only natural notes are recognised.
func parseNote(s string) (float64, error) {
	if s == "" {
		return 0, fmt.Errorf("snd: empty note")
	}
	up := strings.ToUpper(s)
	base, ok := noteOffsets[up[0]]
	if !ok {
		return 0, fmt.Errorf("snd: bad note %q", s)
	}
	octave := 4
	if len(up) > 1 {
		o, err := strconv.Atoi(up[1:])
		if err != nil {
			return 0, fmt.Errorf("snd: bad octave in %q", s)
		}
		octave = o
	}
	midi := base + (octave+1)*12
	return 440 * math.Pow(2, float64(midi-69)/12), nil
}

// ToneWAV synthesises tune, a space separated list of notes, as a 16-bit
// stereo WAV file at rate.
func ToneWAV(tune string, rate int) ([]byte, error) {
	sr := beep.SampleRate(rate)
	var parts []beep.Streamer
	for _, n := range strings.Fields(tune) {
		freq, err := parseNote(n)
		if err != nil {
			return nil, err
		}
		sine, err := generators.SineTone(sr, freq)
		if err != nil {
			return nil, fmt.Errorf("snd: note %s: %w", n, err)
		}
		parts = append(parts, beep.Take(sr.N(NoteLength), sine))
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("snd: empty tune")
	}
	quiet := &effects.Gain{Streamer: beep.Seq(parts...), Gain: -0.8}
	left, right, err := render(quiet)
	if err != nil {
		return nil, err
	}
	return wavFile(interleave(left, right), rate), nil
}

// wavFile wraps 16-bit stereo PCM in a canonical RIFF header.
func wavFile(pcm []byte, rate int) []byte {
	const channels, bits = 2, 16
	le := binary.LittleEndian
	b := make([]byte, 0, 44+len(pcm))
	b = append(b, "RIFF"...)
	b = le.AppendUint32(b, uint32(36+len(pcm)))
	b = append(b, "WAVEfmt "...)
	b = le.AppendUint32(b, 16)
	b = le.AppendUint16(b, 1)
	b = le.AppendUint16(b, channels)
	b = le.AppendUint32(b, uint32(rate))
	b = le.AppendUint32(b, uint32(rate*channels*bits/8))
	b = le.AppendUint16(b, channels*bits/8)
	b = le.AppendUint16(b, bits)
	b = append(b, "data"...)
	b = le.AppendUint32(b, uint32(len(pcm)))
	return append(b, pcm...)
}
