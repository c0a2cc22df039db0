package snd

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/flac"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"heboris/ygs"
)

var errUnknownFormat = errors.New("snd: unrecognised audio format")

// sniff identifies the encoding from the first bytes of a file.
func sniff(head []byte) (ygs.WaveFormat, bool) {
	switch {
	case len(head) >= 12 && string(head[:4]) == "RIFF" && string(head[8:12]) == "WAVE":
		return ygs.WaveWAV, true
	case len(head) >= 4 && string(head[:4]) == "OggS":
		return ygs.WaveOGG, true
	case len(head) >= 4 && string(head[:4]) == "fLaC":
		return ygs.WaveFLAC, true
	case len(head) >= 3 && string(head[:3]) == "ID3":
		return ygs.WaveMP3, true
	case len(head) >= 2 && head[0] == 0xff && head[1]&0xe0 == 0xe0:
		return ygs.WaveMP3, true
	}
	return 0, false
}

func sniffReader(r io.ReadSeeker) (ygs.WaveFormat, error) {
	head := make([]byte, 12)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		if err == io.EOF {
			return 0, errUnknownFormat
		}
		return 0, err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}
	f, ok := sniff(head[:n])
	if !ok {
		return 0, errUnknownFormat
	}
	return f, nil
}

// decodeStream returns 16-bit stereo PCM at rate and its length in bytes.
func decodeStream(r io.ReadSeeker, rate int) (io.ReadSeeker, int64, error) {
	f, err := sniffReader(r)
	if err != nil {
		return nil, 0, err
	}
	switch f {
	case ygs.WaveWAV:
		s, err := wav.DecodeWithSampleRate(rate, r)
		if err != nil {
			return nil, 0, fmt.Errorf("snd: wav: %w", err)
		}
		return s, s.Length(), nil
	case ygs.WaveOGG:
		s, err := vorbis.DecodeWithSampleRate(rate, r)
		if err != nil {
			return nil, 0, fmt.Errorf("snd: ogg: %w", err)
		}
		return s, s.Length(), nil
	case ygs.WaveMP3:
		s, err := mp3.DecodeWithSampleRate(rate, r)
		if err != nil {
			return nil, 0, fmt.Errorf("snd: mp3: %w", err)
		}
		return s, s.Length(), nil
	case ygs.WaveFLAC:
		pcm, err := decodeFLAC(r, rate)
		if err != nil {
			return nil, 0, err
		}
		return bytes.NewReader(pcm), int64(len(pcm)), nil
	}
	return nil, 0, errUnknownFormat
}

// decodeAll decodes r completely into PCM.
func decodeAll(r io.ReadSeeker, rate int) ([]byte, error) {
	s, length, err := decodeStream(r, rate)
	if err != nil {
		return nil, err
	}
	pcm := make([]byte, 0, length)
	pcm, err = readAll(s, pcm)
	if err != nil {
		return nil, fmt.Errorf("snd: decode: %w", err)
	}
	if len(pcm) == 0 {
		return nil, errors.New("snd: empty sound")
	}
	return pcm, nil
}

func readAll(r io.Reader, buf []byte) ([]byte, error) {
	w := bytes.NewBuffer(buf)
	_, err := w.ReadFrom(r)
	return w.Bytes(), err
}

// resampleQuality is beep's interpolation order for rate conversion.
const resampleQuality = 4

func decodeFLAC(r io.Reader, rate int) ([]byte, error) {
	s, format, err := flac.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("snd: flac: %w", err)
	}
	defer s.Close()
	left, right, err := render(atRate(s, format.SampleRate, rate))
	if err != nil {
		return nil, fmt.Errorf("snd: flac: %w", err)
	}
	return interleave(left, right), nil
}

// atRate converts s from rate from to rate.
func atRate(s beep.Streamer, from beep.SampleRate, rate int) beep.Streamer {
	if int(from) == rate {
		return s
	}
	return beep.Resample(resampleQuality, from, beep.SampleRate(rate), s)
}

// render drains s into one 16-bit sample slice per side.
func render(s beep.Streamer) (left, right []int16, err error) {
	buf := make([][2]float64, 4096)
	for {
		n, ok := s.Stream(buf)
		for _, f := range buf[:n] {
			left = append(left, toInt16(f[0]))
			right = append(right, toInt16(f[1]))
		}
		if !ok {
			break
		}
	}
	return left, right, s.Err()
}

func toInt16(v float64) int16 {
	if v >= 1 {
		return 1<<15 - 1
	}
	if v <= -1 {
		return -1 << 15
	}
	return int16(v * (1<<15 - 1))
}

func interleave(left, right []int16) []byte {
	n := min(len(left), len(right))
	pcm := make([]byte, n*4)
	for i := 0; i < n; i++ {
		pcm[4*i] = byte(left[i])
		pcm[4*i+1] = byte(left[i] >> 8)
		pcm[4*i+2] = byte(right[i])
		pcm[4*i+3] = byte(right[i] >> 8)
	}
	return pcm
}
