// Package cfgrec implements the fixed-layout game configuration record.
//
// A record is a flat array of 32-bit words. The file format stores words in
// big-endian order; a Codec reads and writes on behalf of a host whose native
// word order may differ, swapping every word on the way in and out.
package cfgrec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"
)

const (
	// Length is the number of words in a record.
	Length = 302
	// Version is bumped whenever a layout change breaks compatibility.
	Version = 3
	// Size is the record size in bytes.
	Size = Length * 4
)

// Word positions of the fields the platform layer consumes.
const (
	WordScreenMode  = 4
	WordScreenIndex = 5
	WordFPS         = 46
	WordWaveVolume  = 47
	WordMusicVolume = 48
	WordVersion     = Length - 2
	WordChecksum    = Length - 1
)

// Magic is the header stamped into words 0-3.
var Magic = [4]int32{0x4F424550, 0x20534953, 0x464E4F44, 0x31764750}

var (
	ErrShort    = errors.New("cfgrec: short record")
	ErrMagic    = errors.New("cfgrec: bad magic")
	ErrVersion  = errors.New("cfgrec: version mismatch")
	ErrChecksum = errors.New("cfgrec: checksum mismatch")
)

// Record is one configuration record.
type Record [Length]int32

// Defaults returns a stamped record holding the default platform settings.
func Defaults(screenMode, screenIndex int32) *Record {
	r := &Record{}
	r.Stamp()
	r[WordScreenMode] = screenMode
	r[WordScreenIndex] = screenIndex
	r[WordFPS] = 60
	r[WordWaveVolume] = 100
	r[WordMusicVolume] = 100
	r.Seal()
	return r
}

// Stamp writes the magic header and version.
func (r *Record) Stamp() {
	copy(r[:4], Magic[:])
	r[WordVersion] = Version
}

// Seal recomputes the checksum word.
func (r *Record) Seal() { r[WordChecksum] = int32(r.Checksum()) }

// Checksum hashes every word ahead of the checksum word.
func (r *Record) Checksum() uint32 {
	h := fnv.New32a()
	var b [4]byte
	for _, w := range r[:WordChecksum] {
		binary.BigEndian.PutUint32(b[:], uint32(w))
		h.Write(b[:])
	}
	return h.Sum32()
}

// Validate reports why a loaded record cannot be used.
func (r *Record) Validate() error {
	for i, w := range Magic {
		if r[i] != w {
			return ErrMagic
		}
	}
	if r[WordVersion] != Version {
		return fmt.Errorf("%w: have %d want %d", ErrVersion, r[WordVersion], Version)
	}
	if uint32(r[WordChecksum]) != r.Checksum() {
		return ErrChecksum
	}
	return nil
}

func (r *Record) ScreenMode() int32  { return r[WordScreenMode] }
func (r *Record) ScreenIndex() int32 { return r[WordScreenIndex] }

// SetScreen stores the negotiated display settings.
func (r *Record) SetScreen(mode, index int32) {
	r[WordScreenMode] = mode
	r[WordScreenIndex] = index
}

func (r *Record) FPS() int         { return int(r[WordFPS]) }
func (r *Record) WaveVolume() int  { return int(r[WordWaveVolume]) }
func (r *Record) MusicVolume() int { return int(r[WordMusicVolume]) }

func (r *Record) SetFPS(fps int) { r[WordFPS] = int32(fps) }

// SetVolumes stores the wave and music volumes on the 0-100 scale.
func (r *Record) SetVolumes(wave, music int) {
	r[WordWaveVolume] = int32(wave)
	r[WordMusicVolume] = int32(music)
}
