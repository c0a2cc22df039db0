package cfgrec

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Codec converts between word buffers held in a host's native order and the
// big-endian file format.
type Codec struct {
	// Host is the native byte order of the machine whose memory the words
	// are taken from. Nil means little-endian.
	Host binary.ByteOrder
}

func (c Codec) host() binary.ByteOrder {
	if c.Host == nil {
		return binary.LittleEndian
	}
	return c.Host
}

func (c Codec) littleHost() bool {
	var b [2]byte
	c.host().PutUint16(b[:], 1)
	return b[0] == 1
}

// swap reverses the bytes of every whole word in b.
func swap(b []byte) {
	for i := 0; i+4 <= len(b); i += 4 {
		b[i], b[i+1], b[i+2], b[i+3] = b[i+3], b[i+2], b[i+1], b[i]
	}
}

// Memory renders words the way the host keeps them in memory.
func (c Codec) Memory(words []int32) []byte {
	b := make([]byte, len(words)*4)
	h := c.host()
	for i, w := range words {
		h.PutUint32(b[i*4:], uint32(w))
	}
	return b
}

// Words reads a host memory image back into words.
func (c Codec) Words(b []byte, words []int32) {
	h := c.host()
	for i := range words {
		if (i+1)*4 > len(b) {
			return
		}
		words[i] = int32(h.Uint32(b[i*4:]))
	}
}

// Encode turns words into file bytes. The host image is swapped on a
// little-endian host; a big-endian host image already matches the file.
func (c Codec) Encode(words []int32) []byte {
	b := c.Memory(words)
	if c.littleHost() {
		swap(b)
	}
	return b
}

// Decode turns file bytes into words. A trailing partial word is ignored.
func (c Codec) Decode(b []byte, words []int32) {
	m := make([]byte, len(b))
	copy(m, b)
	if c.littleHost() {
		swap(m)
	}
	c.Words(m, words)
}

// Save writes a sealed copy of r.
func (c Codec) Save(w io.Writer, r *Record) error {
	out := *r
	out.Seal()
	if _, err := w.Write(c.Encode(out[:])); err != nil {
		return fmt.Errorf("cfgrec: save: %w", err)
	}
	return nil
}

// Load reads and validates a record.
func (c Codec) Load(rd io.Reader) (*Record, error) {
	b := make([]byte, Size)
	if _, err := io.ReadFull(rd, b); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, ErrShort
		}
		return nil, fmt.Errorf("cfgrec: load: %w", err)
	}
	r := &Record{}
	c.Decode(b, r[:])
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}
