package snd

import "io"

// repeatReader plays pcm once plus loops more times.
type repeatReader struct {
	pcm   []byte
	pos   int
	loops int
}

func newRepeatReader(pcm []byte, loops int) *repeatReader {
	return &repeatReader{pcm: pcm, loops: max(loops, 0)}
}

func (r *repeatReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) && len(r.pcm) > 0 {
		if r.pos == len(r.pcm) {
			if r.loops == 0 {
				break
			}
			r.loops--
			r.pos = 0
		}
		c := copy(p[n:], r.pcm[r.pos:])
		n += c
		r.pos += c
	}
	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return n, nil
}
