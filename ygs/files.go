package ygs

import (
	"encoding/binary"
	"fmt"
	"io"

	"heboris/cfgrec"
)

func (c *Context) codec() cfgrec.Codec {
	if c.opts.HostOrder == nil {
		return cfgrec.Codec{Host: binary.NativeEndian}
	}
	return cfgrec.Codec{Host: c.opts.HostOrder}
}

// LoadFile fills words from the word file name. Word files are stored
// big-endian. A file shorter than words fills what it can and reports
// io.ErrUnexpectedEOF.
func (c *Context) LoadFile(name string, words []int32) error {
	return c.ReadFile(name, words, 0)
}

// ReadFile is LoadFile starting offset bytes into the file.
func (c *Context) ReadFile(name string, words []int32, offset int64) error {
	f, err := c.files.OpenRead(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	defer f.Close()
	if offset > 0 {
		if _, err := f.Seek(offset, io.SeekStart); err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
	}
	buf := make([]byte, len(words)*4)
	n, err := io.ReadFull(f, buf)
	c.codec().Decode(buf[:n], words)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	return nil
}

// SaveFile writes words to name, replacing it.
func (c *Context) SaveFile(name string, words []int32) error {
	f, err := c.files.OpenWrite(name)
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return c.writeWords(f, name, words)
}

// AppendFile adds words to the end of name.
func (c *Context) AppendFile(name string, words []int32) error {
	f, err := c.files.OpenAppend(name)
	if err != nil {
		return fmt.Errorf("append %s: %w", name, err)
	}
	return c.writeWords(f, name, words)
}

func (c *Context) writeWords(f io.WriteCloser, name string, words []int32) error {
	_, err := f.Write(c.codec().Encode(words))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
