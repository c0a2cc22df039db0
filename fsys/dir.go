// Package fsys resolves logical asset names against a writable directory and
// a list of read-only search directories.
package fsys

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrBadName is returned for names that are absolute or climb out of the root.
var ErrBadName = errors.New("fsys: invalid name")

// Dir is a layered file system. Writes always go to WriteDir; reads try
// WriteDir first and then each entry of Search in order.
type Dir struct {
	WriteDir string
	Search   []string
}

// New returns a Dir writing to writeDir and reading from writeDir then search.
func New(writeDir string, search ...string) *Dir {
	return &Dir{WriteDir: writeDir, Search: search}
}

func clean(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	if name == "" || path.IsAbs(name) {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	c := path.Clean(name)
	if c == ".." || strings.HasPrefix(c, "../") {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return filepath.FromSlash(c), nil
}

func (d *Dir) roots() []string {
	out := make([]string, 0, len(d.Search)+1)
	if d.WriteDir != "" {
		out = append(out, d.WriteDir)
	}
	return append(out, d.Search...)
}

// Locate returns the host path a read of name would open.
func (d *Dir) Locate(name string) (string, error) {
	rel, err := clean(name)
	if err != nil {
		return "", err
	}
	for _, root := range d.roots() {
		p := filepath.Join(root, rel)
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}
	return "", &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// OpenRead opens name for reading from the first root that has it.
func (d *Dir) OpenRead(name string) (io.ReadSeekCloser, error) {
	p, err := d.Locate(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (d *Dir) openWrite(name string, flag int) (io.WriteCloser, error) {
	if d.WriteDir == "" {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
	}
	rel, err := clean(name)
	if err != nil {
		return nil, err
	}
	p := filepath.Join(d.WriteDir, rel)
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(p, flag, 0644)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// OpenWrite creates or truncates name in the write directory.
func (d *Dir) OpenWrite(name string) (io.WriteCloser, error) {
	return d.openWrite(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
}

// OpenAppend opens name in the write directory for appending.
func (d *Dir) OpenAppend(name string) (io.WriteCloser, error) {
	return d.openWrite(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND)
}

// Size returns the byte size of name as OpenRead would see it.
func (d *Dir) Size(name string) (int64, error) {
	p, err := d.Locate(name)
	if err != nil {
		return 0, err
	}
	st, err := os.Stat(p)
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}
