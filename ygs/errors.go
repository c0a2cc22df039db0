package ygs

import (
	"errors"
	"fmt"
)

var (
	ErrScreenSetup    = errors.New("ygs: screen setup failed")
	ErrWindowType     = errors.New("ygs: invalid window type")
	ErrTargetBound    = errors.New("ygs: renderer setting changed while a render target is bound")
	ErrSoundBuffer    = errors.New("ygs: sound buffer size must be positive")
	ErrSlot           = errors.New("ygs: slot out of range")
	ErrNotInitialized = errors.New("ygs: not initialized")
)

// FatalError marks a failure the session cannot recover from. The owner of
// the frame loop is expected to call Context.Exit after receiving one.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string { return fmt.Sprintf("ygs: fatal: %s: %v", e.Op, e.Err) }

func (e *FatalError) Unwrap() error { return e.Err }

func fatal(op string, err error) error {
	return &FatalError{Op: op, Err: err}
}

// IsFatal reports whether err, or anything it wraps, is a FatalError.
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}
