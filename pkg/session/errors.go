package session

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyConnected = errors.New("already connected")
	ErrNotConnected     = errors.New("not connected")
	ErrReadOnly         = errors.New("connection is read only")
)

// UsageError reports an operation called in a state that does not permit it.
// The controller state is unchanged.
type UsageError struct {
	Op    string
	State State
	Err   error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("%s in state %s: %v", e.Op, e.State, e.Err)
}

func (e *UsageError) Unwrap() error {
	return e.Err
}
