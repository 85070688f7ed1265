package protocol

import (
	"errors"
	"fmt"
)

var ErrDriverIndexOutOfRange = errors.New("current driver index out of range")

// UnknownMessageTypeError is returned for a message type byte without decoder
type UnknownMessageTypeError struct {
	Type uint8
}

func (e *UnknownMessageTypeError) Error() string {
	return fmt.Sprintf("unknown message type: %d", e.Type)
}

// DecodeError wraps a failure while decoding a known message type
type DecodeError struct {
	Type   string
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s at offset %d: %v", e.Type, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
