package wire

import (
	"errors"
	"fmt"
)

var (
	ErrUnderrun      = errors.New("buffer underrun")
	ErrEncoding      = errors.New("invalid utf-8 string")
	ErrStringTooLong = errors.New("string exceeds 65535 bytes")
)

// UnderrunError is returned when a read needs more bytes than remain.
type UnderrunError struct {
	Offset    int
	Need      int
	Remaining int
}

func (e *UnderrunError) Error() string {
	return fmt.Sprintf("buffer underrun at offset %d: need %d bytes, %d remaining",
		e.Offset, e.Need, e.Remaining)
}

func (e *UnderrunError) Is(target error) bool {
	return target == ErrUnderrun
}

// EncodingError is returned when a string field is not valid UTF-8.
type EncodingError struct {
	Offset int
	Length int
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("invalid utf-8 string of %d bytes at offset %d", e.Length, e.Offset)
}

func (e *EncodingError) Is(target error) bool {
	return target == ErrEncoding
}
