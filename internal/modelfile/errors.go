package modelfile

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated indicates the artifact ended before a declared field was complete.
	ErrTruncated = errors.New("truncated model data")
	// ErrTrailingBytes indicates unconsumed bytes after the last field.
	ErrTrailingBytes = errors.New("trailing bytes after model data")
	// ErrDimension indicates inconsistent table dimensions.
	ErrDimension = errors.New("inconsistent table dimensions")
	// ErrStateKey indicates an emission key that does not fit a 16-bit state id.
	ErrStateKey = errors.New("emission key does not fit a 16-bit state id")
	// ErrInvalidUTF8 indicates a class name that is not valid UTF-8.
	ErrInvalidUTF8 = errors.New("class name is not valid UTF-8")
	// ErrDuplicateClass indicates a class name listed more than once.
	ErrDuplicateClass = errors.New("duplicate class name")
)

// DecodeError describes where decoding stopped.
type DecodeError struct {
	Field  string
	Offset int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("modelfile: %s at offset %d: %v", e.Field, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErr(field string, off int, err error) error {
	return &DecodeError{Field: field, Offset: off, Err: err}
}
