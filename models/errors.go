package models

import (
	"errors"
	"fmt"
)

var ErrSerialization = errors.New("search result could not be serialized")

// SerializationError wraps a failure to encode or decode a search page.
type SerializationError struct {
	Op  string
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("%s: serialization: %v", e.Op, e.Err)
}

func (e *SerializationError) Unwrap() []error { return []error{ErrSerialization, e.Err} }
