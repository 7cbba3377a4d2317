package database

import (
	"client-registry/models"
	"errors"
	"fmt"
)

// Sentinels matched with errors.Is against the structured errors below.
var (
	ErrConnectivity    = errors.New("store connection unavailable")
	ErrStoreExecution  = errors.New("statement execution failed")
	ErrConstraint      = errors.New("constraint violated")
	ErrItemShouldExist = errors.New("item should exist")
	ErrRowDecode       = errors.New("row could not be decoded")
	ErrSerialization   = models.ErrSerialization
	ErrConfiguration   = errors.New("invalid configuration")
	ErrIntegrity       = errors.New("store integrity violated")
	ErrInvalidPage     = errors.New("page number must be at least 1")
	ErrColumnMismatch  = errors.New("unexpected column")
)

// ConnectivityError reports that no connection could be obtained.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("%s: connectivity: %v", e.Op, e.Err)
}

func (e *ConnectivityError) Unwrap() []error { return []error{ErrConnectivity, e.Err} }

// StoreExecutionError carries the statement the store rejected. Constraint
// is set when the row broke a table rule, such as a duplicate client name.
type StoreExecutionError struct {
	Op         string
	Statement  string
	Err        error
	Constraint bool
}

func (e *StoreExecutionError) Error() string {
	return fmt.Sprintf("%s: executing %q: %v", e.Op, e.Statement, e.Err)
}

func (e *StoreExecutionError) Unwrap() []error {
	if e.Constraint {
		return []error{ErrStoreExecution, ErrConstraint, e.Err}
	}
	return []error{ErrStoreExecution, e.Err}
}

// ItemShouldExistError is returned when an operation addresses a record
// that has no identifier or is no longer stored.
type ItemShouldExistError struct {
	Op     string
	Record *models.Client
}

func (e *ItemShouldExistError) Error() string {
	if e.Record == nil {
		return fmt.Sprintf("%s: %v: <nil>", e.Op, ErrItemShouldExist)
	}
	return fmt.Sprintf("%s: %v: %s", e.Op, ErrItemShouldExist, e.Record)
}

func (e *ItemShouldExistError) Unwrap() error { return ErrItemShouldExist }

// RowDecodeError names the column that failed to map onto a record.
type RowDecodeError struct {
	Column string
	Err    error
}

func (e *RowDecodeError) Error() string {
	return fmt.Sprintf("decode column %q: %v", e.Column, e.Err)
}

func (e *RowDecodeError) Unwrap() []error { return []error{ErrRowDecode, e.Err} }

// SerializationError is shared with models, which decodes cached pages.
type SerializationError = models.SerializationError

// ConfigurationError is fatal; it is never recovered from at runtime.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// IntegrityError is raised when the store answers in a way that should be impossible,
// such as a COUNT(*) that yields no row.
type IntegrityError struct {
	Op        string
	Statement string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("%s: %v: %q returned no row", e.Op, ErrIntegrity, e.Statement)
}

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }
