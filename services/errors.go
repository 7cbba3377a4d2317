package services

import (
	"errors"
	"fmt"
)

var (
	// ErrReplayFailed marks a mutation that succeeded while the cached search
	// could not be refreshed afterwards.
	ErrReplayFailed = errors.New("mutation applied but cached search is stale")

	ErrClientNotFound = errors.New("client not found")
)

// ReplayError is returned by a mutation whose write succeeded but whose
// cached-search refresh failed. The mutation is not rolled back.
type ReplayError struct {
	Op  string
	Err error
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("%s: %v: %v", e.Op, ErrReplayFailed, e.Err)
}

func (e *ReplayError) Unwrap() []error { return []error{ErrReplayFailed, e.Err} }
