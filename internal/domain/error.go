package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrBackendUnavailable = errors.New("ai backend unavailable")
	ErrTokenExpired       = errors.New("auth token expired")
)

// RemoteError is the one failure kind the invocation layer surfaces: a remote
// call did not succeed. Message is shown to the user verbatim.
type RemoteError struct {
	Capability string
	Message    string
	StatusCode int // 0 when the request never got a response
	Err        error
}

func (e *RemoteError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s request failed", e.Capability)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// AsRemote wraps err as a RemoteError unless it already is one.
func AsRemote(capability string, err error) *RemoteError {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re
	}
	return &RemoteError{Capability: capability, Message: err.Error(), Err: err}
}
