package api

import (
	"errors"
	"fmt"
)

// ErrBadURL reports an endpoint that cannot be built from the configured base URL.
var ErrBadURL = errors.New("api: bad url")

// TransportError covers network failures and any non-2xx status.
// StatusCode is zero when no response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("api: %s: server responded %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("api: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response body that does not match the expected shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("api: %s: decode response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
