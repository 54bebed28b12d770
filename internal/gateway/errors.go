package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrNetworkFailure matches every failed remote call, whether the server
	// was unreachable or answered with something unusable.
	ErrNetworkFailure = errors.New("network failure")

	// ErrInvalidArgument is returned before any network call is made.
	ErrInvalidArgument = errors.New("invalid argument")
)

// NetworkError reports an unreachable server or a transport failure.
type NetworkError struct {
	Op  string
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: request to %s failed: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetworkFailure }

// ServerError reports a non-2xx status or a body that could not be decoded.
type ServerError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *ServerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s answered HTTP %d: %v", e.Op, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s answered HTTP %d", e.Op, e.URL, e.Status)
}

func (e *ServerError) Unwrap() error { return e.Err }

func (e *ServerError) Is(target error) bool { return target == ErrNetworkFailure }
