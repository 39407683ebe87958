package api

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrorKind classifies a failed backend call.
type ErrorKind int

const (
	// KindTransport covers network failures and non-2xx responses.
	KindTransport ErrorKind = iota
	// KindTimeout means the call's deadline expired and the request was cancelled.
	KindTimeout
	// KindApplication means a 2xx response carried an "error" field or failed actions.
	KindApplication
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindApplication:
		return "application"
	default:
		return "transport"
	}
}

// Sentinels matched by errors.Is against an *Error of the same kind.
var (
	ErrTimeout     = errors.New("backend request timed out")
	ErrTransport   = errors.New("backend request failed")
	ErrApplication = errors.New("backend reported an error")
)

// Error is returned by every Client method on failure.
type Error struct {
	Err        error
	Op         string
	Message    string
	Kind       ErrorKind
	StatusCode int
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("%s: request timed out", e.Op)
	case KindApplication:
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrApplication:
		return e.Kind == KindApplication
	}
	return false
}

// IsTimeout reports whether err is a backend timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// transportError classifies an error from http.Client.Do.
func transportError(op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Op: op, Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Op: op, Kind: KindTimeout, Err: err}
	}
	return &Error{Op: op, Kind: KindTransport, Err: err}
}
