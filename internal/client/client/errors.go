package client

import (
	"errors"
	"fmt"
)

// Failure kinds of the request pipeline. Match them with errors.Is.
var (
	// ErrUnavailable: no response was received (transport error, timeout).
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized: the backend rejected the credential. The token store
	// has already been cleared when this is returned.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrServer: a non-2xx response other than 401.
	ErrServer = errors.New("server error")
	// ErrValidation: a 2xx response that rejects the request on business
	// grounds, or whose body does not match the expected shape.
	ErrValidation = errors.New("request rejected")
)

// ResponseError carries the details of a failed call.
type ResponseError struct {
	// Kind is one of the sentinel errors above.
	Kind error
	// Status is the HTTP status code; 0 when no response was received or when
	// the rejection came from a 2xx envelope.
	Status int
	// Message is the backend's human-readable explanation, if it sent one.
	Message string
	// Err is the underlying cause (transport or decoding error), if any.
	Err error
}

func (e *ResponseError) Error() string {
	msg := e.Kind.Error()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Message != "" {
		msg = msg + ": " + e.Message
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *ResponseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// ServerMessage returns the message the backend attached to err, or "".
func ServerMessage(err error) string {
	var re *ResponseError
	if errors.As(err, &re) {
		return re.Message
	}
	return ""
}
