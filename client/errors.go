package client

import (
	"errors"
	"fmt"
)

// ErrMissingResult reports a well-formed response body that carries
// neither a "result" nor an "error" entry. The protocol defines no
// recovery path for it, so it is never retried.
var ErrMissingResult = errors.New(`response is missing a "result"`)

// BadResponseError reports a response that could not be used: either
// a non-200 status or a body that is not valid JSON. The raw response
// is kept for the caller.
type BadResponseError struct {
	Status int
	Body   []byte

	cause error
}

func (e *BadResponseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("bad response (status %d): %v", e.Status, e.cause)
	}
	return fmt.Sprintf("bad response (status %d)", e.Status)
}

func (e *BadResponseError) Unwrap() error { return e.cause }

// RPCError is the application-level error a node reports inside a
// well-formed response body.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string { return e.Message }
