package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// Request represents a JSON-RPC request envelope. Params is kept as
// raw JSON, so an envelope is never mutated after construction.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// NewRequest builds a request envelope calling method with the given
// positional args. The id is an arbitrary number used for
// request/response tracking when many calls are in flight.
func NewRequest(method string, args []interface{}, id uint64) (*Request, error) {
	if method == "" {
		return nil, fmt.Errorf("method is required")
	}

	params, err := marshalArgs(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	return &Request{
		JSONRPC: Version,
		ID:      id,
		Method:  method,
		Params:  params,
	}, nil
}

// NewNamespacedRequest builds a request envelope addressing method
// inside the api namespace. The wire method is the generic "call"
// dispatcher and the real target travels in the params as the 3-tuple
// [api, method, args], so one wire method can address many sub-APIs.
func NewNamespacedRequest(api, method string, args []interface{}, id uint64) (*Request, error) {
	if api == "" {
		return NewRequest(method, args, id)
	}
	if method == "" {
		return nil, fmt.Errorf("method is required")
	}

	if args == nil {
		args = []interface{}{}
	}
	params, err := json.Marshal([]interface{}{api, method, args})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	return &Request{
		JSONRPC: Version,
		ID:      id,
		Method:  "call",
		Params:  params,
	}, nil
}

// Bytes returns the UTF-8 JSON encoding of the envelope.
func (r *Request) Bytes() ([]byte, error) {
	return json.Marshal(r)
}

func marshalArgs(args []interface{}) (json.RawMessage, error) {
	if args == nil {
		args = []interface{}{}
	}
	return json.Marshal(args)
}
