package jsonrpc

import "encoding/json"

// Version is the JSON-RPC protocol version tag sent with every request.
const Version = "2.0"

// Standard JSON-RPC error codes
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Error represents a JSON-RPC error object returned by a node.
// Some servers attach a human-readable "detail" next to the standard
// "message"; Detail wins when both are present.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Detail  string          `json:"detail,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Message
}
