package jsonrpc

import "encoding/json"

// Response represents a JSON-RPC response envelope. Result keeps the
// raw bytes: a nil Result means the "result" key was absent from the
// body, while an explicit JSON null result is present as the literal
// "null".
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// ParseResponse parses a JSON-RPC response from bytes.
func ParseResponse(data []byte) (*Response, error) {
	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HasError returns true if the response contains an error entry.
func (r *Response) HasError() bool {
	return r.Error != nil
}

// HasResult reports whether the response carries a "result" entry,
// counting an explicit null as present.
func (r *Response) HasResult() bool {
	return r.Result != nil
}

// GetResultAs unmarshals the result into the provided type.
func (r *Response) GetResultAs(v interface{}) error {
	if r.Result == nil {
		return nil
	}
	return json.Unmarshal(r.Result, v)
}
