package jsonrpc

import "testing"

func TestParseResponse_Result(t *testing.T) {
	resp, err := ParseResponse([]byte(`{"jsonrpc":"2.0","id":1,"result":{"name":"alice"}}`))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if resp.HasError() {
		t.Error("HasError = true, want false")
	}
	if !resp.HasResult() {
		t.Error("HasResult = false, want true")
	}

	var result struct {
		Name string `json:"name"`
	}
	if err := resp.GetResultAs(&result); err != nil {
		t.Fatalf("GetResultAs: %v", err)
	}
	if result.Name != "alice" {
		t.Errorf("result.Name = %s, want alice", result.Name)
	}
}

func TestParseResponse_NullResultIsPresent(t *testing.T) {
	resp, err := ParseResponse([]byte(`{"jsonrpc":"2.0","id":1,"result":null}`))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if !resp.HasResult() {
		t.Error("HasResult = false for explicit null, want true")
	}
}

func TestParseResponse_MissingResult(t *testing.T) {
	resp, err := ParseResponse([]byte(`{"jsonrpc":"2.0","id":1}`))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if resp.HasResult() {
		t.Error("HasResult = true for absent result, want false")
	}
	if resp.HasError() {
		t.Error("HasError = true, want false")
	}
}

func TestParseResponse_Invalid(t *testing.T) {
	if _, err := ParseResponse([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestErrorPrefersDetail(t *testing.T) {
	resp, err := ParseResponse([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"generic","detail":"missing active authority"}}`))
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if !resp.HasError() {
		t.Fatal("HasError = false, want true")
	}
	if got := resp.Error.Error(); got != "missing active authority" {
		t.Errorf("Error() = %q, want detail text", got)
	}
}

func TestErrorFallsBackToMessage(t *testing.T) {
	e := &Error{Code: CodeInternalError, Message: "internal error"}
	if got := e.Error(); got != "internal error" {
		t.Errorf("Error() = %q, want message text", got)
	}
}
