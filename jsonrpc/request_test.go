package jsonrpc

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNewRequest(t *testing.T) {
	req, err := NewRequest("get_accounts", []interface{}{"alice", 10}, 7)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}

	if req.JSONRPC != Version {
		t.Errorf("JSONRPC = %s, want %s", req.JSONRPC, Version)
	}
	if req.Method != "get_accounts" {
		t.Errorf("Method = %s, want get_accounts", req.Method)
	}
	if req.ID != 7 {
		t.Errorf("ID = %d, want 7", req.ID)
	}

	var params []interface{}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	want := []interface{}{"alice", float64(10)}
	if !reflect.DeepEqual(params, want) {
		t.Errorf("params = %v, want %v", params, want)
	}
}

func TestNewRequest_EmptyMethod(t *testing.T) {
	if _, err := NewRequest("", nil, 0); err == nil {
		t.Fatal("expected error for empty method")
	}
}

func TestNewRequest_NilArgs(t *testing.T) {
	req, err := NewRequest("ping", nil, 0)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if string(req.Params) != "[]" {
		t.Errorf("params = %s, want []", req.Params)
	}
}

func TestNewNamespacedRequest(t *testing.T) {
	req, err := NewNamespacedRequest("follow_api", "get_followers", []interface{}{"alice", "blog"}, 3)
	if err != nil {
		t.Fatalf("NewNamespacedRequest: %v", err)
	}

	if req.Method != "call" {
		t.Errorf("Method = %s, want call", req.Method)
	}

	var params []interface{}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	if len(params) != 3 {
		t.Fatalf("params has %d elements, want 3", len(params))
	}
	if params[0] != "follow_api" {
		t.Errorf("params[0] = %v, want follow_api", params[0])
	}
	if params[1] != "get_followers" {
		t.Errorf("params[1] = %v, want get_followers", params[1])
	}
	args, ok := params[2].([]interface{})
	if !ok {
		t.Fatalf("params[2] is %T, want array", params[2])
	}
	if !reflect.DeepEqual(args, []interface{}{"alice", "blog"}) {
		t.Errorf("params[2] = %v, want [alice blog]", args)
	}
}

func TestNewNamespacedRequest_EmptyAPI(t *testing.T) {
	// No namespace falls back to the plain envelope.
	req, err := NewNamespacedRequest("", "ping", []interface{}{1}, 0)
	if err != nil {
		t.Fatalf("NewNamespacedRequest: %v", err)
	}
	if req.Method != "ping" {
		t.Errorf("Method = %s, want ping", req.Method)
	}
	if string(req.Params) != "[1]" {
		t.Errorf("params = %s, want [1]", req.Params)
	}
}

func TestRequestBytes(t *testing.T) {
	req, err := NewRequest("ping", nil, 42)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}

	data, err := req.Bytes()
	if err != nil {
		t.Fatalf("Bytes: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("encoding is not valid JSON: %v", err)
	}
	if decoded["jsonrpc"] != Version {
		t.Errorf("jsonrpc = %v, want %s", decoded["jsonrpc"], Version)
	}
	if decoded["id"] != float64(42) {
		t.Errorf("id = %v, want 42", decoded["id"])
	}
}
