package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"rpcfailover/client"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("stream closed")
}

func TestWriteBatchResults_Lines(t *testing.T) {
	results := make(chan client.BatchResult)
	go func() {
		results <- client.BatchResult{Value: json.RawMessage(`"ok"`), Args: []interface{}{float64(1)}}
		results <- client.BatchResult{Err: errors.New("boom"), Args: []interface{}{float64(2)}}
		close(results)
	}()

	var buf bytes.Buffer
	failed, err := writeBatchResults(&buf, results)
	if err != nil {
		t.Fatalf("writeBatchResults: %v", err)
	}
	if failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}

	dec := json.NewDecoder(&buf)
	var first, second map[string]interface{}
	if err := dec.Decode(&first); err != nil {
		t.Fatalf("decoding first line: %v", err)
	}
	if err := dec.Decode(&second); err != nil {
		t.Fatalf("decoding second line: %v", err)
	}
	if _, ok := first["result"]; !ok {
		t.Errorf("first line missing result: %v", first)
	}
	if second["error"] != "boom" {
		t.Errorf(`second line error = %v, want "boom"`, second["error"])
	}
}

func TestWriteBatchResults_DrainsOnWriteError(t *testing.T) {
	// The producer sends on an unbuffered channel the way ExecBatch's
	// workers do. A write error must not strand those sends.
	results := make(chan client.BatchResult)
	go func() {
		for i := 0; i < 5; i++ {
			results <- client.BatchResult{Value: json.RawMessage(`1`)}
		}
		close(results)
	}()

	_, err := writeBatchResults(failingWriter{}, results)
	if err == nil {
		t.Fatal("expected the write error to be returned")
	}

	// A drained channel reads as closed; a pending value here means a
	// producer send was abandoned.
	if res, ok := <-results; ok {
		t.Errorf("channel not drained, got pending result %+v", res)
	}
}
