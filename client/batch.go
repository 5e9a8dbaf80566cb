package client

import (
	"context"
	"encoding/json"
	"sync"
)

// BatchResult is one item's outcome from ExecBatch. Args always
// carries the originating parameter set: results arrive in completion
// order, so positional alignment with the input is meaningless.
type BatchResult struct {
	Value json.RawMessage
	Args  []interface{}
	Err   error
}

// BatchOption tweaks a single ExecBatch run.
type BatchOption func(*batchOptions)

type batchOptions struct {
	api     string
	workers int
}

// WithAPI routes every call in the batch through the given API
// namespace.
func WithAPI(api string) BatchOption {
	return func(o *batchOptions) { o.api = api }
}

// WithWorkers overrides the client's worker pool size for this batch.
func WithWorkers(n int) BatchOption {
	return func(o *batchOptions) { o.workers = n }
}

// ExecBatch calls method once per parameter set, fanning the calls
// out over a bounded worker pool. A parameter set is either an
// argument slice or a single scalar, which is wrapped into a
// one-element slice.
//
// The returned channel yields exactly one BatchResult per parameter
// set, in completion order, then closes. Each item runs a full
// failover cycle with its own retry budget; one item's failure lands
// in its own BatchResult.Err while the others keep running.
func (c *Client) ExecBatch(ctx context.Context, method string, params []interface{}, opts ...BatchOption) <-chan BatchResult {
	o := batchOptions{workers: c.cfg.MaxWorkers}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers > len(params) {
		o.workers = len(params)
	}
	if o.workers < 1 {
		o.workers = 1
	}

	out := make(chan BatchResult)
	jobs := make(chan []interface{})

	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for args := range jobs {
				value, err := c.exec(ctx, o.api, method, args)
				out <- BatchResult{Value: value, Args: args, Err: err}
			}
		}()
	}

	go func() {
		for _, param := range params {
			jobs <- ensureArgs(param)
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// ensureArgs normalizes one parameter set into an argument slice.
func ensureArgs(param interface{}) []interface{} {
	if args, ok := param.([]interface{}); ok {
		return args
	}
	return []interface{}{param}
}
