// Package client implements a failover JSON-RPC client. It issues
// named calls against one of several functionally equivalent nodes,
// rotating to the next node on failure and retrying up to a bounded
// budget, so application code never handles node outages by hand.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"rpcfailover/jsonrpc"
)

// errorKind classifies one failed dispatch attempt.
type errorKind string

const (
	kindNone      errorKind = ""
	kindTransport errorKind = "transport"
	kindBadStatus errorKind = "bad_status"
	kindMalformed errorKind = "malformed"
	kindRPC       errorKind = "rpc"
	kindContract  errorKind = "contract"
)

// Result pairs a decoded RPC result with the arguments that produced
// it, for callers that need to correlate results back to requests.
type Result struct {
	Value json.RawMessage
	Args  []interface{}
}

// Client is a failover JSON-RPC client. It is safe for concurrent
// use; note that the active endpoint is shared per-client state, so a
// failover triggered by one call moves the cursor for all of them.
type Client struct {
	cfg     Config
	rotator *rotator
	http    roundTripper
	ws      roundTripper
	limiter *rate.Limiter
	stats   *stats
	nextID  atomic.Uint64
	logger  zerolog.Logger
}

// New builds a Client from cfg. The endpoint list must be non-empty;
// endpoints are used in the given order, wrapping around on failover.
func New(cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	if len(cfg.Endpoints) == 0 {
		return nil, errors.New("at least one endpoint is required")
	}

	endpoints := make([]Endpoint, 0, len(cfg.Endpoints))
	hasWS := false
	for _, raw := range cfg.Endpoints {
		ep, err := newEndpoint(raw)
		if err != nil {
			return nil, err
		}
		if ep.ws {
			hasWS = true
		}
		endpoints = append(endpoints, ep)
	}

	c := &Client{
		cfg:     cfg,
		rotator: newRotator(endpoints),
		http:    newHTTPTransport(cfg),
		stats:   newStats(),
		logger:  cfg.Logger,
	}
	if hasWS {
		c.ws = newWSTransport(cfg.Timeout)
	}
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return c, nil
}

// Close releases transport resources. In-flight calls are not
// cancelled.
func (c *Client) Close() {
	c.http.close()
	if c.ws != nil {
		c.ws.close()
	}
}

// CurrentEndpoint returns the active endpoint.
func (c *Client) CurrentEndpoint() Endpoint {
	return c.rotator.current()
}

// NextNode switches to the next endpoint and returns it. Exec does
// this on its own when a node fails; callers only need it to skip a
// node manually.
func (c *Client) NextNode() Endpoint {
	ep := c.rotator.advance()
	c.logger.Info().Str("host", ep.Host).Msg("switched to next node")
	return ep
}

// MethodCounts snapshots how many logical calls were made per method.
func (c *Client) MethodCounts() map[string]uint64 {
	return c.stats.methodCounts()
}

// Exec calls method with the given positional args, failing over to
// the next node on transport errors, bad statuses, undecodable bodies
// and RPC-level errors until the retry budget runs out. It returns
// the raw result value.
func (c *Client) Exec(ctx context.Context, method string, args ...interface{}) (json.RawMessage, error) {
	return c.exec(ctx, "", method, args)
}

// ExecAPI is Exec for a namespaced API: the call goes out through the
// generic "call" dispatch method with api and method in the params.
func (c *Client) ExecAPI(ctx context.Context, api, method string, args ...interface{}) (json.RawMessage, error) {
	return c.exec(ctx, api, method, args)
}

// ExecPaired is Exec returning the result paired with its args.
func (c *Client) ExecPaired(ctx context.Context, method string, args ...interface{}) (Result, error) {
	value, err := c.exec(ctx, "", method, args)
	return Result{Value: value, Args: args}, err
}

// ExecAPIPaired is ExecAPI returning the result paired with its args.
func (c *Client) ExecAPIPaired(ctx context.Context, api, method string, args ...interface{}) (Result, error) {
	value, err := c.exec(ctx, api, method, args)
	return Result{Value: value, Args: args}, err
}

// exec drives one logical call: send, classify, then either retry on
// the next node or fail. The loop makes at most MaxFailovers+1
// attempts; the budget check happens before every retry, so a call
// always ends in a result or an error.
func (c *Client) exec(ctx context.Context, api, method string, args []interface{}) (json.RawMessage, error) {
	c.stats.recordCall(method)

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		value, kind, cause := c.attempt(ctx, api, method, args)
		if cause == nil {
			return value, nil
		}
		if kind == kindNone {
			// Request construction failed; no attempt was made.
			return nil, cause
		}

		c.stats.recordError(kind)
		if kind == kindContract {
			// The node answered in a way the protocol defines no
			// recovery for; another node will not do better.
			return nil, cause
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt >= c.cfg.MaxFailovers {
			// Budget exhausted. The cause keeps its original kind so
			// callers of state-changing methods can tell a transport
			// failure (maybe applied) from an RPC rejection.
			return nil, cause
		}

		ep := c.rotator.advance()
		c.stats.recordFailover()
		c.logger.Info().
			Err(cause).
			Str("method", method).
			Str("host", ep.Host).
			Int("attempt", attempt+1).
			Int("maxFailovers", c.cfg.MaxFailovers).
			Msg("retrying on next node")
	}
}

// attempt sends one fresh envelope to the active endpoint and
// classifies the outcome.
func (c *Client) attempt(ctx context.Context, api, method string, args []interface{}) (json.RawMessage, errorKind, error) {
	req, err := jsonrpc.NewNamespacedRequest(api, method, args, c.nextID.Add(1))
	if err != nil {
		return nil, kindNone, err
	}

	ep := c.rotator.current()
	c.stats.recordRequest(ep.Host)

	resp, err := c.transportFor(ep).roundTrip(ctx, ep, req)
	if err != nil {
		return nil, kindTransport, err
	}

	if resp.status != http.StatusOK {
		return nil, kindBadStatus, &BadResponseError{Status: resp.status, Body: resp.body}
	}

	rpcResp, err := jsonrpc.ParseResponse(resp.body)
	if err != nil {
		return nil, kindMalformed, &BadResponseError{Status: resp.status, Body: resp.body, cause: err}
	}

	if rpcResp.HasError() {
		return nil, kindRPC, &RPCError{Code: rpcResp.Error.Code, Message: rpcResp.Error.Error()}
	}

	if !rpcResp.HasResult() {
		return nil, kindContract, fmt.Errorf("%w (body: %.120s)", ErrMissingResult, resp.body)
	}

	return rpcResp.Result, kindNone, nil
}

func (c *Client) transportFor(ep Endpoint) roundTripper {
	if ep.ws {
		return c.ws
	}
	return c.http
}
