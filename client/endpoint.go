package client

import (
	"fmt"
	"net/url"
	"sync"
)

// Endpoint is one address of a redundant node able to answer the same
// RPC calls. Host is derived once from the URL for diagnostics.
// Immutable once configured.
type Endpoint struct {
	URL  string
	Host string

	ws bool
}

func newEndpoint(raw string) (Endpoint, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: %w", raw, err)
	}

	switch u.Scheme {
	case "http", "https":
		return Endpoint{URL: raw, Host: u.Hostname()}, nil
	case "ws", "wss":
		return Endpoint{URL: raw, Host: u.Hostname(), ws: true}, nil
	default:
		return Endpoint{}, fmt.Errorf("invalid endpoint %q: unsupported scheme %q", raw, u.Scheme)
	}
}

// rotator cycles through the configured endpoints. The cursor is
// shared by every call on one client: concurrent failovers interleave
// without coordination, so a call may observe a node switch triggered
// by a sibling call.
type rotator struct {
	mu        sync.Mutex
	endpoints []Endpoint
	cursor    int
}

// newRotator requires a non-empty endpoint list; the caller validates.
func newRotator(endpoints []Endpoint) *rotator {
	return &rotator{endpoints: endpoints}
}

// current returns the active endpoint.
func (r *rotator) current() Endpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.endpoints[r.cursor]
}

// advance moves the cursor to the next endpoint, wrapping to the
// first after the last, and returns the new active endpoint.
func (r *rotator) advance() Endpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cursor = (r.cursor + 1) % len(r.endpoints)
	return r.endpoints[r.cursor]
}
