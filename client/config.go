package client

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied by New for unset Config fields.
const (
	DefaultMaxFailovers        = 10
	DefaultMaxWorkers          = 10
	DefaultMaxIdleConns        = 100
	DefaultMaxIdleConnsPerHost = 100
	DefaultTimeout             = 30 * time.Second
	DefaultRetries             = 10
)

// Config configures a Client. It is read once by New; later changes
// have no effect. For the integer knobs a zero value means "use the
// default" and a negative value means "disabled".
type Config struct {
	// Endpoints is the ordered, non-empty list of node URLs. Schemes
	// http and https use the pooled HTTP transport; ws and wss use a
	// persistent WebSocket connection per endpoint.
	Endpoints []string

	// MaxFailovers is the retry budget per logical call: a call makes
	// at most MaxFailovers+1 attempts, switching to the next endpoint
	// before each retry. Negative disables failover entirely.
	MaxFailovers int

	// MaxWorkers bounds the ExecBatch worker pool unless overridden
	// per batch.
	MaxWorkers int

	// MaxIdleConns and MaxIdleConnsPerHost size the HTTP connection
	// pool.
	MaxIdleConns        int
	MaxIdleConnsPerHost int

	// PoolBlock caps open connections per host at MaxIdleConns; when
	// the cap is reached new requests wait for a free connection
	// instead of opening more. Off, connections grow unbounded.
	PoolBlock bool

	// Timeout bounds one request, connection setup included.
	Timeout time.Duration

	// Retries is the number of socket-level retries per attempt, for
	// dial-stage failures only: once the request may have been written
	// it is never re-sent here. Negative disables them. These are
	// below the failover loop: one dispatch attempt performs up to
	// Retries+1 sends to the same endpoint.
	Retries int

	// DisableTCPKeepAlive turns off TCP keep-alive probes on new
	// connections.
	DisableTCPKeepAlive bool

	// RateLimit caps outgoing requests per second across the whole
	// client; 0 disables limiting. RateBurst defaults to 1 when a
	// limit is set.
	RateLimit float64
	RateBurst int

	// Logger receives failover and retry diagnostics. Leave the zero
	// value or pass zerolog.Nop() for silence.
	Logger zerolog.Logger
}

func (cfg Config) withDefaults() Config {
	if cfg.MaxFailovers == 0 {
		cfg.MaxFailovers = DefaultMaxFailovers
	} else if cfg.MaxFailovers < 0 {
		cfg.MaxFailovers = 0
	}
	if cfg.MaxWorkers == 0 {
		cfg.MaxWorkers = DefaultMaxWorkers
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = DefaultMaxIdleConns
	}
	if cfg.MaxIdleConnsPerHost == 0 {
		cfg.MaxIdleConnsPerHost = DefaultMaxIdleConnsPerHost
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries == 0 {
		cfg.Retries = DefaultRetries
	} else if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return cfg
}
