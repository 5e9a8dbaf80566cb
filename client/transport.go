package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v3"

	"rpcfailover/jsonrpc"
)

const transportRetryInterval = 250 * time.Millisecond

// wireResponse is what a transport hands back for classification: an
// HTTP-shaped status plus the raw body.
type wireResponse struct {
	status int
	body   []byte
}

// roundTripper sends one request envelope to one endpoint.
type roundTripper interface {
	roundTrip(ctx context.Context, ep Endpoint, req *jsonrpc.Request) (*wireResponse, error)
	close()
}

// httpTransport posts envelopes over a pooled http.Client. Connection
// reuse and TLS verification against the system roots come from
// net/http; dial-stage failures are retried up to cfg.Retries times
// with a short constant backoff before the dispatcher sees them. Any
// failure after the request may have reached the server is never
// re-sent here: re-posting a possibly delivered call is a failover
// decision that belongs to the dispatcher and its caller.
type httpTransport struct {
	client  *http.Client
	retries int
}

func newHTTPTransport(cfg Config) *httpTransport {
	keepAlive := 30 * time.Second
	if cfg.DisableTCPKeepAlive {
		keepAlive = -1
	}
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: keepAlive,
	}

	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.PoolBlock {
		transport.MaxConnsPerHost = cfg.MaxIdleConns
	}

	return &httpTransport{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		retries: cfg.Retries,
	}
}

func (t *httpTransport) roundTrip(ctx context.Context, ep Endpoint, req *jsonrpc.Request) (*wireResponse, error) {
	body, err := req.Bytes()
	if err != nil {
		return nil, err
	}

	var resp *wireResponse
	op := func() error {
		r, err := t.post(ctx, ep.URL, body)
		if err != nil {
			if ctx.Err() != nil || !dialFailure(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		resp = r
		return nil
	}

	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(transportRetryInterval), uint64(t.retries)),
		ctx,
	)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}
	return resp, nil
}

// dialFailure reports whether err happened while establishing the
// connection, before the request could have been written. Only these
// are safe to re-send: anything later may have already been delivered,
// and a truncated body means response bytes arrived.
func dialFailure(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func (t *httpTransport) post(ctx context.Context, url string, body []byte) (*wireResponse, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	payload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	return &wireResponse{status: httpResp.StatusCode, body: payload}, nil
}

func (t *httpTransport) close() {
	t.client.CloseIdleConnections()
}
