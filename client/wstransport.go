package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"rpcfailover/jsonrpc"
)

// wsTransport keeps one persistent WebSocket connection per endpoint
// and correlates incoming frames to in-flight calls by envelope ID.
// Any read failure fails every pending call and drops the connection;
// the next call reconnects.
type wsTransport struct {
	timeout time.Duration

	mu    sync.Mutex
	conns map[string]*wsConn
}

func newWSTransport(timeout time.Duration) *wsTransport {
	return &wsTransport{
		timeout: timeout,
		conns:   make(map[string]*wsConn),
	}
}

func (t *wsTransport) roundTrip(ctx context.Context, ep Endpoint, req *jsonrpc.Request) (*wireResponse, error) {
	body, err := req.Bytes()
	if err != nil {
		return nil, err
	}

	wc, err := t.connFor(ctx, ep.URL)
	if err != nil {
		return nil, err
	}

	ch := make(chan wsResult, 1)
	if err := wc.register(req.ID, ch); err != nil {
		t.drop(ep.URL, wc)
		return nil, err
	}
	defer wc.unregister(req.ID)

	if err := wc.write(body); err != nil {
		t.drop(ep.URL, wc)
		return nil, err
	}

	timer := time.NewTimer(t.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if res.err != nil {
			return nil, res.err
		}
		return &wireResponse{status: http.StatusOK, body: res.body}, nil
	case <-timer.C:
		t.drop(ep.URL, wc)
		return nil, fmt.Errorf("websocket request timed out after %s", t.timeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// connFor returns the live connection for url, dialing if needed. The
// dial happens outside t.mu so one slow handshake cannot stall calls
// to every other endpoint.
func (t *wsTransport) connFor(ctx context.Context, url string) (*wsConn, error) {
	t.mu.Lock()
	if wc, ok := t.conns[url]; ok && !wc.isClosed() {
		t.mu.Unlock()
		return wc, nil
	}
	t.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: t.timeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	wc := newWSConn(conn)
	go wc.readLoop()

	t.mu.Lock()
	if existing, ok := t.conns[url]; ok && !existing.isClosed() {
		// Lost a dial race; keep the connection that is already in.
		t.mu.Unlock()
		wc.shutdown(errors.New("duplicate websocket connection"))
		return existing, nil
	}
	t.conns[url] = wc
	t.mu.Unlock()
	return wc, nil
}

// drop discards wc if it is still the active connection for url.
func (t *wsTransport) drop(url string, wc *wsConn) {
	t.mu.Lock()
	if t.conns[url] == wc {
		delete(t.conns, url)
	}
	t.mu.Unlock()
	wc.shutdown(errors.New("websocket connection dropped"))
}

func (t *wsTransport) close() {
	t.mu.Lock()
	conns := t.conns
	t.conns = make(map[string]*wsConn)
	t.mu.Unlock()

	for _, wc := range conns {
		wc.shutdown(errors.New("client closed"))
	}
}

type wsResult struct {
	body []byte
	err  error
}

type wsConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[uint64]chan wsResult
	closed  bool
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{
		conn:    conn,
		pending: make(map[uint64]chan wsResult),
	}
}

func (c *wsConn) register(id uint64, ch chan wsResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("websocket connection is closed")
	}
	c.pending[id] = ch
	return nil
}

func (c *wsConn) unregister(id uint64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *wsConn) write(body []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, body)
}

func (c *wsConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// readLoop delivers incoming frames to the pending call with the
// matching envelope ID. Frames that do not parse or carry an unknown
// ID are dropped; the waiting call times out on its own.
func (c *wsConn) readLoop() {
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			c.shutdown(err)
			return
		}

		var frame struct {
			ID uint64 `json:"id"`
		}
		if err := json.Unmarshal(message, &frame); err != nil {
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[frame.ID]
		if ok {
			delete(c.pending, frame.ID)
		}
		c.mu.Unlock()

		if ok {
			ch <- wsResult{body: message}
		}
	}
}

// shutdown fails all pending calls and closes the connection.
func (c *wsConn) shutdown(err error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, ch := range pending {
		ch <- wsResult{err: err}
	}
	c.conn.Close()
}
