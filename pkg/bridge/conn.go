package bridge

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrClosed is returned when attaching a listener through a closed Conn.
var ErrClosed = errors.New("bridge: connection closed")

const (
	defaultWriteTimeout = 10 * time.Second
	defaultReadLimit    = 64 * 1024
)

// Option configures a Conn.
type Option func(*Conn)

// WithLogger sets the logger. Default: slog.Default() with component=bridge.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Conn) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithWriteTimeout sets the deadline applied to each frame write.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Conn) {
		if d > 0 {
			c.writeTimeout = d
		}
	}
}

// WithReadLimit sets the maximum inbound message size in bytes.
func WithReadLimit(n int64) Option {
	return func(c *Conn) {
		if n > 0 {
			c.readLimit = n
		}
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// Upgrade upgrades an HTTP request to a WebSocket and wraps it in a Conn.
// On failure the upgrader has already replied to the client.
func Upgrade(w http.ResponseWriter, r *http.Request, opts ...Option) (*Conn, error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	return NewConn(ws, opts...), nil
}

// Conn is a client connection and the registry of its remote elements.
type Conn struct {
	ws           *websocket.Conn
	logger       *slog.Logger
	writeTimeout time.Duration
	readLimit    int64

	writeMu sync.Mutex

	mu       sync.Mutex
	elements map[string]*Element
	closed   bool
}

// NewConn wraps ws.
func NewConn(ws *websocket.Conn, opts ...Option) *Conn {
	c := &Conn{
		ws:           ws,
		logger:       slog.Default().With("component", "bridge"),
		writeTimeout: defaultWriteTimeout,
		readLimit:    defaultReadLimit,
		elements:     make(map[string]*Element),
	}
	for _, opt := range opts {
		opt(c)
	}
	ws.SetReadLimit(c.readLimit)
	return c
}

// Element returns the remote element with the given hydration ID,
// creating it on first use.
func (c *Conn) Element(hid string) *Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.elements[hid]
	if !ok {
		el = newElement(c, hid)
		c.elements[hid] = el
	}
	return el
}

// Closed reports whether Close has been called or the read loop ended.
func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close closes the underlying socket. It is safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.writeMu.Lock()
	c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	_ = c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()

	return c.ws.Close()
}

// ReadLoop reads frames until the connection fails, is closed, or ctx is
// done, dispatching event frames to element callbacks. It closes the Conn
// before returning. A normal client close returns nil.
func (c *Conn) ReadLoop(ctx context.Context) error {
	defer c.Close()

	stop := context.AfterFunc(ctx, func() { c.Close() })
	defer stop()

	for {
		_, msg, err := c.ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if c.Closed() {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
			}
			return err
		}

		frame, err := DecodeFrame(msg)
		if err != nil {
			c.logger.Warn("frame decode error", "error", err)
			continue
		}

		switch frame.Op {
		case OpEvent:
			c.handleEvent(frame)
		default:
			c.logger.Warn("unknown frame op", "op", frame.Op, "hid", frame.HID)
		}
	}
}

func (c *Conn) handleEvent(f Frame) {
	c.mu.Lock()
	el, ok := c.elements[f.HID]
	c.mu.Unlock()
	if !ok {
		c.logger.Debug("event for unknown element", "hid", f.HID, "event", f.Event)
		return
	}
	el.dispatch(f.Event, f.Data)
}

func (c *Conn) send(f Frame) error {
	if c.Closed() {
		return ErrClosed
	}
	data, err := f.Encode()
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(websocket.TextMessage, data)
}
