// Package push listens on the server's websocket for "something changed" frames.
//
// Frames carry no payload the client relies on: each one is an invalidation.
// The channel connects once and does not reconnect; when the connection ends,
// Done is closed and Err reports why.
package push

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/cristianoliveira/flightdeck/internal/logging"
	"github.com/gorilla/websocket"
)

const (
	handshakeTimeout = 10 * time.Second
	closeGrace       = time.Second
)

// Channel is one websocket connection delivering invalidations.
type Channel struct {
	conn *websocket.Conn
	log  logging.Logger

	mu       sync.Mutex
	handlers []func()
	err      error
	running  bool

	done      chan struct{}
	closing   chan struct{}
	closeOnce sync.Once
}

// Dial connects to rawURL. It makes a single attempt.
func Dial(ctx context.Context, rawURL string, log logging.Logger) (*Channel, error) {
	if log == nil {
		log = logging.Nop()
	}
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("push: dial %s: %w", rawURL, err)
	}
	log = log.With("component", "push", "url", rawURL)
	log.Info("connected")
	return &Channel{
		conn:    conn,
		log:     log,
		done:    make(chan struct{}),
		closing: make(chan struct{}),
	}, nil
}

// OnInvalidate registers cb to run, on the Run goroutine, for every frame.
func (c *Channel) OnInvalidate(cb func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, cb)
}

// Run reads frames until the connection ends, ctx is cancelled or Close is called.
// It returns the reason the connection ended; a local close returns nil.
func (c *Channel) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("push: already running")
	}
	c.running = true
	c.mu.Unlock()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = c.Close()
		case <-stop:
		}
	}()

	err := c.readLoop()
	c.finish(err)
	return err
}

func (c *Channel) readLoop() error {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			select {
			case <-c.closing:
				return nil
			default:
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		c.mu.Lock()
		handlers := append([]func(){}, c.handlers...)
		c.mu.Unlock()

		c.log.Debug("invalidation received")
		for _, h := range handlers {
			h()
		}
	}
}

func (c *Channel) finish(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	if err != nil {
		c.log.Warn("connection lost", "error", err)
	} else {
		c.log.Info("connection closed")
	}
	_ = c.conn.Close()
	close(c.done)
}

// Close sends a close frame and tears the connection down. Safe to call more than once.
func (c *Channel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closing)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGrace))
		err = c.conn.Close()
		if errors.Is(err, net.ErrClosed) {
			err = nil
		}
	})
	return err
}

// Done is closed when Run returns.
func (c *Channel) Done() <-chan struct{} { return c.done }

// Err is the reason the connection ended, or nil if it was closed normally.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
