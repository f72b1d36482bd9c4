package response

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/waypoint/core/handler"
)

// WebSocketHandler drives an upgraded connection until it returns.
type WebSocketHandler func(ctx context.Context, conn *websocket.Conn) error

type wsConfig struct {
	upgrader     websocket.Upgrader
	header       http.Header
	onConnect    WebSocketHandler
	onDisconnect func(context.Context, *websocket.Conn)
	onError      func(context.Context, error)
}

func (c *wsConfig) fail(ctx context.Context, err error) {
	if c.onError != nil {
		c.onError(ctx, err)
	}
}

// WebSocketOption configures WebSocket.
type WebSocketOption func(*wsConfig)

func WithWSBufferSizes(read, write int) WebSocketOption {
	return func(c *wsConfig) {
		c.upgrader.ReadBufferSize = read
		c.upgrader.WriteBufferSize = write
	}
}

func WithWSHandshakeTimeout(timeout time.Duration) WebSocketOption {
	return func(c *wsConfig) {
		c.upgrader.HandshakeTimeout = timeout
	}
}

// WithWSOriginCheck replaces the default same-origin check.
func WithWSOriginCheck(fn func(r *http.Request) bool) WebSocketOption {
	return func(c *wsConfig) {
		c.upgrader.CheckOrigin = fn
	}
}

func WithWSSubprotocols(protocols ...string) WebSocketOption {
	return func(c *wsConfig) {
		c.upgrader.Subprotocols = protocols
	}
}

func WithWSUpgradeHeaders(header http.Header) WebSocketOption {
	return func(c *wsConfig) {
		c.header = header
	}
}

// WithWSOnConnect runs fn right after the upgrade. An error closes the connection.
func WithWSOnConnect(fn WebSocketHandler) WebSocketOption {
	return func(c *wsConfig) {
		c.onConnect = fn
	}
}

func WithWSOnDisconnect(fn func(context.Context, *websocket.Conn)) WebSocketOption {
	return func(c *wsConfig) {
		c.onDisconnect = fn
	}
}

// WithWSErrorHandler receives upgrade and handler errors. Once the connection
// is hijacked the router can no longer write an error response.
func WithWSErrorHandler(fn func(context.Context, error)) WebSocketOption {
	return func(c *wsConfig) {
		c.onError = fn
	}
}

// WebSocket upgrades the request and hands the connection to h.
// The response writer must support http.Hijacker; the router's writer does.
func WebSocket(h WebSocketHandler, opts ...WebSocketOption) handler.Response {
	cfg := &wsConfig{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(w http.ResponseWriter, r *http.Request) error {
		ctx := r.Context()

		// Upgrade writes its own error response on failure.
		conn, err := cfg.upgrader.Upgrade(w, r, cfg.header)
		if err != nil {
			cfg.fail(ctx, err)
			return nil
		}
		defer func() {
			_ = conn.Close()
			if cfg.onDisconnect != nil {
				cfg.onDisconnect(ctx, conn)
			}
		}()

		if cfg.onConnect != nil {
			if err := cfg.onConnect(ctx, conn); err != nil {
				cfg.fail(ctx, err)
				return nil
			}
		}
		if h == nil {
			return nil
		}
		if err := h(ctx, conn); err != nil {
			cfg.fail(ctx, err)
		}
		return nil
	}
}

// EchoWebSocket writes every received message back to the peer.
func EchoWebSocket(opts ...WebSocketOption) handler.Response {
	return WebSocket(func(ctx context.Context, conn *websocket.Conn) error {
		for ctx.Err() == nil {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return nil
				}
				return err
			}
			if err := conn.WriteMessage(msgType, data); err != nil {
				return err
			}
		}
		return ctx.Err()
	}, opts...)
}
