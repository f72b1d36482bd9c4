package response_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/waypoint/core/handler"
	"github.com/dmitrymomot/waypoint/core/response"
	"github.com/dmitrymomot/waypoint/core/router"
)

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func TestEchoWebSocketThroughRouter(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/ws/:room", func(ctx *router.Context) handler.Response {
		return response.EchoWebSocket(response.WithWSOriginCheck(func(*http.Request) bool { return true }))
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/lobby"), nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, websocket.TextMessage, msgType)
	assert.Equal(t, "ping", string(data))
}

func TestWebSocketLifecycleCallbacks(t *testing.T) {
	t.Parallel()

	connected := make(chan struct{}, 1)
	disconnected := make(chan struct{}, 1)

	ws := response.WebSocket(
		func(ctx context.Context, conn *websocket.Conn) error {
			return conn.WriteMessage(websocket.TextMessage, []byte("welcome"))
		},
		response.WithWSOnConnect(func(ctx context.Context, conn *websocket.Conn) error {
			connected <- struct{}{}
			return nil
		}),
		response.WithWSOnDisconnect(func(ctx context.Context, conn *websocket.Conn) {
			disconnected <- struct{}{}
		}),
		response.WithWSBufferSizes(512, 512),
		response.WithWSHandshakeTimeout(time.Second),
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, ws(w, r))
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/"), nil)
	require.NoError(t, err)
	defer conn.Close()

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "welcome", string(data))

	for _, ch := range []chan struct{}{connected, disconnected} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("callback not called")
		}
	}
}

func TestWebSocketUpgradeFailure(t *testing.T) {
	t.Parallel()

	errs := make(chan error, 1)
	ws := response.WebSocket(nil, response.WithWSErrorHandler(func(ctx context.Context, err error) {
		errs <- err
	}))

	w := httptest.NewRecorder()
	err := ws(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Error(t, <-errs)
}
