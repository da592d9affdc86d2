package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dialTestServer upgrades one server-side connection, hands it to accept, and
// returns the client side of the pair.
func dialTestServer(t *testing.T, accept func(conn *websocket.Conn)) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accept(conn)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestPongExtendsReadDeadline(t *testing.T) {
	const wait = 150 * time.Millisecond

	readErr := make(chan error, 1)
	client := dialTestServer(t, func(conn *websocket.Conn) {
		configureKeepalive(conn, wait)
		_, _, err := conn.ReadMessage()
		readErr <- err
	})

	// Answer pings for well over the deadline window without sending any
	// data frame, then send one. A listener that keeps ponging must survive.
	for i := 0; i < 8; i++ {
		time.Sleep(50 * time.Millisecond)
		require.NoError(t, client.WriteControl(websocket.PongMessage, nil, time.Now().Add(time.Second)))
	}
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("still here")))

	select {
	case err := <-readErr:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server read never returned")
	}
}

func TestSilentConnectionTimesOut(t *testing.T) {
	const wait = 100 * time.Millisecond

	readErr := make(chan error, 1)
	dialTestServer(t, func(conn *websocket.Conn) {
		configureKeepalive(conn, wait)
		_, _, err := conn.ReadMessage()
		readErr <- err
	})

	select {
	case err := <-readErr:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("read deadline never fired")
	}
}
