package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
)

// echoEndpoint upgrades and drains inbound messages until the peer closes.
func echoEndpoint(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func dialConnection(t *testing.T, srv *httptest.Server) *Connection {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return NewConnection(ws)
}

func TestCloseDuringConcurrentSends(t *testing.T) {
	srv := echoEndpoint(t)
	defer srv.Close()

	conn := dialConnection(t, srv)
	conn.Start()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if conn.Send([]byte("payload")) != nil {
					return
				}
			}
		}()
	}
	conn.Close(websocket.CloseNormalClosure, "session closed")
	wg.Wait()

	if err := conn.Send([]byte("late")); err == nil {
		t.Fatalf("send after close should fail")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	srv := echoEndpoint(t)
	defer srv.Close()

	conn := dialConnection(t, srv)
	conn.Start()
	conn.Close(websocket.CloseNormalClosure, "first")
	conn.Close(websocket.CloseNormalClosure, "second")
}
