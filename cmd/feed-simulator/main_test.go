package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/value-bet-platform/pkg/contracts/events"
)

// Odds, previsões e resultados são emitidos por goroutines independentes:
// broadcasts concorrentes na mesma conexão precisam chegar íntegros, sem
// escritores simultâneos no socket.
func TestBroadcastConcurrentProducers(t *testing.T) {
	h := newHub(zap.NewNop())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		h.add(&clientConn{id: "c1", conn: conn})
	}))
	defer srv.Close()

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer client.Close()

	require.Eventually(t, func() bool {
		h.mu.RLock()
		defer h.mu.RUnlock()
		return len(h.clients) == 1
	}, time.Second, 10*time.Millisecond)

	const perProducer = 50
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				res := events.MatchResult{MatchID: "m1", Result: "home", FinishedAt: time.Now()}
				h.broadcast(events.FeedMessage{Type: events.FeedTypeResult, Result: &res})
			}
		}()
	}

	require.NoError(t, client.SetReadDeadline(time.Now().Add(5*time.Second)))
	for received := 0; received < 3*perProducer; received++ {
		var msg events.FeedMessage
		require.NoError(t, client.ReadJSON(&msg), "after %d messages", received)
		require.Equal(t, events.FeedTypeResult, msg.Type)
	}
	wg.Wait()
}
