package websocket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	logger := zerolog.Nop()
	return NewHub(&logger)
}

func TestHubBroadcast(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	clients := []*Client{NewClient("a", hub, nil), NewClient("b", hub, nil)}
	for _, c := range clients {
		hub.Register(c)
	}
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Broadcast(Message{ID: 1, Type: "dataset.reloaded", Timestamp: time.Now()})
	for _, c := range clients {
		select {
		case got := <-c.send:
			assert.Equal(t, "dataset.reloaded", got.Type)
		case <-time.After(time.Second):
			t.Fatalf("client %s did not receive message", c.ID())
		}
	}
}

func TestHubOrdering(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c := NewClient("ordered", hub, nil)
	hub.Register(c)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	for i := uint64(1); i <= 10; i++ {
		hub.Broadcast(Message{ID: i, Type: "tick"})
	}
	for i := uint64(1); i <= 10; i++ {
		select {
		case got := <-c.send:
			assert.Equal(t, i, got.ID)
		case <-time.After(time.Second):
			t.Fatalf("message %d not received", i)
		}
	}
}

func TestHubDisconnectsSlowClient(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	slow := NewClient("slow", hub, nil)
	hub.Register(slow)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	for range 2 * cap(slow.send) {
		hub.Broadcast(Message{Type: "flood"})
		time.Sleep(time.Microsecond)
	}
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestHubUnregisterAndShutdown(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	a, b := NewClient("a", hub, nil), NewClient("b", hub, nil)
	hub.Register(a)
	hub.Register(b)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	hub.Unregister(a)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	_, ok := <-a.send
	assert.False(t, ok)

	cancel()
	<-done
	assert.Zero(t, hub.ClientCount())
	_, ok = <-b.send
	assert.False(t, ok)
}

func TestClientPumps(t *testing.T) {
	hub := newTestHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	welcomed := make(chan string, 1)
	hub.OnConnect(func(c *Client, _ int) {
		c.Send(Message{Type: "client.connected", Data: map[string]string{"client_id": c.ID()}})
		welcomed <- c.ID()
	})
	go hub.Run(ctx)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient("ws-1", hub, conn)
		hub.Register(c)
		go c.WritePump()
		go c.ReadPump()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case id := <-welcomed:
		assert.Equal(t, "ws-1", id)
	case <-time.After(2 * time.Second):
		t.Fatal("client never registered")
	}

	var first Message
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "client.connected", first.Type)

	hub.Broadcast(Message{ID: 3, Type: "dataset.reloaded"})
	var second Message
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, "dataset.reloaded", second.Type)
	assert.Equal(t, uint64(3), second.ID)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
