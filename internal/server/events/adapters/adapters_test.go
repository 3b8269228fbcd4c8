package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/datastory/internal/server/events"
	"github.com/agentstation/datastory/internal/server/sse"
	ws "github.com/agentstation/datastory/internal/server/websocket"
)

func TestAdaptersForwardBrokerEvents(t *testing.T) {
	logger := zerolog.Nop()
	broker := events.NewBroker(&logger)
	hub := ws.NewHub(&logger)
	broadcaster := sse.NewBroadcaster(&logger)

	broker.Subscribe(NewWebSocketSubscriber(hub))
	broker.Subscribe(NewSSESubscriber(broadcaster))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go broker.Run(ctx)
	go hub.Run(ctx)

	client := ws.NewClient("c1", hub, nil)
	hub.Register(client)
	require.Eventually(t, func() bool {
		return hub.ClientCount() == 1 && broker.SubscriberCount() == 2
	}, time.Second, 5*time.Millisecond)

	broker.Publish(events.DatasetReloaded, events.ReloadedData{Dir: "/data"})
	select {
	case msg := <-client.Messages():
		assert.Equal(t, string(events.DatasetReloaded), msg.Type)
		assert.NotZero(t, msg.ID)
		assert.Equal(t, "/data", msg.Data.(events.ReloadedData).Dir)
	case <-time.After(2 * time.Second):
		t.Fatal("websocket client did not receive the event")
	}
}

func TestAdapterClose(t *testing.T) {
	logger := zerolog.Nop()
	assert.NoError(t, NewSSESubscriber(sse.NewBroadcaster(&logger)).Close())
	assert.NoError(t, NewWebSocketSubscriber(ws.NewHub(&logger)).Close())
}

func TestSSESubscriberNeverBlocks(t *testing.T) {
	logger := zerolog.Nop()
	sub := NewSSESubscriber(sse.NewBroadcaster(&logger))

	done := make(chan struct{})
	go func() {
		for i := range 1000 {
			_ = sub.Send(events.Event{ID: uint64(i), Type: events.DatasetReloadFailed})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked without a running broadcaster")
	}
}
