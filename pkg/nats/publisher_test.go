package nats

import (
	"context"
	"testing"
	"time"

	"ai-chatbot-be/internal/pkg/logger"
	"ai-chatbot-be/pkg/events"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestNATSServer(t *testing.T) *natsserver.Server {
	opts := &natsserver.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		NoLog:     true,
		NoSigs:    true,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}

	server, err := natsserver.NewServer(opts)
	require.NoError(t, err)

	go server.Start()

	if !server.ReadyForConnections(5 * time.Second) {
		t.Fatal("NATS server not ready")
	}

	t.Cleanup(func() {
		server.Shutdown()
		server.WaitForShutdown()
	})
	return server
}

func TestPublishSubscribeRoundTrip(t *testing.T) {
	server := startTestNATSServer(t)
	log := logger.NewNopLogger()

	pub, err := NewPublisher(server.ClientURL(), log)
	require.NoError(t, err)
	defer pub.Close()

	sub, err := NewSubscriber(server.ClientURL(), log)
	require.NoError(t, err)
	defer sub.Close()

	received := make(chan events.Event, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = sub.Subscribe(ctx, "CHAT_MODE_CHANGED", "test-instance", func(_ context.Context, e events.Event) error {
		received <- e
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, events.New("CHAT_MODE_CHANGED", map[string]interface{}{
		"mode": "remote",
	})))

	select {
	case e := <-received:
		assert.Equal(t, "CHAT_MODE_CHANGED", e.EventType())
		assert.Equal(t, "remote", e.Payload()["mode"])
		assert.False(t, e.Timestamp().IsZero())
	case <-ctx.Done():
		t.Fatal("event not delivered")
	}
}

func TestDecodeFallsBackToSubject(t *testing.T) {
	evt, err := decode("events.REINDEX_COMPLETED", []byte(`{"payload":{"indexed":3}}`))
	require.NoError(t, err)
	assert.Equal(t, "REINDEX_COMPLETED", evt.Type)
	assert.EqualValues(t, 3, evt.Data["indexed"])

	_, err = decode("events.X", []byte(`nope`))
	assert.Error(t, err)
}
