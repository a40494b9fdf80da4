package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"taskboard/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHub_PublishReachesOnlyOwner(t *testing.T) {
	h := newTestHub()
	alice1 := NewClient("alice", nil, h)
	alice2 := NewClient("alice", nil, h)
	bob := NewClient("bob", nil, h)
	for _, c := range []*Client{alice1, alice2, bob} {
		require.True(t, h.Register(c))
	}
	assert.Equal(t, 2, h.Connections("alice"))

	h.Publish("alice", domain.TaskEvent{Type: domain.EventTaskCreated, TaskID: "t1", At: time.Now()})

	for _, c := range []*Client{alice1, alice2} {
		select {
		case msg := <-c.Send:
			var ev domain.TaskEvent
			require.NoError(t, json.Unmarshal(msg, &ev))
			assert.Equal(t, domain.EventTaskCreated, ev.Type)
			assert.Equal(t, "t1", ev.TaskID)
		default:
			t.Fatal("expected event for alice")
		}
	}
	assert.Empty(t, bob.Send)
}

func TestHub_UnregisterClosesSendOnce(t *testing.T) {
	h := newTestHub()
	c := NewClient("alice", nil, h)
	require.True(t, h.Register(c))

	h.Unregister(c)
	h.Unregister(c)

	_, open := <-c.Send
	assert.False(t, open)
	assert.Zero(t, h.Connections("alice"))

	h.Publish("alice", domain.TaskEvent{Type: domain.EventTaskDeleted, TaskID: "t1"})
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	h := newTestHub()
	c := NewClient("alice", nil, h)
	require.True(t, h.Register(c))

	for i := 0; i < sendBuffer+1; i++ {
		h.Publish("alice", domain.TaskEvent{Type: domain.EventTaskUpdated, TaskID: "t1"})
	}

	assert.Zero(t, h.Connections("alice"))
	n := 0
	for range c.Send {
		n++
	}
	assert.Equal(t, sendBuffer, n)
}

func TestHub_RunDisconnectsOnShutdown(t *testing.T) {
	h := newTestHub()
	c := NewClient("alice", nil, h)
	require.True(t, h.Register(c))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	_, open := <-c.Send
	assert.False(t, open)
	assert.False(t, h.Register(NewClient("bob", nil, h)), "closed hub rejects new clients")
}
