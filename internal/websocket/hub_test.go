package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"econote-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := NewHub(nil, logger.NewNopLogger())
	go hub.Run(ctx)
	return hub
}

func TestHub_SendReachesEveryClientOfUser(t *testing.T) {
	hub := runHub(t)
	alice, bob := uuid.New(), uuid.New()

	tabA := NewClient(nil, alice, logger.NewNopLogger())
	tabB := NewClient(nil, alice, logger.NewNopLogger())
	other := NewClient(nil, bob, logger.NewNopLogger())
	hub.Register(tabA)
	hub.Register(tabB)
	hub.Register(other)
	require.Eventually(t, func() bool { return hub.Connected(alice) == 2 }, time.Second, 5*time.Millisecond)

	hub.Send(alice, "notification", map[string]string{"message": "Page saved"})

	for _, c := range []*Client{tabA, tabB} {
		select {
		case raw := <-c.Send:
			var msg struct {
				Type string            `json:"type"`
				Data map[string]string `json:"data"`
			}
			require.NoError(t, json.Unmarshal(raw, &msg))
			assert.Equal(t, "notification", msg.Type)
			assert.Equal(t, "Page saved", msg.Data["message"])
		case <-time.After(time.Second):
			t.Fatal("message not delivered")
		}
	}
	assert.Empty(t, other.Send)
}

func TestHub_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	hub := runHub(t)
	uid := uuid.New()
	c := &Client{UserID: uid, Send: make(chan []byte, 1), logger: logger.NewNopLogger()}
	hub.Register(c)
	require.Eventually(t, func() bool { return hub.Connected(uid) == 1 }, time.Second, 5*time.Millisecond)

	hub.Send(uid, "event", 1)
	hub.Send(uid, "event", 2)

	assert.Len(t, c.Send, 1)
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := runHub(t)
	uid := uuid.New()
	c := NewClient(nil, uid, logger.NewNopLogger())
	hub.Register(c)
	hub.Unregister(c)

	require.Eventually(t, func() bool { return hub.Connected(uid) == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-c.Send
	assert.False(t, ok)
}
