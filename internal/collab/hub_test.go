package collab

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
)

type memPresence struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newMemPresence() *memPresence {
	return &memPresence{counts: make(map[string]int64)}
}

func (p *memPresence) IncrPresence(_ context.Context, tenantID string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[tenantID]++
	return p.counts[tenantID], nil
}

func (p *memPresence) DecrPresence(_ context.Context, tenantID string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.counts[tenantID]--
	return p.counts[tenantID], nil
}

func (p *memPresence) PresenceCount(_ context.Context, tenantID string) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[tenantID], nil
}

func recv(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case b, ok := <-c.Send():
		require.True(t, ok, "send channel closed")
		var ev Event
		require.NoError(t, json.Unmarshal(b, &ev))
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestRegisterAnnouncesJoin(t *testing.T) {
	hub := NewHub(nil)

	alice := hub.Register("tnt-01", "alice")
	// Registration broadcasts to the whole tenant, the new session included.
	ev := recv(t, alice)
	assert.Equal(t, "joined", ev.Type)
	assert.Equal(t, "alice", ev.UserID)
	assert.Equal(t, alice.SessionID, ev.SessionID)
	assert.Equal(t, "tnt-01", ev.TenantID)

	bob := hub.Register("tnt-01", "bob")
	ev = recv(t, alice)
	assert.Equal(t, "joined", ev.Type)
	assert.Equal(t, "bob", ev.UserID)
	assert.Equal(t, bob.SessionID, ev.SessionID)

	assert.Equal(t, 2, hub.SessionCount("tnt-01"))
	assert.Equal(t, 0, hub.SessionCount("tnt-02"))
}

func TestScopedDelivery(t *testing.T) {
	hub := NewHub(nil)
	alice1 := hub.Register("tnt-01", "alice")
	alice2 := hub.Register("tnt-01", "alice")
	bob := hub.Register("tnt-01", "bob")
	carol := hub.Register("tnt-02", "carol")

	drain := func(c *Client) {
		for {
			select {
			case <-c.Send():
			default:
				return
			}
		}
	}
	for _, c := range []*Client{alice1, alice2, bob, carol} {
		drain(c)
	}

	t.Run("session scope hits one session", func(t *testing.T) {
		hub.SendToSession(alice1.SessionID, Event{Type: "message", Payload: map[string]any{"text": "hi"}})

		ev := recv(t, alice1)
		assert.Equal(t, "session", ev.Scope)
		assert.Equal(t, "hi", ev.Payload["text"])
		assert.Empty(t, alice2.Send())
		assert.Empty(t, bob.Send())
	})

	t.Run("user scope hits every session of the user", func(t *testing.T) {
		hub.BroadcastToUser("alice", Event{Type: "message"})

		assert.Equal(t, "user", recv(t, alice1).Scope)
		assert.Equal(t, "user", recv(t, alice2).Scope)
		assert.Empty(t, bob.Send())
	})

	t.Run("tenant scope stops at the tenant boundary", func(t *testing.T) {
		hub.BroadcastToTenant("tnt-01", Event{Type: "message"})

		for _, c := range []*Client{alice1, alice2, bob} {
			ev := recv(t, c)
			assert.Equal(t, "tenant", ev.Scope)
			assert.Equal(t, "tnt-01", ev.TenantID)
		}
		assert.Empty(t, carol.Send())
	})
}

func TestUnregister(t *testing.T) {
	presence := newMemPresence()
	hub := NewHub(presence)

	alice := hub.Register("tnt-01", "alice")
	bob := hub.Register("tnt-01", "bob")
	recv(t, alice) // own join
	recv(t, alice) // bob's join
	recv(t, bob)

	hub.Unregister(bob)

	ev := recv(t, alice)
	assert.Equal(t, "left", ev.Type)
	assert.Equal(t, "bob", ev.UserID)
	assert.Equal(t, 1, hub.SessionCount("tnt-01"))

	// The send channel closes immediately so the connection writer can exit
	// without waiting for its next ping tick.
	_, open := <-bob.Send()
	assert.False(t, open)

	count, _ := presence.PresenceCount(context.Background(), "tnt-01")
	assert.Equal(t, int64(1), count)

	// Second unregister is a no-op, not a double close.
	hub.Unregister(bob)
	count, _ = presence.PresenceCount(context.Background(), "tnt-01")
	assert.Equal(t, int64(1), count)
}

func TestSlowConsumerDropsFrames(t *testing.T) {
	hub := NewHub(nil)
	alice := hub.Register("tnt-01", "alice")

	// Nobody drains alice; the buffer fills and later frames are dropped
	// without blocking the broadcaster.
	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer*2; i++ {
			hub.BroadcastToTenant("tnt-01", Event{Type: "message"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a slow consumer")
	}
	assert.Len(t, alice.Send(), sendBuffer)
}

func TestNotifyApproval(t *testing.T) {
	hub := NewHub(nil)
	alice := hub.Register("tnt-01", "alice")
	recv(t, alice)

	hub.NotifyApproval("tnt-01", &model.ApprovalRequest{
		ID:        "req-1",
		Kind:      model.KindContentMarketing,
		State:     model.StateApproved,
		RiskLevel: model.RiskLow,
	}, "approved")

	ev := recv(t, alice)
	assert.Equal(t, "approval_update", ev.Type)
	assert.Equal(t, "req-1", ev.Payload["request_id"])
	assert.Equal(t, "approved", ev.Payload["action"])
	assert.Equal(t, string(model.StateApproved), ev.Payload["state"])
}
