// Package collab implements the realtime collaboration service: a session
// registry with scoped, best-effort broadcast fan-out over WebSocket.
package collab

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/model"
)

// Event is the wire message fanned out to collaboration clients.
type Event struct {
	Type      string         `json:"type"` // joined, left, message, approval_update
	Scope     string         `json:"scope"`
	TenantID  string         `json:"tenant_id"`
	UserID    string         `json:"user_id,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	SentAt    time.Time      `json:"sent_at"`
}

// Client is one connected collaboration session. The transport layer drains
// Send and writes frames to the socket.
type Client struct {
	SessionID string
	UserID    string
	TenantID  string
	send      chan []byte
}

// Send returns the outbound frame channel for this client.
func (c *Client) Send() <-chan []byte { return c.send }

// PresenceStore keeps cross-instance session counters. Implemented by
// cache.Redis; nil disables shared presence.
type PresenceStore interface {
	IncrPresence(ctx context.Context, tenantID string) (int64, error)
	DecrPresence(ctx context.Context, tenantID string) (int64, error)
	PresenceCount(ctx context.Context, tenantID string) (int64, error)
}

// sendBuffer bounds each client's outbound queue. Delivery is fire and
// forget: when a consumer is slow the frame is dropped, not queued.
const sendBuffer = 32

// Hub maintains the session_id → client, user_id → sessions and
// tenant_id → sessions registries and fans events out to matching scopes.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Client
	users    map[string]map[string]*Client
	tenants  map[string]map[string]*Client
	presence PresenceStore
}

// NewHub creates an empty hub.
func NewHub(presence PresenceStore) *Hub {
	return &Hub{
		sessions: make(map[string]*Client),
		users:    make(map[string]map[string]*Client),
		tenants:  make(map[string]map[string]*Client),
		presence: presence,
	}
}

// Register creates a session for a user and announces it to the tenant scope.
func (h *Hub) Register(tenantID, userID string) *Client {
	c := &Client{
		SessionID: uuid.NewString(),
		UserID:    userID,
		TenantID:  tenantID,
		send:      make(chan []byte, sendBuffer),
	}

	h.mu.Lock()
	h.sessions[c.SessionID] = c
	if h.users[userID] == nil {
		h.users[userID] = make(map[string]*Client)
	}
	h.users[userID][c.SessionID] = c
	if h.tenants[tenantID] == nil {
		h.tenants[tenantID] = make(map[string]*Client)
	}
	h.tenants[tenantID][c.SessionID] = c
	h.mu.Unlock()

	if h.presence != nil {
		_, _ = h.presence.IncrPresence(context.Background(), tenantID)
	}

	h.BroadcastToTenant(tenantID, Event{
		Type:      "joined",
		UserID:    userID,
		SessionID: c.SessionID,
	})
	return c
}

// Unregister removes a session and announces the departure. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, present := h.sessions[c.SessionID]
	if present {
		delete(h.sessions, c.SessionID)
		delete(h.users[c.UserID], c.SessionID)
		if len(h.users[c.UserID]) == 0 {
			delete(h.users, c.UserID)
		}
		delete(h.tenants[c.TenantID], c.SessionID)
		if len(h.tenants[c.TenantID]) == 0 {
			delete(h.tenants, c.TenantID)
		}
		close(c.send)
	}
	h.mu.Unlock()

	if !present {
		return
	}
	if h.presence != nil {
		_, _ = h.presence.DecrPresence(context.Background(), c.TenantID)
	}

	h.BroadcastToTenant(c.TenantID, Event{
		Type:      "left",
		UserID:    c.UserID,
		SessionID: c.SessionID,
	})
}

// SendToSession delivers an event to one session.
func (h *Hub) SendToSession(sessionID string, ev Event) {
	ev.Scope = "session"
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.sessions[sessionID]; ok {
		deliver(c, ev)
	}
}

// BroadcastToUser delivers an event to every session of a user.
func (h *Hub) BroadcastToUser(userID string, ev Event) {
	ev.Scope = "user"
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.users[userID] {
		deliver(c, ev)
	}
}

// BroadcastToTenant delivers an event to every session in a tenant.
func (h *Hub) BroadcastToTenant(tenantID string, ev Event) {
	ev.Scope = "tenant"
	ev.TenantID = tenantID
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.tenants[tenantID] {
		deliver(c, ev)
	}
}

// SessionCount returns the number of live sessions for a tenant on this instance.
func (h *Hub) SessionCount(tenantID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.tenants[tenantID])
}

// NotifyApproval implements service.ApprovalNotifier, pushing HITL workflow
// transitions to the request's tenant.
func (h *Hub) NotifyApproval(tenantID string, req *model.ApprovalRequest, action string) {
	h.BroadcastToTenant(tenantID, Event{
		Type: "approval_update",
		Payload: map[string]any{
			"request_id": req.ID,
			"kind":       req.Kind,
			"state":      req.State,
			"risk_level": req.RiskLevel,
			"action":     action,
		},
	})
}

// deliver marshals and enqueues without blocking; slow consumers lose frames.
// Called with h.mu held (read side), so it cannot race Unregister's close.
func deliver(c *Client, ev Event) {
	if ev.TenantID == "" {
		ev.TenantID = c.TenantID
	}
	ev.SentAt = time.Now().UTC()
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}
