package handler

import (
	"encoding/json"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/collab"
	"github.com/Bizoholic-Digital/bizosaas-platform-sub010/internal/http/middleware"
)

const (
	collabWriteWait  = 10 * time.Second
	collabPongWait   = 60 * time.Second
	collabPingPeriod = 45 * time.Second
)

// inboundMessage is what a connected client may send: a scoped broadcast.
type inboundMessage struct {
	Type    string         `json:"type"`
	Scope   string         `json:"scope"`  // session, user or tenant
	Target  string         `json:"target"` // session_id or user_id; empty for tenant scope
	Payload map[string]any `json:"payload"`
}

func registerCollabRoutes(app *fiber.App, g fiber.Router, d Deps) {
	// Presence is served over plain HTTP so dashboards can poll it.
	g.Get("/presence", func(c *fiber.Ctx) error {
		tenant := middleware.TenantFromCtx(c)
		local := 0
		if d.Hub != nil {
			local = d.Hub.SessionCount(tenant)
		}
		resp := fiber.Map{"tenant_id": tenant, "sessions": local}
		if d.Presence != nil {
			if shared, err := d.Presence.PresenceCount(c.UserContext(), tenant); err == nil {
				resp["shared_sessions"] = shared
			}
		}
		return c.JSON(resp)
	})

	app.Use("/ws/collab", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		userID := c.Query("user_id")
		if userID == "" {
			return writeError(c, fiber.StatusBadRequest, "USER_ID_REQUIRED", "user_id query parameter is required")
		}
		c.Locals("collab_user_id", userID)
		c.Locals("collab_tenant_id", middleware.TenantFromCtx(c))
		return c.Next()
	})

	app.Get("/ws/collab", websocket.New(func(conn *websocket.Conn) {
		userID, _ := conn.Locals("collab_user_id").(string)
		tenantID, _ := conn.Locals("collab_tenant_id").(string)

		client := d.Hub.Register(tenantID, userID)

		done := make(chan struct{})
		go writePump(conn, client, done)
		readPump(conn, d.Hub, client)
		// Unregister right away so presence drops the moment the socket dies;
		// closing the send channel is also what ends writePump.
		d.Hub.Unregister(client)
		<-done
	}))
}

// writePump drains the hub's outbound queue onto the socket and keeps the
// connection alive with pings. Exits when the client's channel is closed.
func writePump(conn *websocket.Conn, client *collab.Client, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(collabPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-client.Send():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage, nil, time.Now().Add(collabWriteWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(collabWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(collabWriteWait)); err != nil {
				return
			}
		}
	}
}

// readPump consumes client frames and routes scoped broadcasts through the
// hub. Returns on any read error, which includes a client disconnect.
func readPump(conn *websocket.Conn, hub *collab.Hub, client *collab.Client) {
	_ = conn.SetReadDeadline(time.Now().Add(collabPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(collabPongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(collabPongWait))

		var msg inboundMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		ev := collab.Event{
			Type:      "message",
			UserID:    client.UserID,
			SessionID: client.SessionID,
			Payload:   msg.Payload,
		}
		switch msg.Scope {
		case "session":
			hub.SendToSession(msg.Target, ev)
		case "user":
			hub.BroadcastToUser(msg.Target, ev)
		default:
			hub.BroadcastToTenant(client.TenantID, ev)
		}
	}
}
