package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"party-service/internal/models"
	"party-service/internal/observability"
)

// Kind names one of the three per-party subscription streams.
type Kind string

const (
	KindSession   Kind = "session"
	KindChat      Kind = "chat"
	KindReactions Kind = "reactions"
)

// Hub maintains active websocket subscriptions per party. Each party has up
// to three rooms, one per stream kind.
type Hub struct {
	rooms    map[Kind]map[string]map[*websocket.Conn]bool
	connInfo map[Kind]map[string]map[*websocket.Conn]ConnInfo
	writeMu  map[*websocket.Conn]*sync.Mutex
	mu       sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	rooms := make(map[Kind]map[string]map[*websocket.Conn]bool)
	infos := make(map[Kind]map[string]map[*websocket.Conn]ConnInfo)
	for _, kind := range []Kind{KindSession, KindChat, KindReactions} {
		rooms[kind] = make(map[string]map[*websocket.Conn]bool)
		infos[kind] = make(map[string]map[*websocket.Conn]ConnInfo)
	}
	return &Hub{rooms: rooms, connInfo: infos, writeMu: make(map[*websocket.Conn]*sync.Mutex)}
}

// AddClient registers a websocket connection to a party stream. Registration
// must happen before any backlog replay on the connection: broadcasts for
// mutations committed during the replay then reach the new subscriber instead
// of falling between backlog and live delivery.
func (h *Hub) AddClient(kind Kind, partyID string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.rooms[kind][partyID]; !ok {
		h.rooms[kind][partyID] = make(map[*websocket.Conn]bool)
	}
	h.rooms[kind][partyID][conn] = true
	if _, ok := h.connInfo[kind][partyID]; !ok {
		h.connInfo[kind][partyID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[kind][partyID][conn] = info
	if _, ok := h.writeMu[conn]; !ok {
		h.writeMu[conn] = &sync.Mutex{}
	}
}

// RemoveClient removes a websocket connection from a party stream.
func (h *Hub) RemoveClient(kind Kind, partyID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.rooms[kind][partyID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms[kind], partyID)
		}
	}
	if infos, ok := h.connInfo[kind][partyID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo[kind], partyID)
		}
	}
	delete(h.writeMu, conn)
}

// writeConn serializes writes to a single connection. Broadcast fan-out and
// backlog replay run on different goroutines and gorilla connections allow
// only one writer at a time.
func (h *Hub) writeConn(conn *websocket.Conn, payload []byte) error {
	h.mu.RLock()
	lock := h.writeMu[conn]
	h.mu.RUnlock()

	if lock == nil {
		return conn.WriteMessage(websocket.TextMessage, payload)
	}
	lock.Lock()
	defer lock.Unlock()
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// BroadcastSnapshot pushes a full session document to every session subscriber.
func (h *Hub) BroadcastSnapshot(partyID string, party models.Party) {
	event := models.PartyEvent{Type: models.PartyEventSnapshot, Party: &party}
	h.broadcast(KindSession, partyID, event)
}

// BroadcastPartyDeleted sends the terminal not-found event to every subscriber
// of the party on all three streams, then closes their connections. The event
// is never silently dropped: a subscriber either reads it or observes the close.
func (h *Hub) BroadcastPartyDeleted(partyID string) {
	event := models.PartyEvent{Type: models.PartyEventDeleted}
	payload, _ := json.Marshal(event)

	for _, kind := range []Kind{KindSession, KindChat, KindReactions} {
		h.mu.RLock()
		conns := make([]*websocket.Conn, 0, len(h.rooms[kind][partyID]))
		for conn := range h.rooms[kind][partyID] {
			conns = append(conns, conn)
		}
		h.mu.RUnlock()

		for _, conn := range conns {
			if err := h.writeConn(conn, payload); err != nil {
				log.Printf("websocket write error: %v", err)
				h.publishWSError(kind, partyID, conn, err)
			}
			conn.Close()
			h.RemoveClient(kind, partyID, conn)
		}
	}
}

// BroadcastChatMessage sends a chat message to every chat subscriber.
func (h *Hub) BroadcastChatMessage(partyID string, msg models.ChatMessage) {
	event := models.ChatEvent{Type: "message", Message: &msg}
	h.broadcast(KindChat, partyID, event)
}

// BroadcastReaction sends a reaction to every reactions subscriber.
func (h *Hub) BroadcastReaction(partyID string, reaction models.Reaction) {
	event := models.ReactionEvent{Type: "reaction", Reaction: &reaction}
	h.broadcast(KindReactions, partyID, event)
}

func (h *Hub) broadcast(kind Kind, partyID string, event interface{}) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.rooms[kind][partyID]))
	for conn := range h.rooms[kind][partyID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for _, conn := range conns {
		if err := h.writeConn(conn, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveClient(kind, partyID, conn)
			h.publishWSError(kind, partyID, conn, err)
		}
	}
}

func (h *Hub) publishWSError(kind Kind, partyID string, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(kind, partyID, conn)
	if !ok {
		return
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), routingKey(kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   wsEventPayload(kind, partyID, info, "ws_error", time.Since(info.ConnectedAt).Milliseconds(), err.Error()),
	}, headers)
	observability.IncWSEvent(string(kind), "ws_error")
}

func (h *Hub) getConnInfo(kind Kind, partyID string, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[kind][partyID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}

func routingKey(kind Kind) string {
	return "ws_events." + string(kind)
}

func wsEventPayload(kind Kind, partyID string, info ConnInfo, event string, durationMS int64, reason string) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        string(kind),
			"party_id":    partyID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": durationMS,
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
