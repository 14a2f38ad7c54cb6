package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"party-service/internal/auth"
	"party-service/internal/models"
	"party-service/internal/observability"
	"party-service/internal/repositories"
)

// Reactions replay at most this many pre-existing records to a new subscriber;
// older backlog is ignored by design.
const DefaultReactionBacklog = 5

// PartyWebSocketHandler serves the three per-party subscription streams.
type PartyWebSocketHandler struct {
	hub          *Hub
	partyRepo    repositories.PartyRepository
	messageRepo  repositories.MessageRepository
	reactionRepo repositories.ReactionRepository
	verifier     auth.Verifier
}

// NewPartyWebSocketHandler constructs a PartyWebSocketHandler.
func NewPartyWebSocketHandler(hub *Hub, partyRepo repositories.PartyRepository, messageRepo repositories.MessageRepository, reactionRepo repositories.ReactionRepository, verifier auth.Verifier) *PartyWebSocketHandler {
	return &PartyWebSocketHandler{
		hub:          hub,
		partyRepo:    partyRepo,
		messageRepo:  messageRepo,
		reactionRepo: reactionRepo,
		verifier:     verifier,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSession subscribes to the session document stream. The full current
// document is delivered immediately after the upgrade; if the party is absent
// the terminal party_deleted event is delivered instead and the connection is
// closed.
func (h *PartyWebSocketHandler) HandleSession(c *gin.Context) {
	h.handle(c, KindSession, func(ctx context.Context, conn *websocket.Conn, partyID string) error {
		party, err := h.partyRepo.Get(ctx, partyID)
		if err != nil {
			if errors.Is(err, repositories.ErrPartyNotFound) {
				return h.writeTerminalDeleted(conn)
			}
			return err
		}
		return h.writeJSON(conn, models.PartyEvent{Type: models.PartyEventSnapshot, Party: &party})
	})
}

// HandleChat subscribes to the chat stream. The full backlog is replayed in
// ascending timestamp order before live messages.
func (h *PartyWebSocketHandler) HandleChat(c *gin.Context) {
	h.handle(c, KindChat, func(ctx context.Context, conn *websocket.Conn, partyID string) error {
		msgs, err := h.messageRepo.List(ctx, partyID)
		if err != nil {
			return err
		}
		for i := range msgs {
			if err := h.writeJSON(conn, models.ChatEvent{Type: "message", Message: &msgs[i]}); err != nil {
				return err
			}
		}
		return nil
	})
}

// HandleReactions subscribes to the reactions stream. Only a small recent
// backlog is replayed; reactions are ephemeral.
func (h *PartyWebSocketHandler) HandleReactions(c *gin.Context) {
	limit := DefaultReactionBacklog
	if raw := c.Query("backlog"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 && parsed < 100 {
			limit = parsed
		}
	}
	h.handle(c, KindReactions, func(ctx context.Context, conn *websocket.Conn, partyID string) error {
		reactions, err := h.reactionRepo.ListRecent(ctx, partyID, limit)
		if err != nil {
			return err
		}
		for i := range reactions {
			if err := h.writeJSON(conn, models.ReactionEvent{Type: "reaction", Reaction: &reactions[i]}); err != nil {
				return err
			}
		}
		return nil
	})
}

// handle runs the shared handshake: auth, membership check, upgrade, hub
// registration, initial payload and the read pump that detects disconnects.
func (h *PartyWebSocketHandler) handle(c *gin.Context, kind Kind, initial func(ctx context.Context, conn *websocket.Conn, partyID string) error) {
	partyID := c.Param("party_id")
	if partyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid party id"})
		return
	}

	ctx, span := otel.Tracer("party-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	identity, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	member, err := h.partyRepo.HasMember(ctx, partyID, identity.UID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a party member"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      identity.UID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}

	// Register before the backlog replay so a mutation committed mid-replay is
	// broadcast to this connection instead of vanishing between backlog and
	// live delivery. The hub serializes per-connection writes; clients dedup
	// the replay/live overlap by record id.
	h.hub.AddClient(kind, partyID, conn, info)

	if err := initial(ctx, conn, partyID); err != nil {
		h.hub.RemoveClient(kind, partyID, conn)
		conn.Close()
		return
	}

	observability.IncWSActive(string(kind))
	observability.IncWSEvent(string(kind), "ws_connect")
	headers := observability.BuildHeaders(requestID, traceID)
	_ = observability.PublishEvent(ctx, routingKey(kind), observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   wsEventPayload(kind, partyID, info, "ws_connect", 0, ""),
	}, headers)

	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveClient(kind, partyID, conn)
			observability.DecWSActive(string(kind))
			observability.IncWSEvent(string(kind), "ws_disconnect")
			_ = observability.PublishEvent(ctx, routingKey(kind), observability.EventEnvelope{
				EventType: "ws_events",
				EventName: "ws_disconnect",
				Payload:   wsEventPayload(kind, partyID, info, "ws_disconnect", time.Since(info.ConnectedAt).Milliseconds(), closeReason),
			}, headers)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent(string(kind), "ws_error")
					_ = observability.PublishEvent(ctx, routingKey(kind), observability.EventEnvelope{
						EventType: "ws_events",
						EventName: "ws_error",
						Payload:   wsEventPayload(kind, partyID, info, "ws_error", time.Since(info.ConnectedAt).Milliseconds(), closeReason),
					}, headers)
				}
				return
			}
		}
	}()
}

func (h *PartyWebSocketHandler) writeTerminalDeleted(conn *websocket.Conn) error {
	_ = h.writeJSON(conn, models.PartyEvent{Type: models.PartyEventDeleted})
	conn.Close()
	return errors.New("party not found")
}

func (h *PartyWebSocketHandler) writeJSON(conn *websocket.Conn, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return h.hub.writeConn(conn, payload)
}

func (h *PartyWebSocketHandler) validateToken(header string) (models.Identity, error) {
	parts := strings.Split(header, " ")
	if len(parts) == 2 {
		return h.verifier.Verify(parts[1])
	}
	return models.Identity{}, fmt.Errorf("invalid token")
}
