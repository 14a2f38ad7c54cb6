package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"party-service/internal/middleware"
	"party-service/internal/observability"
	"party-service/internal/repositories"
	"party-service/internal/ws"
)

// ChatHandler manages the party chat endpoints.
type ChatHandler struct {
	partyRepo   repositories.PartyRepository
	messageRepo repositories.MessageRepository
	hub         *ws.Hub
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(partyRepo repositories.PartyRepository, messageRepo repositories.MessageRepository, hub *ws.Hub) *ChatHandler {
	return &ChatHandler{partyRepo: partyRepo, messageRepo: messageRepo, hub: hub}
}

// PostMessage appends an immutable chat message and broadcasts it.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	partyID := c.Param("party_id")
	member, err := h.partyRepo.HasMember(c.Request.Context(), partyID, identity.UID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a party member"})
		return
	}

	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageRepo.Append(c.Request.Context(), partyID, identity.UID, identity.Name, req.Text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	observability.IncChatMessage()
	h.hub.BroadcastChatMessage(partyID, msg)
	c.JSON(http.StatusCreated, msg)
}

// ListMessages returns the full chat history in ascending timestamp order.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	partyID := c.Param("party_id")
	member, err := h.partyRepo.HasMember(c.Request.Context(), partyID, identity.UID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a party member"})
		return
	}

	msgs, err := h.messageRepo.List(c.Request.Context(), partyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}
