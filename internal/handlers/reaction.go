package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"party-service/internal/middleware"
	"party-service/internal/observability"
	"party-service/internal/repositories"
	"party-service/internal/ws"
)

// ReactionHandler manages the fire-and-forget reaction endpoint.
type ReactionHandler struct {
	partyRepo    repositories.PartyRepository
	reactionRepo repositories.ReactionRepository
	hub          *ws.Hub
}

// NewReactionHandler builds a ReactionHandler.
func NewReactionHandler(partyRepo repositories.PartyRepository, reactionRepo repositories.ReactionRepository, hub *ws.Hub) *ReactionHandler {
	return &ReactionHandler{partyRepo: partyRepo, reactionRepo: reactionRepo, hub: hub}
}

// PostReaction appends a reaction and broadcasts it. No acknowledgment beyond
// the status code and no target; delivery order is best-effort.
func (h *ReactionHandler) PostReaction(c *gin.Context) {
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
		Label string `json:"label" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reaction, err := h.reactionRepo.Append(c.Request.Context(), partyID, req.Label)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store reaction"})
		return
	}

	observability.IncReaction()
	h.hub.BroadcastReaction(partyID, reaction)
	c.JSON(http.StatusCreated, reaction)
}
