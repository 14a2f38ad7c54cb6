package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"party-service/internal/middleware"
	"party-service/internal/models"
	"party-service/internal/party"
	"party-service/internal/repositories"
	"party-service/internal/telemetry"
)

// PartyHandler manages party lifecycle endpoints.
type PartyHandler struct {
	lifecycle *party.Lifecycle
	partyRepo repositories.PartyRepository
	emitter   *telemetry.AuditEmitter
}

// NewPartyHandler builds a PartyHandler.
func NewPartyHandler(lifecycle *party.Lifecycle, partyRepo repositories.PartyRepository, emitter *telemetry.AuditEmitter) *PartyHandler {
	return &PartyHandler{lifecycle: lifecycle, partyRepo: partyRepo, emitter: emitter}
}

// CreateParty starts a new party hosted by the caller.
func (h *PartyHandler) CreateParty(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req struct {
		Media    models.Media `json:"media" binding:"required"`
		IsPublic bool         `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Media.ID == "" || req.Media.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "media id and title are required"})
		return
	}

	created, err := h.lifecycle.Create(c.Request.Context(), identity, req.Media, req.IsPublic)
	if err != nil {
		if errors.Is(err, party.ErrInvalidMedia) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create party"})
		return
	}

	h.emitter.Emit(c.Request.Context(), "INFO", "party created: "+created.ID, requestIDFromContext(c), identityUID(identity))
	c.JSON(http.StatusCreated, created)
}

// GetParty returns the current session document. Also serves invite-link
// resolution: /party/<id> clients fetch this before joining.
func (h *PartyHandler) GetParty(c *gin.Context) {
	partyID := c.Param("party_id")

	found, err := h.partyRepo.Get(c.Request.Context(), partyID)
	if err != nil {
		if errors.Is(err, repositories.ErrPartyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "party not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load party"})
		return
	}

	c.JSON(http.StatusOK, found)
}

// JoinParty adds the caller to the member set and returns the updated party.
func (h *PartyHandler) JoinParty(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	joined, err := h.lifecycle.Join(c.Request.Context(), c.Param("party_id"), identity)
	if err != nil {
		if errors.Is(err, repositories.ErrPartyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "party not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not join party"})
		return
	}

	c.JSON(http.StatusOK, joined)
}

// LeaveParty removes the caller's member entry, deleting the party when the
// caller was the last member.
func (h *PartyHandler) LeaveParty(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	if err := h.lifecycle.Leave(c.Request.Context(), c.Param("party_id"), identity); err != nil {
		if errors.Is(err, repositories.ErrPartyNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "party not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not leave party"})
		return
	}

	c.Status(http.StatusNoContent)
}

// TerminateParty deletes the party for everyone. Host only.
func (h *PartyHandler) TerminateParty(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	if err := h.lifecycle.Terminate(c.Request.Context(), c.Param("party_id"), identity); err != nil {
		switch {
		case errors.Is(err, repositories.ErrPartyNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "party not found"})
		case errors.Is(err, party.ErrNotHost):
			c.JSON(http.StatusForbidden, gin.H{"error": "only the host can terminate the party"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not terminate party"})
		}
		return
	}

	h.emitter.Emit(c.Request.Context(), "INFO", "party terminated: "+c.Param("party_id"), requestIDFromContext(c), identityUID(identity))
	c.Status(http.StatusNoContent)
}

// UpdateStatus writes the host's play/pause/time state.
func (h *PartyHandler) UpdateStatus(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req struct {
		IsPlaying   bool    `json:"is_playing"`
		CurrentTime float64 `json:"current_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.CurrentTime < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current_time must not be negative"})
		return
	}

	updated, err := h.lifecycle.UpdateStatus(c.Request.Context(), c.Param("party_id"), identity, req.IsPlaying, req.CurrentTime)
	if err != nil {
		h.writeStatusError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// UpdateEpisode writes the host's season/episode change.
func (h *PartyHandler) UpdateEpisode(c *gin.Context) {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	var req struct {
		Season  int `json:"season" binding:"required,min=1"`
		Episode int `json:"episode" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated, err := h.lifecycle.UpdateEpisode(c.Request.Context(), c.Param("party_id"), identity, req.Season, req.Episode)
	if err != nil {
		h.writeStatusError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *PartyHandler) writeStatusError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repositories.ErrPartyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "party not found"})
	case errors.Is(err, party.ErrNotHost):
		c.JSON(http.StatusForbidden, gin.H{"error": "only the host writes playback status"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update playback status"})
	}
}
