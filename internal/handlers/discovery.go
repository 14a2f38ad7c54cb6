package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"party-service/internal/discovery"
)

// DiscoveryHandler serves the public lobby.
type DiscoveryHandler struct {
	service *discovery.Service
}

// NewDiscoveryHandler builds a DiscoveryHandler.
func NewDiscoveryHandler(service *discovery.Service) *DiscoveryHandler {
	return &DiscoveryHandler{service: service}
}

// ListPublic returns public parties, newest first, plus the ids of parties
// still inside the new-party notification window at the moment of the call.
func (h *DiscoveryHandler) ListPublic(c *gin.Context) {
	parties, err := h.service.ListPublic(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load parties"})
		return
	}

	fresh := h.service.NewlyStarted(parties)
	newIDs := make([]string, 0, len(fresh))
	for _, party := range fresh {
		newIDs = append(newIDs, party.ID)
	}

	c.JSON(http.StatusOK, gin.H{"parties": parties, "new_party_ids": newIDs})
}
