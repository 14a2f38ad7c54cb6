package playback

import (
	"context"
	"log"
	"math"

	"party-service/internal/models"
)

// DriftThreshold is the maximum tolerated distance, in seconds, between a
// guest's local playback position and the host's reported position before a
// hard correction is issued.
const DriftThreshold = 3.0

// Role is a client's fixed position in the party, decided at join time.
type Role int

const (
	RoleGuest Role = iota
	RoleHost
)

func (r Role) String() string {
	if r == RoleHost {
		return "host"
	}
	return "guest"
}

// RoleFor returns the role of localUID in the party. Exactly one client is
// ever the host; the role never changes for the party's lifetime.
func RoleFor(localUID string, party models.Party) Role {
	if localUID == party.HostID {
		return RoleHost
	}
	return RoleGuest
}

// StatusWriter pushes host playback state to the shared session document.
type StatusWriter interface {
	UpdateStatus(ctx context.Context, partyID string, isPlaying bool, currentTime float64) error
	UpdateEpisode(ctx context.Context, partyID string, season, episode int) error
}

// Engine keeps a local player aligned with the party's shared playback state.
// Hosts push their local state through the writer; guests reconcile the local
// surface against incoming snapshots and never write.
type Engine struct {
	role    Role
	partyID string
	surface PlaybackSurface
	writer  StatusWriter
}

// NewEngine builds an engine. writer may be nil for guests.
func NewEngine(role Role, partyID string, surface PlaybackSurface, writer StatusWriter) *Engine {
	return &Engine{role: role, partyID: partyID, surface: surface, writer: writer}
}

// Role returns the engine's fixed role.
func (e *Engine) Role() Role {
	return e.role
}

// Reconcile applies a session snapshot to the local player. Host engines
// ignore snapshots: the host's own player is the source of truth. The
// operation is idempotent; reapplying the same target state is harmless.
// Surface command failures are logged and retried naturally on the next
// snapshot.
func (e *Engine) Reconcile(status models.PlaybackStatus) {
	if e.role == RoleHost {
		return
	}

	drift := math.Abs(e.surface.CurrentTime() - status.CurrentTime)
	if drift > DriftThreshold {
		if err := e.surface.SeekTo(status.CurrentTime); err != nil {
			log.Printf("playback seek failed: %v", err)
		}
	}

	if status.IsPlaying {
		if err := e.surface.Play(); err != nil {
			log.Printf("playback play failed: %v", err)
		}
	} else {
		if err := e.surface.Pause(); err != nil {
			log.Printf("playback pause failed: %v", err)
		}
	}
}

// PushState publishes the host's current play state and position with a fresh
// server timestamp. Called on every local play, pause and seek event.
func (e *Engine) PushState(ctx context.Context, isPlaying bool) error {
	if e.role != RoleHost || e.writer == nil {
		return nil
	}
	return e.writer.UpdateStatus(ctx, e.partyID, isPlaying, e.surface.CurrentTime())
}

// PushEpisode publishes a season/episode change. A separate write from
// PushState, matching the two host-side update operations.
func (e *Engine) PushEpisode(ctx context.Context, season, episode int) error {
	if e.role != RoleHost || e.writer == nil {
		return nil
	}
	return e.writer.UpdateEpisode(ctx, e.partyID, season, episode)
}
