package party

import (
	"context"
	"errors"
	"log"

	"party-service/internal/models"
	"party-service/internal/observability"
	"party-service/internal/repositories"
	"party-service/internal/ws"
)

var (
	// ErrNotHost rejects a playback or termination write from a non-host.
	ErrNotHost = errors.New("caller is not the party host")
	// ErrInvalidMedia rejects a create call with an unknown media type.
	ErrInvalidMedia = errors.New("media type must be movie or tv")
)

// Lifecycle implements create/join/leave/terminate and the host-authoritative
// playback writes. Every committed mutation broadcasts a fresh full snapshot
// to session subscribers.
type Lifecycle struct {
	parties repositories.PartyRepository
	hub     *ws.Hub
}

// NewLifecycle constructs a Lifecycle manager.
func NewLifecycle(parties repositories.PartyRepository, hub *ws.Hub) *Lifecycle {
	return &Lifecycle{parties: parties, hub: hub}
}

// Create starts a new party hosted by user with playback defaulted to paused
// at zero, season 1, episode 1, and the host as the single member.
func (l *Lifecycle) Create(ctx context.Context, user models.Identity, media models.Media, isPublic bool) (models.Party, error) {
	if media.Type != "movie" && media.Type != "tv" {
		return models.Party{}, ErrInvalidMedia
	}

	party := models.Party{
		HostID:    user.UID,
		HostName:  user.Name,
		HostPhoto: user.Photo,
		Media:     media,
		Status: models.PlaybackStatus{
			IsPlaying:   false,
			CurrentTime: 0,
			Season:      1,
			Episode:     1,
		},
		IsPublic: isPublic,
	}

	created, err := l.parties.Create(ctx, party)
	if err != nil {
		return models.Party{}, err
	}

	observability.IncLifecycleEvent("party_created")
	l.publishLifecycleEvent(ctx, "party_created", created.ID, user.UID)
	return created, nil
}

// Join adds the user's member entry via set union and pushes the updated
// document to all subscribers. Union is by exact value: a changed photo for
// the same uid produces a second entry rather than replacing the first.
func (l *Lifecycle) Join(ctx context.Context, partyID string, user models.Identity) (models.Party, error) {
	if _, err := l.parties.Get(ctx, partyID); err != nil {
		return models.Party{}, err
	}

	if err := l.parties.AddMember(ctx, partyID, user.Member()); err != nil {
		return models.Party{}, err
	}

	party, err := l.parties.Get(ctx, partyID)
	if err != nil {
		return models.Party{}, err
	}

	l.hub.BroadcastSnapshot(partyID, party)
	observability.IncLifecycleEvent("member_joined")
	l.publishLifecycleEvent(ctx, "member_joined", partyID, user.UID)
	return party, nil
}

// Leave removes the user's exact member entry. If the observed member count is
// at most one before removal, the whole party is deleted instead and every
// subscriber receives the terminal event. A departing host does not transfer
// authority; the party continues headless.
func (l *Lifecycle) Leave(ctx context.Context, partyID string, user models.Identity) error {
	count, err := l.parties.MemberCount(ctx, partyID)
	if err != nil {
		return err
	}

	if count <= 1 {
		return l.deleteParty(ctx, partyID, user.UID)
	}

	if err := l.parties.RemoveMember(ctx, partyID, user.Member()); err != nil {
		return err
	}

	party, err := l.parties.Get(ctx, partyID)
	if err != nil {
		if errors.Is(err, repositories.ErrPartyNotFound) {
			// Deleted concurrently between the removal and the re-read.
			l.hub.BroadcastPartyDeleted(partyID)
			return nil
		}
		return err
	}

	l.hub.BroadcastSnapshot(partyID, party)
	observability.IncLifecycleEvent("member_left")
	l.publishLifecycleEvent(ctx, "member_left", partyID, user.UID)
	return nil
}

// Terminate deletes the party regardless of member count. Host only.
func (l *Lifecycle) Terminate(ctx context.Context, partyID string, user models.Identity) error {
	party, err := l.parties.Get(ctx, partyID)
	if err != nil {
		return err
	}
	if party.HostID != user.UID {
		return ErrNotHost
	}
	return l.deleteParty(ctx, partyID, user.UID)
}

// UpdateStatus writes play/pause/time on behalf of the host and pushes the
// fresh snapshot. Guests are rejected: status has a single writer.
func (l *Lifecycle) UpdateStatus(ctx context.Context, partyID string, user models.Identity, isPlaying bool, currentTime float64) (models.Party, error) {
	party, err := l.parties.Get(ctx, partyID)
	if err != nil {
		return models.Party{}, err
	}
	if party.HostID != user.UID {
		return models.Party{}, ErrNotHost
	}

	if err := l.parties.UpdateStatus(ctx, partyID, isPlaying, currentTime); err != nil {
		return models.Party{}, err
	}

	updated, err := l.parties.Get(ctx, partyID)
	if err != nil {
		return models.Party{}, err
	}

	l.hub.BroadcastSnapshot(partyID, updated)
	observability.IncStatusUpdate()
	return updated, nil
}

// UpdateEpisode writes season/episode on behalf of the host. It is a separate
// operation from UpdateStatus but goes through the same host-only write path,
// and the underlying write is a single atomic row update.
func (l *Lifecycle) UpdateEpisode(ctx context.Context, partyID string, user models.Identity, season, episode int) (models.Party, error) {
	party, err := l.parties.Get(ctx, partyID)
	if err != nil {
		return models.Party{}, err
	}
	if party.HostID != user.UID {
		return models.Party{}, ErrNotHost
	}

	if err := l.parties.UpdateEpisode(ctx, partyID, season, episode); err != nil {
		return models.Party{}, err
	}

	updated, err := l.parties.Get(ctx, partyID)
	if err != nil {
		return models.Party{}, err
	}

	l.hub.BroadcastSnapshot(partyID, updated)
	observability.IncStatusUpdate()
	return updated, nil
}

func (l *Lifecycle) deleteParty(ctx context.Context, partyID, actorUID string) error {
	if err := l.parties.Delete(ctx, partyID); err != nil {
		return err
	}

	l.hub.BroadcastPartyDeleted(partyID)
	observability.IncLifecycleEvent("party_deleted")
	l.publishLifecycleEvent(ctx, "party_deleted", partyID, actorUID)
	return nil
}

func (l *Lifecycle) publishLifecycleEvent(ctx context.Context, name, partyID, uid string) {
	err := observability.PublishEvent(ctx, "party_events."+name, observability.EventEnvelope{
		EventType: "party_events",
		EventName: name,
		Payload: map[string]interface{}{
			"party_id": partyID,
			"user_id":  uid,
		},
	}, nil)
	if err != nil {
		log.Printf("lifecycle event publish failed: %v", err)
	}
}
