package discovery

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"party-service/internal/models"
	"party-service/internal/repositories"
)

// NewPartyWindow is how long after creation a party still counts as "just
// started" for lobby notifications.
const NewPartyWindow = 30 * time.Second

const lobbyCacheKey = "lobby"

// Service lists public parties for the browsable lobby.
type Service struct {
	parties repositories.PartyRepository
	cache   *gocache.Cache
	now     func() time.Time
}

// NewService constructs a discovery Service. Lobby responses are cached for
// cacheTTL to keep repeated lobby polls off the database.
func NewService(parties repositories.PartyRepository, cacheTTL time.Duration) *Service {
	return &Service{
		parties: parties,
		cache:   gocache.New(cacheTTL, 2*cacheTTL),
		now:     time.Now,
	}
}

// ListPublic returns public parties ordered by creation time descending.
func (s *Service) ListPublic(ctx context.Context) ([]models.Party, error) {
	if cached, ok := s.cache.Get(lobbyCacheKey); ok {
		return cached.([]models.Party), nil
	}

	parties, err := s.parties.ListPublic(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetDefault(lobbyCacheKey, parties)
	return parties, nil
}

// IsNew reports whether the party counts as just started at the moment of
// observation.
func (s *Service) IsNew(party models.Party) bool {
	return s.now().Sub(party.CreatedAt) < NewPartyWindow
}

// NewlyStarted filters the listing down to parties inside the new-party
// window. The lobby entry itself persists after the window closes; only the
// notification goes away.
func (s *Service) NewlyStarted(parties []models.Party) []models.Party {
	fresh := make([]models.Party, 0, len(parties))
	for _, party := range parties {
		if s.IsNew(party) {
			fresh = append(fresh, party)
		}
	}
	return fresh
}
