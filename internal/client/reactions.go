package client

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"party-service/internal/models"
)

const (
	// DefaultOverlaySize bounds how many reactions are visible at once.
	DefaultOverlaySize = 20
	// DefaultOverlayTTL is how long a reaction stays on the overlay before the
	// client-side timer removes it.
	DefaultOverlayTTL = 4 * time.Second
)

// ReactionOverlay is the bounded, time-windowed local projection of the live
// reaction feed. Oldest entries are evicted when the buffer is full; every
// entry expires after a fixed client-driven timer. Purely cosmetic, nothing
// is persisted.
type ReactionOverlay struct {
	mu      sync.Mutex
	entries *lru.Cache[int, models.Reaction]
	ttl     time.Duration
	seq     int
}

// NewReactionOverlay builds an overlay holding at most size reactions, each
// visible for ttl.
func NewReactionOverlay(size int, ttl time.Duration) (*ReactionOverlay, error) {
	entries, err := lru.New[int, models.Reaction](size)
	if err != nil {
		return nil, err
	}
	return &ReactionOverlay{entries: entries, ttl: ttl}, nil
}

// Add places a newly observed reaction on the overlay and schedules its
// removal.
func (o *ReactionOverlay) Add(reaction models.Reaction) {
	o.mu.Lock()
	o.seq++
	key := o.seq
	o.entries.Add(key, reaction)
	o.mu.Unlock()

	time.AfterFunc(o.ttl, func() {
		o.mu.Lock()
		o.entries.Remove(key)
		o.mu.Unlock()
	})
}

// Visible returns the reactions currently on the overlay, oldest first.
func (o *ReactionOverlay) Visible() []models.Reaction {
	o.mu.Lock()
	defer o.mu.Unlock()

	keys := o.entries.Keys()
	visible := make([]models.Reaction, 0, len(keys))
	for _, key := range keys {
		if reaction, ok := o.entries.Peek(key); ok {
			visible = append(visible, reaction)
		}
	}
	return visible
}

// Len returns the number of currently visible reactions.
func (o *ReactionOverlay) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.entries.Len()
}
