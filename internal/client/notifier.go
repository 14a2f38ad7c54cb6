package client

import (
	"sync"
	"time"

	"party-service/internal/discovery"
	"party-service/internal/models"
)

// DefaultDismissAfter is how long a new-party notification stays up before it
// dismisses itself.
const DefaultDismissAfter = 8 * time.Second

// Notifier surfaces a "party just started" notification for lobby viewers.
// A party qualifies only while it is inside the new-party window at the
// moment of observation; the notification goes away after DefaultDismissAfter
// or on explicit dismissal, independent of the party's own lifetime.
type Notifier struct {
	mu           sync.Mutex
	active       *models.Party
	timer        *time.Timer
	gen          int
	dismissAfter time.Duration
	now          func() time.Time
}

// NewNotifier constructs a Notifier.
func NewNotifier(dismissAfter time.Duration) *Notifier {
	return &Notifier{dismissAfter: dismissAfter, now: time.Now}
}

// Observe considers a party seen in the lobby listing. It returns true when a
// notification was raised.
func (n *Notifier) Observe(party models.Party) bool {
	if n.now().Sub(party.CreatedAt) >= discovery.NewPartyWindow {
		return false
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.active != nil && n.active.ID == party.ID {
		return false
	}

	if n.timer != nil {
		n.timer.Stop()
	}
	shown := party
	n.active = &shown
	// The generation ties the auto-dismiss to this notification. A timer that
	// already fired but lost the lock race to a replacement must not clear the
	// replacement.
	n.gen++
	gen := n.gen
	n.timer = time.AfterFunc(n.dismissAfter, func() { n.dismissGen(gen) })
	return true
}

// Dismiss clears the active notification.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.clearLocked()
}

func (n *Notifier) dismissGen(gen int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.gen != gen {
		return
	}
	n.clearLocked()
}

func (n *Notifier) clearLocked() {
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.gen++
	n.active = nil
}

// Active returns the currently shown notification, if any.
func (n *Notifier) Active() *models.Party {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.active == nil {
		return nil
	}
	shown := *n.active
	return &shown
}
