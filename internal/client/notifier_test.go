package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"party-service/internal/models"
)

func TestObserveRaisesForFreshParty(t *testing.T) {
	notifier := NewNotifier(DefaultDismissAfter)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	notifier.now = func() time.Time { return base }

	party := models.Party{ID: "p1", CreatedAt: base.Add(-5 * time.Second)}
	assert.True(t, notifier.Observe(party))

	active := notifier.Active()
	require.NotNil(t, active)
	assert.Equal(t, "p1", active.ID)
}

func TestObserveIgnoresPartyOutsideWindow(t *testing.T) {
	notifier := NewNotifier(DefaultDismissAfter)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	notifier.now = func() time.Time { return base }

	party := models.Party{ID: "p1", CreatedAt: base.Add(-45 * time.Second)}
	assert.False(t, notifier.Observe(party))
	assert.Nil(t, notifier.Active())
}

func TestObserveDedupsSameParty(t *testing.T) {
	notifier := NewNotifier(DefaultDismissAfter)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	notifier.now = func() time.Time { return base }

	party := models.Party{ID: "p1", CreatedAt: base.Add(-5 * time.Second)}
	require.True(t, notifier.Observe(party))
	assert.False(t, notifier.Observe(party))
}

func TestObserveReplacesWithNewerParty(t *testing.T) {
	notifier := NewNotifier(DefaultDismissAfter)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	notifier.now = func() time.Time { return base }

	require.True(t, notifier.Observe(models.Party{ID: "p1", CreatedAt: base.Add(-10 * time.Second)}))
	require.True(t, notifier.Observe(models.Party{ID: "p2", CreatedAt: base.Add(-2 * time.Second)}))

	active := notifier.Active()
	require.NotNil(t, active)
	assert.Equal(t, "p2", active.ID)
}

func TestExplicitDismiss(t *testing.T) {
	notifier := NewNotifier(DefaultDismissAfter)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	notifier.now = func() time.Time { return base }

	require.True(t, notifier.Observe(models.Party{ID: "p1", CreatedAt: base}))
	notifier.Dismiss()
	assert.Nil(t, notifier.Active())
}

func TestStaleAutoDismissDoesNotClearReplacement(t *testing.T) {
	// A timer that fired for an earlier notification but lost the lock race
	// to a replacement must leave the replacement standing.
	notifier := NewNotifier(DefaultDismissAfter)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	notifier.now = func() time.Time { return base }

	require.True(t, notifier.Observe(models.Party{ID: "p1", CreatedAt: base}))
	staleGen := notifier.gen
	require.True(t, notifier.Observe(models.Party{ID: "p2", CreatedAt: base}))

	notifier.dismissGen(staleGen)
	active := notifier.Active()
	require.NotNil(t, active)
	assert.Equal(t, "p2", active.ID)

	notifier.dismissGen(notifier.gen)
	assert.Nil(t, notifier.Active())
}

func TestNotificationAutoDismisses(t *testing.T) {
	notifier := NewNotifier(30 * time.Millisecond)
	base := time.Now()
	notifier.now = func() time.Time { return base }

	require.True(t, notifier.Observe(models.Party{ID: "p1", CreatedAt: base}))

	assert.Eventually(t, func() bool {
		return notifier.Active() == nil
	}, time.Second, 10*time.Millisecond)
}
