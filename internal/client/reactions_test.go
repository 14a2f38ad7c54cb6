package client

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"party-service/internal/models"
)

func TestOverlayKeepsInsertionOrder(t *testing.T) {
	overlay, err := NewReactionOverlay(DefaultOverlaySize, time.Minute)
	require.NoError(t, err)

	overlay.Add(models.Reaction{ID: 1, Label: "😂"})
	overlay.Add(models.Reaction{ID: 2, Label: "🔥"})
	overlay.Add(models.Reaction{ID: 3, Label: "👏"})

	visible := overlay.Visible()
	require.Len(t, visible, 3)
	assert.Equal(t, "😂", visible[0].Label)
	assert.Equal(t, "👏", visible[2].Label)
}

func TestOverlayEvictsOldestWhenFull(t *testing.T) {
	overlay, err := NewReactionOverlay(3, time.Minute)
	require.NoError(t, err)

	for i := 1; i <= 5; i++ {
		overlay.Add(models.Reaction{ID: i, Label: fmt.Sprintf("r%d", i)})
	}

	visible := overlay.Visible()
	require.Len(t, visible, 3)
	assert.Equal(t, "r3", visible[0].Label)
	assert.Equal(t, "r5", visible[2].Label)
}

func TestOverlayEntriesExpire(t *testing.T) {
	overlay, err := NewReactionOverlay(DefaultOverlaySize, 30*time.Millisecond)
	require.NoError(t, err)

	overlay.Add(models.Reaction{ID: 1, Label: "🔥"})
	require.Equal(t, 1, overlay.Len())

	assert.Eventually(t, func() bool {
		return overlay.Len() == 0
	}, time.Second, 10*time.Millisecond)
}
