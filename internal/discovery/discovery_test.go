package discovery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"party-service/internal/mocks"
	"party-service/internal/models"
)

func TestListPublicCachesResult(t *testing.T) {
	repo := new(mocks.PartyRepositoryMock)
	service := NewService(repo, time.Minute)

	listing := []models.Party{{ID: "p1", IsPublic: true}}
	repo.On("ListPublic", mock.Anything).Return(listing, nil).Once()

	first, err := service.ListPublic(context.Background())
	require.NoError(t, err)
	second, err := service.ListPublic(context.Background())
	require.NoError(t, err)

	assert.Equal(t, listing, first)
	assert.Equal(t, listing, second)
	repo.AssertExpectations(t)
}

func TestListPublicPropagatesError(t *testing.T) {
	repo := new(mocks.PartyRepositoryMock)
	service := NewService(repo, time.Minute)

	repo.On("ListPublic", mock.Anything).Return([]models.Party(nil), assert.AnError).Once()

	_, err := service.ListPublic(context.Background())
	require.ErrorIs(t, err, assert.AnError)
}

func TestIsNewRespectsWindow(t *testing.T) {
	repo := new(mocks.PartyRepositoryMock)
	service := NewService(repo, time.Minute)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return base }

	fresh := models.Party{ID: "fresh", CreatedAt: base.Add(-10 * time.Second)}
	boundary := models.Party{ID: "boundary", CreatedAt: base.Add(-NewPartyWindow)}
	old := models.Party{ID: "old", CreatedAt: base.Add(-5 * time.Minute)}

	assert.True(t, service.IsNew(fresh))
	assert.False(t, service.IsNew(boundary))
	assert.False(t, service.IsNew(old))
}

func TestNewlyStartedFiltersListing(t *testing.T) {
	repo := new(mocks.PartyRepositoryMock)
	service := NewService(repo, time.Minute)

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return base }

	parties := []models.Party{
		{ID: "fresh", CreatedAt: base.Add(-5 * time.Second)},
		{ID: "old", CreatedAt: base.Add(-2 * time.Minute)},
		{ID: "newer", CreatedAt: base.Add(-29 * time.Second)},
	}

	fresh := service.NewlyStarted(parties)
	require.Len(t, fresh, 2)
	assert.Equal(t, "fresh", fresh[0].ID)
	assert.Equal(t, "newer", fresh[1].ID)
}
