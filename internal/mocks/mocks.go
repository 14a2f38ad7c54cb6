package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"party-service/internal/auth"
	"party-service/internal/models"
	"party-service/internal/repositories"
)

type PartyRepositoryMock struct {
	mock.Mock
}

func (m *PartyRepositoryMock) Create(ctx context.Context, party models.Party) (models.Party, error) {
	args := m.Called(ctx, party)
	var created models.Party
	if val := args.Get(0); val != nil {
		created = val.(models.Party)
	}
	return created, args.Error(1)
}

func (m *PartyRepositoryMock) Get(ctx context.Context, partyID string) (models.Party, error) {
	args := m.Called(ctx, partyID)
	var party models.Party
	if val := args.Get(0); val != nil {
		party = val.(models.Party)
	}
	return party, args.Error(1)
}

func (m *PartyRepositoryMock) ListPublic(ctx context.Context) ([]models.Party, error) {
	args := m.Called(ctx)
	var parties []models.Party
	if val := args.Get(0); val != nil {
		parties = val.([]models.Party)
	}
	return parties, args.Error(1)
}

func (m *PartyRepositoryMock) Delete(ctx context.Context, partyID string) error {
	args := m.Called(ctx, partyID)
	return args.Error(0)
}

func (m *PartyRepositoryMock) UpdateStatus(ctx context.Context, partyID string, isPlaying bool, currentTime float64) error {
	args := m.Called(ctx, partyID, isPlaying, currentTime)
	return args.Error(0)
}

func (m *PartyRepositoryMock) UpdateEpisode(ctx context.Context, partyID string, season, episode int) error {
	args := m.Called(ctx, partyID, season, episode)
	return args.Error(0)
}

func (m *PartyRepositoryMock) AddMember(ctx context.Context, partyID string, member models.Member) error {
	args := m.Called(ctx, partyID, member)
	return args.Error(0)
}

func (m *PartyRepositoryMock) RemoveMember(ctx context.Context, partyID string, member models.Member) error {
	args := m.Called(ctx, partyID, member)
	return args.Error(0)
}

func (m *PartyRepositoryMock) MemberCount(ctx context.Context, partyID string) (int, error) {
	args := m.Called(ctx, partyID)
	return args.Int(0), args.Error(1)
}

func (m *PartyRepositoryMock) HasMember(ctx context.Context, partyID string, uid string) (bool, error) {
	args := m.Called(ctx, partyID, uid)
	return args.Bool(0), args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Append(ctx context.Context, partyID string, userID string, userName string, text string) (models.ChatMessage, error) {
	args := m.Called(ctx, partyID, userID, userName, text)
	var msg models.ChatMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.ChatMessage)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) List(ctx context.Context, partyID string) ([]models.ChatMessage, error) {
	args := m.Called(ctx, partyID)
	var msgs []models.ChatMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.ChatMessage)
	}
	return msgs, args.Error(1)
}

type ReactionRepositoryMock struct {
	mock.Mock
}

func (m *ReactionRepositoryMock) Append(ctx context.Context, partyID string, label string) (models.Reaction, error) {
	args := m.Called(ctx, partyID, label)
	var reaction models.Reaction
	if val := args.Get(0); val != nil {
		reaction = val.(models.Reaction)
	}
	return reaction, args.Error(1)
}

func (m *ReactionRepositoryMock) ListRecent(ctx context.Context, partyID string, limit int) ([]models.Reaction, error) {
	args := m.Called(ctx, partyID, limit)
	var reactions []models.Reaction
	if val := args.Get(0); val != nil {
		reactions = val.([]models.Reaction)
	}
	return reactions, args.Error(1)
}

type VerifierMock struct {
	mock.Mock
}

func (m *VerifierMock) Verify(token string) (models.Identity, error) {
	args := m.Called(token)
	var identity models.Identity
	if val := args.Get(0); val != nil {
		identity = val.(models.Identity)
	}
	return identity, args.Error(1)
}

var _ repositories.PartyRepository = (*PartyRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.ReactionRepository = (*ReactionRepositoryMock)(nil)
var _ auth.Verifier = (*VerifierMock)(nil)
