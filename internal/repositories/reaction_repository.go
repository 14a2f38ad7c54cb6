package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"party-service/internal/models"
)

// ReactionRepository defines interactions for party reactions.
type ReactionRepository interface {
	Append(ctx context.Context, partyID string, label string) (models.Reaction, error)
	ListRecent(ctx context.Context, partyID string, limit int) ([]models.Reaction, error)
}

// ReactionRepo is a sqlx-backed repository.
type ReactionRepo struct {
	db *sqlx.DB
}

// NewReactionRepo constructs ReactionRepo.
func NewReactionRepo(db *sqlx.DB) *ReactionRepo {
	return &ReactionRepo{db: db}
}

// Append stores a reaction with a server-assigned timestamp.
func (r *ReactionRepo) Append(ctx context.Context, partyID string, label string) (models.Reaction, error) {
	var reaction models.Reaction
	err := r.db.QueryRowxContext(ctx, `INSERT INTO party_reactions (party_id, label)
        VALUES ($1, $2) RETURNING id, party_id, label, created_at`, partyID, label).
		Scan(&reaction.ID, &reaction.PartyID, &reaction.Label, &reaction.Timestamp)
	return reaction, err
}

// ListRecent returns at most limit newest reactions in ascending order. Only a
// small backlog is ever replayed to new subscribers.
func (r *ReactionRepo) ListRecent(ctx context.Context, partyID string, limit int) ([]models.Reaction, error) {
	var reactions []models.Reaction
	err := r.db.SelectContext(ctx, &reactions, `SELECT id, party_id, label, created_at FROM (
            SELECT id, party_id, label, created_at FROM party_reactions
            WHERE party_id=$1 ORDER BY id DESC LIMIT $2
        ) recent ORDER BY id ASC`, partyID, limit)
	return reactions, err
}
