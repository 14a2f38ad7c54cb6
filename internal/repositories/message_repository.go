package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"party-service/internal/models"
)

// MessageRepository defines interactions for party chat messages.
type MessageRepository interface {
	Append(ctx context.Context, partyID string, userID string, userName string, text string) (models.ChatMessage, error)
	List(ctx context.Context, partyID string) ([]models.ChatMessage, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// Append stores a chat message with a server-assigned timestamp.
func (r *MessageRepo) Append(ctx context.Context, partyID string, userID string, userName string, text string) (models.ChatMessage, error) {
	var msg models.ChatMessage
	err := r.db.QueryRowxContext(ctx, `INSERT INTO party_messages (party_id, user_id, user_name, content)
        VALUES ($1, $2, $3, $4) RETURNING id, party_id, user_id, user_name, content, created_at`,
		partyID, userID, userName, text).
		Scan(&msg.ID, &msg.PartyID, &msg.UserID, &msg.UserName, &msg.Text, &msg.Timestamp)
	return msg, err
}

// List returns the full chat history in ascending timestamp order.
func (r *MessageRepo) List(ctx context.Context, partyID string) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := r.db.SelectContext(ctx, &msgs, `SELECT id, party_id, user_id, user_name, content, created_at
        FROM party_messages WHERE party_id=$1 ORDER BY created_at ASC, id ASC`, partyID)
	return msgs, err
}
