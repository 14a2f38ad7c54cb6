package models

import "time"

// ChatMessage is an immutable party chat record, ordered by timestamp.
type ChatMessage struct {
	ID        int       `db:"id" json:"id"`
	PartyID   string    `db:"party_id" json:"party_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	UserName  string    `db:"user_name" json:"user_name"`
	Text      string    `db:"content" json:"text"`
	Timestamp time.Time `db:"created_at" json:"timestamp"`
}

// ChatEvent is broadcast through the chat websocket.
type ChatEvent struct {
	Type    string       `json:"type"`
	Message *ChatMessage `json:"message,omitempty"`
}
