package models

import "time"

// Reaction is a fire-and-forget emoji event. It is consumed live and never
// replayed beyond a small backlog at subscribe time.
type Reaction struct {
	ID        int       `db:"id" json:"id"`
	PartyID   string    `db:"party_id" json:"party_id"`
	Label     string    `db:"label" json:"label"`
	Timestamp time.Time `db:"created_at" json:"timestamp"`
}

// ReactionEvent is broadcast through the reactions websocket.
type ReactionEvent struct {
	Type     string    `json:"type"`
	Reaction *Reaction `json:"reaction,omitempty"`
}
