package models

import "time"

// Media identifies the title a party is watching.
type Media struct {
	ID     string `json:"id"`
	Type   string `json:"type"` // "movie" or "tv"
	Title  string `json:"title"`
	Poster string `json:"poster"`
}

// PlaybackStatus is the host-authoritative playback state of a party.
type PlaybackStatus struct {
	IsPlaying   bool      `json:"is_playing"`
	CurrentTime float64   `json:"current_time"`
	Season      int       `json:"season"`
	Episode     int       `json:"episode"`
	LastUpdated time.Time `json:"last_updated"`
}

// Member is one entry of a party's member set. Membership is a set over the
// full (uid, name, photo) value, not over uid alone; two joins with a changed
// photo for the same uid yield two entries.
type Member struct {
	UID   string `db:"uid" json:"uid"`
	Name  string `db:"name" json:"name"`
	Photo string `db:"photo" json:"photo"`
}

// Party is one watch-party session and its shared state.
type Party struct {
	ID        string         `json:"id"`
	HostID    string         `json:"host_id"`
	HostName  string         `json:"host_name"`
	HostPhoto string         `json:"host_photo"`
	Media     Media          `json:"media"`
	Status    PlaybackStatus `json:"status"`
	IsPublic  bool           `json:"is_public"`
	Members   []Member       `json:"members"`
	CreatedAt time.Time      `json:"created_at"`
}

// PartyEvent is emitted over the session websocket. A "party_deleted" event is
// terminal: the connection is closed right after it is written.
type PartyEvent struct {
	Type  string `json:"type"`
	Party *Party `json:"party,omitempty"`
}

const (
	PartyEventSnapshot = "snapshot"
	PartyEventDeleted  = "party_deleted"
)
