package db

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect initializes the database connection and runs migrations.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS parties (
            id UUID PRIMARY KEY,
            host_id TEXT NOT NULL,
            host_name TEXT NOT NULL,
            host_photo TEXT NOT NULL DEFAULT '',
            media_id TEXT NOT NULL,
            media_type TEXT NOT NULL,
            media_title TEXT NOT NULL,
            media_poster TEXT NOT NULL DEFAULT '',
            is_playing BOOLEAN NOT NULL DEFAULT FALSE,
            current_time_s DOUBLE PRECISION NOT NULL DEFAULT 0,
            season INT NOT NULL DEFAULT 1,
            episode INT NOT NULL DEFAULT 1,
            last_updated TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            is_public BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		// Membership is a set over the full value tuple, not over uid alone.
		`CREATE TABLE IF NOT EXISTS party_members (
            party_id UUID NOT NULL REFERENCES parties(id) ON DELETE CASCADE,
            uid TEXT NOT NULL,
            name TEXT NOT NULL,
            photo TEXT NOT NULL DEFAULT '',
            PRIMARY KEY(party_id, uid, name, photo)
        );`,
		`CREATE TABLE IF NOT EXISTS party_messages (
            id SERIAL PRIMARY KEY,
            party_id UUID NOT NULL REFERENCES parties(id) ON DELETE CASCADE,
            user_id TEXT NOT NULL,
            user_name TEXT NOT NULL,
            content TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE TABLE IF NOT EXISTS party_reactions (
            id SERIAL PRIMARY KEY,
            party_id UUID NOT NULL REFERENCES parties(id) ON DELETE CASCADE,
            label TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`,
		`CREATE INDEX IF NOT EXISTS idx_parties_public ON parties (created_at DESC) WHERE is_public;`,
		`CREATE INDEX IF NOT EXISTS idx_party_messages_party ON party_messages (party_id, created_at);`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	log.Println("database migrations applied")
	return nil
}
