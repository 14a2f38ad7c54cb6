package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"party-service/internal/models"
)

var ErrPartyNotFound = errors.New("party not found")

// PartyRepository abstracts party persistence.
type PartyRepository interface {
	Create(ctx context.Context, party models.Party) (models.Party, error)
	Get(ctx context.Context, partyID string) (models.Party, error)
	ListPublic(ctx context.Context) ([]models.Party, error)
	Delete(ctx context.Context, partyID string) error
	UpdateStatus(ctx context.Context, partyID string, isPlaying bool, currentTime float64) error
	UpdateEpisode(ctx context.Context, partyID string, season, episode int) error
	AddMember(ctx context.Context, partyID string, member models.Member) error
	RemoveMember(ctx context.Context, partyID string, member models.Member) error
	MemberCount(ctx context.Context, partyID string) (int, error)
	HasMember(ctx context.Context, partyID string, uid string) (bool, error)
}

// PartyRepo is a sqlx implementation of PartyRepository.
type PartyRepo struct {
	db *sqlx.DB
}

// NewPartyRepo constructs a PartyRepo.
func NewPartyRepo(db *sqlx.DB) *PartyRepo {
	return &PartyRepo{db: db}
}

const partyColumns = `id, host_id, host_name, host_photo, media_id, media_type, media_title, media_poster,
    is_playing, current_time_s, season, episode, last_updated, is_public, created_at`

func scanParty(row interface {
	Scan(dest ...interface{}) error
}) (models.Party, error) {
	var p models.Party
	err := row.Scan(&p.ID, &p.HostID, &p.HostName, &p.HostPhoto,
		&p.Media.ID, &p.Media.Type, &p.Media.Title, &p.Media.Poster,
		&p.Status.IsPlaying, &p.Status.CurrentTime, &p.Status.Season, &p.Status.Episode,
		&p.Status.LastUpdated, &p.IsPublic, &p.CreatedAt)
	return p, err
}

// Create inserts a party with a store-assigned id and the host as its single member.
func (r *PartyRepo) Create(ctx context.Context, party models.Party) (models.Party, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Party{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	partyID := uuid.NewString()
	row := tx.QueryRowxContext(ctx, `INSERT INTO parties
        (id, host_id, host_name, host_photo, media_id, media_type, media_title, media_poster,
         is_playing, current_time_s, season, episode, is_public)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING `+partyColumns,
		partyID, party.HostID, party.HostName, party.HostPhoto,
		party.Media.ID, party.Media.Type, party.Media.Title, party.Media.Poster,
		party.Status.IsPlaying, party.Status.CurrentTime, party.Status.Season, party.Status.Episode,
		party.IsPublic)

	var created models.Party
	if created, err = scanParty(row); err != nil {
		return models.Party{}, err
	}

	host := models.Member{UID: party.HostID, Name: party.HostName, Photo: party.HostPhoto}
	if _, err = tx.ExecContext(ctx, `INSERT INTO party_members (party_id, uid, name, photo) VALUES ($1, $2, $3, $4)`,
		created.ID, host.UID, host.Name, host.Photo); err != nil {
		return models.Party{}, err
	}

	if err = tx.Commit(); err != nil {
		return models.Party{}, err
	}
	created.Members = []models.Member{host}
	return created, nil
}

// Get fetches a party and its member set.
func (r *PartyRepo) Get(ctx context.Context, partyID string) (models.Party, error) {
	row := r.db.QueryRowxContext(ctx, `SELECT `+partyColumns+` FROM parties WHERE id=$1`, partyID)
	party, err := scanParty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Party{}, ErrPartyNotFound
	}
	if err != nil {
		return models.Party{}, err
	}

	if err := r.db.SelectContext(ctx, &party.Members,
		`SELECT uid, name, photo FROM party_members WHERE party_id=$1 ORDER BY uid, name, photo`, partyID); err != nil {
		return models.Party{}, err
	}
	return party, nil
}

// ListPublic returns public parties, newest first.
func (r *PartyRepo) ListPublic(ctx context.Context) ([]models.Party, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT `+partyColumns+` FROM parties WHERE is_public ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parties []models.Party
	for rows.Next() {
		party, err := scanParty(rows)
		if err != nil {
			return nil, err
		}
		parties = append(parties, party)
	}
	return parties, rows.Err()
}

// Delete removes the party; members, messages and reactions cascade.
func (r *PartyRepo) Delete(ctx context.Context, partyID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM parties WHERE id=$1`, partyID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrPartyNotFound
	}
	return nil
}

// UpdateStatus writes the play/pause/time fields in one atomic row update.
func (r *PartyRepo) UpdateStatus(ctx context.Context, partyID string, isPlaying bool, currentTime float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE parties SET is_playing=$2, current_time_s=$3, last_updated=NOW() WHERE id=$1`,
		partyID, isPlaying, currentTime)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrPartyNotFound
	}
	return nil
}

// UpdateEpisode writes the season/episode fields in one atomic row update.
func (r *PartyRepo) UpdateEpisode(ctx context.Context, partyID string, season, episode int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE parties SET season=$2, episode=$3, last_updated=NOW() WHERE id=$1`,
		partyID, season, episode)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrPartyNotFound
	}
	return nil
}

// AddMember performs a set-union insert; inserting an identical tuple is a no-op.
func (r *PartyRepo) AddMember(ctx context.Context, partyID string, member models.Member) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO party_members (party_id, uid, name, photo)
        VALUES ($1, $2, $3, $4) ON CONFLICT DO NOTHING`,
		partyID, member.UID, member.Name, member.Photo)
	return err
}

// RemoveMember deletes the exact matching member tuple. A tuple that drifted
// (e.g. changed photo) since join is not matched and stays behind.
func (r *PartyRepo) RemoveMember(ctx context.Context, partyID string, member models.Member) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM party_members WHERE party_id=$1 AND uid=$2 AND name=$3 AND photo=$4`,
		partyID, member.UID, member.Name, member.Photo)
	return err
}

// MemberCount returns the number of member entries in the party.
func (r *PartyRepo) MemberCount(ctx context.Context, partyID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM party_members WHERE party_id=$1`, partyID)
	return count, err
}

// HasMember checks membership by uid alone; used for authorization, not removal.
func (r *PartyRepo) HasMember(ctx context.Context, partyID string, uid string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM party_members WHERE party_id=$1 AND uid=$2)`, partyID, uid)
	return exists, err
}
