package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrProfileNotFound is returned when no profile exists for a user id.
var ErrProfileNotFound = errors.New("profile not found")

const profileColumns = `
	user_id, name, age, city, interests, hobbies,
	zodiac_sign, nakshatra, chinese_zodiac, is_complete,
	telegram_chat_id, created_at, updated_at
`

// ProfileRepo reads profile snapshots on behalf of the matching engine.
// The profile store is an external collaborator; the engine only ever
// reads from it. Create exists solely for the seeder and tests.
type ProfileRepo struct {
	db *DB
}

func NewProfileRepo(db *DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Get returns the snapshot for a single user.
func (r *ProfileRepo) Get(ctx context.Context, userID string) (*ProfileSnapshot, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`

	snapshot := &ProfileSnapshot{}
	err := scanProfile(r.db.QueryRowContext(ctx, query, userID), snapshot)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return snapshot, nil
}

// List returns up to limit snapshots excluding the given user, ordered
// ascending by user id so repeated calls over unchanged data are
// reproducible.
func (r *ProfileRepo) List(ctx context.Context, excludeUserID string, limit int) ([]*ProfileSnapshot, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE user_id <> $1
		ORDER BY user_id ASC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, excludeUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var snapshots []*ProfileSnapshot
	for rows.Next() {
		snapshot := &ProfileSnapshot{}
		if err := scanProfile(rows, snapshot); err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}

	return snapshots, nil
}

// GetMany returns snapshots for the given ids, preserving input order
// and silently skipping ids with no profile.
func (r *ProfileRepo) GetMany(ctx context.Context, userIDs []string) ([]*ProfileSnapshot, error) {
	snapshots := make([]*ProfileSnapshot, 0, len(userIDs))
	for _, id := range userIDs {
		snapshot, err := r.Get(ctx, id)
		if err == ErrProfileNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, nil
}

// Create inserts a profile. Used by the seeder and integration tests.
func (r *ProfileRepo) Create(ctx context.Context, p *ProfileSnapshot) error {
	query := `
		INSERT INTO profiles (
			user_id, name, age, city, interests, hobbies,
			zodiac_sign, nakshatra, chinese_zodiac, is_complete, telegram_chat_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.UserID, p.Name, p.Age, p.City, p.Interests, p.Hobbies,
		p.ZodiacSign, p.Nakshatra, p.ChineseZodiac, p.IsComplete, p.TelegramChatID,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner, p *ProfileSnapshot) error {
	return row.Scan(
		&p.UserID, &p.Name, &p.Age, &p.City, &p.Interests, &p.Hobbies,
		&p.ZodiacSign, &p.Nakshatra, &p.ChineseZodiac, &p.IsComplete,
		&p.TelegramChatID, &p.CreatedAt, &p.UpdatedAt,
	)
}
