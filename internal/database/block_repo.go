package database

import (
	"context"
	"fmt"
)

// BlockRepo is the postgres-backed moderation block list.
type BlockRepo struct {
	db *DB
}

func NewBlockRepo(db *DB) *BlockRepo {
	return &BlockRepo{db: db}
}

// Create records a block. Returns false when the block already existed.
func (r *BlockRepo) Create(ctx context.Context, blockerID, blockedID string) (bool, error) {
	query := `
		INSERT INTO blocks (blocker_id, blocked_id)
		VALUES ($1, $2)
		ON CONFLICT (blocker_id, blocked_id) DO NOTHING
	`

	res, err := r.db.ExecContext(ctx, query, blockerID, blockedID)
	if err != nil {
		return false, fmt.Errorf("failed to create block: %w", err)
	}

	inserted, err := res.RowsAffected()
	if err != nil {
		return true, nil
	}
	return inserted > 0, nil
}

// Delete removes a block. Returns false when no block existed.
func (r *BlockRepo) Delete(ctx context.Context, blockerID, blockedID string) (bool, error) {
	query := `DELETE FROM blocks WHERE blocker_id = $1 AND blocked_id = $2`

	res, err := r.db.ExecContext(ctx, query, blockerID, blockedID)
	if err != nil {
		return false, fmt.Errorf("failed to delete block: %w", err)
	}

	deleted, err := res.RowsAffected()
	if err != nil {
		return true, nil
	}
	return deleted > 0, nil
}

// IsBlocked reports whether a block exists in either direction.
func (r *BlockRepo) IsBlocked(ctx context.Context, userA, userB string) (bool, error) {
	query := `
		SELECT COUNT(*) FROM blocks
		WHERE (blocker_id = $1 AND blocked_id = $2)
		   OR (blocker_id = $2 AND blocked_id = $1)
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userA, userB).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check block state: %w", err)
	}
	return count > 0, nil
}

// BlockedEitherDirection returns every user in a block relation with
// userID, whichever side initiated it. Candidate generation excludes
// all of them.
func (r *BlockRepo) BlockedEitherDirection(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT blocked_id FROM blocks WHERE blocker_id = $1
		UNION
		SELECT blocker_id FROM blocks WHERE blocked_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocked users: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// BlockedBy returns the users blocked by userID, for the moderation API.
func (r *BlockRepo) BlockedBy(ctx context.Context, userID string) ([]string, error) {
	query := `SELECT blocked_id FROM blocks WHERE blocker_id = $1 ORDER BY blocked_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query block list: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}
