package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Sentinel errors the service layer maps onto engine error kinds.
var (
	ErrDuplicateSwipe = errors.New("swipe already recorded for this pair")
	ErrSelfSwipe      = errors.New("actor and target are the same user")
	ErrSwipeNotFound  = errors.New("swipe not found")
)

const uniqueViolation = "23505"
const checkViolation = "23514"

// SwipeRepo is the postgres-backed swipe ledger. All multi-row writes
// run inside a single transaction so no observer can see one direction
// of a pair updated without the other.
type SwipeRepo struct {
	db *DB
}

func NewSwipeRepo(db *DB) *SwipeRepo {
	return &SwipeRepo{db: db}
}

// Create appends a swipe record and, when the action is positive,
// atomically promotes both directions to a mutual match if the reverse
// record exists with a positive action. The reverse row is locked for
// the duration of the transaction so concurrent swipes on the same pair
// serialize at the storage layer as well.
func (r *SwipeRepo) Create(ctx context.Context, rec *SwipeRecord) (matched bool, err error) {
	err = r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		insert := `
			INSERT INTO swipes (id, actor_id, target_id, action, swiped_at, is_match)
			VALUES ($1, $2, $3, $4, $5, FALSE)
		`
		if _, err := tx.ExecContext(ctx, insert,
			rec.ID, rec.ActorID, rec.TargetID, rec.Action, rec.SwipedAt,
		); err != nil {
			return translateWriteError(err)
		}

		if !rec.Action.Positive() {
			return nil
		}

		var reverseAction SwipeAction
		reverseQuery := `
			SELECT action FROM swipes
			WHERE actor_id = $1 AND target_id = $2
			FOR UPDATE
		`
		err := tx.QueryRowContext(ctx, reverseQuery, rec.TargetID, rec.ActorID).Scan(&reverseAction)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to check reverse swipe: %w", err)
		}

		if !reverseAction.Positive() {
			return nil
		}

		now := time.Now().UTC()
		promote := `
			UPDATE swipes SET is_match = TRUE, matched_at = $3
			WHERE (actor_id = $1 AND target_id = $2)
			   OR (actor_id = $2 AND target_id = $1)
		`
		if _, err := tx.ExecContext(ctx, promote, rec.ActorID, rec.TargetID, now); err != nil {
			return fmt.Errorf("failed to promote mutual match: %w", err)
		}

		rec.IsMatch = true
		rec.MatchedAt = &now
		matched = true
		return nil
	})

	return matched, err
}

// Get returns the record for the ordered (actor, target) pair.
func (r *SwipeRepo) Get(ctx context.Context, actorID, targetID string) (*SwipeRecord, error) {
	query := `
		SELECT id, actor_id, target_id, action, swiped_at, is_match, matched_at
		FROM swipes
		WHERE actor_id = $1 AND target_id = $2
	`

	rec := &SwipeRecord{}
	err := r.db.QueryRowContext(ctx, query, actorID, targetID).Scan(
		&rec.ID, &rec.ActorID, &rec.TargetID, &rec.Action,
		&rec.SwipedAt, &rec.IsMatch, &rec.MatchedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrSwipeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get swipe: %w", err)
	}

	return rec, nil
}

// SwipedTargetIDs returns every target the actor has already acted on,
// regardless of action or outcome.
func (r *SwipeRepo) SwipedTargetIDs(ctx context.Context, actorID string) ([]string, error) {
	query := `SELECT target_id FROM swipes WHERE actor_id = $1`
	return r.collectIDs(ctx, query, actorID)
}

// MutualMatchIDs returns the targets the user is mutually matched with,
// most recent match first.
func (r *SwipeRepo) MutualMatchIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT target_id FROM swipes
		WHERE actor_id = $1 AND is_match = TRUE
		ORDER BY matched_at DESC
	`
	return r.collectIDs(ctx, query, userID)
}

// PendingLikerIDs returns users who sent a positive swipe toward userID
// that has not yet been reciprocated, most recent first.
func (r *SwipeRepo) PendingLikerIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT actor_id FROM swipes
		WHERE target_id = $1
		  AND action IN ($2, $3)
		  AND is_match = FALSE
		ORDER BY swiped_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID, ActionLike, ActionSuperLike)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending likers: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

// Stats aggregates the user's ledger activity in a single round trip.
func (r *SwipeRepo) Stats(ctx context.Context, userID string) (*SwipeStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE actor_id = $1 AND is_match),
			COUNT(*) FILTER (WHERE actor_id = $1 AND action = $2),
			COUNT(*) FILTER (WHERE actor_id = $1 AND action = $3),
			COUNT(*) FILTER (WHERE target_id = $1 AND action = $2),
			COUNT(*) FILTER (WHERE actor_id = $1 AND action = $4)
		FROM swipes
		WHERE actor_id = $1 OR target_id = $1
	`

	stats := &SwipeStats{}
	err := r.db.QueryRowContext(ctx, query, userID, ActionLike, ActionPass, ActionSuperLike).Scan(
		&stats.TotalMatches,
		&stats.TotalLikes,
		&stats.TotalPasses,
		&stats.LikesReceived,
		&stats.SuperLikes,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate swipe stats: %w", err)
	}

	return stats, nil
}

// DeletePair removes both directions of any ledger records between the
// two users in one transaction. Missing records are not an error;
// unmatch is unconditionally idempotent.
func (r *SwipeRepo) DeletePair(ctx context.Context, userA, userB string) error {
	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			DELETE FROM swipes
			WHERE (actor_id = $1 AND target_id = $2)
			   OR (actor_id = $2 AND target_id = $1)
		`
		if _, err := tx.ExecContext(ctx, query, userA, userB); err != nil {
			return fmt.Errorf("failed to delete swipe pair: %w", err)
		}
		return nil
	})
}

// AreMatched reports whether the pair is mutually matched.
func (r *SwipeRepo) AreMatched(ctx context.Context, userA, userB string) (bool, error) {
	query := `
		SELECT COUNT(*) FROM swipes
		WHERE actor_id = $1 AND target_id = $2 AND is_match = TRUE
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userA, userB).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check match state: %w", err)
	}
	return count > 0, nil
}

// RepairMatchFlags heals asymmetric is_match states involving the user:
// if one side of a reciprocal positive pair is flagged and the other is
// not, the unflagged side is brought up to date. Returns the number of
// repaired rows so callers can log the anomaly.
func (r *SwipeRepo) RepairMatchFlags(ctx context.Context, userID string) (int64, error) {
	query := `
		UPDATE swipes s
		SET is_match = TRUE, matched_at = COALESCE(r.matched_at, now())
		FROM swipes r
		WHERE r.actor_id = s.target_id
		  AND r.target_id = s.actor_id
		  AND r.is_match = TRUE
		  AND s.is_match = FALSE
		  AND s.action IN ($2, $3)
		  AND r.action IN ($2, $3)
		  AND (s.actor_id = $1 OR s.target_id = $1)
	`

	res, err := r.db.ExecContext(ctx, query, userID, ActionLike, ActionSuperLike)
	if err != nil {
		return 0, fmt.Errorf("failed to repair match flags: %w", err)
	}

	repaired, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return repaired, nil
}

func (r *SwipeRepo) collectIDs(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query swipe ids: %w", err)
	}
	defer rows.Close()

	return scanIDs(rows)
}

func scanIDs(rows *sql.Rows) ([]string, error) {
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ids: %w", err)
	}
	return ids, nil
}

// translateWriteError maps postgres constraint violations onto the
// sentinels the service layer understands.
func translateWriteError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case uniqueViolation:
			return ErrDuplicateSwipe
		case checkViolation:
			return ErrSelfSwipe
		}
	}
	return fmt.Errorf("failed to insert swipe: %w", err)
}
