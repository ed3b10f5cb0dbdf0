package services

import (
	"context"
	"time"

	"github.com/astromatch/astromatch/internal/database"
)

// SwipeStore is the durable swipe ledger. The postgres implementation
// lives in internal/database; tests substitute an in-memory fake.
type SwipeStore interface {
	Create(ctx context.Context, rec *database.SwipeRecord) (matched bool, err error)
	Get(ctx context.Context, actorID, targetID string) (*database.SwipeRecord, error)
	SwipedTargetIDs(ctx context.Context, actorID string) ([]string, error)
	MutualMatchIDs(ctx context.Context, userID string) ([]string, error)
	PendingLikerIDs(ctx context.Context, userID string) ([]string, error)
	Stats(ctx context.Context, userID string) (*database.SwipeStats, error)
	DeletePair(ctx context.Context, userA, userB string) error
	AreMatched(ctx context.Context, userA, userB string) (bool, error)
	RepairMatchFlags(ctx context.Context, userID string) (int64, error)
}

// ProfileStore supplies read-only profile snapshots. It belongs to the
// external profile collaborator; the engine never writes through it.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*database.ProfileSnapshot, error)
	GetMany(ctx context.Context, userIDs []string) ([]*database.ProfileSnapshot, error)
	List(ctx context.Context, excludeUserID string, limit int) ([]*database.ProfileSnapshot, error)
}

// BlockStore supplies the moderation block list.
type BlockStore interface {
	Create(ctx context.Context, blockerID, blockedID string) (bool, error)
	Delete(ctx context.Context, blockerID, blockedID string) (bool, error)
	IsBlocked(ctx context.Context, userA, userB string) (bool, error)
	BlockedEitherDirection(ctx context.Context, userID string) ([]string, error)
	BlockedBy(ctx context.Context, userID string) ([]string, error)
}

// Cache is the narrow slice of the Redis service the engine needs.
// A nil Cache disables caching without changing behavior.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// MatchNotifier is told about new mutual matches. Notification is
// fire-and-forget; it must never fail or delay a swipe.
type MatchNotifier interface {
	NotifyMatch(ctx context.Context, a, b *database.ProfileSnapshot)
}

// Compile-time checks that the postgres repos satisfy the store
// contracts.
var (
	_ SwipeStore   = (*database.SwipeRepo)(nil)
	_ ProfileStore = (*database.ProfileRepo)(nil)
	_ BlockStore   = (*database.BlockRepo)(nil)
)
