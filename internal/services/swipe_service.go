// Package services holds the matching engine's business logic: the
// swipe ledger, candidate ranking, match queries, and moderation. The
// services own all validation and error mapping; the stores underneath
// only know about rows and sentinels.
package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"

	"github.com/astromatch/astromatch/internal/cache"
	"github.com/astromatch/astromatch/internal/database"
	"github.com/astromatch/astromatch/internal/errors"
	"github.com/astromatch/astromatch/internal/monitoring"
	"github.com/astromatch/astromatch/internal/pairlock"
	"github.com/astromatch/astromatch/internal/telemetry"
)

// notifyTimeout bounds the detached notification send so a slow
// Telegram API cannot pile up goroutines.
const notifyTimeout = 10 * time.Second

// SwipeResult is what a recorded swipe produced.
type SwipeResult struct {
	Record *database.SwipeRecord `json:"record"`
	// IsNewMatch is true only on the swipe that promoted the pair.
	IsNewMatch bool `json:"is_new_match"`
	// MatchedProfile is the counterpart's snapshot, set only when
	// IsNewMatch is true.
	MatchedProfile *database.ProfileSnapshot `json:"matched_profile,omitempty"`
}

// SwipeService is the swipe ledger's front door. It validates, locks the
// pair, writes through the store, and fans out the side effects of a new
// match.
type SwipeService struct {
	swipes   SwipeStore
	profiles ProfileStore
	locks    *pairlock.Locker
	cache    Cache
	notifier MatchNotifier
	metrics  *monitoring.Metrics
}

// NewSwipeService wires a swipe service. cache, notifier, and metrics
// may be nil; the corresponding side effects are skipped.
func NewSwipeService(swipes SwipeStore, profiles ProfileStore, locks *pairlock.Locker, c Cache, notifier MatchNotifier, metrics *monitoring.Metrics) *SwipeService {
	return &SwipeService{
		swipes:   swipes,
		profiles: profiles,
		locks:    locks,
		cache:    c,
		notifier: notifier,
		metrics:  metrics,
	}
}

// RecordSwipe appends one swipe to the ledger. Exactly one of four
// things happens: the swipe is stored (possibly promoting a mutual
// match), or it is rejected as a self swipe, a repeat swipe, or an
// unknown user. Repeat swipes are rejected regardless of action; the
// first decision stands.
func (s *SwipeService) RecordSwipe(ctx context.Context, actorID, targetID string, action database.SwipeAction) (*SwipeResult, error) {
	log := telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"actor_id":  actorID,
		"target_id": targetID,
		"action":    string(action),
	})

	if !action.Valid() {
		return nil, errors.NewInvalidActionError(string(action))
	}
	if actorID == targetID {
		return nil, errors.NewSelfSwipeError(actorID)
	}

	if _, err := s.profiles.Get(ctx, actorID); err != nil {
		return nil, s.profileLookupError(actorID, err)
	}
	target, err := s.profiles.Get(ctx, targetID)
	if err != nil {
		return nil, s.profileLookupError(targetID, err)
	}

	// Serialize with any concurrent swipe on the same pair, in either
	// direction, so at most one of two crossing swipes sees the other
	// as the reverse record.
	unlock := s.locks.Lock(actorID, targetID)
	defer unlock()

	rec := &database.SwipeRecord{
		ID:       uuid.New().String(),
		ActorID:  actorID,
		TargetID: targetID,
		Action:   action,
		SwipedAt: time.Now().UTC(),
	}

	matched, err := s.swipes.Create(ctx, rec)
	if err != nil {
		switch {
		case stderrors.Is(err, database.ErrDuplicateSwipe):
			return nil, errors.NewAlreadySwipedError(actorID, targetID)
		case stderrors.Is(err, database.ErrSelfSwipe):
			return nil, errors.NewSelfSwipeError(actorID)
		default:
			return nil, errors.NewStorageUnavailableError("record_swipe", err)
		}
	}

	s.metrics.SwipeRecorded(ctx, string(action))
	s.invalidate(ctx, actorID, targetID)

	result := &SwipeResult{Record: rec, IsNewMatch: matched}
	if matched {
		s.metrics.MatchCreated(ctx)
		result.MatchedProfile = target
		log.WithField("matched_at", rec.MatchedAt).Info("Mutual match created")
		s.dispatchMatchNotification(ctx, actorID, target)
	}

	return result, nil
}

// Unmatch removes every ledger record between the two users, both
// directions, in one transaction. Calling it for a pair with no history
// succeeds; the operation is idempotent.
func (s *SwipeService) Unmatch(ctx context.Context, userID, otherID string) error {
	unlock := s.locks.Lock(userID, otherID)
	defer unlock()

	if err := s.swipes.DeletePair(ctx, userID, otherID); err != nil {
		return errors.NewStorageUnavailableError("unmatch", err)
	}

	s.invalidate(ctx, userID, otherID)

	telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"user_id":  userID,
		"other_id": otherID,
	}).Info("Pair unmatched")
	return nil
}

// OnBlock is the moderation hook: a block tears down the pair's ledger
// the same way an explicit unmatch does.
func (s *SwipeService) OnBlock(ctx context.Context, blockerID, blockedID string) error {
	return s.Unmatch(ctx, blockerID, blockedID)
}

func (s *SwipeService) profileLookupError(userID string, err error) error {
	if stderrors.Is(err, database.ErrProfileNotFound) {
		return errors.NewUserNotFoundError(userID)
	}
	return errors.NewStorageUnavailableError("load_profile", err)
}

// invalidate drops both users' cached candidate rankings and stats.
// A swipe changes what each of them should be shown next.
func (s *SwipeService) invalidate(ctx context.Context, userA, userB string) {
	if s.cache == nil {
		return
	}
	err := s.cache.Delete(ctx,
		cache.CandidatesKey(userA), cache.StatsKey(userA),
		cache.CandidatesKey(userB), cache.StatsKey(userB),
	)
	if err != nil {
		telemetry.GetContextualLogger(ctx).WithError(err).Warn("Cache invalidation failed")
	}
}

// dispatchMatchNotification tells both sides about the new match on a
// detached context. The swipe response never waits on it.
func (s *SwipeService) dispatchMatchNotification(ctx context.Context, actorID string, target *database.ProfileSnapshot) {
	if s.notifier == nil {
		return
	}

	correlationID := telemetry.GetCorrelationID(ctx)
	go func() {
		nctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if correlationID != "" {
			nctx = telemetry.WithCorrelationID(nctx, correlationID)
		}

		actor, err := s.profiles.Get(nctx, actorID)
		if err != nil {
			telemetry.GetContextualLogger(nctx).WithError(err).Warn("Skipping match notification, actor profile unavailable")
			return
		}
		s.notifier.NotifyMatch(nctx, actor, target)
	}()
}
