package services

import (
	"context"
	"math"
	"time"

	"github.com/astromatch/astromatch/internal/cache"
	"github.com/astromatch/astromatch/internal/database"
	"github.com/astromatch/astromatch/internal/errors"
	"github.com/astromatch/astromatch/internal/telemetry"
)

const statsTTL = 5 * time.Minute

// MatchService answers queries about established matches and ledger
// activity. It never mutates the ledger beyond read-repair of match
// flags that should already agree.
type MatchService struct {
	swipes   SwipeStore
	profiles ProfileStore
	cache    Cache
}

func NewMatchService(swipes SwipeStore, profiles ProfileStore, c Cache) *MatchService {
	return &MatchService{swipes: swipes, profiles: profiles, cache: c}
}

// GetMutualMatches returns the profiles the user is mutually matched
// with, most recent match first. Asymmetric match flags found on the
// way are healed and logged; they indicate a write that died between
// directions.
func (s *MatchService) GetMutualMatches(ctx context.Context, userID string) ([]*database.ProfileSnapshot, error) {
	s.repair(ctx, userID)

	ids, err := s.swipes.MutualMatchIDs(ctx, userID)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("load_matches", err)
	}

	profiles, err := s.profiles.GetMany(ctx, ids)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("load_match_profiles", err)
	}
	if profiles == nil {
		profiles = []*database.ProfileSnapshot{}
	}
	return profiles, nil
}

// GetLikesReceived returns the profiles of users who sent this user a
// positive swipe that has not been reciprocated yet.
func (s *MatchService) GetLikesReceived(ctx context.Context, userID string) ([]*database.ProfileSnapshot, error) {
	s.repair(ctx, userID)

	ids, err := s.swipes.PendingLikerIDs(ctx, userID)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("load_likes_received", err)
	}

	profiles, err := s.profiles.GetMany(ctx, ids)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("load_liker_profiles", err)
	}
	if profiles == nil {
		profiles = []*database.ProfileSnapshot{}
	}
	return profiles, nil
}

// GetStats aggregates the user's swipe activity. The match rate is
// matches per like sent, as a percentage rounded to two decimals; a
// user who never liked anyone has a rate of zero.
func (s *MatchService) GetStats(ctx context.Context, userID string) (*database.SwipeStats, error) {
	if s.cache != nil {
		var cached database.SwipeStats
		ok, err := s.cache.GetJSON(ctx, cache.StatsKey(userID), &cached)
		if err != nil {
			telemetry.GetContextualLogger(ctx).WithError(err).Warn("Stats cache read failed")
		} else if ok {
			return &cached, nil
		}
	}

	stats, err := s.swipes.Stats(ctx, userID)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("load_stats", err)
	}

	if stats.TotalLikes > 0 {
		rate := float64(stats.TotalMatches) / float64(stats.TotalLikes) * 100
		stats.MatchRate = math.Round(rate*100) / 100
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cache.StatsKey(userID), stats, statsTTL); err != nil {
			telemetry.GetContextualLogger(ctx).WithError(err).Warn("Stats cache write failed")
		}
	}

	return stats, nil
}

// AreMatched reports whether the two users are mutually matched.
func (s *MatchService) AreMatched(ctx context.Context, userA, userB string) (bool, error) {
	matched, err := s.swipes.AreMatched(ctx, userA, userB)
	if err != nil {
		return false, errors.NewStorageUnavailableError("check_match", err)
	}
	return matched, nil
}

// repair heals asymmetric match flags before a read. Failure to repair
// is not failure to read; the flags converge on a later pass.
func (s *MatchService) repair(ctx context.Context, userID string) {
	repaired, err := s.swipes.RepairMatchFlags(ctx, userID)
	if err != nil {
		telemetry.GetContextualLogger(ctx).WithError(err).Warn("Match flag repair failed")
		return
	}
	if repaired > 0 {
		telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
			"user_id":  userID,
			"repaired": repaired,
		}).Warn("Healed asymmetric match flags")
	}
}
