package services

import (
	"context"
	stderrors "errors"
	"sort"
	"time"

	"github.com/astromatch/astromatch/internal/cache"
	"github.com/astromatch/astromatch/internal/database"
	"github.com/astromatch/astromatch/internal/errors"
	"github.com/astromatch/astromatch/internal/monitoring"
	"github.com/astromatch/astromatch/internal/scoring"
	"github.com/astromatch/astromatch/internal/telemetry"
)

const (
	// candidatePoolSize caps how many profiles one ranking pass loads
	// and scores. Relevance over completeness: nobody pages past the
	// first hundred strangers.
	candidatePoolSize = 100

	// defaultCandidateLimit applies when the caller sends no limit.
	defaultCandidateLimit = 20

	candidatesTTL = 2 * time.Minute
)

// RankedCandidate is one scored entry in a user's candidate feed.
type RankedCandidate struct {
	Profile   *database.ProfileSnapshot `json:"profile"`
	Score     float64                   `json:"score"`
	Breakdown scoring.Breakdown         `json:"breakdown"`
}

// CandidateService assembles the ranked candidate feed: load a bounded
// pool, drop everyone the user has already decided on or is blocked
// with, score the rest, sort.
type CandidateService struct {
	profiles ProfileStore
	swipes   SwipeStore
	blocks   BlockStore
	cache    Cache
	metrics  *monitoring.Metrics
}

func NewCandidateService(profiles ProfileStore, swipes SwipeStore, blocks BlockStore, c Cache, metrics *monitoring.Metrics) *CandidateService {
	return &CandidateService{
		profiles: profiles,
		swipes:   swipes,
		blocks:   blocks,
		cache:    c,
		metrics:  metrics,
	}
}

// GetCandidates returns up to limit candidates for the user, best score
// first, ties broken by ascending user id so the ordering is total and
// reproducible. An unknown user gets an empty feed, not an error.
func (s *CandidateService) GetCandidates(ctx context.Context, userID string, limit int) ([]RankedCandidate, error) {
	if limit <= 0 {
		limit = defaultCandidateLimit
	}

	if cached, ok := s.cachedRanking(ctx, userID); ok {
		s.metrics.CandidateRequest(ctx, true)
		return truncate(cached, limit), nil
	}
	s.metrics.CandidateRequest(ctx, false)

	self, err := s.profiles.Get(ctx, userID)
	if stderrors.Is(err, database.ErrProfileNotFound) {
		return []RankedCandidate{}, nil
	}
	if err != nil {
		return nil, errors.NewStorageUnavailableError("load_profile", err)
	}

	excluded, err := s.exclusions(ctx, userID)
	if err != nil {
		return nil, err
	}

	pool, err := s.profiles.List(ctx, userID, candidatePoolSize)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("list_candidates", err)
	}

	ranked := make([]RankedCandidate, 0, len(pool))
	for _, candidate := range pool {
		if excluded[candidate.UserID] {
			continue
		}
		score, breakdown := scoring.Score(self, candidate)
		ranked = append(ranked, RankedCandidate{
			Profile:   candidate,
			Score:     score,
			Breakdown: breakdown,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Profile.UserID < ranked[j].Profile.UserID
	})

	s.storeRanking(ctx, userID, ranked)

	return truncate(ranked, limit), nil
}

// exclusions collects every user id the feed must never contain: the
// already-swiped and anyone in a block relation, either direction.
func (s *CandidateService) exclusions(ctx context.Context, userID string) (map[string]bool, error) {
	swiped, err := s.swipes.SwipedTargetIDs(ctx, userID)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("load_swiped", err)
	}
	blocked, err := s.blocks.BlockedEitherDirection(ctx, userID)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("load_blocks", err)
	}

	excluded := make(map[string]bool, len(swiped)+len(blocked))
	for _, id := range swiped {
		excluded[id] = true
	}
	for _, id := range blocked {
		excluded[id] = true
	}
	return excluded, nil
}

// cachedRanking loads the full cached ranking for the user. Cache
// trouble is logged and treated as a miss.
func (s *CandidateService) cachedRanking(ctx context.Context, userID string) ([]RankedCandidate, bool) {
	if s.cache == nil {
		return nil, false
	}

	var ranked []RankedCandidate
	ok, err := s.cache.GetJSON(ctx, cache.CandidatesKey(userID), &ranked)
	if err != nil {
		telemetry.GetContextualLogger(ctx).WithError(err).Warn("Candidate cache read failed")
		return nil, false
	}
	return ranked, ok
}

// storeRanking caches the full ranking so later requests with different
// limits hit the same entry.
func (s *CandidateService) storeRanking(ctx context.Context, userID string, ranked []RankedCandidate) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, cache.CandidatesKey(userID), ranked, candidatesTTL); err != nil {
		telemetry.GetContextualLogger(ctx).WithError(err).Warn("Candidate cache write failed")
	}
}

func truncate(ranked []RankedCandidate, limit int) []RankedCandidate {
	if len(ranked) > limit {
		return ranked[:limit]
	}
	return ranked
}
