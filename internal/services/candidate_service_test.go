package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astromatch/astromatch/internal/database"
	"github.com/astromatch/astromatch/internal/pairlock"
)

func candidateFixture() (*fakeProfileStore, *fakeSwipeStore, *fakeBlockStore) {
	profiles := newFakeProfileStore(
		&database.ProfileSnapshot{
			UserID:    "alice",
			Name:      "Alice",
			Age:       28,
			City:      "Bengaluru",
			Interests: database.StringList{"Technology", "Art"},
			Hobbies:   database.StringList{"Reading"},
		},
		&database.ProfileSnapshot{
			UserID:    "bob",
			Name:      "Bob",
			Age:       30,
			City:      "Bengaluru",
			Interests: database.StringList{"Technology"},
			Hobbies:   database.StringList{"Reading"},
		},
		&database.ProfileSnapshot{
			UserID: "carol",
			Name:   "Carol",
			Age:    52,
			City:   "Delhi",
		},
		&database.ProfileSnapshot{
			UserID:    "dave",
			Name:      "Dave",
			Age:       29,
			City:      "Bengaluru",
			Interests: database.StringList{"Technology", "Art"},
			Hobbies:   database.StringList{"Reading"},
		},
	)
	return profiles, newFakeSwipeStore(), newFakeBlockStore()
}

func TestGetCandidates_SortedByScoreDescending(t *testing.T) {
	profiles, swipes, blocks := candidateFixture()
	svc := NewCandidateService(profiles, swipes, blocks, nil, nil)

	ranked, err := svc.GetCandidates(context.Background(), "alice", 10)

	require.NoError(t, err)
	require.Len(t, ranked, 3)
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Score, ranked[i].Score)
	}
	// Dave matches Alice on everything Bob does plus a second interest.
	assert.Equal(t, "dave", ranked[0].Profile.UserID)
	assert.Equal(t, "carol", ranked[len(ranked)-1].Profile.UserID)
}

func TestGetCandidates_TiesBreakByAscendingUserID(t *testing.T) {
	// Two candidates with identical profiles score identically.
	profiles := newFakeProfileStore(
		&database.ProfileSnapshot{UserID: "self", Age: 30, City: "Pune"},
		&database.ProfileSnapshot{UserID: "zed", Age: 30, City: "Pune"},
		&database.ProfileSnapshot{UserID: "amy", Age: 30, City: "Pune"},
	)
	svc := NewCandidateService(profiles, newFakeSwipeStore(), newFakeBlockStore(), nil, nil)

	ranked, err := svc.GetCandidates(context.Background(), "self", 10)

	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, ranked[0].Score, ranked[1].Score)
	assert.Equal(t, "amy", ranked[0].Profile.UserID)
	assert.Equal(t, "zed", ranked[1].Profile.UserID)
}

func TestGetCandidates_ExcludesSwipedAndBlocked(t *testing.T) {
	profiles, swipes, blocks := candidateFixture()
	ctx := context.Background()

	swipeSvc := NewSwipeService(swipes, profiles, pairlock.New(), nil, nil, nil)
	_, err := swipeSvc.RecordSwipe(ctx, "alice", "bob", database.ActionPass)
	require.NoError(t, err)

	_, err = blocks.Create(ctx, "carol", "alice")
	require.NoError(t, err)

	svc := NewCandidateService(profiles, swipes, blocks, nil, nil)
	ranked, err := svc.GetCandidates(ctx, "alice", 10)

	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, "dave", ranked[0].Profile.UserID)
}

func TestGetCandidates_NeverContainsSelf(t *testing.T) {
	profiles, swipes, blocks := candidateFixture()
	svc := NewCandidateService(profiles, swipes, blocks, nil, nil)

	ranked, err := svc.GetCandidates(context.Background(), "alice", 10)

	require.NoError(t, err)
	for _, candidate := range ranked {
		assert.NotEqual(t, "alice", candidate.Profile.UserID)
	}
}

func TestGetCandidates_UnknownUserGetsEmptyFeed(t *testing.T) {
	profiles, swipes, blocks := candidateFixture()
	svc := NewCandidateService(profiles, swipes, blocks, nil, nil)

	ranked, err := svc.GetCandidates(context.Background(), "ghost", 10)

	require.NoError(t, err)
	assert.Empty(t, ranked)
}

func TestGetCandidates_RespectsLimitAndDefault(t *testing.T) {
	profiles := newFakeProfileStore(&database.ProfileSnapshot{UserID: "self"})
	for i := 0; i < 40; i++ {
		p := &database.ProfileSnapshot{UserID: fmt.Sprintf("user-%02d", i)}
		profiles.profiles[p.UserID] = p
	}
	svc := NewCandidateService(profiles, newFakeSwipeStore(), newFakeBlockStore(), nil, nil)
	ctx := context.Background()

	ranked, err := svc.GetCandidates(ctx, "self", 5)
	require.NoError(t, err)
	assert.Len(t, ranked, 5)

	ranked, err = svc.GetCandidates(ctx, "self", 0)
	require.NoError(t, err)
	assert.Len(t, ranked, defaultCandidateLimit)
}

func TestGetCandidates_ServesFromCacheUntilInvalidated(t *testing.T) {
	profiles, swipes, blocks := candidateFixture()
	c := newFakeCache()
	svc := NewCandidateService(profiles, swipes, blocks, c, nil)
	ctx := context.Background()

	first, err := svc.GetCandidates(ctx, "alice", 10)
	require.NoError(t, err)

	// A profile change without invalidation is invisible to the cached
	// ranking.
	delete(profiles.profiles, "dave")
	cached, err := svc.GetCandidates(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Len(t, cached, len(first))

	// After a swipe invalidates, the ranking is rebuilt and the swiped
	// target disappears.
	swipeSvc := NewSwipeService(swipes, profiles, pairlock.New(), c, nil, nil)
	_, err = swipeSvc.RecordSwipe(ctx, "alice", "bob", database.ActionLike)
	require.NoError(t, err)

	rebuilt, err := svc.GetCandidates(ctx, "alice", 10)
	require.NoError(t, err)
	for _, candidate := range rebuilt {
		assert.NotEqual(t, "bob", candidate.Profile.UserID)
		assert.NotEqual(t, "dave", candidate.Profile.UserID)
	}
}

func TestGetCandidates_StorageFailureIsRetryable(t *testing.T) {
	profiles, swipes, blocks := candidateFixture()
	swipes.failAll = assert.AnError
	svc := NewCandidateService(profiles, swipes, blocks, nil, nil)

	_, err := svc.GetCandidates(context.Background(), "alice", 10)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_UNAVAILABLE")
}
