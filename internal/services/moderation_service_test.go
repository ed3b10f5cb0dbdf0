package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astromatch/astromatch/internal/database"
	"github.com/astromatch/astromatch/internal/errors"
	"github.com/astromatch/astromatch/internal/pairlock"
)

func moderationFixture(t *testing.T) (*ModerationService, *fakeSwipeStore, *fakeBlockStore, *SwipeService) {
	t.Helper()
	swipes := newFakeSwipeStore()
	profiles := testProfiles()
	blocks := newFakeBlockStore()
	swipeSvc := NewSwipeService(swipes, profiles, pairlock.New(), nil, nil, nil)
	return NewModerationService(blocks, profiles, swipeSvc), swipes, blocks, swipeSvc
}

func TestBlock_TearsDownExistingMatch(t *testing.T) {
	svc, swipes, blocks, swipeSvc := moderationFixture(t)
	ctx := context.Background()

	_, err := swipeSvc.RecordSwipe(ctx, "alice", "bob", database.ActionLike)
	require.NoError(t, err)
	_, err = swipeSvc.RecordSwipe(ctx, "bob", "alice", database.ActionLike)
	require.NoError(t, err)

	require.NoError(t, svc.Block(ctx, "alice", "bob"))

	blocked, err := blocks.IsBlocked(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, blocked)

	_, err = swipes.Get(ctx, "alice", "bob")
	assert.Equal(t, database.ErrSwipeNotFound, err)
	_, err = swipes.Get(ctx, "bob", "alice")
	assert.Equal(t, database.ErrSwipeNotFound, err)
}

func TestBlock_Idempotent(t *testing.T) {
	svc, _, _, _ := moderationFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Block(ctx, "alice", "bob"))
	assert.NoError(t, svc.Block(ctx, "alice", "bob"))
}

func TestBlock_SelfRejected(t *testing.T) {
	svc, _, _, _ := moderationFixture(t)

	err := svc.Block(context.Background(), "alice", "alice")

	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
}

func TestBlock_UnknownUserRejected(t *testing.T) {
	svc, _, _, _ := moderationFixture(t)

	err := svc.Block(context.Background(), "alice", "ghost")

	assert.True(t, errors.IsCode(err, errors.CodeUserNotFound))
}

func TestUnblock_Idempotent(t *testing.T) {
	svc, _, blocks, _ := moderationFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Block(ctx, "alice", "bob"))
	require.NoError(t, svc.Unblock(ctx, "alice", "bob"))

	blocked, err := blocks.IsBlocked(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, blocked)

	assert.NoError(t, svc.Unblock(ctx, "alice", "bob"))
}

func TestUnblock_DoesNotRestoreHistory(t *testing.T) {
	svc, swipes, _, swipeSvc := moderationFixture(t)
	ctx := context.Background()

	_, err := swipeSvc.RecordSwipe(ctx, "alice", "bob", database.ActionLike)
	require.NoError(t, err)
	require.NoError(t, svc.Block(ctx, "alice", "bob"))
	require.NoError(t, svc.Unblock(ctx, "alice", "bob"))

	_, err = swipes.Get(ctx, "alice", "bob")
	assert.Equal(t, database.ErrSwipeNotFound, err)
}

func TestBlockedUsers(t *testing.T) {
	svc, _, _, _ := moderationFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Block(ctx, "alice", "bob"))
	require.NoError(t, svc.Block(ctx, "alice", "carol"))

	profiles, err := svc.BlockedUsers(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	profiles, err = svc.BlockedUsers(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestIsBlocked_EitherDirection(t *testing.T) {
	svc, _, _, _ := moderationFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Block(ctx, "alice", "bob"))

	blocked, err := svc.IsBlocked(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, blocked)
}
