package services

import (
	"context"
	stderrors "errors"

	"github.com/astromatch/astromatch/internal/database"
	"github.com/astromatch/astromatch/internal/errors"
	"github.com/astromatch/astromatch/internal/telemetry"
)

// UnmatchCoordinator tears down a pair's ledger when moderation demands
// it. Implemented by SwipeService.
type UnmatchCoordinator interface {
	OnBlock(ctx context.Context, blockerID, blockedID string) error
}

// ModerationService maintains the block list. Blocking is stronger than
// unmatching: it also bars the pair from ever appearing in each other's
// candidate feeds.
type ModerationService struct {
	blocks      BlockStore
	profiles    ProfileStore
	coordinator UnmatchCoordinator
}

func NewModerationService(blocks BlockStore, profiles ProfileStore, coordinator UnmatchCoordinator) *ModerationService {
	return &ModerationService{blocks: blocks, profiles: profiles, coordinator: coordinator}
}

// Block records a block and tears down any existing match or pending
// swipes between the pair. Blocking an already-blocked user succeeds.
func (s *ModerationService) Block(ctx context.Context, blockerID, blockedID string) error {
	if blockerID == blockedID {
		return errors.NewValidationError("blocked_id", "Cannot block yourself")
	}

	if _, err := s.profiles.Get(ctx, blockedID); err != nil {
		if stderrors.Is(err, database.ErrProfileNotFound) {
			return errors.NewUserNotFoundError(blockedID)
		}
		return errors.NewStorageUnavailableError("load_profile", err)
	}

	created, err := s.blocks.Create(ctx, blockerID, blockedID)
	if err != nil {
		return errors.NewStorageUnavailableError("create_block", err)
	}

	// Ledger teardown runs on every call, not just the first. A block
	// re-applied after a partial failure still converges.
	if err := s.coordinator.OnBlock(ctx, blockerID, blockedID); err != nil {
		return err
	}

	if created {
		telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
			"blocker_id": blockerID,
			"blocked_id": blockedID,
		}).Info("User blocked")
	}
	return nil
}

// Unblock removes a block. Unblocking someone who was never blocked
// succeeds. Deleted ledger history does not come back.
func (s *ModerationService) Unblock(ctx context.Context, blockerID, blockedID string) error {
	if _, err := s.blocks.Delete(ctx, blockerID, blockedID); err != nil {
		return errors.NewStorageUnavailableError("delete_block", err)
	}
	return nil
}

// BlockedUsers returns the profiles this user has blocked.
func (s *ModerationService) BlockedUsers(ctx context.Context, userID string) ([]*database.ProfileSnapshot, error) {
	ids, err := s.blocks.BlockedBy(ctx, userID)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("load_block_list", err)
	}

	profiles, err := s.profiles.GetMany(ctx, ids)
	if err != nil {
		return nil, errors.NewStorageUnavailableError("load_blocked_profiles", err)
	}
	if profiles == nil {
		profiles = []*database.ProfileSnapshot{}
	}
	return profiles, nil
}

// IsBlocked reports whether a block exists between the pair in either
// direction.
func (s *ModerationService) IsBlocked(ctx context.Context, userA, userB string) (bool, error) {
	blocked, err := s.blocks.IsBlocked(ctx, userA, userB)
	if err != nil {
		return false, errors.NewStorageUnavailableError("check_block", err)
	}
	return blocked, nil
}
