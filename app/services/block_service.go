package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"matchcore/app/apperr"
	"matchcore/app/models"
)

// BlockService manages a user's block list
type BlockService struct {
	blocks    BlockStore
	directory UserDirectory
	log       *zap.Logger
}

// NewBlockService creates a new block service instance
func NewBlockService(blocks BlockStore, directory UserDirectory, log *zap.Logger) *BlockService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BlockService{blocks: blocks, directory: directory, log: log.Named("blocks")}
}

func (s *BlockService) Block(ctx context.Context, blockerID, blockedID, reason, description string) error {
	const op = "block user"
	if blockerID == blockedID {
		return apperr.Forbidden(op, "cannot block yourself")
	}
	if reason == "" {
		reason = "other"
	}
	if !validReason(reason) {
		return apperr.Invalid(op, "unknown block reason %q", reason)
	}
	if _, err := s.directory.GetProfile(ctx, blockedID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err := s.blocks.Block(ctx, models.Block{
		BlockerID:   blockerID,
		BlockedID:   blockedID,
		Reason:      reason,
		Description: description,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("user blocked", zap.String("blocker", blockerID), zap.String("blocked", blockedID), zap.String("reason", reason))
	return nil
}

func (s *BlockService) Unblock(ctx context.Context, blockerID, blockedID string) error {
	if err := s.blocks.Unblock(ctx, blockerID, blockedID); err != nil {
		return fmt.Errorf("unblock user: %w", err)
	}
	s.log.Info("user unblocked", zap.String("blocker", blockerID), zap.String("blocked", blockedID))
	return nil
}

// List returns the blocks the user has placed
func (s *BlockService) List(ctx context.Context, blockerID string) ([]models.Block, error) {
	blocks, err := s.blocks.ListBlocked(ctx, blockerID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return blocks, nil
}

// Check reports whether either user blocks the other
func (s *BlockService) Check(ctx context.Context, a, b string) (bool, error) {
	blocked, err := s.blocks.IsBlocked(ctx, a, b)
	if err != nil {
		return false, fmt.Errorf("check block: %w", err)
	}
	return blocked, nil
}

func validReason(reason string) bool {
	for _, r := range models.BlockReasons {
		if r == reason {
			return true
		}
	}
	return false
}
