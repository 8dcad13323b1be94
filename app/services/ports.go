package services

import (
	"context"

	"matchcore/app/models"
)

// UserDirectory is the read side of the profile store
type UserDirectory interface {
	// GetProfile fails with an apperr NotFound when the user does not exist
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	// FindNearby returns active profiles within maxDistanceKm of center, nearest first
	FindNearby(ctx context.Context, center models.Point, maxDistanceKm float64, filter models.DirectoryFilter, skip, limit int) ([]*models.Profile, error)
}

// ProfileStore adds the profile writes preferences management needs
type ProfileStore interface {
	UserDirectory
	SavePreferences(ctx context.Context, userID string, prefs *models.Preferences) error
	SaveLocation(ctx context.Context, userID string, loc models.Point) error
	SetActive(ctx context.Context, userID string, active bool) error
}

// BlockList is the symmetric block relation
type BlockList interface {
	IsBlocked(ctx context.Context, a, b string) (bool, error)
	// BlockedWith returns every user blocking or blocked by userID
	BlockedWith(ctx context.Context, userID string) ([]string, error)
}

// BlockStore adds block management on top of BlockList
type BlockStore interface {
	BlockList
	// Block fails with an apperr Conflict when the block already exists
	Block(ctx context.Context, block models.Block) error
	// Unblock fails with an apperr NotFound when there is nothing to remove
	Unblock(ctx context.Context, blockerID, blockedID string) error
	ListBlocked(ctx context.Context, blockerID string) ([]models.Block, error)
}

// MatchStore persists MatchRecords with at most one record per pair key
type MatchStore interface {
	// Get fails with an apperr NotFound when the pair has no record
	Get(ctx context.Context, key models.PairKey) (*models.MatchRecord, error)
	// Insert fails with an apperr Conflict when a record for the pair already exists
	Insert(ctx context.Context, rec *models.MatchRecord) error
	// Update writes rec only if the stored version still equals expectedVersion,
	// failing with an apperr Conflict otherwise
	Update(ctx context.Context, rec *models.MatchRecord, expectedVersion int) error
	ListByUser(ctx context.Context, userID string) ([]*models.MatchRecord, error)
}

// NotificationSink receives match events. Calls are fire-and-forget: sinks
// handle their own delivery failures.
type NotificationSink interface {
	NotifyMatch(ctx context.Context, userA, userB string)
	NotifyLike(ctx context.Context, actorID, targetID string, kind models.LikeKind)
}
