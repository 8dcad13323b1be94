package repository

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"matchcore/app/models"
	"matchcore/redis"
)

// Cache is the JSON key/value surface of the Redis service
type Cache interface {
	GetJSON(ctx context.Context, key string, dest interface{}) error
	SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ProfileBackend is the store a CachedDirectory sits in front of
type ProfileBackend interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	FindNearby(ctx context.Context, center models.Point, maxDistanceKm float64, filter models.DirectoryFilter, skip, limit int) ([]*models.Profile, error)
	SavePreferences(ctx context.Context, userID string, prefs *models.Preferences) error
	SaveLocation(ctx context.Context, userID string, loc models.Point) error
	SetActive(ctx context.Context, userID string, active bool) error
}

// CachedDirectory is a read-through profile cache. Proximity queries always go
// to the backend; writes invalidate the cached profile. Cache failures degrade
// to backend reads.
type CachedDirectory struct {
	backend ProfileBackend
	cache   Cache
	ttl     time.Duration
	log     *zap.Logger
}

func NewCachedDirectory(backend ProfileBackend, cache Cache, ttl time.Duration, log *zap.Logger) *CachedDirectory {
	if log == nil {
		log = zap.NewNop()
	}
	return &CachedDirectory{backend: backend, cache: cache, ttl: ttl, log: log.Named("profile_cache")}
}

func profileKey(userID string) string {
	return "profile:" + userID
}

func (d *CachedDirectory) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	key := profileKey(userID)

	var cached models.Profile
	err := d.cache.GetJSON(ctx, key, &cached)
	if err == nil {
		return &cached, nil
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		d.log.Warn("profile cache read failed", zap.String("user_id", userID), zap.Error(err))
	}

	p, err := d.backend.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := d.cache.SetJSON(ctx, key, p, d.ttl); err != nil {
		d.log.Warn("profile cache write failed", zap.String("user_id", userID), zap.Error(err))
	}
	return p, nil
}

func (d *CachedDirectory) FindNearby(ctx context.Context, center models.Point, maxDistanceKm float64, filter models.DirectoryFilter, skip, limit int) ([]*models.Profile, error) {
	return d.backend.FindNearby(ctx, center, maxDistanceKm, filter, skip, limit)
}

func (d *CachedDirectory) SavePreferences(ctx context.Context, userID string, prefs *models.Preferences) error {
	if err := d.backend.SavePreferences(ctx, userID, prefs); err != nil {
		return err
	}
	d.invalidate(ctx, userID)
	return nil
}

func (d *CachedDirectory) SaveLocation(ctx context.Context, userID string, loc models.Point) error {
	if err := d.backend.SaveLocation(ctx, userID, loc); err != nil {
		return err
	}
	d.invalidate(ctx, userID)
	return nil
}

func (d *CachedDirectory) SetActive(ctx context.Context, userID string, active bool) error {
	if err := d.backend.SetActive(ctx, userID, active); err != nil {
		return err
	}
	d.invalidate(ctx, userID)
	return nil
}

func (d *CachedDirectory) invalidate(ctx context.Context, userID string) {
	if err := d.cache.Delete(ctx, profileKey(userID)); err != nil {
		d.log.Warn("profile cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}
