package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"matchcore/app/apperr"
	"matchcore/app/models"
)

// PreferenceService manages the discovery settings stored on a profile
type PreferenceService struct {
	profiles ProfileStore
	log      *zap.Logger
}

// NewPreferenceService creates a new preference service instance
func NewPreferenceService(profiles ProfileStore, log *zap.Logger) *PreferenceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PreferenceService{profiles: profiles, log: log.Named("preferences")}
}

// Get returns the user's preferences, storing the defaults on first access
func (s *PreferenceService) Get(ctx context.Context, userID string) (*models.Preferences, error) {
	const op = "get preferences"
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if profile.Preferences != nil {
		return profile.Preferences, nil
	}

	prefs := models.DefaultPreferences()
	if err := s.profiles.SavePreferences(ctx, userID, prefs); err != nil {
		return nil, fmt.Errorf("%s: save defaults: %w", op, err)
	}
	s.log.Info("created default preferences", zap.String("user_id", userID))
	return prefs, nil
}

// Update applies a partial update and stores the result if it validates
func (s *PreferenceService) Update(ctx context.Context, userID string, patch models.PreferencesPatch) (*models.Preferences, error) {
	const op = "update preferences"
	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := patch.Apply(current)
	if err := next.Validate(); err != nil {
		return nil, apperr.New(apperr.KindInvalid, op, err)
	}
	if err := s.profiles.SavePreferences(ctx, userID, next); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return next, nil
}

// UpdateLocation stores the user's current position
func (s *PreferenceService) UpdateLocation(ctx context.Context, userID string, loc models.Point) error {
	const op = "update location"
	if err := loc.Validate(); err != nil {
		return apperr.New(apperr.KindInvalid, op, err)
	}
	if _, err := s.profiles.GetProfile(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.profiles.SaveLocation(ctx, userID, loc); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetActive toggles whether the user shows up in other users' discovery
func (s *PreferenceService) SetActive(ctx context.Context, userID string, active bool) error {
	const op = "set active"
	if _, err := s.profiles.GetProfile(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.profiles.SetActive(ctx, userID, active); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("visibility changed", zap.String("user_id", userID), zap.Bool("active", active))
	return nil
}
