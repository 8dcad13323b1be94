package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcore/app/apperr"
	"matchcore/app/models"
	"matchcore/app/repository"
)

func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestPreferencesGetStoresDefaults(t *testing.T) {
	p := profileAt("u", 30, "other", 0, 0)
	p.Preferences = nil
	store := repository.NewMemoryProfileStore(p)
	svc := NewPreferenceService(store, nil)
	ctx := context.Background()

	prefs, err := svc.Get(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPreferences(), prefs)

	stored, err := store.GetProfile(ctx, "u")
	require.NoError(t, err)
	assert.NotNil(t, stored.Preferences)

	_, err = svc.Get(ctx, "ghost")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPreferencesUpdateMergesPatch(t *testing.T) {
	store := repository.NewMemoryProfileStore(profileAt("u", 30, "other", 0, 0))
	svc := NewPreferenceService(store, nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, "u", models.PreferencesPatch{
		AgeMin:  intPtr(25),
		Filters: map[string]string{models.FilterSmoking: "no"},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "u", models.PreferencesPatch{
		LookingFor:    strPtr("female"),
		MaxDistanceKm: floatPtr(10),
		Filters:       map[string]string{models.FilterPets: "yes"},
	})
	require.NoError(t, err)
	assert.Equal(t, 25, updated.AgeMin, "earlier patch is kept")
	assert.Equal(t, "female", updated.LookingFor)
	assert.Equal(t, 10.0, updated.MaxDistanceKm)
	assert.Equal(t, map[string]string{models.FilterSmoking: "no", models.FilterPets: "yes"}, updated.Filters)

	stored, err := store.GetProfile(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, updated, stored.Preferences)
}

func TestPreferencesUpdateRejectsInvalid(t *testing.T) {
	store := repository.NewMemoryProfileStore(profileAt("u", 30, "other", 0, 0))
	svc := NewPreferenceService(store, nil)
	ctx := context.Background()

	cases := map[string]models.PreferencesPatch{
		"age order":      {AgeMin: intPtr(40), AgeMax: intPtr(30)},
		"age bound":      {AgeMin: intPtr(16)},
		"distance":       {MaxDistanceKm: floatPtr(500)},
		"gender":         {LookingFor: strPtr("robot")},
		"filter key":     {Filters: map[string]string{"star_sign": "leo"}},
		"filter value":   {Filters: map[string]string{models.FilterSmoking: "always"}},
		"height reverse": {HeightMin: intPtr(200), HeightMax: intPtr(150)},
	}
	for name, patch := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Update(ctx, "u", patch)
			assert.True(t, apperr.Is(err, apperr.KindInvalid), "got %v", err)
		})
	}

	stored, err := store.GetProfile(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultPreferences(), stored.Preferences, "nothing was saved")
}

func TestUpdateLocation(t *testing.T) {
	store := repository.NewMemoryProfileStore(profileAt("u", 30, "other", 0, 0))
	svc := NewPreferenceService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.UpdateLocation(ctx, "u", models.Point{Lon: 24.94, Lat: 60.17}))
	p, err := store.GetProfile(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, &models.Point{Lon: 24.94, Lat: 60.17}, p.Location)

	err = svc.UpdateLocation(ctx, "u", models.Point{Lon: 200, Lat: 0})
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
	err = svc.UpdateLocation(ctx, "ghost", models.Point{})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestSetActive(t *testing.T) {
	store := repository.NewMemoryProfileStore(profileAt("u", 30, "other", 0, 0))
	svc := NewPreferenceService(store, nil)
	ctx := context.Background()

	require.NoError(t, svc.SetActive(ctx, "u", false))
	p, err := store.GetProfile(ctx, "u")
	require.NoError(t, err)
	assert.False(t, p.Active)

	assert.True(t, apperr.Is(svc.SetActive(ctx, "ghost", true), apperr.KindNotFound))
}
