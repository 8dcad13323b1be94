package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matchcore/app/apperr"
	"matchcore/app/models"
)

func pendingRecord(a, b string) *models.MatchRecord {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &models.MatchRecord{
		ID:      "rec-" + a + "-" + b,
		Key:     models.NewPairKey(a, b),
		Status:  models.MatchStatusPending,
		Likes:   []models.LikeEntry{{UserID: a, Kind: models.LikeKindLike, Timestamp: now}},
		Version: 1,
	}
}

func TestMemoryMatchStoreInsertIsUnique(t *testing.T) {
	s := NewMemoryMatchStore()
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, pendingRecord("alice", "bob")))
	err := s.Insert(ctx, pendingRecord("bob", "alice"))
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Equal(t, 1, s.Len())

	_, err = s.Get(ctx, models.NewPairKey("alice", "carol"))
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestMemoryMatchStoreVersionCheck(t *testing.T) {
	s := NewMemoryMatchStore()
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, pendingRecord("alice", "bob")))

	rec, err := s.Get(ctx, models.NewPairKey("alice", "bob"))
	require.NoError(t, err)
	rec.Status = models.MatchStatusRejected
	rec.Version = 2

	require.NoError(t, s.Update(ctx, rec, 1))
	assert.True(t, apperr.Is(s.Update(ctx, rec, 1), apperr.KindConflict), "stale version")

	missing := pendingRecord("x", "y")
	assert.True(t, apperr.Is(s.Update(ctx, missing, 1), apperr.KindNotFound))

	got, err := s.Get(ctx, models.NewPairKey("bob", "alice"))
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusRejected, got.Status)
	assert.Equal(t, 2, got.Version)
}

func TestMemoryMatchStoreCopiesRecords(t *testing.T) {
	s := NewMemoryMatchStore()
	ctx := context.Background()
	rec := pendingRecord("alice", "bob")
	require.NoError(t, s.Insert(ctx, rec))

	rec.Likes[0].UserID = "mallory"
	got, err := s.Get(ctx, rec.Key)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Likes[0].UserID)

	got.Likes = append(got.Likes, models.LikeEntry{UserID: "bob"})
	again, err := s.Get(ctx, rec.Key)
	require.NoError(t, err)
	assert.Len(t, again.Likes, 1)
}

func TestMemoryMatchStoreListByUser(t *testing.T) {
	s := NewMemoryMatchStore()
	ctx := context.Background()
	for _, other := range []string{"carol", "bob", "dave"} {
		require.NoError(t, s.Insert(ctx, pendingRecord("alice", other)))
	}
	require.NoError(t, s.Insert(ctx, pendingRecord("bob", "carol")))

	recs, err := s.ListByUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "bob", recs[0].Key.Other("alice"))
	assert.Equal(t, "carol", recs[1].Key.Other("alice"))
	assert.Equal(t, "dave", recs[2].Key.Other("alice"))

	recs, err = s.ListByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func profile(id string, age int, lon, lat float64) *models.Profile {
	return &models.Profile{
		ID:          id,
		Age:         age,
		Gender:      "female",
		Location:    &models.Point{Lon: lon, Lat: lat},
		Preferences: models.DefaultPreferences(),
		Active:      true,
	}
}

func TestMemoryProfileStoreFindNearby(t *testing.T) {
	hidden := profile("hidden", 30, 0, 0.01)
	hidden.Active = false
	lost := profile("lost", 30, 0, 0)
	lost.Location = nil
	unset := profile("unset", 30, 0, 0.1)
	unset.Preferences = nil

	s := NewMemoryProfileStore(
		profile("c", 30, 0, 0.2),
		profile("a", 30, 0, 0.1),
		profile("b", 30, 0, 0.1),
		profile("young", 20, 0, 0.05),
		profile("far", 30, 0, 2),
		hidden, lost, unset,
	)
	ctx := context.Background()
	center := models.Point{}
	filter := models.DirectoryFilter{MinAge: 25, ExcludeIDs: []string{"c"}}

	got, err := s.FindNearby(ctx, center, 50, filter, 0, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID, "ties break on id")
	assert.Equal(t, "b", got[1].ID)

	got, err = s.FindNearby(ctx, center, 50, models.DirectoryFilter{}, 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	got, err = s.FindNearby(ctx, center, 50, models.DirectoryFilter{}, 10, 2)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMemoryProfileStoreWrites(t *testing.T) {
	s := NewMemoryProfileStore(profile("u", 30, 0, 0))
	ctx := context.Background()

	prefs := models.DefaultPreferences()
	prefs.AgeMin = 40
	require.NoError(t, s.SavePreferences(ctx, "u", prefs))
	prefs.AgeMin = 50
	require.NoError(t, s.SaveLocation(ctx, "u", models.Point{Lon: 5, Lat: 6}))
	require.NoError(t, s.SetActive(ctx, "u", false))

	p, err := s.GetProfile(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, 40, p.Preferences.AgeMin, "stored preferences are a copy")
	assert.Equal(t, &models.Point{Lon: 5, Lat: 6}, p.Location)
	assert.False(t, p.Active)

	assert.True(t, apperr.Is(s.SetActive(ctx, "ghost", true), apperr.KindNotFound))
	_, err = s.GetProfile(ctx, "ghost")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestMemoryBlockStore(t *testing.T) {
	s := NewMemoryBlockStore()
	ctx := context.Background()

	require.NoError(t, s.Block(ctx, models.Block{BlockerID: "alice", BlockedID: "bob", Reason: "spam"}))
	require.NoError(t, s.Block(ctx, models.Block{BlockerID: "carol", BlockedID: "alice", Reason: "other"}))
	assert.True(t, apperr.Is(s.Block(ctx, models.Block{BlockerID: "alice", BlockedID: "bob"}), apperr.KindConflict))

	blocked, err := s.IsBlocked(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, blocked)

	with, err := s.BlockedWith(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "carol"}, with)

	list, err := s.ListBlocked(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "bob", list[0].BlockedID)

	require.NoError(t, s.Unblock(ctx, "alice", "bob"))
	assert.True(t, apperr.Is(s.Unblock(ctx, "alice", "bob"), apperr.KindNotFound))
	blocked, err = s.IsBlocked(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, blocked)
}
