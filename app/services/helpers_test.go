package services

import (
	"context"
	"sync"
	"time"

	"matchcore/app/models"
)

// testClock hands out strictly increasing times
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type notifiedLike struct {
	actor, target string
	kind          models.LikeKind
}

// recordingSink captures every notification
type recordingSink struct {
	mu      sync.Mutex
	matches [][2]string
	likes   []notifiedLike
}

func (s *recordingSink) NotifyMatch(_ context.Context, a, b string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = append(s.matches, [2]string{a, b})
}

func (s *recordingSink) NotifyLike(_ context.Context, actor, target string, kind models.LikeKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.likes = append(s.likes, notifiedLike{actor: actor, target: target, kind: kind})
}

func (s *recordingSink) matchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

func (s *recordingSink) likeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.likes)
}

// profileAt builds an active, discoverable profile
func profileAt(id string, age int, gender string, lon, lat float64, interests ...string) *models.Profile {
	prefs := models.DefaultPreferences()
	return &models.Profile{
		ID:          id,
		Age:         age,
		Gender:      gender,
		Interests:   interests,
		Location:    &models.Point{Lon: lon, Lat: lat},
		Preferences: prefs,
		LastActive:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Active:      true,
	}
}
