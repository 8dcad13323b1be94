package repository

import (
	"context"
	"sort"
	"sync"

	"matchcore/app/apperr"
	"matchcore/app/geo"
	"matchcore/app/models"
)

// MemoryMatchStore keeps match records in process. Insert and Update are
// serialized by a single mutex, which gives the same per-pair uniqueness and
// version check the Cassandra store gets from lightweight transactions.
type MemoryMatchStore struct {
	mu      sync.Mutex
	records map[models.PairKey]*models.MatchRecord
}

func NewMemoryMatchStore() *MemoryMatchStore {
	return &MemoryMatchStore{records: make(map[models.PairKey]*models.MatchRecord)}
}

func (s *MemoryMatchStore) Get(_ context.Context, key models.PairKey) (*models.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok {
		return nil, apperr.NotFound("get match record", "no record for pair %s", key)
	}
	return rec.Clone(), nil
}

func (s *MemoryMatchStore) Insert(_ context.Context, rec *models.MatchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[rec.Key]; ok {
		return apperr.Conflict("insert match record", "pair %s already has a record", rec.Key)
	}
	s.records[rec.Key] = rec.Clone()
	return nil
}

func (s *MemoryMatchStore) Update(_ context.Context, rec *models.MatchRecord, expectedVersion int) error {
	const op = "update match record"
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.records[rec.Key]
	if !ok {
		return apperr.NotFound(op, "no record for pair %s", rec.Key)
	}
	if stored.Version != expectedVersion {
		return apperr.Conflict(op, "pair %s is at version %d, expected %d", rec.Key, stored.Version, expectedVersion)
	}
	s.records[rec.Key] = rec.Clone()
	return nil
}

func (s *MemoryMatchStore) ListByUser(_ context.Context, userID string) ([]*models.MatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.MatchRecord
	for key, rec := range s.records {
		if key.Contains(userID) {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.String() < out[j].Key.String() })
	return out, nil
}

// Len returns the number of stored records
func (s *MemoryMatchStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// MemoryProfileStore is an in-process user directory
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[string]*models.Profile
}

func NewMemoryProfileStore(profiles ...*models.Profile) *MemoryProfileStore {
	s := &MemoryProfileStore{profiles: make(map[string]*models.Profile)}
	for _, p := range profiles {
		s.Put(p)
	}
	return s
}

// Put inserts or replaces a profile
func (s *MemoryProfileStore) Put(p *models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = p.Clone()
}

func (s *MemoryProfileStore) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[userID]
	if !ok {
		return nil, apperr.NotFound("get profile", "user %s not found", userID)
	}
	return p.Clone(), nil
}

func (s *MemoryProfileStore) FindNearby(_ context.Context, center models.Point, maxDistanceKm float64, filter models.DirectoryFilter, skip, limit int) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	excluded := make(map[string]struct{}, len(filter.ExcludeIDs))
	for _, id := range filter.ExcludeIDs {
		excluded[id] = struct{}{}
	}

	type hit struct {
		profile  *models.Profile
		distance float64
	}
	var hits []hit
	for id, p := range s.profiles {
		if _, skip := excluded[id]; skip || !p.Active || p.Location == nil || p.Preferences == nil {
			continue
		}
		d := geo.HaversineKm(center, *p.Location)
		if d > maxDistanceKm || !filter.Matches(p) {
			continue
		}
		hits = append(hits, hit{profile: p, distance: d})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].distance != hits[j].distance {
			return hits[i].distance < hits[j].distance
		}
		return hits[i].profile.ID < hits[j].profile.ID
	})

	if skip >= len(hits) {
		return []*models.Profile{}, nil
	}
	hits = hits[skip:]
	if limit > 0 && limit < len(hits) {
		hits = hits[:limit]
	}
	out := make([]*models.Profile, len(hits))
	for i, h := range hits {
		out[i] = h.profile.Clone()
	}
	return out, nil
}

func (s *MemoryProfileStore) SavePreferences(_ context.Context, userID string, prefs *models.Preferences) error {
	return s.mutate("save preferences", userID, func(p *models.Profile) { p.Preferences = prefs.Clone() })
}

func (s *MemoryProfileStore) SaveLocation(_ context.Context, userID string, loc models.Point) error {
	return s.mutate("save location", userID, func(p *models.Profile) { p.Location = &loc })
}

func (s *MemoryProfileStore) SetActive(_ context.Context, userID string, active bool) error {
	return s.mutate("set active", userID, func(p *models.Profile) { p.Active = active })
}

func (s *MemoryProfileStore) mutate(op, userID string, fn func(p *models.Profile)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.profiles[userID]
	if !ok {
		return apperr.NotFound(op, "user %s not found", userID)
	}
	fn(p)
	return nil
}

// MemoryBlockStore is an in-process block list
type MemoryBlockStore struct {
	mu     sync.RWMutex
	blocks map[[2]string]models.Block
}

func NewMemoryBlockStore() *MemoryBlockStore {
	return &MemoryBlockStore{blocks: make(map[[2]string]models.Block)}
}

func (s *MemoryBlockStore) Block(_ context.Context, block models.Block) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]string{block.BlockerID, block.BlockedID}
	if _, ok := s.blocks[key]; ok {
		return apperr.Conflict("block user", "%s already blocks %s", block.BlockerID, block.BlockedID)
	}
	s.blocks[key] = block
	return nil
}

func (s *MemoryBlockStore) Unblock(_ context.Context, blockerID, blockedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]string{blockerID, blockedID}
	if _, ok := s.blocks[key]; !ok {
		return apperr.NotFound("unblock user", "%s does not block %s", blockerID, blockedID)
	}
	delete(s.blocks, key)
	return nil
}

func (s *MemoryBlockStore) IsBlocked(_ context.Context, a, b string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ab := s.blocks[[2]string{a, b}]
	_, ba := s.blocks[[2]string{b, a}]
	return ab || ba, nil
}

func (s *MemoryBlockStore) BlockedWith(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for key := range s.blocks {
		switch userID {
		case key[0]:
			seen[key[1]] = struct{}{}
		case key[1]:
			seen[key[0]] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryBlockStore) ListBlocked(_ context.Context, blockerID string) ([]models.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Block{}
	for key, b := range s.blocks {
		if key[0] == blockerID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BlockedID < out[j].BlockedID })
	return out, nil
}
