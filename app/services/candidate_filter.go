package services

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"matchcore/app/apperr"
	"matchcore/app/models"
)

// Discovery paging
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	DefaultScanLimit = 500
)

// CandidateFilter ranks discoverable users for a requester. It never writes.
type CandidateFilter struct {
	directory UserDirectory
	blocks    BlockList
	matches   MatchStore
	log       *zap.Logger
	scanLimit int
}

// NewCandidateFilter creates a new candidate filter. scanLimit caps how many
// nearest profiles are pulled from the directory before ranking.
func NewCandidateFilter(directory UserDirectory, blocks BlockList, matches MatchStore, scanLimit int, log *zap.Logger) *CandidateFilter {
	if log == nil {
		log = zap.NewNop()
	}
	if scanLimit <= 0 {
		scanLimit = DefaultScanLimit
	}
	return &CandidateFilter{
		directory: directory,
		blocks:    blocks,
		matches:   matches,
		log:       log.Named("candidate_filter"),
		scanLimit: scanLimit,
	}
}

// Discover returns one ranked page of candidates for requesterID
func (f *CandidateFilter) Discover(ctx context.Context, requesterID string, page, limit int) (*models.DiscoverPage, error) {
	const op = "discover"
	page, limit = normalizePage(page, limit)

	requester, err := f.directory.GetProfile(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !requester.Discoverable() {
		return nil, apperr.PreconditionFailed(op, "user %s has no stored preferences or location", requesterID)
	}

	excluded, superLikers, err := f.interactions(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	prefs := requester.Preferences
	filter := buildDirectoryFilter(prefs, excluded)

	nearby, err := f.directory.FindNearby(ctx, *requester.Location, prefs.MaxDistanceKm, filter, 0, f.scanLimit)
	if err != nil {
		return nil, fmt.Errorf("%s: find nearby: %w", op, err)
	}

	candidates := make([]models.Candidate, 0, len(nearby))
	for _, p := range nearby {
		if !matchesFilter(p, filter, excluded) {
			continue
		}
		_, superLiked := superLikers[p.ID]
		candidates = append(candidates, models.Candidate{
			Profile:    p,
			Score:      Score(requester, p),
			SuperLiked: superLiked,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Score.Total != b.Score.Total {
			return a.Score.Total > b.Score.Total
		}
		return a.Profile.LastActive.After(b.Profile.LastActive)
	})

	skip := (page - 1) * limit
	var window []models.Candidate
	if skip < len(candidates) {
		end := skip + limit
		if end > len(candidates) {
			end = len(candidates)
		}
		window = candidates[skip:end]
	}
	if window == nil {
		window = []models.Candidate{}
	}

	f.log.Debug("discovery ranked",
		zap.String("requester", requesterID),
		zap.Int("scanned", len(nearby)),
		zap.Int("eligible", len(candidates)),
		zap.Int("returned", len(window)),
	)

	return &models.DiscoverPage{
		Candidates: window,
		Page:       page,
		Limit:      limit,
		HasMore:    len(window) == limit,
	}, nil
}

// Score returns the compatibility of b from a's point of view
func (f *CandidateFilter) Score(ctx context.Context, idA, idB string) (models.Compatibility, error) {
	const op = "score"
	a, err := f.directory.GetProfile(ctx, idA)
	if err != nil {
		return models.Compatibility{}, fmt.Errorf("%s: %w", op, err)
	}
	b, err := f.directory.GetProfile(ctx, idB)
	if err != nil {
		return models.Compatibility{}, fmt.Errorf("%s: %w", op, err)
	}
	if !a.Discoverable() || !b.Discoverable() {
		return models.Compatibility{}, apperr.PreconditionFailed(op, "both users need stored preferences and a location")
	}
	return Score(a, b), nil
}

// interactions collects every id the requester must not see again, plus the
// users whose pending super-like toward the requester is still unanswered.
func (f *CandidateFilter) interactions(ctx context.Context, requesterID string) (map[string]struct{}, map[string]struct{}, error) {
	excluded := map[string]struct{}{requesterID: {}}
	superLikers := map[string]struct{}{}

	blocked, err := f.blocks.BlockedWith(ctx, requesterID)
	if err != nil {
		return nil, nil, fmt.Errorf("load block list: %w", err)
	}
	for _, id := range blocked {
		excluded[id] = struct{}{}
	}

	records, err := f.matches.ListByUser(ctx, requesterID)
	if err != nil {
		return nil, nil, fmt.Errorf("load match records: %w", err)
	}
	for _, rec := range records {
		other := rec.Key.Other(requesterID)
		switch {
		case rec.Status != models.MatchStatusPending, rec.HasLiked(requesterID):
			excluded[other] = struct{}{}
		default:
			if like, ok := rec.LikeFrom(other); ok && like.Kind == models.LikeKindSuperlike {
				superLikers[other] = struct{}{}
			}
		}
	}
	return excluded, superLikers, nil
}

func buildDirectoryFilter(prefs *models.Preferences, excluded map[string]struct{}) models.DirectoryFilter {
	filter := models.DirectoryFilter{
		MinAge:       prefs.AgeMin,
		MaxAge:       prefs.AgeMax,
		Attributes:   prefs.ActiveFilters(),
		MustHave:     prefs.MustHaves,
		DealBreakers: prefs.DealBreakers,
	}
	if prefs.LookingFor != "" && prefs.LookingFor != models.GenderAll {
		filter.Gender = prefs.LookingFor
	}
	if prefs.HeightRangeSet() {
		filter.HeightMin = prefs.HeightMin
		filter.HeightMax = prefs.HeightMax
	}
	filter.ExcludeIDs = make([]string, 0, len(excluded))
	for id := range excluded {
		filter.ExcludeIDs = append(filter.ExcludeIDs, id)
	}
	sort.Strings(filter.ExcludeIDs)
	return filter
}

// matchesFilter re-applies the directory filter in process; directories may
// push down only part of it.
func matchesFilter(p *models.Profile, filter models.DirectoryFilter, excluded map[string]struct{}) bool {
	if p == nil || !p.Active {
		return false
	}
	if _, skip := excluded[p.ID]; skip {
		return false
	}
	return filter.Matches(p)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}
