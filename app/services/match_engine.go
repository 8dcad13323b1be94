package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"matchcore/app/apperr"
	"matchcore/app/models"
)

const defaultMaxConflictRetries = 5

// MatchEngine owns every state transition of a pair's MatchRecord:
//
//	no-record -> pending   first like
//	pending   -> matched   like from the second pair member
//	pending   -> rejected  dislike from either member
//
// matched and rejected are terminal. Each call is a single read-modify-write
// against the store; concurrent writers are detected through the store's
// insert uniqueness and version check and retried by re-reading.
type MatchEngine struct {
	store     MatchStore
	directory UserDirectory
	blocks    BlockList
	sink      NotificationSink
	log       *zap.Logger

	now        func() time.Time
	newID      func() string
	maxRetries int
}

// NewMatchEngine creates a new match engine instance
func NewMatchEngine(store MatchStore, directory UserDirectory, blocks BlockList, sink NotificationSink, log *zap.Logger) *MatchEngine {
	if log == nil {
		log = zap.NewNop()
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &MatchEngine{
		store:      store,
		directory:  directory,
		blocks:     blocks,
		sink:       sink,
		log:        log.Named("match_engine"),
		now:        time.Now,
		newID:      uuid.NewString,
		maxRetries: defaultMaxConflictRetries,
	}
}

// Like records actor's like toward target. Liking twice is a no-op that returns
// the unchanged record. IsNewMatch is true only on the call that completes the pair.
func (e *MatchEngine) Like(ctx context.Context, actorID, targetID string) (*models.LikeResult, error) {
	return e.recordLike(ctx, actorID, targetID, models.LikeKindLike)
}

// Superlike is Like with a priority marker on the entry. Match formation is unchanged.
func (e *MatchEngine) Superlike(ctx context.Context, actorID, targetID string) (*models.LikeResult, error) {
	return e.recordLike(ctx, actorID, targetID, models.LikeKindSuperlike)
}

func (e *MatchEngine) recordLike(ctx context.Context, actorID, targetID string, kind models.LikeKind) (*models.LikeResult, error) {
	op := "record " + string(kind)
	if err := e.checkPair(ctx, op, actorID, targetID, true); err != nil {
		return nil, err
	}

	key := models.NewPairKey(actorID, targetID)
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		res, retry, err := e.tryLike(ctx, op, key, actorID, kind)
		if err != nil {
			return nil, err
		}
		if !retry {
			return res, nil
		}
		e.log.Debug("match record changed concurrently, retrying",
			zap.String("pair", key.String()),
			zap.Int("attempt", attempt),
		)
	}
	return nil, apperr.Conflict(op, "pair %s kept changing after %d attempts", key, e.maxRetries)
}

func (e *MatchEngine) tryLike(ctx context.Context, op string, key models.PairKey, actorID string, kind models.LikeKind) (*models.LikeResult, bool, error) {
	now := e.now().UTC()
	like := models.LikeEntry{UserID: actorID, Kind: kind, Timestamp: now}
	targetID := key.Other(actorID)

	rec, err := e.store.Get(ctx, key)
	if apperr.Is(err, apperr.KindNotFound) {
		rec = &models.MatchRecord{
			ID:              e.newID(),
			Key:             key,
			Status:          models.MatchStatusPending,
			Likes:           []models.LikeEntry{like},
			Version:         1,
			LastInteraction: now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := e.store.Insert(ctx, rec); err != nil {
			if apperr.Is(err, apperr.KindConflict) {
				return nil, true, nil
			}
			return nil, false, fmt.Errorf("%s: insert match record: %w", op, err)
		}
		e.sink.NotifyLike(ctx, actorID, targetID, kind)
		return &models.LikeResult{Record: rec}, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: load match record: %w", op, err)
	}

	if rec.Status == models.MatchStatusRejected {
		return nil, false, apperr.InvalidState(op, "pair %s has been rejected", key)
	}
	if rec.HasLiked(actorID) || rec.Status == models.MatchStatusMatched {
		e.log.Debug("like already recorded", zap.String("pair", key.String()), zap.String("actor", actorID))
		return &models.LikeResult{Record: rec}, false, nil
	}

	expected := rec.Version
	rec.Likes = append(rec.Likes, like)
	rec.LastInteraction = now
	rec.UpdatedAt = now
	rec.Version++

	isNewMatch := rec.IsMutual()
	if isNewMatch {
		rec.Status = models.MatchStatusMatched
	}

	if err := e.store.Update(ctx, rec, expected); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("%s: update match record: %w", op, err)
	}

	if isNewMatch {
		e.log.Info("match formed", zap.String("pair", key.String()), zap.String("record_id", rec.ID))
		e.sink.NotifyMatch(ctx, key.Low, key.High)
	} else {
		e.sink.NotifyLike(ctx, actorID, targetID, kind)
	}
	return &models.LikeResult{Record: rec, IsNewMatch: isNewMatch}, false, nil
}

// Dislike rejects the pair. Without an existing record a rejected record with
// no likes is created so later likes are refused too.
func (e *MatchEngine) Dislike(ctx context.Context, actorID, targetID string) error {
	const op = "record dislike"
	if err := e.checkPair(ctx, op, actorID, targetID, false); err != nil {
		return err
	}

	key := models.NewPairKey(actorID, targetID)
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		retry, err := e.tryDislike(ctx, op, key, actorID)
		if err != nil {
			return err
		}
		if !retry {
			return nil
		}
		e.log.Debug("match record changed concurrently, retrying",
			zap.String("pair", key.String()),
			zap.Int("attempt", attempt),
		)
	}
	return apperr.Conflict(op, "pair %s kept changing after %d attempts", key, e.maxRetries)
}

func (e *MatchEngine) tryDislike(ctx context.Context, op string, key models.PairKey, actorID string) (bool, error) {
	now := e.now().UTC()

	rec, err := e.store.Get(ctx, key)
	if apperr.Is(err, apperr.KindNotFound) {
		rec = &models.MatchRecord{
			ID:              e.newID(),
			Key:             key,
			Status:          models.MatchStatusRejected,
			Likes:           []models.LikeEntry{},
			RejectedBy:      actorID,
			Version:         1,
			LastInteraction: now,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := e.store.Insert(ctx, rec); err != nil {
			if apperr.Is(err, apperr.KindConflict) {
				return true, nil
			}
			return false, fmt.Errorf("%s: insert match record: %w", op, err)
		}
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: load match record: %w", op, err)
	}

	switch rec.Status {
	case models.MatchStatusRejected:
		return false, nil
	case models.MatchStatusMatched:
		return false, apperr.InvalidState(op, "pair %s is already matched", key)
	}

	expected := rec.Version
	rec.Status = models.MatchStatusRejected
	rec.RejectedBy = actorID
	rec.LastInteraction = now
	rec.UpdatedAt = now
	rec.Version++

	if err := e.store.Update(ctx, rec, expected); err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			return true, nil
		}
		return false, fmt.Errorf("%s: update match record: %w", op, err)
	}
	return false, nil
}

// GetRecord returns the pair's record; ok is false when the pair has none.
func (e *MatchEngine) GetRecord(ctx context.Context, userA, userB string) (*models.MatchRecord, bool, error) {
	rec, err := e.store.Get(ctx, models.NewPairKey(userA, userB))
	if apperr.Is(err, apperr.KindNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get match record: %w", err)
	}
	return rec, true, nil
}

// ListMatches returns the user's matched records, most recent interaction first.
func (e *MatchEngine) ListMatches(ctx context.Context, userID string) ([]*models.MatchRecord, error) {
	records, err := e.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	matches := make([]*models.MatchRecord, 0, len(records))
	for _, rec := range records {
		if rec.Status == models.MatchStatusMatched {
			matches = append(matches, rec)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].LastInteraction.After(matches[j].LastInteraction)
	})
	return matches, nil
}

func (e *MatchEngine) Stats(ctx context.Context, userID string) (models.MatchStats, error) {
	var stats models.MatchStats
	records, err := e.store.ListByUser(ctx, userID)
	if err != nil {
		return stats, fmt.Errorf("match stats: %w", err)
	}
	for _, rec := range records {
		switch rec.Status {
		case models.MatchStatusPending:
			stats.Pending++
		case models.MatchStatusMatched:
			stats.Matched++
		case models.MatchStatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

// IncomingLikes lists pending likes the user has not answered, super-likes
// first and then newest first.
func (e *MatchEngine) IncomingLikes(ctx context.Context, userID string) ([]models.IncomingLike, error) {
	records, err := e.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("incoming likes: %w", err)
	}

	var likes []models.IncomingLike
	for _, rec := range records {
		if rec.Status != models.MatchStatusPending || rec.HasLiked(userID) {
			continue
		}
		other := rec.Key.Other(userID)
		entry, ok := rec.LikeFrom(other)
		if !ok {
			continue
		}
		likes = append(likes, models.IncomingLike{
			FromUserID: other,
			Kind:       entry.Kind,
			Timestamp:  entry.Timestamp,
			RecordID:   rec.ID,
		})
	}

	sort.SliceStable(likes, func(i, j int) bool {
		si := likes[i].Kind == models.LikeKindSuperlike
		sj := likes[j].Kind == models.LikeKindSuperlike
		if si != sj {
			return si
		}
		return likes[i].Timestamp.After(likes[j].Timestamp)
	})
	return likes, nil
}

// checkPair validates the pair and that both users exist. Blocked pairs are
// refused when requireUnblocked is set. Nothing is mutated.
func (e *MatchEngine) checkPair(ctx context.Context, op, actorID, targetID string, requireUnblocked bool) error {
	if actorID == "" || targetID == "" {
		return apperr.Invalid(op, "both user ids are required")
	}
	if actorID == targetID {
		return apperr.Forbidden(op, "cannot act on yourself")
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range []string{actorID, targetID} {
		id := id
		g.Go(func() error {
			_, err := e.directory.GetProfile(gctx, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !requireUnblocked {
		return nil
	}
	blocked, err := e.blocks.IsBlocked(ctx, actorID, targetID)
	if err != nil {
		return fmt.Errorf("%s: check block list: %w", op, err)
	}
	if blocked {
		return apperr.Forbidden(op, "users %s and %s are blocked", actorID, targetID)
	}
	return nil
}
