package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"go.uber.org/zap"

	"matchcore/app/apperr"
	"matchcore/app/models"
)

// MatchRecordsSchema creates the tables CassandraMatchStore reads and writes.
// match_records is keyed by the ordered pair so one partition holds one record;
// match_records_by_user lists the pairs each user belongs to.
var MatchRecordsSchema = []string{
	`CREATE TABLE IF NOT EXISTS match_records (
		low_user text,
		high_user text,
		id text,
		status text,
		likes text,
		rejected_by text,
		version int,
		last_interaction timestamp,
		created_at timestamp,
		updated_at timestamp,
		PRIMARY KEY ((low_user, high_user))
	)`,
	`CREATE TABLE IF NOT EXISTS match_records_by_user (
		user_id text,
		other_user text,
		PRIMARY KEY (user_id, other_user)
	)`,
}

// CassandraMatchStore persists match records with lightweight transactions:
// inserts use IF NOT EXISTS and updates use IF version = ?.
type CassandraMatchStore struct {
	session *gocql.Session
	log     *zap.Logger
}

func NewCassandraMatchStore(session *gocql.Session, log *zap.Logger) *CassandraMatchStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &CassandraMatchStore{session: session, log: log.Named("cassandra_match_store")}
}

const selectMatchRecord = `
	SELECT id, status, likes, rejected_by, version, last_interaction, created_at, updated_at
	FROM match_records
	WHERE low_user = ? AND high_user = ?`

func (s *CassandraMatchStore) Get(ctx context.Context, key models.PairKey) (*models.MatchRecord, error) {
	const op = "get match record"

	var row matchRow
	err := s.session.Query(selectMatchRecord, key.Low, key.High).
		WithContext(ctx).
		Consistency(gocql.Quorum).
		Scan(&row.id, &row.status, &row.likes, &row.rejectedBy, &row.version,
			&row.lastInteraction, &row.createdAt, &row.updatedAt)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, apperr.NotFound(op, "no record for pair %s", key)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return row.record(key)
}

func (s *CassandraMatchStore) Insert(ctx context.Context, rec *models.MatchRecord) error {
	return insertIndexed(ctx, rec, s.indexPair, s.insertRecord)
}

// insertIndexed writes the pair index before the record itself. Index rows are
// idempotent and ListByUser skips index rows that have no record, so a record
// is never stored without being listed for both users.
func insertIndexed(
	ctx context.Context,
	rec *models.MatchRecord,
	index func(context.Context, models.PairKey) error,
	create func(context.Context, *models.MatchRecord) error,
) error {
	const op = "insert match record"

	if err := index(ctx, rec.Key); err != nil {
		return fmt.Errorf("%s: index pair %s: %w", op, rec.Key, err)
	}
	if err := create(ctx, rec); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *CassandraMatchStore) indexPair(ctx context.Context, key models.PairKey) error {
	batch := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`INSERT INTO match_records_by_user (user_id, other_user) VALUES (?, ?)`, key.Low, key.High)
	batch.Query(`INSERT INTO match_records_by_user (user_id, other_user) VALUES (?, ?)`, key.High, key.Low)
	return s.session.ExecuteBatch(batch)
}

func (s *CassandraMatchStore) insertRecord(ctx context.Context, rec *models.MatchRecord) error {
	likes, err := encodeLikes(rec.Likes)
	if err != nil {
		return err
	}

	applied, err := s.session.Query(`
		INSERT INTO match_records (low_user, high_user, id, status, likes, rejected_by, version,
			last_interaction, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		IF NOT EXISTS
	`, rec.Key.Low, rec.Key.High, rec.ID, string(rec.Status), likes, rec.RejectedBy, rec.Version,
		rec.LastInteraction, rec.CreatedAt, rec.UpdatedAt).
		WithContext(ctx).
		SerialConsistency(gocql.LocalSerial).
		MapScanCAS(map[string]interface{}{})
	if err != nil {
		return err
	}
	if !applied {
		return apperr.Conflict("create match record", "pair %s already has a record", rec.Key)
	}
	return nil
}

func (s *CassandraMatchStore) Update(ctx context.Context, rec *models.MatchRecord, expectedVersion int) error {
	const op = "update match record"

	likes, err := encodeLikes(rec.Likes)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	current := map[string]interface{}{}
	applied, err := s.session.Query(`
		UPDATE match_records
		SET status = ?, likes = ?, rejected_by = ?, version = ?, last_interaction = ?, updated_at = ?
		WHERE low_user = ? AND high_user = ?
		IF version = ?
	`, string(rec.Status), likes, rec.RejectedBy, rec.Version, rec.LastInteraction, rec.UpdatedAt,
		rec.Key.Low, rec.Key.High, expectedVersion).
		WithContext(ctx).
		SerialConsistency(gocql.LocalSerial).
		MapScanCAS(current)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !applied {
		s.log.Debug("version check failed",
			zap.String("pair", rec.Key.String()),
			zap.Int("expected", expectedVersion),
			zap.Any("current", current["version"]),
		)
		return apperr.Conflict(op, "pair %s changed since version %d", rec.Key, expectedVersion)
	}
	return nil
}

func (s *CassandraMatchStore) ListByUser(ctx context.Context, userID string) ([]*models.MatchRecord, error) {
	const op = "list match records"

	iter := s.session.Query(`
		SELECT other_user FROM match_records_by_user WHERE user_id = ?
	`, userID).WithContext(ctx).Iter()

	var others []string
	var other string
	for iter.Scan(&other) {
		others = append(others, other)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	records := make([]*models.MatchRecord, 0, len(others))
	for _, o := range others {
		rec, err := s.Get(ctx, models.NewPairKey(userID, o))
		if apperr.Is(err, apperr.KindNotFound) {
			// pair indexed but the record insert never landed
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Ping checks the session with a cheap system query
func (s *CassandraMatchStore) Ping(ctx context.Context) error {
	return s.session.Query("SELECT release_version FROM system.local").WithContext(ctx).Exec()
}

type matchRow struct {
	id              string
	status          string
	likes           string
	rejectedBy      string
	version         int
	lastInteraction time.Time
	createdAt       time.Time
	updatedAt       time.Time
}

func (r matchRow) record(key models.PairKey) (*models.MatchRecord, error) {
	likes, err := decodeLikes(r.likes)
	if err != nil {
		return nil, fmt.Errorf("decode likes for pair %s: %w", key, err)
	}
	return &models.MatchRecord{
		ID:              r.id,
		Key:             key,
		Status:          models.MatchStatus(r.status),
		Likes:           likes,
		RejectedBy:      r.rejectedBy,
		Version:         r.version,
		LastInteraction: r.lastInteraction,
		CreatedAt:       r.createdAt,
		UpdatedAt:       r.updatedAt,
	}, nil
}

// likes are stored as a JSON text column
func encodeLikes(likes []models.LikeEntry) (string, error) {
	if likes == nil {
		likes = []models.LikeEntry{}
	}
	raw, err := json.Marshal(likes)
	if err != nil {
		return "", fmt.Errorf("encode likes: %w", err)
	}
	return string(raw), nil
}

func decodeLikes(raw string) ([]models.LikeEntry, error) {
	likes := []models.LikeEntry{}
	if raw == "" {
		return likes, nil
	}
	if err := json.Unmarshal([]byte(raw), &likes); err != nil {
		return nil, err
	}
	return likes, nil
}
