package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"matchcore/app/apperr"
	"matchcore/app/models"
)

// BlocksCollection holds one document per directed block
const BlocksCollection = "blocks"

type blockDoc struct {
	BlockerID   string    `bson:"blocker_id"`
	BlockedID   string    `bson:"blocked_id"`
	Reason      string    `bson:"reason"`
	Description string    `bson:"description,omitempty"`
	CreatedAt   time.Time `bson:"created_at"`
}

// MongoBlockStore keeps the block list in MongoDB
type MongoBlockStore struct {
	blocks *mongo.Collection
}

func NewMongoBlockStore(db *mongo.Database) *MongoBlockStore {
	return &MongoBlockStore{blocks: db.Collection(BlocksCollection)}
}

// EnsureIndexes makes (blocker_id, blocked_id) unique and indexes the reverse direction
func (s *MongoBlockStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.blocks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "blocker_id", Value: 1}, {Key: "blocked_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "blocked_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create block indexes: %w", err)
	}
	return nil
}

func (s *MongoBlockStore) Block(ctx context.Context, block models.Block) error {
	const op = "block user"
	_, err := s.blocks.InsertOne(ctx, blockDoc{
		BlockerID:   block.BlockerID,
		BlockedID:   block.BlockedID,
		Reason:      block.Reason,
		Description: block.Description,
		CreatedAt:   time.Now().UTC(),
	})
	if mongo.IsDuplicateKeyError(err) {
		return apperr.Conflict(op, "%s already blocks %s", block.BlockerID, block.BlockedID)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *MongoBlockStore) Unblock(ctx context.Context, blockerID, blockedID string) error {
	const op = "unblock user"
	res, err := s.blocks.DeleteOne(ctx, bson.M{"blocker_id": blockerID, "blocked_id": blockedID})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound(op, "%s does not block %s", blockerID, blockedID)
	}
	return nil
}

func (s *MongoBlockStore) IsBlocked(ctx context.Context, a, b string) (bool, error) {
	n, err := s.blocks.CountDocuments(ctx, symmetricPair(a, b), options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check block: %w", err)
	}
	return n > 0, nil
}

func (s *MongoBlockStore) BlockedWith(ctx context.Context, userID string) ([]string, error) {
	const op = "blocked with"
	cursor, err := s.blocks.Find(ctx, bson.M{"$or": bson.A{
		bson.M{"blocker_id": userID},
		bson.M{"blocked_id": userID},
	}})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var docs []blockDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	seen := make(map[string]struct{}, len(docs))
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		other := d.BlockedID
		if other == userID {
			other = d.BlockerID
		}
		if _, dup := seen[other]; dup {
			continue
		}
		seen[other] = struct{}{}
		out = append(out, other)
	}
	return out, nil
}

func (s *MongoBlockStore) ListBlocked(ctx context.Context, blockerID string) ([]models.Block, error) {
	const op = "list blocks"
	cursor, err := s.blocks.Find(ctx, bson.M{"blocker_id": blockerID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var docs []blockDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	out := make([]models.Block, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.Block{
			BlockerID:   d.BlockerID,
			BlockedID:   d.BlockedID,
			Reason:      d.Reason,
			Description: d.Description,
		})
	}
	return out, nil
}

// symmetricPair matches a block in either direction
func symmetricPair(a, b string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"blocker_id": a, "blocked_id": b},
		bson.M{"blocker_id": b, "blocked_id": a},
	}}
}
