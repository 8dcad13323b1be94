package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"matchcore/app/apperr"
	"matchcore/app/models"
)

// ProfilesCollection is the collection MongoDirectory reads and writes
const ProfilesCollection = "profiles"

// geoPoint is a GeoJSON point as stored under a 2dsphere index
type geoPoint struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"`
}

type preferencesDoc struct {
	LookingFor    string            `bson:"looking_for"`
	AgeMin        int               `bson:"age_min"`
	AgeMax        int               `bson:"age_max"`
	MaxDistanceKm float64           `bson:"max_distance_km"`
	DealBreakers  []string          `bson:"deal_breakers"`
	MustHaves     []string          `bson:"must_haves"`
	Filters       map[string]string `bson:"filters,omitempty"`
	HeightMin     int               `bson:"height_min,omitempty"`
	HeightMax     int               `bson:"height_max,omitempty"`
}

type profileDoc struct {
	ID          string            `bson:"_id"`
	Age         int               `bson:"age"`
	Gender      string            `bson:"gender"`
	HeightCm    int               `bson:"height_cm,omitempty"`
	Attributes  map[string]string `bson:"attributes,omitempty"`
	Interests   []string          `bson:"interests"`
	Location    *geoPoint         `bson:"location,omitempty"`
	Preferences *preferencesDoc   `bson:"preferences,omitempty"`
	LastActive  time.Time         `bson:"last_active"`
	Active      bool              `bson:"active"`
}

func newGeoPoint(p models.Point) *geoPoint {
	return &geoPoint{Type: "Point", Coordinates: []float64{p.Lon, p.Lat}}
}

func newPreferencesDoc(p *models.Preferences) *preferencesDoc {
	if p == nil {
		return nil
	}
	return &preferencesDoc{
		LookingFor:    p.LookingFor,
		AgeMin:        p.AgeMin,
		AgeMax:        p.AgeMax,
		MaxDistanceKm: p.MaxDistanceKm,
		DealBreakers:  p.DealBreakers,
		MustHaves:     p.MustHaves,
		Filters:       p.Filters,
		HeightMin:     p.HeightMin,
		HeightMax:     p.HeightMax,
	}
}

func (d profileDoc) profile() *models.Profile {
	p := &models.Profile{
		ID:         d.ID,
		Age:        d.Age,
		Gender:     d.Gender,
		HeightCm:   d.HeightCm,
		Attributes: d.Attributes,
		Interests:  d.Interests,
		LastActive: d.LastActive,
		Active:     d.Active,
	}
	if p.Interests == nil {
		p.Interests = []string{}
	}
	if d.Location != nil && len(d.Location.Coordinates) == 2 {
		p.Location = &models.Point{Lon: d.Location.Coordinates[0], Lat: d.Location.Coordinates[1]}
	}
	if pd := d.Preferences; pd != nil {
		p.Preferences = &models.Preferences{
			LookingFor:    pd.LookingFor,
			AgeMin:        pd.AgeMin,
			AgeMax:        pd.AgeMax,
			MaxDistanceKm: pd.MaxDistanceKm,
			DealBreakers:  pd.DealBreakers,
			MustHaves:     pd.MustHaves,
			Filters:       pd.Filters,
			HeightMin:     pd.HeightMin,
			HeightMax:     pd.HeightMax,
		}
		if p.Preferences.Filters == nil {
			p.Preferences.Filters = map[string]string{}
		}
	}
	return p
}

// MongoDirectory serves profiles from MongoDB with $geoNear proximity queries
type MongoDirectory struct {
	profiles *mongo.Collection
	log      *zap.Logger
}

func NewMongoDirectory(db *mongo.Database, log *zap.Logger) *MongoDirectory {
	if log == nil {
		log = zap.NewNop()
	}
	return &MongoDirectory{profiles: db.Collection(ProfilesCollection), log: log.Named("mongo_directory")}
}

// EnsureIndexes creates the 2dsphere index $geoNear requires
func (d *MongoDirectory) EnsureIndexes(ctx context.Context) error {
	_, err := d.profiles.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "active", Value: 1}, {Key: "gender", Value: 1}, {Key: "age", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create profile indexes: %w", err)
	}
	return nil
}

func (d *MongoDirectory) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "get profile"

	var doc profileDoc
	err := d.profiles.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound(op, "user %s not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return doc.profile(), nil
}

func (d *MongoDirectory) FindNearby(ctx context.Context, center models.Point, maxDistanceKm float64, filter models.DirectoryFilter, skip, limit int) ([]*models.Profile, error) {
	const op = "find nearby"

	cursor, err := d.profiles.Aggregate(ctx, nearbyPipeline(center, maxDistanceKm, filter, skip, limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer cursor.Close(ctx)

	var out []*models.Profile
	for cursor.Next(ctx) {
		var doc profileDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%s: decode: %w", op, err)
		}
		out = append(out, doc.profile())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	d.log.Debug("nearby profiles", zap.Int("count", len(out)), zap.Float64("max_distance_km", maxDistanceKm))
	return out, nil
}

// nearbyPipeline is $geoNear (nearest first, bounded by maxDistanceKm) with the
// filter as its query, followed by paging
func nearbyPipeline(center models.Point, maxDistanceKm float64, filter models.DirectoryFilter, skip, limit int) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: newGeoPoint(center)},
			{Key: "distanceField", Value: "distance"},
			{Key: "maxDistance", Value: maxDistanceKm * 1000},
			{Key: "spherical", Value: true},
			{Key: "query", Value: buildNearbyFilter(filter)},
		}}},
	}
	if skip > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$skip", Value: int64(skip)}})
	}
	if limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: int64(limit)}})
	}
	return pipeline
}

// buildNearbyFilter pushes the directory filter down as a query document.
// Must-have tags are left to the caller since stored interests are not case folded.
func buildNearbyFilter(filter models.DirectoryFilter) bson.M {
	q := bson.M{"active": true, "preferences": bson.M{"$exists": true}}

	if len(filter.ExcludeIDs) > 0 {
		q["_id"] = bson.M{"$nin": filter.ExcludeIDs}
	}
	if filter.Gender != "" {
		q["gender"] = filter.Gender
	}

	age := bson.M{}
	if filter.MinAge > 0 {
		age["$gte"] = filter.MinAge
	}
	if filter.MaxAge > 0 {
		age["$lte"] = filter.MaxAge
	}
	if len(age) > 0 {
		q["age"] = age
	}

	for key, value := range filter.Attributes {
		q["attributes."+key] = value
	}

	height := bson.M{}
	if filter.HeightMin > 0 {
		height["$gte"] = filter.HeightMin
	}
	if filter.HeightMax > 0 {
		height["$lte"] = filter.HeightMax
	}
	if len(height) > 0 {
		q["height_cm"] = height
	}

	if len(filter.DealBreakers) > 0 {
		tags := make([]string, 0, len(filter.DealBreakers))
		for tag := range models.TagSet(filter.DealBreakers) {
			tags = append(tags, tag)
		}
		sort.Strings(tags)
		if len(tags) > 0 {
			q["interests"] = bson.M{"$nin": tags}
		}
	}
	return q
}

func (d *MongoDirectory) SavePreferences(ctx context.Context, userID string, prefs *models.Preferences) error {
	return d.set(ctx, "save preferences", userID, bson.M{"preferences": newPreferencesDoc(prefs)})
}

func (d *MongoDirectory) SaveLocation(ctx context.Context, userID string, loc models.Point) error {
	return d.set(ctx, "save location", userID, bson.M{"location": newGeoPoint(loc)})
}

func (d *MongoDirectory) SetActive(ctx context.Context, userID string, active bool) error {
	return d.set(ctx, "set active", userID, bson.M{"active": active})
}

func (d *MongoDirectory) set(ctx context.Context, op, userID string, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	res, err := d.profiles.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(op, "user %s not found", userID)
	}
	return nil
}

// Ping checks the backing deployment
func (d *MongoDirectory) Ping(ctx context.Context) error {
	return d.profiles.Database().Client().Ping(ctx, nil)
}
