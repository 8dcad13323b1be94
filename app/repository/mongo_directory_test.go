package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"matchcore/app/models"
)

func TestBuildNearbyFilter(t *testing.T) {
	q := buildNearbyFilter(models.DirectoryFilter{
		ExcludeIDs:   []string{"a", "b"},
		Gender:       "female",
		MinAge:       25,
		MaxAge:       35,
		Attributes:   map[string]string{models.FilterSmoking: "no"},
		HeightMin:    160,
		MustHave:     []string{"dogs"},
		DealBreakers: []string{"Smoking", " cats", "smoking"},
	})

	assert.Equal(t, bson.M{
		"active":             true,
		"preferences":        bson.M{"$exists": true},
		"_id":                bson.M{"$nin": []string{"a", "b"}},
		"gender":             "female",
		"age":                bson.M{"$gte": 25, "$lte": 35},
		"attributes.smoking": "no",
		"height_cm":          bson.M{"$gte": 160},
		"interests":          bson.M{"$nin": []string{"cats", "smoking"}},
	}, q)
}

func TestBuildNearbyFilterEmpty(t *testing.T) {
	base := bson.M{"active": true, "preferences": bson.M{"$exists": true}}
	assert.Equal(t, base, buildNearbyFilter(models.DirectoryFilter{}))
	assert.Equal(t, base, buildNearbyFilter(models.DirectoryFilter{DealBreakers: []string{"  "}}))
}

func TestNearbyPipeline(t *testing.T) {
	p := nearbyPipeline(models.Point{Lon: 24.9, Lat: 60.1}, 25, models.DirectoryFilter{}, 10, 5)
	require.Len(t, p, 3)

	geoNear := p[0][0]
	assert.Equal(t, "$geoNear", geoNear.Key)
	stage, ok := geoNear.Value.(bson.D)
	require.True(t, ok)
	m := map[string]interface{}{}
	for _, e := range stage {
		m[e.Key] = e.Value
	}
	assert.Equal(t, &geoPoint{Type: "Point", Coordinates: []float64{24.9, 60.1}}, m["near"])
	assert.Equal(t, 25000.0, m["maxDistance"])
	assert.Equal(t, true, m["spherical"])

	assert.Equal(t, bson.D{{Key: "$skip", Value: int64(10)}}, p[1])
	assert.Equal(t, bson.D{{Key: "$limit", Value: int64(5)}}, p[2])

	assert.Len(t, nearbyPipeline(models.Point{}, 1, models.DirectoryFilter{}, 0, 0), 1)
}

func TestProfileDocConversion(t *testing.T) {
	doc := profileDoc{
		ID:         "u1",
		Age:        30,
		Gender:     "male",
		Location:   newGeoPoint(models.Point{Lon: 1.5, Lat: -2}),
		LastActive: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Active:     true,
		Preferences: newPreferencesDoc(&models.Preferences{
			LookingFor:    "female",
			AgeMin:        20,
			AgeMax:        40,
			MaxDistanceKm: 30,
		}),
	}

	p := doc.profile()
	assert.Equal(t, &models.Point{Lon: 1.5, Lat: -2}, p.Location)
	assert.NotNil(t, p.Interests)
	require.NotNil(t, p.Preferences)
	assert.Equal(t, "female", p.Preferences.LookingFor)
	assert.NotNil(t, p.Preferences.Filters)
	assert.True(t, p.Discoverable())

	bare := profileDoc{ID: "u2"}.profile()
	assert.Nil(t, bare.Location)
	assert.Nil(t, bare.Preferences)
	assert.Nil(t, newPreferencesDoc(nil))
}

func TestSymmetricPair(t *testing.T) {
	assert.Equal(t, bson.M{"$or": bson.A{
		bson.M{"blocker_id": "a", "blocked_id": "b"},
		bson.M{"blocker_id": "b", "blocked_id": "a"},
	}}, symmetricPair("a", "b"))
}
