package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPairKeyIsUnordered(t *testing.T) {
	ab := NewPairKey("alice", "bob")
	ba := NewPairKey("bob", "alice")

	assert.Equal(t, ab, ba)
	assert.Equal(t, "alice|bob", ab.String())
	assert.Equal(t, "bob", ab.Other("alice"))
	assert.Equal(t, "alice", ab.Other("bob"))
	assert.True(t, ab.Contains("bob"))
	assert.False(t, ab.Contains("carol"))

	parsed, ok := ParsePairKey("bob|alice")
	require.True(t, ok)
	assert.Equal(t, ab, parsed)

	_, ok = ParsePairKey("nopipe")
	assert.False(t, ok)
}

func TestMatchRecordLikes(t *testing.T) {
	rec := &MatchRecord{Key: NewPairKey("a", "b"), Status: MatchStatusPending}
	assert.False(t, rec.IsMutual())

	rec.Likes = append(rec.Likes, LikeEntry{UserID: "a", Kind: LikeKindSuperlike, Timestamp: time.Now()})
	assert.True(t, rec.HasLiked("a"))
	assert.False(t, rec.IsMutual())

	entry, ok := rec.LikeFrom("a")
	require.True(t, ok)
	assert.Equal(t, LikeKindSuperlike, entry.Kind)

	clone := rec.Clone()
	clone.Likes = append(clone.Likes, LikeEntry{UserID: "b", Kind: LikeKindLike})
	assert.True(t, clone.IsMutual())
	assert.Len(t, rec.Likes, 1)
}

func TestPreferencesValidate(t *testing.T) {
	assert.NoError(t, DefaultPreferences().Validate())

	cases := map[string]func(p *Preferences){
		"inverted age range": func(p *Preferences) { p.AgeMin, p.AgeMax = 40, 30 },
		"too young":          func(p *Preferences) { p.AgeMin = 16 },
		"zero distance":      func(p *Preferences) { p.MaxDistanceKm = 0 },
		"far distance":       func(p *Preferences) { p.MaxDistanceKm = 250 },
		"unknown gender":     func(p *Preferences) { p.LookingFor = "robot" },
		"unknown filter":     func(p *Preferences) { p.Filters = map[string]string{"eye_color": "blue"} },
		"bad filter value":   func(p *Preferences) { p.Filters = map[string]string{FilterSmoking: "daily"} },
		"inverted height":    func(p *Preferences) { p.HeightMin, p.HeightMax = 200, 150 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := DefaultPreferences()
			mutate(p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestActiveFiltersSkipsDefaults(t *testing.T) {
	p := DefaultPreferences()
	p.Filters = map[string]string{FilterReligion: FilterAny, FilterPets: "yes"}

	assert.Equal(t, map[string]string{FilterPets: "yes"}, p.ActiveFilters())
	assert.False(t, p.HeightRangeSet())

	p.HeightMin = 160
	assert.True(t, p.HeightRangeSet())
}

func TestPointValidate(t *testing.T) {
	assert.NoError(t, Point{Lon: 24.9, Lat: 60.1}.Validate())
	assert.Error(t, Point{Lon: 200}.Validate())
	assert.Error(t, Point{Lat: -91}.Validate())
}

func TestProfileClone(t *testing.T) {
	p := &Profile{
		ID:          "u1",
		Interests:   []string{"hiking"},
		Location:    &Point{Lon: 1, Lat: 2},
		Preferences: DefaultPreferences(),
	}
	c := p.Clone()
	c.Interests[0] = "wine"
	c.Location.Lat = 9
	c.Preferences.AgeMin = 30

	assert.Equal(t, "hiking", p.Interests[0])
	assert.Equal(t, 2.0, p.Location.Lat)
	assert.Equal(t, MinAge, p.Preferences.AgeMin)
	assert.True(t, p.Discoverable())
	assert.False(t, (&Profile{ID: "x"}).Discoverable())
}

func TestPreferencesPatchApply(t *testing.T) {
	base := DefaultPreferences()
	base.Filters[FilterSmoking] = "no"

	age := 30
	gender := "male"
	next := PreferencesPatch{
		AgeMin:       &age,
		LookingFor:   &gender,
		DealBreakers: []string{"smoking"},
		Filters:      map[string]string{FilterPets: "yes"},
	}.Apply(base)

	assert.Equal(t, 30, next.AgeMin)
	assert.Equal(t, MaxAge, next.AgeMax)
	assert.Equal(t, "male", next.LookingFor)
	assert.Equal(t, []string{"smoking"}, next.DealBreakers)
	assert.Empty(t, next.MustHaves)
	assert.Equal(t, map[string]string{FilterSmoking: "no", FilterPets: "yes"}, next.Filters)

	// the input is left untouched
	assert.Equal(t, MinAge, base.AgeMin)
	assert.NotContains(t, base.Filters, FilterPets)

	fromNil := PreferencesPatch{AgeMax: &age}.Apply(nil)
	require.NotNil(t, fromNil)
	assert.Equal(t, 30, fromNil.AgeMax)
	assert.Equal(t, DefaultDistanceKm, int(fromNil.MaxDistanceKm))
}

func TestNormalizeTags(t *testing.T) {
	assert.Equal(t, "hiking", NormalizeTag("  Hiking "))
	assert.Equal(t, map[string]struct{}{"coffee": {}, "wine": {}}, TagSet([]string{"Coffee", "coffee ", "", "WINE"}))
}

func TestDirectoryFilterMatches(t *testing.T) {
	p := &Profile{
		ID:         "u1",
		Age:        30,
		Gender:     "female",
		HeightCm:   170,
		Attributes: map[string]string{FilterSmoking: "no"},
		Interests:  []string{"Hiking", "dogs"},
	}

	assert.True(t, DirectoryFilter{}.Matches(p))
	assert.False(t, DirectoryFilter{}.Matches(nil))

	cases := []struct {
		name   string
		filter DirectoryFilter
		want   bool
	}{
		{"gender", DirectoryFilter{Gender: "female"}, true},
		{"other gender", DirectoryFilter{Gender: "male"}, false},
		{"age inside", DirectoryFilter{MinAge: 30, MaxAge: 30}, true},
		{"too young", DirectoryFilter{MinAge: 31}, false},
		{"too old", DirectoryFilter{MaxAge: 29}, false},
		{"attribute", DirectoryFilter{Attributes: map[string]string{FilterSmoking: "no"}}, true},
		{"attribute mismatch", DirectoryFilter{Attributes: map[string]string{FilterSmoking: "yes"}}, false},
		{"missing attribute", DirectoryFilter{Attributes: map[string]string{FilterPets: "yes"}}, false},
		{"height", DirectoryFilter{HeightMin: 160, HeightMax: 180}, true},
		{"too short", DirectoryFilter{HeightMin: 175}, false},
		{"must have", DirectoryFilter{MustHave: []string{"hiking", "DOGS"}}, true},
		{"missing must have", DirectoryFilter{MustHave: []string{"hiking", "cats"}}, false},
		{"deal breaker", DirectoryFilter{DealBreakers: []string{" hiking"}}, false},
		{"unrelated deal breaker", DirectoryFilter{DealBreakers: []string{"smoking"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Matches(p))
		})
	}
}

func TestMatchEvents(t *testing.T) {
	at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	m := NewMatchEvent("alice", "bob", at)
	assert.Equal(t, EventNewMatch, m.Type)
	assert.Equal(t, []string{"alice", "bob"}, m.Recipients)

	l := NewLikeEvent("alice", "bob", LikeKindSuperlike, at)
	assert.Equal(t, EventNewLike, l.Type)
	assert.Equal(t, []string{"bob"}, l.Recipients, "only the target hears about a like")
	assert.Equal(t, "alice", l.ActorID)
	assert.Equal(t, LikeKindSuperlike, l.Kind)
}
