package models

import (
	"fmt"
	"time"
)

// Gender preference value that disables the gender filter
const GenderAll = "all"

const FilterAny = "any"

// Preference bounds
const (
	MinAge            = 18
	MaxAge            = 99
	MinDistanceKm     = 1
	MaxDistanceKm     = 100
	DefaultDistanceKm = 50
	MinHeightCm       = 140
	MaxHeightCm       = 220
)

// Categorical filter keys
const (
	FilterEducation        = "education"
	FilterOccupation       = "occupation"
	FilterRelationshipType = "relationship_type"
	FilterReligion         = "religion"
	FilterSmoking          = "smoking"
	FilterDrinking         = "drinking"
	FilterChildren         = "children"
	FilterPets             = "pets"
	FilterZodiacSign       = "zodiac_sign"
)

// CategoricalFilters lists the allowed values per filter key (FilterAny is always allowed)
var CategoricalFilters = map[string][]string{
	FilterEducation:        {"high_school", "bachelors", "masters", "phd"},
	FilterOccupation:       {"student", "employed", "self_employed", "retired"},
	FilterRelationshipType: {"casual", "serious", "friendship"},
	FilterReligion:         {"christian", "muslim", "hindu", "buddhist", "jewish", "other", "none"},
	FilterSmoking:          {"yes", "no", "sometimes"},
	FilterDrinking:         {"yes", "no", "sometimes"},
	FilterChildren:         {"yes", "no", "want"},
	FilterPets:             {"yes", "no", "allergic"},
	FilterZodiacSign: {"aries", "taurus", "gemini", "cancer", "leo", "virgo", "libra", "scorpio",
		"sagittarius", "capricorn", "aquarius", "pisces"},
}

var validGenders = map[string]bool{"male": true, "female": true, "other": true, GenderAll: true}

// Point is a geographic position in degrees
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

func (p Point) Validate() error {
	if p.Lon < -180 || p.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180,180]", p.Lon)
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90,90]", p.Lat)
	}
	return nil
}

// Preferences are the discovery settings a user configures for themselves
type Preferences struct {
	LookingFor    string            `json:"looking_for"`
	AgeMin        int               `json:"age_min"`
	AgeMax        int               `json:"age_max"`
	MaxDistanceKm float64           `json:"max_distance_km"`
	DealBreakers  []string          `json:"deal_breakers"`
	MustHaves     []string          `json:"must_haves"`
	Filters       map[string]string `json:"filters,omitempty"`
	HeightMin     int               `json:"height_min,omitempty"`
	HeightMax     int               `json:"height_max,omitempty"`
}

// DefaultPreferences mirrors what a freshly created account gets
func DefaultPreferences() *Preferences {
	return &Preferences{
		LookingFor:    GenderAll,
		AgeMin:        MinAge,
		AgeMax:        MaxAge,
		MaxDistanceKm: DefaultDistanceKm,
		DealBreakers:  []string{},
		MustHaves:     []string{},
		Filters:       map[string]string{},
		HeightMin:     MinHeightCm,
		HeightMax:     MaxHeightCm,
	}
}

func (p *Preferences) Validate() error {
	if p.LookingFor != "" && !validGenders[p.LookingFor] {
		return fmt.Errorf("unknown gender preference %q", p.LookingFor)
	}
	if p.AgeMin < MinAge || p.AgeMax > MaxAge {
		return fmt.Errorf("age range must be within [%d,%d]", MinAge, MaxAge)
	}
	if p.AgeMin > p.AgeMax {
		return fmt.Errorf("minimum age cannot be greater than maximum age")
	}
	if p.MaxDistanceKm < MinDistanceKm || p.MaxDistanceKm > MaxDistanceKm {
		return fmt.Errorf("distance must be within [%d,%d] km", MinDistanceKm, MaxDistanceKm)
	}
	if p.HeightMin != 0 || p.HeightMax != 0 {
		if p.HeightMin < MinHeightCm || p.HeightMax > MaxHeightCm || p.HeightMin > p.HeightMax {
			return fmt.Errorf("height range must be an ordered range within [%d,%d] cm", MinHeightCm, MaxHeightCm)
		}
	}
	for key, value := range p.Filters {
		allowed, ok := CategoricalFilters[key]
		if !ok {
			return fmt.Errorf("unknown filter %q", key)
		}
		if value == FilterAny {
			continue
		}
		if !contains(allowed, value) {
			return fmt.Errorf("invalid value %q for filter %q", value, key)
		}
	}
	return nil
}

// ActiveFilters returns only the categorical filters set to a non-default value
func (p *Preferences) ActiveFilters() map[string]string {
	out := make(map[string]string, len(p.Filters))
	for k, v := range p.Filters {
		if v != "" && v != FilterAny {
			out[k] = v
		}
	}
	return out
}

// HeightRangeSet reports whether the height range narrows the default one
func (p *Preferences) HeightRangeSet() bool {
	if p.HeightMin == 0 && p.HeightMax == 0 {
		return false
	}
	return p.HeightMin > MinHeightCm || p.HeightMax < MaxHeightCm
}

// Clone returns a deep copy
func (p *Preferences) Clone() *Preferences {
	if p == nil {
		return nil
	}
	c := *p
	c.DealBreakers = append(make([]string, 0, len(p.DealBreakers)), p.DealBreakers...)
	c.MustHaves = append(make([]string, 0, len(p.MustHaves)), p.MustHaves...)
	c.Filters = make(map[string]string, len(p.Filters))
	for k, v := range p.Filters {
		c.Filters[k] = v
	}
	return &c
}

// Profile is the directory's view of a user as consumed by matching
type Profile struct {
	ID         string            `json:"id"`
	Age        int               `json:"age"`
	Gender     string            `json:"gender"`
	HeightCm   int               `json:"height_cm,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	Interests  []string          `json:"interests"`
	Location   *Point            `json:"location,omitempty"`
	// Preferences is nil until the user has stored discovery settings
	Preferences *Preferences `json:"preferences,omitempty"`
	LastActive  time.Time    `json:"last_active"`
	Active      bool         `json:"active"`
}

// Discoverable reports whether the profile has what discovery and scoring need
func (p *Profile) Discoverable() bool {
	return p != nil && p.Preferences != nil && p.Location != nil
}

// Clone returns a deep copy
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.Interests = append([]string(nil), p.Interests...)
	if p.Attributes != nil {
		c.Attributes = make(map[string]string, len(p.Attributes))
		for k, v := range p.Attributes {
			c.Attributes[k] = v
		}
	}
	if p.Location != nil {
		loc := *p.Location
		c.Location = &loc
	}
	c.Preferences = p.Preferences.Clone()
	return &c
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// PreferencesPatch is a partial update; nil fields are left unchanged
type PreferencesPatch struct {
	LookingFor    *string           `json:"looking_for,omitempty"`
	AgeMin        *int              `json:"age_min,omitempty"`
	AgeMax        *int              `json:"age_max,omitempty"`
	MaxDistanceKm *float64          `json:"max_distance_km,omitempty"`
	DealBreakers  []string          `json:"deal_breakers,omitempty"`
	MustHaves     []string          `json:"must_haves,omitempty"`
	Filters       map[string]string `json:"filters,omitempty"`
	HeightMin     *int              `json:"height_min,omitempty"`
	HeightMax     *int              `json:"height_max,omitempty"`
}

// Apply returns a copy of p with the patch applied. Filters are merged key by key.
func (patch PreferencesPatch) Apply(p *Preferences) *Preferences {
	out := p.Clone()
	if out == nil {
		out = DefaultPreferences()
	}
	if patch.LookingFor != nil {
		out.LookingFor = *patch.LookingFor
	}
	if patch.AgeMin != nil {
		out.AgeMin = *patch.AgeMin
	}
	if patch.AgeMax != nil {
		out.AgeMax = *patch.AgeMax
	}
	if patch.MaxDistanceKm != nil {
		out.MaxDistanceKm = *patch.MaxDistanceKm
	}
	if patch.DealBreakers != nil {
		out.DealBreakers = append([]string(nil), patch.DealBreakers...)
	}
	if patch.MustHaves != nil {
		out.MustHaves = append([]string(nil), patch.MustHaves...)
	}
	for k, v := range patch.Filters {
		out.Filters[k] = v
	}
	if patch.HeightMin != nil {
		out.HeightMin = *patch.HeightMin
	}
	if patch.HeightMax != nil {
		out.HeightMax = *patch.HeightMax
	}
	return out
}
