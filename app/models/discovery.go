package models

import "strings"

// Compatibility is the per-component breakdown of a 0-100 score
type Compatibility struct {
	Distance        float64 `json:"distance"`
	AgeOverlap      float64 `json:"age_overlap"`
	SharedInterests float64 `json:"shared_interests"`
	DealBreaker     float64 `json:"deal_breaker"`
	Total           float64 `json:"total"`
	DistanceKm      float64 `json:"distance_km"`
}

// DirectoryFilter carries the attribute constraints pushed down to a proximity query
type DirectoryFilter struct {
	ExcludeIDs []string
	// Gender is empty when any gender is acceptable
	Gender       string
	MinAge       int
	MaxAge       int
	Attributes   map[string]string
	HeightMin    int
	HeightMax    int
	MustHave     []string
	DealBreakers []string
}

// Candidate is one ranked discovery result
type Candidate struct {
	Profile *Profile      `json:"profile"`
	Score   Compatibility `json:"score"`
	// SuperLiked is set when this candidate super-liked the requester
	SuperLiked bool `json:"super_liked,omitempty"`
}

// DiscoverPage is one page of discovery output
type DiscoverPage struct {
	Candidates []Candidate `json:"candidates"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	HasMore    bool        `json:"has_more"`
}

// Block is one directed block entry
type Block struct {
	BlockerID   string `json:"blocker_id"`
	BlockedID   string `json:"blocked_id"`
	Reason      string `json:"reason"`
	Description string `json:"description,omitempty"`
}

// Block reasons
var BlockReasons = []string{"harassment", "spam", "inappropriate", "other"}

// NormalizeTag folds case and surrounding space so tags compare as set members
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// TagSet returns the normalized, non-empty tags as a set
func TagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if n := NormalizeTag(t); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// Matches reports whether p passes every attribute constraint of the filter.
// Activity, exclusion and distance are checked by the caller.
func (f DirectoryFilter) Matches(p *Profile) bool {
	if p == nil {
		return false
	}
	if f.Gender != "" && p.Gender != f.Gender {
		return false
	}
	if f.MinAge > 0 && p.Age < f.MinAge {
		return false
	}
	if f.MaxAge > 0 && p.Age > f.MaxAge {
		return false
	}
	for key, want := range f.Attributes {
		if p.Attributes[key] != want {
			return false
		}
	}
	if f.HeightMin > 0 && p.HeightCm < f.HeightMin {
		return false
	}
	if f.HeightMax > 0 && p.HeightCm > f.HeightMax {
		return false
	}

	interests := TagSet(p.Interests)
	for tag := range TagSet(f.MustHave) {
		if _, ok := interests[tag]; !ok {
			return false
		}
	}
	for tag := range TagSet(f.DealBreakers) {
		if _, ok := interests[tag]; ok {
			return false
		}
	}
	return true
}
