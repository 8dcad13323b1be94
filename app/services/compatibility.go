package services

import (
	"math"

	"matchcore/app/geo"
	"matchcore/app/models"
)

// Component ceilings of the compatibility score
const (
	distanceWeight   = 30.0
	ageOverlapWeight = 20.0
	interestWeight   = 30.0
	dealBreakerScore = 20.0
	maxScore         = 100.0
)

// Score computes the compatibility of b from a's point of view. The distance
// component uses only a's max distance, so Score(a, b) != Score(b, a) in general.
// Profiles without preferences or a location contribute zero to the components
// that need them.
func Score(a, b *models.Profile) models.Compatibility {
	var c models.Compatibility
	if a == nil || b == nil {
		return c
	}

	if a.Location != nil && b.Location != nil {
		c.DistanceKm = geo.HaversineKm(*a.Location, *b.Location)
		if a.Preferences != nil {
			c.Distance = distanceComponent(c.DistanceKm, a.Preferences.MaxDistanceKm)
		}
	}
	if a.Preferences != nil && b.Preferences != nil {
		c.AgeOverlap = ageOverlapComponent(a.Preferences, b.Preferences)
	}
	c.SharedInterests = interestComponent(a.Interests, b.Interests)
	c.DealBreaker = dealBreakerComponent(a.Preferences, b.Preferences)

	c.Total = math.Min(maxScore, c.Distance+c.AgeOverlap+c.SharedInterests+c.DealBreaker)
	return c
}

func distanceComponent(distanceKm, maxDistanceKm float64) float64 {
	if maxDistanceKm <= 0 {
		return 0
	}
	return math.Max(0, distanceWeight-(distanceKm/maxDistanceKm)*distanceWeight)
}

func ageOverlapComponent(a, b *models.Preferences) float64 {
	if a.AgeMin <= b.AgeMax && b.AgeMin <= a.AgeMax {
		return ageOverlapWeight
	}
	return 0
}

// interestComponent is the Jaccard index of the two interest sets scaled to 30
func interestComponent(a, b []string) float64 {
	setA := models.TagSet(a)
	setB := models.TagSet(b)

	union := len(setA)
	shared := 0
	for tag := range setB {
		if _, ok := setA[tag]; ok {
			shared++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union) * interestWeight
}

// dealBreakerComponent collapses to 0 when either side's deal-breakers hit the other's must-haves
func dealBreakerComponent(a, b *models.Preferences) float64 {
	if a == nil || b == nil {
		return dealBreakerScore
	}
	if intersects(a.DealBreakers, b.MustHaves) || intersects(b.DealBreakers, a.MustHaves) {
		return 0
	}
	return dealBreakerScore
}

func intersects(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := models.TagSet(b)
	for _, t := range a {
		if _, ok := set[models.NormalizeTag(t)]; ok {
			return true
		}
	}
	return false
}
