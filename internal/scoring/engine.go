// Package scoring computes the multi-factor compatibility score used to
// rank candidates. It is pure: no I/O, no clock, no shared state, so
// Score is trivially safe to call from concurrent candidate workers and
// always returns the same result for the same inputs.
package scoring

import (
	"math"

	"github.com/astromatch/astromatch/internal/database"
)

// Fixed factor weights. These are the contract, not configuration.
const (
	InterestWeight = 30.0
	HobbyWeight    = 25.0
	HoroscopeCap   = 20.0
	AgeWeight      = 15.0
	LocalityWeight = 10.0

	sameZodiacPoints       = 7.0
	compatibleZodiacPoints = 5.0
	sameNakshatraPoints    = 7.0
	compatNakshatraPoints  = 6.0
	chineseZodiacPoints    = 6.0
)

// Age sub-score bands, in years of difference.
const (
	ageBandClose  = 5
	ageBandNear   = 10
	ageBandFar    = 15
	ageScoreClose = 15.0
	ageScoreNear  = 10.0
	ageScoreFar   = 5.0
)

// Breakdown is the per-factor decomposition of a score. It is computed
// per call and never persisted; the common-item lists exist for UI
// display.
type Breakdown struct {
	InterestScore   float64  `json:"interest_score"`
	HobbyScore      float64  `json:"hobby_score"`
	HoroscopeScore  float64  `json:"horoscope_score"`
	AgeScore        float64  `json:"age_score"`
	DistanceScore   float64  `json:"distance_score"`
	CommonInterests []string `json:"common_interests"`
	CommonHobbies   []string `json:"common_hobbies"`
}

// Score computes the directional compatibility of other as seen from
// self, in [0, 100], rounded to two decimal places. Directional means
// the overlap ratios use self's lists as denominator: the score answers
// "how much of my stated interests does this candidate satisfy", so
// Score(a, b) and Score(b, a) differ in general.
func Score(self, other *database.ProfileSnapshot) (float64, Breakdown) {
	breakdown := Breakdown{}

	breakdown.CommonInterests = intersect(self.Interests, other.Interests)
	breakdown.InterestScore = overlapScore(len(breakdown.CommonInterests), len(self.Interests), InterestWeight)

	breakdown.CommonHobbies = intersect(self.Hobbies, other.Hobbies)
	breakdown.HobbyScore = overlapScore(len(breakdown.CommonHobbies), len(self.Hobbies), HobbyWeight)

	breakdown.HoroscopeScore = horoscopeScore(self, other)
	breakdown.AgeScore = ageScore(self.Age, other.Age)
	breakdown.DistanceScore = localityScore(self.City, other.City)

	total := breakdown.InterestScore +
		breakdown.HobbyScore +
		breakdown.HoroscopeScore +
		breakdown.AgeScore +
		breakdown.DistanceScore

	return round2(total), breakdown
}

// overlapScore scales the shared-item ratio to the factor weight. A
// user with an empty list contributes zero rather than erroring, per
// the incomplete-profile rule.
func overlapScore(common, total int, weight float64) float64 {
	if total == 0 {
		return 0
	}
	return float64(common) / float64(total) * weight
}

// horoscopeScore sums three independent traditions and caps the total.
// A field missing on either side contributes nothing.
func horoscopeScore(self, other *database.ProfileSnapshot) float64 {
	score := 0.0

	if self.ZodiacSign != "" && other.ZodiacSign != "" {
		if self.ZodiacSign == other.ZodiacSign {
			score += sameZodiacPoints
		} else if zodiacCompatible(self.ZodiacSign, other.ZodiacSign) {
			score += compatibleZodiacPoints
		}
	}

	if self.Nakshatra != "" && other.Nakshatra != "" {
		if self.Nakshatra == other.Nakshatra {
			score += sameNakshatraPoints
		} else if nakshatraCompatible(self.Nakshatra, other.Nakshatra) {
			score += compatNakshatraPoints
		}
	}

	if self.ChineseZodiac != "" && other.ChineseZodiac != "" {
		if chineseZodiacCompatible(self.ChineseZodiac, other.ChineseZodiac) {
			score += chineseZodiacPoints
		}
	}

	return math.Min(score, HoroscopeCap)
}

func ageScore(selfAge, otherAge int) float64 {
	if selfAge <= 0 || otherAge <= 0 {
		return 0
	}

	diff := selfAge - otherAge
	if diff < 0 {
		diff = -diff
	}

	switch {
	case diff <= ageBandClose:
		return ageScoreClose
	case diff <= ageBandNear:
		return ageScoreNear
	case diff <= ageBandFar:
		return ageScoreFar
	default:
		return 0
	}
}

// localityScore compares city strings exactly, case-sensitive. Anyone
// outside the city still gets partial credit; a missing city on either
// side gets none.
func localityScore(selfCity, otherCity string) float64 {
	if selfCity == "" || otherCity == "" {
		return 0
	}
	if selfCity == otherCity {
		return LocalityWeight
	}
	return LocalityWeight / 2
}

// intersect preserves the order of the first list so the UI sees the
// user's own ordering.
func intersect(a, b database.StringList) []string {
	common := []string{}
	for _, item := range a {
		if b.Contains(item) {
			common = append(common, item)
		}
	}
	return common
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
