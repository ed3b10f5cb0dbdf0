package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/astromatch/astromatch/internal/database"
)

func profile(mods ...func(*database.ProfileSnapshot)) *database.ProfileSnapshot {
	p := &database.ProfileSnapshot{
		UserID:        "user-a",
		Name:          "A",
		Age:           28,
		City:          "Bengaluru",
		Interests:     database.StringList{"Technology", "Art"},
		Hobbies:       database.StringList{"Reading"},
		ZodiacSign:    "Leo",
		Nakshatra:     "Magha",
		ChineseZodiac: "Dragon",
		IsComplete:    true,
	}
	for _, mod := range mods {
		mod(p)
	}
	return p
}

func TestScore_WorkedExample(t *testing.T) {
	self := profile()
	other := profile(func(p *database.ProfileSnapshot) {
		p.UserID = "user-b"
		p.Age = 31
		p.Interests = database.StringList{"Technology", "Food"}
		p.Hobbies = database.StringList{"Reading", "Cycling"}
		p.Nakshatra = ""
		p.ChineseZodiac = ""
	})

	score, breakdown := Score(self, other)

	// 1 of 2 interests shared: 15. All hobbies shared: 25. Same zodiac
	// sign: 7. Age gap 3: 15. Same city: 10.
	assert.Equal(t, 15.0, breakdown.InterestScore)
	assert.Equal(t, 25.0, breakdown.HobbyScore)
	assert.Equal(t, 7.0, breakdown.HoroscopeScore)
	assert.Equal(t, 15.0, breakdown.AgeScore)
	assert.Equal(t, 10.0, breakdown.DistanceScore)
	assert.Equal(t, 72.0, score)

	assert.Equal(t, []string{"Technology"}, breakdown.CommonInterests)
	assert.Equal(t, []string{"Reading"}, breakdown.CommonHobbies)
}

func TestScore_IsDirectional(t *testing.T) {
	a := profile(func(p *database.ProfileSnapshot) {
		p.Interests = database.StringList{"Technology"}
	})
	b := profile(func(p *database.ProfileSnapshot) {
		p.UserID = "user-b"
		p.Interests = database.StringList{"Technology", "Food", "Music", "Sports"}
	})

	forward, _ := Score(a, b)
	reverse, _ := Score(b, a)

	// a's single interest is fully covered; b's list is only a quarter
	// covered. The remaining factors are symmetric here.
	assert.Greater(t, forward, reverse)
}

func TestScore_Deterministic(t *testing.T) {
	self := profile()
	other := profile(func(p *database.ProfileSnapshot) { p.UserID = "user-b" })

	first, _ := Score(self, other)
	for i := 0; i < 10; i++ {
		again, _ := Score(self, other)
		assert.Equal(t, first, again)
	}
}

func TestScore_Bounds(t *testing.T) {
	tests := []struct {
		name  string
		self  *database.ProfileSnapshot
		other *database.ProfileSnapshot
	}{
		{"identical twins", profile(), profile(func(p *database.ProfileSnapshot) { p.UserID = "user-b" })},
		{"nothing in common", profile(), profile(func(p *database.ProfileSnapshot) {
			p.UserID = "user-b"
			p.Age = 60
			p.City = "Delhi"
			p.Interests = database.StringList{"Knitting"}
			p.Hobbies = database.StringList{"Chess"}
			p.ZodiacSign = "Virgo"
			p.Nakshatra = "Hasta"
			p.ChineseZodiac = "Horse"
		})},
		{"empty profiles", &database.ProfileSnapshot{UserID: "x"}, &database.ProfileSnapshot{UserID: "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := Score(tt.self, tt.other)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 100.0)
		})
	}
}

func TestScore_IncompleteProfileContributesZero(t *testing.T) {
	self := profile()
	other := &database.ProfileSnapshot{UserID: "user-b"}

	score, breakdown := Score(self, other)

	assert.Equal(t, 0.0, breakdown.InterestScore)
	assert.Equal(t, 0.0, breakdown.HobbyScore)
	assert.Equal(t, 0.0, breakdown.HoroscopeScore)
	assert.Equal(t, 0.0, breakdown.AgeScore)
	assert.Equal(t, 0.0, breakdown.DistanceScore)
	assert.Equal(t, 0.0, score)
}

func TestScore_EmptySelfListScoresZeroNotError(t *testing.T) {
	self := profile(func(p *database.ProfileSnapshot) {
		p.Interests = nil
		p.Hobbies = nil
	})
	other := profile(func(p *database.ProfileSnapshot) { p.UserID = "user-b" })

	_, breakdown := Score(self, other)

	assert.Equal(t, 0.0, breakdown.InterestScore)
	assert.Equal(t, 0.0, breakdown.HobbyScore)
	assert.Equal(t, []string{}, breakdown.CommonInterests)
}

func TestAgeScore_Bands(t *testing.T) {
	tests := []struct {
		name     string
		selfAge  int
		otherAge int
		expected float64
	}{
		{"same age", 30, 30, 15.0},
		{"five years apart", 30, 35, 15.0},
		{"six years apart", 30, 36, 10.0},
		{"ten years apart", 30, 40, 10.0},
		{"fifteen years apart", 30, 45, 5.0},
		{"sixteen years apart", 30, 46, 0.0},
		{"symmetric", 45, 30, 5.0},
		{"missing self age", 0, 30, 0.0},
		{"missing other age", 30, 0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ageScore(tt.selfAge, tt.otherAge))
		})
	}
}

func TestLocalityScore(t *testing.T) {
	assert.Equal(t, 10.0, localityScore("Bengaluru", "Bengaluru"))
	assert.Equal(t, 5.0, localityScore("Bengaluru", "Mumbai"))
	assert.Equal(t, 0.0, localityScore("", "Mumbai"))
	assert.Equal(t, 0.0, localityScore("Bengaluru", ""))
	// Comparison is case-sensitive by contract.
	assert.Equal(t, 5.0, localityScore("Bengaluru", "bengaluru"))
}

func TestHoroscopeScore_CapAndPartials(t *testing.T) {
	self := profile()

	compatible := profile(func(p *database.ProfileSnapshot) {
		p.UserID = "user-b"
		p.ZodiacSign = "Aries"
		p.Nakshatra = "Bharani"
		p.ChineseZodiac = "Rat"
	})
	// Compatible zodiac 5 + compatible chinese 6, nakshatras differ.
	assert.Equal(t, 11.0, horoscopeScore(self, compatible))

	// Same sign and nakshatra plus a compatible chinese animal lands
	// exactly on the cap. The same animal twice scores nothing; only
	// table pairs do.
	capped := profile(func(p *database.ProfileSnapshot) {
		p.UserID = "user-b"
		p.ChineseZodiac = "Rat"
	})
	assert.Equal(t, HoroscopeCap, horoscopeScore(self, capped))

	identical := profile(func(p *database.ProfileSnapshot) { p.UserID = "user-b" })
	assert.Equal(t, 14.0, horoscopeScore(self, identical))

	missing := profile(func(p *database.ProfileSnapshot) {
		p.UserID = "user-b"
		p.ZodiacSign = ""
		p.Nakshatra = ""
		p.ChineseZodiac = "Monkey"
	})
	assert.Equal(t, 6.0, horoscopeScore(self, missing))
}

func TestScore_RoundsToTwoDecimals(t *testing.T) {
	self := profile(func(p *database.ProfileSnapshot) {
		p.Interests = database.StringList{"A", "B", "C"}
		p.Hobbies = nil
		p.ZodiacSign = ""
		p.Nakshatra = ""
		p.ChineseZodiac = ""
		p.Age = 0
		p.City = ""
	})
	other := profile(func(p *database.ProfileSnapshot) {
		p.UserID = "user-b"
		p.Interests = database.StringList{"A"}
		p.Hobbies = nil
		p.ZodiacSign = ""
		p.Nakshatra = ""
		p.ChineseZodiac = ""
		p.Age = 0
		p.City = ""
	})

	// 1/3 of 30 is a repeating decimal; the total must come back rounded.
	score, _ := Score(self, other)
	assert.Equal(t, 10.0, score)
}
