package scoring

// Compatibility tables are immutable process-wide constants. Each table
// stores one direction only; lookups must check both orderings.

var zodiacCompatibility = map[string][]string{
	"Aries":       {"Leo", "Sagittarius", "Gemini", "Aquarius"},
	"Taurus":      {"Virgo", "Capricorn", "Cancer", "Pisces"},
	"Gemini":      {"Libra", "Aquarius", "Aries", "Leo"},
	"Cancer":      {"Scorpio", "Pisces", "Taurus", "Virgo"},
	"Leo":         {"Aries", "Sagittarius", "Gemini", "Libra"},
	"Virgo":       {"Taurus", "Capricorn", "Cancer", "Scorpio"},
	"Libra":       {"Gemini", "Aquarius", "Leo", "Sagittarius"},
	"Scorpio":     {"Cancer", "Pisces", "Virgo", "Capricorn"},
	"Sagittarius": {"Aries", "Leo", "Libra", "Aquarius"},
	"Capricorn":   {"Taurus", "Virgo", "Scorpio", "Pisces"},
	"Aquarius":    {"Gemini", "Libra", "Aries", "Sagittarius"},
	"Pisces":      {"Cancer", "Scorpio", "Taurus", "Capricorn"},
}

var chineseZodiacCompatibility = map[string][]string{
	"Rat":     {"Dragon", "Monkey", "Ox"},
	"Ox":      {"Rat", "Snake", "Rooster"},
	"Tiger":   {"Horse", "Dog", "Pig"},
	"Rabbit":  {"Goat", "Pig", "Dog"},
	"Dragon":  {"Rat", "Monkey", "Rooster"},
	"Snake":   {"Ox", "Rooster", "Monkey"},
	"Horse":   {"Tiger", "Goat", "Dog"},
	"Goat":    {"Rabbit", "Horse", "Pig"},
	"Monkey":  {"Rat", "Dragon", "Snake"},
	"Rooster": {"Ox", "Snake", "Dragon"},
	"Dog":     {"Tiger", "Rabbit", "Horse"},
	"Pig":     {"Rabbit", "Goat", "Tiger"},
}

// zodiacCompatible reports whether two western zodiac signs appear in
// the compatibility table, in either direction.
func zodiacCompatible(sign1, sign2 string) bool {
	return tableContains(zodiacCompatibility, sign1, sign2) ||
		tableContains(zodiacCompatibility, sign2, sign1)
}

// chineseZodiacCompatible reports whether two Chinese zodiac animals
// appear in the compatibility table, in either direction.
func chineseZodiacCompatible(animal1, animal2 string) bool {
	return tableContains(chineseZodiacCompatibility, animal1, animal2) ||
		tableContains(chineseZodiacCompatibility, animal2, animal1)
}

// nakshatraCompatible is table-driven in principle; the current table
// recognizes exact matches only. Full ashta-koota matching is far more
// involved and deliberately out of scope here.
func nakshatraCompatible(nakshatra1, nakshatra2 string) bool {
	return nakshatra1 == nakshatra2
}

func tableContains(table map[string][]string, key, value string) bool {
	for _, v := range table[key] {
		if v == value {
			return true
		}
	}
	return false
}
