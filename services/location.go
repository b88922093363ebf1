package services

import (
	"regexp"
	"strings"
	"unicode"

	"property-scraper/models"
)

// knownCities is searched in order; the first word-boundary match wins.
var knownCities = []string{
	"lagos", "abuja", "port harcourt", "uyo", "enugu", "benin",
	"ilorin", "owerri", "calabar", "jos", "kaduna",
	"oyo", "delta", "ogun", "osun", "edo",
}

var (
	cityPatterns   = compileCityPatterns(knownCities)
	tokenSeparator = regexp.MustCompile(`[,\s]+`)
	punctuation    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

func compileCityPatterns(cities []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(cities))
	for i, c := range cities {
		out[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(c) + `\b`)
	}
	return out
}

// ResolveCity derives a title-cased city from free-text location: the first
// known city named in it, else its last comma/space separated token.
// Blank or missing locations resolve to nil.
func ResolveCity(location *string) *string {
	loc := strings.TrimSpace(strings.ToLower(models.Deref(location)))
	if loc == "" {
		return nil
	}

	for i, re := range cityPatterns {
		if re.MatchString(loc) {
			return models.StringPtr(TitleCase(knownCities[i]))
		}
	}

	parts := tokenSeparator.Split(loc, -1)
	for i := len(parts) - 1; i >= 0; i-- {
		if parts[i] != "" {
			return models.StringPtr(TitleCase(parts[i]))
		}
	}
	return nil
}

// CleanCity strips punctuation from a resolved city and re-title-cases it.
func CleanCity(city *string) *string {
	if city == nil {
		return nil
	}
	s := strings.TrimSpace(punctuation.ReplaceAllString(*city, ""))
	if s == "" {
		return nil
	}
	return models.StringPtr(TitleCase(s))
}

// TitleCase upper-cases the first letter of every letter run and lower-cases
// the rest, so "port harcourt" becomes "Port Harcourt" and "ikeja-gra"
// becomes "Ikeja-Gra".
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
