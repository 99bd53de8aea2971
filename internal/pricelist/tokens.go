package pricelist

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const amountPattern = `(?:\d{1,3}(?:[ \x{00a0}]\d{3})+|\d+)(?:[.,]\d{1,2})?`

var (
	// Examples: "150 zł", "od 120 zł", "99,99 PLN", "100 - 200 zł", "45€",
	// "1 200 zł" (space or NBSP thousands separator)
	priceRe = regexp.MustCompile(`(?i)(?:\b(?:od|from)\s+)?` + amountPattern + `(?:\s*[-–]\s*` + amountPattern + `)?\s*(?:zł|zl|pln|eur|€|usd|\$|gbp|£)`)
	// Examples: "60 min", "90min.", "1,5 h" (matches "5 h"), "2 godziny"
	durationRe = regexp.MustCompile(`(?i)\b(\d+)\s*(minut[ay]?|min|godzin[ay]?|godz|hours?|h)\.?(?:[^\p{L}]|$)`)
)

// FindPrice locates the first currency amount in s. The returned token keeps
// any "from" marker and range so fixed-price classification can see them.
func FindPrice(s string) (token string, start, end int, ok bool) {
	loc := priceRe.FindStringIndex(s)
	if loc == nil {
		return "", 0, 0, false
	}
	return strings.TrimSpace(s[loc[0]:loc[1]]), loc[0], loc[1], true
}

// HasPrice reports whether s contains a currency amount.
func HasPrice(s string) bool {
	return priceRe.MatchString(s)
}

// FindDuration returns the first "<integer> <minute|hour unit>" token in s,
// or an empty string.
func FindDuration(s string) string {
	m := durationRe.FindStringSubmatchIndex(s)
	if m == nil {
		return ""
	}
	return s[m[2]:m[5]]
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
