package util

import (
	"regexp"
	"strconv"
	"strings"
)

func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// priceRe matches the first currency-looking number in a text blob:
// optional dollar sign, thousands separators, optional cents.
var priceRe = regexp.MustCompile(`\$?(\d+(?:,\d{3})*(?:\.\d{2})?)`)

// ParsePrice extracts a non-negative decimal from price text like
// "$1,250.00" or "250 obo". Text with no recognizable numeric substring
// ("Contact for price") reports ok=false, never zero.
func ParsePrice(text string) (float64, bool) {
	m := priceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// TitleCase uppercases the first letter of each word and lowercases the
// rest, for normalizing short condition values ("like new" -> "Like New").
func TitleCase(s string) string {
	words := strings.Fields(strings.TrimSpace(s))
	for i, w := range words {
		lower := strings.ToLower(w)
		words[i] = strings.ToUpper(lower[:1]) + lower[1:]
	}
	return strings.Join(words, " ")
}
