package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugPattern   = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)
	slugSeparator = regexp.MustCompile(`[^a-z0-9]+`)
)

// IsSlug reports whether s is a lowercase URL-safe identifier such as "data-eng".
func IsSlug(s string) bool {
	return slugPattern.MatchString(s)
}

// Slugify derives a slug from a title: accents are stripped, everything else
// collapses to single dashes. "Ingénierie des données" becomes "ingenierie-des-donnees".
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}
	s := slugSeparator.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(s, "-")
}
