package catalog

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/crono/flox/internal/models"
)

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives the URL-safe slug from a title: diacritics folded,
// lowercased, non-alphanumeric runs collapsed to single hyphens. The same
// title always produces the same slug.
func Slugify(title string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, title)
	if err != nil {
		folded = title
	}
	slug := slugStrip.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-")
}

// trailerKey picks the video key from a details document, or "" when the
// primary video list is empty and the fallback has to be consulted.
func trailerKey(videos []models.Video) *string {
	if len(videos) == 0 {
		return nil
	}
	key := videos[0].Key
	return &key
}

// parseAirDate parses a provider date string (YYYY-MM-DD). Empty or
// malformed dates become nil.
func parseAirDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func floatPtr(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}
