package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/crono/flox/internal/models"
)

// Imported records carry their own timestamps; both must be bound in the
// insert so the database default cannot overwrite them.
func TestItemInsertBindsTimestamps(t *testing.T) {
	assert.True(t, strings.Contains(itemInsertQuery, "last_seen_at, created_at"))
	assert.True(t, strings.Contains(itemInsertQuery, "COALESCE($20, CURRENT_TIMESTAMP), COALESCE($21, CURRENT_TIMESTAMP)"))
}

func TestOrderClause(t *testing.T) {
	cases := []struct {
		field models.SortField
		desc  bool
		want  string
	}{
		{models.SortOwnRating, true, "i.user_rating DESC"},
		{models.SortTitle, false, "LOWER(i.title) ASC"},
		{models.SortRelease, true, "i.release_date DESC NULLS LAST"},
		{models.SortTmdbRating, true, "i.tmdb_rating DESC NULLS LAST"},
		{models.SortImdbRating, false, "i.imdb_rating ASC NULLS LAST"},
		{models.SortLastSeen, true, "i.last_seen_at DESC"},
		{"unknown", false, "i.last_seen_at ASC"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, orderClause(tc.field, tc.desc), "field %q", tc.field)
	}
}

// The history-aware ordering is fixed: relevant items first by recency,
// then historic items alphabetically, regardless of the requested direction.
func TestOrderClauseHistoric(t *testing.T) {
	want := "i.is_historic ASC, CASE WHEN i.is_historic THEN LOWER(i.title) END ASC, i.last_seen_at DESC"
	assert.Equal(t, want, orderClause(models.SortLastSeenHistory, true))
	assert.Equal(t, want, orderClause(models.SortLastSeenHistory, false))
}
