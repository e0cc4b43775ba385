package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crono/flox/internal/models"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"The Matrix", "the-matrix"},
		{"Amélie", "amelie"},
		{"WALL·E", "wall-e"},
		{"Ocean's Eleven", "ocean-s-eleven"},
		{"  spaced   out  ", "spaced-out"},
		{"Léon: The Professional", "leon-the-professional"},
		{"1917", "1917"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), "input %q", tc.in)
	}

	// Same input, same slug.
	assert.Equal(t, Slugify("Die Hard"), Slugify("Die Hard"))
}

func TestTrailerKey(t *testing.T) {
	assert.Nil(t, trailerKey(nil))
	assert.Nil(t, trailerKey([]models.Video{}))

	key := trailerKey([]models.Video{{Key: "first"}, {Key: "second"}})
	require.NotNil(t, key)
	assert.Equal(t, "first", *key)
}

func TestParseAirDate(t *testing.T) {
	assert.Nil(t, parseAirDate(""))
	assert.Nil(t, parseAirDate("not-a-date"))

	d := parseAirDate("2011-04-17")
	require.NotNil(t, d)
	assert.Equal(t, "2011-04-17", d.Format("2006-01-02"))
}
