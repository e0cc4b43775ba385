package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilenameWellNamedMovie(t *testing.T) {
	p := ParseFilename("The Matrix (1999).mkv")
	assert.Equal(t, "The Matrix", p.Title)
	require.NotNil(t, p.Year)
	assert.Equal(t, 1999, *p.Year)
	assert.Equal(t, "mkv", p.Container)
	assert.False(t, p.IsTV())
}

func TestParseFilenameSceneRelease(t *testing.T) {
	p := ParseFilename("Blade.Runner.2049.2017.2160p.WEB-DL.x265-GROUP.mkv")
	assert.Equal(t, "Blade Runner 2049", p.Title)
	require.NotNil(t, p.Year)
	assert.Equal(t, 2017, *p.Year)
	assert.Equal(t, "2160p", p.Resolution)
	assert.Equal(t, "web", p.Source)
}

func TestParseFilenameEpisodeMarkers(t *testing.T) {
	cases := []struct {
		in      string
		title   string
		season  int
		episode int
	}{
		{"Game of Thrones - S01E02.mkv", "Game of Thrones", 1, 2},
		{"The.Office.S03E05.720p.HDTV.x264.mkv", "The Office", 3, 5},
		{"Breaking Bad 2x07.mp4", "Breaking Bad", 2, 7},
		{"Twin Peaks Season 2 Episode 1.avi", "Twin Peaks", 2, 1},
	}
	for _, tc := range cases {
		p := ParseFilename(tc.in)
		assert.Equal(t, tc.title, p.Title, "input %q", tc.in)
		assert.Equal(t, tc.season, p.Season, "input %q", tc.in)
		assert.Equal(t, tc.episode, p.Episode, "input %q", tc.in)
		assert.True(t, p.IsTV(), "input %q", tc.in)
	}
}

func TestParseFilenameShowWithYear(t *testing.T) {
	p := ParseFilename("Doctor Who (2005) - S01E01.mkv")
	assert.Equal(t, "Doctor Who", p.Title)
	require.NotNil(t, p.Year)
	assert.Equal(t, 2005, *p.Year)
	assert.Equal(t, 1, p.Season)
	assert.Equal(t, 1, p.Episode)
}

func TestParseFilenameInlineProviderIDs(t *testing.T) {
	p := ParseFilename("The Matrix (1999) [tmdbid-603].mkv")
	assert.Equal(t, 603, p.TmdbID)
	assert.Equal(t, "The Matrix", p.Title)

	p = ParseFilename("The Matrix (1999) {imdb-tt0133093}.mkv")
	assert.Equal(t, "tt0133093", p.ImdbID)
	assert.Equal(t, 0, p.TmdbID)
}

func TestParseFilenameNumericTitle(t *testing.T) {
	// A bare numeric name is a title, not a year breakpoint.
	p := ParseFilename("1917.mkv")
	assert.Equal(t, "1917", p.Title)
}

func TestParseFilenameFullPath(t *testing.T) {
	p := ParseFilename("/media/tv/Game of Thrones/Game of Thrones - S04E10.mkv")
	assert.Equal(t, "Game of Thrones", p.Title)
	assert.Equal(t, 4, p.Season)
	assert.Equal(t, 10, p.Episode)
}
