package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crono/flox/internal/models"
)

func TestResolveFileMovieBySlug(t *testing.T) {
	svc, f := newTestService(30)
	id := uuid.New()
	f.items.items[id] = &models.Item{ID: id, TmdbID: 603, Title: "The Matrix", Slug: "the-matrix", MediaType: models.MediaTypeMovie}

	res, err := svc.ResolveFile(context.Background(), "The.Matrix.1999.1080p.BluRay.x264.mkv")
	require.NoError(t, err)
	require.NotNil(t, res.Item)
	assert.Equal(t, id, res.Item.ID)
	assert.Nil(t, res.Episode)
	assert.Equal(t, "The Matrix", res.Parsed.Title)
}

func TestResolveFileEpisode(t *testing.T) {
	svc, f := newTestService(30)
	id := uuid.New()
	f.items.items[id] = &models.Item{ID: id, TmdbID: 1399, Title: "Game of Thrones", Slug: "game-of-thrones", MediaType: models.MediaTypeTV}
	epID := uuid.New()
	f.episodes.episodes[1399] = []*models.Episode{
		{ID: epID, TmdbID: 1399, Season: 1, Episode: 2, Title: "The Kingsroad"},
	}

	res, err := svc.ResolveFile(context.Background(), "Game of Thrones - S01E02.mkv")
	require.NoError(t, err)
	require.NotNil(t, res.Item)
	assert.Equal(t, id, res.Item.ID)
	require.NotNil(t, res.Episode)
	assert.Equal(t, epID, res.Episode.ID)
}

func TestResolveFileInlineProviderID(t *testing.T) {
	svc, f := newTestService(30)
	id := uuid.New()
	f.items.items[id] = &models.Item{ID: id, TmdbID: 603, Title: "Renamed Completely", Slug: "renamed-completely", MediaType: models.MediaTypeMovie}

	res, err := svc.ResolveFile(context.Background(), "whatever [tmdbid-603].mkv")
	require.NoError(t, err)
	require.NotNil(t, res.Item)
	assert.Equal(t, id, res.Item.ID)
}

func TestResolveFileNoMatch(t *testing.T) {
	svc, _ := newTestService(30)

	res, err := svc.ResolveFile(context.Background(), "Some Unknown Movie (2020).mkv")
	require.NoError(t, err)
	assert.Nil(t, res.Item)
	assert.Equal(t, "Some Unknown Movie", res.Parsed.Title)
}
