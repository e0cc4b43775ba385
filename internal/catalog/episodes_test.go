package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crono/flox/internal/models"
)

func newTestEpisodeService() (*EpisodeService, *fakeEpisodeStore, *fakeProvider, *fakeSettings) {
	store := newFakeEpisodeStore()
	provider := &fakeProvider{}
	settings := &fakeSettings{}
	return NewEpisodeService(store, provider, settings, testLogger()), store, provider, settings
}

func TestEpisodeCreateIgnoresMovies(t *testing.T) {
	svc, store, provider, _ := newTestEpisodeService()

	err := svc.Create(context.Background(), &models.Item{TmdbID: 603, MediaType: models.MediaTypeMovie})
	require.NoError(t, err)

	assert.Equal(t, 0, provider.episodesCalls)
	assert.Equal(t, 0, store.replaceCalls)
}

func TestEpisodeCreateReplacesFromProvider(t *testing.T) {
	svc, store, provider, _ := newTestEpisodeService()
	provider.seasons = []models.Season{
		{SeasonNumber: 1, Episodes: []models.SeasonEpisode{
			{EpisodeNumber: 1, Name: "Winter Is Coming", AirDate: "2011-04-17"},
			{EpisodeNumber: 2, Name: "The Kingsroad", AirDate: "2011-04-24"},
		}},
		{SeasonNumber: 2, Episodes: []models.SeasonEpisode{
			{EpisodeNumber: 1, Name: "The North Remembers", AirDate: "2012-04-01"},
		}},
	}

	err := svc.Create(context.Background(), &models.Item{TmdbID: 1399, MediaType: models.MediaTypeTV})
	require.NoError(t, err)

	eps := store.episodes[1399]
	require.Len(t, eps, 3)
	assert.Equal(t, "Winter Is Coming", eps[0].Title)
	assert.Equal(t, 1, eps[0].Season)
	assert.Equal(t, 2, eps[2].Season)
	require.NotNil(t, eps[0].AirDate)
	assert.Equal(t, "2011-04-17", eps[0].AirDate.Format("2006-01-02"))
}

func TestEpisodeCreatePreservesSeenAndSrc(t *testing.T) {
	svc, store, provider, _ := newTestEpisodeService()

	src := "/media/got/s01e01.mkv"
	store.episodes[1399] = []*models.Episode{
		{ID: uuid.New(), TmdbID: 1399, Season: 1, Episode: 1, Title: "old name", Seen: true, Src: &src},
		{ID: uuid.New(), TmdbID: 1399, Season: 1, Episode: 2, Title: "gone upstream"},
	}
	provider.seasons = []models.Season{
		{SeasonNumber: 1, Episodes: []models.SeasonEpisode{
			{EpisodeNumber: 1, Name: "Winter Is Coming"},
			{EpisodeNumber: 3, Name: "Lord Snow"},
		}},
	}

	err := svc.Create(context.Background(), &models.Item{TmdbID: 1399, MediaType: models.MediaTypeTV})
	require.NoError(t, err)

	eps := store.episodes[1399]
	require.Len(t, eps, 2)

	// Matching episode keeps its watched state and local file, with the
	// provider title replacing the stored one.
	assert.True(t, eps[0].Seen)
	require.NotNil(t, eps[0].Src)
	assert.Equal(t, src, *eps[0].Src)
	assert.Equal(t, "Winter Is Coming", eps[0].Title)

	// New episode starts unseen.
	assert.Equal(t, 3, eps[1].Episode)
	assert.False(t, eps[1].Seen)
	assert.Nil(t, eps[1].Src)
}

func TestGetAllByProviderIDGroupsBySeason(t *testing.T) {
	svc, store, _, settings := newTestEpisodeService()
	settings.settings.EpisodeSpoilerProtection = true
	store.episodes[1399] = []*models.Episode{
		{TmdbID: 1399, Season: 1, Episode: 1},
		{TmdbID: 1399, Season: 1, Episode: 2},
		{TmdbID: 1399, Season: 2, Episode: 1},
	}

	groups, spoilers, err := svc.GetAllByProviderID(context.Background(), 1399)
	require.NoError(t, err)
	assert.True(t, spoilers)
	require.Len(t, groups, 2)
	assert.Equal(t, 1, groups[0].Season)
	assert.Len(t, groups[0].Episodes, 2)
	assert.Equal(t, 2, groups[1].Season)
	assert.Len(t, groups[1].Episodes, 1)
}

func TestToggleSeenFlips(t *testing.T) {
	svc, store, _, _ := newTestEpisodeService()
	id := uuid.New()
	store.episodes[1399] = []*models.Episode{{ID: id, TmdbID: 1399, Season: 1, Episode: 1, Seen: true}}

	require.NoError(t, svc.ToggleSeen(context.Background(), id))
	require.Len(t, store.seenCalls, 1)
	assert.Equal(t, id, store.seenCalls[0].ID)
	assert.False(t, store.seenCalls[0].Seen)
}

func TestToggleSeenUnknownIDIsNoop(t *testing.T) {
	svc, store, _, _ := newTestEpisodeService()

	require.NoError(t, svc.ToggleSeen(context.Background(), uuid.New()))
	assert.Empty(t, store.seenCalls)
}

func TestToggleSeason(t *testing.T) {
	svc, store, _, _ := newTestEpisodeService()

	require.NoError(t, svc.ToggleSeason(context.Background(), 1399, 2, true))
	require.Len(t, store.seasonCalls, 1)
	assert.Equal(t, 1399, store.seasonCalls[0].TmdbID)
	assert.Equal(t, 2, store.seasonCalls[0].Season)
	assert.True(t, store.seasonCalls[0].Seen)
}

func TestEpisodeFindBy(t *testing.T) {
	svc, store, _, _ := newTestEpisodeService()
	src := "/media/got/s01e02.mkv"
	store.episodes[1399] = []*models.Episode{
		{ID: uuid.New(), TmdbID: 1399, Season: 1, Episode: 1},
		{ID: uuid.New(), TmdbID: 1399, Season: 1, Episode: 2, Src: &src},
	}

	found, err := svc.FindBy(context.Background(), models.FindBySource, src, 0, 0, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 2, found[0].Episode)

	found, err = svc.FindBy(context.Background(), models.FindByTmdbID, "", 1399, 1, 1)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, 1, found[0].Episode)

	found, err = svc.FindBy(context.Background(), models.FindByTmdbID, "", 1399, 0, 0)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	_, err = svc.FindBy(context.Background(), models.FindByTitle, "x", 0, 0, 0)
	require.Error(t, err)
}
