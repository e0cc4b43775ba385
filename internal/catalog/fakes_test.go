package catalog

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/crono/flox/internal/models"
)

// In-memory fakes for the catalog collaborators. Each fake records the
// calls the tests care about.

type fakeItemStore struct {
	items map[uuid.UUID]*models.Item

	createErr   error
	updateCalls int
	deleteOrder *[]string

	lastSeenCalls []int
	ratingCalls   []int

	historicCalls []struct {
		Historic      bool
		StampLastSeen bool
	}

	titleRefs []models.TitleRef
	staleIDs  []uuid.UUID

	listRows   []*models.ItemWithStats
	lastFilter models.ListFilter
}

func newFakeItemStore() *fakeItemStore {
	return &fakeItemStore{items: map[uuid.UUID]*models.Item{}}
}

// Create mirrors the repository's timestamp handling: supplied values are
// kept, zero values fall back to the clock, and the result is written back
// onto the passed item the way a RETURNING scan would.
func (f *fakeItemStore) Create(ctx context.Context, item *models.Item) error {
	if f.createErr != nil {
		return f.createErr
	}
	now := time.Now()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.LastSeenAt.IsZero() {
		item.LastSeenAt = now
	}
	item.RefreshedAt = now
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeItemStore) Update(ctx context.Context, item *models.Item) error {
	f.updateCalls++
	copied := *item
	f.items[item.ID] = &copied
	return nil
}

func (f *fakeItemStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return f.items[id], nil
}

func (f *fakeItemStore) GetByTmdbID(ctx context.Context, tmdbID int) (*models.Item, error) {
	for _, it := range f.items {
		if it.TmdbID == tmdbID {
			return it, nil
		}
	}
	return nil, nil
}

func (f *fakeItemStore) GetByTitle(ctx context.Context, title string, mediaType models.MediaType) (*models.Item, error) {
	for _, it := range f.items {
		if it.Title == title && (mediaType == "" || it.MediaType == mediaType) {
			return it, nil
		}
	}
	return nil, nil
}

func (f *fakeItemStore) GetBySlug(ctx context.Context, slug string, mediaType models.MediaType) (*models.Item, error) {
	for _, it := range f.items {
		if it.Slug == slug && (mediaType == "" || it.MediaType == mediaType) {
			return it, nil
		}
	}
	return nil, nil
}

func (f *fakeItemStore) GetBySrc(ctx context.Context, src string) (*models.Item, error) {
	for _, it := range f.items {
		if it.Src != nil && *it.Src == src {
			return it, nil
		}
	}
	return nil, nil
}

func (f *fakeItemStore) ListTitles(ctx context.Context, mediaType models.MediaType) ([]models.TitleRef, error) {
	return f.titleRefs, nil
}

func (f *fakeItemStore) Delete(ctx context.Context, id uuid.UUID) error {
	if f.deleteOrder != nil {
		*f.deleteOrder = append(*f.deleteOrder, "item")
	}
	delete(f.items, id)
	return nil
}

func (f *fakeItemStore) SetLastSeen(ctx context.Context, tmdbID int) error {
	f.lastSeenCalls = append(f.lastSeenCalls, tmdbID)
	return nil
}

func (f *fakeItemStore) SetRating(ctx context.Context, id uuid.UUID, rating int) error {
	f.ratingCalls = append(f.ratingCalls, rating)
	if it, ok := f.items[id]; ok {
		it.UserRating = rating
		it.Watchlist = false
	}
	return nil
}

func (f *fakeItemStore) SetHistoric(ctx context.Context, id uuid.UUID, historic, stampLastSeen bool) error {
	f.historicCalls = append(f.historicCalls, struct {
		Historic      bool
		StampLastSeen bool
	}{historic, stampLastSeen})
	if it, ok := f.items[id]; ok {
		it.IsHistoric = historic
	}
	return nil
}

func (f *fakeItemStore) ListStale(ctx context.Context) ([]uuid.UUID, error) {
	return f.staleIDs, nil
}

// List applies the same historic composite ordering as the SQL clause:
// non-historic first by recency, then historic alphabetically.
func (f *fakeItemStore) List(ctx context.Context, filter models.ListFilter) ([]*models.ItemWithStats, error) {
	f.lastFilter = filter
	rows := append([]*models.ItemWithStats(nil), f.listRows...)
	if filter.OrderBy == models.SortLastSeenHistory {
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			if a.IsHistoric != b.IsHistoric {
				return !a.IsHistoric
			}
			if a.IsHistoric {
				return strings.ToLower(a.Title) < strings.ToLower(b.Title)
			}
			return a.LastSeenAt.After(b.LastSeenAt)
		})
	}
	return rows, nil
}

func (f *fakeItemStore) Search(ctx context.Context, title string) ([]*models.ItemWithStats, error) {
	return nil, nil
}

type fakeEpisodeStore struct {
	episodes map[int][]*models.Episode

	replaceCalls int
	replaceErr   error
	deleteOrder  *[]string

	seenCalls []struct {
		ID   uuid.UUID
		Seen bool
	}
	seasonCalls []struct {
		TmdbID int
		Season int
		Seen   bool
	}
}

func newFakeEpisodeStore() *fakeEpisodeStore {
	return &fakeEpisodeStore{episodes: map[int][]*models.Episode{}}
}

func (f *fakeEpisodeStore) ReplaceForItem(ctx context.Context, tmdbID int, episodes []*models.Episode) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaceCalls++
	f.episodes[tmdbID] = episodes
	return nil
}

func (f *fakeEpisodeStore) DeleteByTmdbID(ctx context.Context, tmdbID int) error {
	if f.deleteOrder != nil {
		*f.deleteOrder = append(*f.deleteOrder, "episodes")
	}
	delete(f.episodes, tmdbID)
	return nil
}

func (f *fakeEpisodeStore) GetByTmdbID(ctx context.Context, tmdbID int) ([]*models.Episode, error) {
	return f.episodes[tmdbID], nil
}

func (f *fakeEpisodeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Episode, error) {
	for _, eps := range f.episodes {
		for _, ep := range eps {
			if ep.ID == id {
				return ep, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeEpisodeStore) GetBySrc(ctx context.Context, src string) (*models.Episode, error) {
	for _, eps := range f.episodes {
		for _, ep := range eps {
			if ep.Src != nil && *ep.Src == src {
				return ep, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeEpisodeStore) GetByNumber(ctx context.Context, tmdbID, season, episode int) (*models.Episode, error) {
	for _, ep := range f.episodes[tmdbID] {
		if ep.Season == season && ep.Episode == episode {
			return ep, nil
		}
	}
	return nil, nil
}

func (f *fakeEpisodeStore) SetSeen(ctx context.Context, id uuid.UUID, seen bool) error {
	f.seenCalls = append(f.seenCalls, struct {
		ID   uuid.UUID
		Seen bool
	}{id, seen})
	return nil
}

func (f *fakeEpisodeStore) SetSeasonSeen(ctx context.Context, tmdbID, season int, seen bool) error {
	f.seasonCalls = append(f.seasonCalls, struct {
		TmdbID int
		Season int
		Seen   bool
	}{tmdbID, season, seen})
	return nil
}

type fakeTitleStore struct {
	replaced    map[int][]*models.AlternativeTitle
	deleteOrder *[]string
}

func newFakeTitleStore() *fakeTitleStore {
	return &fakeTitleStore{replaced: map[int][]*models.AlternativeTitle{}}
}

func (f *fakeTitleStore) ReplaceForItem(ctx context.Context, tmdbID int, titles []*models.AlternativeTitle) error {
	f.replaced[tmdbID] = titles
	return nil
}

func (f *fakeTitleStore) DeleteByTmdbID(ctx context.Context, tmdbID int) error {
	if f.deleteOrder != nil {
		*f.deleteOrder = append(*f.deleteOrder, "titles")
	}
	delete(f.replaced, tmdbID)
	return nil
}

func (f *fakeTitleStore) GetByTmdbID(ctx context.Context, tmdbID int) ([]*models.AlternativeTitle, error) {
	return f.replaced[tmdbID], nil
}

type fakeGenreStore struct {
	upserted   []models.Genre
	itemGenres map[uuid.UUID][]int
}

func newFakeGenreStore() *fakeGenreStore {
	return &fakeGenreStore{itemGenres: map[uuid.UUID][]int{}}
}

func (f *fakeGenreStore) UpsertAll(ctx context.Context, genres []models.Genre) error {
	f.upserted = append(f.upserted, genres...)
	return nil
}

func (f *fakeGenreStore) SetItemGenres(ctx context.Context, itemID uuid.UUID, genreIDs []int) error {
	f.itemGenres[itemID] = genreIDs
	return nil
}

func (f *fakeGenreStore) GetForItem(ctx context.Context, itemID uuid.UUID) ([]models.Genre, error) {
	var genres []models.Genre
	for _, id := range f.itemGenres[itemID] {
		genres = append(genres, models.Genre{ID: id})
	}
	return genres, nil
}

type fakeProvider struct {
	details    *models.Details
	detailsErr error

	videos    []models.Video
	videosErr error

	seasons    []models.Season
	seasonsErr error

	genres    []models.Genre
	genresErr error

	altTitles []models.AltTitle

	detailsCalls  int
	videosCalls   []string
	episodesCalls int
}

func (f *fakeProvider) Details(ctx context.Context, tmdbID int, kind models.MediaType) (*models.Details, error) {
	f.detailsCalls++
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}
	return f.details, nil
}

func (f *fakeProvider) Videos(ctx context.Context, tmdbID int, kind models.MediaType, language string) ([]models.Video, error) {
	f.videosCalls = append(f.videosCalls, language)
	return f.videos, f.videosErr
}

func (f *fakeProvider) TVEpisodes(ctx context.Context, tmdbID int) ([]models.Season, error) {
	f.episodesCalls++
	if f.seasonsErr != nil {
		return nil, f.seasonsErr
	}
	return f.seasons, nil
}

func (f *fakeProvider) GenreList(ctx context.Context, kind models.MediaType) ([]models.Genre, error) {
	if f.genresErr != nil {
		return nil, f.genresErr
	}
	return f.genres, nil
}

func (f *fakeProvider) AlternativeTitles(ctx context.Context, tmdbID int, kind models.MediaType) ([]models.AltTitle, error) {
	return f.altTitles, nil
}

type fakeRatings struct {
	rating *float64
	err    error
	calls  []string
}

func (f *fakeRatings) ParseRating(ctx context.Context, imdbID string) (*float64, error) {
	f.calls = append(f.calls, imdbID)
	return f.rating, f.err
}

type fakeAssets struct {
	downloads   int
	removals    int
	deleteOrder *[]string
}

func (f *fakeAssets) DownloadImages(ctx context.Context, posterPath, backdropPath string) error {
	f.downloads++
	return nil
}

func (f *fakeAssets) RemoveImages(posterPath, backdropPath string) error {
	f.removals++
	if f.deleteOrder != nil {
		*f.deleteOrder = append(*f.deleteOrder, "assets")
	}
	return nil
}

type fakeTasks struct {
	submitted []uuid.UUID
	failFor   map[uuid.UUID]bool
}

func (f *fakeTasks) Submit(itemID uuid.UUID) error {
	if f.failFor[itemID] {
		return errors.New("queue unavailable")
	}
	f.submitted = append(f.submitted, itemID)
	return nil
}

type fakeSettings struct {
	settings models.Settings
}

func (f *fakeSettings) Load(ctx context.Context) (models.Settings, error) {
	return f.settings, nil
}

func (f *fakeSettings) Get(ctx context.Context, key string) (string, error) {
	switch key {
	case "show_watchlist_everywhere":
		return strconv.FormatBool(f.settings.ShowWatchlistEverywhere), nil
	case "episode_spoiler_protection":
		return strconv.FormatBool(f.settings.EpisodeSpoilerProtection), nil
	}
	return "", nil
}

// fakeTx runs the function directly. Transaction atomicity belongs to the
// database layer; these tests only assert error propagation.
type fakeTx struct {
	calls int
}

func (f *fakeTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// newTestService wires a full service over fresh fakes.
type serviceFakes struct {
	items    *fakeItemStore
	episodes *fakeEpisodeStore
	titles   *fakeTitleStore
	genres   *fakeGenreStore
	provider *fakeProvider
	ratings  *fakeRatings
	assets   *fakeAssets
	tasks    *fakeTasks
	settings *fakeSettings
	tx       *fakeTx
}

func newTestService(pageSize int) (*Service, *serviceFakes) {
	f := &serviceFakes{
		items:    newFakeItemStore(),
		episodes: newFakeEpisodeStore(),
		titles:   newFakeTitleStore(),
		genres:   newFakeGenreStore(),
		provider: &fakeProvider{},
		ratings:  &fakeRatings{},
		assets:   &fakeAssets{},
		tasks:    &fakeTasks{},
		settings: &fakeSettings{},
		tx:       &fakeTx{},
	}
	logger := testLogger()
	episodeSvc := NewEpisodeService(f.episodes, f.provider, f.settings, logger)
	genreSyncer := NewGenreSyncer(f.genres, f.provider, logger)
	titleSyncer := NewAlternativeTitleSyncer(f.titles, f.provider)
	svc := NewService(
		f.items,
		episodeSvc,
		genreSyncer,
		titleSyncer,
		f.provider,
		f.ratings,
		f.assets,
		f.tasks,
		f.settings,
		f.tx,
		pageSize,
		logger,
	)
	return svc, f
}
