package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/crono/flox/internal/models"
)

// MetadataProvider is the external metadata service (TMDB).
type MetadataProvider interface {
	Details(ctx context.Context, tmdbID int, kind models.MediaType) (*models.Details, error)
	Videos(ctx context.Context, tmdbID int, kind models.MediaType, language string) ([]models.Video, error)
	TVEpisodes(ctx context.Context, tmdbID int) ([]models.Season, error)
	GenreList(ctx context.Context, kind models.MediaType) ([]models.Genre, error)
	AlternativeTitles(ctx context.Context, tmdbID int, kind models.MediaType) ([]models.AltTitle, error)
}

// RatingProvider is the secondary, independent rating source (IMDB via OMDb).
type RatingProvider interface {
	ParseRating(ctx context.Context, imdbID string) (*float64, error)
}

// AssetStore downloads and removes poster/backdrop files. Best-effort:
// failures never roll back catalog state.
type AssetStore interface {
	DownloadImages(ctx context.Context, posterPath, backdropPath string) error
	RemoveImages(posterPath, backdropPath string) error
}

// TaskSink accepts independent "refresh item by id" units of work.
// The concrete scheduler/worker behind it is an external collaborator.
type TaskSink interface {
	Submit(itemID uuid.UUID) error
}

// Transactor runs a function inside one atomic storage transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type ItemStore interface {
	Create(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetByTmdbID(ctx context.Context, tmdbID int) (*models.Item, error)
	GetByTitle(ctx context.Context, title string, mediaType models.MediaType) (*models.Item, error)
	GetBySlug(ctx context.Context, slug string, mediaType models.MediaType) (*models.Item, error)
	GetBySrc(ctx context.Context, src string) (*models.Item, error)
	ListTitles(ctx context.Context, mediaType models.MediaType) ([]models.TitleRef, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetLastSeen(ctx context.Context, tmdbID int) error
	SetRating(ctx context.Context, id uuid.UUID, rating int) error
	SetHistoric(ctx context.Context, id uuid.UUID, historic, stampLastSeen bool) error
	ListStale(ctx context.Context) ([]uuid.UUID, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.ItemWithStats, error)
	Search(ctx context.Context, title string) ([]*models.ItemWithStats, error)
}

type EpisodeStore interface {
	ReplaceForItem(ctx context.Context, tmdbID int, episodes []*models.Episode) error
	DeleteByTmdbID(ctx context.Context, tmdbID int) error
	GetByTmdbID(ctx context.Context, tmdbID int) ([]*models.Episode, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Episode, error)
	GetBySrc(ctx context.Context, src string) (*models.Episode, error)
	GetByNumber(ctx context.Context, tmdbID, season, episode int) (*models.Episode, error)
	SetSeen(ctx context.Context, id uuid.UUID, seen bool) error
	SetSeasonSeen(ctx context.Context, tmdbID, season int, seen bool) error
}

type AlternativeTitleStore interface {
	ReplaceForItem(ctx context.Context, tmdbID int, titles []*models.AlternativeTitle) error
	DeleteByTmdbID(ctx context.Context, tmdbID int) error
	GetByTmdbID(ctx context.Context, tmdbID int) ([]*models.AlternativeTitle, error)
}

type GenreStore interface {
	UpsertAll(ctx context.Context, genres []models.Genre) error
	SetItemGenres(ctx context.Context, itemID uuid.UUID, genreIDs []int) error
	GetForItem(ctx context.Context, itemID uuid.UUID) ([]models.Genre, error)
}

// SettingsStore reads the process-wide settings record, either as the
// typed record or one raw key at a time.
type SettingsStore interface {
	Load(ctx context.Context) (models.Settings, error)
	Get(ctx context.Context, key string) (string, error)
}
