package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/crono/flox/internal/models"
)

var (
	// ErrNotFound reports that the requested item does not exist. It is an
	// ordinary outcome, not a crash: batch callers log it and continue.
	ErrNotFound = errors.New("item not found")

	// ErrNotRefreshed reports that a refresh was skipped because the
	// provider returned no usable title. Existing data stays untouched.
	ErrNotRefreshed = errors.New("item not refreshed")
)

// Service creates, refreshes, removes, queries and reorders catalog items,
// fanning out to the episode, genre and alternative-title syncers.
type Service struct {
	items    ItemStore
	episodes *EpisodeService
	genres   *GenreSyncer
	titles   *AlternativeTitleSyncer
	provider MetadataProvider
	ratings  RatingProvider
	assets   AssetStore
	tasks    TaskSink
	settings SettingsStore
	tx       Transactor
	pageSize int
	logger   *logrus.Logger
}

func NewService(
	items ItemStore,
	episodes *EpisodeService,
	genres *GenreSyncer,
	titles *AlternativeTitleSyncer,
	provider MetadataProvider,
	ratings RatingProvider,
	assets AssetStore,
	tasks TaskSink,
	settings SettingsStore,
	tx Transactor,
	pageSize int,
	logger *logrus.Logger,
) *Service {
	return &Service{
		items:    items,
		episodes: episodes,
		genres:   genres,
		titles:   titles,
		provider: provider,
		ratings:  ratings,
		assets:   assets,
		tasks:    tasks,
		settings: settings,
		tx:       tx,
		pageSize: pageSize,
		logger:   logger,
	}
}

// CreateInput is the caller-supplied data for a new catalog entry. Fields
// inside Details that are already set always win over provider data.
type CreateInput struct {
	TmdbID    int                `json:"tmdb_id"`
	MediaType models.MediaType   `json:"media_type"`
	Details   models.ItemDetails `json:"details"`
	Watchlist bool               `json:"watchlist"`
	Src       *string            `json:"src,omitempty"`
}

// Create builds a new catalog item, enriching missing fields from the
// metadata provider, and fans out to episodes, genres, alternative titles
// and assets. All database writes run in one transaction; the asset
// download happens after commit and is never rolled back.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.Item, error) {
	details := in.Details

	// Caller data with a known rating id needs no provider round trip.
	if details.ImdbID == nil {
		doc, err := s.provider.Details(ctx, in.TmdbID, in.MediaType)
		if err != nil {
			return nil, fmt.Errorf("fetch details: %w", err)
		}
		fetched := detailsFromDocument(doc)
		if fetched.TrailerKey == nil {
			fetched.TrailerKey = s.fallbackTrailer(ctx, in.TmdbID, in.MediaType)
		}
		details = mergeDetails(details, fetched)
	}

	if details.ImdbRating == nil && details.ImdbID != nil {
		details.ImdbRating = s.externalRating(ctx, *details.ImdbID, nil)
	}

	item := &models.Item{
		ID:        uuid.New(),
		TmdbID:    in.TmdbID,
		MediaType: in.MediaType,
		Watchlist: in.Watchlist,
		Src:       in.Src,
	}
	applyDetails(item, details)

	// Provider round trips finish before the transaction opens; only
	// relational writes run inside it.
	seasons, err := s.episodes.Fetch(ctx, item)
	if err != nil {
		return nil, err
	}
	altTitles, err := s.titles.Fetch(ctx, item)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.items.Create(ctx, item); err != nil {
			return fmt.Errorf("persist item: %w", err)
		}
		if err := s.episodes.Sync(ctx, item, seasons); err != nil {
			return err
		}
		if err := s.genres.Sync(ctx, item, details.GenreIDs); err != nil {
			return err
		}
		return s.titles.Sync(ctx, item, altTitles)
	})
	if err != nil {
		return nil, err
	}

	s.downloadImages(ctx, item)

	s.logger.WithFields(logrus.Fields{
		"tmdb_id": item.TmdbID,
		"title":   item.Title,
	}).Info("item created")
	return s.items.GetByID(ctx, item.ID)
}

// Refresh re-fetches provider data for an existing item and recomputes
// every enrichable field. A provider response with no usable title skips
// the refresh entirely (ErrNotRefreshed) instead of overwriting good data.
// Repeated refreshes against unchanged provider state converge.
func (s *Service) Refresh(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}

	doc, err := s.provider.Details(ctx, item.TmdbID, item.MediaType)
	if err != nil {
		return nil, fmt.Errorf("fetch details: %w", err)
	}
	if doc.ResolvedTitle() == "" {
		s.logger.WithField("tmdb_id", item.TmdbID).Warn("provider returned no usable title, refresh skipped")
		return nil, ErrNotRefreshed
	}

	// The new provider paths replace the old assets wholesale.
	_ = s.assets.RemoveImages(deref(item.PosterPath), deref(item.BackdropPath))

	details := detailsFromDocument(doc)
	if details.TrailerKey == nil {
		details.TrailerKey = s.fallbackTrailer(ctx, item.TmdbID, item.MediaType)
	}
	if details.ImdbID == nil {
		details.ImdbID = item.ImdbID
	}
	if details.ImdbID != nil {
		details.ImdbRating = s.externalRating(ctx, *details.ImdbID, item.ImdbRating)
	}
	applyDetails(item, details)

	seasons, err := s.episodes.Fetch(ctx, item)
	if err != nil {
		return nil, err
	}
	altTitles, err := s.titles.Fetch(ctx, item)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.items.Update(ctx, item); err != nil {
			return fmt.Errorf("persist item: %w", err)
		}
		if err := s.episodes.Sync(ctx, item, seasons); err != nil {
			return err
		}
		if err := s.titles.Sync(ctx, item, altTitles); err != nil {
			return err
		}
		return s.genres.Sync(ctx, item, doc.GenreIDs())
	})
	if err != nil {
		return nil, err
	}

	s.downloadImages(ctx, item)

	s.logger.WithFields(logrus.Fields{
		"tmdb_id": item.TmdbID,
		"title":   item.Title,
	}).Info("item refreshed")
	return item, nil
}

// RefreshAll updates the catalog-wide genre lists, then dispatches one
// independent refresh task per item, stalest first. Dispatch order only
// affects which items a partial run reaches; each unit stands alone.
func (s *Service) RefreshAll(ctx context.Context) error {
	if err := s.genres.UpdateGenreLists(ctx); err != nil {
		s.logger.WithError(err).Warn("genre list update failed")
	}

	ids, err := s.items.ListStale(ctx)
	if err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	for _, id := range ids {
		if err := s.tasks.Submit(id); err != nil {
			s.logger.WithError(err).WithField("item_id", id).Error("refresh dispatch failed")
		}
	}
	s.logger.WithField("count", len(ids)).Info("refresh tasks dispatched")
	return nil
}

// Remove deletes an item, then cascades to its episodes and alternative
// titles by provider id, then requests asset removal. The item row goes
// first; dependents do not reference the internal id.
func (s *Service) Remove(ctx context.Context, id uuid.UUID) error {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return ErrNotFound
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.items.Delete(ctx, item.ID); err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		if err := s.episodes.Remove(ctx, item.TmdbID); err != nil {
			return fmt.Errorf("delete episodes: %w", err)
		}
		return s.titles.Remove(ctx, item.TmdbID)
	})
	if err != nil {
		return err
	}

	if err := s.assets.RemoveImages(deref(item.PosterPath), deref(item.BackdropPath)); err != nil {
		s.logger.WithError(err).WithField("tmdb_id", item.TmdbID).Warn("asset removal failed")
	}
	s.logger.WithField("tmdb_id", item.TmdbID).Info("item removed")
	return nil
}

// ChangeRating sets the personal rating. Rating an item for the first time
// also bumps its last-seen timestamp; any rating clears the watchlist
// flag. No provider is involved.
func (s *Service) ChangeRating(ctx context.Context, id uuid.UUID, rating int) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}

	if item.UserRating == 0 && rating != 0 {
		if err := s.items.SetLastSeen(ctx, item.TmdbID); err != nil {
			return nil, err
		}
	}
	if err := s.items.SetRating(ctx, id, rating); err != nil {
		return nil, err
	}
	return s.items.GetByID(ctx, id)
}

// ToggleHistoric flips the historic flag. Marking an item as relevant
// again stamps last-seen so it re-enters the recency ordering; moving it
// into history leaves timestamps untouched.
func (s *Service) ToggleHistoric(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}

	historic := !item.IsHistoric
	if err := s.items.SetHistoric(ctx, id, historic, !historic); err != nil {
		return nil, err
	}
	return s.items.GetByID(ctx, id)
}

// ItemDetail is one item joined with its owned collections for the
// single-item view.
type ItemDetail struct {
	models.Item
	Genres            []models.Genre             `json:"genres"`
	AlternativeTitles []*models.AlternativeTitle `json:"alternative_titles"`
}

// Get returns one item with its genres and alternative titles attached.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*ItemDetail, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrNotFound
	}

	genres, err := s.genres.ForItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	titles, err := s.titles.ForItem(ctx, item.TmdbID)
	if err != nil {
		return nil, err
	}
	return &ItemDetail{Item: *item, Genres: genres, AlternativeTitles: titles}, nil
}

// GetWithPagination returns one catalog page, each row joined with its
// latest episode and playable-episode count. Watchlist items stay out of
// non-watchlist views unless settings say otherwise.
func (s *Service) GetWithPagination(ctx context.Context, typ models.ListType, orderBy models.SortField, desc bool, page int) ([]*models.ItemWithStats, error) {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}

	filter := models.ListFilter{
		Type:             typ,
		OrderBy:          orderBy,
		Desc:             desc,
		ExcludeWatchlist: !settings.ShowWatchlistEverywhere && typ != models.ListTypeWatchlist,
		Limit:            s.pageSize,
		Offset:           (page - 1) * s.pageSize,
	}
	return s.items.List(ctx, filter)
}

// Search returns all items whose title matches, unpaginated.
func (s *Service) Search(ctx context.Context, title string) ([]*models.ItemWithStats, error) {
	return s.items.Search(ctx, title)
}

// FindBy is the polymorphic single-item lookup. Title lookups honor the
// optional media kind so a show and a movie sharing a title stay apart;
// provider-id and source lookups are already unambiguous.
func (s *Service) FindBy(ctx context.Context, kind models.FindKind, value string, mediaType models.MediaType) (*models.Item, error) {
	switch kind {
	case models.FindByTmdbID:
		tmdbID, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid tmdb id %q", value)
		}
		return s.items.GetByTmdbID(ctx, tmdbID)
	case models.FindBySource:
		return s.items.GetBySrc(ctx, value)
	case models.FindByTitleStrict:
		return s.items.GetByTitle(ctx, value, mediaType)
	case models.FindByParsedName:
		return s.items.GetBySlug(ctx, Slugify(value), mediaType)
	case models.FindByTitle:
		return s.findByTitleLoose(ctx, value, mediaType)
	default:
		return nil, fmt.Errorf("unsupported lookup kind %q", kind)
	}
}

// findByTitleLoose picks the stored title closest to the query, tolerating
// small edit distances (scene naming, punctuation, typos).
func (s *Service) findByTitleLoose(ctx context.Context, title string, mediaType models.MediaType) (*models.Item, error) {
	refs, err := s.items.ListTitles(ctx, mediaType)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(title)
	bound := len(query)/4 + 1
	bestDist := bound + 1
	var best *models.TitleRef
	for i := range refs {
		d := levenshtein.ComputeDistance(query, strings.ToLower(refs[i].Title))
		if d < bestDist {
			bestDist = d
			best = &refs[i]
		}
	}
	if best == nil {
		return nil, nil
	}
	return s.items.GetByID(ctx, best.ID)
}

// ImportItem is one record of a catalog export. The legacy Genre text
// field is accepted and dropped: the genre-id relationship supersedes it.
type ImportItem struct {
	models.Item
	Genre string `json:"genre,omitempty"`
}

// Import ingests one exported record. The input's internal id is
// discarded, a missing last-seen timestamp is back-filled from the
// creation timestamp, and items carrying a provider id go through the
// same enrichment merge as Create. Items without one (local files with no
// provider match) skip enrichment entirely.
func (s *Service) Import(ctx context.Context, in ImportItem) (*models.Item, error) {
	item := in.Item
	item.ID = uuid.New()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	if item.LastSeenAt.IsZero() {
		item.LastSeenAt = item.CreatedAt
	}
	if item.Slug == "" {
		item.Slug = Slugify(item.Title)
	}

	if item.TmdbID != 0 {
		doc, err := s.provider.Details(ctx, item.TmdbID, item.MediaType)
		if err != nil {
			return nil, fmt.Errorf("fetch details: %w", err)
		}
		fetched := detailsFromDocument(doc)
		if fetched.TrailerKey == nil {
			fetched.TrailerKey = s.fallbackTrailer(ctx, item.TmdbID, item.MediaType)
		}
		applyDetails(&item, mergeDetails(detailsFromItem(&item), fetched))
	}

	if err := s.items.Create(ctx, &item); err != nil {
		return nil, fmt.Errorf("persist item: %w", err)
	}
	if item.TmdbID != 0 {
		s.downloadImages(ctx, &item)
	}

	s.logger.WithFields(logrus.Fields{
		"tmdb_id": item.TmdbID,
		"title":   item.Title,
	}).Info("item imported")
	return s.items.GetByID(ctx, item.ID)
}

// fallbackTrailer makes the secondary video call in the default fallback
// language. A failed lookup just means no trailer.
func (s *Service) fallbackTrailer(ctx context.Context, tmdbID int, kind models.MediaType) *string {
	videos, err := s.provider.Videos(ctx, tmdbID, kind, "en")
	if err != nil {
		s.logger.WithError(err).WithField("tmdb_id", tmdbID).Warn("video fallback failed")
		return nil
	}
	return trailerKey(videos)
}

// externalRating fetches the rating-provider score. Scrape failures keep
// the current value: a flaky rating source never degrades stored data.
func (s *Service) externalRating(ctx context.Context, imdbID string, current *float64) *float64 {
	rating, err := s.ratings.ParseRating(ctx, imdbID)
	if err != nil {
		s.logger.WithError(err).WithField("imdb_id", imdbID).Warn("rating lookup failed")
		return current
	}
	return rating
}

func (s *Service) downloadImages(ctx context.Context, item *models.Item) {
	if err := s.assets.DownloadImages(ctx, deref(item.PosterPath), deref(item.BackdropPath)); err != nil {
		s.logger.WithError(err).WithField("tmdb_id", item.TmdbID).Warn("asset download failed")
	}
}
