package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/crono/flox/internal/models"
)

// EpisodeService keeps an item's episode list in sync with provider
// season data and tracks per-episode watched state.
type EpisodeService struct {
	store    EpisodeStore
	provider MetadataProvider
	settings SettingsStore
	logger   *logrus.Logger
}

func NewEpisodeService(store EpisodeStore, provider MetadataProvider, settings SettingsStore, logger *logrus.Logger) *EpisodeService {
	return &EpisodeService{store: store, provider: provider, settings: settings, logger: logger}
}

// Fetch pulls the provider's season data for a TV item. Movies yield nil
// without a provider call. Kept separate from Sync so callers can do the
// network round trip before they open a transaction.
func (s *EpisodeService) Fetch(ctx context.Context, item *models.Item) ([]models.Season, error) {
	if item.MediaType != models.MediaTypeTV {
		return nil, nil
	}
	seasons, err := s.provider.TVEpisodes(ctx, item.TmdbID)
	if err != nil {
		return nil, fmt.Errorf("fetch tv episodes: %w", err)
	}
	return seasons, nil
}

// Sync performs a full replace of the item's episode set from prefetched
// season data. Movies are a no-op. Seen flags and local source paths
// survive the resync by season/episode number match, since both are
// locally owned and the provider knows nothing about them.
func (s *EpisodeService) Sync(ctx context.Context, item *models.Item, seasons []models.Season) error {
	if item.MediaType != models.MediaTypeTV {
		return nil
	}

	old, err := s.store.GetByTmdbID(ctx, item.TmdbID)
	if err != nil {
		return fmt.Errorf("load current episodes: %w", err)
	}
	type epKey struct{ season, episode int }
	local := make(map[epKey]*models.Episode, len(old))
	for _, ep := range old {
		local[epKey{ep.Season, ep.Episode}] = ep
	}

	var episodes []*models.Episode
	for _, season := range seasons {
		for _, e := range season.Episodes {
			ep := &models.Episode{
				ID:      uuid.New(),
				TmdbID:  item.TmdbID,
				Season:  season.SeasonNumber,
				Episode: e.EpisodeNumber,
				Title:   e.Name,
				AirDate: parseAirDate(e.AirDate),
			}
			if prev, ok := local[epKey{ep.Season, ep.Episode}]; ok {
				ep.Seen = prev.Seen
				ep.Src = prev.Src
			}
			episodes = append(episodes, ep)
		}
	}

	if err := s.store.ReplaceForItem(ctx, item.TmdbID, episodes); err != nil {
		return fmt.Errorf("replace episodes: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"tmdb_id": item.TmdbID,
		"count":   len(episodes),
	}).Debug("episode set replaced")
	return nil
}

// Create is Fetch followed by Sync, for callers running outside a
// transaction.
func (s *EpisodeService) Create(ctx context.Context, item *models.Item) error {
	seasons, err := s.Fetch(ctx, item)
	if err != nil {
		return err
	}
	return s.Sync(ctx, item, seasons)
}

// Remove deletes all episodes keyed by the given TMDB id.
func (s *EpisodeService) Remove(ctx context.Context, tmdbID int) error {
	return s.store.DeleteByTmdbID(ctx, tmdbID)
}

// GetAllByProviderID returns the item's episodes grouped by season plus the
// current spoiler-protection setting, passed through for the view layer.
func (s *EpisodeService) GetAllByProviderID(ctx context.Context, tmdbID int) ([]models.SeasonGroup, bool, error) {
	episodes, err := s.store.GetByTmdbID(ctx, tmdbID)
	if err != nil {
		return nil, false, err
	}

	var groups []models.SeasonGroup
	for _, ep := range episodes {
		if len(groups) == 0 || groups[len(groups)-1].Season != ep.Season {
			groups = append(groups, models.SeasonGroup{Season: ep.Season})
		}
		last := &groups[len(groups)-1]
		last.Episodes = append(last.Episodes, ep)
	}

	spoiler, err := s.settings.Get(ctx, "episode_spoiler_protection")
	if err != nil {
		return nil, false, err
	}
	return groups, cast.ToBool(spoiler), nil
}

// ToggleSeen flips the seen flag of one episode. An unknown id is silently
// a no-op.
func (s *EpisodeService) ToggleSeen(ctx context.Context, id uuid.UUID) error {
	ep, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ep == nil {
		return nil
	}
	return s.store.SetSeen(ctx, id, !ep.Seen)
}

// ToggleSeason sets the seen flag to an explicit value for every episode
// of one season.
func (s *EpisodeService) ToggleSeason(ctx context.Context, tmdbID, season int, seen bool) error {
	return s.store.SetSeasonSeen(ctx, tmdbID, season, seen)
}

// FindBy looks episodes up by source path, by provider id (all episodes of
// the item), or by exact season+episode pair when both numbers are given.
func (s *EpisodeService) FindBy(ctx context.Context, kind models.FindKind, value string, tmdbID, season, episode int) ([]*models.Episode, error) {
	switch kind {
	case models.FindBySource:
		ep, err := s.store.GetBySrc(ctx, value)
		if err != nil || ep == nil {
			return nil, err
		}
		return []*models.Episode{ep}, nil
	case models.FindByTmdbID:
		if season > 0 && episode > 0 {
			ep, err := s.store.GetByNumber(ctx, tmdbID, season, episode)
			if err != nil || ep == nil {
				return nil, err
			}
			return []*models.Episode{ep}, nil
		}
		return s.store.GetByTmdbID(ctx, tmdbID)
	default:
		return nil, fmt.Errorf("unsupported episode lookup kind %q", kind)
	}
}
