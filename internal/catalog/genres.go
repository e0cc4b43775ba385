package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/crono/flox/internal/models"
)

// GenreSyncer maintains the catalog-wide genre list and the genre ids
// attached to individual items.
type GenreSyncer struct {
	store    GenreStore
	provider MetadataProvider
	logger   *logrus.Logger
}

func NewGenreSyncer(store GenreStore, provider MetadataProvider, logger *logrus.Logger) *GenreSyncer {
	return &GenreSyncer{store: store, provider: provider, logger: logger}
}

// Sync attaches the given genre id set to an item, replacing whatever was
// attached before.
func (s *GenreSyncer) Sync(ctx context.Context, item *models.Item, genreIDs []int) error {
	if err := s.store.SetItemGenres(ctx, item.ID, genreIDs); err != nil {
		return fmt.Errorf("set item genres: %w", err)
	}
	return nil
}

// ForItem returns the genres attached to an item, name-ordered.
func (s *GenreSyncer) ForItem(ctx context.Context, itemID uuid.UUID) ([]models.Genre, error) {
	return s.store.GetForItem(ctx, itemID)
}

// UpdateGenreLists refreshes the catalog-wide genre table from the
// provider's movie and TV genre lists.
func (s *GenreSyncer) UpdateGenreLists(ctx context.Context) error {
	for _, kind := range []models.MediaType{models.MediaTypeMovie, models.MediaTypeTV} {
		genres, err := s.provider.GenreList(ctx, kind)
		if err != nil {
			return fmt.Errorf("fetch %s genre list: %w", kind, err)
		}
		if err := s.store.UpsertAll(ctx, genres); err != nil {
			return fmt.Errorf("upsert genres: %w", err)
		}
		s.logger.WithFields(logrus.Fields{"kind": kind, "count": len(genres)}).Debug("genre list updated")
	}
	return nil
}
