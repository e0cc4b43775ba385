package catalog

import (
	"context"
	"fmt"

	"github.com/crono/flox/internal/models"
)

// AlternativeTitleSyncer rebuilds an item's alternate title set from
// provider data. Titles are owned by the item and keyed by its TMDB id.
type AlternativeTitleSyncer struct {
	store    AlternativeTitleStore
	provider MetadataProvider
}

func NewAlternativeTitleSyncer(store AlternativeTitleStore, provider MetadataProvider) *AlternativeTitleSyncer {
	return &AlternativeTitleSyncer{store: store, provider: provider}
}

// Fetch pulls the provider's alternative title listing, dropping empty
// entries. Kept separate from Sync so callers can do the network round
// trip before they open a transaction.
func (s *AlternativeTitleSyncer) Fetch(ctx context.Context, item *models.Item) ([]*models.AlternativeTitle, error) {
	fetched, err := s.provider.AlternativeTitles(ctx, item.TmdbID, item.MediaType)
	if err != nil {
		return nil, fmt.Errorf("fetch alternative titles: %w", err)
	}

	titles := make([]*models.AlternativeTitle, 0, len(fetched))
	for _, t := range fetched {
		if t.Title == "" {
			continue
		}
		titles = append(titles, &models.AlternativeTitle{
			TmdbID:  item.TmdbID,
			Country: t.Country,
			Title:   t.Title,
		})
	}
	return titles, nil
}

// Sync replaces the item's stored alternative titles with a prefetched set.
func (s *AlternativeTitleSyncer) Sync(ctx context.Context, item *models.Item, titles []*models.AlternativeTitle) error {
	return s.store.ReplaceForItem(ctx, item.TmdbID, titles)
}

// Create is Fetch followed by Sync, for callers running outside a
// transaction.
func (s *AlternativeTitleSyncer) Create(ctx context.Context, item *models.Item) error {
	titles, err := s.Fetch(ctx, item)
	if err != nil {
		return err
	}
	return s.Sync(ctx, item, titles)
}

// ForItem returns the stored alternative titles of one item.
func (s *AlternativeTitleSyncer) ForItem(ctx context.Context, tmdbID int) ([]*models.AlternativeTitle, error) {
	return s.store.GetByTmdbID(ctx, tmdbID)
}

// Remove deletes all alternative titles keyed by the given TMDB id.
func (s *AlternativeTitleSyncer) Remove(ctx context.Context, tmdbID int) error {
	return s.store.DeleteByTmdbID(ctx, tmdbID)
}
