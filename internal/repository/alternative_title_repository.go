package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/crono/flox/internal/db"
	"github.com/crono/flox/internal/models"
)

type AlternativeTitleRepository struct {
	db *db.DB
}

func NewAlternativeTitleRepository(database *db.DB) *AlternativeTitleRepository {
	return &AlternativeTitleRepository{db: database}
}

// ReplaceForItem swaps the item's alternative title set for the given one.
func (r *AlternativeTitleRepository) ReplaceForItem(ctx context.Context, tmdbID int, titles []*models.AlternativeTitle) error {
	exec := db.Executor(ctx, r.db.DB)
	if _, err := exec.ExecContext(ctx, `DELETE FROM alternative_titles WHERE tmdb_id = $1`, tmdbID); err != nil {
		return err
	}
	query := `INSERT INTO alternative_titles (id, tmdb_id, country, title) VALUES ($1, $2, $3, $4)`
	for _, t := range titles {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		if _, err := exec.ExecContext(ctx, query, t.ID, t.TmdbID, t.Country, t.Title); err != nil {
			return err
		}
	}
	return nil
}

func (r *AlternativeTitleRepository) DeleteByTmdbID(ctx context.Context, tmdbID int) error {
	_, err := db.Executor(ctx, r.db.DB).ExecContext(ctx, `DELETE FROM alternative_titles WHERE tmdb_id = $1`, tmdbID)
	return err
}

func (r *AlternativeTitleRepository) GetByTmdbID(ctx context.Context, tmdbID int) ([]*models.AlternativeTitle, error) {
	query := `SELECT id, tmdb_id, country, title FROM alternative_titles
		WHERE tmdb_id = $1 ORDER BY country, title`
	var titles []*models.AlternativeTitle
	err := sqlx.SelectContext(ctx, db.Executor(ctx, r.db.DB), &titles, query, tmdbID)
	return titles, err
}
