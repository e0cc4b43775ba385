package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/crono/flox/internal/db"
	"github.com/crono/flox/internal/models"
)

type GenreRepository struct {
	db *db.DB
}

func NewGenreRepository(database *db.DB) *GenreRepository {
	return &GenreRepository{db: database}
}

// UpsertAll writes the catalog-wide genre list. Genre ids come from the
// provider and are stable, so conflicts just refresh the name.
func (r *GenreRepository) UpsertAll(ctx context.Context, genres []models.Genre) error {
	exec := db.Executor(ctx, r.db.DB)
	query := `INSERT INTO genres (id, name) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`
	for _, g := range genres {
		if _, err := exec.ExecContext(ctx, query, g.ID, g.Name); err != nil {
			return err
		}
	}
	return nil
}

// SetItemGenres replaces the genre id set attached to an item.
func (r *GenreRepository) SetItemGenres(ctx context.Context, itemID uuid.UUID, genreIDs []int) error {
	exec := db.Executor(ctx, r.db.DB)
	if _, err := exec.ExecContext(ctx, `DELETE FROM item_genres WHERE item_id = $1`, itemID); err != nil {
		return err
	}
	query := `INSERT INTO item_genres (item_id, genre_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, id := range genreIDs {
		if _, err := exec.ExecContext(ctx, query, itemID, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *GenreRepository) GetForItem(ctx context.Context, itemID uuid.UUID) ([]models.Genre, error) {
	query := `SELECT g.id, g.name FROM genres g
		JOIN item_genres ig ON ig.genre_id = g.id
		WHERE ig.item_id = $1 ORDER BY g.name`
	var genres []models.Genre
	err := sqlx.SelectContext(ctx, db.Executor(ctx, r.db.DB), &genres, query, itemID)
	return genres, err
}
