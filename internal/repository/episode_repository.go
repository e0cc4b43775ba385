package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/crono/flox/internal/db"
	"github.com/crono/flox/internal/models"
)

type EpisodeRepository struct {
	db *db.DB
}

func NewEpisodeRepository(database *db.DB) *EpisodeRepository {
	return &EpisodeRepository{db: database}
}

const episodeColumns = `id, tmdb_id, season, episode, title, air_date, seen, src`

// ReplaceForItem deletes the item's current episode set and inserts the
// given one. Runs inside the caller's transaction when one is in effect.
func (r *EpisodeRepository) ReplaceForItem(ctx context.Context, tmdbID int, episodes []*models.Episode) error {
	exec := db.Executor(ctx, r.db.DB)
	if _, err := exec.ExecContext(ctx, `DELETE FROM episodes WHERE tmdb_id = $1`, tmdbID); err != nil {
		return err
	}
	query := `
		INSERT INTO episodes (id, tmdb_id, season, episode, title, air_date, seen, src)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, ep := range episodes {
		if _, err := exec.ExecContext(ctx, query,
			ep.ID, ep.TmdbID, ep.Season, ep.Episode, ep.Title, ep.AirDate, ep.Seen, ep.Src); err != nil {
			return err
		}
	}
	return nil
}

func (r *EpisodeRepository) DeleteByTmdbID(ctx context.Context, tmdbID int) error {
	_, err := db.Executor(ctx, r.db.DB).ExecContext(ctx, `DELETE FROM episodes WHERE tmdb_id = $1`, tmdbID)
	return err
}

func (r *EpisodeRepository) GetByTmdbID(ctx context.Context, tmdbID int) ([]*models.Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episodes
		WHERE tmdb_id = $1 ORDER BY season, episode`
	var episodes []*models.Episode
	err := sqlx.SelectContext(ctx, db.Executor(ctx, r.db.DB), &episodes, query, tmdbID)
	return episodes, err
}

func (r *EpisodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episodes WHERE id = $1`
	ep := &models.Episode{}
	err := sqlx.GetContext(ctx, db.Executor(ctx, r.db.DB), ep, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ep, err
}

func (r *EpisodeRepository) GetBySrc(ctx context.Context, src string) (*models.Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episodes WHERE src = $1 LIMIT 1`
	ep := &models.Episode{}
	err := sqlx.GetContext(ctx, db.Executor(ctx, r.db.DB), ep, query, src)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ep, err
}

func (r *EpisodeRepository) GetByNumber(ctx context.Context, tmdbID, season, episode int) (*models.Episode, error) {
	query := `SELECT ` + episodeColumns + ` FROM episodes
		WHERE tmdb_id = $1 AND season = $2 AND episode = $3`
	ep := &models.Episode{}
	err := sqlx.GetContext(ctx, db.Executor(ctx, r.db.DB), ep, query, tmdbID, season, episode)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ep, err
}

func (r *EpisodeRepository) SetSeen(ctx context.Context, id uuid.UUID, seen bool) error {
	_, err := db.Executor(ctx, r.db.DB).ExecContext(ctx,
		`UPDATE episodes SET seen = $1 WHERE id = $2`, seen, id)
	return err
}

func (r *EpisodeRepository) SetSeasonSeen(ctx context.Context, tmdbID, season int, seen bool) error {
	_, err := db.Executor(ctx, r.db.DB).ExecContext(ctx,
		`UPDATE episodes SET seen = $1 WHERE tmdb_id = $2 AND season = $3`, seen, tmdbID, season)
	return err
}
