package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/crono/flox/internal/db"
	"github.com/crono/flox/internal/models"
)

type ItemRepository struct {
	db *db.DB
}

func NewItemRepository(database *db.DB) *ItemRepository {
	return &ItemRepository{db: database}
}

// itemColumns is the standard SELECT list for items
const itemColumns = `i.id, i.tmdb_id, i.imdb_id, i.media_type, i.title, i.original_title,
	i.slug, i.overview, i.homepage, i.trailer_key, i.poster_path, i.backdrop_path,
	i.release_date, i.tmdb_rating, i.imdb_rating, i.user_rating, i.watchlist,
	i.is_historic, i.src, i.last_seen_at, i.created_at, i.refreshed_at`

func scanItem(row interface{ Scan(dest ...interface{}) error }) (*models.Item, error) {
	item := &models.Item{}
	err := row.Scan(
		&item.ID, &item.TmdbID, &item.ImdbID, &item.MediaType, &item.Title,
		&item.OriginalTitle, &item.Slug, &item.Overview, &item.Homepage,
		&item.TrailerKey, &item.PosterPath, &item.BackdropPath, &item.ReleaseDate,
		&item.TmdbRating, &item.ImdbRating, &item.UserRating, &item.Watchlist,
		&item.IsHistoric, &item.Src, &item.LastSeenAt, &item.CreatedAt, &item.RefreshedAt,
	)
	return item, err
}

// itemInsertQuery binds last_seen_at and created_at explicitly so that
// imported records keep their original timestamps; a zero value falls
// back to the database clock.
const itemInsertQuery = `
	INSERT INTO items (
		id, tmdb_id, imdb_id, media_type, title, original_title, slug,
		overview, homepage, trailer_key, poster_path, backdrop_path,
		release_date, tmdb_rating, imdb_rating, user_rating, watchlist,
		is_historic, src, last_seen_at, created_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7,
		$8, $9, $10, $11, $12,
		$13, $14, $15, $16, $17,
		$18, $19, COALESCE($20, CURRENT_TIMESTAMP), COALESCE($21, CURRENT_TIMESTAMP)
	)
	RETURNING last_seen_at, created_at, refreshed_at`

func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	var lastSeen, createdAt interface{}
	if !item.LastSeenAt.IsZero() {
		lastSeen = item.LastSeenAt
	}
	if !item.CreatedAt.IsZero() {
		createdAt = item.CreatedAt
	}
	return db.Executor(ctx, r.db.DB).QueryRowxContext(ctx, itemInsertQuery,
		item.ID, item.TmdbID, item.ImdbID, item.MediaType, item.Title,
		item.OriginalTitle, item.Slug, item.Overview, item.Homepage,
		item.TrailerKey, item.PosterPath, item.BackdropPath, item.ReleaseDate,
		item.TmdbRating, item.ImdbRating, item.UserRating, item.Watchlist,
		item.IsHistoric, item.Src, lastSeen, createdAt,
	).Scan(&item.LastSeenAt, &item.CreatedAt, &item.RefreshedAt)
}

// Update writes every mutable field of an item. tmdb_id is deliberately
// absent: the provider id never changes after creation.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items SET
			imdb_id = $1, title = $2, original_title = $3, slug = $4,
			overview = $5, homepage = $6, trailer_key = $7, poster_path = $8,
			backdrop_path = $9, release_date = $10, tmdb_rating = $11,
			imdb_rating = $12, user_rating = $13, watchlist = $14,
			is_historic = $15, src = $16, last_seen_at = $17,
			refreshed_at = CURRENT_TIMESTAMP
		WHERE id = $18
		RETURNING refreshed_at`
	return db.Executor(ctx, r.db.DB).QueryRowxContext(ctx, query,
		item.ImdbID, item.Title, item.OriginalTitle, item.Slug,
		item.Overview, item.Homepage, item.TrailerKey, item.PosterPath,
		item.BackdropPath, item.ReleaseDate, item.TmdbRating,
		item.ImdbRating, item.UserRating, item.Watchlist,
		item.IsHistoric, item.Src, item.LastSeenAt, item.ID,
	).Scan(&item.RefreshedAt)
}

func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items i WHERE i.id = $1`
	item, err := scanItem(db.Executor(ctx, r.db.DB).QueryRowxContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

func (r *ItemRepository) GetByTmdbID(ctx context.Context, tmdbID int) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items i WHERE i.tmdb_id = $1`
	item, err := scanItem(db.Executor(ctx, r.db.DB).QueryRowxContext(ctx, query, tmdbID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

func (r *ItemRepository) GetByTitle(ctx context.Context, title string, mediaType models.MediaType) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items i WHERE LOWER(i.title) = LOWER($1)`
	args := []interface{}{title}
	if mediaType != "" {
		query += ` AND i.media_type = $2`
		args = append(args, mediaType)
	}
	query += ` LIMIT 1`
	item, err := scanItem(db.Executor(ctx, r.db.DB).QueryRowxContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

func (r *ItemRepository) GetBySlug(ctx context.Context, slug string, mediaType models.MediaType) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items i WHERE i.slug = $1`
	args := []interface{}{slug}
	if mediaType != "" {
		query += ` AND i.media_type = $2`
		args = append(args, mediaType)
	}
	query += ` LIMIT 1`
	item, err := scanItem(db.Executor(ctx, r.db.DB).QueryRowxContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

func (r *ItemRepository) GetBySrc(ctx context.Context, src string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items i WHERE i.src = $1 LIMIT 1`
	item, err := scanItem(db.Executor(ctx, r.db.DB).QueryRowxContext(ctx, query, src))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return item, err
}

func (r *ItemRepository) ListTitles(ctx context.Context, mediaType models.MediaType) ([]models.TitleRef, error) {
	query := `SELECT id, title FROM items`
	args := []interface{}{}
	if mediaType != "" {
		query += ` WHERE media_type = $1`
		args = append(args, mediaType)
	}
	var refs []models.TitleRef
	err := sqlx.SelectContext(ctx, db.Executor(ctx, r.db.DB), &refs, query, args...)
	return refs, err
}

func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := db.Executor(ctx, r.db.DB).ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	return err
}

func (r *ItemRepository) SetLastSeen(ctx context.Context, tmdbID int) error {
	query := `UPDATE items SET last_seen_at = CURRENT_TIMESTAMP WHERE tmdb_id = $1`
	_, err := db.Executor(ctx, r.db.DB).ExecContext(ctx, query, tmdbID)
	return err
}

// SetRating writes the personal rating and drops the item off the
// watchlist: a rated item is no longer queued-to-watch.
func (r *ItemRepository) SetRating(ctx context.Context, id uuid.UUID, rating int) error {
	query := `UPDATE items SET user_rating = $1, watchlist = FALSE WHERE id = $2`
	_, err := db.Executor(ctx, r.db.DB).ExecContext(ctx, query, rating, id)
	return err
}

// SetHistoric flips the historic flag. When stampLastSeen is set the
// last-seen timestamp moves to now, re-entering the item into the
// recency ordering.
func (r *ItemRepository) SetHistoric(ctx context.Context, id uuid.UUID, historic, stampLastSeen bool) error {
	query := `UPDATE items SET is_historic = $1 WHERE id = $2`
	if stampLastSeen {
		query = `UPDATE items SET is_historic = $1, last_seen_at = CURRENT_TIMESTAMP WHERE id = $2`
	}
	_, err := db.Executor(ctx, r.db.DB).ExecContext(ctx, query, historic, id)
	return err
}

// ListStale returns all item ids ordered by staleness, oldest refresh
// first. RefreshAll dispatches in this order so interrupted runs make
// progress on the stalest items first.
func (r *ItemRepository) ListStale(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `SELECT id FROM items ORDER BY refreshed_at ASC`
	err := sqlx.SelectContext(ctx, db.Executor(ctx, r.db.DB), &ids, query)
	return ids, err
}

// ──────────────────── Listing / search ────────────────────

// statsColumns joins each item with its latest episode and the count of
// episodes that have a playable source.
const statsColumns = itemColumns + `,
	le.id, le.season, le.episode, le.title, le.air_date, le.seen, le.src,
	COALESCE(pc.playable, 0)`

const statsJoins = `
	LEFT JOIN LATERAL (
		SELECT e.id, e.season, e.episode, e.title, e.air_date, e.seen, e.src
		FROM episodes e
		WHERE e.tmdb_id = i.tmdb_id
		ORDER BY e.season DESC, e.episode DESC
		LIMIT 1
	) le ON TRUE
	LEFT JOIN LATERAL (
		SELECT COUNT(*) AS playable
		FROM episodes e
		WHERE e.tmdb_id = i.tmdb_id AND e.src IS NOT NULL
	) pc ON TRUE`

func scanItemWithStats(row interface{ Scan(dest ...interface{}) error }) (*models.ItemWithStats, error) {
	it := &models.ItemWithStats{}
	var (
		epID      *uuid.UUID
		epSeason  *int
		epEpisode *int
		epTitle   *string
		epAirDate sql.NullTime
		epSeen    *bool
		epSrc     *string
	)
	err := row.Scan(
		&it.ID, &it.TmdbID, &it.ImdbID, &it.MediaType, &it.Title,
		&it.OriginalTitle, &it.Slug, &it.Overview, &it.Homepage,
		&it.TrailerKey, &it.PosterPath, &it.BackdropPath, &it.ReleaseDate,
		&it.TmdbRating, &it.ImdbRating, &it.UserRating, &it.Watchlist,
		&it.IsHistoric, &it.Src, &it.LastSeenAt, &it.CreatedAt, &it.RefreshedAt,
		&epID, &epSeason, &epEpisode, &epTitle, &epAirDate, &epSeen, &epSrc,
		&it.PlayableEpisodes,
	)
	if err != nil {
		return nil, err
	}
	if epID != nil {
		ep := &models.Episode{
			ID:      *epID,
			TmdbID:  it.TmdbID,
			Season:  *epSeason,
			Episode: *epEpisode,
			Title:   *epTitle,
			Seen:    *epSeen,
			Src:     epSrc,
		}
		if epAirDate.Valid {
			ep.AirDate = &epAirDate.Time
		}
		it.LatestEpisode = ep
	}
	return it, nil
}

// orderClause resolves a sort field to its ORDER BY expression. The
// historic ordering is a fixed composite: non-historic items first
// (most recently seen leading), then historic items alphabetically.
func orderClause(field models.SortField, desc bool) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	switch field {
	case models.SortOwnRating:
		return "i.user_rating " + dir
	case models.SortTitle:
		return "LOWER(i.title) " + dir
	case models.SortRelease:
		return "i.release_date " + dir + " NULLS LAST"
	case models.SortTmdbRating:
		return "i.tmdb_rating " + dir + " NULLS LAST"
	case models.SortImdbRating:
		return "i.imdb_rating " + dir + " NULLS LAST"
	case models.SortLastSeenHistory:
		return "i.is_historic ASC, CASE WHEN i.is_historic THEN LOWER(i.title) END ASC, i.last_seen_at DESC"
	default:
		return "i.last_seen_at " + dir
	}
}

func (r *ItemRepository) List(ctx context.Context, filter models.ListFilter) ([]*models.ItemWithStats, error) {
	var conds []string
	var args []interface{}

	switch filter.Type {
	case models.ListTypeWatchlist:
		conds = append(conds, "i.watchlist = TRUE")
	case models.ListTypeMovie, models.ListTypeTV:
		args = append(args, models.MediaType(filter.Type))
		conds = append(conds, fmt.Sprintf("i.media_type = $%d", len(args)))
	}
	if filter.ExcludeWatchlist {
		conds = append(conds, "i.watchlist = FALSE")
	}

	query := `SELECT ` + statsColumns + ` FROM items i` + statsJoins
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY ` + orderClause(filter.OrderBy, filter.Desc)
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	return r.queryStats(ctx, query, args...)
}

func (r *ItemRepository) Search(ctx context.Context, title string) ([]*models.ItemWithStats, error) {
	query := `SELECT ` + statsColumns + ` FROM items i` + statsJoins + `
		WHERE i.title ILIKE '%' || $1 || '%'
		ORDER BY LOWER(i.title)`
	return r.queryStats(ctx, query, title)
}

func (r *ItemRepository) queryStats(ctx context.Context, query string, args ...interface{}) ([]*models.ItemWithStats, error) {
	rows, err := db.Executor(ctx, r.db.DB).QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.ItemWithStats
	for rows.Next() {
		item, err := scanItemWithStats(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
