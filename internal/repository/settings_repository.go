package repository

import (
	"context"
	"database/sql"

	"github.com/spf13/cast"

	"github.com/crono/flox/internal/db"
	"github.com/crono/flox/internal/models"
)

type SettingsRepository struct {
	db *db.DB
}

func NewSettingsRepository(database *db.DB) *SettingsRepository {
	return &SettingsRepository{db: database}
}

// Get retrieves a setting value by key. Returns empty string if not found.
func (r *SettingsRepository) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// Load reads the settings record the catalog core depends on. Missing keys
// fall back to their zero value.
func (r *SettingsRepository) Load(ctx context.Context) (models.Settings, error) {
	var settings models.Settings

	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return settings, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return settings, err
		}
		switch key {
		case "show_watchlist_everywhere":
			settings.ShowWatchlistEverywhere = cast.ToBool(value)
		case "episode_spoiler_protection":
			settings.EpisodeSpoilerProtection = cast.ToBool(value)
		}
	}
	return settings, rows.Err()
}
