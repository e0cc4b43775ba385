package models

import (
	"time"

	"github.com/google/uuid"
)

// ──────────────────── Enums ────────────────────

type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// SortField selects the ordering applied to catalog listings.
type SortField string

const (
	SortOwnRating       SortField = "own_rating"
	SortTitle           SortField = "title"
	SortRelease         SortField = "release"
	SortTmdbRating      SortField = "tmdb_rating"
	SortImdbRating      SortField = "imdb_rating"
	SortLastSeen        SortField = "last_seen"
	SortLastSeenHistory SortField = "last_seen_with_history"
)

// ListType filters catalog listings. Anything other than the known
// values applies no media-kind filter.
type ListType string

const (
	ListTypeAll       ListType = "all"
	ListTypeMovie     ListType = "movie"
	ListTypeTV        ListType = "tv"
	ListTypeWatchlist ListType = "watchlist"
)

// FindKind selects the lookup strategy for single-item and episode lookups.
type FindKind string

const (
	FindByTitle       FindKind = "title"        // loose title match
	FindByTitleStrict FindKind = "title_strict" // exact title match
	FindByParsedName  FindKind = "parsed_name"  // file-parser derived name
	FindByTmdbID      FindKind = "tmdb_id"
	FindBySource      FindKind = "src"
)

// ──────────────────── Item ────────────────────

// Item is one catalog entry: a movie or a TV show. TmdbID is the external
// provider's identifier and never changes after creation. UserRating of 0
// means "no personal rating".
type Item struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	TmdbID        int        `json:"tmdb_id" db:"tmdb_id"`
	ImdbID        *string    `json:"imdb_id,omitempty" db:"imdb_id"`
	MediaType     MediaType  `json:"media_type" db:"media_type"`
	Title         string     `json:"title" db:"title"`
	OriginalTitle *string    `json:"original_title,omitempty" db:"original_title"`
	Slug          string     `json:"slug" db:"slug"`
	Overview      *string    `json:"overview,omitempty" db:"overview"`
	Homepage      *string    `json:"homepage,omitempty" db:"homepage"`
	TrailerKey    *string    `json:"trailer_key,omitempty" db:"trailer_key"`
	PosterPath    *string    `json:"poster_path,omitempty" db:"poster_path"`
	BackdropPath  *string    `json:"backdrop_path,omitempty" db:"backdrop_path"`
	ReleaseDate   *time.Time `json:"release_date,omitempty" db:"release_date"`
	TmdbRating    *float64   `json:"tmdb_rating,omitempty" db:"tmdb_rating"`
	ImdbRating    *float64   `json:"imdb_rating,omitempty" db:"imdb_rating"`
	UserRating    int        `json:"user_rating" db:"user_rating"`
	Watchlist     bool       `json:"watchlist" db:"watchlist"`
	IsHistoric    bool       `json:"is_historic" db:"is_historic"`
	Src           *string    `json:"src,omitempty" db:"src"`
	LastSeenAt    time.Time  `json:"last_seen_at" db:"last_seen_at"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	RefreshedAt   time.Time  `json:"refreshed_at" db:"refreshed_at"`
}

// ItemDetails carries the enrichable fields of an Item as optional values.
// A nil field means "not supplied"; the merge policy in the catalog service
// fills nil fields from provider data and never overwrites set ones.
type ItemDetails struct {
	Title         *string    `json:"title,omitempty"`
	OriginalTitle *string    `json:"original_title,omitempty"`
	ImdbID        *string    `json:"imdb_id,omitempty"`
	TrailerKey    *string    `json:"trailer_key,omitempty"`
	Overview      *string    `json:"overview,omitempty"`
	Homepage      *string    `json:"homepage,omitempty"`
	PosterPath    *string    `json:"poster_path,omitempty"`
	BackdropPath  *string    `json:"backdrop_path,omitempty"`
	ReleaseDate   *time.Time `json:"release_date,omitempty"`
	TmdbRating    *float64   `json:"tmdb_rating,omitempty"`
	ImdbRating    *float64   `json:"imdb_rating,omitempty"`
	GenreIDs      []int      `json:"genre_ids,omitempty"`
}

// ItemWithStats is a catalog row joined with the item's latest episode and
// the count of episodes that have a playable source.
type ItemWithStats struct {
	Item
	LatestEpisode    *Episode `json:"latest_episode,omitempty"`
	PlayableEpisodes int      `json:"playable_episodes" db:"playable_episodes"`
}

// ListFilter describes one catalog page request after the core has
// resolved the visibility rules: ExcludeWatchlist hides watchlist-flagged
// items from non-watchlist views.
type ListFilter struct {
	Type             ListType
	OrderBy          SortField
	Desc             bool
	ExcludeWatchlist bool
	Limit            int
	Offset           int
}

// TitleRef is a minimal item projection used for the loose title lookup.
type TitleRef struct {
	ID    uuid.UUID `db:"id"`
	Title string    `db:"title"`
}

// ──────────────────── Episode ────────────────────

// Episode belongs to exactly one TV item, keyed by the owning item's
// TMDB id rather than its internal id. Seen is the only locally owned
// field; everything else is replaced from provider data on resync.
type Episode struct {
	ID      uuid.UUID  `json:"id" db:"id"`
	TmdbID  int        `json:"tmdb_id" db:"tmdb_id"`
	Season  int        `json:"season" db:"season"`
	Episode int        `json:"episode" db:"episode"`
	Title   string     `json:"title" db:"title"`
	AirDate *time.Time `json:"air_date,omitempty" db:"air_date"`
	Seen    bool       `json:"seen" db:"seen"`
	Src     *string    `json:"src,omitempty" db:"src"`
}

// SeasonGroup is one season's episodes for the grouped episode view.
type SeasonGroup struct {
	Season   int        `json:"season"`
	Episodes []*Episode `json:"episodes"`
}

// ──────────────────── Owned collections ────────────────────

type AlternativeTitle struct {
	ID      uuid.UUID `json:"id" db:"id"`
	TmdbID  int       `json:"tmdb_id" db:"tmdb_id"`
	Country string    `json:"country" db:"country"`
	Title   string    `json:"title" db:"title"`
}

type Genre struct {
	ID   int    `json:"id" db:"id"` // TMDB genre id
	Name string `json:"name" db:"name"`
}

// ──────────────────── Settings ────────────────────

// Settings is the process-wide configuration record. The catalog core only
// reads it; mutation belongs to external configuration management.
type Settings struct {
	ShowWatchlistEverywhere  bool `json:"show_watchlist_everywhere"`
	EpisodeSpoilerProtection bool `json:"episode_spoiler_protection"`
}

// ──────────────────── Provider documents ────────────────────

// Details is the TMDB details document for a movie or TV show.
type Details struct {
	ID            int     `json:"id"`
	Title         string  `json:"title"`
	Name          string  `json:"name"`
	OriginalTitle string  `json:"original_title"`
	OriginalName  string  `json:"original_name"`
	Overview      string  `json:"overview"`
	Homepage      string  `json:"homepage"`
	PosterPath    string  `json:"poster_path"`
	BackdropPath  string  `json:"backdrop_path"`
	ReleaseDate   string  `json:"release_date"`
	FirstAirDate  string  `json:"first_air_date"`
	VoteAverage   float64 `json:"vote_average"`
	ImdbID        string  `json:"imdb_id"`
	ExternalIDs   struct {
		ImdbID string `json:"imdb_id"`
	} `json:"external_ids"`
	Genres []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
	Videos struct {
		Results []Video `json:"results"`
	} `json:"videos"`
}

// ResolvedTitle returns the usable title of a details document, trying the
// movie field first and falling back to the TV field. Empty means the
// provider returned nothing usable.
func (d *Details) ResolvedTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.Name
}

// ResolvedOriginalTitle mirrors ResolvedTitle for the original-language title.
func (d *Details) ResolvedOriginalTitle() string {
	if d.OriginalTitle != "" {
		return d.OriginalTitle
	}
	return d.OriginalName
}

// ResolvedImdbID prefers the TV-specific external_ids sub-document over the
// movie-level field.
func (d *Details) ResolvedImdbID() string {
	if d.ExternalIDs.ImdbID != "" {
		return d.ExternalIDs.ImdbID
	}
	return d.ImdbID
}

// ResolvedReleaseDate returns the release date string, falling back to the
// TV first-air date.
func (d *Details) ResolvedReleaseDate() string {
	if d.ReleaseDate != "" {
		return d.ReleaseDate
	}
	return d.FirstAirDate
}

// GenreIDs returns the set of genre ids carried by the details document.
func (d *Details) GenreIDs() []int {
	ids := make([]int, 0, len(d.Genres))
	for _, g := range d.Genres {
		ids = append(ids, g.ID)
	}
	return ids
}

type Video struct {
	Key string `json:"key"`
}

// Season is one season from the TMDB TV episode listing.
type Season struct {
	SeasonNumber int             `json:"season_number"`
	Episodes     []SeasonEpisode `json:"episodes"`
}

type SeasonEpisode struct {
	EpisodeNumber int    `json:"episode_number"`
	Name          string `json:"name"`
	AirDate       string `json:"air_date"`
}

// AltTitle is one entry from the TMDB alternative titles listing.
type AltTitle struct {
	Country string `json:"iso_3166_1"`
	Title   string `json:"title"`
}
