package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/crono/flox/internal/models"
)

const tmdbBaseURL = "https://api.themoviedb.org/3"

// TMDBClient talks to the TMDB v3 API. It is the catalog's metadata
// provider: details documents, trailer videos, TV episode listings,
// genre lists and alternative titles.
type TMDBClient struct {
	apiKey   string
	language string
	client   *http.Client
}

// NewTMDBClient builds a client fetching localized metadata in the given
// language ("de", "en", ...). An empty language uses the TMDB default.
func NewTMDBClient(apiKey, language string) *TMDBClient {
	return &TMDBClient{
		apiKey:   apiKey,
		language: language,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// localized appends the configured language to a path that already
// carries query parameters, or starts the query when it has none.
func (c *TMDBClient) localized(path string) string {
	if c.language == "" {
		return path
	}
	sep := "?"
	if strings.ContainsRune(path, '?') {
		sep = "&"
	}
	return path + sep + "language=" + url.QueryEscape(c.language)
}

func (c *TMDBClient) get(ctx context.Context, path string, out interface{}) error {
	if c.apiKey == "" {
		return fmt.Errorf("TMDB API key not configured")
	}

	sep := "?"
	if strings.ContainsRune(path, '?') {
		sep = "&"
	}
	reqURL := fmt.Sprintf("%s%s%sapi_key=%s", tmdbBaseURL, path, sep, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("TMDB request returned %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Details fetches the full details document for one item, with videos and
// external ids appended so a single call covers the enrichment fields.
func (c *TMDBClient) Details(ctx context.Context, tmdbID int, kind models.MediaType) (*models.Details, error) {
	var details models.Details
	path := c.localized(fmt.Sprintf("/%s/%d?append_to_response=videos,external_ids", kind, tmdbID))
	if err := c.get(ctx, path, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

// Videos fetches the video list for an item in the given language. Used as
// the fallback when the details document carries no trailer.
func (c *TMDBClient) Videos(ctx context.Context, tmdbID int, kind models.MediaType, language string) ([]models.Video, error) {
	var result struct {
		Results []models.Video `json:"results"`
	}
	path := fmt.Sprintf("/%s/%d/videos?language=%s", kind, tmdbID, language)
	if err := c.get(ctx, path, &result); err != nil {
		return nil, err
	}
	return result.Results, nil
}

// TVEpisodes fetches the full season/episode structure of a TV show:
// one call for the season index, one per season for its episodes.
func (c *TMDBClient) TVEpisodes(ctx context.Context, tmdbID int) ([]models.Season, error) {
	var show struct {
		Seasons []struct {
			SeasonNumber int `json:"season_number"`
		} `json:"seasons"`
	}
	if err := c.get(ctx, c.localized(fmt.Sprintf("/tv/%d", tmdbID)), &show); err != nil {
		return nil, err
	}

	seasons := make([]models.Season, 0, len(show.Seasons))
	for _, s := range show.Seasons {
		var season models.Season
		path := c.localized(fmt.Sprintf("/tv/%d/season/%d", tmdbID, s.SeasonNumber))
		if err := c.get(ctx, path, &season); err != nil {
			return nil, err
		}
		season.SeasonNumber = s.SeasonNumber
		seasons = append(seasons, season)
	}
	return seasons, nil
}

// GenreList fetches the catalog-wide genre list for one media kind.
func (c *TMDBClient) GenreList(ctx context.Context, kind models.MediaType) ([]models.Genre, error) {
	var result struct {
		Genres []models.Genre `json:"genres"`
	}
	if err := c.get(ctx, c.localized(fmt.Sprintf("/genre/%s/list", kind)), &result); err != nil {
		return nil, err
	}
	return result.Genres, nil
}

// AlternativeTitles fetches the alternate titles of an item. The movie and
// TV endpoints name the list differently, so both fields are decoded.
func (c *TMDBClient) AlternativeTitles(ctx context.Context, tmdbID int, kind models.MediaType) ([]models.AltTitle, error) {
	var result struct {
		Titles  []models.AltTitle `json:"titles"`
		Results []models.AltTitle `json:"results"`
	}
	if err := c.get(ctx, fmt.Sprintf("/%s/%d/alternative_titles", kind, tmdbID), &result); err != nil {
		return nil, err
	}
	if len(result.Titles) > 0 {
		return result.Titles, nil
	}
	return result.Results, nil
}
