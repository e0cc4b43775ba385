package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// OMDbClient fetches IMDB ratings through the OMDb API. It is the
// catalog's external rating provider.
type OMDbClient struct {
	apiKey string
	client *http.Client
}

func NewOMDbClient(apiKey string) *OMDbClient {
	return &OMDbClient{
		apiKey: apiKey,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// ParseRating returns the IMDB rating for the given IMDB id, or nil when
// OMDb has no usable rating ("N/A" or missing).
func (c *OMDbClient) ParseRating(ctx context.Context, imdbID string) (*float64, error) {
	if imdbID == "" || c.apiKey == "" {
		return nil, fmt.Errorf("imdb_id and api_key are required")
	}

	reqURL := fmt.Sprintf("http://www.omdbapi.com/?i=%s&apikey=%s",
		url.QueryEscape(imdbID), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var omdb struct {
		Response   string `json:"Response"`
		Error      string `json:"Error"`
		IMDBRating string `json:"imdbRating"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&omdb); err != nil {
		return nil, err
	}
	if omdb.Response == "False" {
		return nil, fmt.Errorf("OMDb error: %s", omdb.Error)
	}

	if omdb.IMDBRating == "" || omdb.IMDBRating == "N/A" {
		return nil, nil
	}
	var r float64
	if _, err := fmt.Sscanf(omdb.IMDBRating, "%f", &r); err != nil {
		return nil, nil
	}
	return &r, nil
}
