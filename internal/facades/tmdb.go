package facades

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sbilibin2017/netflox-api/internal/logger"
	"github.com/sbilibin2017/netflox-api/internal/models"
)

// DefaultTMDBBaseURL is the public TMDB v3 API.
const DefaultTMDBBaseURL = "https://api.themoviedb.org/3"

var (
	// ErrNotFound is returned when TMDB answers 404 for the requested resource.
	ErrNotFound = errors.New("catalog resource not found")
	// ErrUpstreamStatus is returned for any other non-2xx status.
	ErrUpstreamStatus = errors.New("unexpected catalog status")
)

// TMDBFacade reads the movie catalog over the TMDB HTTP API.
// The API key stays on the server and is sent as the api_key query parameter.
type TMDBFacade struct {
	hc      *http.Client
	baseURL string
	apiKey  string
}

// NewTMDBFacade creates a facade. An empty baseURL selects DefaultTMDBBaseURL.
func NewTMDBFacade(baseURL, apiKey string, timeout time.Duration) *TMDBFacade {
	if baseURL == "" {
		baseURL = DefaultTMDBBaseURL
	}
	return &TMDBFacade{
		hc:      &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// GetPage fetches a list endpoint such as /trending/all/week.
func (f *TMDBFacade) GetPage(ctx context.Context, path string, params map[string]string) (*models.CatalogPage, error) {
	var page models.CatalogPage
	if err := f.get(ctx, path, params, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		page.Results = []models.Title{}
	}
	return &page, nil
}

// GetVideos fetches the clips attached to a movie or TV title.
func (f *TMDBFacade) GetVideos(ctx context.Context, mediaType string, id int64) ([]models.Video, error) {
	var resp struct {
		Results []models.Video `json:"results"`
	}
	path := fmt.Sprintf("/%s/%d/videos", mediaType, id)
	if err := f.get(ctx, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (f *TMDBFacade) get(ctx context.Context, path string, params map[string]string, dest any) error {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	q.Set("api_key", f.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.hc.Do(req)
	if err != nil {
		err = redactURL(err, f.baseURL+path)
		logger.Log.Errorw("failed to call catalog API", "path", path, "error", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			StatusMessage string `json:"status_message"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)
		logger.Log.Errorw("catalog API returned an error",
			"path", path,
			"status", resp.StatusCode,
			"message", body.StatusMessage,
		)
		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		logger.Log.Errorw("failed to decode catalog response", "path", path, "error", err)
		return err
	}
	return nil
}

// redactURL replaces the request URL carried by a transport error, which holds
// the api_key, with the bare endpoint.
func redactURL(err error, endpoint string) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		urlErr.URL = endpoint
	}
	return err
}
