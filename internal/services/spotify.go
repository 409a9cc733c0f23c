// Spotify library implementation
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/get-users-saved-tracks
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyBaseURL = "https://api.spotify.com/v1"

	// idSeparator is the percent-encoded comma the ids parameter expects between identifiers.
	idSeparator = "%2C"
)

// SpotifyArtist represents a simplified artist object.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyTrack represents the track object nested in a saved-track item.
type SpotifyTrack struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Artists []SpotifyArtist `json:"artists"`
	URI     string          `json:"uri"`
	IsLocal bool            `json:"is_local"`
}

// SpotifySavedTrack represents a track saved in the user's library.
type SpotifySavedTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPaginatedTracks represents a paginated response of saved tracks.
type SpotifyPaginatedTracks struct {
	Href     string              `json:"href"`
	Items    []SpotifySavedTrack `json:"items"`
	Total    int                 `json:"total"`
	Limit    int                 `json:"limit"`
	Offset   int                 `json:"offset"`
	Next     *string             `json:"next"`
	Previous *string             `json:"previous"`
}

// SavedTracksPage is one page of the listing, in the order the API returned it (newest first).
type SavedTracksPage struct {
	Tracks  []models.Track
	Skipped int    // items without a usable track id
	Total   int    // library size reported by the API
	Next    string // full URL of the next page, empty on the last page
}

// LibraryClient reads and mutates one account's saved tracks.
type LibraryClient struct {
	baseURL    string
	market     string
	httpClient *http.Client
	logger     *log.Logger
}

// ClientOption customizes a [LibraryClient].
type ClientOption func(*clientOptions)

type clientOptions struct {
	base   *http.Client
	logger *log.Logger
}

// WithHTTPClient sets the client whose transport carries the authenticated requests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(o *clientOptions) { o.base = c }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) ClientOption {
	return func(o *clientOptions) { o.logger = l }
}

// NewLibraryClient creates a client authenticated with a pre-obtained bearer token.
func NewLibraryClient(baseURL, market, token string, opts ...ClientOption) (*LibraryClient, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("%w: bearer token is empty", shared.ErrMissingCredentials)
	}
	if baseURL == "" {
		baseURL = spotifyBaseURL
	}

	o := clientOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.base == nil {
		o.base = http.DefaultClient
	}
	if o.logger == nil {
		o.logger = shared.NewLogger(io.Discard)
	}

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: o.base.Transport},
		Timeout:   o.base.Timeout,
	}

	return &LibraryClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		market:     market,
		httpClient: httpClient,
		logger:     o.logger,
	}, nil
}

// SavedTracksURL builds the listing URL for the first page (or any offset).
func (c *LibraryClient) SavedTracksURL(limit, offset int) string {
	if limit <= 0 {
		limit = 20
	}
	if limit > shared.MaxBatchSize {
		limit = shared.MaxBatchSize
	}

	q := url.Values{}
	if c.market != "" {
		q.Set("market", c.market)
	}
	q.Set("limit", fmt.Sprint(limit))
	q.Set("offset", fmt.Sprint(offset))

	return c.baseURL + "/me/tracks?" + q.Encode()
}

// SavedTracks fetches the page at pageURL, which is either [LibraryClient.SavedTracksURL] or a previous page's Next.
func (c *LibraryClient) SavedTracks(ctx context.Context, pageURL string) (*SavedTracksPage, error) {
	body, err := c.do(ctx, http.MethodGet, pageURL)
	if err != nil {
		return nil, err
	}

	var resp SpotifyPaginatedTracks
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	page := &SavedTracksPage{
		Tracks: make([]models.Track, 0, len(resp.Items)),
		Total:  resp.Total,
	}
	if resp.Next != nil {
		page.Next = *resp.Next
	}

	for _, item := range resp.Items {
		if item.Track == nil || item.Track.ID == "" {
			page.Skipped++
			continue
		}
		page.Tracks = append(page.Tracks, models.Track{ID: item.Track.ID, Name: item.Track.Name})
	}

	return page, nil
}

// ModifyURL builds the mutate URL with ids joined by the percent-encoded comma.
func (c *LibraryClient) ModifyURL(ids []string) string {
	escaped := make([]string, len(ids))
	for i, id := range ids {
		escaped[i] = url.QueryEscape(id)
	}
	return c.baseURL + "/me/tracks?ids=" + strings.Join(escaped, idSeparator)
}

// SaveTracks adds ids to the library with a single PUT.
func (c *LibraryClient) SaveTracks(ctx context.Context, ids []string) error {
	return c.modify(ctx, http.MethodPut, ids)
}

// RemoveTracks removes ids from the library with a single DELETE.
func (c *LibraryClient) RemoveTracks(ctx context.Context, ids []string) error {
	return c.modify(ctx, http.MethodDelete, ids)
}

// Modify applies op to ids.
func (c *LibraryClient) Modify(ctx context.Context, op models.Operation, ids []string) error {
	switch op {
	case models.OpAdd:
		return c.SaveTracks(ctx, ids)
	case models.OpDelete:
		return c.RemoveTracks(ctx, ids)
	default:
		return fmt.Errorf("%w: unknown operation %q", shared.ErrInvalidArgument, op)
	}
}

func (c *LibraryClient) modify(ctx context.Context, method string, ids []string) error {
	if len(ids) == 0 {
		return fmt.Errorf("%w: no track IDs provided", shared.ErrInvalidArgument)
	}
	if len(ids) > shared.MaxBatchSize {
		return fmt.Errorf("%w: maximum %d track IDs allowed", shared.ErrInvalidArgument, shared.MaxBatchSize)
	}

	_, err := c.do(ctx, method, c.ModifyURL(ids))
	return err
}

// do performs an authenticated request and returns the body of a 200 response.
func (c *LibraryClient) do(ctx context.Context, method, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("request", "method", method, "url", rawURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{
			Method:     method,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return body, nil
}
