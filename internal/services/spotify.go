// Spotify Web API implementation of [Service]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

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

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotctl/internal/shared"
	"golang.org/x/time/rate"
)

const spotifyBaseURL = "https://api.spotify.com/v1"

type followers struct {
	Total int `json:"total"`
}

// User represents a Spotify user profile.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	Country     string    `json:"country"`
	Product     string    `json:"product"` // premium, free, etc.
	Followers   followers `json:"followers"`
	Images      []Image   `json:"images"`
}

// Image represents an image resource.
type Image struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// Track represents a Spotify track.
type Track struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Artists     []Artist    `json:"artists"`
	Album       Album       `json:"album"`
	DurationMS  int         `json:"duration_ms"`
	Explicit    bool        `json:"explicit"`
	ExternalIDs externalIDs `json:"external_ids"`
	Popularity  int         `json:"popularity"`
	URI         string      `json:"uri"`
}

// Artist represents a Spotify artist.
type Artist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	Images []Image  `json:"images"`
	URI    string   `json:"uri"`
}

// Album represents a Spotify album.
type Album struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Artists     []Artist `json:"artists"`
	ReleaseDate string   `json:"release_date"`
	TotalTracks int      `json:"total_tracks"`
	Images      []Image  `json:"images"`
	URI         string   `json:"uri"`
}

// Owner identifies the user owning a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistTracks struct {
	Total int             `json:"total"`
	Items []PlaylistTrack `json:"items"`
}

// Playlist represents a Spotify playlist.
type Playlist struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Owner       Owner          `json:"owner"`
	Public      bool           `json:"public"`
	Tracks      playlistTracks `json:"tracks"`
	Images      []Image        `json:"images"`
	URI         string         `json:"uri"`
}

// PlaylistTrack represents a track within a playlist context.
type PlaylistTrack struct {
	AddedAt string `json:"added_at"`
	Track   Track  `json:"track"`
}

// SavedTrack represents a track saved in the user's library.
type SavedTrack struct {
	AddedAt string `json:"added_at"`
	Track   Track  `json:"track"`
}

// PaginatedTracks represents a paginated response of tracks.
type PaginatedTracks struct {
	Items    []Track `json:"items"`
	Total    int     `json:"total"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

// PaginatedSavedTracks represents a paginated response of saved tracks.
type PaginatedSavedTracks struct {
	Items    []SavedTrack `json:"items"`
	Total    int          `json:"total"`
	Limit    int          `json:"limit"`
	Offset   int          `json:"offset"`
	Next     *string      `json:"next"`
	Previous *string      `json:"previous"`
}

// PaginatedAlbums represents a paginated response of albums.
type PaginatedAlbums struct {
	Items    []Album `json:"items"`
	Total    int     `json:"total"`
	Limit    int     `json:"limit"`
	Offset   int     `json:"offset"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
}

type simplePlaylistTracks struct {
	Total int `json:"total"`
}

// SimplePlaylist represents a simplified playlist object (used in lists).
type SimplePlaylist struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Owner       Owner                `json:"owner"`
	Public      bool                 `json:"public"`
	Tracks      simplePlaylistTracks `json:"tracks"`
	Images      []Image              `json:"images"`
	URI         string               `json:"uri"`
}

// PaginatedPlaylists represents a paginated response of playlists.
type PaginatedPlaylists struct {
	Items    []SimplePlaylist `json:"items"`
	Total    int              `json:"total"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
}

// SpotifyService implements [Service] against the Spotify Web API. Every
// request acquires its token from the [TokenSource]; a 401 triggers one
// forced refresh and one retry before the failure is surfaced.
type SpotifyService struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *ResponseCache
	logger     *log.Logger
}

// SpotifyOpts contains collaborators for a [SpotifyService]. TokenSource is
// required; the rest have working defaults (shared HTTP client, 10 req/s
// limit, no response cache).
type SpotifyOpts struct {
	TokenSource TokenSource
	HTTPClient  *http.Client
	RateLimit   float64
	CacheTTL    time.Duration
	Logger      *log.Logger
	BaseURL     string
}

// NewSpotifyService creates a Spotify Web API client.
func NewSpotifyService(opts SpotifyOpts) (*SpotifyService, error) {
	if opts.TokenSource == nil {
		return nil, fmt.Errorf("%w: token source", shared.ErrMissingCredentials)
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 10
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}

	var cache *ResponseCache
	if opts.CacheTTL > 0 {
		cache = NewResponseCache(opts.CacheTTL)
	}

	return &SpotifyService{
		baseURL:    opts.BaseURL,
		tokens:     opts.TokenSource,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		cache:      cache,
		logger:     opts.Logger,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated GET against the API and decodes the
// JSON response into result. userScoped selects the token acquisition path:
// user-scoped endpoints require a connected session and never fall back to
// an app-level token.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, userScoped bool, result any) error {
	if s.cache != nil {
		if body, ok := s.cache.Get(endpoint); ok {
			return json.Unmarshal(body, result)
		}
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	token, err := s.acquireToken(ctx, userScoped)
	if err != nil {
		return err
	}

	resp, err := s.send(ctx, endpoint, token)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		// One forced refresh, one retry. A second 401 surfaces unchanged.
		if !s.tokens.ForceRefresh(ctx) {
			return fmt.Errorf("%w: status %d", shared.ErrUnauthorized, http.StatusUnauthorized)
		}

		s.logger.Debug("retrying after forced refresh", "endpoint", endpoint)
		token, err = s.acquireToken(ctx, userScoped)
		if err != nil {
			return err
		}

		resp, err = s.send(ctx, endpoint, token)
		if err != nil {
			return err
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%w: status %d", shared.ErrUnauthorized, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apiStatusError{status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if s.cache != nil {
		s.cache.Set(endpoint, body)
	}

	return nil
}

// apiStatusError carries the upstream status so endpoint methods can map
// 404s to their domain sentinel. It unwraps to shared.ErrAPIRequest.
type apiStatusError struct {
	status int
}

func (e *apiStatusError) Error() string {
	return fmt.Sprintf("%v: status %d", shared.ErrAPIRequest, e.status)
}

func (e *apiStatusError) Unwrap() error { return shared.ErrAPIRequest }

func isNotFound(err error) bool {
	var statusErr *apiStatusError
	return errors.As(err, &statusErr) && statusErr.status == http.StatusNotFound
}

func (s *SpotifyService) acquireToken(ctx context.Context, userScoped bool) (string, error) {
	if userScoped {
		return s.tokens.AcquireUserToken(ctx)
	}
	return s.tokens.AcquireAccessToken(ctx, nil)
}

func (s *SpotifyService) send(ctx context.Context, endpoint, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	return resp, nil
}

// CurrentUser retrieves the connected user's profile.
func (s *SpotifyService) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if err := s.doRequest(ctx, "/me", true, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Track retrieves a single track by ID.
func (s *SpotifyService) Track(ctx context.Context, trackID string) (*Track, error) {
	var track Track
	endpoint := fmt.Sprintf("/tracks/%s", url.PathEscape(trackID))
	if err := s.doRequest(ctx, endpoint, false, &track); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrTrackNotFound, trackID)
		}
		return nil, err
	}
	return &track, nil
}

// SeveralTracks retrieves multiple tracks by their IDs (up to 50).
func (s *SpotifyService) SeveralTracks(ctx context.Context, trackIDs []string) ([]Track, error) {
	if len(trackIDs) == 0 {
		return nil, fmt.Errorf("%w: no track IDs provided", shared.ErrMissingArgument)
	}
	if len(trackIDs) > 50 {
		return nil, fmt.Errorf("%w: maximum 50 track IDs allowed", shared.ErrInvalidArgument)
	}

	endpoint := fmt.Sprintf("/tracks?ids=%s", url.QueryEscape(strings.Join(trackIDs, ",")))

	var response struct {
		Tracks []Track `json:"tracks"`
	}

	if err := s.doRequest(ctx, endpoint, false, &response); err != nil {
		return nil, err
	}

	return response.Tracks, nil
}

// Album retrieves a single album by ID.
func (s *SpotifyService) Album(ctx context.Context, albumID string) (*Album, error) {
	var album Album
	endpoint := fmt.Sprintf("/albums/%s", url.PathEscape(albumID))
	if err := s.doRequest(ctx, endpoint, false, &album); err != nil {
		return nil, err
	}
	return &album, nil
}

// NewReleases retrieves newly released albums. Works without a connected
// session (app-level token).
func (s *SpotifyService) NewReleases(ctx context.Context, limit, offset int) (*PaginatedAlbums, error) {
	limit = clampLimit(limit)
	endpoint := fmt.Sprintf("/browse/new-releases?limit=%d&offset=%d", limit, offset)

	var response struct {
		Albums PaginatedAlbums `json:"albums"`
	}

	if err := s.doRequest(ctx, endpoint, false, &response); err != nil {
		return nil, err
	}

	return &response.Albums, nil
}

// Playlist retrieves a playlist by ID.
func (s *SpotifyService) Playlist(ctx context.Context, playlistID string) (*Playlist, error) {
	endpoint := fmt.Sprintf("/playlists/%s", url.PathEscape(playlistID))

	var playlist Playlist
	if err := s.doRequest(ctx, endpoint, false, &playlist); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
		}
		return nil, err
	}

	return &playlist, nil
}

// UserPlaylists retrieves the connected user's playlists with pagination.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit, offset int) (*PaginatedPlaylists, error) {
	limit = clampLimit(limit)
	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

	var response PaginatedPlaylists
	if err := s.doRequest(ctx, endpoint, true, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// SavedTracks retrieves the connected user's saved tracks with pagination.
func (s *SpotifyService) SavedTracks(ctx context.Context, limit, offset int) (*PaginatedSavedTracks, error) {
	limit = clampLimit(limit)
	endpoint := fmt.Sprintf("/me/tracks?limit=%d&offset=%d", limit, offset)

	var response PaginatedSavedTracks
	if err := s.doRequest(ctx, endpoint, true, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// TopTracks retrieves the connected user's top tracks. Requires a connected
// session; there is no meaningful app-level fallback for personalized data.
func (s *SpotifyService) TopTracks(ctx context.Context, timeRange string, limit int) (*PaginatedTracks, error) {
	switch timeRange {
	case "":
		timeRange = "medium_term"
	case "short_term", "medium_term", "long_term":
	default:
		return nil, fmt.Errorf("%w: time range %q", shared.ErrInvalidArgument, timeRange)
	}

	limit = clampLimit(limit)
	endpoint := fmt.Sprintf("/me/top/tracks?time_range=%s&limit=%d", timeRange, limit)

	var response PaginatedTracks
	if err := s.doRequest(ctx, endpoint, true, &response); err != nil {
		return nil, err
	}

	return &response, nil
}

// Search searches the catalog for tracks matching the query.
func (s *SpotifyService) Search(ctx context.Context, query string, limit int) ([]Track, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	limit = clampLimit(limit)
	endpoint := fmt.Sprintf("/search?type=track&q=%s&limit=%d", url.QueryEscape(query), limit)

	var response struct {
		Tracks PaginatedTracks `json:"tracks"`
	}

	if err := s.doRequest(ctx, endpoint, false, &response); err != nil {
		return nil, err
	}

	return response.Tracks.Items, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 50 {
		return 50
	}
	return limit
}
