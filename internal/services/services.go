// package services defines interface Service for the Spotify Web API and
// its HTTP implementation.
package services

import (
	"context"

	"github.com/desertthunder/spotctl/internal/auth"
)

// TokenSource supplies bearer tokens for API requests. The auth package's
// Coordinator satisfies it; tests substitute doubles.
type TokenSource interface {
	// AcquireAccessToken returns a usable token, transparently refreshing a
	// stale one. A non-nil related credential is refreshed independently.
	AcquireAccessToken(ctx context.Context, related *auth.Credential) (string, error)

	// AcquireUserToken returns a token backed by a connected user session,
	// or ErrNotAuthenticated when there is none.
	AcquireUserToken(ctx context.Context) (string, error)

	// ForceRefresh refreshes unconditionally, typically after an upstream
	// 401. Reports whether a new token was obtained.
	ForceRefresh(ctx context.Context) bool
}

// Service defines the catalog and library operations the CLI consumes.
type Service interface {
	// CurrentUser retrieves the connected user's profile.
	CurrentUser(ctx context.Context) (*User, error)

	// Track retrieves a single track by ID.
	Track(ctx context.Context, trackID string) (*Track, error)

	// SeveralTracks retrieves multiple tracks by their IDs (up to 50).
	SeveralTracks(ctx context.Context, trackIDs []string) ([]Track, error)

	// Album retrieves a single album by ID.
	Album(ctx context.Context, albumID string) (*Album, error)

	// NewReleases retrieves newly released albums.
	NewReleases(ctx context.Context, limit, offset int) (*PaginatedAlbums, error)

	// Playlist retrieves a playlist by ID.
	Playlist(ctx context.Context, playlistID string) (*Playlist, error)

	// UserPlaylists retrieves the connected user's playlists with pagination.
	UserPlaylists(ctx context.Context, limit, offset int) (*PaginatedPlaylists, error)

	// SavedTracks retrieves the connected user's saved tracks with pagination.
	SavedTracks(ctx context.Context, limit, offset int) (*PaginatedSavedTracks, error)

	// TopTracks retrieves the connected user's top tracks over the given
	// time range ("short_term", "medium_term", or "long_term").
	TopTracks(ctx context.Context, timeRange string, limit int) (*PaginatedTracks, error)

	// Search searches the catalog for tracks matching the query.
	Search(ctx context.Context, query string, limit int) ([]Track, error)

	// Name returns the provider name.
	Name() string
}
