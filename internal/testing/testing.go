// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/desertthunder/spotctl/internal/auth"
	"github.com/desertthunder/spotctl/internal/services"
)

// MockTokenSource is a test double for [services.TokenSource].
type MockTokenSource struct {
	Token        string
	Err          error
	UserErr      error
	RefreshOK    bool
	AcquireCalls atomic.Int32
	UserCalls    atomic.Int32
	RefreshCalls atomic.Int32
}

func (m *MockTokenSource) AcquireAccessToken(ctx context.Context, related *auth.Credential) (string, error) {
	m.AcquireCalls.Add(1)
	return m.Token, m.Err
}

func (m *MockTokenSource) AcquireUserToken(ctx context.Context) (string, error) {
	m.UserCalls.Add(1)
	if m.UserErr != nil {
		return "", m.UserErr
	}
	return m.Token, m.Err
}

func (m *MockTokenSource) ForceRefresh(ctx context.Context) bool {
	m.RefreshCalls.Add(1)
	return m.RefreshOK
}

// MockService is a test double for [services.Service]
type MockService struct {
	User   *services.User
	Tracks []services.Track
	Err    error
}

func (m *MockService) CurrentUser(ctx context.Context) (*services.User, error) {
	return m.User, m.Err
}

func (m *MockService) Track(ctx context.Context, trackID string) (*services.Track, error) {
	if len(m.Tracks) > 0 {
		return &m.Tracks[0], m.Err
	}
	return nil, m.Err
}

func (m *MockService) SeveralTracks(ctx context.Context, trackIDs []string) ([]services.Track, error) {
	return m.Tracks, m.Err
}

func (m *MockService) Album(ctx context.Context, albumID string) (*services.Album, error) {
	return &services.Album{}, m.Err
}

func (m *MockService) NewReleases(ctx context.Context, limit, offset int) (*services.PaginatedAlbums, error) {
	return &services.PaginatedAlbums{}, m.Err
}

func (m *MockService) Playlist(ctx context.Context, playlistID string) (*services.Playlist, error) {
	return &services.Playlist{}, m.Err
}

func (m *MockService) UserPlaylists(ctx context.Context, limit, offset int) (*services.PaginatedPlaylists, error) {
	return &services.PaginatedPlaylists{}, m.Err
}

func (m *MockService) SavedTracks(ctx context.Context, limit, offset int) (*services.PaginatedSavedTracks, error) {
	return &services.PaginatedSavedTracks{}, m.Err
}

func (m *MockService) TopTracks(ctx context.Context, timeRange string, limit int) (*services.PaginatedTracks, error) {
	return &services.PaginatedTracks{Items: m.Tracks}, m.Err
}

func (m *MockService) Search(ctx context.Context, query string, limit int) ([]services.Track, error) {
	return m.Tracks, m.Err
}

func (m *MockService) Name() string { return "mock" }

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
