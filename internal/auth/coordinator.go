package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotctl/internal/shared"
	"golang.org/x/oauth2"
)

// staleWindow is the margin before actual expiration at which a stored
// credential is treated as needing refresh.
const staleWindow = 5 * time.Minute

// refreshResult is the settled outcome of one refresh exchange, delivered
// identically to the initiator and every queued waiter.
type refreshResult struct {
	token string
	err   error
}

// Coordinator owns the credential lifecycle: it decides which grant to use
// for each request, tracks expiration lazily, and guarantees that concurrent
// callers share at most one in-flight refresh exchange.
//
// The mutex guards the refreshing flag, the waiter queue, and every store
// access. The network exchange itself runs outside the lock so that waiters
// can enqueue while it is in flight.
type Coordinator struct {
	exchanger Exchanger
	store     CredentialStore
	oauth     *oauth2.Config
	logger    *log.Logger

	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshResult

	// now is swapped out by tests to simulate clock advance.
	now func() time.Time
}

// CoordinatorOpts contains the configuration and collaborators for a
// [Coordinator]. ClientID and ClientSecret are required; Exchanger, Store,
// and Logger default to an [ExchangeClient], a [MemoryStore], and a stderr
// logger respectively.
type CoordinatorOpts struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       []string
	Exchanger    Exchanger
	Store        CredentialStore
	Logger       *log.Logger
}

// NewCoordinator creates a coordinator for the given application credentials.
func NewCoordinator(opts CoordinatorOpts) (*Coordinator, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}
	if opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}

	if opts.Exchanger == nil {
		opts.Exchanger = NewExchangeClient(opts.ClientID, opts.ClientSecret, opts.RedirectURI, nil)
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	config := &oauth2.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		RedirectURL:  opts.RedirectURI,
		Scopes:       opts.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &Coordinator{
		exchanger: opts.Exchanger,
		store:     opts.Store,
		oauth:     config,
		logger:    opts.Logger,
		now:       time.Now,
	}, nil
}

// mustBeConfigured panics when the coordinator is missing its collaborators.
// Use before configuration is a programming error, not a runtime condition.
func (c *Coordinator) mustBeConfigured() {
	if c == nil || c.oauth == nil || c.exchanger == nil || c.store == nil {
		panic("auth: coordinator used before configuration")
	}
}

// AuthURL builds the provider's authorization URL for the user-facing
// consent flow. The state parameter should be random per attempt (see
// shared.GenerateState).
func (c *Coordinator) AuthURL(state string) string {
	c.mustBeConfigured()
	return c.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// IsConnected reports whether a persisted access token exists. It does not
// imply the token is unexpired; expiration is handled lazily by
// [Coordinator.AcquireAccessToken].
func (c *Coordinator) IsConnected() bool {
	c.mustBeConfigured()
	c.mu.Lock()
	defer c.mu.Unlock()

	state, err := c.store.Load()
	return err == nil && state != nil && state.AccessToken != ""
}

// ExchangeAuthorizationCode trades an authorization code obtained from the
// consent flow for a credential and persists it as the connected session.
func (c *Coordinator) ExchangeAuthorizationCode(ctx context.Context, code string) (*Credential, error) {
	c.mustBeConfigured()
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code", shared.ErrMissingArgument)
	}

	cred, err := c.exchanger.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	err = c.store.Save(StoredState{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		ExpiresAt:    c.now().Add(time.Duration(cred.ExpiresIn) * time.Second),
	})
	c.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to persist credentials: %w", err)
	}

	c.logger.Debug("authorization code exchanged", "expires_in", cred.ExpiresIn)
	return cred, nil
}

// AcquireAccessToken returns a usable bearer token.
//
// With a connected session it returns the cached token while fresh, joins
// any in-flight refresh as a waiter, or initiates the single refresh
// exchange itself. Without a connected session it falls back to a one-off
// client-credentials token that is not persisted.
//
// When related is non-nil its refresh token is exchanged directly; that path
// is independent per credential and does not touch the global staleness
// state or the single-flight queue.
func (c *Coordinator) AcquireAccessToken(ctx context.Context, related *Credential) (string, error) {
	c.mustBeConfigured()

	if related != nil {
		return c.refreshRelated(ctx, related)
	}

	c.mu.Lock()

	if c.refreshing {
		waiter := make(chan refreshResult, 1)
		c.waiters = append(c.waiters, waiter)
		c.mu.Unlock()
		return c.await(ctx, waiter)
	}

	state, err := c.store.Load()
	if err != nil {
		c.mu.Unlock()
		return "", fmt.Errorf("failed to load stored credentials: %w", err)
	}

	if state == nil || state.AccessToken == "" {
		c.mu.Unlock()
		// No connected session: hand out a short-lived app-level token
		// without persisting it as the user credential.
		cred, err := c.exchanger.ClientCredentials(ctx)
		if err != nil {
			return "", err
		}
		return cred.AccessToken, nil
	}

	if c.now().Add(staleWindow).Before(state.ExpiresAt) {
		token := state.AccessToken
		c.mu.Unlock()
		return token, nil
	}

	c.refreshing = true
	refreshToken := state.RefreshToken
	c.mu.Unlock()

	res := c.runRefresh(ctx, refreshToken)
	return res.token, res.err
}

// AcquireUserToken is [Coordinator.AcquireAccessToken] for endpoints that
// require user identity. It never falls back to an app-level token: callers
// get ErrNotAuthenticated when no session is connected.
func (c *Coordinator) AcquireUserToken(ctx context.Context) (string, error) {
	c.mustBeConfigured()
	if !c.IsConnected() {
		return "", shared.ErrNotAuthenticated
	}
	return c.AcquireAccessToken(ctx, nil)
}

// ForceRefresh unconditionally refreshes the stored credential, ignoring
// staleness. A force-refresh concurrent with any other refresh coalesces
// into the single in-flight exchange and shares its outcome. Returns true
// when a new token was obtained and persisted.
func (c *Coordinator) ForceRefresh(ctx context.Context) bool {
	c.mustBeConfigured()

	c.mu.Lock()

	if c.refreshing {
		waiter := make(chan refreshResult, 1)
		c.waiters = append(c.waiters, waiter)
		c.mu.Unlock()
		_, err := c.await(ctx, waiter)
		return err == nil
	}

	state, err := c.store.Load()
	if err != nil || state == nil {
		c.mu.Unlock()
		return false
	}

	c.refreshing = true
	refreshToken := state.RefreshToken
	c.mu.Unlock()

	res := c.runRefresh(ctx, refreshToken)
	return res.err == nil
}

// await blocks until the in-flight refresh settles or the context is done.
func (c *Coordinator) await(ctx context.Context, waiter <-chan refreshResult) (string, error) {
	select {
	case res := <-waiter:
		return res.token, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// runRefresh performs the refresh exchange and resolves every waiter that
// queued while it was in flight with the identical outcome. The caller must
// have set the refreshing flag; runRefresh clears it on every exit path (it
// is straight-line with no early returns). A failed exchange leaves the
// stored credentials untouched so the next caller retries.
func (c *Coordinator) runRefresh(ctx context.Context, refreshToken string) refreshResult {
	var res refreshResult
	var cred *Credential

	if refreshToken == "" {
		res.err = shared.ErrNoRefreshToken
	} else if exchanged, err := c.exchanger.Refresh(ctx, refreshToken); err != nil {
		res.err = err
	} else {
		cred = exchanged
		if cred.RefreshToken == "" {
			// Provider omits refresh_token when it is unchanged; retain
			// the one we refreshed with.
			cred.RefreshToken = refreshToken
		}
		res.token = cred.AccessToken
	}

	c.mu.Lock()
	if res.err == nil {
		err := c.store.Save(StoredState{
			AccessToken:  cred.AccessToken,
			RefreshToken: cred.RefreshToken,
			ExpiresAt:    c.now().Add(time.Duration(cred.ExpiresIn) * time.Second),
		})
		if err != nil {
			res = refreshResult{err: fmt.Errorf("failed to persist credentials: %w", err)}
		}
	}

	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.mu.Unlock()

	// Buffered channels: sends never block even if a waiter abandoned its
	// result after a context cancellation.
	for _, w := range waiters {
		w <- res
	}

	if res.err != nil {
		c.logger.Warn("token refresh failed", "waiters", len(waiters), "err", res.err)
	} else {
		c.logger.Debug("token refreshed", "waiters", len(waiters))
	}

	return res
}

// refreshRelated exchanges a caller-supplied credential's refresh token.
// The result is not persisted and no global state changes.
func (c *Coordinator) refreshRelated(ctx context.Context, related *Credential) (string, error) {
	if related.RefreshToken == "" {
		return "", shared.ErrNoRefreshToken
	}

	cred, err := c.exchanger.Refresh(ctx, related.RefreshToken)
	if err != nil {
		return "", err
	}

	return cred.AccessToken, nil
}
