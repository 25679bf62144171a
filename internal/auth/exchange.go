package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/desertthunder/spotctl/internal/shared"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"

	// The token endpoint gets its own timeout; it also bounds how long any
	// waiter can block on an in-flight refresh.
	exchangeTimeout = 30 * time.Second
)

// Credential is the token endpoint's response for any grant type.
//
// RefreshToken is empty on client-credentials responses and on refresh
// responses where the provider leaves the refresh token unchanged.
type Credential struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Exchanger performs grant exchanges against the provider's token endpoint.
type Exchanger interface {
	// ExchangeCode trades an authorization code for a credential.
	ExchangeCode(ctx context.Context, code string) (*Credential, error)

	// Refresh trades a refresh token for a new credential.
	Refresh(ctx context.Context, refreshToken string) (*Credential, error)

	// ClientCredentials obtains an application-level (non-user) credential.
	ClientCredentials(ctx context.Context) (*Credential, error)
}

// ExchangeClient is a stateless [Exchanger] for the Spotify accounts token
// endpoint. It does not retry; retry policy belongs to the [Coordinator].
type ExchangeClient struct {
	tokenURL     string
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
}

// NewExchangeClient creates an exchange client for the given application
// credentials. When client is nil a client with a 30-second timeout is used.
func NewExchangeClient(clientID, clientSecret, redirectURI string, client *http.Client) *ExchangeClient {
	if client == nil {
		client = &http.Client{Timeout: exchangeTimeout}
	}

	return &ExchangeClient{
		tokenURL:     spotifyTokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		httpClient:   client,
	}
}

// ExchangeCode trades an authorization code for a credential.
func (c *ExchangeClient) ExchangeCode(ctx context.Context, code string) (*Credential, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)
	return c.post(ctx, form)
}

// Refresh trades a refresh token for a new credential.
func (c *ExchangeClient) Refresh(ctx context.Context, refreshToken string) (*Credential, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	return c.post(ctx, form)
}

// ClientCredentials obtains an application-level credential.
func (c *ExchangeClient) ClientCredentials(ctx context.Context) (*Credential, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	return c.post(ctx, form)
}

// post sends a form-encoded grant request with HTTP Basic auth and decodes
// the JSON credential response.
func (c *ExchangeClient) post(ctx context.Context, form url.Values) (*Credential, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+basicAuth(c.clientID, c.clientSecret))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrTransportFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrExchangeFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var cred Credential
	if err := json.NewDecoder(resp.Body).Decode(&cred); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", shared.ErrExchangeFailed, err)
	}

	if cred.AccessToken == "" {
		return nil, fmt.Errorf("%w: response missing access_token", shared.ErrExchangeFailed)
	}

	return &cred, nil
}

func basicAuth(clientID, clientSecret string) string {
	return base64.StdEncoding.EncodeToString([]byte(clientID + ":" + clientSecret))
}
