package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/desertthunder/spotctl/internal/shared"
)

func newTestExchangeClient(t *testing.T, handler http.HandlerFunc) (*ExchangeClient, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewExchangeClient("abc", "xyz", "http://localhost:8080/callback", srv.Client())
	client.tokenURL = srv.URL
	return client, srv
}

func TestExchangeClient(t *testing.T) {
	ctx := context.Background()

	wantAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("abc:xyz"))

	t.Run("Exchange Code", func(t *testing.T) {
		client, _ := newTestExchangeClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			if got := r.Header.Get("Authorization"); got != wantAuth {
				t.Errorf("expected basic auth header %q, got %q", wantAuth, got)
			}
			if got := r.Header.Get("Content-Type"); got != "application/x-www-form-urlencoded" {
				t.Errorf("unexpected content type %q", got)
			}

			r.ParseForm()
			if got := r.PostForm.Get("grant_type"); got != "authorization_code" {
				t.Errorf("expected authorization_code grant, got %q", got)
			}
			if got := r.PostForm.Get("code"); got != "code123" {
				t.Errorf("expected code123, got %q", got)
			}
			if got := r.PostForm.Get("redirect_uri"); got != "http://localhost:8080/callback" {
				t.Errorf("unexpected redirect_uri %q", got)
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"AT1","refresh_token":"RT1","expires_in":3600,"token_type":"Bearer","scope":"user-read-private"}`))
		})

		cred, err := client.ExchangeCode(ctx, "code123")
		if err != nil {
			t.Fatalf("exchange failed: %v", err)
		}
		if cred.AccessToken != "AT1" || cred.RefreshToken != "RT1" || cred.ExpiresIn != 3600 {
			t.Errorf("unexpected credential: %+v", cred)
		}
		if cred.TokenType != "Bearer" {
			t.Errorf("unexpected token type %q", cred.TokenType)
		}
	})

	t.Run("Refresh", func(t *testing.T) {
		client, _ := newTestExchangeClient(t, func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
				t.Errorf("expected refresh_token grant, got %q", got)
			}
			if got := r.PostForm.Get("refresh_token"); got != "RT1" {
				t.Errorf("expected RT1, got %q", got)
			}

			// Provider may omit refresh_token on refresh responses.
			w.Write([]byte(`{"access_token":"AT2","expires_in":3600,"token_type":"Bearer"}`))
		})

		cred, err := client.Refresh(ctx, "RT1")
		if err != nil {
			t.Fatalf("refresh failed: %v", err)
		}
		if cred.AccessToken != "AT2" {
			t.Errorf("expected AT2, got %s", cred.AccessToken)
		}
		if cred.RefreshToken != "" {
			t.Errorf("expected omitted refresh token, got %s", cred.RefreshToken)
		}
	})

	t.Run("Client Credentials", func(t *testing.T) {
		client, _ := newTestExchangeClient(t, func(w http.ResponseWriter, r *http.Request) {
			r.ParseForm()
			if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
				t.Errorf("expected client_credentials grant, got %q", got)
			}
			if r.PostForm.Has("refresh_token") || r.PostForm.Has("code") {
				t.Error("client_credentials request must not carry other grant parameters")
			}

			w.Write([]byte(`{"access_token":"APP1","expires_in":3600,"token_type":"Bearer"}`))
		})

		cred, err := client.ClientCredentials(ctx)
		if err != nil {
			t.Fatalf("client credentials failed: %v", err)
		}
		if cred.AccessToken != "APP1" {
			t.Errorf("expected APP1, got %s", cred.AccessToken)
		}
	})

	t.Run("Non-2xx Response", func(t *testing.T) {
		client, _ := newTestExchangeClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
		})

		_, err := client.Refresh(ctx, "revoked")
		if !errors.Is(err, shared.ErrExchangeFailed) {
			t.Errorf("expected ErrExchangeFailed, got %v", err)
		}
	})

	t.Run("Unparseable Body", func(t *testing.T) {
		client, _ := newTestExchangeClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		})

		_, err := client.ClientCredentials(ctx)
		if !errors.Is(err, shared.ErrExchangeFailed) {
			t.Errorf("expected ErrExchangeFailed, got %v", err)
		}
	})

	t.Run("Missing Access Token", func(t *testing.T) {
		client, _ := newTestExchangeClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"token_type":"Bearer","expires_in":3600}`))
		})

		_, err := client.ClientCredentials(ctx)
		if !errors.Is(err, shared.ErrExchangeFailed) {
			t.Errorf("expected ErrExchangeFailed, got %v", err)
		}
	})

	t.Run("Transport Failure", func(t *testing.T) {
		client, srv := newTestExchangeClient(t, func(w http.ResponseWriter, r *http.Request) {})
		srv.Close()

		_, err := client.Refresh(ctx, "RT1")
		if !errors.Is(err, shared.ErrTransportFailed) {
			t.Errorf("expected ErrTransportFailed, got %v", err)
		}
	})

	t.Run("Default HTTP Client Timeout", func(t *testing.T) {
		client := NewExchangeClient("abc", "xyz", "", nil)
		if client.httpClient.Timeout != exchangeTimeout {
			t.Errorf("expected %v timeout, got %v", exchangeTimeout, client.httpClient.Timeout)
		}
	})
}
