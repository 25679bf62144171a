package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("Valid File", func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.toml")

			content := `
[credentials.spotify]
client_id = "abc"
client_secret = "xyz"
redirect_uri = "http://localhost:9999/cb"
scopes = "user-read-private user-top-read"

[database]
path = "test.db"
max_open_conns = 3

[api]
rate_limit = 5.0
cache_ttl = 120
`
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			spotify := config.Credentials.Spotify
			if spotify.ClientID != "abc" || spotify.ClientSecret != "xyz" {
				t.Errorf("unexpected credentials: %+v", spotify)
			}
			if spotify.RedirectURI != "http://localhost:9999/cb" {
				t.Errorf("unexpected redirect URI: %s", spotify.RedirectURI)
			}
			if config.Database.Path != "test.db" {
				t.Errorf("unexpected database path: %s", config.Database.Path)
			}
			if config.API.RateLimit != 5.0 || config.API.CacheTTL != 120 {
				t.Errorf("unexpected API settings: %+v", config.API)
			}
		})

		t.Run("Missing File", func(t *testing.T) {
			_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
			if !errors.Is(err, ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})

		t.Run("Invalid TOML", func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.toml")
			os.WriteFile(path, []byte("not [valid toml"), 0644)

			_, err := LoadConfig(path)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})

	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Credentials.Spotify.RedirectURI == "" {
			t.Error("expected default redirect URI")
		}
		if config.Database.Path == "" {
			t.Error("expected default database path")
		}
		if config.API.RateLimit <= 0 {
			t.Error("expected positive default rate limit")
		}
	})

	t.Run("ScopeList", func(t *testing.T) {
		spotify := SpotifyConfig{Scopes: "user-read-private  user-top-read"}
		scopes := spotify.ScopeList()
		if len(scopes) != 2 {
			t.Fatalf("expected 2 scopes, got %v", scopes)
		}
		if scopes[0] != "user-read-private" || scopes[1] != "user-top-read" {
			t.Errorf("unexpected scopes: %v", scopes)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		t.Run("Creates File", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := CreateConfigFile(path); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if _, err := os.Stat(path); err != nil {
				t.Errorf("expected file to exist: %v", err)
			}
		})

		t.Run("Refuses Overwrite", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			os.WriteFile(path, []byte("existing"), 0644)

			if err := CreateConfigFile(path); err == nil {
				t.Error("expected error for existing file")
			}
		})
	})
}
