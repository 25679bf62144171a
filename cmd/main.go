package main

import (
	"context"
	"os"
	"time"

	"github.com/desertthunder/spotctl/internal/auth"
	"github.com/desertthunder/spotctl/internal/services"
	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.WithLogger(shared.NewLogger(nil), "app", "spotctl")

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warnf("ignoring config.toml: %v", err)
		}
	}

	var coordinator *auth.Coordinator
	var spotify services.Service

	spotifyConf := config.Credentials.Spotify
	if spotifyConf.ClientID != "" && spotifyConf.ClientSecret != "" {
		store, err := openStore(config)
		if err != nil {
			logger.Fatalf("failed to open credential store: %v", err)
		}

		coordinator, err = auth.NewCoordinator(auth.CoordinatorOpts{
			ClientID:     spotifyConf.ClientID,
			ClientSecret: spotifyConf.ClientSecret,
			RedirectURI:  spotifyConf.RedirectURI,
			Scopes:       spotifyConf.ScopeList(),
			Store:        store,
			Logger:       logger,
		})
		if err != nil {
			logger.Fatalf("failed to configure auth: %v", err)
		}

		spotify, err = services.NewSpotifyService(services.SpotifyOpts{
			TokenSource: coordinator,
			RateLimit:   config.API.RateLimit,
			CacheTTL:    time.Duration(config.API.CacheTTL) * time.Second,
			Logger:      logger,
		})
		if err != nil {
			logger.Fatalf("failed to configure spotify client: %v", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:      config,
		Coordinator: coordinator,
		Spotify:     spotify,
		Logger:      logger,
	})

	app := &cli.Command{
		Name:     "spotctl",
		Usage:    "Spotify from the command line",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

// openStore opens the credential database, running migrations so a first
// invocation works without an explicit setup.
func openStore(config *shared.Config) (*auth.SQLiteStore, error) {
	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, err
	}

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return auth.NewSQLiteStore(db), nil
}
