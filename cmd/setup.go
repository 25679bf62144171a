package main

import (
	"context"

	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/urfave/cli/v3"
)

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Scaffold config.toml and initialize the credential database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// Setup writes the example config when none exists and runs the credential
// database migrations.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if err := shared.CreateConfigFile(configPath); err != nil {
		r.logger.Warnf("config not written: %v", err)
	} else {
		r.writePlain("%s\n", r.palette.OK("✓ Wrote "+configPath))
		r.writePlain("%s\n", r.palette.Help("Add your Spotify client_id and client_secret, then run `spotctl auth url`."))
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := shared.RunMigrations(db); err != nil {
		return err
	}

	return r.writePlain("%s\n", r.palette.OK("✓ Credential database ready at "+r.config.Database.Path))
}
