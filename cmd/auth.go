package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthURL prints the Spotify authorization URL for the user-facing consent
// flow, optionally opening it in the default browser. The user completes the
// flow and pastes the authorization code into `auth login`.
func (r *Runner) AuthURL(ctx context.Context, cmd *cli.Command) error {
	coordinator, err := r.requireCoordinator()
	if err != nil {
		return err
	}

	state := shared.GenerateState()
	url := coordinator.AuthURL(state)

	r.writePlain("%s\n", url)
	r.writePlain("%s\n", r.palette.Help("After authorizing, copy the `code` query parameter from the redirect and run `spotctl auth login <code>`."))

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(url); err != nil {
			r.logger.Warnf("failed to open browser: %v", err)
		}
	}

	return nil
}

// AuthLogin exchanges a pasted authorization code for a credential and
// persists it as the connected session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	coordinator, err := r.requireCoordinator()
	if err != nil {
		return err
	}

	code := cmd.StringArg("code")
	if code == "" {
		return fmt.Errorf("%w: authorization code", shared.ErrMissingArgument)
	}

	r.logger.Info("exchanging authorization code")

	cred, err := coordinator.ExchangeAuthorizationCode(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to connect session: %w", err)
	}

	r.writePlain("%s\n", r.palette.OK("✓ Connected"))
	r.writePlain("Token type: %s\n", cred.TokenType)
	r.writePlain("Expires in: %ds\n", cred.ExpiresIn)
	if cred.Scope != "" {
		r.writePlain("Scope: %s\n", cred.Scope)
	}

	return nil
}

// AuthStatus reports whether a session is connected and, when possible, the
// profile it belongs to.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	coordinator, err := r.requireCoordinator()
	if err != nil {
		return err
	}

	if !coordinator.IsConnected() {
		r.writePlain("%s\n", r.palette.Warn("✗ Not connected"))
		r.writePlain("%s\n", r.palette.Help("Run `spotctl auth url` to start the consent flow."))
		return nil
	}

	r.writePlain("%s\n", r.palette.OK("✓ Connected"))

	if r.spotify != nil {
		if user, err := r.spotify.CurrentUser(ctx); err == nil {
			r.writePlain("User: %s (%s)\n", user.DisplayName, user.ID)
		} else {
			r.logger.Debugf("profile lookup failed: %v", err)
		}
	}

	return nil
}

// AuthRefresh forces a refresh exchange regardless of staleness.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	coordinator, err := r.requireCoordinator()
	if err != nil {
		return err
	}

	r.logger.Info("forcing token refresh")

	if !coordinator.ForceRefresh(ctx) {
		return fmt.Errorf("%w: forced refresh did not produce a new token", shared.ErrExchangeFailed)
	}

	return r.writePlain("%s\n", r.palette.OK("✓ Token refreshed"))
}
