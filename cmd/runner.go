package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotctl/internal/auth"
	"github.com/desertthunder/spotctl/internal/services"
	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/desertthunder/spotctl/internal/ui"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	coordinator *auth.Coordinator
	spotify     services.Service
	logger      *log.Logger
	output      io.Writer
	palette     *ui.Palette
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	Coordinator *auth.Coordinator
	Spotify     services.Service
	Logger      *log.Logger
	Output      io.Writer
	Palette     *ui.Palette
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Palette == nil {
		opts.Palette = ui.DefaultPalette
	}

	return &Runner{
		config:      opts.Config,
		coordinator: opts.Coordinator,
		spotify:     opts.Spotify,
		logger:      opts.Logger,
		output:      opts.Output,
		palette:     opts.Palette,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, trackCommand, albumCommand, playlistCommand,
		playlistsCommand, savedCommand, searchCommand, topCommand, releasesCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireCoordinator returns the auth coordinator or an error directing the
// user to run setup first.
func (r *Runner) requireCoordinator() (*auth.Coordinator, error) {
	if r.coordinator == nil {
		return nil, fmt.Errorf("%w: add client_id and client_secret to config.toml (run `spotctl setup` to scaffold one)", shared.ErrMissingCredentials)
	}
	return r.coordinator, nil
}

// requireService returns the Spotify service or an error directing the user
// to run setup first.
func (r *Runner) requireService() (services.Service, error) {
	if r.spotify == nil {
		return nil, fmt.Errorf("%w: add client_id and client_secret to config.toml (run `spotctl setup` to scaffold one)", shared.ErrMissingCredentials)
	}
	return r.spotify, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
