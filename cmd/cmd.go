// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func pageFlags() []cli.Flag {
	return append(outputFlags(),
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of items to return",
			Value: 20,
		},
		&cli.IntFlag{
			Name:  "offset",
			Usage: "Index of the first item to return",
		},
	)
}

// authCommand handles the OAuth session lifecycle.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the Spotify session",
		Commands: []*cli.Command{
			{
				Name:  "url",
				Usage: "Print the authorization URL for the consent flow",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "open",
						Usage: "Open the URL in the default browser",
					},
				},
				Action: r.AuthURL,
			},
			{
				Name:  "login",
				Usage: "Exchange an authorization code for a session",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "code",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show current session state",
				Action: r.AuthStatus,
			},
			{
				Name:   "refresh",
				Usage:  "Force a token refresh",
				Action: r.AuthRefresh,
			},
		},
	}
}

// trackCommand fetches a single track.
func trackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "track",
		Usage: "Show a track by ID",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "id",
			},
		},
		Flags:  outputFlags(),
		Action: r.Track,
	}
}

// albumCommand fetches a single album.
func albumCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "album",
		Usage: "Show an album by ID",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "id",
			},
		},
		Flags:  outputFlags(),
		Action: r.Album,
	}
}

// playlistCommand fetches a single playlist.
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "playlist",
		Usage: "Show a playlist by ID",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "id",
			},
		},
		Flags:  outputFlags(),
		Action: r.Playlist,
	}
}

// playlistsCommand lists the connected user's playlists.
func playlistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlists",
		Aliases: []string{"pl"},
		Usage:   "List your playlists",
		Flags:   pageFlags(),
		Action:  r.Playlists,
	}
}

// savedCommand lists the connected user's saved tracks.
func savedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "saved",
		Usage:  "List your saved tracks",
		Flags:  pageFlags(),
		Action: r.Saved,
	}
}

// searchCommand searches the catalog for tracks.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search for tracks",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "query",
			},
		},
		Flags:  pageFlags(),
		Action: r.Search,
	}
}

// topCommand lists the connected user's top tracks.
func topCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "top",
		Usage: "List your top tracks",
		Flags: append(pageFlags(),
			&cli.StringFlag{
				Name:  "range",
				Usage: "Time range: short_term, medium_term, or long_term",
				Value: "medium_term",
			},
		),
		Action: r.Top,
	}
}

// releasesCommand lists new album releases.
func releasesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "releases",
		Usage:  "List new album releases",
		Flags:  pageFlags(),
		Action: r.Releases,
	}
}
