package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotctl/internal/services"
	"github.com/desertthunder/spotctl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Track fetches a single track by ID.
func (r *Runner) Track(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.requireService()
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	track, err := svc.Track(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(track, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", r.palette.Title(track.Name))
	r.writePlain("Artist: %s\n", artistNames(track.Artists))
	r.writePlain("Album: %s\n", track.Album.Name)
	r.writePlain("Duration: %ds\n", track.DurationMS/1000)
	return nil
}

// Album fetches a single album by ID.
func (r *Runner) Album(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.requireService()
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: album id", shared.ErrMissingArgument)
	}

	album, err := svc.Album(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(album, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", r.palette.Title(album.Name))
	r.writePlain("Artist: %s\n", artistNames(album.Artists))
	r.writePlain("Released: %s\n", album.ReleaseDate)
	r.writePlain("Tracks: %d\n", album.TotalTracks)
	return nil
}

// Playlist fetches a playlist by ID.
func (r *Runner) Playlist(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.requireService()
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	playlist, err := svc.Playlist(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlist, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", r.palette.Title(playlist.Name))
	if playlist.Description != "" {
		r.writePlain("%s\n", playlist.Description)
	}
	r.writePlain("Owner: %s\n", playlist.Owner.DisplayName)
	r.writePlain("Tracks: %d\n", playlist.Tracks.Total)
	return nil
}

// Playlists lists the connected user's playlists.
func (r *Runner) Playlists(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.requireService()
	if err != nil {
		return err
	}

	page, err := svc.UserPlaylists(ctx, int(cmd.Int("limit")), int(cmd.Int("offset")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", r.palette.Title(fmt.Sprintf("Playlists (%d total)", page.Total)))
	for _, playlist := range page.Items {
		r.writePlain("%s  %s (%d tracks)\n", playlist.ID, playlist.Name, playlist.Tracks.Total)
	}
	return nil
}

// Saved lists the connected user's saved tracks.
func (r *Runner) Saved(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.requireService()
	if err != nil {
		return err
	}

	page, err := svc.SavedTracks(ctx, int(cmd.Int("limit")), int(cmd.Int("offset")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", r.palette.Title(fmt.Sprintf("Saved tracks (%d total)", page.Total)))
	for _, saved := range page.Items {
		r.writePlain("%s — %s\n", saved.Track.Name, artistNames(saved.Track.Artists))
	}
	return nil
}

// Search searches the catalog for tracks.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.requireService()
	if err != nil {
		return err
	}

	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	tracks, err := svc.Search(ctx, query, int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(tracks, cmd.Bool("pretty"))
	}

	for _, track := range tracks {
		r.writePlain("%s  %s — %s\n", track.ID, track.Name, artistNames(track.Artists))
	}
	return nil
}

// Top lists the connected user's top tracks.
func (r *Runner) Top(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.requireService()
	if err != nil {
		return err
	}

	page, err := svc.TopTracks(ctx, cmd.String("range"), int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", r.palette.Title("Top tracks"))
	for i, track := range page.Items {
		r.writePlain("%2d. %s — %s\n", i+1, track.Name, artistNames(track.Artists))
	}
	return nil
}

// Releases lists newly released albums.
func (r *Runner) Releases(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.requireService()
	if err != nil {
		return err
	}

	page, err := svc.NewReleases(ctx, int(cmd.Int("limit")), int(cmd.Int("offset")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(page, cmd.Bool("pretty"))
	}

	r.writePlain("%s\n", r.palette.Title("New releases"))
	for _, album := range page.Items {
		r.writePlain("%s  %s — %s\n", album.ID, album.Name, artistNames(album.Artists))
	}
	return nil
}

func artistNames(artists []services.Artist) string {
	names := make([]string, 0, len(artists))
	for _, artist := range artists {
		names = append(names, artist.Name)
	}
	return strings.Join(names, ", ")
}
