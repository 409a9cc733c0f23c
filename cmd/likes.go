package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/likesync/internal/formatter"
	"github.com/desertthunder/likesync/internal/models"
	"github.com/desertthunder/likesync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// LikesList prints the source account's liked tracks, oldest first.
func (r *Runner) LikesList(ctx context.Context, cmd *cli.Command) error {
	list, err := r.fetchSource(ctx, !cmd.Bool("json"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(list, cmd.Bool("pretty"))
	}

	r.writePlain("\n")
	for i, t := range list {
		r.writePlain("%4d. %s\n", i+1, t)
	}
	return nil
}

// LikesExport writes the source account's liked tracks to a timestamped export file.
func (r *Runner) LikesExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	dir := cmd.String("dir")
	if dir == "" {
		dir = r.config.Export.Dir
	}

	list, err := r.fetchSource(ctx, true)
	if err != nil {
		return err
	}

	path, err := formatter.WriteLikedExport(list, dir, format, r.now())
	if err != nil {
		return err
	}

	r.logger.Info("export written", "path", path, "tracks", len(list), "format", format)
	r.writePlain("✓ Saved %d liked tracks to %s\n", len(list), path)
	return nil
}

// fetchSource fetches the source library, optionally printing progress and a summary.
func (r *Runner) fetchSource(ctx context.Context, verbose bool) (models.LikedList, error) {
	src, err := r.sourceLibrary()
	if err != nil {
		return nil, err
	}

	engine, closeDB := r.newEngine(false)
	defer closeDB()

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if verbose && update.Phase == tasks.FetchLiked {
				r.writePlain("📥 %s\n", update.Message)
			}
		}
	}()

	list, err := engine.FetchLiked(ctx, src, progressCh, r.fetchOpts())
	close(progressCh)
	<-done

	if err != nil {
		return nil, err
	}

	if verbose {
		r.writePlainln("Completed finding liked tracks")
		r.writePlain("Total tracks found: %d\n", len(list))
		if oldest, ok := list.Oldest(); ok {
			newest, _ := list.Newest()
			r.writePlain("Oldest track: %s\n", oldest)
			r.writePlain("Newest track: %s\n", newest)
		}
	}

	return list, nil
}

// loadTracks reads --from when given and fetches the source account otherwise.
//
// A fetched list is saved to an export file unless --export=false.
func (r *Runner) loadTracks(ctx context.Context, cmd *cli.Command) (models.LikedList, error) {
	if from := cmd.String("from"); from != "" {
		list, err := formatter.ReadLikedExport(from)
		if err != nil {
			return nil, err
		}
		r.logger.Info("loaded export", "path", from, "tracks", len(list))
		r.writePlain("Loaded %d tracks from %s\n", len(list), from)
		return list, nil
	}

	list, err := r.fetchSource(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch liked tracks: %w", err)
	}

	if cmd.Bool("export") && len(list) > 0 {
		path, err := formatter.WriteLikedExport(list, r.config.Export.Dir, formatter.FormatTSV, r.now())
		if err != nil {
			r.logger.Warn("failed to save export", "error", err)
		} else {
			r.writePlain("Saved liked tracks to %s\n", path)
		}
	}

	return list, nil
}
