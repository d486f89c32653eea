package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/chartpull/internal/repositories"
	"github.com/desertthunder/chartpull/internal/shared"
	"github.com/urfave/cli/v3"
)

// cacheCommand handles inspection of the local lookup cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect the local lookup cache",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List cached lookups",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Filter by normalized artist name",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of lookups to return",
						Value: 50,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.CacheList,
			},
			{
				Name:   "stats",
				Usage:  "Show cache statistics",
				Action: r.CacheStats,
			},
		},
	}
}

func (r *Runner) openCache() (*sql.DB, *repositories.LookupRepository, error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open lookup cache: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to migrate lookup cache: %w", err)
	}

	return db, repositories.NewLookupRepository(db), nil
}

// CacheList prints cached lookups, newest first.
func (r *Runner) CacheList(ctx context.Context, cmd *cli.Command) error {
	db, repo, err := r.openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{"limit": int(cmd.Int("limit"))}
	if artist := cmd.String("artist"); artist != "" {
		criteria["artist"] = artist
	}

	lookups, err := repo.List(criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		type entry struct {
			Song    string   `json:"song"`
			Artist  string   `json:"artist"`
			TrackID string   `json:"track_id"`
			Genres  []string `json:"artist_genres"`
		}
		out := make([]entry, 0, len(lookups))
		for _, l := range lookups {
			out = append(out, entry{l.Song, l.Artist, l.Features.TrackID, l.Features.ArtistGenres})
		}
		return r.writeJSON(out, true)
	}

	for _, l := range lookups {
		if err := r.writePlain("%s - %s (track %s, popularity %d)\n",
			l.Artist, l.Song, l.Features.TrackID, l.Features.Popularity); err != nil {
			return err
		}
	}
	return r.writePlain("%d cached lookups\n", len(lookups))
}

// CacheStats prints the cache row count.
func (r *Runner) CacheStats(ctx context.Context, cmd *cli.Command) error {
	db, repo, err := r.openCache()
	if err != nil {
		return err
	}
	defer db.Close()

	count, err := repo.Count()
	if err != nil {
		return err
	}

	r.writePlainln("Lookup cache: %s", r.config.Database.Path)
	return r.writePlain("  Cached lookups: %d\n", count)
}
