package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/chartpull/internal/chart"
	"github.com/desertthunder/chartpull/internal/formatter"
	"github.com/desertthunder/chartpull/internal/models"
	"github.com/desertthunder/chartpull/internal/repositories"
	"github.com/desertthunder/chartpull/internal/shared"
	"github.com/desertthunder/chartpull/internal/tasks"
	"github.com/desertthunder/chartpull/internal/ui"
	"github.com/urfave/cli/v3"
)

// Enrich runs the full pipeline: load entries, look up features, flush batches.
func (r *Runner) Enrich(ctx context.Context, cmd *cli.Command) error {
	if r.spotify == nil {
		return fmt.Errorf("%w: Spotify service not initialized (set credentials in config.toml or SPOTIFY_CLIENT_ID/SPOTIFY_CLIENT_SECRET)", shared.ErrServiceUnavailable)
	}

	if err := r.spotify.Authenticate(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	entries, err := r.loadEntries(ctx, cmd.String("input"))
	if err != nil {
		return err
	}
	r.logger.Info("loaded chart entries", "count", len(entries))

	var cache tasks.LookupCacher
	if cmd.Bool("cache") {
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open lookup cache: %w", err)
		}
		defer db.Close()

		shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to migrate lookup cache: %w", err)
		}

		cache = repositories.NewLookupCacheAdapter(repositories.NewLookupRepository(db))
	}

	opts := tasks.EnrichOpts{
		OutputDir:   r.config.Output.Dir,
		BatchSize:   r.config.Output.BatchSize,
		BatchOffset: r.config.Output.BatchOffset,
		RateLimit:   r.config.Output.RateLimit,
	}
	if dir := cmd.String("output-dir"); dir != "" {
		opts.OutputDir = dir
	}
	if size := cmd.Int("batch-size"); size > 0 {
		opts.BatchSize = int(size)
	}
	if offset := cmd.Int("batch-offset"); offset >= 0 {
		opts.BatchOffset = int(offset)
	}
	if limit := cmd.Float("rate-limit"); limit > 0 {
		opts.RateLimit = limit
	}

	engine := tasks.NewEnrichEngine(r.spotify, cache, r.logger)

	if cmd.Bool("tui") {
		return r.enrichTUI(ctx, engine, entries, opts)
	}
	return r.enrichPlain(ctx, engine, entries, opts)
}

// enrichPlain runs the engine with progress echoed through the logger.
func (r *Runner) enrichPlain(ctx context.Context, engine *tasks.EnrichEngine, entries []models.ChartEntry, opts tasks.EnrichOpts) error {
	prog := make(chan tasks.ProgressUpdate, len(entries))
	go func() {
		for update := range prog {
			r.logger.Debug(update.Message, "phase", update.Phase.String())
		}
	}()

	result, err := engine.Run(ctx, prog, entries, opts)
	close(prog)
	if err != nil {
		return err
	}

	return r.printSummary(result)
}

// enrichTUI runs the engine behind a live progress view; logs go to a file
// so they do not fight the terminal.
func (r *Runner) enrichTUI(ctx context.Context, engine *tasks.EnrichEngine, entries []models.ChartEntry, opts tasks.EnrichOpts) error {
	fileLogger, err := shared.NewFileLogger("./tmp/chartpull-enrich.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)
	engine.SetLogger(fileLogger)

	prog := make(chan tasks.ProgressUpdate, 64)
	done := make(chan ui.RunComplete, 1)

	go func() {
		result, err := engine.Run(ctx, prog, entries, opts)
		close(prog)
		done <- ui.RunComplete{Result: result, Err: err}
	}()

	model := ui.NewModel(prog, done)
	p := tea.NewProgram(model)

	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("error running progress UI: %w", err)
	}

	result, runErr := final.(ui.Model).Result()
	if runErr != nil {
		return runErr
	}
	if result == nil {
		// Quit before completion; the engine goroutine still owns the run.
		return nil
	}
	return r.printSummary(result)
}

func (r *Runner) printSummary(result *tasks.EnrichResult) error {
	r.writePlainln("✓ Run %s complete", result.RunID)
	r.writePlain("  Processed: %d\n", result.Processed)
	r.writePlain("  Enriched:  %d\n", result.Succeeded)
	r.writePlain("  Failed:    %d\n", result.Failed)
	if result.CacheHits > 0 {
		r.writePlain("  Cache hits: %d\n", result.CacheHits)
	}
	for _, f := range result.BatchFiles {
		r.writePlain("  Batch: %s\n", f)
	}
	if result.FailedFile != "" {
		r.writePlain("  Failures: %s\n", result.FailedFile)
	}
	return r.writePlain("  Manifest: %s\n", result.ManifestPath)
}

// loadEntries reads the input CSV when provided, otherwise scrapes the live chart.
func (r *Runner) loadEntries(ctx context.Context, input string) ([]models.ChartEntry, error) {
	if input != "" {
		entries, err := formatter.ReadChartCSV(input)
		if err != nil {
			return nil, fmt.Errorf("failed to load chart CSV: %w", err)
		}
		return entries, nil
	}

	scraper := chart.NewScraperWithClient(r.httpClient, r.config.Chart.URL)
	entries, err := scraper.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("scrape failed: %w", err)
	}
	return entries, nil
}
