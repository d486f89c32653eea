package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/chartpull/internal/chart"
	"github.com/desertthunder/chartpull/internal/formatter"
	"github.com/urfave/cli/v3"
)

// Scrape fetches the Hot 100 chart and prints or saves the entries.
func (r *Runner) Scrape(ctx context.Context, cmd *cli.Command) error {
	url := r.config.Chart.URL

	r.logger.Info("scraping chart", "url", url)

	scraper := chart.NewScraperWithClient(r.httpClient, url)
	entries, err := scraper.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("scrape failed: %w", err)
	}

	r.logger.Info("scraped chart entries", "count", len(entries))

	if output := cmd.String("output"); output != "" {
		if err := formatter.WriteChartCSV(entries, output); err != nil {
			return err
		}
		return r.writePlain("✓ Saved %d entries to %s\n", len(entries), output)
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}

	for i, e := range entries {
		if err := r.writePlain("%3d. %s - %s\n", i+1, e.Artist, e.Song); err != nil {
			return err
		}
	}
	return nil
}
