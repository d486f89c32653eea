// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// scrapeCommand handles chart scraping
func scrapeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "scrape",
		Usage: "Scrape the Billboard Hot 100 chart",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write entries to a CSV file instead of stdout",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Scrape,
	}
}

// enrichCommand handles the batch enrichment run
func enrichCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "enrich",
		Usage: "Enrich chart entries with Spotify metadata in numbered CSV batches",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "CSV file of Song,Artist rows (scrapes the live chart when omitted)",
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Usage:   "Directory for batch files",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Rows per batch file",
			},
			&cli.IntFlag{
				Name:  "batch-offset",
				Usage: "Numbering starts at offset+1",
				Value: -1,
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Usage: "Metadata lookups per second",
			},
			&cli.BoolFlag{
				Name:  "cache",
				Usage: "Consult and populate the local lookup cache",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Render live progress in the terminal",
			},
		},
		Action: r.Enrich,
	}
}

// encodeCommand handles genre multi-hot encoding
func encodeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "encode",
		Usage: "Expand a batch file's genre column into indicator columns",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "CSV file to encode",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output CSV path (defaults to <input>_encoded.csv)",
			},
			&cli.StringFlag{
				Name:  "column",
				Usage: "Genre column name",
				Value: "artist_genres",
			},
		},
		Action: r.Encode,
	}
}
