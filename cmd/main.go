package main

import (
	"context"
	"os"

	"github.com/desertthunder/chartpull/internal/services"
	"github.com/desertthunder/chartpull/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var spotifyService services.MetadataService
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(map[string]string{
			"client_id":     config.Credentials.Spotify.ClientID,
			"client_secret": config.Credentials.Spotify.ClientSecret,
		}); err == nil {
			spotifyService = svc
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Spotify: spotifyService,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "chartpull",
		Usage:    "Scrape the Hot 100 and enrich it with Spotify metadata",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
