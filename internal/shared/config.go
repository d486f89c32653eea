package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override credential values from the config file.
const (
	EnvSpotifyClientID     = "SPOTIFY_CLIENT_ID"
	EnvSpotifyClientSecret = "SPOTIFY_CLIENT_SECRET"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Chart       ChartConfig       `toml:"chart"`
	Output      OutputConfig      `toml:"output"`
	Database    DatabaseConfig    `toml:"database"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
}

// SpotifyConfig contains Spotify API credentials for the client-credentials flow.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
}

// ChartConfig contains chart scraping settings.
type ChartConfig struct {
	URL        string `toml:"url"`
	TimeoutSec int    `toml:"timeout_sec"`
}

// OutputConfig contains batch output settings.
type OutputConfig struct {
	Dir         string  `toml:"dir"`
	BatchSize   int     `toml:"batch_size"`
	BatchOffset int     `toml:"batch_offset"`
	RateLimit   float64 `toml:"rate_limit"`
}

// DatabaseConfig contains lookup cache database settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET environment variables take
// precedence over values from the file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnvOverrides()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
//
// Environment credential overrides are applied here as well so the pipeline
// can run without a config file at all.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnvOverrides()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, ErrInvalidArgument)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if id := os.Getenv(EnvSpotifyClientID); id != "" {
		c.Credentials.Spotify.ClientID = id
	}
	if secret := os.Getenv(EnvSpotifyClientSecret); secret != "" {
		c.Credentials.Spotify.ClientSecret = secret
	}
}
