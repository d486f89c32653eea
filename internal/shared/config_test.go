package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("parses a TOML file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[credentials.spotify]
client_id = "file-id"
client_secret = "file-secret"

[chart]
url = "https://example.com/chart"
timeout_sec = 10

[output]
dir = "out"
batch_size = 25
batch_offset = 0
rate_limit = 5.0

[database]
path = "cache.db"
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		t.Setenv(EnvSpotifyClientID, "")
		t.Setenv(EnvSpotifyClientSecret, "")

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}

		if config.Credentials.Spotify.ClientID != "file-id" {
			t.Errorf("ClientID = %q", config.Credentials.Spotify.ClientID)
		}
		if config.Chart.URL != "https://example.com/chart" {
			t.Errorf("Chart.URL = %q", config.Chart.URL)
		}
		if config.Output.BatchSize != 25 {
			t.Errorf("BatchSize = %d", config.Output.BatchSize)
		}
		if config.Output.RateLimit != 5.0 {
			t.Errorf("RateLimit = %v", config.Output.RateLimit)
		}
		if config.Database.Path != "cache.db" {
			t.Errorf("Database.Path = %q", config.Database.Path)
		}
	})

	t.Run("environment variables override file credentials", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[credentials.spotify]
client_id = "file-id"
client_secret = "file-secret"
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		t.Setenv(EnvSpotifyClientID, "env-id")
		t.Setenv(EnvSpotifyClientSecret, "env-secret")

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig failed: %v", err)
		}
		if config.Credentials.Spotify.ClientID != "env-id" {
			t.Errorf("ClientID = %q, want env override", config.Credentials.Spotify.ClientID)
		}
		if config.Credentials.Spotify.ClientSecret != "env-secret" {
			t.Errorf("ClientSecret = %q, want env override", config.Credentials.Spotify.ClientSecret)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed TOML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(path, []byte("not [valid"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfig(path); err == nil {
			t.Error("expected error for malformed TOML")
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Chart.URL == "" {
		t.Error("default chart URL is empty")
	}
	if config.Output.BatchSize != 50 {
		t.Errorf("default BatchSize = %d, want 50", config.Output.BatchSize)
	}
	if config.Output.BatchOffset != 51 {
		t.Errorf("default BatchOffset = %d, want 51", config.Output.BatchOffset)
	}
	if config.Output.RateLimit <= 0 {
		t.Errorf("default RateLimit = %v, want positive", config.Output.RateLimit)
	}
	if config.Database.Path == "" {
		t.Error("default database path is empty")
	}
}

func TestCreateConfigFile(t *testing.T) {
	t.Run("writes the example config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("CreateConfigFile failed: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("created config does not load: %v", err)
		}
		if config.Output.BatchSize != 50 {
			t.Errorf("BatchSize = %d", config.Output.BatchSize)
		}
	})

	t.Run("refuses to overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("existing"), 0644); err != nil {
			t.Fatal(err)
		}
		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error when file exists")
		}
	})
}
