package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/chartpull/internal/formatter"
	"github.com/desertthunder/chartpull/internal/models"
	"github.com/desertthunder/chartpull/internal/repositories"
	"github.com/desertthunder/chartpull/internal/shared"
	th "github.com/desertthunder/chartpull/internal/testing"
)

const chartPage = `<!DOCTYPE html>
<html><body>
<ul class="o-chart-results-list-row">
	<li><h3 id="title-of-a-story">Golden</h3>
	<span class="c-label a-no-trucate">HUNTR/X</span></li>
</ul>
<ul class="o-chart-results-list-row">
	<li><h3 id="title-of-a-story">Ordinary</h3>
	<span class="c-label a-no-trucate">Alex Warren</span></li>
</ul>
</body></html>`

// newTestRunner builds a Runner wired to a chart page server and a capture buffer.
func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartPage))
	}))
	t.Cleanup(srv.Close)

	config := shared.DefaultConfig()
	config.Chart.URL = srv.URL
	config.Database.Path = filepath.Join(t.TempDir(), "cache.db")

	var buf bytes.Buffer
	runner := NewRunner(RunnerOpts{
		Config:     config,
		HTTPClient: srv.Client(),
		Logger:     shared.NewLogger(io.Discard),
		Output:     &buf,
	})
	return runner, &buf
}

func TestNewRunnerDefaults(t *testing.T) {
	runner := NewRunner(RunnerOpts{})

	if runner.config == nil {
		t.Error("config not defaulted")
	}
	if runner.logger == nil {
		t.Error("logger not defaulted")
	}
	if runner.output == nil {
		t.Error("output not defaulted")
	}
	if runner.httpClient == nil {
		t.Fatal("http client not defaulted")
	}
	if runner.httpClient.Timeout != 30*time.Second {
		t.Errorf("client timeout = %v, want config default 30s", runner.httpClient.Timeout)
	}
	if len(runner.register()) != 5 {
		t.Errorf("registered %d commands, want 5", len(runner.register()))
	}

	t.Run("client timeout follows the chart config", func(t *testing.T) {
		config := shared.DefaultConfig()
		config.Chart.TimeoutSec = 5

		runner := NewRunner(RunnerOpts{Config: config})
		if runner.httpClient.Timeout != 5*time.Second {
			t.Errorf("client timeout = %v, want 5s", runner.httpClient.Timeout)
		}
	})
}

func TestRunnerWriters(t *testing.T) {
	runner, buf := newTestRunner(t)

	t.Run("writeJSON", func(t *testing.T) {
		buf.Reset()
		if err := runner.writeJSON(map[string]int{"n": 1}, false); err != nil {
			t.Fatalf("writeJSON failed: %v", err)
		}
		if buf.String() != "{\"n\":1}\n" {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("writePlain", func(t *testing.T) {
		buf.Reset()
		if err := runner.writePlain("%d tracks\n", 7); err != nil {
			t.Fatalf("writePlain failed: %v", err)
		}
		if buf.String() != "7 tracks\n" {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("write failures surface as errors", func(t *testing.T) {
		broken := NewRunner(RunnerOpts{
			Logger: shared.NewLogger(io.Discard),
			Output: &th.FWriter{},
		})

		if err := broken.writePlain("lost"); err == nil {
			t.Error("writePlain should propagate writer errors")
		}
		if err := broken.writeJSON(map[string]int{"n": 1}, false); err == nil {
			t.Error("writeJSON should propagate writer errors")
		}
	})
}

func TestScrapeAction(t *testing.T) {
	t.Run("prints ranked entries", func(t *testing.T) {
		runner, buf := newTestRunner(t)

		cmd := scrapeCommand(runner)
		if err := cmd.Run(context.Background(), []string{"scrape"}); err != nil {
			t.Fatalf("scrape failed: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "1. HUNTR/X - Golden") {
			t.Errorf("output missing first entry: %q", out)
		}
		if !strings.Contains(out, "2. Alex Warren - Ordinary") {
			t.Errorf("output missing second entry: %q", out)
		}
	})

	t.Run("writes a CSV with --output", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		path := filepath.Join(t.TempDir(), "chart.csv")

		cmd := scrapeCommand(runner)
		if err := cmd.Run(context.Background(), []string{"scrape", "--output", path}); err != nil {
			t.Fatalf("scrape failed: %v", err)
		}

		entries, err := formatter.ReadChartCSV(path)
		if err != nil {
			t.Fatalf("failed to read chart CSV: %v", err)
		}
		if len(entries) != 2 || entries[0].Song != "Golden" {
			t.Errorf("entries = %+v", entries)
		}
	})

	t.Run("emits JSON with --json", func(t *testing.T) {
		runner, buf := newTestRunner(t)

		cmd := scrapeCommand(runner)
		if err := cmd.Run(context.Background(), []string{"scrape", "--json"}); err != nil {
			t.Fatalf("scrape failed: %v", err)
		}
		if !strings.Contains(buf.String(), `"Song": "Golden"`) {
			t.Errorf("output = %q", buf.String())
		}
	})
}

func TestEncodeAction(t *testing.T) {
	runner, _ := newTestRunner(t)
	dir := t.TempDir()

	input := filepath.Join(dir, "batch.csv")
	csv := "Song,artist_genres\nGolden,\"[\"\"pop\"\"]\"\nOrdinary,\"['rock']\"\n"
	if err := os.WriteFile(input, []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := encodeCommand(runner)
	if err := cmd.Run(context.Background(), []string{"encode", "--input", input}); err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	encoded, err := formatter.ReadTable(filepath.Join(dir, "batch_encoded.csv"))
	if err != nil {
		t.Fatalf("failed to read encoded table: %v", err)
	}

	wantCols := []string{"Song", "artist_genres", "pop", "rock"}
	if strings.Join(encoded.Columns, ",") != strings.Join(wantCols, ",") {
		t.Errorf("columns = %v, want %v", encoded.Columns, wantCols)
	}
	if encoded.Rows[0][2] != "1" || encoded.Rows[0][3] != "0" {
		t.Errorf("first row indicators = %v", encoded.Rows[0])
	}
	if encoded.Rows[1][2] != "0" || encoded.Rows[1][3] != "1" {
		t.Errorf("second row indicators = %v", encoded.Rows[1])
	}
}

func TestEnrichAction(t *testing.T) {
	writeInput := func(t *testing.T, dir string) string {
		t.Helper()
		path := filepath.Join(dir, "chart.csv")
		csv := "Song,Artist\nOrdinary,Alex Warren\nMissing,Nobody\n"
		if err := os.WriteFile(path, []byte(csv), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("runs the pipeline over a CSV input", func(t *testing.T) {
		runner, buf := newTestRunner(t)
		runner.spotify = &th.MockMetadataService{
			Features: map[string]*models.TrackFeatures{
				"Ordinary|Alex Warren": {
					TrackID:          "track-ordinary",
					Popularity:       90,
					DurationMS:       186000,
					AlbumReleaseYear: "2025",
					ArtistPopularity: 85,
					ArtistGenres:     []string{"pop"},
				},
			},
		}

		dir := t.TempDir()
		input := writeInput(t, dir)
		outDir := filepath.Join(dir, "batches")

		cmd := enrichCommand(runner)
		err := cmd.Run(context.Background(), []string{
			"enrich", "--input", input, "--output-dir", outDir, "--rate-limit", "1000",
		})
		if err != nil {
			t.Fatalf("enrich failed: %v", err)
		}

		th.AssertDirExists(t, outDir)

		// Default offset 51: the single partial batch is file 52.
		batch := filepath.Join(outDir, "songs_batch_52.csv")
		th.AssertFileExists(t, batch)

		table, err := formatter.ReadTable(batch)
		if err != nil {
			t.Fatalf("failed to read batch: %v", err)
		}
		if len(table.Rows) != 1 || table.Rows[0][0] != "Ordinary" {
			t.Errorf("batch rows = %v", table.Rows)
		}

		failed, err := formatter.ReadTable(filepath.Join(outDir, "failed_tracks.csv"))
		if err != nil {
			t.Fatalf("failed to read failures: %v", err)
		}
		if len(failed.Rows) != 1 || failed.Rows[0][2] != models.ReasonNoMatch {
			t.Errorf("failure rows = %v", failed.Rows)
		}

		manifest := th.MustReadFile(t, filepath.Join(outDir, "run_manifest.json"))
		if !strings.Contains(manifest, `"run_id"`) || !strings.Contains(manifest, `"processed": 2`) {
			t.Errorf("manifest = %s", manifest)
		}

		out := buf.String()
		if !strings.Contains(out, "Processed: 2") || !strings.Contains(out, "Enriched:  1") {
			t.Errorf("summary output = %q", out)
		}
	})

	t.Run("fails without a configured service", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		dir := t.TempDir()
		input := writeInput(t, dir)

		cmd := enrichCommand(runner)
		err := cmd.Run(context.Background(), []string{"enrich", "--input", input})
		if err == nil {
			t.Fatal("expected error with no metadata service")
		}
		if !strings.Contains(err.Error(), shared.ErrServiceUnavailable.Error()) {
			t.Errorf("error = %v", err)
		}
	})
}

func TestCacheActions(t *testing.T) {
	seed := func(t *testing.T, runner *Runner) {
		t.Helper()

		db, err := shared.NewDatabase(runner.config.Database.Path)
		if err != nil {
			t.Fatalf("failed to open cache db: %v", err)
		}
		defer db.Close()

		if err := shared.RunMigrations(db); err != nil {
			t.Fatalf("failed to migrate cache db: %v", err)
		}

		repo := repositories.NewLookupRepository(db)
		lookup := models.NewCachedLookup("Flowers", "Miley Cyrus", models.TrackFeatures{
			TrackID:      "track-flowers",
			Popularity:   92,
			ArtistGenres: []string{"pop"},
		})
		if err := repo.Create(lookup); err != nil {
			t.Fatalf("failed to seed cache: %v", err)
		}
	}

	t.Run("list prints cached lookups", func(t *testing.T) {
		runner, buf := newTestRunner(t)
		seed(t, runner)

		cmd := cacheCommand(runner)
		if err := cmd.Run(context.Background(), []string{"cache", "list"}); err != nil {
			t.Fatalf("cache list failed: %v", err)
		}

		out := buf.String()
		if !strings.Contains(out, "Miley Cyrus - Flowers") {
			t.Errorf("output missing seeded lookup: %q", out)
		}
		if !strings.Contains(out, "1 cached lookups") {
			t.Errorf("output missing count line: %q", out)
		}
	})

	t.Run("list emits JSON with --json", func(t *testing.T) {
		runner, buf := newTestRunner(t)
		seed(t, runner)

		cmd := cacheCommand(runner)
		if err := cmd.Run(context.Background(), []string{"cache", "list", "--json"}); err != nil {
			t.Fatalf("cache list failed: %v", err)
		}
		if !strings.Contains(buf.String(), `"track_id": "track-flowers"`) {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("stats reports the row count", func(t *testing.T) {
		runner, buf := newTestRunner(t)
		seed(t, runner)

		cmd := cacheCommand(runner)
		if err := cmd.Run(context.Background(), []string{"cache", "stats"}); err != nil {
			t.Fatalf("cache stats failed: %v", err)
		}
		if !strings.Contains(buf.String(), "Cached lookups: 1") {
			t.Errorf("output = %q", buf.String())
		}
	})
}

func TestSetupAction(t *testing.T) {
	runner, _ := newTestRunner(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")

	// Setup reads the database path from the config it creates, so point the
	// template-created file at a temp location via env-independent rewrite.
	if err := shared.CreateConfigFile(configPath); err != nil {
		t.Fatalf("CreateConfigFile failed: %v", err)
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatal(err)
	}
	dbPath := filepath.Join(dir, "cache.db")
	patched := strings.Replace(string(data), `path = "chartpull.db"`, `path = "`+dbPath+`"`, 1)
	if patched == string(data) {
		t.Fatal("config template missing expected database path line")
	}
	if err := os.WriteFile(configPath, []byte(patched), 0644); err != nil {
		t.Fatal(err)
	}

	cmd := setupCommand(runner)
	if err := cmd.Run(context.Background(), []string{"setup", "--config", configPath}); err != nil {
		t.Fatalf("setup failed: %v", err)
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database not created: %v", err)
	}
}
