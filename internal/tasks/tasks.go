package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chartpull/internal/chart"
	"github.com/desertthunder/chartpull/internal/formatter"
	"github.com/desertthunder/chartpull/internal/models"
	"github.com/desertthunder/chartpull/internal/services"
	"github.com/desertthunder/chartpull/internal/shared"
	"golang.org/x/time/rate"
)

// LookupCacher persists successful lookups keyed by (song, artist).
//
// Get returns (nil, nil) on a cache miss.
type LookupCacher interface {
	Get(song, artist string) (*models.TrackFeatures, error)
	Put(song, artist string, features models.TrackFeatures) error
}

// EnrichOpts contains configuration for an enrichment run.
type EnrichOpts struct {
	OutputDir   string  // Batch output directory (default: data/batches)
	BatchSize   int     // Rows per batch file (default: 50)
	BatchOffset int     // Numbering starts at offset+1 (default: 51)
	RateLimit   float64 // Lookups per second (default: 1.7 ≈ 50 per 30s)
}

// EnrichResult summarizes a completed run.
type EnrichResult struct {
	RunID        string   `json:"run_id"`
	Processed    int      `json:"processed"`
	Succeeded    int      `json:"succeeded"`
	Failed       int      `json:"failed"`
	CacheHits    int      `json:"cache_hits"`
	BatchFiles   []string `json:"batch_files"`
	FailedFile   string   `json:"failed_file,omitempty"`
	ManifestPath string   `json:"-"`
}

// EnrichEngine runs the chart enrichment pipeline against a metadata service.
type EnrichEngine struct {
	service services.MetadataService
	cache   LookupCacher
	logger  *log.Logger
}

// NewEnrichEngine creates an engine. The cache is optional; a nil cache
// means every lookup goes to the service.
func NewEnrichEngine(service services.MetadataService, cache LookupCacher, logger *log.Logger) *EnrichEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &EnrichEngine{service: service, cache: cache, logger: logger}
}

// SetLogger replaces the engine's logger (used when the TUI owns the terminal).
func (e *EnrichEngine) SetLogger(l *log.Logger) {
	if l != nil {
		e.logger = l
	}
}

// Run enriches entries sequentially, flushing batches and failures to opts.OutputDir.
//
// Each entry yields exactly one outcome: an enriched row in exactly one batch
// file, or a row in the failures file. Transport errors from the service are
// recorded as failures with an "error: ..." reason and the run continues;
// only context cancellation aborts the run.
func (e *EnrichEngine) Run(ctx context.Context, prog chan<- ProgressUpdate, entries []models.ChartEntry, opts EnrichOpts) (*EnrichResult, error) {
	if e.service == nil {
		return nil, fmt.Errorf("%w: metadata service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = filepath.Join("data", "batches")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.BatchOffset < 0 {
		opts.BatchOffset = 0
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1.7
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &EnrichResult{RunID: shared.GenerateID()}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	var batch []models.EnrichedRow
	var failures []models.FailedLookup
	batchNumber := opts.BatchOffset

	flush := func() error {
		batchNumber++
		path := filepath.Join(opts.OutputDir, fmt.Sprintf("songs_batch_%d.csv", batchNumber))
		if err := formatter.WriteBatchCSV(batch, path); err != nil {
			return fmt.Errorf("failed to flush batch %d: %w", batchNumber, err)
		}

		e.logger.Info("saved batch", "number", batchNumber, "tracks", len(batch), "path", path)
		e.sendProgress(prog, flushUpdate(result.Processed, len(entries), batchNumber, len(batch), path))

		result.BatchFiles = append(result.BatchFiles, path)
		batch = nil
		return nil
	}

	for i, entry := range entries {
		if err := limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("run aborted: %w", err)
		}

		cleanArtist := chart.NormalizeArtist(entry.Artist)
		e.sendProgress(prog, lookupUpdate(i+1, len(entries), entry))

		features, hit, err := e.lookup(ctx, entry.Song, cleanArtist)
		result.Processed++

		if err != nil {
			if ctx.Err() != nil {
				return result, fmt.Errorf("run aborted: %w", ctx.Err())
			}

			reason := fmt.Sprintf("error: %v", err)
			e.logger.Error("lookup failed", "song", entry.Song, "artist", cleanArtist, "error", err)
			e.sendProgress(prog, lookupFailedUpdate(i+1, len(entries), entry, reason))

			failures = append(failures, models.FailedLookup{
				TrackName:  entry.Song,
				ArtistName: entry.Artist,
				Reason:     reason,
			})
			result.Failed++
			continue
		}

		if features == nil {
			e.sendProgress(prog, lookupFailedUpdate(i+1, len(entries), entry, models.ReasonNoMatch))
			failures = append(failures, models.FailedLookup{
				TrackName:  entry.Song,
				ArtistName: entry.Artist,
				Reason:     models.ReasonNoMatch,
			})
			result.Failed++
			continue
		}

		if hit {
			result.CacheHits++
		} else if e.cache != nil {
			if err := e.cache.Put(entry.Song, cleanArtist, *features); err != nil {
				e.logger.Debug("cache write failed", "song", entry.Song, "error", err)
			}
		}

		batch = append(batch, models.EnrichedRow{ChartEntry: entry, TrackFeatures: *features})
		result.Succeeded++

		if len(batch) == opts.BatchSize {
			if err := flush(); err != nil {
				return result, err
			}
		}
	}

	if len(batch) > 0 {
		if err := flush(); err != nil {
			return result, err
		}
	}

	if len(failures) > 0 {
		path := filepath.Join(opts.OutputDir, "failed_tracks.csv")
		if err := formatter.WriteFailedCSV(failures, path); err != nil {
			return result, fmt.Errorf("failed to write failures file: %w", err)
		}
		result.FailedFile = path

		e.logger.Info("recorded failed lookups", "count", len(failures), "path", path)
		e.sendProgress(prog, failuresUpdate(len(failures), path))
	}

	manifestPath := filepath.Join(opts.OutputDir, "run_manifest.json")
	data, err := shared.MarshalJSON(result, true)
	if err != nil {
		return result, fmt.Errorf("run completed but failed to marshal manifest: %w", err)
	}
	if err := os.WriteFile(manifestPath, data, 0644); err != nil {
		return result, fmt.Errorf("run completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(prog, manifestUpdate(manifestPath))

	return result, nil
}

// lookup resolves features, consulting the cache first when configured.
// The bool reports whether the value came from the cache.
func (e *EnrichEngine) lookup(ctx context.Context, song, artist string) (*models.TrackFeatures, bool, error) {
	if e.cache != nil {
		cached, err := e.cache.Get(song, artist)
		if err != nil {
			e.logger.Debug("cache read failed", "song", song, "error", err)
		} else if cached != nil {
			return cached, true, nil
		}
	}

	features, err := e.service.TrackFeatures(ctx, song, artist)
	return features, false, err
}

// sendProgress sends an update without blocking when no receiver is ready.
func (e *EnrichEngine) sendProgress(prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
	default:
	}
}
