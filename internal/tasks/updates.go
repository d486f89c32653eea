package tasks

import (
	"fmt"

	"github.com/desertthunder/chartpull/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LookupTracks Phase = iota
	FlushBatch
	WriteFailures
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case LookupTracks:
		return "lookup_tracks"
	case FlushBatch:
		return "flush_batch"
	case WriteFailures:
		return "write_failures"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func lookupUpdate(step, total int, entry models.ChartEntry) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s - %s", step, total, entry.Artist, entry.Song),
	}
}

func lookupFailedUpdate(step, total int, entry models.ChartEntry, reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s - %s (%s)", step, total, entry.Artist, entry.Song, reason),
	}
}

func flushUpdate(step, total, batchNumber, size int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FlushBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Saved batch %d with %d tracks", batchNumber, size),
		Data:    path,
	}
}

func failuresUpdate(count int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteFailures,
		Message: fmt.Sprintf("Recorded %d failed lookups", count),
		Data:    path,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Message: "Wrote run manifest",
		Data:    path,
	}
}
