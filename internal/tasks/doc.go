// Package tasks orchestrates chart enrichment with real-time progress reporting.
//
// # Core Operation
//
// [EnrichEngine.Run] drives the full pipeline over a set of chart entries:
//   - Normalizes each artist line to the primary artist
//   - Resolves features through [services.MetadataService] (cache first when configured)
//   - Accumulates enriched rows into fixed-size batches
//   - Flushes each batch to a sequentially numbered CSV file
//   - Records misses and caught lookup errors in a single failures CSV
//   - Writes a JSON manifest summarizing the run
//
// Every input row yields exactly one outcome: it lands in exactly one batch
// file or in the failures file, never both and never neither. Caught lookup
// errors are routed to the failures file with an "error: ..." reason rather
// than dropped.
//
// # Rate Limiting
//
// Lookups are paced with a [rate.Limiter] at a configurable requests-per-second
// budget, replacing coarse sleep-based pauses while keeping the same overall
// throughput against the API's usage policy.
//
// # Progress Reporting
//
// All operations use a non-blocking channel for [ProgressUpdate] values.
// Updates use select with default to prevent blocking.
//
// # Lookup Caching
//
// The optional [LookupCacher] interface enables persistence of successful
// lookups. Cache writes are silent (errors logged, never fatal) to avoid
// disrupting a run.
package tasks
