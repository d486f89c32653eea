// Package models defines domain entities and persistence interfaces for the chartpull enrichment pipeline.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs flowing through the pipeline
//   - [ChartEntry] : One (song, artist) pair scraped from the chart page
//   - [TrackFeatures] : Spotify track and artist attributes for a matched recording
//   - [EnrichedRow] : A chart entry merged with its track features
//   - [FailedLookup] : A chart entry that produced no usable features, with a reason
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [CachedLookup] : A successful lookup cached in SQLite, keyed by (song, artist)
//
// Persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
