package models

import (
	"fmt"
	"time"
)

// Model defines the base interface for all persistent models in the pipeline.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// ChartEntry represents one (song, artist) pair from a published chart.
// Immutable once read.
type ChartEntry struct {
	Song   string
	Artist string
}

// TrackFeatures holds Spotify track and primary-artist attributes for a matched recording.
type TrackFeatures struct {
	TrackID          string
	Popularity       int
	DurationMS       int
	AlbumReleaseYear string // 4-digit year from the album release date
	AlbumCoverURL    string
	Explicit         bool
	ArtistPopularity int
	ArtistGenres     []string
}

// EnrichedRow is a chart entry merged with the track features found for it.
// Created only when a lookup succeeds.
type EnrichedRow struct {
	ChartEntry
	TrackFeatures
}

// FailedLookup records a chart entry that produced no enriched row.
//
// Reason distinguishes a clean miss ("no_match") from a caught lookup error
// ("error: ...") so no row is silently dropped.
type FailedLookup struct {
	TrackName  string
	ArtistName string
	Reason     string
}

// ReasonNoMatch marks a lookup that completed with zero search results.
const ReasonNoMatch = "no_match"

// CachedLookup is a successful lookup persisted in the local cache, keyed by (song, artist).
type CachedLookup struct {
	id        string
	sequence  int
	Song      string
	Artist    string
	Features  TrackFeatures
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewCachedLookup creates a CachedLookup for the given key and features with fresh timestamps.
//
// The ID is assigned by the repository on Create.
func NewCachedLookup(song, artist string, features TrackFeatures) *CachedLookup {
	now := time.Now()
	return &CachedLookup{
		Song:      song,
		Artist:    artist,
		Features:  features,
		createdAt: now,
		updatedAt: now,
	}
}

// RestoreCachedLookup rebuilds a CachedLookup from persisted fields.
func RestoreCachedLookup(id string, sequence int, song, artist string, features TrackFeatures, createdAt, updatedAt time.Time, deletedAt *time.Time) *CachedLookup {
	return &CachedLookup{
		id:        id,
		sequence:  sequence,
		Song:      song,
		Artist:    artist,
		Features:  features,
		createdAt: createdAt,
		updatedAt: updatedAt,
		deletedAt: deletedAt,
	}
}

func (c *CachedLookup) ID() string             { return c.id }
func (c *CachedLookup) SetID(id string)        { c.id = id }
func (c *CachedLookup) Sequence() int          { return c.sequence }
func (c *CachedLookup) SetSequence(seq int)    { c.sequence = seq }
func (c *CachedLookup) CreatedAt() time.Time   { return c.createdAt }
func (c *CachedLookup) UpdatedAt() time.Time   { return c.updatedAt }
func (c *CachedLookup) SetUpdatedAt(t time.Time) { c.updatedAt = t }
func (c *CachedLookup) DeletedAt() *time.Time  { return c.deletedAt }

// Validate checks that the lookup key and track identifier are present.
func (c *CachedLookup) Validate() error {
	if c.Song == "" {
		return fmt.Errorf("cached lookup missing song")
	}
	if c.Artist == "" {
		return fmt.Errorf("cached lookup missing artist")
	}
	if c.Features.TrackID == "" {
		return fmt.Errorf("cached lookup missing track ID")
	}
	return nil
}
