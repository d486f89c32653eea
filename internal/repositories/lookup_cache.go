package repositories

import (
	"fmt"
	"strings"

	"github.com/desertthunder/chartpull/internal/models"
)

// LookupCacheAdapter implements tasks.LookupCacher using LookupRepository.
//
// Provides lookup caching with deduplication via the (song, artist) unique
// constraint. Duplicate entries are silently ignored.
type LookupCacheAdapter struct {
	repo *LookupRepository
}

// NewLookupCacheAdapter creates a new LookupCacheAdapter with the given repository
func NewLookupCacheAdapter(repo *LookupRepository) *LookupCacheAdapter {
	return &LookupCacheAdapter{repo: repo}
}

// Get returns cached features for the key, or (nil, nil) on a miss.
func (a *LookupCacheAdapter) Get(song, artist string) (*models.TrackFeatures, error) {
	lookup, err := a.repo.GetBySongArtist(song, artist)
	if err != nil || lookup == nil {
		return nil, err
	}
	features := lookup.Features
	return &features, nil
}

// Put caches features for the key.
// Returns nil if the key already exists (deduplication).
// Only returns errors for actual failures (not constraint violations).
func (a *LookupCacheAdapter) Put(song, artist string, features models.TrackFeatures) error {
	existing, err := a.repo.GetBySongArtist(song, artist)
	if err == nil && existing != nil {
		return nil
	}

	lookup := models.NewCachedLookup(song, artist, features)

	if err := a.repo.Create(lookup); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache lookup: %w", err)
	}

	return nil
}
