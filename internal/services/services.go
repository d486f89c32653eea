// package services defines interface MetadataService for interacting with HTTP music metadata APIs
package services

import (
	"context"

	"github.com/desertthunder/chartpull/internal/models"
)

// MetadataService defines the interface for music metadata providers that can
// resolve a (song, artist) pair into track and artist attributes.
type MetadataService interface {
	// Authenticate performs API authentication with the service.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context) error

	// TrackFeatures searches for a track by name and artist and assembles its
	// track and primary-artist attributes.
	//
	// Returns (nil, nil) when the search completes with zero results; a
	// non-nil error indicates a transport or auth failure and carries no
	// retry policy of its own. The caller decides whether to skip or abort.
	TrackFeatures(ctx context.Context, song, artist string) (*models.TrackFeatures, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}
