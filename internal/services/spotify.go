// Spotify API implementation of [MetadataService]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/chartpull/internal/models"
	"github.com/desertthunder/chartpull/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Genres     []string       `json:"genres"`
	Popularity int            `json:"popularity"`
	Images     []SpotifyImage `json:"images"`
	URI        string         `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	ReleaseDate string         `json:"release_date"`
	Images      []SpotifyImage `json:"images"`
	URI         string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Explicit   bool            `json:"explicit"`
	Popularity int             `json:"popularity"`
	URI        string          `json:"uri"`
}

type trackPage struct {
	Items []SpotifyTrack `json:"items"`
	Total int            `json:"total"`
}

// SpotifySearchResult represents the track portion of a search response.
type SpotifySearchResult struct {
	Tracks trackPage `json:"tracks"`
}

// SpotifyService implements the MetadataService interface for Spotify API interactions.
//
// Uses the [clientcredentials] grant: tokens are fetched and refreshed by the
// oauth2 transport, so no user authorization step exists.
type SpotifyService struct {
	config     *clientcredentials.Config
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyService creates a new Spotify service with the given API credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	return &SpotifyService{
		config:  config,
		baseURL: spotifyBaseURL,
	}, nil
}

// Authenticate builds the token-refreshing HTTP client for the client-credentials grant.
func (s *SpotifyService) Authenticate(ctx context.Context) error {
	s.httpClient = s.config.Client(ctx)
	return nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// SetBaseURL overrides the API base URL. Used by tests.
func (s *SpotifyService) SetBaseURL(u string) {
	s.baseURL = u
}

// doRequest performs an authenticated GET request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, result interface{}) error {
	if s.httpClient == nil {
		return fmt.Errorf("%w: call Authenticate first", shared.ErrNotAuthenticated)
	}

	apiURL := s.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// SearchTrack issues a structured track search and returns the top result.
//
// Returns (nil, nil) when the search completes with zero results.
func (s *SpotifyService) SearchTrack(ctx context.Context, song, artist string) (*SpotifyTrack, error) {
	query := fmt.Sprintf("track:%s artist:%s", song, artist)
	endpoint := fmt.Sprintf("/search?q=%s&type=track&limit=1", url.QueryEscape(query))

	var result SpotifySearchResult
	if err := s.doRequest(ctx, endpoint, &result); err != nil {
		return nil, err
	}

	if len(result.Tracks.Items) == 0 {
		return nil, nil
	}

	return &result.Tracks.Items[0], nil
}

// Artist retrieves extended artist attributes by ID.
func (s *SpotifyService) Artist(ctx context.Context, artistID string) (*SpotifyArtist, error) {
	var artist SpotifyArtist
	endpoint := fmt.Sprintf("/artists/%s", url.PathEscape(artistID))
	if err := s.doRequest(ctx, endpoint, &artist); err != nil {
		return nil, err
	}
	return &artist, nil
}

// TrackFeatures searches for a track and assembles its features from the top
// result plus a second lookup of the result's primary artist.
func (s *SpotifyService) TrackFeatures(ctx context.Context, song, artist string) (*models.TrackFeatures, error) {
	track, err := s.SearchTrack(ctx, song, artist)
	if err != nil {
		return nil, err
	}
	if track == nil {
		return nil, nil
	}

	if len(track.Artists) == 0 {
		return nil, fmt.Errorf("%w: track %s has no artists", shared.ErrAPIRequest, track.ID)
	}

	artistInfo, err := s.Artist(ctx, track.Artists[0].ID)
	if err != nil {
		return nil, err
	}

	features := &models.TrackFeatures{
		TrackID:          track.ID,
		Popularity:       track.Popularity,
		DurationMS:       track.DurationMS,
		AlbumReleaseYear: releaseYear(track.Album.ReleaseDate),
		Explicit:         track.Explicit,
		ArtistPopularity: artistInfo.Popularity,
		ArtistGenres:     artistInfo.Genres,
	}

	if len(track.Album.Images) > 0 {
		features.AlbumCoverURL = track.Album.Images[0].URL
	}

	return features, nil
}

// releaseYear extracts the 4-digit year prefix from a release date.
// Spotify release dates come in year, year-month, or full date precision.
func releaseYear(releaseDate string) string {
	if len(releaseDate) < 4 {
		return releaseDate
	}
	return releaseDate[:4]
}
