package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/chartpull/internal/models"
	"github.com/desertthunder/chartpull/internal/shared"
)

// LookupRepository implements models.Repository[*models.CachedLookup] over SQLite.
//
// Successful metadata lookups are cached keyed by (song, artist) so repeated
// runs over overlapping charts skip the API round trips.
type LookupRepository struct {
	db *sql.DB
}

// NewLookupRepository creates a new LookupRepository with the given database connection
func NewLookupRepository(db *sql.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

const lookupColumns = `id, sequence, song, artist, track_id, popularity, duration_ms,
	album_release_year, album_cover_url, explicit, artist_popularity, artist_genres,
	created_at, updated_at, deleted_at`

// Create inserts a new [models.CachedLookup] into the database with generated ID and sequence
func (r *LookupRepository) Create(lookup *models.CachedLookup) error {
	sequence, err := NextSequence(r.db, "lookups")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	lookup.SetID(id)
	lookup.SetSequence(sequence)

	if err := lookup.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	genres, err := json.Marshal(lookup.Features.ArtistGenres)
	if err != nil {
		return fmt.Errorf("failed to serialize genres: %w", err)
	}

	query := `
		INSERT INTO lookups (` + lookupColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		lookup.Song,
		lookup.Artist,
		lookup.Features.TrackID,
		lookup.Features.Popularity,
		lookup.Features.DurationMS,
		lookup.Features.AlbumReleaseYear,
		lookup.Features.AlbumCoverURL,
		lookup.Features.Explicit,
		lookup.Features.ArtistPopularity,
		string(genres),
		lookup.CreatedAt(),
		lookup.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert lookup: %w", err)
	}

	return nil
}

// Get retrieves a lookup by ID, excluding soft-deleted rows
func (r *LookupRepository) Get(id string) (*models.CachedLookup, error) {
	query := `SELECT ` + lookupColumns + ` FROM lookups WHERE id = ? AND deleted_at IS NULL`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetBySongArtist retrieves a lookup by its (song, artist) key.
//
// Returns (nil, nil) on a cache miss.
func (r *LookupRepository) GetBySongArtist(song, artist string) (*models.CachedLookup, error) {
	query := `SELECT ` + lookupColumns + ` FROM lookups WHERE song = ? AND artist = ? AND deleted_at IS NULL`

	lookup, err := r.scanOne(r.db.QueryRow(query, song, artist))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return lookup, err
}

// Update modifies an existing lookup's features
func (r *LookupRepository) Update(lookup *models.CachedLookup) error {
	if err := lookup.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	genres, err := json.Marshal(lookup.Features.ArtistGenres)
	if err != nil {
		return fmt.Errorf("failed to serialize genres: %w", err)
	}

	now := time.Now()
	lookup.SetUpdatedAt(now)

	query := `
		UPDATE lookups
		SET track_id = ?, popularity = ?, duration_ms = ?, album_release_year = ?,
			album_cover_url = ?, explicit = ?, artist_popularity = ?, artist_genres = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		lookup.Features.TrackID,
		lookup.Features.Popularity,
		lookup.Features.DurationMS,
		lookup.Features.AlbumReleaseYear,
		lookup.Features.AlbumCoverURL,
		lookup.Features.Explicit,
		lookup.Features.ArtistPopularity,
		string(genres),
		now,
		lookup.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update lookup: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("lookup not found: %s", lookup.ID())
	}

	return nil
}

// Delete soft-deletes a lookup by ID
func (r *LookupRepository) Delete(id string) error {
	query := `UPDATE lookups SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`

	result, err := r.db.Exec(query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to delete lookup: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("lookup not found: %s", id)
	}

	return nil
}

// List retrieves lookups matching the given criteria, newest first.
// Supported criteria: "artist", "limit".
func (r *LookupRepository) List(criteria map[string]any) ([]*models.CachedLookup, error) {
	query := `SELECT ` + lookupColumns + ` FROM lookups WHERE deleted_at IS NULL`
	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ?"
		args = append(args, artist)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list lookups: %w", err)
	}
	defer rows.Close()

	var lookups []*models.CachedLookup
	for rows.Next() {
		lookup, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		lookups = append(lookups, lookup)
	}

	return lookups, rows.Err()
}

// Count returns the number of live cached lookups.
func (r *LookupRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM lookups WHERE deleted_at IS NULL").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count lookups: %w", err)
	}
	return count, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func (r *LookupRepository) scanOne(row *sql.Row) (*models.CachedLookup, error) {
	return scanLookup(row)
}

func (r *LookupRepository) scanRow(rows *sql.Rows) (*models.CachedLookup, error) {
	return scanLookup(rows)
}

func scanLookup(s scannable) (*models.CachedLookup, error) {
	var (
		id, song, artist, trackID, year, coverURL, genresJSON string
		sequence, popularity, durationMS, artistPopularity    int
		explicit                                              bool
		createdAt, updatedAt                                  time.Time
		deletedAt                                             sql.NullTime
	)

	err := s.Scan(&id, &sequence, &song, &artist, &trackID, &popularity, &durationMS,
		&year, &coverURL, &explicit, &artistPopularity, &genresJSON,
		&createdAt, &updatedAt, &deletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lookup: %w", err)
	}

	var genres []string
	if err := json.Unmarshal([]byte(genresJSON), &genres); err != nil {
		return nil, fmt.Errorf("failed to parse cached genres: %w", err)
	}

	features := models.TrackFeatures{
		TrackID:          trackID,
		Popularity:       popularity,
		DurationMS:       durationMS,
		AlbumReleaseYear: year,
		AlbumCoverURL:    coverURL,
		Explicit:         explicit,
		ArtistPopularity: artistPopularity,
		ArtistGenres:     genres,
	}

	var deleted *time.Time
	if deletedAt.Valid {
		deleted = &deletedAt.Time
	}

	return models.RestoreCachedLookup(id, sequence, song, artist, features, createdAt, updatedAt, deleted), nil
}
