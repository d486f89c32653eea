// package formatter reads and writes the pipeline's delimited files (chart
// inputs, enriched batches, failed lookups, and generic tables for encoding)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/chartpull/internal/models"
)

// BatchColumns is the header row for enriched batch files. Names match the
// dataset produced by earlier runs of the pipeline.
var BatchColumns = []string{
	"Song", "Artist",
	"track_id", "popularity", "duration_ms", "album_release_year",
	"album_cover_url", "explicit", "artist_popularity", "artist_genres",
}

// FailedColumns is the header row for the failed-lookup file.
var FailedColumns = []string{"track_name", "artist_name", "reason"}

// ChartColumns is the header row for scraped chart CSV output.
var ChartColumns = []string{"Song", "Artist"}

// Table is an ordered set of columns with string-valued rows, the working
// representation for CSV post-processing.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the index of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// BatchToCSV converts enriched rows to CSV bytes with the [BatchColumns] header.
//
// Genre lists are serialized as JSON arrays.
func BatchToCSV(rows []models.EnrichedRow) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(BatchColumns); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, row := range rows {
		genres, err := json.Marshal(row.ArtistGenres)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize genres: %w", err)
		}

		record := []string{
			row.Song,
			row.Artist,
			row.TrackID,
			strconv.Itoa(row.Popularity),
			strconv.Itoa(row.DurationMS),
			row.AlbumReleaseYear,
			row.AlbumCoverURL,
			strconv.FormatBool(row.Explicit),
			strconv.Itoa(row.ArtistPopularity),
			string(genres),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteBatchCSV writes enriched rows to a CSV file at path.
func WriteBatchCSV(rows []models.EnrichedRow, path string) error {
	data, err := BatchToCSV(rows)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write batch file: %w", err)
	}
	return nil
}

// WriteFailedCSV writes failed lookups to a CSV file at path.
func WriteFailedCSV(failures []models.FailedLookup, path string) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(FailedColumns); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, f := range failures {
		if err := writer.Write([]string{f.TrackName, f.ArtistName, f.Reason}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write failures file: %w", err)
	}
	return nil
}

// WriteChartCSV writes chart entries to a CSV file at path.
func WriteChartCSV(entries []models.ChartEntry, path string) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(ChartColumns); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range entries {
		if err := writer.Write([]string{e.Song, e.Artist}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write chart file: %w", err)
	}
	return nil
}

// ReadChartCSV loads (song, artist) pairs from a CSV file.
//
// Column headers are matched case-insensitively against "song"/"title" and
// "artist". Values wrapped in Python byte-string markers (b'...') are
// unwrapped, which cleans rows exported from the Million Song subset.
func ReadChartCSV(path string) ([]models.ChartEntry, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, err
	}

	songIdx, artistIdx := -1, -1
	for i, c := range table.Columns {
		switch strings.ToLower(c) {
		case "song", "title":
			songIdx = i
		case "artist":
			artistIdx = i
		}
	}
	if songIdx < 0 || artistIdx < 0 {
		return nil, fmt.Errorf("chart CSV %s missing Song/Artist columns", path)
	}

	entries := make([]models.ChartEntry, 0, len(table.Rows))
	for _, row := range table.Rows {
		entries = append(entries, models.ChartEntry{
			Song:   cleanByteString(row[songIdx]),
			Artist: cleanByteString(row[artistIdx]),
		})
	}
	return entries, nil
}

// cleanByteString strips b'...' / b"..." wrappers left by Python exports.
func cleanByteString(s string) string {
	for _, quote := range []string{"'", `"`} {
		if strings.HasPrefix(s, "b"+quote) && strings.HasSuffix(s, quote) && len(s) > 2+len(quote) {
			return s[1+len(quote) : len(s)-len(quote)]
		}
	}
	return s
}

// ReadTable loads a CSV file into a [Table]. The first record is the header.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty CSV file", path)
	}

	return &Table{Columns: records[0], Rows: records[1:]}, nil
}

// WriteTable writes a [Table] to a CSV file at path.
func WriteTable(table *Table, path string) error {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(table.Columns); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range table.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("CSV writer error: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write table file: %w", err)
	}
	return nil
}
