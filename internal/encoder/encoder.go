// Package encoder converts a set-valued genre column into per-genre indicator columns.
package encoder

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/desertthunder/chartpull/internal/formatter"
)

// DefaultGenreColumn is the batch-file column holding serialized genre lists.
const DefaultGenreColumn = "artist_genres"

// ParseGenreList parses a serialized genre list.
//
// Accepts JSON arrays (written by this pipeline) and Python list literals
// with single-quoted elements (found in batch files written by the earlier
// pandas version). An empty string or empty list yields a nil slice.
func ParseGenreList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "[]" {
		return nil, nil
	}

	var genres []string
	if err := json.Unmarshal([]byte(s), &genres); err == nil {
		return genres, nil
	}

	return parsePythonList(s)
}

// parsePythonList parses a Python-style list literal like ['pop', 'dance pop'].
func parsePythonList(s string) ([]string, error) {
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("not a list literal: %q", s)
	}

	var genres []string
	var current strings.Builder
	var quote byte
	inString := false

	for i := 1; i < len(s)-1; i++ {
		ch := s[i]
		switch {
		case inString && ch == '\\' && i+1 < len(s)-1:
			i++
			current.WriteByte(s[i])
		case inString && ch == quote:
			inString = false
			genres = append(genres, current.String())
			current.Reset()
		case inString:
			current.WriteByte(ch)
		case ch == '\'' || ch == '"':
			inString = true
			quote = ch
		}
	}

	if inString {
		return nil, fmt.Errorf("unterminated string in list literal: %q", s)
	}

	return genres, nil
}

// EncodeGenres appends one indicator column per distinct genre label to the table.
//
// The genre column's cells are parsed with [ParseGenreList]; the distinct
// label set is collected across all rows and sorted for a stable column
// order. A row's indicator is "1" when the label is present in its genre
// list, else "0". The original columns are preserved in place.
func EncodeGenres(table *formatter.Table, column string) (*formatter.Table, error) {
	if column == "" {
		column = DefaultGenreColumn
	}

	idx := table.ColumnIndex(column)
	if idx < 0 {
		return nil, fmt.Errorf("table has no %q column", column)
	}

	rowGenres := make([]map[string]bool, len(table.Rows))
	labelSet := make(map[string]bool)

	for i, row := range table.Rows {
		if idx >= len(row) {
			return nil, fmt.Errorf("row %d has no value for column %q", i, column)
		}

		genres, err := ParseGenreList(row[idx])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}

		set := make(map[string]bool, len(genres))
		for _, g := range genres {
			set[g] = true
			labelSet[g] = true
		}
		rowGenres[i] = set
	}

	labels := make([]string, 0, len(labelSet))
	for label := range labelSet {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	encoded := &formatter.Table{
		Columns: append(append([]string{}, table.Columns...), labels...),
		Rows:    make([][]string, len(table.Rows)),
	}

	for i, row := range table.Rows {
		indicators := make([]string, len(labels))
		for j, label := range labels {
			if rowGenres[i][label] {
				indicators[j] = "1"
			} else {
				indicators[j] = "0"
			}
		}
		encoded.Rows[i] = append(append([]string{}, row...), indicators...)
	}

	return encoded, nil
}
