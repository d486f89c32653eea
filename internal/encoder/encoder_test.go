package encoder

import (
	"reflect"
	"testing"

	"github.com/desertthunder/chartpull/internal/formatter"
)

func TestParseGenreList(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"json array", `["pop", "dance pop"]`, []string{"pop", "dance pop"}},
		{"python single quotes", `['pop', 'dance pop']`, []string{"pop", "dance pop"}},
		{"python double quotes", `["pop", 'rock']`, []string{"pop", "rock"}},
		{"apostrophe escaped", `['drill', 'rock \'n\' roll']`, []string{"drill", "rock 'n' roll"}},
		{"empty string", "", nil},
		{"empty list", "[]", nil},
		{"single element", `['country']`, []string{"country"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseGenreList(tc.in)
			if err != nil {
				t.Fatalf("ParseGenreList(%q) failed: %v", tc.in, err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ParseGenreList(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}

	t.Run("rejects non-list values", func(t *testing.T) {
		if _, err := ParseGenreList("pop"); err == nil {
			t.Error("expected error for bare string")
		}
	})

	t.Run("rejects unterminated strings", func(t *testing.T) {
		if _, err := ParseGenreList(`['pop]`); err == nil {
			t.Error("expected error for unterminated string")
		}
	})
}

func TestEncodeGenres(t *testing.T) {
	t.Run("appends sorted indicator columns", func(t *testing.T) {
		table := &formatter.Table{
			Columns: []string{"Song", "artist_genres"},
			Rows: [][]string{
				{"Golden", `["pop", "k-pop"]`},
				{"Whiskey Glasses", `['country']`},
				{"Instrumental", ""},
			},
		}

		encoded, err := EncodeGenres(table, "")
		if err != nil {
			t.Fatalf("EncodeGenres failed: %v", err)
		}

		wantCols := []string{"Song", "artist_genres", "country", "k-pop", "pop"}
		if !reflect.DeepEqual(encoded.Columns, wantCols) {
			t.Errorf("columns = %v, want %v", encoded.Columns, wantCols)
		}

		wantRows := [][]string{
			{"Golden", `["pop", "k-pop"]`, "0", "1", "1"},
			{"Whiskey Glasses", `['country']`, "1", "0", "0"},
			{"Instrumental", "", "0", "0", "0"},
		}
		if !reflect.DeepEqual(encoded.Rows, wantRows) {
			t.Errorf("rows = %v, want %v", encoded.Rows, wantRows)
		}
	})

	t.Run("leaves the source table untouched", func(t *testing.T) {
		table := &formatter.Table{
			Columns: []string{"artist_genres"},
			Rows:    [][]string{{`["pop"]`}},
		}

		if _, err := EncodeGenres(table, ""); err != nil {
			t.Fatalf("EncodeGenres failed: %v", err)
		}
		if len(table.Columns) != 1 || len(table.Rows[0]) != 1 {
			t.Errorf("source table was modified: %+v", table)
		}
	})

	t.Run("honors a custom column name", func(t *testing.T) {
		table := &formatter.Table{
			Columns: []string{"tags"},
			Rows:    [][]string{{`["a"]`}},
		}

		encoded, err := EncodeGenres(table, "tags")
		if err != nil {
			t.Fatalf("EncodeGenres failed: %v", err)
		}
		if encoded.Columns[len(encoded.Columns)-1] != "a" {
			t.Errorf("columns = %v", encoded.Columns)
		}
	})

	t.Run("fails when the column is missing", func(t *testing.T) {
		table := &formatter.Table{Columns: []string{"Song"}, Rows: [][]string{{"x"}}}
		if _, err := EncodeGenres(table, ""); err == nil {
			t.Error("expected error for missing genre column")
		}
	})

	t.Run("fails on malformed cells", func(t *testing.T) {
		table := &formatter.Table{
			Columns: []string{"artist_genres"},
			Rows:    [][]string{{"not a list"}},
		}
		if _, err := EncodeGenres(table, ""); err == nil {
			t.Error("expected error for malformed cell")
		}
	})
}
