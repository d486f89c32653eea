package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/chartpull/internal/encoder"
	"github.com/desertthunder/chartpull/internal/formatter"
	"github.com/urfave/cli/v3"
)

// Encode expands a genre column into per-genre indicator columns.
func (r *Runner) Encode(ctx context.Context, cmd *cli.Command) error {
	input := cmd.String("input")
	output := cmd.String("output")
	column := cmd.String("column")

	if output == "" {
		output = strings.TrimSuffix(input, ".csv") + "_encoded.csv"
	}

	table, err := formatter.ReadTable(input)
	if err != nil {
		return fmt.Errorf("failed to read input table: %w", err)
	}

	r.logger.Info("encoding genres", "input", input, "rows", len(table.Rows), "column", column)

	encoded, err := encoder.EncodeGenres(table, column)
	if err != nil {
		return fmt.Errorf("encoding failed: %w", err)
	}

	if err := formatter.WriteTable(encoded, output); err != nil {
		return fmt.Errorf("failed to write encoded table: %w", err)
	}

	added := len(encoded.Columns) - len(table.Columns)
	r.logger.Info("encoded table written", "path", output, "genre_columns", added)

	return r.writePlain("✓ Encoded %d rows with %d genre columns to %s\n", len(encoded.Rows), added, output)
}
