// Package tabular projects document content into a spreadsheet-like grid.
//
// The grid is a projection, never a second copy of the document: a cell edit
// is folded into a full replacement serialization of the whole grid, and that
// string goes through the content gateway like any other edit.
package tabular

import (
	"encoding/csv"
	"fmt"
	"strings"

	"inkwell/internal/domain"
)

// Grid is a parsed tabular view of a document's content.
type Grid struct {
	Rows [][]string
}

// Parse reads CSV content into a grid. Ragged rows are allowed; empty
// content yields an empty grid.
func Parse(content string) (*Grid, error) {
	if strings.TrimSpace(content) == "" {
		return &Grid{}, nil
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse tabular content: %v", domain.ErrValidation, err)
	}

	return &Grid{Rows: rows}, nil
}

// Serialize renders the whole grid back to a CSV string.
func (g *Grid) Serialize() (string, error) {
	if len(g.Rows) == 0 {
		return "", nil
	}

	var sb strings.Builder
	writer := csv.NewWriter(&sb)
	if err := writer.WriteAll(g.Rows); err != nil {
		return "", fmt.Errorf("serialize tabular content: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("serialize tabular content: %w", err)
	}
	return sb.String(), nil
}

// SetCell writes value at (row, col), growing the grid as needed so edits
// beyond the current bounds add rows and columns instead of failing.
func (g *Grid) SetCell(row, col int, value string) {
	for len(g.Rows) <= row {
		// Pad with a single empty field rather than a zero-field row:
		// blank lines would be dropped on the next parse.
		g.Rows = append(g.Rows, []string{""})
	}
	for len(g.Rows[row]) <= col {
		g.Rows[row] = append(g.Rows[row], "")
	}
	g.Rows[row][col] = value
}

// ApplyCellEdit folds a single cell edit into a full replacement
// serialization of the document content.
func ApplyCellEdit(content string, row, col int, value string) (string, error) {
	if row < 0 || col < 0 {
		return "", fmt.Errorf("%w: cell coordinates must be non-negative", domain.ErrValidation)
	}

	grid, err := Parse(content)
	if err != nil {
		return "", err
	}

	grid.SetCell(row, col, value)
	return grid.Serialize()
}
