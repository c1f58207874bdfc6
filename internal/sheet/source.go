package sheet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sheet2cal/internal/models"
)

// ValuesFetcher reads the raw cell values of an A1 range.
type ValuesFetcher interface {
	Values(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)
}

// Source reads event rows from one tab of a spreadsheet.
type Source struct {
	fetcher       ValuesFetcher
	logger        *slog.Logger
	spreadsheetID string
	sheetName     string
	location      *time.Location
}

// NewSource creates a row source for the given spreadsheet tab.
func NewSource(logger *slog.Logger, fetcher ValuesFetcher, spreadsheetID, sheetName string, loc *time.Location) *Source {
	return &Source{
		fetcher:       fetcher,
		logger:        logger,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		location:      loc,
	}
}

// Range returns the A1 range covering the event columns.
func (s *Source) Range() string {
	return fmt.Sprintf("'%s'!A:H", strings.ReplaceAll(s.sheetName, "'", "''"))
}

// Rows implements importer.RowSource.
func (s *Source) Rows(ctx context.Context) ([]models.Row, error) {
	values, err := s.fetcher.Values(ctx, s.spreadsheetID, s.Range())
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", s.sheetName, err)
	}
	rows := ParseRows(values, s.location)
	s.logger.Debug("Parsed sheet rows", "sheet", s.sheetName, "rows", len(rows))
	return rows, nil
}
