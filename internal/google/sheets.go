package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsClient reads cell values from Google Sheets.
type SheetsClient struct {
	service *sheets.Service
	logger  *slog.Logger
}

// NewSheetsClient creates a new Google Sheets client.
func NewSheetsClient(ctx context.Context, logger *slog.Logger, httpClient *http.Client) (*SheetsClient, error) {
	service, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsClient{service: service, logger: logger}, nil
}

// Values returns the raw values of readRange. Dates and times come back as
// serial numbers so they do not depend on the sheet's display format.
func (c *SheetsClient) Values(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	resp, err := c.service.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve sheet values: %w", err)
	}
	c.logger.Info("Successfully fetched rows from Google Sheets", "count", len(resp.Values), "range", readRange)
	return resp.Values, nil
}
