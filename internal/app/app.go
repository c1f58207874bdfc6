package app

import (
	"context"
	"fmt"
	"log/slog"

	"sheet2cal/internal/config"
	"sheet2cal/internal/google"
	"sheet2cal/internal/icloud"
	"sheet2cal/internal/importer"
	"sheet2cal/internal/notify"
	"sheet2cal/internal/sheet"
)

// NewImporter wires the collaborators selected by cfg into an Importer.
func NewImporter(ctx context.Context, logger *slog.Logger, cfg config.Config, dryRun bool) (*importer.Importer, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	httpClient, err := google.HTTPClient(ctx, cfg.GoogleClientID, cfg.GoogleSecret, cfg.GoogleAccount)
	if err != nil {
		return nil, fmt.Errorf("failed to create google client for account %s: %w", cfg.GoogleAccount, err)
	}

	sheetsClient, err := google.NewSheetsClient(ctx, logger, httpClient)
	if err != nil {
		return nil, err
	}
	source := sheet.NewSource(logger, sheetsClient, cfg.SpreadsheetID, cfg.SheetName, loc)

	var calendar importer.Calendar
	switch cfg.CalendarBackend {
	case config.BackendCalDAV:
		calendar, err = icloud.NewClient(logger, cfg.CalDAVEndpoint, cfg.CalDAVUsername, cfg.CalDAVPassword, cfg.CalDAVCalendar, loc)
	default:
		calendar, err = google.NewCalendarClient(ctx, logger, httpClient, cfg.GoogleCalendarID, loc)
	}
	if err != nil {
		return nil, err
	}

	var notifier importer.Notifier
	switch cfg.Notifier {
	case config.NotifierSNS:
		notifier, err = notify.NewSNSNotifier(ctx, logger, cfg.SNSTopicARN)
	case config.NotifierLog:
		notifier = notify.LogNotifier{Logger: logger}
	default:
		notifier, err = google.NewMailer(ctx, logger, httpClient)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Initialized importer.",
		"spreadsheet", cfg.SpreadsheetID,
		"sheet", cfg.SheetName,
		"backend", cfg.CalendarBackend,
		"notifier", cfg.Notifier,
		"timezone", loc.String())

	return importer.New(logger, source, calendar, notifier, importer.Options{
		Recipient: cfg.NotifyEmail,
		Location:  loc,
		DryRun:    dryRun,
	}), nil
}
