package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sheet2cal/internal/models"
)

const defaultOptionValue = "none"

var (
	ErrNoSource   = errors.New("row source is not configured")
	ErrNoCalendar = errors.New("calendar is not configured")
)

// RowSource yields the data rows of the sheet, header excluded.
type RowSource interface {
	Rows(ctx context.Context) ([]models.Row, error)
}

// EventHandle is a created event that can still be modified.
type EventHandle interface {
	SetColor(ctx context.Context, colorID string) error
}

// Calendar is the store events are written to.
type Calendar interface {
	FindEvents(ctx context.Context, start, end time.Time, title string) ([]*models.Event, error)
	CreateEvent(ctx context.Context, subject string, start, end time.Time, opts models.EventOptions) (EventHandle, error)
	CreateAllDayEvent(ctx context.Context, subject string, start, end time.Time, opts models.EventOptions) (EventHandle, error)
}

// Verifier is implemented by calendars that can check they exist before a run.
type Verifier interface {
	Verify(ctx context.Context) error
}

// Notifier delivers the run report.
type Notifier interface {
	SendEmail(ctx context.Context, to, subject, body string) error
}

// Options configures an Importer.
type Options struct {
	Recipient string
	Location  *time.Location
	DryRun    bool
}

// Importer copies sheet rows into a calendar and reports the outcome.
type Importer struct {
	logger   *slog.Logger
	source   RowSource
	calendar Calendar
	notifier Notifier
	opts     Options
}

// New creates a new Importer.
func New(logger *slog.Logger, source RowSource, calendar Calendar, notifier Notifier, opts Options) *Importer {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Importer{
		logger:   logger,
		source:   source,
		calendar: calendar,
		notifier: notifier,
		opts:     opts,
	}
}

// Run performs one import pass. A returned error means the run was aborted:
// it has been logged and an error notification has been attempted. Events
// created before the failure stay in the calendar.
func (im *Importer) Run(ctx context.Context) (*models.Summary, error) {
	im.logger.Info("Starting import run.", "dryRun", im.opts.DryRun)

	summary, err := im.process(ctx)
	if err != nil {
		im.logger.Error("Import run failed", "error", err)
		im.notifyFailure(ctx, err)
		return nil, err
	}

	if err := im.report(ctx, summary); err != nil {
		im.logger.Error("Import run failed", "error", err)
		im.notifyFailure(ctx, err)
		return nil, err
	}

	im.logger.Info("Import run finished.",
		"added", len(summary.Added),
		"skipped", len(summary.Skipped),
		"duplicates", summary.Duplicates,
		"blank", summary.Blank)
	return summary, nil
}

func (im *Importer) process(ctx context.Context) (*models.Summary, error) {
	if im.calendar == nil {
		return nil, ErrNoCalendar
	}
	if im.source == nil {
		return nil, ErrNoSource
	}
	if v, ok := im.calendar.(Verifier); ok {
		if err := v.Verify(ctx); err != nil {
			return nil, fmt.Errorf("failed to open calendar: %w", err)
		}
	}

	rows, err := im.source.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	im.logger.Debug("Read rows from source.", "count", len(rows))

	summary := &models.Summary{}
	for _, row := range rows {
		if err := im.processRow(ctx, row, summary); err != nil {
			return nil, err
		}
	}
	return summary, nil
}

func (im *Importer) processRow(ctx context.Context, row models.Row, summary *models.Summary) error {
	res := Resolve(row, im.opts.Location)
	switch {
	case res.Blank:
		summary.Blank++
		return nil
	case res.Reason != "":
		im.logger.Warn("Skipping row.", "row", row.Number, "subject", row.Subject, "reason", res.Reason)
		summary.Skipped = append(summary.Skipped, models.Skipped{Subject: row.Subject, Reason: res.Reason})
		return nil
	}

	c := res.Candidate
	existing, err := im.calendar.FindEvents(ctx, c.Start, c.End, c.Subject)
	if err != nil {
		return fmt.Errorf("failed to look up events for %q: %w", c.Subject, err)
	}
	if len(existing) > 0 {
		im.logger.Info("Event already exists, skipping.", "subject", c.Subject, "start", c.Start)
		summary.Duplicates++
		return nil
	}

	if c.ColorID != "" && !models.KnownColor(c.ColorID) {
		im.logger.Warn("Unknown color id, the calendar may reject it.", "row", row.Number, "subject", c.Subject, "colorID", c.ColorID)
	}

	opts := models.EventOptions{
		Description: orDefault(c.Description),
		Location:    orDefault(c.Location),
		ColorID:     c.ColorID,
	}

	if im.opts.DryRun {
		im.logger.Info("[DRY RUN] Would create event", "subject", c.Subject, "start", c.Start, "end", c.End, "allDay", c.AllDay)
	} else {
		if err := im.create(ctx, c, opts); err != nil {
			return err
		}
	}

	start, end := FormatRange(c, im.opts.Location)
	added := models.Added{
		Candidate:   c,
		Start:       start,
		End:         end,
		Description: opts.Description,
		ColorName:   models.ColorName(c.ColorID),
	}
	summary.Added = append(summary.Added, added)
	im.logger.Info("Event added.", "subject", c.Subject, "start", start, "end", end, "color", added.ColorName)
	return nil
}

func (im *Importer) create(ctx context.Context, c models.Candidate, opts models.EventOptions) error {
	var (
		handle EventHandle
		err    error
	)
	if c.AllDay {
		handle, err = im.calendar.CreateAllDayEvent(ctx, c.Subject, c.Start, c.End, opts)
	} else {
		handle, err = im.calendar.CreateEvent(ctx, c.Subject, c.Start, c.End, opts)
	}
	if err != nil {
		return fmt.Errorf("failed to create event %q: %w", c.Subject, err)
	}

	if c.ColorID != "" {
		if err := handle.SetColor(ctx, c.ColorID); err != nil {
			return fmt.Errorf("failed to set color on event %q: %w", c.Subject, err)
		}
	}
	return nil
}

func (im *Importer) report(ctx context.Context, summary *models.Summary) error {
	subject, body, ok := Compose(summary)
	if !ok {
		im.logger.Info("Nothing to report, no notification sent.")
		return nil
	}
	if im.opts.DryRun {
		im.logger.Info("[DRY RUN] Would send report", "subject", subject, "to", im.opts.Recipient)
		return nil
	}
	if im.notifier == nil {
		im.logger.Warn("No notifier configured, report not sent.", "subject", subject)
		return nil
	}
	if err := im.notifier.SendEmail(ctx, im.opts.Recipient, subject, body); err != nil {
		return fmt.Errorf("failed to send report: %w", err)
	}
	return nil
}

func (im *Importer) notifyFailure(ctx context.Context, runErr error) {
	if im.opts.DryRun || im.notifier == nil {
		return
	}
	subject, body := ComposeFailure(runErr)
	if err := im.notifier.SendEmail(ctx, im.opts.Recipient, subject, body); err != nil {
		im.logger.Error("Failed to send error notification", "error", err)
	}
}

func orDefault(s string) string {
	if s == "" {
		return defaultOptionValue
	}
	return s
}
