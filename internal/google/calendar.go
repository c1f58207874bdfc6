package google

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"sheet2cal/internal/importer"
	"sheet2cal/internal/models"
)

const allDayLayout = "2006-01-02"

// CalendarClient writes events to one Google calendar.
type CalendarClient struct {
	service    *calendar.Service
	logger     *slog.Logger
	calendarID string
	location   *time.Location
}

// NewCalendarClient creates a new Google Calendar client for calendarID.
func NewCalendarClient(ctx context.Context, logger *slog.Logger, httpClient *http.Client, calendarID string, loc *time.Location) (*CalendarClient, error) {
	service, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	return &CalendarClient{service: service, logger: logger, calendarID: calendarID, location: loc}, nil
}

// Verify checks that the calendar exists and is reachable.
func (c *CalendarClient) Verify(ctx context.Context) error {
	cal, err := c.service.Calendars.Get(c.calendarID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("calendar %q not found: %w", c.calendarID, err)
	}
	c.logger.Debug("Using Google calendar", "calendarID", c.calendarID, "summary", cal.Summary)
	return nil
}

// FindEvents returns events overlapping [start, end) whose text matches title.
func (c *CalendarClient) FindEvents(ctx context.Context, start, end time.Time, title string) ([]*models.Event, error) {
	c.logger.Debug("Searching existing events", "calendarID", c.calendarID, "title", title, "start", start, "end", end)

	events, err := c.service.Events.List(c.calendarID).
		ShowDeleted(false).
		SingleEvents(true).
		TimeMin(start.Format(time.RFC3339)).
		TimeMax(end.Format(time.RFC3339)).
		Q(title).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve events: %w", err)
	}
	return toInternalEvents(events.Items, c.location), nil
}

// CreateEvent inserts a timed event.
func (c *CalendarClient) CreateEvent(ctx context.Context, subject string, start, end time.Time, opts models.EventOptions) (importer.EventHandle, error) {
	ev := newEvent(subject, opts)
	ev.Start = &calendar.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: zoneName(c.location)}
	ev.End = &calendar.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: zoneName(c.location)}
	return c.insert(ctx, ev)
}

// CreateAllDayEvent inserts an event spanning whole days; end is exclusive.
func (c *CalendarClient) CreateAllDayEvent(ctx context.Context, subject string, start, end time.Time, opts models.EventOptions) (importer.EventHandle, error) {
	ev := newEvent(subject, opts)
	ev.Start = &calendar.EventDateTime{Date: start.Format(allDayLayout)}
	ev.End = &calendar.EventDateTime{Date: end.Format(allDayLayout)}
	return c.insert(ctx, ev)
}

func (c *CalendarClient) insert(ctx context.Context, ev *calendar.Event) (importer.EventHandle, error) {
	created, err := c.service.Events.Insert(c.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}
	c.logger.Info("Created Google Calendar event", "title", created.Summary, "id", created.Id)
	return &eventHandle{client: c, id: created.Id}, nil
}

type eventHandle struct {
	client *CalendarClient
	id     string
}

// SetColor patches the color of the created event.
func (h *eventHandle) SetColor(ctx context.Context, colorID string) error {
	patch := &calendar.Event{ColorId: colorID}
	if _, err := h.client.service.Events.Patch(h.client.calendarID, h.id, patch).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to patch event color: %w", err)
	}
	return nil
}

func newEvent(subject string, opts models.EventOptions) *calendar.Event {
	return &calendar.Event{
		Summary:     subject,
		Description: opts.Description,
		Location:    opts.Location,
		ColorId:     opts.ColorID,
	}
}

// zoneName returns an IANA name usable by the API, or "" for zones without one.
func zoneName(loc *time.Location) string {
	if loc == nil || loc == time.Local {
		return ""
	}
	return loc.String()
}

// toInternalEvents converts Google Calendar events to the internal Event model.
func toInternalEvents(googleEvents []*calendar.Event, loc *time.Location) []*models.Event {
	var internalEvents []*models.Event
	for _, item := range googleEvents {
		if item.Start == nil || item.End == nil {
			continue
		}

		event := &models.Event{
			ID:          item.Id,
			Title:       item.Summary,
			Description: item.Description,
			Location:    item.Location,
			ColorID:     item.ColorId,
			UID:         item.ICalUID,
		}
		if item.Start.DateTime != "" {
			event.StartTime, _ = time.Parse(time.RFC3339, item.Start.DateTime)
			event.EndTime, _ = time.Parse(time.RFC3339, item.End.DateTime)
		} else {
			event.AllDay = true
			event.StartTime, _ = time.ParseInLocation(allDayLayout, item.Start.Date, loc)
			event.EndTime, _ = time.ParseInLocation(allDayLayout, item.End.Date, loc)
		}
		internalEvents = append(internalEvents, event)
	}
	return internalEvents
}
