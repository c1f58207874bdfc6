package icloud

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"

	"sheet2cal/internal/importer"
	"sheet2cal/internal/models"
)

const (
	// ICloudEndpoint is the default CalDAV server.
	ICloudEndpoint = "https://caldav.icloud.com/"

	productID = "-//sheet2cal//EN"
	// propColor is the RFC 7986 COLOR property; the palette id is stored as is.
	propColor = "COLOR"
)

// basicAuthTransport handles adding Basic Auth and custom headers to requests.
type basicAuthTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

// RoundTrip adds required headers and authentication to each request.
func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.Username, t.Password)
	req.Header.Set("User-Agent", "sheet2cal/1.0")
	return t.Transport.RoundTrip(req)
}

// calendarAPI is the subset of the CalDAV client used here.
type calendarAPI interface {
	FindCurrentUserPrincipal(ctx context.Context) (string, error)
	FindCalendarHomeSet(ctx context.Context, principal string) (string, error)
	FindCalendars(ctx context.Context, calendarHomeSet string) ([]caldav.Calendar, error)
	QueryCalendar(ctx context.Context, calendar string, query *caldav.CalendarQuery) ([]caldav.CalendarObject, error)
	PutCalendarObject(ctx context.Context, path string, cal *ical.Calendar) (*caldav.CalendarObject, error)
}

// Client writes events to a named calendar on a CalDAV server.
type Client struct {
	api          calendarAPI
	logger       *slog.Logger
	calendarName string
	calendarPath string
	location     *time.Location
}

// NewClient creates a new CalDAV client. The calendar itself is looked up on
// first use or by Verify.
func NewClient(logger *slog.Logger, endpoint, username, password, calendarName string, loc *time.Location) (*Client, error) {
	if endpoint == "" {
		endpoint = ICloudEndpoint
	}
	transport := &basicAuthTransport{
		Username:  username,
		Password:  password,
		Transport: http.DefaultTransport,
	}
	httpClient := &http.Client{Transport: transport}

	api, err := caldav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	return &Client{api: api, logger: logger, calendarName: calendarName, location: loc}, nil
}

// Verify resolves the configured calendar, failing if it does not exist.
func (c *Client) Verify(ctx context.Context) error {
	_, err := c.calendar(ctx)
	return err
}

// FindEvents returns events overlapping [start, end) whose SUMMARY contains title.
func (c *Client) FindEvents(ctx context.Context, start, end time.Time, title string) ([]*models.Event, error) {
	calPath, err := c.calendar(ctx)
	if err != nil {
		return nil, err
	}

	objects, err := c.api.QueryCalendar(ctx, calPath, searchQuery(start, end, title))
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar: %w", err)
	}

	var events []*models.Event
	for _, obj := range objects {
		if obj.Data == nil {
			continue
		}
		for _, ev := range obj.Data.Events() {
			events = append(events, fromICal(ev, c.location))
		}
	}
	c.logger.Debug("Queried CalDAV calendar", "title", title, "matches", len(events))
	return events, nil
}

// CreateEvent stores a timed event.
func (c *Client) CreateEvent(ctx context.Context, subject string, start, end time.Time, opts models.EventOptions) (importer.EventHandle, error) {
	return c.put(ctx, toICal(GenerateUID(), subject, start, end, false, opts))
}

// CreateAllDayEvent stores an event with DATE values; end is exclusive.
func (c *Client) CreateAllDayEvent(ctx context.Context, subject string, start, end time.Time, opts models.EventOptions) (importer.EventHandle, error) {
	return c.put(ctx, toICal(GenerateUID(), subject, start, end, true, opts))
}

func (c *Client) put(ctx context.Context, event *ical.Event) (importer.EventHandle, error) {
	calPath, err := c.calendar(ctx)
	if err != nil {
		return nil, err
	}

	uid, _ := event.Props.Text(ical.PropUID)
	h := &eventHandle{client: c, event: event, path: path.Join(calPath, uid+".ics")}
	if err := h.store(ctx); err != nil {
		return nil, err
	}

	summary, _ := event.Props.Text(ical.PropSummary)
	c.logger.Info("Successfully stored event on CalDAV server", "eventTitle", summary, "uid", uid)
	return h, nil
}

type eventHandle struct {
	client *Client
	event  *ical.Event
	path   string
}

// SetColor rewrites the stored event with a COLOR property.
func (h *eventHandle) SetColor(ctx context.Context, colorID string) error {
	h.event.Props.SetText(propColor, colorID)
	return h.store(ctx)
}

func (h *eventHandle) store(ctx context.Context) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Children = append(cal.Children, h.event.Component)

	if _, err := h.client.api.PutCalendarObject(ctx, h.path, cal); err != nil {
		return fmt.Errorf("failed to store event on CalDAV server: %w", err)
	}
	return nil
}

// calendar returns the path of the configured calendar, discovering it once.
func (c *Client) calendar(ctx context.Context) (string, error) {
	if c.calendarPath != "" {
		return c.calendarPath, nil
	}

	c.logger.Info("Finding CalDAV calendar", "calendarName", c.calendarName)
	principalPath, err := c.api.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := c.api.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.api.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	for _, cal := range calendars {
		if cal.Name == c.calendarName {
			c.calendarPath = cal.Path
			c.logger.Info("Successfully found CalDAV calendar", "path", cal.Path)
			return cal.Path, nil
		}
	}
	return "", fmt.Errorf("no calendar found with name '%s'", c.calendarName)
}

// searchQuery selects VEVENTs overlapping [start, end) with a matching SUMMARY.
func searchQuery(start, end time.Time, title string) *caldav.CalendarQuery {
	return &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: ical.CompCalendar,
			Comps: []caldav.CalendarCompRequest{{
				Name:     ical.CompEvent,
				AllProps: true,
			}},
		},
		CompFilter: caldav.CompFilter{
			Name: ical.CompCalendar,
			Comps: []caldav.CompFilter{{
				Name:  ical.CompEvent,
				Start: start,
				End:   end,
				Props: []caldav.PropFilter{{
					Name:      ical.PropSummary,
					TextMatch: &caldav.TextMatch{Text: title},
				}},
			}},
		},
	}
}

// toICal converts an event to be created into a VEVENT.
func toICal(uid, subject string, start, end time.Time, allDay bool, opts models.EventOptions) *ical.Event {
	ve := ical.NewEvent()
	ve.Props.SetText(ical.PropUID, uid)
	ve.Props.SetText(ical.PropSummary, subject)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	if allDay {
		ve.Props.SetDate(ical.PropDateTimeStart, start)
		ve.Props.SetDate(ical.PropDateTimeEnd, end)
	} else {
		ve.Props.SetDateTime(ical.PropDateTimeStart, start)
		ve.Props.SetDateTime(ical.PropDateTimeEnd, end)
	}

	if opts.Description != "" {
		ve.Props.SetText(ical.PropDescription, opts.Description)
	}
	if opts.Location != "" {
		ve.Props.SetText(ical.PropLocation, opts.Location)
	}
	if opts.ColorID != "" {
		ve.Props.SetText(propColor, opts.ColorID)
	}
	return ve
}

// fromICal converts a stored VEVENT to the internal Event model.
func fromICal(ev ical.Event, loc *time.Location) *models.Event {
	out := &models.Event{}
	out.UID, _ = ev.Props.Text(ical.PropUID)
	out.ID = out.UID
	out.Title, _ = ev.Props.Text(ical.PropSummary)
	out.Description, _ = ev.Props.Text(ical.PropDescription)
	out.Location, _ = ev.Props.Text(ical.PropLocation)
	out.ColorID, _ = ev.Props.Text(propColor)
	out.StartTime, _ = ev.DateTimeStart(loc)
	out.EndTime, _ = ev.DateTimeEnd(loc)
	if p := ev.Props.Get(ical.PropDateTimeStart); p != nil {
		out.AllDay = p.ValueType() == ical.ValueDate
	}
	return out
}

// GenerateUID creates a new unique identifier for an event.
func GenerateUID() string {
	return uuid.New().String()
}
