package icloud

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"

	"sheet2cal/internal/models"
)

type fakeAPI struct {
	calendars []caldav.Calendar
	objects   []caldav.CalendarObject
	puts      map[string]*ical.Calendar
	putOrder  []string
	lastQuery *caldav.CalendarQuery
	findCalls int
}

func (f *fakeAPI) FindCurrentUserPrincipal(context.Context) (string, error) {
	return "/123/principal/", nil
}

func (f *fakeAPI) FindCalendarHomeSet(context.Context, string) (string, error) {
	return "/123/calendars/", nil
}

func (f *fakeAPI) FindCalendars(context.Context, string) ([]caldav.Calendar, error) {
	f.findCalls++
	return f.calendars, nil
}

func (f *fakeAPI) QueryCalendar(_ context.Context, _ string, q *caldav.CalendarQuery) ([]caldav.CalendarObject, error) {
	f.lastQuery = q
	return f.objects, nil
}

func (f *fakeAPI) PutCalendarObject(_ context.Context, p string, cal *ical.Calendar) (*caldav.CalendarObject, error) {
	if f.puts == nil {
		f.puts = map[string]*ical.Calendar{}
	}
	f.puts[p] = cal
	f.putOrder = append(f.putOrder, p)
	return &caldav.CalendarObject{Path: p, Data: cal}, nil
}

func newTestClient(api calendarAPI) *Client {
	return &Client{
		api:          api,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		calendarName: "Work",
		location:     time.UTC,
	}
}

func TestVerifyFindsCalendarOnce(t *testing.T) {
	api := &fakeAPI{calendars: []caldav.Calendar{{Name: "Home", Path: "/123/calendars/home/"}, {Name: "Work", Path: "/123/calendars/work/"}}}
	c := newTestClient(api)

	for i := 0; i < 2; i++ {
		if err := c.Verify(context.Background()); err != nil {
			t.Fatalf("Verify() error = %v", err)
		}
	}
	if c.calendarPath != "/123/calendars/work/" || api.findCalls != 1 {
		t.Fatalf("unexpected lookup state: path=%q calls=%d", c.calendarPath, api.findCalls)
	}
}

func TestVerifyMissingCalendar(t *testing.T) {
	c := newTestClient(&fakeAPI{calendars: []caldav.Calendar{{Name: "Home", Path: "/h/"}}})
	if err := c.Verify(context.Background()); err == nil {
		t.Fatalf("expected error for missing calendar")
	}
}

func TestCreateAllDayEventAndSetColor(t *testing.T) {
	api := &fakeAPI{calendars: []caldav.Calendar{{Name: "Work", Path: "/123/calendars/work/"}}}
	c := newTestClient(api)
	start := time.Date(2024, time.May, 5, 0, 0, 0, 0, time.UTC)

	h, err := c.CreateAllDayEvent(context.Background(), "Holiday", start, start.AddDate(0, 0, 1), models.EventOptions{Description: "none", Location: "none"})
	if err != nil {
		t.Fatalf("CreateAllDayEvent() error = %v", err)
	}
	if err := h.SetColor(context.Background(), "5"); err != nil {
		t.Fatalf("SetColor() error = %v", err)
	}

	if len(api.putOrder) != 2 || api.putOrder[0] != api.putOrder[1] {
		t.Fatalf("expected the same object to be written twice, got %v", api.putOrder)
	}
	events := api.puts[api.putOrder[1]].Events()
	if len(events) != 1 {
		t.Fatalf("expected one VEVENT, got %d", len(events))
	}
	got := fromICal(events[0], time.UTC)
	if !got.AllDay || got.ColorID != "5" || got.Title != "Holiday" || !got.StartTime.Equal(start) {
		t.Fatalf("unexpected stored event: %+v", got)
	}
}

func TestToICalTimed(t *testing.T) {
	start := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)
	ev := toICal("uid-1", "Team sync", start, start.Add(time.Hour), false, models.EventOptions{Location: "Room A", ColorID: "5"})

	got := fromICal(*ev, time.UTC)
	if got.AllDay || got.UID != "uid-1" || got.Location != "Room A" || got.ColorID != "5" {
		t.Fatalf("unexpected event: %+v", got)
	}
	if !got.EndTime.Equal(start.Add(time.Hour)) {
		t.Fatalf("unexpected end: %v", got.EndTime)
	}
	if ev.Props.Get(ical.PropDescription) != nil {
		t.Fatalf("empty description must not be written")
	}
}

func TestFindEventsBuildsQuery(t *testing.T) {
	existing := ical.NewCalendar()
	existing.Children = append(existing.Children, toICal("uid-2", "Team sync", time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), false, models.EventOptions{}).Component)
	api := &fakeAPI{
		calendars: []caldav.Calendar{{Name: "Work", Path: "/w/"}},
		objects:   []caldav.CalendarObject{{Path: "/w/uid-2.ics", Data: existing}, {Path: "/w/empty.ics"}},
	}
	c := newTestClient(api)
	start := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.UTC)

	events, err := c.FindEvents(context.Background(), start, start.Add(time.Hour), "Team sync")
	if err != nil {
		t.Fatalf("FindEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].UID != "uid-2" {
		t.Fatalf("unexpected events: %+v", events)
	}

	filter := api.lastQuery.CompFilter.Comps[0]
	if filter.Name != ical.CompEvent || !filter.Start.Equal(start) || filter.Props[0].TextMatch.Text != "Team sync" {
		t.Fatalf("unexpected filter: %+v", filter)
	}
}

type failingAPI struct{ fakeAPI }

func (failingAPI) FindCurrentUserPrincipal(context.Context) (string, error) {
	return "", errors.New("401 unauthorized")
}

func TestFindEventsPropagatesDiscoveryError(t *testing.T) {
	c := newTestClient(&failingAPI{})
	if _, err := c.FindEvents(context.Background(), time.Now(), time.Now().Add(time.Hour), "x"); err == nil {
		t.Fatalf("expected discovery error")
	}
}
