package importer

import (
	"fmt"
	"time"

	"sheet2cal/internal/models"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04"

	reasonStartNotBeforeEnd = "start is equal to or later than end"
)

// Resolution is the outcome of turning a Row into a Candidate.
// Exactly one of Blank, Reason != "" or a usable Candidate holds.
type Resolution struct {
	Candidate models.Candidate
	Reason    string
	Blank     bool
}

// OK reports whether the row produced a usable candidate.
func (r Resolution) OK() bool {
	return !r.Blank && r.Reason == ""
}

// Resolve validates a row and resolves its start and end instants in loc.
// Rows with both times become timed events; all other rows become all-day
// events covering the start date only.
func Resolve(row models.Row, loc *time.Location) Resolution {
	if row.Subject == "" || !row.StartDate.Present() {
		return Resolution{Blank: true}
	}
	if row.StartDate.Err != nil {
		return skip("date format error: %v", row.StartDate.Err)
	}

	c := models.Candidate{
		Subject:     row.Subject,
		Description: row.Description,
		Location:    row.Location,
		ColorID:     row.ColorID,
	}

	if row.StartTime.Present() && row.EndTime.Present() {
		if row.StartTime.Err != nil {
			return skip("time format error: %v", row.StartTime.Err)
		}
		if row.EndTime.Err != nil {
			return skip("time format error: %v", row.EndTime.Err)
		}
		endDate := row.StartDate.Value
		if row.EndDate.Err != nil {
			return skip("date format error: %v", row.EndDate.Err)
		}
		if row.EndDate.Set {
			endDate = row.EndDate.Value
		}
		c.Start = combine(row.StartDate.Value, row.StartTime.Value, loc)
		c.End = combine(endDate, row.EndTime.Value, loc)
	} else {
		c.AllDay = true
		c.Start = midnight(row.StartDate.Value, loc)
		c.End = c.Start.AddDate(0, 0, 1)
	}

	if !c.Start.Before(c.End) {
		return Resolution{Reason: reasonStartNotBeforeEnd}
	}
	return Resolution{Candidate: c}
}

func skip(format string, args ...any) Resolution {
	return Resolution{Reason: fmt.Sprintf(format, args...)}
}

func combine(day time.Time, clock models.Clock, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, clock.Hour, clock.Minute, 0, 0, loc)
}

func midnight(day time.Time, loc *time.Location) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// FormatRange renders a candidate's bounds the way reports show them.
func FormatRange(c models.Candidate, loc *time.Location) (start, end string) {
	layout := dateTimeLayout
	if c.AllDay {
		layout = dateLayout
	}
	return c.Start.In(loc).Format(layout), c.End.In(loc).Format(layout)
}
