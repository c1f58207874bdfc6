package sheet

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	"sheet2cal/internal/models"
)

// Column order of the source sheet.
const (
	colSubject = iota
	colStartDate
	colStartTime
	colEndDate
	colEndTime
	colDescription
	colLocation
	colColor
)

const minutesPerDay = 24 * 60

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006.01.02",
	"2006. 1. 2",
	"2006-1-2",
	"2006/1/2",
}

var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"3:04:05 PM",
}

// ParseRows converts raw sheet values into rows. The first row is the header
// and is dropped. Dates are interpreted in loc.
func ParseRows(values [][]interface{}, loc *time.Location) []models.Row {
	if len(values) <= 1 {
		return nil
	}
	rows := make([]models.Row, 0, len(values)-1)
	for i, cells := range values[1:] {
		rows = append(rows, ParseRow(cells, i+2, loc))
	}
	return rows
}

// ParseRow converts one line of cells. Missing trailing cells are blank.
func ParseRow(cells []interface{}, number int, loc *time.Location) models.Row {
	cell := func(i int) interface{} {
		if i < len(cells) {
			return cells[i]
		}
		return nil
	}
	return models.Row{
		Number:      number,
		Subject:     text(cell(colSubject)),
		StartDate:   parseDate(cell(colStartDate), loc),
		StartTime:   parseClock(cell(colStartTime)),
		EndDate:     parseDate(cell(colEndDate), loc),
		EndTime:     parseClock(cell(colEndTime)),
		Description: text(cell(colDescription)),
		Location:    text(cell(colLocation)),
		ColorID:     text(cell(colColor)),
	}
}

// text normalizes a cell to trimmed text; numbers keep their shortest form,
// so a color id cell holding 5 becomes "5".
func text(v interface{}) string {
	s, err := cast.ToStringE(v)
	if err != nil {
		return strings.TrimSpace(fmt.Sprint(v))
	}
	return strings.TrimSpace(s)
}

func parseDate(v interface{}, loc *time.Location) models.Field[time.Time] {
	switch x := v.(type) {
	case nil:
		return models.Field[time.Time]{}
	case time.Time:
		y, m, d := x.In(loc).Date()
		return models.Field[time.Time]{Value: time.Date(y, m, d, 0, 0, 0, 0, loc), Set: true}
	case float64, int, int64:
		days, _ := splitSerial(cast.ToFloat64(x))
		return models.Field[time.Time]{Value: serialEpoch(loc).AddDate(0, 0, days), Set: true}
	}

	s := text(v)
	if s == "" {
		return models.Field[time.Time]{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return models.Field[time.Time]{Value: t, Set: true}
		}
	}
	if t, err := cast.ToTimeInDefaultLocationE(s, loc); err == nil {
		y, m, d := t.In(loc).Date()
		return models.Field[time.Time]{Value: time.Date(y, m, d, 0, 0, 0, 0, loc), Set: true}
	}
	return models.Field[time.Time]{Err: fmt.Errorf("cannot read %q as a date", s)}
}

func parseClock(v interface{}) models.Field[models.Clock] {
	switch x := v.(type) {
	case nil:
		return models.Field[models.Clock]{}
	case time.Time:
		return models.Field[models.Clock]{Value: models.Clock{Hour: x.Hour(), Minute: x.Minute()}, Set: true}
	case float64, int, int64:
		f := cast.ToFloat64(x)
		if f < 0 {
			return models.Field[models.Clock]{Err: fmt.Errorf("cannot read %v as a time of day", f)}
		}
		// A whole number such as 9 is a count, not a time; serial 0 is midnight.
		days, minutes := splitSerial(f)
		if days >= 1 && minutes == 0 {
			return models.Field[models.Clock]{Err: fmt.Errorf("cannot read %v as a time of day", f)}
		}
		return models.Field[models.Clock]{Value: models.Clock{Hour: minutes / 60, Minute: minutes % 60}, Set: true}
	}

	s := text(v)
	if s == "" {
		return models.Field[models.Clock]{}
	}
	upper := strings.ToUpper(s)
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return models.Field[models.Clock]{Value: models.Clock{Hour: t.Hour(), Minute: t.Minute()}, Set: true}
		}
	}
	return models.Field[models.Clock]{Err: fmt.Errorf("cannot read %q as a time of day", s)}
}

// splitSerial splits a spreadsheet serial number into whole days and the
// minute of the day, rounded to the nearest minute.
func splitSerial(f float64) (days, minutes int) {
	whole := math.Floor(f)
	minutes = int(math.Round((f - whole) * minutesPerDay))
	days = int(whole)
	if minutes == minutesPerDay {
		days++
		minutes = 0
	}
	return days, minutes
}

// serialEpoch is day zero of spreadsheet serial dates.
func serialEpoch(loc *time.Location) time.Time {
	return time.Date(1899, time.December, 30, 0, 0, 0, 0, loc)
}
