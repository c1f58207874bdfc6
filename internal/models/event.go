package models

import "time"

// Event represents an event that already exists in the target calendar.
// This is an internal representation, independent of any specific calendar provider.
type Event struct {
	ID          string    // Provider identifier for the event
	Title       string    // Summary or title of the event
	Description string    // Detailed description of the event
	StartTime   time.Time // Start time of the event
	EndTime     time.Time // End time of the event
	AllDay      bool      // True when the event has no time of day
	Location    string    // Location of the event
	ColorID     string    // Palette color identifier, if any
	UID         string    // The iCalendar UID
}

// Clock is a time of day read from a spreadsheet cell.
type Clock struct {
	Hour   int
	Minute int
}

// Field is an optional cell value. Set is true when the cell held a usable
// value; Err is non-nil when the cell was not blank but could not be read.
type Field[T any] struct {
	Value T
	Set   bool
	Err   error
}

// Present reports whether the cell was non-blank.
func (f Field[T]) Present() bool {
	return f.Set || f.Err != nil
}

// Row is one data row of the source sheet.
type Row struct {
	Number      int // 1-based sheet row number, for logging
	Subject     string
	StartDate   Field[time.Time]
	StartTime   Field[Clock]
	EndDate     Field[time.Time]
	EndTime     Field[Clock]
	Description string
	Location    string
	ColorID     string
}

// Candidate is a validated row ready to be written to a calendar.
// Start is always strictly before End.
type Candidate struct {
	Subject     string
	Start       time.Time
	End         time.Time
	AllDay      bool
	Description string
	Location    string
	ColorID     string
}

// EventOptions are the optional attributes passed when creating an event.
type EventOptions struct {
	Description string
	Location    string
	ColorID     string
}

// Added records an event created by an import run.
type Added struct {
	Candidate   Candidate
	Start       string // formatted start
	End         string // formatted end
	Description string
	ColorName   string
}

// Skipped records a row that was rejected with a reason the user should see.
type Skipped struct {
	Subject string
	Reason  string
}

// Summary is the outcome of a single import run.
type Summary struct {
	Added      []Added
	Skipped    []Skipped
	Blank      int // rows without subject or start date
	Duplicates int // rows matching an existing event
}

// Reportable reports whether the run produced anything worth notifying about.
func (s *Summary) Reportable() bool {
	return len(s.Added) > 0 || len(s.Skipped) > 0
}
