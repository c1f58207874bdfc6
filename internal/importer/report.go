package importer

import (
	"fmt"
	"strings"

	"sheet2cal/internal/models"
)

const (
	subjectSucceeded = "Calendar import succeeded"
	subjectPartial   = "Calendar import partially succeeded"
	subjectErrors    = "Calendar import had errors"
	subjectFailure   = "Calendar import error"

	reportSeparator = "-----------------------------\n"
)

// Compose builds the report for a finished run. ok is false when there is
// nothing to report; duplicates and blank rows are never reported.
func Compose(s *models.Summary) (subject, body string, ok bool) {
	if !s.Reportable() {
		return "", "", false
	}

	var b strings.Builder
	if len(s.Added) > 0 {
		b.WriteString("The following events were added to the calendar:\n\n")
		for _, a := range s.Added {
			fmt.Fprintf(&b, "Subject: %s\nStart: %s\nEnd: %s\nDescription: %s\nColor: %s\n\n",
				a.Candidate.Subject, a.Start, a.End, a.Description, a.ColorName)
		}
	}
	if len(s.Skipped) > 0 {
		if len(s.Added) > 0 {
			b.WriteString(reportSeparator)
		}
		b.WriteString("Events not added:\n\n")
		for _, sk := range s.Skipped {
			fmt.Fprintf(&b, "Subject: %s\nReason: %s\n\n", sk.Subject, sk.Reason)
		}
	}

	switch {
	case len(s.Added) > 0 && len(s.Skipped) > 0:
		subject = subjectPartial
	case len(s.Added) > 0:
		subject = subjectSucceeded
	default:
		subject = subjectErrors
	}
	return subject, b.String(), true
}

// ComposeFailure builds the notification sent when a run aborts.
func ComposeFailure(err error) (subject, body string) {
	return subjectFailure, fmt.Sprintf("An error occurred while running the import:\n\n%v\n", err)
}
