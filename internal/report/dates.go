package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/rumor-ml/commons.systems/findash/internal/domain"
)

// dateLayouts lists accepted day-precision forms. Day-first layouts come
// before ISO so that 01.02.2024 is always the first of February.
var dateLayouts = []string{
	"02.01.2006",
	"02-01-2006",
	"02/01/2006",
	"2006-01-02",
}

// ParseDate parses a day-first date. A trailing time component such as
// "15:04:05" or an ISO "T15:04:05" suffix is ignored. The result is
// midnight UTC.
func ParseDate(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if fields := strings.Fields(s); len(fields) > 0 {
		s = fields[0]
	}
	if i := strings.IndexByte(s, 'T'); i > 0 {
		s = s[:i]
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format (expected DD.MM.YYYY, DD-MM-YYYY, DD/MM/YYYY or YYYY-MM-DD)")
}

// parseReference parses a caller-supplied reference date.
func parseReference(value string) (time.Time, error) {
	t, err := ParseDate(value)
	if err != nil {
		return time.Time{}, &domain.ParseError{Row: -1, Field: "reference date", Value: value, Err: err}
	}
	return t, nil
}

// paymentDates parses the payment date of every row. Blank cells yield the
// zero time. Any unparsable value fails the whole call.
func paymentDates(ds *domain.Dataset) ([]time.Time, error) {
	dates := make([]time.Time, ds.Len())
	for i := range dates {
		raw := ds.Row(i).PaymentDate
		if raw == nil || strings.TrimSpace(*raw) == "" {
			continue
		}
		t, err := ParseDate(*raw)
		if err != nil {
			return nil, &domain.ParseError{Row: i, Field: string(domain.ColumnPaymentDate), Value: *raw, Err: err}
		}
		dates[i] = t
	}
	return dates, nil
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// within reports whether t lies in [start, end]. The zero time never does.
func within(t, start, end time.Time) bool {
	return !t.IsZero() && !t.Before(start) && !t.After(end)
}
