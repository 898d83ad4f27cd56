package pricehistory

import (
	"fmt"
	"time"
)

// DateFormat is the YYYY-MM-DD wire format for series dates.
const DateFormat = "2006-01-02"

// DateRange is a closed interval [Start, End], both inclusive.
// Values are normalized to midnight UTC.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two dates, truncating any time component.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: truncate(start), End: truncate(end)}
}

// ParseDateRange parses a range from YYYY-MM-DD strings.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	if e.Before(s) {
		return DateRange{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}
	return DateRange{Start: s, End: e}, nil
}

// ParseDate parses a YYYY-MM-DD date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Contains reports whether d falls within the range, inclusive on both ends.
func (r DateRange) Contains(d time.Time) bool {
	d = truncate(d)
	return !d.Before(r.Start) && !d.After(r.End)
}

// TradingDays enumerates the candidate trading days within the range:
// every Monday through Friday. No holiday calendar is consulted, so a
// weekday market holiday is still a candidate and simply never yields data.
func (r DateRange) TradingDays() []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		days = append(days, d)
	}
	return days
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
