package services

import (
	"time"

	"github.com/custodia-labs/aeonsync/internal/core/domain"
)

// epochOffset is the number of seconds from 0001-01-01 to the Unix epoch.
const epochOffset = 62135596800

const secondsPerDay = 86400

const (
	isoDate     = "2006-01-02"
	isoTime     = "15:04:05"
	isoDateTime = isoDate + " " + isoTime
)

// TimestampToTime converts a timeline timestamp to UTC time.
func TimestampToTime(ts domain.Timestamp) time.Time {
	return time.Unix(int64(ts)-epochOffset, 0).UTC()
}

// TimeToTimestamp converts t to a timeline timestamp, ignoring sub-second precision.
func TimeToTimestamp(t time.Time) domain.Timestamp {
	return domain.Timestamp(t.Unix() + epochOffset)
}

// ReferenceDate returns midnight of the ISO date iso, or midnight of
// today when iso is empty or malformed.
func ReferenceDate(iso string, now time.Time) time.Time {
	if t, err := time.Parse(isoDate, iso); err == nil {
		return t
	}
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// TemporalConverter converts between timeline positions and section dates.
// It owns the counter that numbers exported sections without a date.
type TemporalConverter struct {
	reference time.Time
	counter   domain.Timestamp
}

// NewTemporalConverter creates a converter resolving day offsets against reference.
func NewTemporalConverter(reference time.Time) *TemporalConverter {
	return &TemporalConverter{reference: reference}
}

// Reference returns the reference date.
func (c *TemporalConverter) Reference() time.Time {
	return c.reference
}

// Seed sets the counter that DateToTimestamp increments.
func (c *TemporalConverter) Seed(ts domain.Timestamp) {
	c.counter = ts
}

// Counter returns the last value handed out by DateToTimestamp.
func (c *TemporalConverter) Counter() domain.Timestamp {
	return c.counter
}

// ApplyTimestamp writes the start and duration of an event onto sc.
// The representation already chosen for sc is kept: a section with a day
// offset gets a new day offset, a section with only a time is pinned to
// the reference date, and any other section gets an absolute date.
// Timestamps before year 1 or after year 9999 cannot be represented as a
// four-digit date and leave sc unchanged; the return value reports whether
// sc was updated.
func (c *TemporalConverter) ApplyTimestamp(ts domain.Timestamp, span domain.Span, sc *domain.Section) bool {
	if ts < 0 {
		return false
	}
	start := TimestampToTime(ts)
	if start.Year() > maxYear {
		return false
	}
	switch {
	case sc.Day != nil:
		day := int(floorDiv(start.Unix()-c.reference.Unix(), secondsPerDay))
		sc.Day = &day
	case sc.Time != "" && sc.Date == "":
		day := 0
		sc.Day = &day
	default:
		sc.Date = start.Format(isoDate)
	}
	sc.Time = start.Format(isoTime)
	sc.LastsDays, sc.LastsHours, sc.LastsMinutes = SpanToDuration(start, span)
	return true
}

// SpanToDuration folds a mixed-unit span into days, hours and minutes.
//
// Years and months are applied to the calendar date of start, with month
// overflow carried into the year, and the difference in days between the
// two dates is taken. The fixed units are then added with floor carries.
// Seconds are truncated to whole minutes.
func SpanToDuration(start time.Time, span domain.Span) (days, hours, minutes int) {
	if span.Years != nil || span.Months != nil {
		year, month := start.Year(), int(start.Month())
		if span.Years != nil {
			year += *span.Years
		}
		if span.Months != nil {
			month += *span.Months
			for month > 12 {
				month -= 12
				year++
			}
		}
		begin := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		end := time.Date(year, time.Month(month), start.Day(), 0, 0, 0, 0, time.UTC)
		days = int(floorDiv(end.Unix()-begin.Unix(), secondsPerDay))
	}
	if span.Weeks != nil {
		days += *span.Weeks * 7
	}
	if span.Days != nil {
		days += *span.Days
	}
	if span.Hours != nil {
		days += int(floorDiv(int64(*span.Hours), 24))
		hours += int(floorMod(int64(*span.Hours), 24))
	}
	if span.Minutes != nil {
		hours += int(floorDiv(int64(*span.Minutes), 60))
		minutes += int(floorMod(int64(*span.Minutes), 60))
	}
	if span.Seconds != nil {
		minutes += int(floorDiv(int64(*span.Seconds), 60))
	}
	hours += int(floorDiv(int64(minutes), 60))
	minutes = int(floorMod(int64(minutes), 60))
	days += int(floorDiv(int64(hours), 24))
	hours = int(floorMod(int64(hours), 24))
	return days, hours, minutes
}

// DurationToSpan returns the span of a section's duration. Zero units are omitted.
func DurationToSpan(sc *domain.Section) domain.Span {
	var span domain.Span
	if sc.LastsDays != 0 {
		span.Days = domain.IntPtr(sc.LastsDays)
	}
	if sc.LastsHours != 0 {
		span.Hours = domain.IntPtr(sc.LastsHours)
	}
	if sc.LastsMinutes != 0 {
		span.Minutes = domain.IntPtr(sc.LastsMinutes)
	}
	return span
}

// DateToTimestamp returns the timestamp of a section's start. Every call
// advances the counter; sections without a parseable date get the
// counter value, so their events stay unique and ordered.
func (c *TemporalConverter) DateToTimestamp(sc *domain.Section) domain.Timestamp {
	c.counter++
	if sc.Date == "" {
		return c.counter
	}
	t, ok := parseDateTime(sc.Date, sc.Time)
	if !ok {
		return c.counter
	}
	return TimeToTimestamp(t)
}

// SectionDate resolves the absolute date a section is exported with:
// a day offset is applied to the reference date, an absolute date is kept,
// and a section with only a time falls on the reference date.
func (c *TemporalConverter) SectionDate(sc *domain.Section) string {
	switch {
	case sc.Day != nil:
		return c.reference.AddDate(0, 0, *sc.Day).Format(isoDate)
	case sc.Date != "":
		return sc.Date
	case sc.Time != "":
		return c.reference.Format(isoDate)
	default:
		return ""
	}
}

// maxYear is the last year a section date can hold.
const maxYear = 9999

func parseDateTime(date, clock string) (time.Time, bool) {
	if clock == "" {
		t, err := time.Parse(isoDate, date)
		return t, err == nil
	}
	for _, layout := range []string{isoDateTime, isoDate + " 15:04", isoDate + " 15"} {
		if t, err := time.Parse(layout, date+" "+clock); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// floorDiv and floorMod round toward negative infinity so that carries of
// negative spans match the timeline's own arithmetic.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
