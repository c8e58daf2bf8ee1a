package utils

import (
	"time"
)

// ET is the U.S. Eastern time location Treasury yields are quoted in.
var ET *time.Location

func init() {
	var err error
	ET, err = time.LoadLocation("America/New_York")
	if err != nil {
		// Fallback: fixed EST if tz database is not available
		ET = time.FixedZone("EST", -5*60*60)
	}
}

// DateLayout is the ISO date layout used on the wire and on the page.
const DateLayout = "2006-01-02"

// NowET returns the current time in U.S. Eastern time.
func NowET() time.Time {
	return time.Now().In(ET)
}

// FormatDate formats t as YYYY-MM-DD without converting its location.
// Panel dates are UTC midnights, so converting would shift the day.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate parses a YYYY-MM-DD string as a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// FormatDateTimeET formats t as "2006-01-02 15:04 MST" in Eastern time.
func FormatDateTimeET(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(ET).Format("2006-01-02 15:04 MST")
}

// IsBusinessDay reports whether t falls on a weekday. Bond market holidays
// are not modelled; the panel simply has no row for them.
func IsBusinessDay(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// PrevBusinessDay returns the closest weekday strictly before t.
func PrevBusinessDay(t time.Time) time.Time {
	prev := t.AddDate(0, 0, -1)
	for !IsBusinessDay(prev) {
		prev = prev.AddDate(0, 0, -1)
	}
	return prev
}

// BusinessDaysBetween counts weekdays in [start, end).
func BusinessDaysBetween(start, end time.Time) int {
	count := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if IsBusinessDay(d) {
			count++
		}
	}
	return count
}

// FormatAge renders how long ago t was, relative to now, at minute
// resolution. e.g., "just now", "7m ago", "3h ago".
func FormatAge(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmtInt(int(d/time.Minute)) + "m ago"
	case d < 48*time.Hour:
		return fmtInt(int(d/time.Hour)) + "h ago"
	default:
		return fmtInt(int(d/(24*time.Hour))) + "d ago"
	}
}
