package seating

import (
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout    = "2006-01-02"
	minutesPerDay = 24 * 60
	DefaultBlock  = 120
)

// dateLayouts are the accepted reservation_date forms. The store itself writes the
// last one.
var dateLayouts = []string{
	dateLayout,
	time.RFC3339,
	"2006-01-02 15:04:05.000Z",
	"2006-01-02 15:04:05Z",
}

// ParseDate accepts YYYY-MM-DD, RFC3339 or "YYYY-MM-DD HH:MM:SS.sssZ" and returns the
// calendar day as written, without shifting zones.
func ParseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return s[:len(dateLayout)], nil
		}
	}
	return "", fmt.Errorf("invalid date %q", s)
}

// ParseClock converts H:MM, HH:MM or HH:MM:SS into minutes since midnight. Seconds
// are validated and dropped.
func ParseClock(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	h, ok := clockField(parts[0], 1, 23)
	if !ok {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, ok := clockField(parts[1], 2, 59)
	if !ok {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if len(parts) == 3 {
		if _, ok := clockField(parts[2], 2, 59); !ok {
			return 0, fmt.Errorf("invalid second in %q", s)
		}
	}
	return h*60 + m, nil
}

// clockField parses an all-digit field of minLen to 2 characters not above max.
func clockField(p string, minLen, max int) (int, bool) {
	if len(p) < minLen || len(p) > 2 {
		return 0, false
	}
	n := 0
	for _, r := range p {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, n <= max
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	minutes = ((minutes % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeClock canonicalizes a time-of-day string to HH:MM.
func NormalizeClock(s string) (string, error) {
	m, err := ParseClock(s)
	if err != nil {
		return "", err
	}
	return FormatClock(m), nil
}

// Interval is a half-open window [Start, End) in minutes since midnight.
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Window builds [start, start+block), substituting DefaultBlock for non-positive blocks.
func Window(start, block int) Interval {
	if block <= 0 {
		block = DefaultBlock
	}
	return Interval{Start: start, End: start + block}
}

// Overlaps reports whether two half-open intervals intersect.
func (i Interval) Overlaps(o Interval) bool {
	return i.Start < o.End && o.Start < i.End
}

// Contains reports whether minute falls inside the closed range [Start, End].
func (i Interval) Contains(minute int) bool {
	return minute >= i.Start && minute <= i.End
}

// MinuteOfDay returns the minutes since midnight of t in its own location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
