// Package bookingtime converts booking timestamps between the venue's fixed
// local timezone and UTC and formats them for display.
package bookingtime

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	DateLayout    = "2006-01-02"
	ClockLayout   = "15:04"
	displayDate   = "Monday, 2 January"
	displayClock  = "3:04 PM"
	displayRecord = "Monday, 2 January 2006 at 3:04 PM"
)

var (
	// ErrInvalidDate is returned when a date value has no YYYY-MM-DD component.
	ErrInvalidDate = errors.New("bookingtime: invalid date")
	// ErrInvalidClock is returned when a time value has no usable HH:MM component.
	ErrInvalidClock = errors.New("bookingtime: invalid time")

	datePattern     = regexp.MustCompile(`^\s*(\d{4}-\d{2}-\d{2})`)
	isoClockPattern = regexp.MustCompile(`T(\d{2}):(\d{2})`)
	clockPattern    = regexp.MustCompile(`(?i)^\s*(\d{1,2})(?::(\d{2}))?(?::\d{2})?\s*(am|pm)?\s*$`)
)

// Location returns the *time.Location for name, falling back to UTC when the
// name is empty or unknown.
func Location(name string) *time.Location {
	if strings.TrimSpace(name) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ExtractDate returns the YYYY-MM-DD prefix of a platform date value such as
// "2025-08-01" or "2025-08-01T12:00:00+04:00".
func ExtractDate(raw string) (string, error) {
	m := datePattern.FindStringSubmatch(raw)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	if _, err := time.Parse(DateLayout, m[1]); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return m[1], nil
}

// ExtractClock returns the local wall-clock HH:MM carried by a platform time
// value. Offset-bearing timestamps ("2025-08-01T19:00:00+04:00") are read
// literally from the string, so the hour is never shifted through another
// zone. Plain "19:00", "19:00:00" and "7 pm" forms are accepted too.
func ExtractClock(raw string) (string, error) {
	if m := isoClockPattern.FindStringSubmatch(raw); m != nil {
		return normalizeClock(m[1], m[2], "", raw)
	}
	if m := clockPattern.FindStringSubmatch(raw); m != nil {
		return normalizeClock(m[1], m[2], m[3], raw)
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidClock, raw)
}

func normalizeClock(hourStr, minuteStr, meridiem, raw string) (string, error) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidClock, raw)
	}
	minute := 0
	if minuteStr != "" {
		if minute, err = strconv.Atoi(minuteStr); err != nil {
			return "", fmt.Errorf("%w: %q", ErrInvalidClock, raw)
		}
	}
	switch strings.ToLower(meridiem) {
	case "am":
		if hour < 1 || hour > 12 {
			return "", fmt.Errorf("%w: %q", ErrInvalidClock, raw)
		}
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour < 1 || hour > 12 {
			return "", fmt.Errorf("%w: %q", ErrInvalidClock, raw)
		}
		if hour != 12 {
			hour += 12
		}
	}
	if hour > 23 || minute > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidClock, raw)
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// BuildLocalUTC interprets date (YYYY-MM-DD) and clock (HH:MM) as wall time in
// loc and returns the matching UTC instant.
func BuildLocalUTC(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("bookingtime: parse %q %q: %w", date, clock, err)
	}
	return t.UTC(), nil
}

// FormatLocal renders a UTC instant in loc as a weekday date ("Saturday, 5 July")
// and a 12-hour clock ("7:00 PM").
func FormatLocal(utc time.Time, loc *time.Location) (date, clock string) {
	if loc == nil {
		loc = time.UTC
	}
	local := utc.In(loc)
	return local.Format(displayDate), local.Format(displayClock)
}

// FormatDisplay renders a UTC instant in loc as a single human-readable
// string, e.g. "Saturday, 5 July 2025 at 7:00 PM".
func FormatDisplay(utc time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return utc.In(loc).Format(displayRecord)
}
