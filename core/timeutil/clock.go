package timeutil

import (
	"fmt"
	"time"
)

// MinutesPerDay is the length of a wall-clock day in minutes.
const MinutesPerDay = 24 * 60

// Clock is a wall-clock time of day expressed as minutes since midnight.
type Clock int

// ParseClock parses a "HH:MM" string into a Clock. Every character is
// checked: partial or trailing garbage is rejected, not truncated.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	for _, i := range [4]int{0, 1, 3, 4} {
		if s[i] < '0' || s[i] > '9' {
			return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
		}
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("invalid time %q: hour must be 0-23 and minute 0-59", s)
	}
	return Clock(h*60 + m), nil
}

// MustClock parses a "HH:MM" string and panics on error. Intended for tests
// and hardcoded defaults.
func MustClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hour returns the hour component.
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c Clock) Minute() int { return int(c) % 60 }

// String formats the clock as "HH:MM".
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MinuteOfDay returns the wall-clock minute of day for t in its own location.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// NextOccurrence returns the earliest timestamp not before now whose wall-clock
// time equals c, in now's location. A clock already past today rolls to the
// next calendar day.
func NextOccurrence(now time.Time, c Clock) time.Time {
	at := time.Date(now.Year(), now.Month(), now.Day(), c.Hour(), c.Minute(), 0, 0, now.Location())
	if at.Before(now) {
		at = at.AddDate(0, 0, 1)
	}
	return at
}
