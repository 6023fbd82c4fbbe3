package tariff

import (
	"fmt"
	"sort"
	"time"

	"github.com/plugsmart/chargeplan/core/model"
	"github.com/plugsmart/chargeplan/core/timeutil"
)

// Window is a recurring daily interval with a discounted per-kWh rate.
// End is exclusive and may be earlier than Start, in which case the window
// crosses midnight (e.g. 22:00-02:00).
type Window struct {
	Start timeutil.Clock
	End   timeutil.Clock
	Rate  float64
}

// length returns the window duration in minutes, always in (0, MinutesPerDay).
func (w Window) length() int {
	return (int(w.End) - int(w.Start) + timeutil.MinutesPerDay) % timeutil.MinutesPerDay
}

// contains reports whether the given minute of day falls inside the window.
// The check is done with modular arithmetic so cross-midnight windows behave
// the same as regular ones.
func (w Window) contains(minute int) bool {
	offset := (minute - int(w.Start) + timeutil.MinutesPerDay) % timeutil.MinutesPerDay
	return offset < w.length()
}

// Schedule holds a validated time-of-use tariff: a standard rate, a set of
// non-overlapping discount windows and an optional weekend rate applied all
// day on Saturdays and Sundays.
type Schedule struct {
	standardRate float64
	weekendRate  float64 // 0 disables the weekend discount
	windows      []Window
}

// Option customises a Schedule.
type Option func(*Schedule)

// WithWeekendRate applies the given discounted rate for the whole day on
// Saturdays and Sundays.
func WithWeekendRate(rate float64) Option {
	return func(s *Schedule) { s.weekendRate = rate }
}

// New validates the windows and builds a Schedule. Zero-length windows,
// non-positive rates and overlapping windows are rejected.
func New(standardRate float64, windows []Window, opts ...Option) (*Schedule, error) {
	if standardRate <= 0 {
		return nil, fmt.Errorf("%w: standard rate must be positive, got %.3f", model.ErrInvalidConfig, standardRate)
	}
	for _, w := range windows {
		if w.length() == 0 {
			return nil, fmt.Errorf("%w: zero-length tariff window %s-%s", model.ErrInvalidConfig, w.Start, w.End)
		}
		if w.Rate <= 0 {
			return nil, fmt.Errorf("%w: tariff window %s-%s rate must be positive, got %.3f",
				model.ErrInvalidConfig, w.Start, w.End, w.Rate)
		}
	}
	sorted := make([]Window, len(windows))
	copy(sorted, windows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	for i, w := range sorted {
		next := sorted[(i+1)%len(sorted)]
		if len(sorted) > 1 && w.contains(int(next.Start)) {
			return nil, fmt.Errorf("%w: tariff windows %s-%s and %s-%s overlap",
				model.ErrInvalidConfig, w.Start, w.End, next.Start, next.End)
		}
	}
	s := &Schedule{standardRate: standardRate, windows: sorted}
	for _, opt := range opts {
		opt(s)
	}
	if s.weekendRate < 0 {
		return nil, fmt.Errorf("%w: weekend rate must not be negative, got %.3f", model.ErrInvalidConfig, s.weekendRate)
	}
	return s, nil
}

// StandardRate returns the per-kWh rate outside any discount window.
func (s *Schedule) StandardRate() float64 { return s.standardRate }

// RateAt returns the per-kWh rate in effect at t.
func (s *Schedule) RateAt(t time.Time) float64 {
	rate, _ := s.rateAt(t)
	return rate
}

// Discounted reports whether t falls inside a discount window or a discounted
// weekend day.
func (s *Schedule) Discounted(t time.Time) bool {
	_, disc := s.rateAt(t)
	return disc
}

func (s *Schedule) rateAt(t time.Time) (float64, bool) {
	if s.weekendRate > 0 {
		if wd := t.Weekday(); wd == time.Saturday || wd == time.Sunday {
			return s.weekendRate, true
		}
	}
	minute := timeutil.MinuteOfDay(t)
	for _, w := range s.windows {
		if w.contains(minute) {
			return w.Rate, true
		}
	}
	return s.standardRate, false
}

// Overlaps reports whether any portion of [start, end] is discounted. A
// zero-length interval degenerates to a point check.
func (s *Schedule) Overlaps(start, end time.Time) bool {
	if !start.Before(end) {
		return s.Discounted(start)
	}
	for _, seg := range s.segments(start, end) {
		if seg.discounted {
			return true
		}
	}
	return false
}

// SessionCost integrates the tariff over [start, end] at a constant power
// draw and returns the total cost.
func (s *Schedule) SessionCost(start, end time.Time, powerKW float64) float64 {
	cost := 0.0
	for _, seg := range s.segments(start, end) {
		cost += seg.rate * powerKW * seg.to.Sub(seg.from).Hours()
	}
	return cost
}

// RateBoundaries returns every rate breakpoint strictly inside (from, to) in
// ascending order. The planner uses these as candidate session starts.
func (s *Schedule) RateBoundaries(from, to time.Time) []time.Time {
	var bounds []time.Time
	t := from
	for {
		next := s.nextBoundaryAfter(t)
		if !next.Before(to) {
			return bounds
		}
		bounds = append(bounds, next)
		t = next
	}
}

type segment struct {
	from, to   time.Time
	rate       float64
	discounted bool
}

// segments splits [start, end] at every rate breakpoint. Breakpoints are the
// window boundaries plus midnight, which is where the weekend rate toggles.
func (s *Schedule) segments(start, end time.Time) []segment {
	var segs []segment
	t := start
	for t.Before(end) {
		next := s.nextBoundaryAfter(t)
		if next.After(end) {
			next = end
		}
		rate, disc := s.rateAt(t)
		segs = append(segs, segment{from: t, to: next, rate: rate, discounted: disc})
		t = next
	}
	return segs
}

func (s *Schedule) nextBoundaryAfter(t time.Time) time.Time {
	next := timeutil.NextOccurrence(t, 0) // midnight
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	for _, w := range s.windows {
		for _, c := range [2]timeutil.Clock{w.Start, w.End} {
			occ := timeutil.NextOccurrence(t, c)
			if !occ.After(t) {
				occ = occ.AddDate(0, 0, 1)
			}
			if occ.Before(next) {
				next = occ
			}
		}
	}
	return next
}
