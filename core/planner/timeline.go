package planner

import (
	"time"

	"github.com/plugsmart/chargeplan/core/model"
)

// Timeline is a finite, restartable sequence of evenly spaced SOC samples
// over a charging session. Samples are derived on demand: At is pure and may
// be called in any order, any number of times.
//
// SOC is linear in time, reflecting the constant-power charge model. The
// first and last samples are the exact session endpoints regardless of step
// rounding.
type Timeline struct {
	Start   time.Time
	End     time.Time
	FromSoC float64
	ToSoC   float64
	Step    time.Duration
}

// Len returns the number of samples. A zero-duration session has exactly one.
func (tl Timeline) Len() int {
	dur := tl.End.Sub(tl.Start)
	if dur <= 0 {
		return 1
	}
	step := tl.step()
	n := int(dur / step)
	if time.Duration(n)*step < dur {
		n++
	}
	return n + 1
}

// At returns the i-th sample. The final sample is clamped to the session end.
func (tl Timeline) At(i int) model.TimelinePoint {
	dur := tl.End.Sub(tl.Start)
	if dur <= 0 {
		return model.TimelinePoint{Offset: 0, At: tl.Start, SoC: tl.FromSoC}
	}
	offset := time.Duration(i) * tl.step()
	if offset > dur {
		offset = dur
	}
	frac := float64(offset) / float64(dur)
	return model.TimelinePoint{
		Offset: offset,
		At:     tl.Start.Add(offset),
		SoC:    tl.FromSoC + (tl.ToSoC-tl.FromSoC)*frac,
	}
}

// Points materialises the full sequence.
func (tl Timeline) Points() []model.TimelinePoint {
	n := tl.Len()
	points := make([]model.TimelinePoint, n)
	for i := 0; i < n; i++ {
		points[i] = tl.At(i)
	}
	return points
}

func (tl Timeline) step() time.Duration {
	if tl.Step <= 0 {
		return 15 * time.Minute
	}
	return tl.Step
}
