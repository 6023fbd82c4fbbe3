package model

import "time"

// TimelinePoint is one sample of the projected state of charge.
type TimelinePoint struct {
	Offset time.Duration // elapsed time since the session start
	At     time.Time     // absolute sample time
	SoC    float64       // projected state of charge in percent
}

// ChargingPlan is the immutable result of planning one charging session.
type ChargingPlan struct {
	ID           string    // correlation id, unique per computed plan
	HoursNeeded  float64   // charging duration in hours
	FinalBattery float64   // state of charge reached at the end of the session
	StartTime    time.Time // session start
	EndTime      time.Time // session end, StartTime + HoursNeeded
	Departure    time.Time // resolved absolute departure deadline
	Timeline     []TimelinePoint

	CostNow       float64 // session cost when starting immediately
	CostOptimized float64 // session cost at the chosen start
	Savings       float64 // CostNow - CostOptimized, never negative

	MeetsDeparture     bool   // session ends no later than the departure deadline
	NightTariffApplied bool   // session overlaps at least one discount window
	Info               string // optional advisory for the caller
}
