package planner

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	corelogger "github.com/plugsmart/chargeplan/core/logger"
	"github.com/plugsmart/chargeplan/core/model"
	"github.com/plugsmart/chargeplan/core/tariff"
	"github.com/plugsmart/chargeplan/core/timeutil"
)

// DefaultStep is the timeline resolution when none is configured.
const DefaultStep = 15 * time.Minute

// Planner computes charging plans against a time-of-use tariff. It is pure
// and stateless: concurrent Plan calls need no coordination.
type Planner struct {
	battery     BatteryConfig
	tariff      *tariff.Schedule
	step        time.Duration
	supportedKW []float64
	now         func() time.Time
	log         corelogger.Logger
}

// Option customises a Planner.
type Option func(*Planner)

// WithStep sets the timeline sample resolution.
func WithStep(step time.Duration) Option {
	return func(p *Planner) { p.step = step }
}

// WithSupportedChargerKW restricts the accepted charger ratings.
func WithSupportedChargerKW(kw []float64) Option {
	return func(p *Planner) { p.supportedKW = kw }
}

// WithNow overrides the wall clock, used by tests and the replay tooling.
func WithNow(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// WithLogger sets the planner logger.
func WithLogger(log corelogger.Logger) Option {
	return func(p *Planner) { p.log = log }
}

// New builds a Planner. The battery configuration is validated here so that
// a misconfigured service fails at startup rather than per request.
func New(battery BatteryConfig, sched *tariff.Schedule, opts ...Option) (*Planner, error) {
	if err := battery.Validate(); err != nil {
		return nil, err
	}
	if sched == nil {
		return nil, fmt.Errorf("%w: tariff schedule is required", model.ErrInvalidConfig)
	}
	p := &Planner{
		battery:     battery,
		tariff:      sched,
		step:        DefaultStep,
		supportedKW: model.DefaultSupportedChargerKW,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.step <= 0 {
		return nil, fmt.Errorf("%w: timeline step must be positive", model.ErrInvalidConfig)
	}
	return p, nil
}

// Plan computes a charging plan for the request. Infeasible schedules are not
// errors: the plan is returned with MeetsDeparture=false and an advisory Info.
func (p *Planner) Plan(req model.ChargeRequest) (model.ChargingPlan, error) {
	if err := req.Validate(p.supportedKW); err != nil {
		return model.ChargingPlan{}, err
	}

	now := p.now().Truncate(time.Minute)
	departure := timeutil.NextOccurrence(now, req.DepartureTime)
	hours := p.battery.ChargeHours(req.BatteryLevel, req.TargetSoC, req.ChargerKW)

	plan := model.ChargingPlan{
		ID:          uuid.NewString(),
		HoursNeeded: hours,
		Departure:   departure,
	}

	if hours == 0 {
		plan.FinalBattery = req.BatteryLevel
		plan.StartTime = now
		plan.EndTime = now
		plan.MeetsDeparture = true
		plan.NightTariffApplied = p.tariff.Discounted(now)
		plan.Info = "already at or above target state of charge"
		plan.Timeline = Timeline{Start: now, End: now, FromSoC: req.BatteryLevel, ToSoC: req.BatteryLevel, Step: p.step}.Points()
		return plan, nil
	}

	dur := time.Duration(hours * float64(time.Hour))
	costNow := p.tariff.SessionCost(now, now.Add(dur), req.ChargerKW)

	start := now
	costOpt := costNow
	switch {
	case !req.CheapMode:
		// Immediate start, no shifting.
	case now.Add(dur).After(departure):
		// No feasible start exists: charge immediately and flag the miss.
		plan.Info = "cannot reach target state of charge before departure"
	default:
		start, costOpt = p.bestStart(now, departure, dur, req.ChargerKW)
	}
	end := start.Add(dur)

	plan.FinalBattery = req.TargetSoC
	plan.StartTime = start
	plan.EndTime = end
	plan.CostNow = costNow
	plan.CostOptimized = costOpt
	plan.Savings = costNow - costOpt
	if plan.Savings < 0 {
		plan.Savings = 0
	}
	plan.MeetsDeparture = !end.After(departure)
	plan.NightTariffApplied = p.tariff.Overlaps(start, end)
	if !plan.MeetsDeparture && plan.Info == "" {
		plan.Info = "cannot reach target state of charge before departure"
	}
	plan.Timeline = Timeline{Start: start, End: end, FromSoC: req.BatteryLevel, ToSoC: req.TargetSoC, Step: p.step}.Points()

	if p.log != nil {
		p.log.Debugw("plan computed", map[string]any{
			"plan_id":  plan.ID,
			"hours":    plan.HoursNeeded,
			"start":    plan.StartTime,
			"cost_now": plan.CostNow,
			"cost_opt": plan.CostOptimized,
			"feasible": plan.MeetsDeparture,
			"cheap":    req.CheapMode,
		})
	}
	return plan, nil
}

// bestStart minimises the session cost over the feasible range
// [now, departure-dur]. Because the tariff is piecewise constant, the optimum
// lies where either the session start or the session end crosses a rate
// boundary, so evaluating the range endpoints plus those alignments is exact.
// Ties resolve to the earliest candidate.
func (p *Planner) bestStart(now, departure time.Time, dur time.Duration, chargerKW float64) (time.Time, float64) {
	latest := departure.Add(-dur)
	candidates := []time.Time{now, latest}
	for _, b := range p.tariff.RateBoundaries(now, departure) {
		if !b.Before(now) && !b.After(latest) {
			candidates = append(candidates, b)
		}
		if aligned := b.Add(-dur); !aligned.Before(now) && !aligned.After(latest) {
			candidates = append(candidates, aligned)
		}
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Before(candidates[j]) })

	best := candidates[0]
	bestCost := p.tariff.SessionCost(best, best.Add(dur), chargerKW)
	for _, c := range candidates[1:] {
		cost := p.tariff.SessionCost(c, c.Add(dur), chargerKW)
		if cost < bestCost-1e-9 {
			best, bestCost = c, cost
		}
	}
	return best, bestCost
}
