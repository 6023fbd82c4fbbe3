package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	corelogger "github.com/plugsmart/chargeplan/core/logger"
	"github.com/plugsmart/chargeplan/core/metrics"
	"github.com/plugsmart/chargeplan/core/model"
	"github.com/plugsmart/chargeplan/core/planner"
	"github.com/plugsmart/chargeplan/core/timeutil"
)

// DefaultTargetSoC is applied when the request omits target_soc.
const DefaultTargetSoC = 80

// Announcer publishes computed plans to external consumers.
type Announcer interface {
	Announce(plan model.ChargingPlan) error
}

// planRequest is the JSON body of POST /api/plan.
type planRequest struct {
	BatteryLevel float64  `json:"battery_level"`
	ChargerPower float64  `json:"charger_power"`
	TargetTime   string   `json:"target_time"`
	CheapMode    bool     `json:"cheap_mode"`
	TargetSoC    *float64 `json:"target_soc"`
}

// TimelinePoint is the wire form of one SOC sample.
type TimelinePoint struct {
	RelTime string  `json:"rel_time"`
	AbsTime string  `json:"abs_time"`
	SoC     float64 `json:"soc"`
}

// Response is the wire form of a computed plan, shared by the HTTP API and
// the one-shot CLI command.
type Response struct {
	PlanID             string          `json:"plan_id"`
	Hours              float64         `json:"hours"`
	FinalBattery       float64         `json:"final_battery"`
	StartTime          string          `json:"start_time"`
	EndTime            string          `json:"end_time"`
	Timeline           []TimelinePoint `json:"timeline"`
	CostNow            float64         `json:"cost_now"`
	CostOptimized      float64         `json:"cost_optimized"`
	Savings            float64         `json:"savings"`
	MeetsDeparture     bool            `json:"meets_departure"`
	NightTariffApplied bool            `json:"night_tariff_applied"`
	Info               string          `json:"info,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves plan computation requests.
type Handler struct {
	planner   *planner.Planner
	sink      metrics.MetricsSink
	announcer Announcer
	log       corelogger.Logger
}

// NewHandler builds the plan handler. The announcer may be nil.
func NewHandler(p *planner.Planner, sink metrics.MetricsSink, announcer Announcer, log corelogger.Logger) *Handler {
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Handler{planner: p, sink: sink, announcer: announcer, log: log}
}

// ServeHTTP handles POST /api/plan.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed", "method")
		return
	}
	var body planRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err), "decode")
		return
	}
	departure, err := timeutil.ParseClock(body.TargetTime)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid target_time: %v", err), "target_time")
		return
	}
	target := float64(DefaultTargetSoC)
	if body.TargetSoC != nil {
		target = *body.TargetSoC
	}
	req := model.ChargeRequest{
		BatteryLevel:  body.BatteryLevel,
		ChargerKW:     body.ChargerPower,
		TargetSoC:     target,
		DepartureTime: departure,
		CheapMode:     body.CheapMode,
	}

	started := time.Now()
	plan, err := h.planner.Plan(req)
	if err != nil {
		if errors.Is(err, model.ErrInvalidParameter) {
			h.writeError(w, http.StatusBadRequest, err.Error(), "validation")
			return
		}
		if h.log != nil {
			h.log.Errorf("plan failed: %v", err)
		}
		h.writeError(w, http.StatusInternalServerError, "internal error", "internal")
		return
	}

	if err := h.sink.RecordPlan(metrics.PlanEvent{
		PlanID:         plan.ID,
		CheapMode:      req.CheapMode,
		MeetsDeparture: plan.MeetsDeparture,
		NightTariff:    plan.NightTariffApplied,
		HoursNeeded:    plan.HoursNeeded,
		CostNow:        plan.CostNow,
		CostOptimized:  plan.CostOptimized,
		Savings:        plan.Savings,
		Elapsed:        time.Since(started),
		Time:           time.Now(),
	}); err != nil && h.log != nil {
		h.log.Warnf("record plan metrics: %v", err)
	}
	if h.announcer != nil {
		if err := h.announcer.Announce(plan); err != nil && h.log != nil {
			h.log.Warnf("announce plan %s: %v", plan.ID, err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(NewResponse(plan)); err != nil && h.log != nil {
		h.log.Errorf("encode response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, msg, reason string) {
	if rec, ok := h.sink.(metrics.RequestErrorRecorder); ok {
		if err := rec.RecordRequestError(reason); err != nil && h.log != nil {
			h.log.Warnf("record request error: %v", err)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

// NewResponse converts a plan into its wire form: clock times as "HH:MM",
// offsets as "+X.XXh", SOC rounded to a tenth and money to a cent.
func NewResponse(plan model.ChargingPlan) Response {
	timeline := make([]TimelinePoint, 0, len(plan.Timeline))
	for _, pt := range plan.Timeline {
		timeline = append(timeline, TimelinePoint{
			RelTime: fmt.Sprintf("+%.2fh", pt.Offset.Hours()),
			AbsTime: pt.At.Format("15:04"),
			SoC:     round1(pt.SoC),
		})
	}
	return Response{
		PlanID:             plan.ID,
		Hours:              round2(plan.HoursNeeded),
		FinalBattery:       round1(plan.FinalBattery),
		StartTime:          plan.StartTime.Format("15:04"),
		EndTime:            plan.EndTime.Format("15:04"),
		Timeline:           timeline,
		CostNow:            round2(plan.CostNow),
		CostOptimized:      round2(plan.CostOptimized),
		Savings:            round2(plan.Savings),
		MeetsDeparture:     plan.MeetsDeparture,
		NightTariffApplied: plan.NightTariffApplied,
		Info:               plan.Info,
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }

// HealthHandler reports service liveness.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
}
