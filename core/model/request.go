package model

import (
	"fmt"
	"math"

	"github.com/plugsmart/chargeplan/core/timeutil"
)

// ChargeRequest describes a single charging session to plan.
type ChargeRequest struct {
	BatteryLevel  float64        // current state of charge in percent, 0-100
	ChargerKW     float64        // charger power rating in kW
	TargetSoC     float64        // desired state of charge in percent
	DepartureTime timeutil.Clock // wall-clock departure time
	CheapMode     bool           // shift the start to minimise tariff exposure
}

// DefaultSupportedChargerKW lists the standard charger ratings accepted when
// no explicit set is configured.
var DefaultSupportedChargerKW = []float64{3, 7, 11, 22}

// Validate checks the request against the given set of supported charger
// ratings. An empty set falls back to DefaultSupportedChargerKW.
// A target below the current level is not an error: the planner returns a
// zero-duration plan for it.
func (r ChargeRequest) Validate(supportedKW []float64) error {
	if r.BatteryLevel < 0 || r.BatteryLevel > 100 {
		return fmt.Errorf("%w: battery_level %.1f out of range [0,100]", ErrInvalidParameter, r.BatteryLevel)
	}
	if r.TargetSoC < 0 || r.TargetSoC > 100 {
		return fmt.Errorf("%w: target_soc %.1f out of range [0,100]", ErrInvalidParameter, r.TargetSoC)
	}
	if r.ChargerKW <= 0 {
		return fmt.Errorf("%w: charger_power must be positive, got %.1f", ErrInvalidParameter, r.ChargerKW)
	}
	if len(supportedKW) == 0 {
		supportedKW = DefaultSupportedChargerKW
	}
	for _, kw := range supportedKW {
		if math.Abs(kw-r.ChargerKW) < 1e-9 {
			return nil
		}
	}
	return fmt.Errorf("%w: unsupported charger_power %.1f kW", ErrInvalidParameter, r.ChargerKW)
}
