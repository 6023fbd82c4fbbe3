package planner

import (
	"fmt"

	"github.com/plugsmart/chargeplan/core/model"
)

// BatteryConfig holds the fixed charge model parameters: usable battery
// capacity and charger efficiency.
type BatteryConfig struct {
	CapacityKWh float64 `json:"capacity_kwh"`
	Efficiency  float64 `json:"efficiency"`
}

// DefaultBattery matches a mid-size EV pack charged through a typical AC
// onboard charger.
var DefaultBattery = BatteryConfig{CapacityKWh: 50, Efficiency: 0.9}

// Validate checks the charge model parameters.
func (c BatteryConfig) Validate() error {
	if c.CapacityKWh <= 0 {
		return fmt.Errorf("%w: battery capacity must be positive, got %.1f", model.ErrInvalidConfig, c.CapacityKWh)
	}
	if c.Efficiency <= 0 || c.Efficiency > 1 {
		return fmt.Errorf("%w: charger efficiency must be in (0,1], got %.2f", model.ErrInvalidConfig, c.Efficiency)
	}
	return nil
}

// ChargeHours returns the time in hours needed to charge from batteryLevel to
// targetSoC at the given charger rating, assuming a constant-power charge.
// A target at or below the current level needs no charging.
func (c BatteryConfig) ChargeHours(batteryLevel, targetSoC, chargerKW float64) float64 {
	if targetSoC <= batteryLevel {
		return 0
	}
	energyKWh := (targetSoC - batteryLevel) / 100 * c.CapacityKWh
	return energyKWh / (chargerKW * c.Efficiency)
}
