package planner

import (
	"math"
	"testing"
)

func TestChargeHoursExample(t *testing.T) {
	b := BatteryConfig{CapacityKWh: 40, Efficiency: 0.9}
	// 25% -> 80% at 7 kW: (0.55*40)/(7*0.9) = 3.492h.
	got := b.ChargeHours(25, 80, 7)
	want := (0.55 * 40) / (7 * 0.9)
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("hours %.4f, want %.4f", got, want)
	}
}

func TestChargeHoursZeroWhenAtTarget(t *testing.T) {
	b := DefaultBattery
	if got := b.ChargeHours(80, 80, 7); got != 0 {
		t.Fatalf("equal target: %.4f", got)
	}
	if got := b.ChargeHours(90, 80, 7); got != 0 {
		t.Fatalf("target below level: %.4f", got)
	}
}

func TestChargeHoursMonotonic(t *testing.T) {
	b := DefaultBattery
	prev := 0.0
	for _, target := range []float64{30, 50, 70, 90, 100} {
		h := b.ChargeHours(25, target, 7)
		if h < prev {
			t.Fatalf("hours not monotonic in target SOC: %.4f < %.4f", h, prev)
		}
		prev = h
	}
	slow := b.ChargeHours(25, 80, 3)
	fast := b.ChargeHours(25, 80, 22)
	if fast > slow {
		t.Fatalf("hours must not increase with charger power: %.4f > %.4f", fast, slow)
	}
}

func TestBatteryConfigValidate(t *testing.T) {
	if err := DefaultBattery.Validate(); err != nil {
		t.Fatalf("default battery invalid: %v", err)
	}
	bad := []BatteryConfig{
		{CapacityKWh: 0, Efficiency: 0.9},
		{CapacityKWh: 50, Efficiency: 0},
		{CapacityKWh: 50, Efficiency: 1.1},
	}
	for _, b := range bad {
		if err := b.Validate(); err == nil {
			t.Fatalf("config %+v accepted", b)
		}
	}
}
