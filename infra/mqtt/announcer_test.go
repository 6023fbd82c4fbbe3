package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plugsmart/chargeplan/core/model"
)

func TestConfigDefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.SetDefaults()
	assert.Equal(t, "chargeplan", cfg.ClientID)
	assert.Equal(t, "chargeplan/plans", cfg.Topic)
	assert.NoError(t, cfg.Validate())

	enabled := Config{Enabled: true}
	assert.Error(t, enabled.Validate())
	enabled.Broker = "tcp://localhost:1883"
	assert.NoError(t, enabled.Validate())
}

func TestPlanMessagePayload(t *testing.T) {
	start := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)
	plan := model.ChargingPlan{
		ID:                 "p1",
		StartTime:          start,
		EndTime:            start.Add(3*time.Hour + 30*time.Minute),
		HoursNeeded:        3.5,
		FinalBattery:       80,
		CostOptimized:      4.9,
		Savings:            4.8,
		MeetsDeparture:     true,
		NightTariffApplied: true,
	}
	payload, err := json.Marshal(newPlanMessage(plan))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(payload, &got))
	assert.Equal(t, "p1", got["plan_id"])
	assert.Equal(t, "22:00", got["start_time"])
	assert.Equal(t, "01:30", got["end_time"])
	assert.Equal(t, true, got["meets_departure"])
	assert.Equal(t, true, got["night_tariff_applied"])
}
