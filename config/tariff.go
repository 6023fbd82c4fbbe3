package config

import (
	"github.com/plugsmart/chargeplan/core/tariff"
	"github.com/plugsmart/chargeplan/core/timeutil"
)

// TariffWindowConfig is one recurring discount window in "HH:MM" notation.
// End may be earlier than Start for windows crossing midnight.
type TariffWindowConfig struct {
	Start string  `json:"start"`
	End   string  `json:"end"`
	Rate  float64 `json:"rate"`
}

// TariffConfig defines the time-of-use tariff.
type TariffConfig struct {
	StandardRate float64              `json:"standard_rate"`
	WeekendRate  float64              `json:"weekend_rate"`
	Windows      []TariffWindowConfig `json:"windows"`
}

// SetDefaults applies the default night tariff: 22:00-02:00 at half the
// standard rate.
func (c *TariffConfig) SetDefaults() {
	if c.StandardRate == 0 {
		c.StandardRate = 0.40
	}
	if len(c.Windows) == 0 {
		c.Windows = []TariffWindowConfig{{Start: "22:00", End: "02:00", Rate: 0.20}}
	}
}

// Validate builds the schedule once to surface configuration errors at startup.
func (c TariffConfig) Validate() error {
	_, err := c.Schedule()
	return err
}

// Schedule parses the window clocks and builds a validated tariff schedule.
func (c TariffConfig) Schedule() (*tariff.Schedule, error) {
	windows := make([]tariff.Window, 0, len(c.Windows))
	for _, w := range c.Windows {
		start, err := timeutil.ParseClock(w.Start)
		if err != nil {
			return nil, err
		}
		end, err := timeutil.ParseClock(w.End)
		if err != nil {
			return nil, err
		}
		windows = append(windows, tariff.Window{Start: start, End: end, Rate: w.Rate})
	}
	var opts []tariff.Option
	if c.WeekendRate > 0 {
		opts = append(opts, tariff.WithWeekendRate(c.WeekendRate))
	}
	return tariff.New(c.StandardRate, windows, opts...)
}
