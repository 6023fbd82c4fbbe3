package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/plugsmart/chargeplan/api/plan"
	"github.com/plugsmart/chargeplan/config"
	"github.com/plugsmart/chargeplan/core/model"
	"github.com/plugsmart/chargeplan/core/planner"
	"github.com/plugsmart/chargeplan/core/timeutil"
	"github.com/plugsmart/chargeplan/infra/logger"
)

var (
	planLevel  float64
	planPower  float64
	planTarget float64
	planTime   string
	planCheap  bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Compute a single charging plan and print it as JSON",
	RunE:  planOnce,
}

func init() {
	planCmd.Flags().Float64Var(&planLevel, "level", 0, "current battery level in percent")
	planCmd.Flags().Float64Var(&planPower, "power", 7, "charger power in kW")
	planCmd.Flags().Float64Var(&planTarget, "target", 80, "target state of charge in percent")
	planCmd.Flags().StringVar(&planTime, "time", "08:00", "departure time as HH:MM")
	planCmd.Flags().BoolVar(&planCheap, "cheap", false, "shift the start into cheap tariff windows")
	rootCmd.AddCommand(planCmd)
}

func planOnce(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	sched, err := cfg.Tariff.Schedule()
	if err != nil {
		return fmt.Errorf("tariff schedule: %w", err)
	}
	opts := []planner.Option{
		planner.WithStep(time.Duration(cfg.Planner.TimelineStepMinutes) * time.Minute),
		planner.WithLogger(logger.New("plan-command")),
	}
	if len(cfg.Planner.SupportedChargerKW) > 0 {
		opts = append(opts, planner.WithSupportedChargerKW(cfg.Planner.SupportedChargerKW))
	}
	pl, err := planner.New(cfg.Battery, sched, opts...)
	if err != nil {
		return fmt.Errorf("planner: %w", err)
	}

	departure, err := timeutil.ParseClock(planTime)
	if err != nil {
		return fmt.Errorf("invalid --time: %w", err)
	}
	result, err := pl.Plan(model.ChargeRequest{
		BatteryLevel:  planLevel,
		ChargerKW:     planPower,
		TargetSoC:     planTarget,
		DepartureTime: departure,
		CheapMode:     planCheap,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(plan.NewResponse(result))
}
