package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kianlev/gridflex/config"
	"github.com/kianlev/gridflex/core/model"
	"github.com/kianlev/gridflex/core/planner"
	"github.com/kianlev/gridflex/pkg/export"
)

var (
	planForecastMW float64
	planFormat     string
	planCfgPath    string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print a day-ahead capacity plan for the configured grid",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().Float64Var(&planForecastMW, "forecast", 0, "demand forecast in MW (0 uses the configured default)")
	planCmd.Flags().StringVar(&planFormat, "format", "text", "output format: text, json or csv")
	planCmd.Flags().StringVar(&planCfgPath, "plan-config", "", "standalone planner config file overriding the service config")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	planCfg := cfg.Planner
	if planCfgPath != "" {
		planCfg, err = planner.LoadConfig(planCfgPath)
		if err != nil {
			return fmt.Errorf("load planner config: %w", err)
		}
	}

	subs := make([]model.Substation, 0, len(cfg.Grid.Substations))
	for _, s := range cfg.Grid.Substations {
		subs = append(subs, model.Substation{ID: s.ID, CapacityMW: s.CapacityMW, Online: true})
	}
	p := planner.Planner{Config: planCfg, Substations: subs}

	forecast := planForecastMW
	if forecast == 0 {
		forecast = p.ForecastDemand(nil)
	}
	slots, err := p.Plan(time.Now().Truncate(time.Hour), forecast)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch planFormat {
	case "json":
		return export.WritePlanJSON(out, slots)
	case "csv":
		return export.WritePlanCSV(out, slots)
	case "text":
	default:
		return fmt.Errorf("unknown format %q", planFormat)
	}
	fmt.Fprintf(out, "Capacity plan, %.1f MW forecast per slot:\n", forecast)
	for _, slot := range slots {
		mark := "ok"
		if !slot.Feasible {
			mark = "INFEASIBLE"
		}
		fmt.Fprintf(out, "  %s  available %.1f MW  %s\n",
			slot.Start.Format("2006-01-02 15:04"), slot.AvailableMW, mark)
	}
	return nil
}
