/*
main.go - Command-line entry point

PURPOSE:
  Runs the attendance engine either as an HTTP server or as a one-shot
  reconciliation over a workbook.

COMMANDS:
  serve     HTTP API with run history and the retention sweeper
  compute   Reconcile a workbook, compare with HR figures, write a report

CONFIGURATION:
  Settings come from .env and the environment (see config/config.go).
  Flags override them.

EXAMPLES:
  reconciler serve --port 3000 --db ./data/runs.db
  reconciler compute --workbook march.xlsx --reference hr.csv --base-holidays 2 --out report.xlsx

SEE ALSO:
  - api/server.go: Router configuration
  - api/compute.go: The reconciliation pipeline both commands use
*/
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/config"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/payroll"
)

var policyPreset string

var rootCmd = &cobra.Command{
	Use:           "reconciler",
	Short:         "Attendance reconciliation and payroll rules",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&policyPreset, "preset", "", "Named policy preset instead of the configured policy")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// setup loads configuration, installs the JSON logger and builds the engine.
func setup() (*config.Config, *slog.Logger, *payroll.Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	logger := api.NewLogger(os.Stdout, cfg.SlogLevel())
	slog.SetDefault(logger)

	policy, err := cfg.PayrollPolicy()
	if err != nil {
		return nil, nil, nil, err
	}
	if policyPreset != "" {
		pf := factory.NewPolicyFactory()
		doc := pf.Preset(policyPreset)
		if doc == "" {
			return nil, nil, nil, fmt.Errorf("unknown preset %q (have %v)", policyPreset, pf.PresetNames())
		}
		p, err := pf.ParsePolicy(doc)
		if err != nil {
			return nil, nil, nil, err
		}
		policy = *p
	}

	engine, err := payroll.NewEngine(policy)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, engine, nil
}
