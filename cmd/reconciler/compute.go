package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/payroll"
	"github.com/warp/attendance-engine/report"
	"github.com/warp/attendance-engine/sheets"
	"github.com/warp/attendance-engine/store/sqlite"
)

var (
	computeWorkbook     string
	computeReference    string
	computeBaseHolidays int
	computeOut          string
	computeLabel        string
	computeSave         bool
	computeTemplate     string
)

var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "Reconcile a workbook and write the comparison report",
	Long: `Reconcile one month of attendance from a long-format workbook.

The workbook needs an Attendance sheet and may carry the override sheets
(PaidLeave, CustomShift, OvertimeGrant, FullNight, Maintenance, Holidays,
Punches). HR figures are read from a CSV with the columns
emp_code, emp_name, present_days, late_hours, ot_hours.

The report format follows the --out extension: .csv or .xlsx.`,
	Example: `
  reconciler compute --workbook march.xlsx --base-holidays 2
  reconciler compute --workbook march.xlsx --reference hr.csv --out report.xlsx --save
  reconciler compute --workbook march.xlsx --reference-template hr.csv
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, engine, err := setup()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		wb, err := sheets.ReadFile(computeWorkbook)
		if err != nil {
			return err
		}
		logger.Info("workbook imported",
			slog.String("file", computeWorkbook),
			slog.Int("employees", len(wb.Roster)),
			slog.Any("sheets", wb.Sheets))

		if computeTemplate != "" {
			if err := writeReferenceTemplate(computeTemplate, wb.Roster); err != nil {
				return err
			}
			logger.Info("reference template written", slog.String("file", computeTemplate))
		}

		var refs []payroll.Reference
		if computeReference != "" {
			if refs, err = readReferenceFile(computeReference); err != nil {
				return err
			}
		}

		label := computeLabel
		if label == "" {
			label = filepath.Base(computeWorkbook)
		}
		run, err := api.Compute(ctx, engine, api.ComputeInput{
			Label:        label,
			Roster:       wb.Roster,
			Overrides:    wb.Overrides,
			BaseHolidays: computeBaseHolidays,
			References:   refs,
		})
		if err != nil {
			return err
		}
		run.ID = uuid.NewString()
		run.CreatedAt = time.Now().UTC()

		rows := report.Compare(run.Results, run.References)
		logSummary(logger, run, report.Summarize(rows))

		if computeSave {
			store, err := sqlite.New(cfg.Store.DBPath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer store.Close()
			if err := store.SaveRun(ctx, run); err != nil {
				return err
			}
			logger.Info("run saved", slog.String("run_id", run.ID), slog.String("db", cfg.Store.DBPath))
		}

		if computeOut == "" {
			return nil
		}
		return writeReport(computeOut, rows)
	},
}

func init() {
	rootCmd.AddCommand(computeCmd)

	computeCmd.Flags().StringVar(&computeWorkbook, "workbook", "", "Attendance workbook (.xlsx)")
	computeCmd.Flags().StringVar(&computeReference, "reference", "", "HR reference figures (.csv)")
	computeCmd.Flags().IntVar(&computeBaseHolidays, "base-holidays", 0, "Holidays credited when no holiday selection is given")
	computeCmd.Flags().StringVar(&computeOut, "out", "", "Report path, .csv or .xlsx")
	computeCmd.Flags().StringVar(&computeLabel, "label", "", "Run label (defaults to the workbook file name)")
	computeCmd.Flags().BoolVar(&computeSave, "save", false, "Store the run in DB_PATH")
	computeCmd.Flags().StringVar(&computeTemplate, "reference-template", "", "Write a blank HR reference CSV for the roster")
	computeCmd.MarkFlagRequired("workbook")
}

func readReferenceFile(path string) ([]payroll.Reference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open reference file: %w", err)
	}
	defer f.Close()
	return report.ReadReferences(f)
}

// writeReferenceTemplate lists every employee with blank HR figures.
func writeReferenceTemplate(path string, roster []attendance.EmployeeRecord) error {
	refs := make([]payroll.Reference, 0, len(roster))
	for _, emp := range roster {
		refs = append(refs, payroll.Reference{EmpCode: emp.EmpCode, EmpName: emp.EmpName})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create reference template: %w", err)
	}
	defer f.Close()
	if err := report.WriteReferences(f, refs); err != nil {
		return err
	}
	return f.Close()
}

func writeReport(path string, rows []report.Row) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".xlsx" {
		return fmt.Errorf("unsupported report format %q, use .csv or .xlsx", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	if ext == ".csv" {
		err = report.WriteCSV(f, rows)
	} else {
		err = report.WriteXLSX(f, rows)
	}
	if err != nil {
		return err
	}
	return f.Close()
}

func logSummary(logger *slog.Logger, run payroll.Run, summary report.Summary) {
	sum := run.Summary()
	logger.Info("run computed",
		slog.String("run_id", run.ID),
		slog.Int("employees", sum.Employees),
		slog.String("grand_total", generic.Amount{Value: sum.GrandTotalDays, Unit: generic.UnitDays}.String()),
		slog.String("overtime", generic.NewAmountFromInt(sum.OvertimeMinutes, generic.UnitMinutes).String()))

	for _, ms := range summary.Metrics {
		attrs := []any{slog.String("metric", string(ms.Metric))}
		for _, c := range generic.Categories {
			attrs = append(attrs, slog.Int(string(c), ms.Counts[c]))
		}
		logger.Info("comparison", attrs...)
	}
}
