/*
handlers.go - HTTP API handlers for the attendance engine

PURPOSE:
  Exposes reconciliation over REST. Handles HTTP request/response and JSON
  serialization, and delegates to the attendance, payroll and report
  packages.

ENDPOINTS:
  Policy:
    GET    /api/policy                   Effective policy and preset names

  Runs:
    POST   /api/runs                     Compute and store a run
    GET    /api/runs                     List run summaries, newest first
    GET    /api/runs/{id}                Run with comparison
    GET    /api/runs/{id}/report.csv     Comparison as CSV
    GET    /api/runs/{id}/report.xlsx    Comparison as a workbook

  Imports:
    POST   /api/imports/workbook         Parse a long-format workbook

  Scenarios:
    GET    /api/scenarios                List demo scenarios
    POST   /api/scenarios/{name}/run     Compute and store a demo run

ERROR HANDLING:
  Errors are returned as JSON {error, details}:
  - 400: Validation errors (adjustments, holiday selection, records)
  - 404: Unknown run or scenario
  - 500: Internal errors

SECURITY NOTE:
  No authentication. All endpoints are public.

SEE ALSO:
  - compute.go: The reconciliation pipeline behind POST /api/runs
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/overrides"
	"github.com/warp/attendance-engine/payroll"
	"github.com/warp/attendance-engine/report"
	"github.com/warp/attendance-engine/sheets"
)

// maxUploadBytes caps workbook uploads.
const maxUploadBytes = 32 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store         payroll.RunStore
	Engine        *payroll.Engine
	PolicyFactory *factory.PolicyFactory
	Logger        *slog.Logger

	now   func() time.Time
	newID func() string
}

// NewHandler creates a handler computing with engine and storing in store.
func NewHandler(store payroll.RunStore, engine *payroll.Engine, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:         store,
		Engine:        engine,
		PolicyFactory: factory.NewPolicyFactory(),
		Logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.NewString,
	}
}

// =============================================================================
// POLICY
// =============================================================================

// GetPolicy returns the policy runs are computed with.
// GET /api/policy
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, PolicyResponse{
		Policy:  h.PolicyFactory.ToJSON(h.Engine.Policy()),
		Presets: h.PolicyFactory.PresetNames(),
	})
}

// =============================================================================
// RUNS
// =============================================================================

// CreateRun computes and stores a run.
// POST /api/runs
func (h *Handler) CreateRun(w http.ResponseWriter, r *http.Request) {
	var in ComputeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(in.Roster) == 0 {
		writeError(w, http.StatusBadRequest, "Roster is empty", nil)
		return
	}

	resp, err := h.computeAndStore(r, in)
	if err != nil {
		writeDomainError(w, "Failed to compute run", err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) computeAndStore(r *http.Request, in ComputeInput) (RunResponse, error) {
	ctx := r.Context()
	run, err := Compute(ctx, h.Engine, in)
	if err != nil {
		return RunResponse{}, err
	}
	run.ID = h.newID()
	run.CreatedAt = h.now()
	if run.Label == "" {
		run.Label = run.CreatedAt.Format("2006-01-02 15:04")
	}
	if err := h.Store.SaveRun(ctx, run); err != nil {
		return RunResponse{}, err
	}

	resp := newRunResponse(run)
	h.Logger.InfoContext(ctx, "run computed",
		slog.String("run_id", run.ID),
		slog.Int("employees", len(run.Results)),
		slog.Int("references", len(run.References)),
		slog.Int("present_days_major", resp.Summary.Count(report.MetricPresentDays, generic.CategoryMajor)),
	)
	return resp, nil
}

// ListRuns returns run summaries, newest first.
// GET /api/runs
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Store.ListRuns(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRun returns one run with its comparison.
// GET /api/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newRunResponse(*run))
}

// ExportRunCSV streams the comparison as CSV.
// GET /api/runs/{id}/report.csv
func (h *Handler) ExportRunCSV(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="run-%s.csv"`, run.ID))
	if err := report.WriteCSV(w, report.Compare(run.Results, run.References)); err != nil {
		h.Logger.ErrorContext(r.Context(), "csv export failed", slog.String("run_id", run.ID), slog.Any("error", err))
	}
}

// ExportRunXLSX streams the comparison as a workbook.
// GET /api/runs/{id}/report.xlsx
func (h *Handler) ExportRunXLSX(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="run-%s.xlsx"`, run.ID))
	if err := report.WriteXLSX(w, report.Compare(run.Results, run.References)); err != nil {
		h.Logger.ErrorContext(r.Context(), "xlsx export failed", slog.String("run_id", run.ID), slog.Any("error", err))
	}
}

func (h *Handler) loadRun(w http.ResponseWriter, r *http.Request) (*payroll.Run, bool) {
	run, err := h.Store.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get run", err)
		return nil, false
	}
	return run, true
}

// =============================================================================
// IMPORTS
// =============================================================================

// ImportWorkbook parses an uploaded workbook without computing anything.
// POST /api/imports/workbook (multipart, field "file")
func (h *Handler) ImportWorkbook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse multipart form", err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing file", err)
		return
	}
	defer file.Close()

	wb, err := sheets.Read(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to import workbook", err)
		return
	}

	stats := overrides.Build(wb.Overrides).Stats()
	h.Logger.InfoContext(r.Context(), "workbook imported",
		slog.String("file", header.Filename),
		slog.Int("employees", len(wb.Roster)),
		slog.Any("sheets", wb.Sheets),
	)
	writeJSON(w, http.StatusOK, ImportResponse{Workbook: wb, Employees: len(wb.Roster), Overrides: stats})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors to a status.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case generic.IsNotFound(err), errors.Is(err, errScenarioNotFound):
		writeError(w, http.StatusNotFound, message, err)
	case generic.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
