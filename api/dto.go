/*
dto.go - Data Transfer Objects for API requests and responses

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Runs:
    ComputeInput (request body, see compute.go), RunResponse

  Policy:
    PolicyResponse (wraps factory.PolicyJSON)

  Imports:
    ImportResponse

  Scenarios:
    ScenarioDTO

VALIDATION:
  Validation is done by the domain packages, not in DTOs. DTOs are pure
  data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/policy.go: PolicyJSON type
*/
package api

import (
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/overrides"
	"github.com/warp/attendance-engine/payroll"
	"github.com/warp/attendance-engine/report"
	"github.com/warp/attendance-engine/sheets"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// RunResponse is a stored run with its comparison against HR figures.
type RunResponse struct {
	Run        payroll.Run    `json:"run"`
	Comparison []report.Row   `json:"comparison"`
	Summary    report.Summary `json:"summary"`
}

func newRunResponse(run payroll.Run) RunResponse {
	rows := report.Compare(run.Results, run.References)
	return RunResponse{Run: run, Comparison: rows, Summary: report.Summarize(rows)}
}

// PolicyResponse is the effective policy plus the names of the presets.
type PolicyResponse struct {
	Policy  factory.PolicyJSON `json:"policy"`
	Presets []string           `json:"presets"`
}

// ImportResponse is a parsed workbook, ready to post back as a run.
type ImportResponse struct {
	Workbook  *sheets.Workbook `json:"workbook"`
	Employees int              `json:"employees"`
	Overrides overrides.Stats  `json:"override_stats"`
}

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ErrorResponse is the JSON body of every error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
