package dto

import (
	"errors"
	"time"

	"github.com/iho/stockrecon/internal/domain"
	"github.com/iho/stockrecon/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Line    int    `json:"line,omitempty"`
	Action  string `json:"action,omitempty"`
}

// ErrorFromDomain builds the response body for a reconciliation failure.
func ErrorFromDomain(err error) ErrorResponse {
	resp := ErrorResponse{
		Error:   usecase.ErrorKind(err),
		Message: err.Error(),
	}
	var ee *domain.EntryError
	if errors.As(err, &ee) {
		resp.Line = ee.Line
		resp.Action = ee.Action
	}
	return resp
}

// ReportResponse is the JSON report of one reconciliation run.
type ReportResponse struct {
	RunID     string         `json:"run_id"`
	Entries   int            `json:"entries"`
	CheckedAt time.Time      `json:"checked_at"`
	Summary   domain.Summary `json:"summary"`
}

// ReportFromResult converts a reconciliation result to a response.
func ReportFromResult(r *usecase.ReconciliationResult) *ReportResponse {
	return &ReportResponse{
		RunID:     r.RunID,
		Entries:   r.Entries,
		CheckedAt: r.CheckedAt,
		Summary:   r.Summary,
	}
}
