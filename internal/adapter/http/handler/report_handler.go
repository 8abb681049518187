package handler

import (
	"context"
	"net/http"

	"github.com/iho/stockrecon/internal/adapter/http/dto"
	"github.com/iho/stockrecon/internal/adapter/report"
	"github.com/iho/stockrecon/internal/usecase"
)

// Reconciler runs a reconciliation over a ledger source.
type Reconciler interface {
	ReconcileSource(ctx context.Context, src usecase.LedgerSource) (*usecase.ReconciliationResult, error)
}

// ReportHandler serves the reconciliation report of the configured ledger.
type ReportHandler struct {
	reconciler Reconciler
	source     usecase.LedgerSource
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reconciler Reconciler, source usecase.LedgerSource) *ReportHandler {
	return &ReportHandler{reconciler: reconciler, source: source}
}

var reportContentTypes = map[string]string{
	report.FormatText:     "text/plain; charset=utf-8",
	report.FormatMarkdown: "text/markdown; charset=utf-8",
}

// Get reconciles the ledger and writes the report. The format query
// parameter selects json (default), text or markdown.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = report.FormatJSON
	}

	var renderer report.Renderer
	if format != report.FormatJSON {
		contentType, ok := reportContentTypes[format]
		if !ok {
			writeError(w, http.StatusBadRequest, dto.ErrorResponse{
				Error:   "invalid format",
				Message: "format must be json, text or markdown",
			})
			return
		}
		renderer, _ = report.New(format)
		w.Header().Set("Content-Type", contentType)
	}

	result, err := h.reconciler.ReconcileSource(r.Context(), h.source)
	if err != nil {
		w.Header().Del("Content-Type")
		writeError(w, mapDomainError(err), dto.ErrorFromDomain(err))
		return
	}

	w.Header().Set("X-Run-ID", result.RunID)
	if renderer == nil {
		writeJSON(w, http.StatusOK, dto.ReportFromResult(result))
		return
	}

	w.WriteHeader(http.StatusOK)
	renderer.Render(w, result.Summary)
}
