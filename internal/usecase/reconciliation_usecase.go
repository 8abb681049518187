package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/stockrecon/internal/domain"
)

// ReconciliationUseCase runs the validate-then-fold pipeline over a parsed ledger.
type ReconciliationUseCase struct {
	catalog   *domain.Catalog
	validator *ValidationUseCase
	idGen     IDGenerator
	recorder  RunRecorder
	logger    zerolog.Logger
}

// NewReconciliationUseCase creates a new reconciliation use case. A nil
// recorder disables run metrics.
func NewReconciliationUseCase(
	catalog *domain.Catalog,
	validator *ValidationUseCase,
	idGen IDGenerator,
	recorder RunRecorder,
	logger zerolog.Logger,
) *ReconciliationUseCase {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &ReconciliationUseCase{
		catalog:   catalog,
		validator: validator,
		idGen:     idGen,
		recorder:  recorder,
		logger:    logger,
	}
}

// ReconciliationResult is the outcome of a successful run.
type ReconciliationResult struct {
	RunID     string
	Entries   int
	State     domain.State
	Summary   domain.Summary
	CheckedAt time.Time
}

// Reconcile validates every entry before any state is touched, then folds
// the entries in order. Any failure aborts the run without a partial result.
func (uc *ReconciliationUseCase) Reconcile(ctx context.Context, raws []domain.RawEntry) (*ReconciliationResult, error) {
	start := time.Now()
	runID := uc.idGen.Generate()
	log := uc.logger.With().Str("run_id", runID).Logger()

	log.Info().Int("entries", len(raws)).Msg("reconciliation started")

	entries, err := uc.validator.Validate(ctx, raws)
	if err != nil {
		uc.fail(log, err)
		return nil, err
	}

	state, err := domain.Reconcile(domain.NewState(uc.catalog), entries)
	if err != nil {
		uc.fail(log, err)
		return nil, err
	}
	for _, e := range entries {
		uc.recorder.EntryProcessed(e.Action)
	}

	summary := state.Summary()
	elapsed := time.Since(start)
	uc.recorder.RunCompleted(summary, elapsed)

	log.Info().
		Str("profit", summary.Profit.StringFixed(2)).
		Str("cash_flow", summary.CashFlow.StringFixed(2)).
		Int("references", len(summary.References)).
		Int("open_reservations", len(summary.Reservations)).
		Dur("duration", elapsed).
		Msg("reconciliation completed")

	return &ReconciliationResult{
		RunID:     runID,
		Entries:   len(entries),
		State:     state,
		Summary:   summary,
		CheckedAt: time.Now().UTC(),
	}, nil
}

// ReconcileSource loads the ledger from src and reconciles it.
func (uc *ReconciliationUseCase) ReconcileSource(ctx context.Context, src LedgerSource) (*ReconciliationResult, error) {
	raws, err := src.Load(ctx)
	if err != nil {
		uc.fail(uc.logger, err)
		return nil, err
	}
	return uc.Reconcile(ctx, raws)
}

// Validate runs only the validation stage.
func (uc *ReconciliationUseCase) Validate(ctx context.Context, raws []domain.RawEntry) ([]domain.Entry, error) {
	entries, err := uc.validator.Validate(ctx, raws)
	if err != nil {
		uc.fail(uc.logger, err)
		return nil, err
	}
	uc.logger.Info().Int("entries", len(entries)).Msg("ledger is valid")
	return entries, nil
}

func (uc *ReconciliationUseCase) fail(log zerolog.Logger, err error) {
	kind := ErrorKind(err)
	uc.recorder.RunFailed(kind)

	ev := log.Error().Err(err).Str("kind", kind)
	var ee *domain.EntryError
	if errors.As(err, &ee) {
		ev = ev.Int("line", ee.Line).Str("action", ee.Action)
	}
	ev.Msg("reconciliation failed")
}

// ErrorKind names the error taxonomy class of err.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrParse):
		return "parse"
	case errors.Is(err, domain.ErrSchema):
		return "schema"
	case errors.Is(err, domain.ErrFormat):
		return "format"
	case errors.Is(err, domain.ErrOrder):
		return "order"
	case errors.Is(err, domain.ErrExternal):
		return "external"
	default:
		return "internal"
	}
}

type nopRecorder struct{}

func (nopRecorder) EntryProcessed(domain.Action) {}

func (nopRecorder) RunFailed(string) {}

func (nopRecorder) RunCompleted(domain.Summary, time.Duration) {}
