package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "dropwatch/internal/errors"
	"dropwatch/internal/infrastructure"
	"dropwatch/pkg/contracts/domain"
)

// AccountScanner produces the outcomes of one account
type AccountScanner interface {
	Scan(ctx context.Context, acct domain.Account) []domain.Outcome
}

// Manager orchestrates a scan run across accounts
type Manager struct {
	scanner AccountScanner
	config  *Config
	tracer  *RunTracer
	logger  *slog.Logger
}

// NewManager creates a run manager. config and tracer may be nil.
func NewManager(scanner AccountScanner, config *Config, tracer *RunTracer, logger *slog.Logger) *Manager {
	if config == nil {
		config = NewConfig()
	}
	return &Manager{
		scanner: scanner,
		config:  config,
		tracer:  tracer,
		logger:  infrastructure.WithComponent(logger, "manager"),
	}
}

// Run scans accounts on a bounded worker pool and returns every outcome in
// account-then-folder declaration order. If ctx is cancelled the partial
// result is discarded and ctx.Err() is returned.
func (m *Manager) Run(ctx context.Context, accounts []domain.Account) (*domain.RunResult, error) {
	ctx, runID := infrastructure.EnsureTraceID(ctx)
	ctx, span := m.tracer.StartRun(ctx, runID, len(accounts))

	result := &domain.RunResult{RunID: runID, StartedAt: time.Now()}
	m.logger.InfoContext(ctx, "Run started",
		slog.String("run_id", runID),
		slog.Int("accounts", len(accounts)),
		slog.Int("workers", m.config.workers()))

	col := newCollector(len(accounts))
	var g errgroup.Group
	g.SetLimit(m.config.workers())

	for i, acct := range accounts {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			col.set(i, m.scanAccount(ctx, acct))
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		infrastructure.WithError(m.logger, err).WarnContext(ctx, "Run cancelled; discarding partial results",
			slog.String("run_id", runID))
		m.tracer.EndRun(ctx, span, nil, err)
		return nil, err
	}

	result.Outcomes = col.flatten()
	result.CompletedAt = time.Now()

	summary := result.Summary()
	m.logger.InfoContext(ctx, "Run completed",
		slog.String("run_id", runID),
		slog.Int("outcomes", summary.Total),
		slog.Int("found", summary.Found),
		slog.Int("empty", summary.Empty),
		slog.Int("failed", summary.Failed),
		slog.Duration("duration", result.Duration()))
	m.tracer.EndRun(ctx, span, result, nil)
	return result, nil
}

// scanAccount isolates one account: a panic or a short outcome list from the
// scanner becomes one error outcome per folder task. Those replacement
// outcomes are counted like any other.
func (m *Manager) scanAccount(ctx context.Context, acct domain.Account) (outcomes []domain.Outcome) {
	tasks := acct.Tasks()

	defer func() {
		if r := recover(); r != nil {
			err := apperrors.NewProtocolError("unexpected failure", fmt.Errorf("panic: %v", r))
			m.logger.ErrorContext(ctx, "Account scan panicked",
				slog.String("account", acct.Name),
				slog.Any("panic", r))
			outcomes = m.errorOutcomes(ctx, tasks, err.Detail())
		}
	}()

	if err := ctx.Err(); err != nil {
		return m.errorOutcomes(ctx, tasks, apperrors.NewAppError(apperrors.ErrTypeCancelled, "scan cancelled", err).Detail())
	}

	outcomes = m.scanner.Scan(ctx, acct)
	if len(outcomes) != len(tasks) {
		err := apperrors.NewProtocolError("incomplete scan",
			fmt.Errorf("got %d outcomes for %d folders", len(outcomes), len(tasks)))
		m.logger.ErrorContext(ctx, "Account scan returned wrong outcome count",
			slog.String("account", acct.Name),
			slog.Int("outcomes", len(outcomes)),
			slog.Int("folders", len(tasks)))
		return m.errorOutcomes(ctx, tasks, err.Detail())
	}
	return outcomes
}

func (m *Manager) errorOutcomes(ctx context.Context, tasks []domain.FolderTask, detail string) []domain.Outcome {
	outcomes := make([]domain.Outcome, len(tasks))
	for i, task := range tasks {
		outcomes[i] = domain.ErrorOutcome(task, detail)
		m.tracer.RecordOutcome(ctx, nil, outcomes[i])
	}
	return outcomes
}
