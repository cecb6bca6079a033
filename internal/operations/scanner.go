package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "dropwatch/internal/errors"
	"dropwatch/internal/infrastructure"
	"dropwatch/internal/remote"
	"dropwatch/pkg/contracts/domain"
)

var errScanAborted = errors.New("account scan aborted")

// FolderInspector resolves one folder task over an open connection.
// Implementations must always return a terminal outcome for the task.
type FolderInspector interface {
	Inspect(ctx context.Context, conn remote.Conn, task domain.FolderTask) domain.Outcome
}

// Scanner inspects every folder of one account over a single connection
type Scanner struct {
	dialer    remote.Dialer
	inspector FolderInspector
	tracer    *RunTracer
	logger    *slog.Logger
}

// NewScanner creates an account scanner. tracer may be nil.
func NewScanner(dialer remote.Dialer, inspector FolderInspector, tracer *RunTracer, logger *slog.Logger) *Scanner {
	return &Scanner{
		dialer:    dialer,
		inspector: inspector,
		tracer:    tracer,
		logger:    infrastructure.WithComponent(logger, "scanner"),
	}
}

// Scan returns one outcome per folder task of acct, in declaration order.
// A failed connection marks every task with the same error detail.
func (s *Scanner) Scan(ctx context.Context, acct domain.Account) []domain.Outcome {
	tasks := acct.Tasks()
	started := time.Now()
	ctx, span := s.tracer.StartAccount(ctx, acct)

	// Both are replaced on every return path and left as is on a panic,
	// which the manager recovers.
	result, endErr := "failed", error(errScanAborted)
	defer func() {
		s.tracer.EndAccount(ctx, span, result, time.Since(started), endErr)
	}()

	logger := s.logger.With(slog.String("account", acct.Name))
	logger.InfoContext(ctx, "Connecting to account",
		slog.String("address", acct.Address()),
		slog.Int("folders", len(tasks)))

	conn, err := s.dialer.Dial(ctx, remote.EndpointFor(acct))
	if err != nil {
		appErr := apperrors.ClassifyConnect(err)
		infrastructure.WithError(logger, err).ErrorContext(ctx, "Connection error",
			slog.String("error_type", string(appErr.Type)))

		result, endErr = "failed", appErr
		if appErr.Type == apperrors.ErrTypeCancelled {
			result = "cancelled"
		}
		return s.failAll(ctx, tasks, appErr.Detail())
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logger.DebugContext(ctx, "Connection close failed", slog.String("error", err.Error()))
		}
	}()

	logger.InfoContext(ctx, "Connected to account")

	outcomes := make([]domain.Outcome, 0, len(tasks))
	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			detail := apperrors.NewAppError(apperrors.ErrTypeCancelled, "scan cancelled", err).Detail()
			outcomes = append(outcomes, s.failAll(ctx, tasks[i:], detail)...)
			break
		}
		outcomes = append(outcomes, s.inspect(ctx, conn, task))
	}

	result, endErr = "connected", nil
	if ctx.Err() != nil {
		result = "cancelled"
	}
	return outcomes
}

// inspect runs the inspector for one task and guarantees a valid terminal
// outcome, even if the inspector panics or misbehaves.
func (s *Scanner) inspect(ctx context.Context, conn remote.Conn, task domain.FolderTask) (outcome domain.Outcome) {
	ctx, span := s.tracer.StartFolder(ctx, task)
	defer func() {
		if r := recover(); r != nil {
			err := apperrors.NewProtocolError("unexpected failure", fmt.Errorf("panic: %v", r))
			s.logger.ErrorContext(ctx, "Folder inspection panicked",
				slog.String("account", task.Account),
				slog.String("folder", task.Label),
				slog.Any("panic", r))
			outcome = domain.ErrorOutcome(task, err.Detail())
		}
		s.tracer.RecordOutcome(ctx, span, outcome)
	}()

	if task.Unconfigured {
		s.logger.WarnContext(ctx, "Folder not configured",
			slog.String("account", task.Account),
			slog.String("folder", task.Label))
		return domain.ErrorOutcome(task, apperrors.NewConfigError("folder not configured", nil).Detail())
	}

	s.logger.InfoContext(ctx, "Checking folder",
		slog.String("account", task.Account),
		slog.String("folder", task.Label),
		slog.String("path", task.Path),
		slog.String("prefix", task.Prefix))

	outcome = s.inspector.Inspect(ctx, conn, task)
	if err := outcome.Validate(); err != nil {
		s.logger.ErrorContext(ctx, "Inspector returned an invalid outcome",
			slog.String("account", task.Account),
			slog.String("folder", task.Label),
			slog.String("error", err.Error()))
		return domain.ErrorOutcome(task, apperrors.NewProtocolError("invalid inspection result", err).Detail())
	}

	switch outcome.Status {
	case domain.OutcomeStatusFound:
		s.logger.InfoContext(ctx, "Latest file found",
			slog.String("account", task.Account),
			slog.String("folder", task.Label),
			slog.String("file", outcome.FileName),
			slog.Time("modified_at", outcome.ModifiedAt),
			slog.String("note", outcome.Note))
	case domain.OutcomeStatusEmpty:
		s.logger.InfoContext(ctx, "No qualifying file",
			slog.String("account", task.Account),
			slog.String("folder", task.Label),
			slog.String("reason", outcome.Note))
	}
	return outcome
}

func (s *Scanner) failAll(ctx context.Context, tasks []domain.FolderTask, detail string) []domain.Outcome {
	outcomes := make([]domain.Outcome, 0, len(tasks))
	for _, task := range tasks {
		outcome := domain.ErrorOutcome(task, detail)
		s.tracer.RecordOutcome(ctx, nil, outcome)
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}
