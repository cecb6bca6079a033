package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"dropwatch/internal/exporter"
	"dropwatch/internal/files"
	"dropwatch/internal/operations"
	"dropwatch/internal/publish"
	"dropwatch/internal/remote"
	"dropwatch/pkg/contracts/domain"
)

// publisher uploads the reports of one day
type publisher interface {
	Publish(ctx context.Context, day time.Time, files ...string) ([]publish.Upload, error)
}

// runner scans the accounts once per report day and writes each day's reports
type runner struct {
	dialer    remote.Dialer
	tracer    *operations.RunTracer
	mode      files.Mode
	fallback  bool
	workers   int
	assembler *exporter.Assembler
	naming    exporter.NamingOptions
	publisher publisher
	logger    *slog.Logger
}

// selection returns the file policy for day
func (r *runner) selection(day time.Time) files.Selection {
	switch r.mode {
	case files.ModeOnDate:
		return files.OnDate(day, r.fallback)
	case files.ModeBeforeDate:
		return files.BeforeDate(day, r.fallback)
	default:
		return files.Latest()
	}
}

// run processes days in order. Cancellation and report write failures stop
// the run; publish failures are only logged.
func (r *runner) run(ctx context.Context, accounts []domain.Account, days []time.Time) error {
	for _, day := range days {
		if err := r.runDay(ctx, accounts, day); err != nil {
			return err
		}
	}
	return nil
}

func (r *runner) runDay(ctx context.Context, accounts []domain.Account, day time.Time) error {
	stamp := day.Format(time.DateOnly)
	sel := r.selection(day)
	r.logger.InfoContext(ctx, "Collecting for calendar date",
		slog.String("date", stamp),
		slog.String("criterion", sel.Describe()))

	inspector := files.NewInspector(sel, r.logger)
	scanner := operations.NewScanner(r.dialer, inspector, r.tracer, r.logger)
	manager := operations.NewManager(scanner, &operations.Config{Workers: r.workers}, r.tracer, r.logger)

	result, err := manager.Run(ctx, accounts)
	if err != nil {
		return fmt.Errorf("scan for %s cancelled: %w", stamp, err)
	}
	if len(result.Outcomes) == 0 {
		r.logger.WarnContext(ctx, "No data returned; skipping report", slog.String("date", stamp))
		return nil
	}

	written, err := r.assembler.Write(result, exporter.ReportNames(day, r.naming))
	if err != nil {
		return fmt.Errorf("reports for %s: %w", stamp, err)
	}

	if r.publisher != nil {
		if _, err := r.publisher.Publish(ctx, day, written.Files()...); err != nil {
			r.logger.ErrorContext(ctx, "Report publishing failed",
				slog.String("date", stamp),
				slog.String("error", err.Error()))
		}
	}
	return nil
}
