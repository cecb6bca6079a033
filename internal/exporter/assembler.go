package exporter

import (
	"fmt"
	"log/slog"

	"dropwatch/pkg/contracts/domain"
)

// Writer persists one table to path
type Writer interface {
	Write(path string, table Table) error
	Extension() string
}

// NewWriter returns the writer for a report format: "xlsx" or "csv"
func NewWriter(format, sheet string) (Writer, error) {
	switch format {
	case "", "xlsx":
		return NewWorkbookWriter(sheet), nil
	case "csv":
		return NewCSVWriter(), nil
	default:
		return nil, fmt.Errorf("unsupported report format %q", format)
	}
}

// Written lists the files produced for one run. Failure is empty when the
// run had no failures.
type Written struct {
	Success string
	Failure string
}

// Files returns the written paths
func (w Written) Files() []string {
	files := []string{w.Success}
	if w.Failure != "" {
		files = append(files, w.Failure)
	}
	return files
}

// Assembler turns a RunResult into its success and failure reports
type Assembler struct {
	writer Writer
	rows   RowOptions
	logger *slog.Logger
}

// NewAssembler creates a report assembler
func NewAssembler(writer Writer, rows RowOptions, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{writer: writer, rows: rows, logger: logger}
}

// Extension returns the file extension of the underlying writer
func (a *Assembler) Extension() string {
	return a.writer.Extension()
}

// Write emits the success report and, when the run had failures, the
// failure report.
func (a *Assembler) Write(result *domain.RunResult, paths ReportPaths) (Written, error) {
	var written Written

	success := SuccessTable(result, a.rows)
	if err := a.writer.Write(paths.Success, success); err != nil {
		return written, fmt.Errorf("write success report: %w", err)
	}
	written.Success = paths.Success
	a.logger.Info("Report saved",
		slog.String("path", paths.Success),
		slog.Int("rows", len(success.Rows)))

	failures := FailureTable(result)
	if len(failures.Rows) == 0 {
		a.logger.Info("No errors detected")
		return written, nil
	}
	if err := a.writer.Write(paths.Failure, failures); err != nil {
		return written, fmt.Errorf("write failure report: %w", err)
	}
	written.Failure = paths.Failure
	a.logger.Warn("Errors detected; details saved",
		slog.String("path", paths.Failure),
		slog.Int("rows", len(failures.Rows)))
	return written, nil
}
