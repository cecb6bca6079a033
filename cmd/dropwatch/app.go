package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"dropwatch/internal/config"
	apperrors "dropwatch/internal/errors"
	"dropwatch/internal/infrastructure"
	"dropwatch/internal/operations"
	"dropwatch/internal/validation"
	"dropwatch/pkg/contracts/domain"
)

// app carries the configuration and shared services of one invocation
type app struct {
	cfg     *config.Config
	paths   *config.Paths
	logger  *slog.Logger
	otel    *infrastructure.OTelProviders
	started time.Time
}

// setup loads configuration, prepares the output directories and starts
// logging. With runLog set, logs also go to a per-run file under logs/.
func setup(started time.Time, runLog bool) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load configuration", err)
	}
	if credentialsFile != "" {
		abs, err := filepath.Abs(credentialsFile)
		if err != nil {
			return nil, apperrors.NewConfigError("invalid credentials path", err)
		}
		cfg.Paths.CredentialsFile = abs
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to resolve paths", err)
	}

	logCfg := cfg.Logging
	if runLog {
		if err := paths.EnsureDirectories(); err != nil {
			return nil, apperrors.NewStorageError("failed to create output directories", err)
		}
		if logCfg.FilePath == "" {
			logCfg.FilePath = paths.RunLogFile(started)
		}
	} else {
		logCfg.Output = "console"
	}

	logger, err := infrastructure.InitializeLogger(logCfg)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to initialize logger", err)
	}

	return &app{
		cfg:     cfg,
		paths:   paths,
		logger:  logger,
		started: started,
	}, nil
}

// startTelemetry initialises tracing and metrics when configured. The
// returned tracer is nil when both are off.
func (a *app) startTelemetry() (*operations.RunTracer, error) {
	tel := a.cfg.Telemetry
	if !tel.Tracing && tel.MetricsTextfile == "" {
		return nil, nil
	}

	otelCfg := infrastructure.DefaultOTelConfig()
	otelCfg.EnableTracing = tel.Tracing
	if tel.Tracing {
		otelCfg.TraceExporter = "file"
		otelCfg.TraceFile = a.paths.TraceFile(a.started)
	}
	otelCfg.EnableMetrics = tel.MetricsTextfile != ""
	if !otelCfg.EnableMetrics {
		otelCfg.MetricExporter = "none"
	}

	providers, err := infrastructure.InitializeOTel(otelCfg, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	a.otel = providers
	return operations.NewRunTracer(providers)
}

// close flushes telemetry and the log file
func (a *app) close() {
	if a.otel != nil {
		if path := a.cfg.Telemetry.MetricsTextfile; path != "" {
			if err := a.otel.WriteMetricsTextfile(path); err != nil {
				a.logger.Warn("Failed to write metrics textfile",
					slog.String("path", path),
					slog.String("error", err.Error()))
			} else {
				a.logger.Debug("Metrics textfile written", slog.String("path", path))
			}
		}
		if err := a.otel.ShutdownWithTimeout(5 * time.Second); err != nil {
			a.logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}
	_ = infrastructure.CloseLogFile()
}

// loadAccounts reads the credentials file and drops blocks and accounts
// that cannot be scanned. Each dropped entry is logged.
func (a *app) loadAccounts() ([]domain.Account, error) {
	path, err := a.paths.FindCredentialsFile()
	if err != nil {
		return nil, apperrors.NewConfigError("credentials file not found", err)
	}
	if err := validation.NewFileValidator(a.logger).ValidateFile(path); err != nil {
		return nil, apperrors.NewConfigError("credentials file unusable", err)
	}

	accounts, skipped, err := config.LoadAccounts(path)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to read credentials", err).
			WithContext("file", path)
	}
	for _, s := range skipped {
		a.logger.Warn("Skipping credentials block",
			slog.String("account", s.Name),
			slog.String("reason", s.Reason))
	}

	valid, _ := validation.NewAccountValidator(a.logger).ValidateAccounts(accounts)
	a.logger.Info("Accounts loaded",
		slog.String("file", path),
		slog.Int("accounts", len(valid)),
		slog.Int("skipped", len(accounts)-len(valid)+len(skipped)))
	return valid, nil
}

// validateOutput checks an --output override before any account is scanned
func (a *app) validateOutput(path, ext string) error {
	if !strings.EqualFold(filepath.Ext(path), ext) {
		return apperrors.NewValidationError(
			fmt.Sprintf("output %s must use the %s extension of the %q report format", path, ext, a.cfg.Report.Format))
	}
	if err := validation.NewFileValidator(a.logger).ValidateReportPath(path); err != nil {
		return apperrors.NewConfigError("invalid output path", err)
	}
	return nil
}
