package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	apperrors "dropwatch/internal/errors"
	"dropwatch/internal/exporter"
	"dropwatch/internal/files"
	"dropwatch/internal/operations"
	"dropwatch/internal/publish"
	"dropwatch/internal/remote"
)

// runOptions holds the scan flags
type runOptions struct {
	account     string
	folder      string
	skip        []string
	output      string
	previousDay bool
	todayOnly   bool
	latest      bool
	date        string
	startDate   string
	endDate     string
	workers     int
}

var (
	rootRunOptions runOptions
	runRunOptions  runOptions
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan every account and write the daily report",
	Long: `Scan every account in the credentials file and record the newest file in
each folder.

By default only files modified today qualify; when a folder has none, the
newest file overall is reported instead and the fallback is logged.`,
	Example: `  dropwatch run                                   # Today's report
  dropwatch run --previous-day                    # Newest file before today
  dropwatch run --account acme --folder invoices  # Narrow the scan
  dropwatch run --skip Wizard --skip Legacy       # Leave accounts out
  dropwatch run --start-date 2024-01-01 --end-date 2024-01-07`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd, &runRunOptions)
}

func addRunFlags(cmd *cobra.Command, opts *runOptions) {
	flags := cmd.Flags()
	flags.StringVar(&opts.account, "account", "", "Only scan accounts whose name contains this text")
	flags.StringVar(&opts.folder, "folder", "", "Only scan folders whose label contains this text")
	flags.StringArrayVar(&opts.skip, "skip", nil, "Skip accounts whose name contains this text (repeatable)")
	flags.StringVarP(&opts.output, "output", "o", "", "Success report path (default: result/Accounts_Daily_Update_<date>.xlsx)")
	flags.BoolVar(&opts.previousDay, "previous-day", false, "Report the newest file strictly before the report day")
	flags.BoolVar(&opts.todayOnly, "today-only", false, "Only files modified on the report day qualify")
	flags.BoolVar(&opts.latest, "latest", false, "Alias for --today-only")
	flags.StringVar(&opts.date, "date", "", "Report day (YYYY-MM-DD)")
	flags.StringVar(&opts.startDate, "start-date", "", "First day of a report range (YYYY-MM-DD)")
	flags.StringVar(&opts.endDate, "end-date", "", "Last day of a report range (YYYY-MM-DD)")
	flags.IntVarP(&opts.workers, "workers", "w", 0, "Accounts scanned in parallel (default from config)")

	cmd.MarkFlagsMutuallyExclusive("previous-day", "today-only")
	cmd.MarkFlagsMutuallyExclusive("previous-day", "latest")
	cmd.MarkFlagsMutuallyExclusive("date", "start-date")
	cmd.MarkFlagsMutuallyExclusive("date", "end-date")
}

// mode resolves the selection mode from the flags, falling back to the
// configured one. An explicit report day turns a configured latest mode
// into on-date.
func (o runOptions) mode(configured string) (files.Mode, error) {
	switch {
	case o.previousDay:
		return files.ModeBeforeDate, nil
	case o.todayOnly || o.latest:
		return files.ModeOnDate, nil
	}
	mode, err := files.ParseMode(configured)
	if err != nil {
		return "", apperrors.NewConfigError("invalid scan mode", err)
	}
	if mode == files.ModeLatest && o.hasDates() {
		return files.ModeOnDate, nil
	}
	return mode, nil
}

func (o runOptions) hasDates() bool {
	return o.date != "" || o.startDate != "" || o.endDate != ""
}

func (o runOptions) filter() operations.Filter {
	return operations.Filter{Account: o.account, Folder: o.folder, Skip: o.skip}
}

// optionsFor picks the flag set bound to cmd. Names are compared because
// the commands' RunE refers back here.
func optionsFor(cmd *cobra.Command) runOptions {
	if cmd.Name() == "run" {
		return runRunOptions
	}
	return rootRunOptions
}

func runScan(cmd *cobra.Command, args []string) error {
	opts := optionsFor(cmd)
	started := time.Now()

	days, err := reportDays(opts.date, opts.startDate, opts.endDate, started)
	if err != nil {
		return err
	}

	a, err := setup(started, true)
	if err != nil {
		return err
	}
	defer a.close()

	mode, err := opts.mode(a.cfg.Scan.Mode)
	if err != nil {
		return err
	}
	if opts.workers > 0 {
		a.cfg.Scan.Workers = opts.workers
	}

	logger := a.logger
	logger.Info("Run started",
		slog.String("account_filter", opts.account),
		slog.String("folder_filter", opts.folder),
		slog.String("skip", strings.Join(opts.skip, ",")),
		slog.String("mode", string(mode)),
		slog.String("days", describeDays(days)))

	tracer, err := a.startTelemetry()
	if err != nil {
		return err
	}

	accounts, err := a.loadAccounts()
	if err != nil {
		return err
	}
	accounts = operations.FilterAccounts(accounts, opts.filter(), logger)
	if len(accounts) == 0 {
		logger.Warn("No accounts to scan after filtering")
	}

	dialer, err := newDialer(a, logger)
	if err != nil {
		return err
	}

	writer, err := exporter.NewWriter(a.cfg.Report.Format, a.cfg.Report.SheetName)
	if err != nil {
		return apperrors.NewConfigError("invalid report format", err)
	}
	if opts.output != "" {
		if err := a.validateOutput(opts.output, writer.Extension()); err != nil {
			return err
		}
	}

	r := &runner{
		dialer:   dialer,
		tracer:   tracer,
		mode:     mode,
		fallback: a.cfg.Scan.Fallback,
		workers:  a.cfg.Scan.Workers,
		assembler: exporter.NewAssembler(writer,
			exporter.RowOptions{DateLayout: a.cfg.Report.DateLayout}, logger),
		naming: exporter.NamingOptions{
			ResultDir: a.paths.ResultDir,
			ErrorsDir: a.paths.ErrorsDir,
			Output:    opts.output,
			MultiDay:  len(days) > 1,
			Extension: writer.Extension(),
		},
		logger: logger,
	}

	if a.cfg.Publish.Enabled {
		store, err := publish.New(cmd.Context(), a.cfg.Publish, logger)
		if err != nil {
			// Reports are still written locally
			logger.Error("Report publishing disabled", slog.String("error", err.Error()))
		} else {
			r.publisher = store
		}
	}

	if err := r.run(cmd.Context(), accounts, days); err != nil {
		logger.Error("Run failed", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Run finished", slog.Duration("elapsed", time.Since(started)))
	return nil
}

func newDialer(a *app, logger *slog.Logger) (remote.Dialer, error) {
	scan := a.cfg.Scan
	hostKeys, err := remote.HostKeyCallback(scan.KnownHostsFile)
	if err != nil {
		return nil, err
	}
	if hostKeys == nil {
		logger.Warn("Host keys are not verified; set scan.known_hosts_file to enable checking")
	}

	opts := remote.SFTPOptions{
		ConnectTimeout:  scan.ConnectTimeout,
		ReadTimeout:     scan.ReadTimeout,
		HostKeyCallback: hostKeys,
		Logger:          logger,
	}
	if scan.DialRate > 0 {
		opts.Limiter = rate.NewLimiter(rate.Limit(scan.DialRate), scan.DialBurst)
	}
	return remote.NewSFTPDialer(opts), nil
}

func describeDays(days []time.Time) string {
	switch len(days) {
	case 0:
		return ""
	case 1:
		return days[0].Format(time.DateOnly)
	default:
		return fmt.Sprintf("%s to %s", days[0].Format(time.DateOnly), days[len(days)-1].Format(time.DateOnly))
	}
}
