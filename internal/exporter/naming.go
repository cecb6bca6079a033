package exporter

import (
	"path/filepath"
	"strings"
	"time"
)

const (
	reportStem = "Accounts_Daily_Update_"
	errorStem  = "Accounts_Daily_Update_errors_"

	// ReportDateLayout stamps report file names, e.g. 01-03-2024
	ReportDateLayout = "01-02-2006"
)

// NamingOptions locates the report files of one run
type NamingOptions struct {
	ResultDir string
	ErrorsDir string
	// Output overrides the success report path
	Output string
	// MultiDay appends the date to an Output override so each day of a
	// range gets its own file
	MultiDay bool
	// Extension including the dot, e.g. ".xlsx"
	Extension string
}

// ReportPaths are the destinations of a success and failure report
type ReportPaths struct {
	Success string
	Failure string
}

// ReportNames returns the report paths for day
func ReportNames(day time.Time, opts NamingOptions) ReportPaths {
	stamp := day.Format(ReportDateLayout)
	ext := opts.Extension
	if ext == "" {
		ext = ".xlsx"
	}

	paths := ReportPaths{
		Success: filepath.Join(opts.ResultDir, reportStem+stamp+ext),
		Failure: filepath.Join(opts.ErrorsDir, errorStem+stamp+ext),
	}

	if opts.Output != "" {
		paths.Success = opts.Output
		if opts.MultiDay {
			outExt := filepath.Ext(opts.Output)
			paths.Success = strings.TrimSuffix(opts.Output, outExt) + "_" + stamp + outExt
		}
	}
	return paths
}
