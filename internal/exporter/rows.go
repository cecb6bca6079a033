package exporter

import (
	"time"

	"dropwatch/pkg/contracts/domain"
)

// Placeholder fills cells that have no value
const Placeholder = "-"

// DefaultDateLayout renders file timestamps as 01/02/2006 15:04:05
const DefaultDateLayout = "01/02/2006 15:04:05"

var (
	SuccessHeaders = []string{"Account Name", "Folder", "Latest File Name", "Latest File Date"}
	FailureHeaders = []string{"Account Name", "Folder", "Error"}
)

// Table is a header row plus data rows
type Table struct {
	Headers []string
	Rows    [][]string
}

// RowOptions controls how timestamps are rendered
type RowOptions struct {
	DateLayout string
	Location   *time.Location
}

func (o RowOptions) layout() string {
	if o.DateLayout == "" {
		return DefaultDateLayout
	}
	return o.DateLayout
}

func (o RowOptions) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

// SuccessTable renders the run's success set. Empty outcomes show the
// placeholder for both file columns.
func SuccessTable(result *domain.RunResult, opts RowOptions) Table {
	t := Table{Headers: SuccessHeaders}
	for _, o := range result.Successes() {
		name, date := Placeholder, Placeholder
		if o.Status == domain.OutcomeStatusFound {
			name = o.FileName
			date = o.ModifiedAt.In(opts.location()).Format(opts.layout())
		}
		t.Rows = append(t.Rows, []string{o.Account, o.Label, name, date})
	}
	return t
}

// FailureTable renders the run's failure set with each error detail
func FailureTable(result *domain.RunResult) Table {
	t := Table{Headers: FailureHeaders}
	for _, o := range result.Failures() {
		t.Rows = append(t.Rows, []string{o.Account, o.Label, o.Detail})
	}
	return t
}
