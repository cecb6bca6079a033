// Package exporter writes scan results as report files.
//
// A run produces two tables: one row per success outcome (found or empty)
// and one row per failure. Each table is written by a Writer:
//
// WorkbookWriter: an .xlsx workbook with a bold, frozen header row.
//
// CSVWriter: a UTF-8 CSV file with a BOM so Excel opens it cleanly.
//
// Example usage:
//
//	names := exporter.ReportNames(day, exporter.NamingOptions{ResultDir: dir, ErrorsDir: errDir, Extension: ".xlsx"})
//	assembler := exporter.NewAssembler(exporter.NewWorkbookWriter("Results"), exporter.RowOptions{}, logger)
//	written, err := assembler.Write(result, names)
package exporter
