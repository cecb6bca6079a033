package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is used when no sheet name is configured
const DefaultSheetName = "Results"

const (
	minColumnWidth = 12
	maxColumnWidth = 80
)

// WorkbookWriter writes tables as single-sheet xlsx workbooks
type WorkbookWriter struct {
	sheet string
}

// NewWorkbookWriter creates a workbook writer using the given sheet name
func NewWorkbookWriter(sheet string) *WorkbookWriter {
	if sheet == "" {
		sheet = DefaultSheetName
	}
	return &WorkbookWriter{sheet: sheet}
}

// Extension implements Writer
func (w *WorkbookWriter) Extension() string {
	return ".xlsx"
}

// Write implements Writer
func (w *WorkbookWriter) Write(path string, table Table) error {
	slog.Info("Writing workbook",
		slog.String("file_path", path),
		slog.Int("record_count", len(table.Rows)))

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", w.sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(w.sheet)
	if err != nil {
		return fmt.Errorf("failed to open sheet writer: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	// Column widths and panes must be set before the first row
	for col, width := range columnWidths(table) {
		if err := sw.SetColWidth(col+1, col+1, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header row: %w", err)
	}

	header := make([]interface{}, len(table.Headers))
	for i, h := range table.Headers {
		header[i] = excelize.Cell{StyleID: bold, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, record := range table.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(record))
		for j, v := range record {
			values[j] = v
		}
		if err := sw.SetRow(cell, values); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func columnWidths(table Table) []float64 {
	widths := make([]float64, len(table.Headers))
	measure := func(col int, s string) {
		if col >= len(widths) {
			return
		}
		if n := float64(utf8.RuneCountInString(s) + 2); n > widths[col] {
			widths[col] = n
		}
	}
	for i, h := range table.Headers {
		measure(i, h)
	}
	for _, row := range table.Rows {
		for i, v := range row {
			measure(i, v)
		}
	}
	for i, w := range widths {
		switch {
		case w < minColumnWidth:
			widths[i] = minColumnWidth
		case w > maxColumnWidth:
			widths[i] = maxColumnWidth
		}
	}
	return widths
}
