package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "missing BOM")

	records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "report.csv")
	table := Table{
		Headers: FailureHeaders,
		Rows: [][]string{
			{"Acme", "Inbound", "PathError: path not found"},
			{"Beta, Inc", "Out \"bound\"", "ConnectionError: connection failed: EOF"},
		},
	}

	w := NewCSVWriter()
	require.NoError(t, w.Write(path, table))
	assert.Equal(t, ".csv", w.Extension())

	records := readCSV(t, path)
	require.Len(t, records, 3)
	assert.Equal(t, FailureHeaders, records[0])
	assert.Equal(t, table.Rows[1], records[2])

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file removed")
}

func TestCSVWriter_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.csv")
	w := NewCSVWriter()

	require.NoError(t, w.WriteCSV(path, WriteOptions{Headers: []string{"a"}, Records: [][]string{{"1"}, {"2"}}, BOMPrefix: true}))
	require.NoError(t, w.WriteCSV(path, WriteOptions{Headers: []string{"a"}, Records: [][]string{{"3"}}, BOMPrefix: true}))

	assert.Equal(t, [][]string{{"a"}, {"3"}}, readCSV(t, path))
}

func TestCSVWriter_UnwritableDirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	err := NewCSVWriter().Write(filepath.Join(file, "report.csv"), Table{Headers: SuccessHeaders})
	assert.Error(t, err)
}
