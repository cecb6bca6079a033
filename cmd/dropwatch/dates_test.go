package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "dropwatch/internal/errors"
)

func TestReportDays(t *testing.T) {
	now := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		date      string
		start     string
		end       string
		want      []string
		wantError string
	}{
		{
			name: "defaults to today",
			want: []string{"2024-03-05"},
		},
		{
			name: "single date",
			date: "2024-02-29",
			want: []string{"2024-02-29"},
		},
		{
			name:  "inclusive range",
			start: "2024-02-28",
			end:   "2024-03-01",
			want:  []string{"2024-02-28", "2024-02-29", "2024-03-01"},
		},
		{
			name:  "start only",
			start: "2024-01-10",
			want:  []string{"2024-01-10"},
		},
		{
			name: "end only",
			end:  "2024-01-11",
			want: []string{"2024-01-11"},
		},
		{
			name:      "start after end",
			start:     "2024-01-12",
			end:       "2024-01-11",
			wantError: "after end date",
		},
		{
			name:      "bad format",
			date:      "03/05/2024",
			wantError: "expected YYYY-MM-DD",
		},
		{
			name:      "range too long",
			start:     "2020-01-01",
			end:       "2024-01-01",
			wantError: "exceeds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, err := reportDays(tt.date, tt.start, tt.end, now)
			if tt.wantError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantError)
				assert.True(t, apperrors.IsType(err, apperrors.ErrTypeValidation))
				return
			}
			require.NoError(t, err)

			got := make([]string, len(days))
			for i, d := range days {
				got[i] = d.Format(time.DateOnly)
				assert.Equal(t, 0, d.Hour())
				assert.Equal(t, time.UTC, d.Location())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDescribeDays(t *testing.T) {
	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	jan3 := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "", describeDays(nil))
	assert.Equal(t, "2024-01-01", describeDays([]time.Time{jan1}))
	assert.Equal(t, "2024-01-01 to 2024-01-03", describeDays([]time.Time{jan1, jan3}))
}
