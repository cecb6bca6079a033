package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFolderTasks(t *testing.T) {
	tests := []struct {
		name       string
		folder     Folder
		wantLabels []string
		wantPrefix []string
	}{
		{
			name:       "no filters yields one task",
			folder:     Folder{Label: "Booking", Path: "/in/booking"},
			wantLabels: []string{"Booking"},
			wantPrefix: []string{""},
		},
		{
			name:       "one task per prefix",
			folder:     Folder{Label: "Reporting", Path: "/rep", Filters: []string{"RevAI_Fleet", "Daily_Bookings"}},
			wantLabels: []string{"Reporting - revai_fleet", "Reporting - daily_bookings"},
			wantPrefix: []string{"RevAI_Fleet", "Daily_Bookings"},
		},
		{
			name:       "unconfigured placeholder ignores filters",
			folder:     Folder{Label: "Booking", Filters: []string{"x"}, Unconfigured: true},
			wantLabels: []string{"Booking"},
			wantPrefix: []string{""},
		},
		{
			name:       "blank filters ignored",
			folder:     Folder{Label: "Out", Path: "/out", Filters: []string{" ", ""}},
			wantLabels: []string{"Out"},
			wantPrefix: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := tt.folder.Tasks("Alpha")
			require.Len(t, tasks, len(tt.wantLabels))
			for i, task := range tasks {
				assert.Equal(t, "Alpha", task.Account)
				assert.Equal(t, tt.wantLabels[i], task.Label)
				assert.Equal(t, tt.wantPrefix[i], task.Prefix)
				assert.Equal(t, tt.folder.Path, task.Path)
				assert.Equal(t, tt.folder.Unconfigured, task.Unconfigured)
			}
		})
	}
}

func TestAccountTasksKeepDeclarationOrder(t *testing.T) {
	acct := Account{
		Name: "Beta",
		Host: "sftp.beta.example",
		Folders: []Folder{
			{Label: "F1", Path: "/a"},
			{Label: "F2", Path: "/b", Filters: []string{"x", "y"}},
			{Label: "F3", Path: "/c"},
		},
	}

	var labels []string
	for _, task := range acct.Tasks() {
		labels = append(labels, task.Label)
	}
	assert.Equal(t, []string{"F1", "F2 - x", "F2 - y", "F3"}, labels)
	assert.Equal(t, "sftp.beta.example:22", acct.Address())
}

func TestOutcomeInvariants(t *testing.T) {
	task := FolderTask{Account: "Alpha", Label: "Booking", Path: "/in/booking"}
	ts := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		outcome Outcome
		wantErr bool
	}{
		{name: "found", outcome: FoundOutcome(task, "b.csv", ts)},
		{name: "empty", outcome: EmptyOutcome(task, "folder has no files")},
		{name: "error", outcome: ErrorOutcome(task, "PathError: path not found")},
		{name: "error with blank detail is filled", outcome: ErrorOutcome(task, "")},
		{name: "found without timestamp", outcome: Outcome{Status: OutcomeStatusFound, FileName: "a"}, wantErr: true},
		{name: "empty with file", outcome: Outcome{Status: OutcomeStatusEmpty, FileName: "a"}, wantErr: true},
		{name: "error without detail", outcome: Outcome{Status: OutcomeStatusError}, wantErr: true},
		{name: "pending is not terminal", outcome: Outcome{Status: OutcomeStatusPending}, wantErr: true},
		{name: "unknown status", outcome: Outcome{Status: "done", FileName: "a"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.outcome.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestOutcomeStatusIsTerminal(t *testing.T) {
	assert.False(t, OutcomeStatusPending.IsTerminal())
	assert.False(t, OutcomeStatus("").IsTerminal())
	for _, s := range []OutcomeStatus{OutcomeStatusFound, OutcomeStatusEmpty, OutcomeStatusError} {
		assert.True(t, s.IsTerminal(), s)
	}
}

func TestRunResultPartition(t *testing.T) {
	task := FolderTask{Account: "A", Label: "L"}
	result := &RunResult{
		StartedAt:   time.Unix(100, 0),
		CompletedAt: time.Unix(160, 0),
		Outcomes: []Outcome{
			FoundOutcome(task, "f", time.Unix(1, 0)),
			ErrorOutcome(task, "boom"),
			EmptyOutcome(task, ""),
			ErrorOutcome(task, "bang"),
		},
	}

	successes := result.Successes()
	failures := result.Failures()
	assert.Len(t, successes, 2)
	assert.Len(t, failures, 2)
	assert.Equal(t, len(result.Outcomes), len(successes)+len(failures))
	assert.Equal(t, "boom", failures[0].Detail)
	assert.Equal(t, "bang", failures[1].Detail)
	assert.Equal(t, time.Minute, result.Duration())
	assert.Equal(t, RunSummary{Total: 4, Found: 1, Empty: 1, Failed: 2}, result.Summary())
}

func TestSecretIsRedacted(t *testing.T) {
	s := NewSecret("hunter2")
	acct := Account{Name: "A", Host: "h", Username: "u", Secret: s}

	assert.Equal(t, "hunter2", s.Reveal())
	assert.NotContains(t, fmt.Sprintf("%v %+v %#v %s", s, acct, acct, acct), "hunter2")
	assert.Equal(t, "[REDACTED]", s.LogValue().String())
	assert.True(t, NewSecret("").IsZero())
}
