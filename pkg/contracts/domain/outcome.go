package domain

import (
	"fmt"
	"time"
)

// OutcomeStatus is the terminal state of a folder inspection
type OutcomeStatus string

const (
	OutcomeStatusPending OutcomeStatus = "pending"
	OutcomeStatusFound   OutcomeStatus = "found"
	OutcomeStatusEmpty   OutcomeStatus = "empty"
	OutcomeStatusError   OutcomeStatus = "error"
)

// IsTerminal reports whether no further transition is possible
func (s OutcomeStatus) IsTerminal() bool {
	return s == OutcomeStatusFound || s == OutcomeStatusEmpty || s == OutcomeStatusError
}

// Outcome is the result of inspecting one folder task.
// Use FoundOutcome, EmptyOutcome or ErrorOutcome to build one.
type Outcome struct {
	Account    string        `json:"account"`
	Label      string        `json:"label"`
	Path       string        `json:"path"`
	Status     OutcomeStatus `json:"status"`
	FileName   string        `json:"file_name,omitempty"`
	ModifiedAt time.Time     `json:"modified_at,omitempty"`
	Detail     string        `json:"detail,omitempty"`
	Note       string        `json:"note,omitempty"`
}

// FoundOutcome records the newest file of a folder
func FoundOutcome(task FolderTask, name string, modifiedAt time.Time) Outcome {
	return Outcome{
		Account:    task.Account,
		Label:      task.Label,
		Path:       task.Path,
		Status:     OutcomeStatusFound,
		FileName:   name,
		ModifiedAt: modifiedAt,
	}
}

// EmptyOutcome records a folder that held no candidate file
func EmptyOutcome(task FolderTask, note string) Outcome {
	return Outcome{
		Account: task.Account,
		Label:   task.Label,
		Path:    task.Path,
		Status:  OutcomeStatusEmpty,
		Note:    note,
	}
}

// ErrorOutcome records a failed inspection. An empty detail is replaced
// so the outcome always explains itself.
func ErrorOutcome(task FolderTask, detail string) Outcome {
	if detail == "" {
		detail = "unknown error"
	}
	return Outcome{
		Account: task.Account,
		Label:   task.Label,
		Path:    task.Path,
		Status:  OutcomeStatusError,
		Detail:  detail,
	}
}

// WithNote returns a copy carrying an informational note
func (o Outcome) WithNote(note string) Outcome {
	o.Note = note
	return o
}

// IsFailure reports whether the outcome belongs to the failure set
func (o Outcome) IsFailure() bool {
	return o.Status == OutcomeStatusError
}

// Validate checks the per-status field invariants
func (o Outcome) Validate() error {
	if !o.Status.IsTerminal() {
		return fmt.Errorf("outcome for %s/%s is not terminal: %q", o.Account, o.Label, o.Status)
	}

	switch o.Status {
	case OutcomeStatusFound:
		if o.FileName == "" || o.ModifiedAt.IsZero() {
			return fmt.Errorf("found outcome for %s/%s missing file name or timestamp", o.Account, o.Label)
		}
		if o.Detail != "" {
			return fmt.Errorf("found outcome for %s/%s carries an error detail", o.Account, o.Label)
		}
	case OutcomeStatusEmpty:
		if o.FileName != "" || !o.ModifiedAt.IsZero() || o.Detail != "" {
			return fmt.Errorf("empty outcome for %s/%s carries file or error fields", o.Account, o.Label)
		}
	case OutcomeStatusError:
		if o.Detail == "" {
			return fmt.Errorf("error outcome for %s/%s has no detail", o.Account, o.Label)
		}
		if o.FileName != "" || !o.ModifiedAt.IsZero() {
			return fmt.Errorf("error outcome for %s/%s carries file fields", o.Account, o.Label)
		}
	}
	return nil
}
