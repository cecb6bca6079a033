package domain

import (
	"time"
)

// RunResult is the ordered collection of outcomes for one scan run
type RunResult struct {
	RunID       string    `json:"run_id"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	Outcomes    []Outcome `json:"outcomes"`
}

// Successes returns outcomes whose status is found or empty, in run order
func (r *RunResult) Successes() []Outcome {
	out := make([]Outcome, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if !o.IsFailure() {
			out = append(out, o)
		}
	}
	return out
}

// Failures returns outcomes whose status is error, in run order
func (r *RunResult) Failures() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.IsFailure() {
			out = append(out, o)
		}
	}
	return out
}

// Duration returns the wall-clock time of the run
func (r *RunResult) Duration() time.Duration {
	return r.CompletedAt.Sub(r.StartedAt)
}

// RunSummary holds counts per outcome status
type RunSummary struct {
	Total  int `json:"total"`
	Found  int `json:"found"`
	Empty  int `json:"empty"`
	Failed int `json:"failed"`
}

// Summary counts outcomes by status
func (r *RunResult) Summary() RunSummary {
	s := RunSummary{Total: len(r.Outcomes)}
	for _, o := range r.Outcomes {
		switch o.Status {
		case OutcomeStatusFound:
			s.Found++
		case OutcomeStatusEmpty:
			s.Empty++
		case OutcomeStatusError:
			s.Failed++
		}
	}
	return s
}
