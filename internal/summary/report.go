package summary

import (
	"fmt"
	"sort"
	"sync"

	"thoughtforest/internal/models"
)

// Outcome is the result of one user's job.
type Outcome string

const (
	OutcomeSummarized Outcome = "summarized"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeQueued     Outcome = "queued"
	OutcomeFailed     Outcome = "failed"
)

// Failure records why one user's job did not produce a summary.
type Failure struct {
	UserID string `json:"user_id"`
	Error  string `json:"error"`
}

// Report describes one aggregation pass.
type Report struct {
	WeekStart  models.Date `json:"week_start"`
	Users      int         `json:"users"`
	Summarized int         `json:"summarized"`
	Skipped    int         `json:"skipped"`
	Queued     int         `json:"queued"`
	Failed     int         `json:"failed"`
	Failures   []Failure   `json:"failures,omitempty"`

	mu sync.Mutex
}

func (r *Report) record(userID string, outcome Outcome, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch outcome {
	case OutcomeSummarized:
		r.Summarized++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeQueued:
		r.Queued++
	default:
		r.Failed++
		msg := "unknown error"
		if err != nil {
			msg = err.Error()
		}
		r.Failures = append(r.Failures, Failure{UserID: userID, Error: msg})
	}
}

func (r *Report) sortFailures() {
	sort.Slice(r.Failures, func(i, j int) bool { return r.Failures[i].UserID < r.Failures[j].UserID })
}

// String renders the one-line status printed by the weekly command.
func (r *Report) String() string {
	s := fmt.Sprintf("Weekly summaries for week of %s: %d users, %d summarized, %d skipped, %d failed",
		r.WeekStart, r.Users, r.Summarized, r.Skipped, r.Failed)
	if r.Queued > 0 {
		s += fmt.Sprintf(", %d queued", r.Queued)
	}
	return s
}
