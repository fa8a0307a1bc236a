package history

import (
	"time"

	"feebump/internal/auditlog"
)

// Run summarises one batch run.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	CommitPolicy string
	Total        int
	Eligible     int
	Succeeded    int
	Failed       int
	Committed    bool
	// Attempts is only populated when recording.
	Attempts []Attempt
}

// Attempt is a single relay invocation within a run.
type Attempt struct {
	RunID       string
	TxID        string
	FeeDelta    int64
	Outcome     auditlog.Outcome
	Detail      string
	AttemptedAt time.Time
}

// AttemptsFromEntries converts audit entries into ledger attempts.
func AttemptsFromEntries(runID string, entries []auditlog.Entry) []Attempt {
	attempts := make([]Attempt, 0, len(entries))
	for _, entry := range entries {
		attempts = append(attempts, Attempt{
			RunID:       runID,
			TxID:        entry.TxID,
			FeeDelta:    entry.FeeDelta,
			Outcome:     entry.Outcome,
			Detail:      entry.Detail,
			AttemptedAt: entry.Time,
		})
	}
	return attempts
}

// Fixed width so lexical order in SQLite matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
