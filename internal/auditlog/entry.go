package auditlog

import (
	"strconv"
	"strings"
	"time"
)

// Outcome is the result of a single relay attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "Success"
	OutcomeFailed  Outcome = "Failed"
)

const timestampLayout = "2006-01-02 15:04:05"

// Entry records one attempted prioritisation.
type Entry struct {
	Time     time.Time
	Outcome  Outcome
	TxID     string
	FeeDelta int64
	// Detail is the diagnostic for failed attempts.
	Detail string
}

// Succeeded reports whether the attempt was a success.
func (e Entry) Succeeded() bool {
	return e.Outcome == OutcomeSuccess
}

// Line renders the entry without a trailing newline.
func (e Entry) Line() string {
	var b strings.Builder
	b.WriteString(e.Time.UTC().Format(timestampLayout))
	b.WriteString(" UTC: ")
	b.WriteString(string(e.Outcome))
	b.WriteString(" - txid: ")
	b.WriteString(e.TxID)
	b.WriteString(", fee_delta: ")
	b.WriteString(strconv.FormatInt(e.FeeDelta, 10))
	if e.Outcome != OutcomeSuccess {
		b.WriteString(", error: ")
		b.WriteString(e.Detail)
	}
	return b.String()
}
