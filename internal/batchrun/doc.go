// Package batchrun executes one reconciliation pass end to end: it takes the
// run lock, loads the queue, probes the audit log, sends eligible requests to
// the relay, appends the audit entries, commits the queue according to the
// configured policy and records the run in the history ledger.
//
// Under the default batch policy the queue file is rewritten only when every
// attempt succeeded, so a partially failed run leaves it byte-for-byte intact
// and the next run retries everything that was eligible.
package batchrun
