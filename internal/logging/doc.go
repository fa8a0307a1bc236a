// Package logging assembles structured slog loggers and formatting helpers used
// across feebump components.
//
// It owns the console and JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so reconciliation code automatically tags
// log lines with run IDs and transaction IDs. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
//
// These are diagnostic logs. The audit trail of relay attempts is written by
// internal/auditlog and never goes through slog.
package logging
