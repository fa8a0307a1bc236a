// Package services defines shared utilities consumed by the reconciliation
// pipeline and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers, transaction IDs, and
//     component names for logging and tracing.
//   - Structured error markers plus the Wrap helper so fatal storage failures
//     and per-request relay failures can be told apart with errors.Is.
//   - The StorageError type shared by the queue store and the audit log.
//
// Use these helpers when wiring new components so operational behaviour
// (error classification, observability) stays uniform across the pipeline.
package services
