// Package auditlog appends one human-readable line per relay attempt to a
// plain-text file that is never truncated.
//
// Lines look like
//
//	2024-05-01 12:00:00 UTC: Success - txid: <txid>, fee_delta: 1000
//	2024-05-01 12:00:01 UTC: Failed - txid: <txid>, fee_delta: 500, error: <message>
//
// The batch runner writes every entry of a run, whether or not the queue file
// is rewritten afterwards.
package auditlog
