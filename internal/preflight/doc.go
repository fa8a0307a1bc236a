// Package preflight verifies that a configuration can run: the relay binary
// resolves, the queue file parses, and the directories that receive the
// audit log, queue rewrites and run state are writable.
package preflight
