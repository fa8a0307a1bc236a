// Package main hosts the feebump CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration lazily, then hands off to the
// internal packages: batchrun for a reconciliation pass, queue for listing
// pending requests, history for the attempt ledger, and preflight for
// environment checks. Keep this package thin; behaviour belongs in internal/.
package main
