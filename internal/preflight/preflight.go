package preflight

import (
	"feebump/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Run executes all applicable checks for cfg in display order.
func Run(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckRelayBinary(cfg.RelayBinary()),
		CheckQueueFile(cfg.Paths.QueueFile),
		CheckWritableDir("Queue directory", parentDir(cfg.Paths.QueueFile)),
		CheckWritableDir("Audit log directory", parentDir(cfg.Paths.AuditLog)),
		CheckWritableDir("State directory", cfg.Paths.StateDir),
	}
	if cfg.History.Enabled {
		results = append(results, CheckHistory(cfg.History.Path))
	}
	return results
}

// Failed reports whether any check did not pass.
func Failed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return true
		}
	}
	return false
}
