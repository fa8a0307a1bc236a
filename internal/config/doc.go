// Package config loads, normalizes, and validates feebump configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the FEEBUMP_RPC_WALLET environment
// fallback. The Config type centralizes every knob the CLI and batch runner
// need: queue and audit log locations, relay invocation, commit policy, history
// ledger, and logging.
//
// Always obtain settings through this package so downstream code receives
// absolute paths and clear validation errors.
package config
