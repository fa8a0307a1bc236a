package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"feebump/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp paths per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.QueueFile = filepath.Join(base, "data", "acceleration-logs.json")
	cfgVal.Paths.AuditLog = filepath.Join(base, "data", "results.log")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.History.Path = filepath.Join(base, "state", "history.db")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithCommitPolicy overrides the commit policy.
func WithCommitPolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Reconcile.CommitPolicy = policy
	}
}

// WithHistoryDisabled turns off the history ledger.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithStubbedRelay writes a stub bitcoin-cli and prepends it to PATH. The stub
// appends its arguments to CallsPath and exits 1 with "error code: -5" on
// stderr when any argument matches one of the failing txids.
func WithStubbedRelay(failing ...string) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}

		var script strings.Builder
		script.WriteString("#!/bin/sh\n")
		script.WriteString("echo \"$*\" >> '" + filepath.Join(b.baseDir, callsFile) + "'\n")
		if len(failing) > 0 {
			script.WriteString("for arg in \"$@\"; do\n  case \"$arg\" in\n    ")
			script.WriteString(strings.Join(failing, "|"))
			script.WriteString(")\n      echo \"error code: -5\" >&2\n      exit 1\n      ;;\n  esac\ndone\n")
		}
		script.WriteString("exit 0\n")

		target := filepath.Join(binDir, "bitcoin-cli")
		if err := os.WriteFile(target, []byte(script.String()), 0o755); err != nil {
			b.t.Fatalf("write stub bitcoin-cli: %v", err)
		}
		b.cfg.Relay.Binary = "bitcoin-cli"
		b.t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}
}

const callsFile = "relay-calls.log"

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// CallsPath returns the file the stubbed relay records invocations in.
func CallsPath(cfg *config.Config) string {
	return filepath.Join(BaseDir(cfg), callsFile)
}

// RelayCalls returns one line per stubbed relay invocation.
func RelayCalls(t testing.TB, cfg *config.Config) []string {
	t.Helper()
	data, err := os.ReadFile(CallsPath(cfg))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("read relay calls: %v", err)
	}
	trimmed := strings.TrimSuffix(string(data), "\n")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}
