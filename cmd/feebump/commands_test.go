package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"feebump/internal/queue"
	"feebump/internal/testsupport"
)

var (
	txA = testsupport.TxID(0xa)
	txB = testsupport.TxID(0xb)
)

func writeQueue(t *testing.T, env *cliTestEnv) string {
	t.Helper()
	content := testsupport.QueueDocument(
		testsupport.QueueRequest(txA, testsupport.Fee(1000000), queue.EventLegacy),
		testsupport.QueueRequest(txB, testsupport.Fee(500), queue.EventAdded),
		testsupport.QueueRequest("", nil, "broadcast"),
	)
	testsupport.WriteFile(t, env.cfg.Paths.QueueFile, content)
	return content
}

func TestRunCommandCommitsOnSuccess(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedRelay())
	writeQueue(t, env)

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "Processed 2 of 3 requests: 2 succeeded, 0 failed")
	requireContains(t, out, "Queue updated")
	requireContains(t, out, "1,000,000 sat")

	if lines := testsupport.LogLines(t, env.cfg.Paths.AuditLog); len(lines) != 2 {
		t.Fatalf("expected 2 audit lines, got %q", lines)
	}
}

func TestRunCommandLeavesQueueOnFailure(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedRelay(txB))
	original := writeQueue(t, env)

	out, _, err := runCLI(t, []string{"run"}, env.configPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "1 succeeded, 1 failed")
	requireContains(t, out, "[FAIL] 500 sat: error code: -5")
	requireContains(t, out, "Queue unchanged")
	if got := testsupport.ReadFile(t, env.cfg.Paths.QueueFile); got != original {
		t.Fatal("queue file modified after failed run")
	}
}

func TestRunCommandDryRun(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedRelay())
	writeQueue(t, env)

	out, _, err := runCLI(t, []string{"run", "--dry-run"}, env.configPath)
	if err != nil {
		t.Fatalf("run --dry-run: %v", err)
	}
	requireContains(t, out, "Dry run: 2 of 3 requests eligible")
	requireContains(t, out, txA)
	requireContains(t, out, "Legacy")
	if calls := testsupport.RelayCalls(t, env.cfg); len(calls) != 0 {
		t.Fatalf("dry run invoked relay: %q", calls)
	}
}

func TestRunCommandMissingQueueFails(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedRelay())
	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err == nil {
		t.Fatal("expected error for missing queue file")
	}
}

func TestQueueList(t *testing.T) {
	env := setupCLITestEnv(t)
	writeQueue(t, env)

	out, _, err := runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "Broadcast")
	requireContains(t, out, "Added")
	requireContains(t, out, "0.01 BTC")
	requireContains(t, out, "1,000,500")
	requireContains(t, out, "3 of 3 requests shown")

	out, _, err = runCLI(t, []string{"queue", "list", "--eligible"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list --eligible: %v", err)
	}
	requireContains(t, out, "2 of 3 requests shown")
	if strings.Contains(out, "Broadcast") {
		t.Fatalf("ineligible request shown: %s", out)
	}
}

func TestQueueListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteFile(t, env.cfg.Paths.QueueFile, testsupport.QueueDocument())
	out, _, err := runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestHistoryCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedRelay(txB))
	writeQueue(t, env)

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history before runs: %v", err)
	}
	requireContains(t, out, "No runs recorded")

	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err != nil {
		t.Fatalf("run: %v", err)
	}

	out, _, err = runCLI(t, []string{"history", "--limit", "5"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "batch")
	if strings.Contains(out, "No runs recorded") {
		t.Fatalf("expected the run to be listed: %s", out)
	}

	out, _, err = runCLI(t, []string{"history", "--txid", txB}, env.configPath)
	if err != nil {
		t.Fatalf("history --txid: %v", err)
	}
	requireContains(t, out, "Failed")
	requireContains(t, out, "error code: -5")
}

func TestHistoryDisabled(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithHistoryDisabled())
	if _, _, err := runCLI(t, []string{"history"}, env.configPath); err == nil {
		t.Fatal("expected error when history disabled")
	}
}

func TestCheckCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedRelay())
	writeQueue(t, env)
	if err := env.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	out, _, err := runCLI(t, []string{"check"}, env.configPath)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "Relay binary:")
	requireContains(t, out, "3 requests, 2 eligible")

	if err := os.Remove(env.cfg.Paths.QueueFile); err != nil {
		t.Fatalf("remove queue: %v", err)
	}
	out, _, err = runCLI(t, []string{"check"}, env.configPath)
	if err == nil {
		t.Fatal("expected check to fail without queue file")
	}
	requireContains(t, out, "[FAIL]")
}

func TestConfigInitValidateShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, env.cfg.Paths.QueueFile)
	requireContains(t, out, "commit_policy")
	requireContains(t, out, "batch")

	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected init to refuse overwriting without --overwrite")
	}
	if _, _, err := runCLI(t, []string{"config", "validate"}, target); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}

func TestInvalidConfigIsReported(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.configPath, []byte("[reconcile]\ncommit_policy = \"sometimes\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, err := runCLI(t, []string{"queue", "list"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "commit_policy") {
		t.Fatalf("expected commit_policy error, got %v", err)
	}
}

func TestLogCommand(t *testing.T) {
	env := setupCLITestEnv(t, testsupport.WithStubbedRelay(txB))
	writeQueue(t, env)

	out, _, err := runCLI(t, []string{"log"}, env.configPath)
	if err != nil {
		t.Fatalf("log before runs: %v", err)
	}
	requireContains(t, out, "No audit entries")

	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err != nil {
		t.Fatalf("run: %v", err)
	}
	// bitcoin-cli prints multi-line diagnostics; they follow the failed entry.
	f, err := os.OpenFile(env.cfg.Paths.AuditLog, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open audit log: %v", err)
	}
	_, _ = f.WriteString("error message:\nTransaction not in mempool\n")
	_ = f.Close()
	if _, _, err := runCLI(t, []string{"run"}, env.configPath); err != nil {
		t.Fatalf("second run: %v", err)
	}

	out, _, err = runCLI(t, []string{"log", "--failed"}, env.configPath)
	if err != nil {
		t.Fatalf("log --failed: %v", err)
	}
	requireContains(t, out, txB)
	requireContains(t, out, "Transaction not in mempool")
	if strings.Contains(out, txA) || strings.Contains(out, "unrecognised") {
		t.Fatalf("unexpected --failed output: %s", out)
	}

	out, _, err = runCLI(t, []string{"log", "--failed", "--raw"}, env.configPath)
	if err != nil {
		t.Fatalf("log --failed --raw: %v", err)
	}
	if got := strings.Count(out, "\n"); got != 4 {
		t.Fatalf("expected 4 raw lines, got %d: %q", got, out)
	}
	requireContains(t, out, "error message:\nTransaction not in mempool\n")

	out, _, err = runCLI(t, []string{"log", "--failed", "--raw", "-n", "1"}, env.configPath)
	if err != nil {
		t.Fatalf("log --failed --raw -n 1: %v", err)
	}
	if got := strings.Count(out, "\n"); got != 1 || !strings.Contains(out, txB) {
		t.Fatalf("expected only the latest failure, got %q", out)
	}

	out, _, err = runCLI(t, []string{"log", "--raw", "-n", "4"}, env.configPath)
	if err != nil {
		t.Fatalf("log --raw: %v", err)
	}
	if got := strings.Count(out, "\n"); got != 4 {
		t.Fatalf("expected 4 raw lines, got %d: %q", got, out)
	}
	requireContains(t, out, "Transaction not in mempool")

	out, _, err = runCLI(t, []string{"log", "-n", "4"}, env.configPath)
	if err != nil {
		t.Fatalf("log -n 4: %v", err)
	}
	requireContains(t, out, "2 unrecognised lines skipped")
}

func TestTestNotifyRequiresTopic(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, _, err := runCLI(t, []string{"test-notify"}, env.configPath); err == nil {
		t.Fatal("expected error without ntfy topic")
	}
}

func TestTestNotifySendsToTopic(t *testing.T) {
	var titles []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		titles = append(titles, r.Header.Get("Title"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	env := setupCLITestEnv(t)
	env.cfg.Notifications.NtfyTopic = srv.URL + "/feebump"
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, []string{"test-notify"}, env.configPath)
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	requireContains(t, out, "Test notification sent")
	if len(titles) != 1 || titles[0] != "feebump - Test" {
		t.Fatalf("unexpected requests %v", titles)
	}
}
