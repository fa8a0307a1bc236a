package batchrun_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"feebump/internal/batchrun"
	"feebump/internal/config"
	"feebump/internal/logging"
	"feebump/internal/notifications"
	"feebump/internal/queue"
	"feebump/internal/services"
	"feebump/internal/testsupport"
)

var (
	txA = testsupport.TxID(0xa)
	txB = testsupport.TxID(0xb)
)

func twoRequestQueue() string {
	return testsupport.QueueDocument(
		testsupport.QueueRequest(txA, testsupport.Fee(1000), queue.EventLegacy),
		testsupport.QueueRequest(txB, testsupport.Fee(500), queue.EventAdded),
	)
}

func run(t *testing.T, cfg *config.Config, dryRun bool) batchrun.Summary {
	t.Helper()
	summary, err := batchrun.Run(context.Background(), batchrun.Options{
		Config: cfg,
		Logger: logging.NewNop(),
		DryRun: dryRun,
		Now:    func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	return summary
}

func loadQueue(t *testing.T, cfg *config.Config) queue.Queue {
	t.Helper()
	q, err := queue.NewStore(cfg.Paths.QueueFile, nil).Load()
	if err != nil {
		t.Fatalf("load queue: %v", err)
	}
	return q
}

func TestRunAllSucceedCommitsEmptyQueue(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedRelay())
	testsupport.WriteFile(t, cfg.Paths.QueueFile, twoRequestQueue())

	summary := run(t, cfg, false)

	if !summary.Committed || summary.Succeeded != 2 || summary.Failed != 0 || summary.Eligible != 2 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.RunID == "" {
		t.Fatal("expected run id")
	}
	if q := loadQueue(t, cfg); len(q) != 0 {
		t.Fatalf("expected empty queue, got %d requests", len(q))
	}
	if content := testsupport.ReadFile(t, cfg.Paths.QueueFile); !strings.Contains(content, `"accelerations": []`) {
		t.Fatalf("expected empty accelerations array, got %q", content)
	}

	lines := testsupport.LogLines(t, cfg.Paths.AuditLog)
	want := []string{
		"2024-05-01 12:00:00 UTC: Success - txid: " + txA + ", fee_delta: 1000",
		"2024-05-01 12:00:00 UTC: Success - txid: " + txB + ", fee_delta: 500",
	}
	if strings.Join(lines, "\n") != strings.Join(want, "\n") {
		t.Fatalf("log lines = %q, want %q", lines, want)
	}

	calls := testsupport.RelayCalls(t, cfg)
	if len(calls) != 2 || calls[0] != "prioritisetransaction "+txA+" 0.0 1000" {
		t.Fatalf("unexpected relay calls %q", calls)
	}
}

func TestRunPartialFailureLeavesQueueByteIdentical(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedRelay(txB))
	original := twoRequestQueue()
	testsupport.WriteFile(t, cfg.Paths.QueueFile, original)

	summary := run(t, cfg, false)

	if summary.Committed || summary.Succeeded != 1 || summary.Failed != 1 || !summary.AnyFailure() {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if got := testsupport.ReadFile(t, cfg.Paths.QueueFile); got != original {
		t.Fatalf("queue file changed:\n%s", got)
	}
	lines := testsupport.LogLines(t, cfg.Paths.AuditLog)
	if len(lines) != 2 {
		t.Fatalf("expected 2 log lines, got %q", lines)
	}
	if !strings.Contains(lines[0], "Success - txid: "+txA) {
		t.Fatalf("first line %q", lines[0])
	}
	if !strings.HasSuffix(lines[1], "Failed - txid: "+txB+", fee_delta: 500, error: error code: -5") {
		t.Fatalf("second line %q", lines[1])
	}
}

func TestRunIneligibleRequestPassesThrough(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedRelay())
	testsupport.WriteFile(t, cfg.Paths.QueueFile, testsupport.QueueDocument(
		testsupport.QueueRequest("", nil, "broadcast"),
	))

	summary := run(t, cfg, false)

	if summary.Eligible != 0 || summary.Skipped != 1 || !summary.Committed {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if calls := testsupport.RelayCalls(t, cfg); len(calls) != 0 {
		t.Fatalf("unexpected relay calls %q", calls)
	}
	if lines := testsupport.LogLines(t, cfg.Paths.AuditLog); len(lines) != 0 {
		t.Fatalf("unexpected log lines %q", lines)
	}
	q := loadQueue(t, cfg)
	if len(q) != 1 || q[0].EventType != "broadcast" || q[0].TxID != nil || q[0].EffectiveFee != 2820 {
		t.Fatalf("request not preserved: %+v", q)
	}
}

func TestRunIsIdempotentAfterSuccess(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedRelay())
	testsupport.WriteFile(t, cfg.Paths.QueueFile, twoRequestQueue())

	run(t, cfg, false)
	second := run(t, cfg, false)

	if second.Eligible != 0 || len(second.Entries) != 0 {
		t.Fatalf("second run should have nothing to do: %+v", second)
	}
	if lines := testsupport.LogLines(t, cfg.Paths.AuditLog); len(lines) != 2 {
		t.Fatalf("expected log unchanged by second run, got %d lines", len(lines))
	}
	if calls := testsupport.RelayCalls(t, cfg); len(calls) != 2 {
		t.Fatalf("expected no relay calls on second run, got %q", calls)
	}
}

func TestRunRetriesEverythingAfterFailedBatch(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedRelay(txB))
	testsupport.WriteFile(t, cfg.Paths.QueueFile, twoRequestQueue())

	run(t, cfg, false)
	second := run(t, cfg, false)

	if second.Eligible != 2 {
		t.Fatalf("expected both requests retried, got %+v", second)
	}
	if lines := testsupport.LogLines(t, cfg.Paths.AuditLog); len(lines) != 4 {
		t.Fatalf("expected one line per attempt across runs, got %d", len(lines))
	}
}

func TestRunPerItemCommitDropsSettledRequests(t *testing.T) {
	cfg := testsupport.NewConfig(t,
		testsupport.WithStubbedRelay(txB),
		testsupport.WithCommitPolicy(config.CommitPerItem),
	)
	testsupport.WriteFile(t, cfg.Paths.QueueFile, testsupport.QueueDocument(
		testsupport.QueueRequest(txA, testsupport.Fee(1000), queue.EventLegacy),
		testsupport.QueueRequest("", nil, "broadcast"),
		testsupport.QueueRequest(txB, testsupport.Fee(500), queue.EventAdded),
	))

	summary := run(t, cfg, false)

	if !summary.Committed || summary.Failed != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	q := loadQueue(t, cfg)
	if len(q) != 2 || q[0].EventType != "broadcast" || q[1].TxIDValue() != txB {
		t.Fatalf("unexpected remaining queue %+v", q)
	}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedRelay())
	original := twoRequestQueue()
	testsupport.WriteFile(t, cfg.Paths.QueueFile, original)

	summary := run(t, cfg, true)

	if !summary.DryRun || summary.Eligible != 2 || len(summary.Planned) != 2 || summary.Committed {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if calls := testsupport.RelayCalls(t, cfg); len(calls) != 0 {
		t.Fatalf("dry run invoked relay: %q", calls)
	}
	if _, err := os.Stat(cfg.Paths.AuditLog); !os.IsNotExist(err) {
		t.Fatalf("dry run created audit log: %v", err)
	}
	if got := testsupport.ReadFile(t, cfg.Paths.QueueFile); got != original {
		t.Fatal("dry run modified queue file")
	}
}

func TestRunUnwritableAuditLogStopsBeforeRelay(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedRelay())
	original := twoRequestQueue()
	testsupport.WriteFile(t, cfg.Paths.QueueFile, original)
	if err := os.MkdirAll(cfg.Paths.AuditLog, 0o755); err != nil {
		t.Fatalf("make audit log a directory: %v", err)
	}

	_, err := batchrun.Run(context.Background(), batchrun.Options{Config: cfg, Logger: logging.NewNop()})
	if !errors.Is(err, services.ErrStorage) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if calls := testsupport.RelayCalls(t, cfg); len(calls) != 0 {
		t.Fatalf("relay invoked despite audit failure: %q", calls)
	}
	if got := testsupport.ReadFile(t, cfg.Paths.QueueFile); got != original {
		t.Fatal("queue file modified")
	}
}

func TestRunMissingQueueFileIsFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedRelay())
	_, err := batchrun.Run(context.Background(), batchrun.Options{Config: cfg, Logger: logging.NewNop()})
	var storageErr *services.StorageError
	if !errors.As(err, &storageErr) || storageErr.Op != "load" {
		t.Fatalf("expected load StorageError, got %v", err)
	}
}

func TestRunRejectsConcurrentRun(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedRelay())
	testsupport.WriteFile(t, cfg.Paths.QueueFile, twoRequestQueue())
	if err := os.MkdirAll(cfg.Paths.StateDir, 0o755); err != nil {
		t.Fatalf("mkdir state: %v", err)
	}
	held := flock.New(cfg.LockPath())
	if ok, err := held.TryLock(); err != nil || !ok {
		t.Fatalf("hold lock: %v %v", ok, err)
	}
	defer held.Unlock()

	_, err := batchrun.Run(context.Background(), batchrun.Options{Config: cfg, Logger: logging.NewNop()})
	if !errors.Is(err, batchrun.ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
	if calls := testsupport.RelayCalls(t, cfg); len(calls) != 0 {
		t.Fatalf("relay invoked while locked: %q", calls)
	}
}

func TestRunRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedRelay(txB))
	testsupport.WriteFile(t, cfg.Paths.QueueFile, twoRequestQueue())

	summary := run(t, cfg, false)

	store := testsupport.MustOpenHistory(t, cfg)
	runs, err := store.RecentRuns(context.Background(), 5)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != summary.RunID || runs[0].Failed != 1 || runs[0].Committed {
		t.Fatalf("unexpected history %+v", runs)
	}
	attempts, err := store.AttemptsForTx(context.Background(), txB)
	if err != nil {
		t.Fatalf("AttemptsForTx: %v", err)
	}
	if len(attempts) != 1 || attempts[0].Detail != "error code: -5" {
		t.Fatalf("unexpected attempts %+v", attempts)
	}
}

func TestRunWithoutHistoryCreatesNoLedger(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedRelay(), testsupport.WithHistoryDisabled())
	testsupport.WriteFile(t, cfg.Paths.QueueFile, twoRequestQueue())

	run(t, cfg, false)

	if _, err := os.Stat(cfg.History.Path); !os.IsNotExist(err) {
		t.Fatalf("expected no history database, stat err=%v", err)
	}
}

func TestRunUsesInjectedRelay(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteFile(t, cfg.Paths.QueueFile, twoRequestQueue())
	fake := &recordingRelay{}

	summary, err := batchrun.Run(context.Background(), batchrun.Options{Config: cfg, Relay: fake})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.Succeeded != 2 || len(fake.txids) != 2 {
		t.Fatalf("unexpected summary %+v calls %v", summary, fake.txids)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.StateDir, "feebump.lock")); err != nil {
		t.Fatalf("expected lock file: %v", err)
	}
}

type recordingRelay struct {
	txids []string
}

func (r *recordingRelay) Prioritise(_ context.Context, txid string, _ int64) error {
	r.txids = append(r.txids, txid)
	return nil
}

type recordingNotifier struct {
	failed    []notifications.RunReport
	completed []notifications.RunReport
}

func (r *recordingNotifier) NotifyRunFailed(_ context.Context, report notifications.RunReport) error {
	r.failed = append(r.failed, report)
	return nil
}

func (r *recordingNotifier) NotifyRunCompleted(_ context.Context, report notifications.RunReport) error {
	r.completed = append(r.completed, report)
	return errors.New("ntfy down")
}

func (r *recordingNotifier) TestNotification(context.Context) error { return nil }

func TestRunNotifiesOutcome(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedRelay(txB))
	testsupport.WriteFile(t, cfg.Paths.QueueFile, twoRequestQueue())
	notifier := &recordingNotifier{}

	if _, err := batchrun.Run(context.Background(), batchrun.Options{Config: cfg, Notifier: notifier}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(notifier.failed) != 1 || len(notifier.completed) != 0 {
		t.Fatalf("expected one failure notification, got %+v", notifier)
	}
	if got := notifier.failed[0].FailedTxIDs; len(got) != 1 || got[0] != txB {
		t.Fatalf("unexpected failed txids %v", got)
	}
}

func TestRunNotifierErrorIsNotFatal(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedRelay())
	testsupport.WriteFile(t, cfg.Paths.QueueFile, twoRequestQueue())
	notifier := &recordingNotifier{}

	summary, err := batchrun.Run(context.Background(), batchrun.Options{Config: cfg, Notifier: notifier})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !summary.Committed || len(notifier.completed) != 1 {
		t.Fatalf("unexpected summary %+v notifier %+v", summary, notifier)
	}
}

func TestRunRequiresConfig(t *testing.T) {
	if _, err := batchrun.Run(context.Background(), batchrun.Options{}); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
