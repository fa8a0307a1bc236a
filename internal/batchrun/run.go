package batchrun

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"feebump/internal/auditlog"
	"feebump/internal/config"
	"feebump/internal/history"
	"feebump/internal/logging"
	"feebump/internal/notifications"
	"feebump/internal/queue"
	"feebump/internal/reconcile"
	"feebump/internal/relay"
	"feebump/internal/services"
)

// ErrAlreadyRunning is returned when another process holds the run lock.
var ErrAlreadyRunning = errors.New("another feebump run is in progress")

// Options controls a single run.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	// Relay overrides the client built from Config.Relay.
	Relay relay.Prioritiser
	// Notifier overrides the service built from Config.Notifications.
	Notifier notifications.Service
	// Now overrides the clock used for audit timestamps.
	Now func() time.Time
	// DryRun loads the queue and reports eligible requests without invoking
	// the relay or touching any file.
	DryRun bool
}

// Summary describes what a run did.
type Summary struct {
	RunID     string
	Total     int
	Eligible  int
	Succeeded int
	Failed    int
	Skipped   int
	Committed bool
	DryRun    bool
	// Entries are the audit records appended by this run.
	Entries []auditlog.Entry
	// Planned lists eligible requests during a dry run.
	Planned queue.Queue
}

// AnyFailure reports whether at least one attempt failed.
func (s Summary) AnyFailure() bool {
	return s.Failed > 0
}

// NewRelay builds the relay client described by cfg.
func NewRelay(cfg *config.Config) (*relay.Client, error) {
	return relay.New(
		cfg.RelayBinary(),
		relay.WithWallet(cfg.Relay.Wallet),
		relay.WithExtraArgs(cfg.Relay.ExtraArgs...),
		relay.WithTimeout(time.Duration(cfg.Relay.TimeoutSeconds)*time.Second),
	)
}

// Run performs one pass over the queue. Relay failures are reported through
// the Summary; the returned error is reserved for problems that stop the run.
func Run(ctx context.Context, opts Options) (Summary, error) {
	cfg := opts.Config
	if cfg == nil {
		return Summary{}, services.Wrap(services.ErrConfiguration, "batchrun", "run", "config required", nil)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return Summary{}, services.NewStorageError("prepare", cfg.Paths.StateDir, err)
	}

	lock := flock.New(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return Summary{}, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return Summary{}, ErrAlreadyRunning
	}
	defer func() { _ = lock.Unlock() }()

	summary := Summary{RunID: uuid.NewString(), DryRun: opts.DryRun}
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, "batchrun"))
	started := now()

	store := queue.NewStore(cfg.Paths.QueueFile, logger)
	pending, err := store.Load()
	if err != nil {
		return summary, err
	}
	summary.Total = len(pending)

	if opts.DryRun {
		for _, req := range pending {
			if req.Eligible() {
				summary.Planned = append(summary.Planned, req)
			}
		}
		summary.Eligible = len(summary.Planned)
		summary.Skipped = summary.Total - summary.Eligible
		logger.Info("dry run complete",
			logging.Event("dry_run"),
			logging.Int("total", summary.Total),
			logging.Int("eligible", summary.Eligible),
		)
		return summary, nil
	}

	audit := auditlog.New(cfg.Paths.AuditLog)
	if err := audit.Probe(); err != nil {
		return summary, err
	}

	prioritiser := opts.Relay
	if prioritiser == nil {
		client, err := NewRelay(cfg)
		if err != nil {
			return summary, services.Wrap(services.ErrConfiguration, "batchrun", "relay", "build relay client", err)
		}
		prioritiser = client
	}

	result := reconcile.New(prioritiser, opts.Logger, reconcile.WithClock(now)).Process(ctx, pending)
	summary.Eligible = result.Eligible
	summary.Succeeded = result.Succeeded
	summary.Failed = result.Failed
	summary.Skipped = result.Skipped
	summary.Entries = result.Entries

	if err := audit.Append(result.Entries); err != nil {
		logging.ErrorWithContext(logger, "audit log append failed after relay calls", "audit_append_failed",
			logging.Error(err),
			logging.Int("unlogged_attempts", len(result.Entries)),
			logging.Hint("check permissions and free space for "+audit.Path()),
		)
		return summary, err
	}

	if !result.AnyFailure || cfg.PerItemCommit() {
		if err := store.Save(result.Remaining); err != nil {
			return summary, err
		}
		summary.Committed = true
	} else {
		logging.WarnWithContext(logger, "queue left unchanged after failed attempts", "commit_skipped",
			logging.Int("failed", result.Failed),
			logging.Impact("all eligible requests will be retried next run"),
		)
	}

	recordHistory(ctx, cfg, logger, summary, started, now())
	notify(ctx, opts.Notifier, cfg, logger, summary)

	logger.Info("run complete",
		logging.Event("run_complete"),
		logging.Int("total", summary.Total),
		logging.Int("eligible", summary.Eligible),
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Bool("committed", summary.Committed),
	)
	return summary, nil
}

// recordHistory writes the run to the ledger. Ledger failures are logged and
// never change the outcome of the run.
func recordHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger, summary Summary, started, finished time.Time) {
	if !cfg.History.Enabled {
		return
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		logging.WarnWithContext(logger, "history ledger unavailable", "history_open_failed",
			logging.Error(err),
			logging.Impact("run not recorded in history"),
		)
		return
	}
	defer store.Close()

	run := history.Run{
		ID:           summary.RunID,
		StartedAt:    started,
		FinishedAt:   finished,
		CommitPolicy: cfg.Reconcile.CommitPolicy,
		Total:        summary.Total,
		Eligible:     summary.Eligible,
		Succeeded:    summary.Succeeded,
		Failed:       summary.Failed,
		Committed:    summary.Committed,
		Attempts:     history.AttemptsFromEntries(summary.RunID, summary.Entries),
	}
	if err := store.Record(ctx, run); err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_record_failed",
			logging.Error(err),
			logging.Impact("run not recorded in history"),
		)
	}
}

// notify announces the outcome. Delivery failures are logged only.
func notify(ctx context.Context, svc notifications.Service, cfg *config.Config, logger *slog.Logger, summary Summary) {
	if svc == nil {
		svc = notifications.NewService(cfg)
	}
	report := notifications.RunReport{
		RunID:     summary.RunID,
		Eligible:  summary.Eligible,
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
		Committed: summary.Committed,
	}
	for _, entry := range summary.Entries {
		if !entry.Succeeded() {
			report.FailedTxIDs = append(report.FailedTxIDs, entry.TxID)
		}
	}

	var err error
	if summary.AnyFailure() {
		err = svc.NotifyRunFailed(ctx, report)
	} else {
		err = svc.NotifyRunCompleted(ctx, report)
	}
	if err != nil {
		logging.WarnWithContext(logger, "notification failed", "notify_failed",
			logging.Error(err),
			logging.Impact("run outcome not announced"),
		)
	}
}
