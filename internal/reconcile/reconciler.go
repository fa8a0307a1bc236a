package reconcile

import (
	"context"
	"log/slog"
	"time"

	"feebump/internal/auditlog"
	"feebump/internal/logging"
	"feebump/internal/queue"
	"feebump/internal/relay"
	"feebump/internal/services"
)

// Result is the outcome of processing one queue snapshot.
type Result struct {
	// Remaining holds ineligible and failed requests in input order.
	Remaining queue.Queue
	// Entries has one record per attempted request in attempt order.
	Entries []auditlog.Entry
	// AnyFailure is set on the first failed attempt and never cleared.
	AnyFailure bool

	Eligible  int
	Succeeded int
	Failed    int
	Skipped   int
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithClock overrides the timestamp source for audit entries.
func WithClock(now func() time.Time) Option {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// Reconciler applies queued fee deltas through a Prioritiser.
type Reconciler struct {
	relay  relay.Prioritiser
	logger *slog.Logger
	now    func() time.Time
}

// New builds a Reconciler.
func New(prioritiser relay.Prioritiser, logger *slog.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{
		relay:  prioritiser,
		logger: logging.NewComponentLogger(logger, "reconcile"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Process attempts every eligible request sequentially. Relay failures are
// recorded against the request and do not stop the pass.
func (r *Reconciler) Process(ctx context.Context, q queue.Queue) Result {
	result := Result{
		Remaining: make(queue.Queue, 0, len(q)),
		Entries:   make([]auditlog.Entry, 0, q.Eligible()),
	}
	for _, req := range q {
		if !req.Eligible() {
			result.Skipped++
			result.Remaining = append(result.Remaining, req)
			continue
		}
		result.Eligible++

		txid := req.TxIDValue()
		feeDelta, _ := req.FeeDeltaValue()
		attemptCtx := services.WithTxID(ctx, txid)
		logger := logging.WithContext(attemptCtx, r.logger).With(
			logging.FeeDelta(feeDelta),
			logging.String("request_type", req.EventType),
		)

		err := r.relay.Prioritise(attemptCtx, txid, feeDelta)
		entry := auditlog.Entry{
			Time:     r.now(),
			TxID:     txid,
			FeeDelta: feeDelta,
		}
		if err != nil {
			entry.Outcome = auditlog.OutcomeFailed
			entry.Detail = relay.Diagnostic(err)
			result.Failed++
			result.AnyFailure = true
			result.Remaining = append(result.Remaining, req)
			logging.WarnWithContext(logger, "prioritisation failed", "relay_failed",
				logging.String("outcome", string(entry.Outcome)),
				logging.Error(err),
				logging.Hint("request stays queued and is retried next run"),
				logging.Impact("queue file will not be rewritten under batch commit"),
			)
		} else {
			entry.Outcome = auditlog.OutcomeSuccess
			result.Succeeded++
			logger.Info("prioritisation applied", logging.String("outcome", string(entry.Outcome)))
		}
		result.Entries = append(result.Entries, entry)
	}
	return result
}
