// Package reconcile walks a queue once, sending every eligible request to the
// relay and partitioning the queue into what remains pending and what was
// applied. It produces one audit entry per attempted request and latches a
// failure flag the batch runner uses to decide whether to commit.
package reconcile
