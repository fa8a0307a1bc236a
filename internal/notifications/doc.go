// Package notifications announces run outcomes via ntfy.
//
// A run with failed attempts always produces an alert when a topic is
// configured; clean runs are only announced with notifications.notify_success.
// Without a topic NewService returns a no-op implementation so callers never
// need to branch on configuration.
package notifications
