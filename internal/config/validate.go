package config

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRelay(); err != nil {
		return err
	}
	if err := c.validateReconcile(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if c.Paths.QueueFile == "" {
		return errors.New("paths.queue_file must be set")
	}
	if c.Paths.AuditLog == "" {
		return errors.New("paths.audit_log must be set")
	}
	if filepath.Clean(c.Paths.QueueFile) == filepath.Clean(c.Paths.AuditLog) {
		return errors.New("paths.queue_file and paths.audit_log must differ")
	}
	if c.Paths.StateDir == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateRelay() error {
	if strings.ContainsAny(c.Relay.Binary, " \t\n") && !filepath.IsAbs(c.Relay.Binary) {
		return fmt.Errorf("relay.binary %q must be a single executable name or absolute path", c.Relay.Binary)
	}
	if c.Relay.TimeoutSeconds < 0 {
		return errors.New("relay.timeout_seconds must be >= 0")
	}
	for _, arg := range c.Relay.ExtraArgs {
		if !strings.HasPrefix(arg, "-") {
			return fmt.Errorf("relay.extra_args entry %q must be a flag (start with '-')", arg)
		}
		if strings.HasPrefix(arg, "-rpcwallet") {
			return errors.New("relay.extra_args must not set -rpcwallet; use relay.wallet")
		}
	}
	return nil
}

func (c *Config) validateReconcile() error {
	switch c.Reconcile.CommitPolicy {
	case CommitBatch, CommitPerItem:
		return nil
	default:
		return fmt.Errorf("reconcile.commit_policy must be %q or %q, got %q", CommitBatch, CommitPerItem, c.Reconcile.CommitPolicy)
	}
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout < 0 {
		return errors.New("notifications.request_timeout must be >= 0")
	}
	topic := c.Notifications.NtfyTopic
	if topic == "" {
		return nil
	}
	parsed, err := url.Parse(topic)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		return fmt.Errorf("notifications.ntfy_topic %q must be an http(s) URL", topic)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}
