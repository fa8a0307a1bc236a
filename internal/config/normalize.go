package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRelay()
	c.Reconcile.CommitPolicy = strings.ToLower(strings.TrimSpace(c.Reconcile.CommitPolicy))
	if c.Reconcile.CommitPolicy == "" {
		c.Reconcile.CommitPolicy = defaultCommitPolicy
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout == 0 {
		c.Notifications.RequestTimeout = defaultNtfyTimeout
	}
	return c.normalizeLogging()
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.QueueFile) == "" {
		c.Paths.QueueFile = defaultQueueFile
	}
	if c.Paths.QueueFile, err = expandPath(strings.TrimSpace(c.Paths.QueueFile)); err != nil {
		return fmt.Errorf("paths.queue_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.AuditLog) == "" {
		c.Paths.AuditLog = defaultAuditLog
	}
	if c.Paths.AuditLog, err = expandPath(strings.TrimSpace(c.Paths.AuditLog)); err != nil {
		return fmt.Errorf("paths.audit_log: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(strings.TrimSpace(c.Paths.StateDir)); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRelay() {
	c.Relay.Binary = strings.TrimSpace(c.Relay.Binary)
	if c.Relay.Binary == "" {
		c.Relay.Binary = defaultRelayBinary
	}
	c.Relay.Wallet = strings.TrimSpace(c.Relay.Wallet)
	if c.Relay.Wallet == "" {
		if value, ok := os.LookupEnv(walletEnvVar); ok {
			c.Relay.Wallet = strings.TrimSpace(value)
		}
	}
	args := c.Relay.ExtraArgs[:0]
	for _, arg := range c.Relay.ExtraArgs {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			args = append(args, trimmed)
		}
	}
	c.Relay.ExtraArgs = args
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(c.Paths.StateDir, defaultHistoryName)
	}
	var err error
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if file := strings.TrimSpace(c.Logging.File); file != "" {
		expanded, err := expandPath(file)
		if err != nil {
			return fmt.Errorf("logging.file: %w", err)
		}
		c.Logging.File = expanded
	}
	return nil
}
