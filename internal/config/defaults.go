package config

const (
	defaultConfigPath   = "~/.config/feebump/config.toml"
	projectConfigName   = "feebump.toml"
	defaultQueueFile    = "~/.local/share/feebump/acceleration-logs.json"
	defaultAuditLog     = "~/.local/share/feebump/results.log"
	defaultStateDir     = "~/.local/state/feebump"
	defaultHistoryName  = "history.db"
	defaultRelayBinary  = "bitcoin-cli"
	defaultLogFormat    = "console"
	defaultLogLevel     = "info"
	lockFileName        = "feebump.lock"
	walletEnvVar        = "FEEBUMP_RPC_WALLET"
	CommitBatch         = "batch"
	CommitPerItem       = "per_item"
	defaultCommitPolicy = CommitBatch
	defaultNtfyTimeout  = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			QueueFile: defaultQueueFile,
			AuditLog:  defaultAuditLog,
			StateDir:  defaultStateDir,
		},
		Relay: Relay{
			Binary: defaultRelayBinary,
		},
		Reconcile: Reconcile{
			CommitPolicy: defaultCommitPolicy,
		},
		History: History{
			Enabled: true,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
