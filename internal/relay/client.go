package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"feebump/internal/services"
)

const (
	component = "relay"
	rpcMethod = "prioritisetransaction"
	// The dummy argument is ignored by the node but must be present.
	dummyArg  = "0.0"
	txidChars = chainhash.MaxHashStringSize
	// Bounds how long a killed command may hold its stderr pipe open.
	waitDelay = 2 * time.Second
)

// Prioritiser applies a fee delta to a transaction.
type Prioritiser interface {
	Prioritise(ctx context.Context, txid string, feeDelta int64) error
}

// Outcome is what an executed command reported back.
type Outcome struct {
	ExitCode int
	Stderr   []byte
}

// Executor abstracts command execution for testability. A returned error
// means the command could not be run at all; a command that ran and exited
// non-zero reports that through Outcome.ExitCode.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (Outcome, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithWallet selects the wallet passed as -rpcwallet.
func WithWallet(wallet string) Option {
	return func(c *Client) {
		c.wallet = strings.TrimSpace(wallet)
	}
}

// WithExtraArgs adds flags placed before the RPC method name.
func WithExtraArgs(args ...string) Option {
	return func(c *Client) {
		c.extraArgs = append(c.extraArgs, args...)
	}
}

// WithTimeout bounds each invocation. Zero disables the bound.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// Client wraps bitcoin-cli interactions.
type Client struct {
	binary    string
	wallet    string
	extraArgs []string
	timeout   time.Duration
	exec      Executor
}

// New constructs a relay client for binary.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("relay binary required")
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Binary returns the configured executable.
func (c *Client) Binary() string {
	return c.binary
}

// Args returns the argument array used for a request, without the binary.
func (c *Client) Args(txid string, feeDelta int64) []string {
	args := make([]string, 0, len(c.extraArgs)+5)
	if c.wallet != "" {
		args = append(args, "-rpcwallet="+c.wallet)
	}
	args = append(args, c.extraArgs...)
	return append(args, rpcMethod, txid, dummyArg, strconv.FormatInt(feeDelta, 10))
}

// Prioritise runs prioritisetransaction for txid and waits for it to exit.
func (c *Client) Prioritise(ctx context.Context, txid string, feeDelta int64) error {
	if err := ValidateTxID(txid); err != nil {
		return err
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	outcome, err := c.exec.Run(ctx, c.binary, c.Args(txid, feeDelta))
	if err != nil {
		return services.Wrap(services.ErrExternalTool, component, rpcMethod, "launch "+c.binary, err)
	}
	if ctx.Err() != nil && outcome.ExitCode != 0 {
		return services.Wrap(services.ErrTransient, component, rpcMethod, "command did not finish", ctx.Err())
	}
	if outcome.ExitCode != 0 {
		return &CommandError{ExitCode: outcome.ExitCode, Stderr: strings.TrimSpace(string(outcome.Stderr))}
	}
	return nil
}

// ValidateTxID checks that txid is a 64 character hex transaction hash.
func ValidateTxID(txid string) error {
	if len(txid) != txidChars {
		return services.Wrap(services.ErrValidation, component, "validate txid",
			fmt.Sprintf("txid must be %d hex characters, got %d", txidChars, len(txid)), nil)
	}
	if _, err := chainhash.NewHashFromStr(txid); err != nil {
		return services.Wrap(services.ErrValidation, component, "validate txid", "txid is not hex", err)
	}
	return nil
}

// CommandError reports a relay command that ran and exited non-zero.
type CommandError struct {
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return fmt.Sprintf("exit status %d", e.ExitCode)
}

// Is matches services.ErrExternalTool.
func (e *CommandError) Is(target error) bool { return target == services.ErrExternalTool }

// Diagnostic extracts the text recorded against a failed request. Relay
// failures yield the captured stderr; anything else its error text.
func Diagnostic(err error) string {
	if err == nil {
		return ""
	}
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Error()
	}
	return err.Error()
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (Outcome, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	err := cmd.Run()
	if err == nil {
		return Outcome{Stderr: stderr.Bytes()}, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code == 0 {
			code = -1
		}
		return Outcome{ExitCode: code, Stderr: stderr.Bytes()}, nil
	}
	return Outcome{}, err
}
