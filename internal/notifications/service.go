package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"feebump/internal/config"
)

const userAgent = "feebump/0.1.0"

// RunReport is the subset of a batch run that notifications describe.
type RunReport struct {
	RunID     string
	Eligible  int
	Succeeded int
	Failed    int
	Committed bool
	// FailedTxIDs lists the transactions whose prioritisation failed.
	FailedTxIDs []string
}

// Service defines the notification surface used by the batch runner.
type Service interface {
	NotifyRunFailed(ctx context.Context, report RunReport) error
	NotifyRunCompleted(ctx context.Context, report RunReport) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint:      topic,
		client:        &http.Client{Timeout: timeout},
		notifySuccess: cfg.Notifications.NotifySuccess,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint      string
	client        *http.Client
	notifySuccess bool
}

// maxListedTxIDs caps how many failed transactions are spelled out.
const maxListedTxIDs = 5

func (n *ntfyService) NotifyRunFailed(ctx context.Context, report RunReport) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "%d of %d prioritisations failed", report.Failed, report.Eligible)
	if report.Committed {
		builder.WriteString("; failed requests stay queued")
	} else {
		builder.WriteString("; queue unchanged, all requests will be retried")
	}
	for i, txid := range report.FailedTxIDs {
		if i == maxListedTxIDs {
			fmt.Fprintf(&builder, "\n... and %d more", len(report.FailedTxIDs)-maxListedTxIDs)
			break
		}
		builder.WriteString("\n" + txid)
	}
	data := payload{
		title:    "feebump - Run Failed",
		message:  builder.String(),
		tags:     []string{"feebump", "failed", "warning"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, report RunReport) error {
	if !n.notifySuccess || report.Eligible == 0 {
		return nil
	}
	data := payload{
		title:   "feebump - Run Complete",
		message: fmt.Sprintf("Prioritised %d transactions", report.Succeeded),
		tags:    []string{"feebump", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "feebump - Test",
		message:  "Notification system test",
		tags:     []string{"feebump", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunFailed(context.Context, RunReport) error    { return nil }
func (noopService) NotifyRunCompleted(context.Context, RunReport) error { return nil }
func (noopService) TestNotification(context.Context) error              { return nil }
