package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"twisty/internal/config"
)

const userAgent = "twisty/0.1.0"

// Service defines the notification surface exposed to the CLI.
type Service interface {
	NotifyExportCompleted(ctx context.Context, name, output string, trimSeconds float64) error
	NotifyBatchCompleted(ctx context.Context, completed int, elapsed time.Duration) error
	NotifyError(ctx context.Context, err error, label string) error
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

	timeout := cfg.NotifyTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyExportCompleted(ctx context.Context, name, output string, trimSeconds float64) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "export"
	}
	message := fmt.Sprintf("Exported %s", name)
	if output = strings.TrimSpace(output); output != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, output)
	}
	if trimSeconds > 0 {
		message = fmt.Sprintf("%s\nTrimmed %.3fs of leading black", message, trimSeconds)
	}
	return n.send(ctx, payload{
		title:   "twisty - Export Complete",
		message: message,
		tags:    []string{"twisty", "export", "completed"},
	})
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, completed int, elapsed time.Duration) error {
	elapsed = elapsed.Round(time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	return n.send(ctx, payload{
		title:    "twisty - Batch Complete",
		message:  fmt.Sprintf("Batch complete: %d exports in %s", completed, elapsed),
		tags:     []string{"twisty", "batch", "completed"},
		priority: "high",
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, label string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if label = strings.TrimSpace(label); label != "" {
		builder.WriteString(" with ")
		builder.WriteString(label)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}
	return n.send(ctx, payload{
		title:    "twisty - Error",
		message:  builder.String(),
		tags:     []string{"twisty", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "twisty - Test",
		message:  "Notification system test",
		tags:     []string{"twisty", "test"},
		priority: "low",
	})
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

func (noopService) NotifyExportCompleted(context.Context, string, string, float64) error { return nil }
func (noopService) NotifyBatchCompleted(context.Context, int, time.Duration) error       { return nil }
func (noopService) NotifyError(context.Context, error, string) error                     { return nil }
func (noopService) TestNotification(context.Context) error                               { return nil }
