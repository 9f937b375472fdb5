package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelforge/internal/config"
)

const userAgent = "ReelForge/0.1.0"

// Service defines the notification surface exposed to workflow components.
type Service interface {
	NotifyFetchStarted(ctx context.Context, title string) error
	NotifyFetchCompleted(ctx context.Context, title string) error
	NotifyClipCompleted(ctx context.Context, title string) error
	NotifyClipReady(ctx context.Context, title, finalFile string) error
	NotifyQueueStarted(ctx context.Context, count int) error
	NotifyQueueCompleted(ctx context.Context, processed, failed int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, context string) error
	NotifyReviewRequired(ctx context.Context, title, reason string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		fetch:    cfg.Notifications.Fetch,
		clip:     cfg.Notifications.Clip,
		publish:  cfg.Notifications.Publish,
		queue:    cfg.Notifications.Queue,
		errors:   cfg.Notifications.Errors,
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

	fetch   bool
	clip    bool
	publish bool
	queue   bool
	errors  bool
}

func (n *ntfyService) NotifyFetchStarted(ctx context.Context, title string) error {
	if !n.fetch {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "ReelForge - Download Started",
		message: fmt.Sprintf("Started downloading: %s", title),
		tags:    []string{"reelforge", "fetch", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFetchCompleted(ctx context.Context, title string) error {
	if !n.fetch {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "ReelForge - Download Complete",
		message: fmt.Sprintf("Download complete: %s", title),
		tags:    []string{"reelforge", "fetch", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyClipCompleted(ctx context.Context, title string) error {
	if !n.clip {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "ReelForge - Clip Rendered",
		message: fmt.Sprintf("Clip rendered: %s", title),
		tags:    []string{"reelforge", "clip", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyClipReady(ctx context.Context, title, finalFile string) error {
	if !n.publish {
		return nil
	}
	title = strings.TrimSpace(title)
	finalFile = strings.TrimSpace(finalFile)
	message := fmt.Sprintf("Ready to post: %s", title)
	if finalFile != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, finalFile)
	}
	data := payload{
		title:    "ReelForge - Ready",
		message:  message,
		tags:     []string{"reelforge", "publish", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueueStarted(ctx context.Context, count int) error {
	if !n.queue {
		return nil
	}
	data := payload{
		title:   "ReelForge - Queue Started",
		message: fmt.Sprintf("Started processing queue with %d items", count),
		tags:    []string{"reelforge", "queue", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueueCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	if !n.queue {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var message string
	var title string
	if failed == 0 {
		title = "ReelForge - Queue Complete"
		message = fmt.Sprintf("Queue processing complete: %d items processed in %s", processed, durationText)
	} else {
		title = "ReelForge - Queue Complete (with errors)"
		message = fmt.Sprintf("Queue processing complete: %d succeeded, %d failed in %s", processed, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"reelforge", "queue", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "ReelForge - Error",
		message:  builder.String(),
		tags:     []string{"reelforge", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyReviewRequired(ctx context.Context, title, reason string) error {
	if !n.errors {
		return nil
	}
	title = strings.TrimSpace(title)
	reason = strings.TrimSpace(reason)
	message := fmt.Sprintf("Needs review: %s", title)
	if reason != "" {
		message = fmt.Sprintf("%s\nReason: %s", message, reason)
	}
	data := payload{
		title:   "ReelForge - Review Required",
		message: message,
		tags:    []string{"reelforge", "review"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "ReelForge - Test",
		message:  "Notification system test",
		tags:     []string{"reelforge", "test"},
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

func (noopService) NotifyFetchStarted(context.Context, string) error                    { return nil }
func (noopService) NotifyFetchCompleted(context.Context, string) error                  { return nil }
func (noopService) NotifyClipCompleted(context.Context, string) error                   { return nil }
func (noopService) NotifyClipReady(context.Context, string, string) error               { return nil }
func (noopService) NotifyQueueStarted(context.Context, int) error                       { return nil }
func (noopService) NotifyQueueCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                    { return nil }
func (noopService) NotifyReviewRequired(context.Context, string, string) error          { return nil }
func (noopService) TestNotification(context.Context) error                              { return nil }
