// Package notify delivers alert notifications. The channel concept of the
// mobile client's notification tray maps to a named notifier configured
// once at startup.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// LogNotifier writes notifications to the log stream. Used when no webhook
// is configured.
type LogNotifier struct {
	Channel string
	Logger  *slog.Logger
}

func (n *LogNotifier) Notify(_ context.Context, title, body string) error {
	n.Logger.Warn("notification", "channel", n.Channel, "title", title, "body", body)
	return nil
}

// WebhookNotifier POSTs notifications to a configured endpoint for
// headless deployments with no notification tray.
type WebhookNotifier struct {
	Channel    string
	URL        string
	httpClient *http.Client
}

// NewWebhookNotifier creates a WebhookNotifier for one endpoint.
func NewWebhookNotifier(channel, url string, timeout time.Duration) *WebhookNotifier {
	return &WebhookNotifier{
		Channel: channel,
		URL:     url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type webhookPayload struct {
	Channel string `json:"channel"`
	Title   string `json:"title"`
	Body    string `json:"body"`
}

func (n *WebhookNotifier) Notify(ctx context.Context, title, body string) error {
	payload, err := json.Marshal(webhookPayload{Channel: n.Channel, Title: title, Body: body})
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notification webhook: status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
