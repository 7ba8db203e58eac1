package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// WebhookNotifier posts new-station events to a webhook.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

type webhookPayload struct {
	MsgType string      `json:"msgtype"`
	Text    webhookText `json:"text"`
}

type webhookText struct {
	Content string `json:"content"`
}

// NewWebhookNotifier constructs a notifier.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Notify sends one event to the webhook.
func (n *WebhookNotifier) Notify(ctx context.Context, event Event) error {
	if n == nil || n.url == "" {
		return errors.New("webhook notifier: empty url")
	}
	payload := webhookPayload{
		MsgType: "text",
		Text:    webhookText{Content: formatEventMessage(event)},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return errors.New("webhook notifier: non-2xx")
	}
	return nil
}

func formatEventMessage(event Event) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[New Charging Stations] %s\n", event.ProviderName)
	fmt.Fprintf(&b, "Count: %d\n", event.NewCount)
	if len(event.StationIDs) > 0 {
		fmt.Fprintf(&b, "Station IDs: %v\n", event.StationIDs)
	}
	if event.SnapshotPath != "" {
		fmt.Fprintf(&b, "Snapshot: %s\n", event.SnapshotPath)
	}
	return strings.TrimSpace(b.String())
}
