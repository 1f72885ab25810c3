package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tempora-app/tempora/internal/domain"
)

// ChatTransport posts one alert to a user-configured chat webhook.
type ChatTransport interface {
	Send(ctx context.Context, webhookURL string, alert Alert) error
}

// HTTPChatTransport posts Slack-compatible attachment payloads.
type HTTPChatTransport struct {
	client *http.Client
}

// NewHTTPChatTransport creates a chat webhook transport with a bounded
// request timeout.
func NewHTTPChatTransport() *HTTPChatTransport {
	return &HTTPChatTransport{client: &http.Client{Timeout: 10 * time.Second}}
}

type chatPayload struct {
	Text        string           `json:"text"`
	Attachments []chatAttachment `json:"attachments,omitempty"`
}

type chatAttachment struct {
	Color  string `json:"color"`
	Title  string `json:"title"`
	Text   string `json:"text"`
	Footer string `json:"footer"`
	Ts     int64  `json:"ts"`
}

func categoryColor(c domain.AlertCategory) string {
	switch c {
	case domain.AlertOverrun:
		return "#cc0000"
	case domain.AlertBudgetWarning:
		return "#ff9900"
	default:
		return "#36a64f"
	}
}

func (t *HTTPChatTransport) Send(ctx context.Context, webhookURL string, alert Alert) error {
	if webhookURL == "" {
		return fmt.Errorf("chat webhook: %w", ErrNotConfigured)
	}

	payload := chatPayload{
		Text: alert.Title,
		Attachments: []chatAttachment{
			{
				Color:  categoryColor(alert.Category),
				Title:  alert.Title,
				Text:   alert.Body,
				Footer: "Tempora",
				Ts:     time.Now().Unix(),
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending chat alert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("chat webhook returned status %d", resp.StatusCode)
	}
	return nil
}
