package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SMSTransport sends one alert as a text message.
type SMSTransport interface {
	Send(ctx context.Context, to, body string) error
}

// HTTPSMSTransport posts messages to an SMS gateway as a form-encoded
// request (the shape Twilio-style gateways accept).
type HTTPSMSTransport struct {
	GatewayURL string
	APIToken   string
	From       string

	client *http.Client
}

// NewHTTPSMSTransport creates an SMS transport with a bounded request timeout.
func NewHTTPSMSTransport(gatewayURL, apiToken, from string) *HTTPSMSTransport {
	return &HTTPSMSTransport{
		GatewayURL: gatewayURL,
		APIToken:   apiToken,
		From:       from,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *HTTPSMSTransport) Send(ctx context.Context, to, body string) error {
	if t.GatewayURL == "" {
		return fmt.Errorf("sms gateway: %w", ErrNotConfigured)
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", t.From)
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.GatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if t.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+t.APIToken)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	return nil
}
