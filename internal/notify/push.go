package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tempora-app/tempora/internal/domain"
)

// ErrEndpointGone marks a permanent per-endpoint failure: the push service
// reports the subscription no longer exists. The dispatcher deactivates the
// endpoint so it is never retried.
var ErrEndpointGone = errors.New("push endpoint gone")

// ErrNotConfigured marks a channel with no usable credentials. Logged and
// treated as "channel unavailable", never a crash.
var ErrNotConfigured = errors.New("channel not configured")

// PushTransport delivers one payload to one subscription endpoint.
type PushTransport interface {
	Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error
}

// HTTPPushTransport POSTs the payload to the subscription's endpoint with
// the subscription keys as headers. Encryption/VAPID concerns live behind
// the gateway the endpoints point at.
type HTTPPushTransport struct {
	client *http.Client
	ttl    time.Duration
}

// NewHTTPPushTransport creates a push transport with a bounded request timeout.
func NewHTTPPushTransport(timeout time.Duration) *HTTPPushTransport {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPPushTransport{
		client: &http.Client{Timeout: timeout},
		ttl:    60 * time.Second,
	}
}

func (t *HTTPPushTransport) Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) error {
	if sub.Endpoint == "" {
		return fmt.Errorf("push subscription %s: %w", sub.ID, ErrNotConfigured)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("TTL", fmt.Sprintf("%d", int(t.ttl.Seconds())))
	if sub.P256dhKey != "" {
		req.Header.Set("X-Push-P256dh", sub.P256dhKey)
	}
	if sub.AuthKey != "" {
		req.Header.Set("X-Push-Auth", sub.AuthKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending push: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("endpoint %s: %w", sub.Endpoint, ErrEndpointGone)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("push endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
