package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tempora-app/tempora/internal/domain"
	"github.com/tempora-app/tempora/internal/testutil"
)

func TestHTTPPushTransport_Send(t *testing.T) {
	var gotPayload []byte
	var gotHeaders http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		gotPayload, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	transport := NewHTTPPushTransport(5 * time.Second)
	sub := testutil.NewTestSubscription(testutil.TestIdentity(), srv.URL)

	alert := testAlert()
	alert.Category = domain.AlertInterrupt
	alert.TimerID = "timer-9"
	payload, err := alert.Payload()
	require.NoError(t, err)

	require.NoError(t, transport.Send(context.Background(), sub, payload))

	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.Equal(t, sub.P256dhKey, gotHeaders.Get("X-Push-P256dh"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(gotPayload, &decoded))
	assert.Equal(t, "interrupt", decoded["category"])
	assert.Equal(t, "timer-9", decoded["timer_id"])
	actions, ok := decoded["actions"].([]any)
	require.True(t, ok)
	assert.Len(t, actions, 2)
}

func TestHTTPPushTransport_GoneEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	transport := NewHTTPPushTransport(5 * time.Second)
	sub := testutil.NewTestSubscription(testutil.TestIdentity(), srv.URL)

	err := transport.Send(context.Background(), sub, []byte(`{}`))
	assert.ErrorIs(t, err, ErrEndpointGone)
}

func TestHTTPPushTransport_TransientFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	transport := NewHTTPPushTransport(5 * time.Second)
	sub := testutil.NewTestSubscription(testutil.TestIdentity(), srv.URL)

	err := transport.Send(context.Background(), sub, []byte(`{}`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEndpointGone)
}

func TestHTTPSMSTransport_Send(t *testing.T) {
	var gotForm map[string][]string
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	transport := NewHTTPSMSTransport(srv.URL, "token-abc", "+15550009999")
	require.NoError(t, transport.Send(context.Background(), "+15550001111", "Still working?"))

	assert.Equal(t, []string{"+15550001111"}, gotForm["To"])
	assert.Equal(t, []string{"+15550009999"}, gotForm["From"])
	assert.Equal(t, []string{"Still working?"}, gotForm["Body"])
	assert.Equal(t, "Bearer token-abc", gotAuth)
}

func TestHTTPSMSTransport_NotConfigured(t *testing.T) {
	transport := NewHTTPSMSTransport("", "", "")
	err := transport.Send(context.Background(), "+15550001111", "hi")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestHTTPChatTransport_Send(t *testing.T) {
	var got chatPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	transport := NewHTTPChatTransport()
	alert := testAlert()

	require.NoError(t, transport.Send(context.Background(), srv.URL, alert))

	assert.Equal(t, alert.Title, got.Text)
	require.Len(t, got.Attachments, 1)
	assert.Equal(t, "#cc0000", got.Attachments[0].Color)
	assert.Equal(t, alert.Body, got.Attachments[0].Text)
}

func TestHTTPChatTransport_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	transport := NewHTTPChatTransport()
	err := transport.Send(context.Background(), srv.URL, testAlert())
	assert.Error(t, err)
}

func TestSMTPEmailTransport_NotConfigured(t *testing.T) {
	transport := &SMTPEmailTransport{}
	err := transport.Send(context.Background(), "dev@example.com", "subject", "body")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
