package acl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwilkins507/my-portfolio/internal/adapters/clients"
	"github.com/cwilkins507/my-portfolio/internal/domain"
	"github.com/cwilkins507/my-portfolio/internal/platform/config"
	"github.com/cwilkins507/my-portfolio/internal/ports"
)

var (
	_ ports.LeadRelay     = (*RelayClient)(nil)
	_ ports.HealthChecker = (*RelayClient)(nil)
)

func newRelay(t *testing.T, url string, maxFailures int) *RelayClient {
	t.Helper()

	client, err := clients.New(clients.Config{
		BaseURL:     url,
		ServiceName: "form-relay",
		Timeout:     time.Second,
		Retry:       config.RetryConfig{MaxAttempts: 1},
		Circuit:     config.CircuitBreakerConfig{MaxFailures: maxFailures, Timeout: time.Minute, HalfOpenLimit: 1},
	})
	require.NoError(t, err)

	return NewRelayClient(client, RelayConfig{AccessKey: "key-123"})
}

func relayServer(t *testing.T, status int, body string, seen *relayRequest) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		if seen != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func quizLead() domain.Lead {
	return domain.Lead{
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		Subject:      "Action Plan Request from Ada Lovelace",
		Message:      "Quiz Results:\n\n1. AI Tool Usage: Yes, daily",
		SubmissionID: "sub-1",
	}
}

func TestRelayClient_SendSuccess(t *testing.T) {
	var seen relayRequest

	srv := relayServer(t, http.StatusOK, `{"success":true,"message":"Email sent"}`, &seen)

	receipt, err := newRelay(t, srv.URL, 5).Send(context.Background(), quizLead())
	require.NoError(t, err)
	require.NoError(t, receipt.Err())

	assert.True(t, receipt.Accepted)
	assert.Equal(t, "Email sent", receipt.Message)
	assert.Equal(t, "form-relay", receipt.Service)
	assert.False(t, receipt.SentAt.IsZero())

	assert.Equal(t, relayRequest{
		AccessKey:    "key-123",
		Subject:      "Action Plan Request from Ada Lovelace",
		FromName:     "Ada Lovelace",
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		Message:      "Quiz Results:\n\n1. AI Tool Usage: Yes, daily",
		SubmissionID: "sub-1",
	}, seen)
}

func TestRelayClient_SendsServiceForContactLeads(t *testing.T) {
	var seen relayRequest

	srv := relayServer(t, http.StatusOK, `{"success":true}`, &seen)

	lead := quizLead()
	lead.Service = "AWS Serverless"
	lead.SubmissionID = ""

	_, err := newRelay(t, srv.URL, 5).Send(context.Background(), lead)
	require.NoError(t, err)
	assert.Equal(t, "AWS Serverless", seen.Service)
	assert.Equal(t, "Ada Lovelace", seen.FromName)
	assert.Empty(t, seen.SubmissionID)
}

func TestRelayClient_SendFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		reason string
	}{
		{"server error", http.StatusInternalServerError, `{"success":false}`, "max retries exceeded"},
		{"client error with success body", http.StatusBadRequest, `{"success":true}`, "status 400"},
		{"undecodable", http.StatusOK, `<html>nope</html>`, "undecodable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := relayServer(t, tt.status, tt.body, nil)

			_, err := newRelay(t, srv.URL, 5).Send(context.Background(), quizLead())

			require.Error(t, err)
			assert.True(t, domain.IsUnavailable(err))
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestRelayClient_RejectedReceipt(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason string
	}{
		{"success false", `{"success":false,"message":"Invalid access key"}`, "Invalid access key"},
		{"missing flag", `{}`, "relay reported failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := relayServer(t, http.StatusOK, tt.body, nil)

			receipt, err := newRelay(t, srv.URL, 5).Send(context.Background(), quizLead())
			require.NoError(t, err)
			assert.False(t, receipt.Accepted)

			err = receipt.Err()
			require.Error(t, err)
			assert.True(t, domain.IsUnavailable(err))
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestRelayClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newRelay(t, url, 5).Send(context.Background(), quizLead())

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}

func TestRelayClient_Check(t *testing.T) {
	srv := relayServer(t, http.StatusServiceUnavailable, `{}`, nil)
	relay := newRelay(t, srv.URL, 1)

	assert.Equal(t, "form-relay", relay.Name())
	require.NoError(t, relay.Check(context.Background()))

	_, _ = relay.Send(context.Background(), quizLead())

	err := relay.Check(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))

	_, err = relay.Send(context.Background(), quizLead())
	assert.Contains(t, err.Error(), "circuit breaker open")
}

func TestToReceipt(t *testing.T) {
	receipt, err := toReceipt(http.StatusAccepted, &relayResponse{Success: true}, "relay")
	require.NoError(t, err)
	assert.True(t, receipt.Accepted)

	receipt, err = toReceipt(http.StatusOK, &relayResponse{Message: "quota"}, "relay")
	require.NoError(t, err)
	assert.False(t, receipt.Accepted)
	assert.Equal(t, "quota", receipt.Message)

	_, err = toReceipt(http.StatusOK, nil, "relay")
	assert.Error(t, err)

	_, err = toReceipt(http.StatusMultipleChoices, &relayResponse{Success: true}, "relay")
	assert.Error(t, err)
}
