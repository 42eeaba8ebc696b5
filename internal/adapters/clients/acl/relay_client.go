package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/cwilkins507/my-portfolio/internal/adapters/clients"
	"github.com/cwilkins507/my-portfolio/internal/domain"
	"github.com/cwilkins507/my-portfolio/internal/platform/logging"
)

const operationSubmit = "submit lead"

// RelayConfig holds the relay credential attached to every submission.
type RelayConfig struct {
	AccessKey string
}

// RelayClient implements ports.LeadRelay against a web3forms-compatible
// endpoint: one JSON POST per lead, answered by {"success": bool}.
type RelayClient struct {
	client *clients.Client
	cfg    RelayConfig
}

// NewRelayClient wraps client, whose BaseURL must be the full submit URL.
func NewRelayClient(client *clients.Client, cfg RelayConfig) *RelayClient {
	return &RelayClient{client: client, cfg: cfg}
}

// Send relays lead with the submitter as sender. Transport errors, non-2xx
// replies and bodies that are not relay JSON return domain.UnavailableError.
// A decoded 2xx reply is returned as a receipt, accepted or not.
func (r *RelayClient) Send(ctx context.Context, lead domain.Lead) (domain.Receipt, error) {
	service := r.client.ServiceName()
	logger := logging.FromContext(ctx).With(
		slog.String("downstream", service),
		slog.String("submission_id", lead.SubmissionID),
	)

	payload, err := json.Marshal(relayRequest{
		AccessKey:    r.cfg.AccessKey,
		Subject:      lead.Subject,
		FromName:     lead.Name,
		Name:         lead.Name,
		Email:        lead.Email,
		Message:      lead.Message,
		Service:      lead.Service,
		SubmissionID: lead.SubmissionID,
	})
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("encoding relay request: %w", err)
	}

	logger.Log(ctx, logging.LevelTrace, "relay request", slog.String("subject", lead.Subject), slog.Int("bytes", len(payload)))

	resp, err := r.client.PostJSON(ctx, "", payload)
	if err != nil {
		return domain.Receipt{}, mapClientError(err, service, operationSubmit)
	}

	body, decodeErr := DecodeResponse[relayResponse](resp.Body)
	if decodeErr != nil {
		logger.Warn("relay response not decodable", slog.Int("status", resp.StatusCode), slog.Any("error", decodeErr))
	}

	receipt, err := toReceipt(resp.StatusCode, body, service)
	if err != nil {
		logger.Warn("relay call failed", slog.Int("status", resp.StatusCode), slog.Any("error", err))
		return domain.Receipt{}, err
	}

	if !receipt.Accepted {
		logger.Warn("relay rejected submission", slog.String("relay_message", receipt.Message))
		return receipt, nil
	}

	logger.Info("lead relayed", slog.String("subject", lead.Subject))

	return receipt, nil
}

// Name implements ports.HealthChecker.
func (r *RelayClient) Name() string { return r.client.ServiceName() }

// Check reports the relay unhealthy while its circuit breaker is open. It
// makes no network call, since every relay request sends an email.
func (r *RelayClient) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if state := r.client.CircuitState(); state == clients.StateOpen {
		return domain.NewUnavailableError(r.client.ServiceName(), "circuit breaker "+state.String())
	}

	return nil
}
