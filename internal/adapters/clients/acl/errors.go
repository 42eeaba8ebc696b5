package acl

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cwilkins507/my-portfolio/internal/adapters/clients"
	"github.com/cwilkins507/my-portfolio/internal/domain"
)

// mapClientError translates a transport failure into domain.UnavailableError.
func mapClientError(err error, service, operation string) error {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(service, "circuit breaker open during "+operation)
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(service, "max retries exceeded during "+operation)
	default:
		return domain.NewUnavailableError(service, fmt.Sprintf("%s failed: %v", operation, err))
	}
}

// toReceipt turns a relay reply into a receipt. Only a 2xx status with a
// decoded body yields one; resp is nil when the body could not be decoded.
func toReceipt(status int, resp *relayResponse, service string) (domain.Receipt, error) {
	switch {
	case resp == nil:
		return domain.Receipt{}, domain.NewUnavailableError(service, fmt.Sprintf("undecodable response (status %d)", status))
	case status < http.StatusOK || status >= http.StatusMultipleChoices:
		return domain.Receipt{}, domain.NewUnavailableError(service, withMessage(fmt.Sprintf("status %d", status), resp.Message))
	}

	return domain.Receipt{
		Service:  service,
		Accepted: resp.Success,
		Message:  resp.Message,
		SentAt:   time.Now(),
	}, nil
}

func withMessage(reason, message string) string {
	if message == "" {
		return reason
	}

	return reason + ": " + message
}
