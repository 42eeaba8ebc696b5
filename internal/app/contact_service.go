package app

import (
	"context"

	"github.com/cwilkins507/my-portfolio/internal/domain"
	"github.com/cwilkins507/my-portfolio/internal/platform/metrics"
	"github.com/cwilkins507/my-portfolio/internal/ports"
)

// ContactService relays the general contact form.
type ContactService struct {
	relay   ports.LeadRelay
	exec    *Executor
	metrics *metrics.Metrics
}

// NewContactService creates the service. m may be nil.
func NewContactService(relay ports.LeadRelay, exec *Executor, m *metrics.Metrics) *ContactService {
	return &ContactService{relay: relay, exec: exec, metrics: m}
}

// Submit validates req and relays it. Validation failures return
// domain.ValidationError (as domain.FieldErrors); relay failures, including
// a receipt the relay did not accept, return domain.UnavailableError.
func (s *ContactService) Submit(ctx context.Context, req domain.ContactRequest) error {
	var lead domain.Lead

	op := Operation[domain.ContactRequest, domain.Receipt, domain.Receipt, struct{}]{
		Name: "contact.submit",
		Validate: func(_ context.Context, req domain.ContactRequest) error {
			var err error
			lead, err = domain.NewContactLead(req)

			return err
		},
		Perform: func(ctx context.Context, _ domain.ContactRequest) (domain.Receipt, error) {
			return s.relay.Send(ctx, lead)
		},
		Verify: verifyReceipt[domain.ContactRequest],
	}

	_, err := Execute(ctx, s.exec, op, req)
	if step, ok := FailedStep(err); !ok || step != StepValidate {
		s.metrics.ObserveContact(err)
	}

	return err
}

// verifyReceipt fails when the relay answered but did not accept the lead.
func verifyReceipt[I any](_ context.Context, _ I, r domain.Receipt) (domain.Receipt, error) {
	return r, r.Err()
}
