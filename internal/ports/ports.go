// Package ports defines the contracts the application layer depends on.
// Adapters under internal/adapters implement them.
package ports

import (
	"context"

	"github.com/cwilkins507/my-portfolio/internal/domain"
)

// QuizStore persists one quiz snapshot per session. Only the durable part of
// the state is stored; the transient submission status lives in memory.
type QuizStore interface {
	// Load returns the snapshot for sessionID. A missing session yields
	// (zero snapshot, false, nil).
	Load(ctx context.Context, sessionID string) (domain.QuizSnapshot, bool, error)

	// Save replaces the snapshot for sessionID.
	Save(ctx context.Context, sessionID string, snap domain.QuizSnapshot) error

	// Delete removes the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error
}

// LeadRelay delivers a lead to the form relay. Transport failures and
// replies that cannot be read return domain.ErrUnavailable; a readable reply
// comes back as a Receipt whose Accepted flag the caller checks.
type LeadRelay interface {
	Send(ctx context.Context, lead domain.Lead) (domain.Receipt, error)
}
