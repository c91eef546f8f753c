package contracts

import (
	"context"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
)

// DiscountRequestRepository defines the interface for discount request persistence.
// Repositories return mutations and statements, they don't apply them (Golden Mutation Pattern).
type DiscountRequestRepository interface {
	// InsertMut creates a mutation for inserting a new request
	InsertMut(req *domain.DiscountRequest) *spanner.Mutation

	// UpdateMut creates a mutation for the edited fields of a pending request.
	// Returns nil when nothing changed.
	UpdateMut(req *domain.DiscountRequest) *spanner.Mutation

	// PendingGuard returns a statement that affects one row only while the
	// request is still pending
	PendingGuard(requestID string) spanner.Statement

	// DecisionStmt returns the conditional update that records an approval or
	// rejection. It affects zero rows when the request is no longer pending.
	DecisionStmt(req *domain.DiscountRequest) spanner.Statement

	// GetByID retrieves a request, reconstructing the domain aggregate
	GetByID(ctx context.Context, requestID string) (*domain.DiscountRequest, error)
}
