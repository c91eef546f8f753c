package resolve_discount

import (
	"context"
	"time"

	"github.com/light-bringer/optics-discounts/internal/app/discount/contracts"
	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/pkg/clock"
)

// Request identifies the purchase to resolve a discount for.
type Request struct {
	ProductID string
	PatientID string    // empty for walk-in customers
	AsOf      time.Time // zero means now
}

// Query handles the resolve discount query.
type Query struct {
	readModel contracts.ReadModel
	clock     clock.Clock
	location  *time.Location
}

// NewQuery creates a new resolve discount query.
func NewQuery(readModel contracts.ReadModel, clock clock.Clock, location *time.Location) *Query {
	return &Query{
		readModel: readModel,
		clock:     clock,
		location:  location,
	}
}

// Execute returns the winning discount, or nil when none applies.
func (q *Query) Execute(ctx context.Context, req *Request) (*domain.DiscountRequest, error) {
	if req.ProductID == "" {
		return nil, domain.FieldError("product_id", "product_id is required")
	}

	asOf := req.AsOf
	if asOf.IsZero() {
		asOf = q.clock.Now()
	}
	today := clock.DateAt(asOf, q.location)

	candidates, err := q.readModel.ListActive(ctx, contracts.ActiveFilter{
		ProductID: req.ProductID,
		PatientID: req.PatientID,
		Today:     today,
	})
	if err != nil {
		return nil, err
	}

	return domain.ResolveDiscount(candidates, req.ProductID, req.PatientID, today), nil
}
