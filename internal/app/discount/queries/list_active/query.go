package list_active

import (
	"context"
	"time"

	"github.com/light-bringer/optics-discounts/internal/app/discount/contracts"
	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/pkg/clock"
)

// Request contains the optional filters. A patient filter also matches
// global requests.
type Request struct {
	ProductID string
	PatientID string
}

// Query handles the list active discounts query.
type Query struct {
	readModel contracts.ReadModel
	clock     clock.Clock
	location  *time.Location
}

// NewQuery creates a new list active discounts query.
func NewQuery(readModel contracts.ReadModel, clock clock.Clock, location *time.Location) *Query {
	return &Query{
		readModel: readModel,
		clock:     clock,
		location:  location,
	}
}

// Execute returns every request active today, most recently decided first.
func (q *Query) Execute(ctx context.Context, req *Request) ([]*domain.DiscountRequest, error) {
	return q.readModel.ListActive(ctx, contracts.ActiveFilter{
		ProductID: req.ProductID,
		PatientID: req.PatientID,
		Today:     clock.Today(q.clock, q.location),
	})
}
