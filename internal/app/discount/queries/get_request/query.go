package get_request

import (
	"context"

	"github.com/light-bringer/optics-discounts/internal/app/discount/contracts"
	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
)

// Request identifies the discount request to load.
type Request struct {
	RequestID string
	Actor     domain.Actor
}

// Query handles the get discount request query.
type Query struct {
	readModel contracts.ReadModel
}

// NewQuery creates a new get discount request query.
func NewQuery(readModel contracts.ReadModel) *Query {
	return &Query{
		readModel: readModel,
	}
}

// Execute returns the request. Non-admins can only read their own requests.
func (q *Query) Execute(ctx context.Context, req *Request) (*domain.DiscountRequest, error) {
	dr, err := q.readModel.GetByID(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if !domain.CanView(req.Actor, dr) {
		return nil, domain.ErrNotAllowedToView
	}
	return dr, nil
}
