package list_requests

import (
	"context"

	"github.com/light-bringer/optics-discounts/internal/app/discount/contracts"
	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
)

// Request contains filtering and pagination parameters.
type Request struct {
	Status    string
	ProductID string
	PatientID string
	PageSize  int
	PageToken string
	Actor     domain.Actor
}

// Query handles the list discount requests query.
type Query struct {
	readModel contracts.ReadModel
}

// NewQuery creates a new list discount requests query.
func NewQuery(readModel contracts.ReadModel) *Query {
	return &Query{
		readModel: readModel,
	}
}

// Execute retrieves a page of requests. Non-admins only see requests they created.
func (q *Query) Execute(ctx context.Context, req *Request) (*contracts.ListResult, error) {
	filter := &contracts.ListFilter{
		ProductID: req.ProductID,
		PatientID: req.PatientID,
		PageSize:  req.PageSize,
		PageToken: req.PageToken,
	}

	if req.Status != "" {
		status, err := domain.ParseRequestStatus(req.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = string(status)
	}

	if !req.Actor.IsAdmin() {
		filter.RequestedBy = req.Actor.UserID
	}

	return q.readModel.List(ctx, filter)
}
