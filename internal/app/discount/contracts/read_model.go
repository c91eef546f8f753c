package contracts

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
)

// ActiveFilter selects requests that are active on Today. Empty fields do
// not filter. A set PatientID matches that patient's requests plus global
// ones, the same candidates the resolver considers.
type ActiveFilter struct {
	ProductID string
	PatientID string
	Today     civil.Date
}

// ListFilter defines filtering options for listing requests.
type ListFilter struct {
	Status      string
	ProductID   string
	PatientID   string
	RequestedBy string
	PageSize    int
	PageToken   string
}

// ListResult contains paginated request list results.
type ListResult struct {
	Requests      []*domain.DiscountRequest
	NextPageToken string
	TotalCount    int64
}

// ReadModel defines the interface for discount request queries.
type ReadModel interface {
	// GetByID retrieves a single request
	GetByID(ctx context.Context, requestID string) (*domain.DiscountRequest, error)

	// ListActive returns active requests ordered by decided_at desc, then id
	ListActive(ctx context.Context, filter ActiveFilter) ([]*domain.DiscountRequest, error)

	// List returns a page of requests ordered by created_at desc, then id
	List(ctx context.Context, filter *ListFilter) (*ListResult, error)
}
