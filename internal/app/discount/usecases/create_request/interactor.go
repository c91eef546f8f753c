package create_request

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/light-bringer/optics-discounts/internal/app/discount/contracts"
	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/app/discount/references"
	"github.com/light-bringer/optics-discounts/internal/pkg/clock"
	"github.com/light-bringer/optics-discounts/internal/pkg/committer"
)

// Request contains the data to submit a discount request.
type Request struct {
	ProductID  string
	PatientID  *string
	IsGlobal   bool
	Percentage string
	Reason     string
	ExpiryDate *civil.Date
	Actor      domain.Actor
}

// Interactor handles the create discount request use case.
type Interactor struct {
	repo       contracts.DiscountRequestRepository
	outboxRepo contracts.OutboxRepository
	refs       *references.Checker
	committer  committer.Applier
	clock      clock.Clock
	location   *time.Location
}

// NewInteractor creates a new create discount request interactor.
func NewInteractor(
	repo contracts.DiscountRequestRepository,
	outboxRepo contracts.OutboxRepository,
	refs *references.Checker,
	committer committer.Applier,
	clock clock.Clock,
	location *time.Location,
) *Interactor {
	return &Interactor{
		repo:       repo,
		outboxRepo: outboxRepo,
		refs:       refs,
		committer:  committer,
		clock:      clock,
		location:   location,
	}
}

// Execute validates and stores a new pending request following the Golden Mutation Pattern.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*domain.DiscountRequest, error) {
	// 1. Build aggregate (validates every field)
	now := i.clock.Now()
	dr, err := domain.NewDiscountRequest(domain.NewRequestParams{
		ID:          uuid.New().String(),
		ProductID:   req.ProductID,
		IsGlobal:    req.IsGlobal,
		PatientID:   req.PatientID,
		Percentage:  req.Percentage,
		Reason:      req.Reason,
		ExpiryDate:  req.ExpiryDate,
		RequestedBy: req.Actor.UserID,
	}, clock.DateAt(now, i.location), now)
	if err != nil {
		return nil, err
	}

	// 2. Check references
	if err := i.refs.Check(ctx, dr.ProductID(), dr.Scope().PatientID()); err != nil {
		return nil, err
	}

	// 3. Create commit plan
	plan := committer.NewPlan()
	plan.Add(i.repo.InsertMut(dr))

	for _, event := range dr.DomainEvents() {
		outboxEvent, err := i.outboxRepo.EnrichEvent(event)
		if err != nil {
			return nil, err
		}
		plan.Add(i.outboxRepo.InsertMut(outboxEvent))
	}

	// 4. Apply plan
	if err := i.committer.Apply(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("request_id", dr.ID()).
		Str("product_id", dr.ProductID()).
		Str("actor", req.Actor.UserID).
		Msg("discount request created")

	return dr, nil
}
