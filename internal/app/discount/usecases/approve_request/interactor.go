package approve_request

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/light-bringer/optics-discounts/internal/app/discount/contracts"
	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/pkg/clock"
	"github.com/light-bringer/optics-discounts/internal/pkg/committer"
)

// Request contains the data to approve a discount request.
type Request struct {
	RequestID     string
	ApprovalNotes string
	Actor         domain.Actor
}

// Interactor handles the approve discount request use case.
type Interactor struct {
	repo       contracts.DiscountRequestRepository
	outboxRepo contracts.OutboxRepository
	catalog    contracts.ProductCatalog
	committer  committer.Applier
	clock      clock.Clock
	policy     domain.ApprovalPolicy
}

// NewInteractor creates a new approve discount request interactor.
func NewInteractor(
	repo contracts.DiscountRequestRepository,
	outboxRepo contracts.OutboxRepository,
	catalog contracts.ProductCatalog,
	committer committer.Applier,
	clock clock.Clock,
	policy domain.ApprovalPolicy,
) *Interactor {
	return &Interactor{
		repo:       repo,
		outboxRepo: outboxRepo,
		catalog:    catalog,
		committer:  committer,
		clock:      clock,
		policy:     policy,
	}
}

// Execute approves a pending request and flags the product as discounted.
// The status change is a conditional update, so of two concurrent decisions
// exactly one succeeds and the other gets domain.ErrAlreadyDecided.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*domain.DiscountRequest, error) {
	// 1. Load aggregate
	dr, err := i.repo.GetByID(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}

	// 2. Call domain method
	if err := dr.Approve(req.Actor, req.ApprovalNotes, i.policy, i.clock.Now()); err != nil {
		return nil, err
	}

	// 3. Create commit plan
	plan := committer.NewPlan()
	plan.AddGuard(i.repo.DecisionStmt(dr), domain.ErrAlreadyDecided)
	plan.AddGuard(i.catalog.HasDiscountsStmt(dr.ProductID()), domain.ErrProductNotFound)

	for _, event := range dr.DomainEvents() {
		outboxEvent, err := i.outboxRepo.EnrichEvent(event)
		if err != nil {
			return nil, err
		}
		plan.Add(i.outboxRepo.InsertMut(outboxEvent))
	}

	// 4. Apply plan
	if err := i.committer.Apply(ctx, plan); err != nil {
		if errors.Is(err, domain.ErrAlreadyDecided) || errors.Is(err, domain.ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("request_id", dr.ID()).
		Str("status", string(dr.Status())).
		Str("actor", req.Actor.UserID).
		Msg("discount request approved")

	return dr, nil
}
