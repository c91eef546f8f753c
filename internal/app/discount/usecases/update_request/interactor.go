package update_request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/light-bringer/optics-discounts/internal/app/discount/contracts"
	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/app/discount/references"
	"github.com/light-bringer/optics-discounts/internal/pkg/clock"
	"github.com/light-bringer/optics-discounts/internal/pkg/committer"
)

// Request contains the fields to change. Nil fields are left as they are.
type Request struct {
	RequestID string
	Patch     domain.RequestPatch
	Actor     domain.Actor
}

// Interactor handles the update discount request use case.
type Interactor struct {
	repo       contracts.DiscountRequestRepository
	outboxRepo contracts.OutboxRepository
	refs       *references.Checker
	committer  committer.Applier
	clock      clock.Clock
	location   *time.Location
}

// NewInteractor creates a new update discount request interactor.
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

// Execute edits a pending request. The write only lands if the request is
// still pending at commit time.
func (i *Interactor) Execute(ctx context.Context, req *Request) (*domain.DiscountRequest, error) {
	// 1. Load aggregate
	dr, err := i.repo.GetByID(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}

	// 2. Call domain method
	now := i.clock.Now()
	if err := dr.Update(req.Actor, req.Patch, clock.DateAt(now, i.location), now); err != nil {
		return nil, err
	}
	if !dr.Changes().HasChanges() {
		return dr, nil
	}

	// 3. Re-check references that changed
	productID, patientID := "", ""
	if dr.Changes().Dirty(domain.FieldProductID) {
		productID = dr.ProductID()
	}
	if dr.Changes().Dirty(domain.FieldScope) {
		patientID = dr.Scope().PatientID()
	}
	if err := i.refs.Check(ctx, productID, patientID); err != nil {
		return nil, err
	}

	// 4. Create commit plan
	plan := committer.NewPlan()
	plan.AddGuard(i.repo.PendingGuard(dr.ID()), domain.ErrRequestNotEditable)
	plan.Add(i.repo.UpdateMut(dr))

	for _, event := range dr.DomainEvents() {
		outboxEvent, err := i.outboxRepo.EnrichEvent(event)
		if err != nil {
			return nil, err
		}
		plan.Add(i.outboxRepo.InsertMut(outboxEvent))
	}

	// 5. Apply plan
	if err := i.committer.Apply(ctx, plan); err != nil {
		if errors.Is(err, domain.ErrRequestNotEditable) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("request_id", dr.ID()).
		Strs("changed", dr.Changes().DirtyFields()).
		Str("actor", req.Actor.UserID).
		Msg("discount request updated")

	return dr, nil
}
