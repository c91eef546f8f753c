package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
)

// Field names for change tracking
const (
	FieldProductID     = "product_id"
	FieldScope         = "scope"
	FieldPercentage    = "discount_percentage"
	FieldReason        = "reason"
	FieldExpiryDate    = "expiry_date"
	FieldStatus        = "status"
	FieldApprovedBy    = "approved_by"
	FieldApprovalNotes = "approval_notes"
	FieldDecidedAt     = "decided_at"
)

const (
	MaxReasonLength        = 1000
	MaxApprovalNotesLength = 500
)

// RequestStatus is the lifecycle state of a discount request.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

// ParseRequestStatus validates a status filter value.
func ParseRequestStatus(s string) (RequestStatus, error) {
	switch st := RequestStatus(strings.ToLower(s)); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", FieldError("status", "must be one of pending, approved, rejected")
}

// DiscountRequest is the aggregate root for a proposed discount on one
// product, either storewide or for a single patient.
type DiscountRequest struct {
	id            string
	productID     string
	scope         Scope
	percentage    Percentage
	reason        string
	expiryDate    *civil.Date
	status        RequestStatus
	requestedBy   string
	approvedBy    string
	approvalNotes string
	decidedAt     *time.Time
	createdAt     time.Time
	updatedAt     time.Time

	changes *ChangeTracker
	events  []DomainEvent
}

// NewRequestParams carries the caller input for a new request.
type NewRequestParams struct {
	ID          string
	ProductID   string
	IsGlobal    bool
	PatientID   *string
	Percentage  string
	Reason      string
	ExpiryDate  *civil.Date
	RequestedBy string
}

// NewDiscountRequest validates input and creates a pending request.
// today is the current business date used to reject past expiry dates.
func NewDiscountRequest(p NewRequestParams, today civil.Date, now time.Time) (*DiscountRequest, error) {
	verr := NewValidationError()

	if strings.TrimSpace(p.ProductID) == "" {
		verr.Add("product_id", "product_id is required")
	}
	scope, err := NewScope(p.IsGlobal, p.PatientID)
	if err != nil {
		verr.AddErr("patient_id", err)
	}
	pct, err := ParsePercentage(p.Percentage)
	if err != nil {
		verr.AddErr("discount_percentage", err)
	}
	validateReason(verr, p.Reason)
	validateExpiry(verr, p.ExpiryDate, today)
	if p.RequestedBy == "" {
		verr.Add("requested_by", "requester is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	r := &DiscountRequest{
		id:          p.ID,
		productID:   p.ProductID,
		scope:       scope,
		percentage:  pct,
		reason:      p.Reason,
		expiryDate:  copyDate(p.ExpiryDate),
		status:      StatusPending,
		requestedBy: p.RequestedBy,
		createdAt:   now,
		updatedAt:   now,
		changes:     NewChangeTracker(),
	}
	r.changes.MarkDirty(FieldProductID, FieldScope, FieldPercentage, FieldReason, FieldExpiryDate, FieldStatus)

	r.recordEvent(&DiscountRequestCreatedEvent{
		RequestID:          r.id,
		ProductID:          r.productID,
		PatientID:          r.patientIDPtr(),
		IsGlobal:           r.scope.IsGlobal(),
		DiscountPercentage: r.percentage.String(),
		ExpiryDate:         dateString(r.expiryDate),
		RequestedBy:        r.requestedBy,
		CreatedAt:          now,
	})

	return r, nil
}

// RequestSnapshot is the persisted state of a request.
type RequestSnapshot struct {
	ID            string
	ProductID     string
	Scope         Scope
	Percentage    Percentage
	Reason        string
	ExpiryDate    *civil.Date
	Status        RequestStatus
	RequestedBy   string
	ApprovedBy    string
	ApprovalNotes string
	DecidedAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ReconstructDiscountRequest reconstitutes a request from storage.
func ReconstructDiscountRequest(s RequestSnapshot) *DiscountRequest {
	return &DiscountRequest{
		id:            s.ID,
		productID:     s.ProductID,
		scope:         s.Scope,
		percentage:    s.Percentage,
		reason:        s.Reason,
		expiryDate:    copyDate(s.ExpiryDate),
		status:        s.Status,
		requestedBy:   s.RequestedBy,
		approvedBy:    s.ApprovedBy,
		approvalNotes: s.ApprovalNotes,
		decidedAt:     copyTime(s.DecidedAt),
		createdAt:     s.CreatedAt,
		updatedAt:     s.UpdatedAt,
		changes:       NewChangeTracker(),
	}
}

// Snapshot returns the current state.
func (r *DiscountRequest) Snapshot() RequestSnapshot {
	return RequestSnapshot{
		ID:            r.id,
		ProductID:     r.productID,
		Scope:         r.scope,
		Percentage:    r.percentage,
		Reason:        r.reason,
		ExpiryDate:    copyDate(r.expiryDate),
		Status:        r.status,
		RequestedBy:   r.requestedBy,
		ApprovedBy:    r.approvedBy,
		ApprovalNotes: r.approvalNotes,
		DecidedAt:     copyTime(r.decidedAt),
		CreatedAt:     r.createdAt,
		UpdatedAt:     r.updatedAt,
	}
}

// Getters
func (r *DiscountRequest) ID() string                  { return r.id }
func (r *DiscountRequest) ProductID() string           { return r.productID }
func (r *DiscountRequest) Scope() Scope                { return r.scope }
func (r *DiscountRequest) Percentage() Percentage      { return r.percentage }
func (r *DiscountRequest) Reason() string              { return r.reason }
func (r *DiscountRequest) ExpiryDate() *civil.Date     { return copyDate(r.expiryDate) }
func (r *DiscountRequest) Status() RequestStatus       { return r.status }
func (r *DiscountRequest) RequestedBy() string         { return r.requestedBy }
func (r *DiscountRequest) ApprovedBy() string          { return r.approvedBy }
func (r *DiscountRequest) ApprovalNotes() string       { return r.approvalNotes }
func (r *DiscountRequest) DecidedAt() *time.Time       { return copyTime(r.decidedAt) }
func (r *DiscountRequest) CreatedAt() time.Time        { return r.createdAt }
func (r *DiscountRequest) UpdatedAt() time.Time        { return r.updatedAt }
func (r *DiscountRequest) Changes() *ChangeTracker     { return r.changes }
func (r *DiscountRequest) DomainEvents() []DomainEvent { return r.events }

// IsActiveOn reports whether the request is approved and not expired on the given date.
// The expiry date itself is still a valid day.
func (r *DiscountRequest) IsActiveOn(today civil.Date) bool {
	if r.status != StatusApproved {
		return false
	}
	return r.expiryDate == nil || !r.expiryDate.Before(today)
}

// RequestPatch lists the fields an update may change. Nil fields are left alone.
type RequestPatch struct {
	ProductID   *string
	IsGlobal    *bool
	PatientID   *string
	Percentage  *string
	Reason      *string
	ExpiryDate  *civil.Date
	ClearExpiry bool
}

// Update applies a partial edit. Only the requester or an admin may edit,
// and only while the request is pending.
func (r *DiscountRequest) Update(actor Actor, patch RequestPatch, today civil.Date, now time.Time) error {
	if !actor.IsAdmin() && actor.UserID != r.requestedBy {
		return ErrNotRequestOwner
	}
	if r.status != StatusPending {
		return ErrRequestNotEditable
	}

	verr := NewValidationError()

	productID := r.productID
	if patch.ProductID != nil {
		productID = strings.TrimSpace(*patch.ProductID)
		if productID == "" {
			verr.Add("product_id", "product_id is required")
		}
	}

	scope := r.scope
	if patch.IsGlobal != nil || patch.PatientID != nil {
		isGlobal := r.scope.IsGlobal()
		if patch.IsGlobal != nil {
			isGlobal = *patch.IsGlobal
		}
		patientID := r.patientIDPtr()
		if patch.PatientID != nil {
			patientID = patch.PatientID
		}
		s, err := NewScope(isGlobal, patientID)
		if err != nil {
			verr.AddErr("patient_id", err)
		}
		scope = s
	}

	pct := r.percentage
	if patch.Percentage != nil {
		p, err := ParsePercentage(*patch.Percentage)
		if err != nil {
			verr.AddErr("discount_percentage", err)
		}
		pct = p
	}

	reason := r.reason
	if patch.Reason != nil {
		reason = *patch.Reason
		validateReason(verr, reason)
	}

	expiry := r.expiryDate
	switch {
	case patch.ClearExpiry:
		expiry = nil
	case patch.ExpiryDate != nil:
		expiry = copyDate(patch.ExpiryDate)
		validateExpiry(verr, expiry, today)
	}

	if err := verr.OrNil(); err != nil {
		return err
	}

	if productID != r.productID {
		r.productID = productID
		r.changes.MarkDirty(FieldProductID)
	}
	if scope != r.scope {
		r.scope = scope
		r.changes.MarkDirty(FieldScope)
	}
	if !pct.Equals(r.percentage) {
		r.percentage = pct
		r.changes.MarkDirty(FieldPercentage)
	}
	if reason != r.reason {
		r.reason = reason
		r.changes.MarkDirty(FieldReason)
	}
	if !sameDate(expiry, r.expiryDate) {
		r.expiryDate = expiry
		r.changes.MarkDirty(FieldExpiryDate)
	}

	if !r.changes.HasChanges() {
		return nil
	}

	r.updatedAt = now
	r.recordEvent(&DiscountRequestUpdatedEvent{
		RequestID:     r.id,
		ChangedFields: r.changes.DirtyFields(),
		UpdatedBy:     actor.UserID,
		UpdatedAt:     now,
	})
	return nil
}

// Approve moves a pending request to approved.
func (r *DiscountRequest) Approve(actor Actor, notes string, policy ApprovalPolicy, now time.Time) error {
	return r.decide(StatusApproved, actor, notes, policy, now)
}

// Reject moves a pending request to rejected.
func (r *DiscountRequest) Reject(actor Actor, notes string, policy ApprovalPolicy, now time.Time) error {
	return r.decide(StatusRejected, actor, notes, policy, now)
}

// decide checks the pending state before authorization so a decided request
// always reports a conflict.
func (r *DiscountRequest) decide(to RequestStatus, actor Actor, notes string, policy ApprovalPolicy, now time.Time) error {
	if r.status != StatusPending {
		return ErrAlreadyDecided
	}
	if !policy.CanDecide(actor, r) {
		return ErrNotAllowedToDecide
	}
	if utf8.RuneCountInString(notes) > MaxApprovalNotesLength {
		return FieldError("approval_notes", "approval_notes must be at most 500 characters")
	}

	decidedAt := now
	r.status = to
	r.approvedBy = actor.UserID
	r.approvalNotes = notes
	r.decidedAt = &decidedAt
	r.updatedAt = now
	r.changes.MarkDirty(FieldStatus, FieldApprovedBy, FieldApprovalNotes, FieldDecidedAt)

	r.recordEvent(&DiscountRequestDecidedEvent{
		RequestID:     r.id,
		ProductID:     r.productID,
		Status:        string(to),
		DecidedBy:     actor.UserID,
		ApprovalNotes: notes,
		DecidedAt:     now,
	})
	return nil
}

func (r *DiscountRequest) recordEvent(event DomainEvent) {
	r.events = append(r.events, event)
}

func (r *DiscountRequest) patientIDPtr() *string {
	if r.scope.IsGlobal() {
		return nil
	}
	id := r.scope.PatientID()
	return &id
}

func validateReason(verr *ValidationError, reason string) {
	if utf8.RuneCountInString(reason) > MaxReasonLength {
		verr.Add("reason", "reason must be at most 1000 characters")
	}
}

func validateExpiry(verr *ValidationError, expiry *civil.Date, today civil.Date) {
	if expiry == nil {
		return
	}
	if !expiry.IsValid() {
		verr.Add("expiry_date", "expiry_date is not a valid date")
		return
	}
	if expiry.Before(today) {
		verr.Add("expiry_date", "expiry_date cannot be in the past")
	}
}

func copyDate(d *civil.Date) *civil.Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func sameDate(a, b *civil.Date) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func dateString(d *civil.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}
