package domain

import "time"

// Event types written to the outbox.
const (
	EventRequestCreated  = "discount_request.created"
	EventRequestUpdated  = "discount_request.updated"
	EventRequestApproved = "discount_request.approved"
	EventRequestRejected = "discount_request.rejected"
)

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	EventType() string
	AggregateID() string
}

// DiscountRequestCreatedEvent is emitted when a request is submitted.
type DiscountRequestCreatedEvent struct {
	RequestID          string    `json:"request_id"`
	ProductID          string    `json:"product_id"`
	PatientID          *string   `json:"patient_id"`
	IsGlobal           bool      `json:"is_global"`
	DiscountPercentage string    `json:"discount_percentage"`
	ExpiryDate         *string   `json:"expiry_date"`
	RequestedBy        string    `json:"requested_by"`
	CreatedAt          time.Time `json:"created_at"`
}

func (e *DiscountRequestCreatedEvent) EventType() string   { return EventRequestCreated }
func (e *DiscountRequestCreatedEvent) AggregateID() string { return e.RequestID }

// DiscountRequestUpdatedEvent is emitted when a pending request is edited.
type DiscountRequestUpdatedEvent struct {
	RequestID     string    `json:"request_id"`
	ChangedFields []string  `json:"changed_fields"`
	UpdatedBy     string    `json:"updated_by"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (e *DiscountRequestUpdatedEvent) EventType() string   { return EventRequestUpdated }
func (e *DiscountRequestUpdatedEvent) AggregateID() string { return e.RequestID }

// DiscountRequestDecidedEvent is emitted when a request is approved or rejected.
type DiscountRequestDecidedEvent struct {
	RequestID     string    `json:"request_id"`
	ProductID     string    `json:"product_id"`
	Status        string    `json:"status"`
	DecidedBy     string    `json:"decided_by"`
	ApprovalNotes string    `json:"approval_notes,omitempty"`
	DecidedAt     time.Time `json:"decided_at"`
}

func (e *DiscountRequestDecidedEvent) EventType() string {
	if e.Status == string(StatusApproved) {
		return EventRequestApproved
	}
	return EventRequestRejected
}

func (e *DiscountRequestDecidedEvent) AggregateID() string { return e.RequestID }
