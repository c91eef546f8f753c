package testutil

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
)

// Actors shared by unit tests.
var (
	Admin     = domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
	Requester = domain.Actor{UserID: "user-1", Role: domain.RoleUser}
	Stranger  = domain.Actor{UserID: "user-2", Role: domain.RoleUser}
)

// RequestOption customizes a snapshot built by PendingRequest or ApprovedRequest.
type RequestOption func(*domain.RequestSnapshot)

// ForPatient scopes the request to a patient.
func ForPatient(patientID string) RequestOption {
	return func(s *domain.RequestSnapshot) { s.Scope = domain.PatientScope(patientID) }
}

// ForProduct sets the product.
func ForProduct(productID string) RequestOption {
	return func(s *domain.RequestSnapshot) { s.ProductID = productID }
}

// Percent sets the discount percentage.
func Percent(pct string) RequestOption {
	return func(s *domain.RequestSnapshot) {
		p, err := domain.ParsePercentage(pct)
		if err != nil {
			panic(err)
		}
		s.Percentage = p
	}
}

// ExpiresOn sets the expiry date.
func ExpiresOn(d civil.Date) RequestOption {
	return func(s *domain.RequestSnapshot) { s.ExpiryDate = &d }
}

// DecidedAt sets the decision time.
func DecidedAt(t time.Time) RequestOption {
	return func(s *domain.RequestSnapshot) { s.DecidedAt = &t }
}

// RequestedBy sets the requester.
func RequestedBy(userID string) RequestOption {
	return func(s *domain.RequestSnapshot) { s.RequestedBy = userID }
}

// CreatedAt sets the creation time.
func CreatedAt(t time.Time) RequestOption {
	return func(s *domain.RequestSnapshot) { s.CreatedAt = t }
}

// PendingRequest builds a global 10% pending request for prod-1 created by Requester.
func PendingRequest(id string, opts ...RequestOption) domain.RequestSnapshot {
	p, _ := domain.ParsePercentage("10")
	s := domain.RequestSnapshot{
		ID:          id,
		ProductID:   "prod-1",
		Scope:       domain.GlobalScope(),
		Percentage:  p,
		Status:      domain.StatusPending,
		RequestedBy: Requester.UserID,
		CreatedAt:   ReferenceTime.Add(-72 * time.Hour),
		UpdatedAt:   ReferenceTime.Add(-72 * time.Hour),
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// ApprovedRequest builds an approved request decided a day before ReferenceTime.
func ApprovedRequest(id string, opts ...RequestOption) domain.RequestSnapshot {
	decided := ReferenceTime.Add(-24 * time.Hour)
	base := []RequestOption{func(s *domain.RequestSnapshot) {
		s.Status = domain.StatusApproved
		s.ApprovedBy = Admin.UserID
		s.DecidedAt = &decided
	}}
	return PendingRequest(id, append(base, opts...)...)
}
