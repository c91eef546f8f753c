package m_discount_request

import (
	"math/big"
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents the database model for the discount_requests table.
type Data struct {
	RequestID          string             `spanner:"request_id"`
	ProductID          string             `spanner:"product_id"`
	PatientID          spanner.NullString `spanner:"patient_id"`
	IsGlobal           bool               `spanner:"is_global"`
	DiscountPercentage big.Rat            `spanner:"discount_percentage"`
	Reason             spanner.NullString `spanner:"reason"`
	ExpiryDate         spanner.NullDate   `spanner:"expiry_date"`
	Status             string             `spanner:"status"`
	RequestedBy        string             `spanner:"requested_by"`
	ApprovedBy         spanner.NullString `spanner:"approved_by"`
	ApprovalNotes      spanner.NullString `spanner:"approval_notes"`
	DecidedAt          spanner.NullTime   `spanner:"decided_at"`
	CreatedAt          time.Time          `spanner:"created_at"`
	UpdatedAt          time.Time          `spanner:"updated_at"`
}
