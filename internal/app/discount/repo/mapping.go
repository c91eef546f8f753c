package repo

import (
	"fmt"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/models/m_discount_request"
)

// domainToData converts the aggregate to its row representation.
func domainToData(req *domain.DiscountRequest) *m_discount_request.Data {
	data := &m_discount_request.Data{
		RequestID:          req.ID(),
		ProductID:          req.ProductID(),
		IsGlobal:           req.Scope().IsGlobal(),
		DiscountPercentage: *req.Percentage().Rat(),
		Status:             string(req.Status()),
		RequestedBy:        req.RequestedBy(),
		CreatedAt:          req.CreatedAt(),
		UpdatedAt:          req.UpdatedAt(),
	}

	if !data.IsGlobal {
		data.PatientID = spanner.NullString{StringVal: req.Scope().PatientID(), Valid: true}
	}
	if req.Reason() != "" {
		data.Reason = spanner.NullString{StringVal: req.Reason(), Valid: true}
	}
	if d := req.ExpiryDate(); d != nil {
		data.ExpiryDate = spanner.NullDate{Date: *d, Valid: true}
	}
	if req.ApprovedBy() != "" {
		data.ApprovedBy = spanner.NullString{StringVal: req.ApprovedBy(), Valid: true}
	}
	if req.ApprovalNotes() != "" {
		data.ApprovalNotes = spanner.NullString{StringVal: req.ApprovalNotes(), Valid: true}
	}
	if t := req.DecidedAt(); t != nil {
		data.DecidedAt = spanner.NullTime{Time: *t, Valid: true}
	}

	return data
}

// dataToDomain reconstructs the aggregate from a row.
func dataToDomain(data *m_discount_request.Data) (*domain.DiscountRequest, error) {
	pct, err := domain.NewPercentageFromRat(&data.DiscountPercentage)
	if err != nil {
		return nil, fmt.Errorf("invalid stored percentage for request %s: %w", data.RequestID, err)
	}

	scope := domain.GlobalScope()
	if !data.IsGlobal {
		scope = domain.PatientScope(data.PatientID.StringVal)
	}

	snap := domain.RequestSnapshot{
		ID:            data.RequestID,
		ProductID:     data.ProductID,
		Scope:         scope,
		Percentage:    pct,
		Reason:        data.Reason.StringVal,
		Status:        domain.RequestStatus(data.Status),
		RequestedBy:   data.RequestedBy,
		ApprovedBy:    data.ApprovedBy.StringVal,
		ApprovalNotes: data.ApprovalNotes.StringVal,
		CreatedAt:     data.CreatedAt,
		UpdatedAt:     data.UpdatedAt,
	}
	if data.ExpiryDate.Valid {
		d := data.ExpiryDate.Date
		snap.ExpiryDate = &d
	}
	if data.DecidedAt.Valid {
		t := data.DecidedAt.Time
		snap.DecidedAt = &t
	}

	return domain.ReconstructDiscountRequest(snap), nil
}

// rowToDomain decodes a full discount_requests row.
func rowToDomain(row *spanner.Row) (*domain.DiscountRequest, error) {
	var data m_discount_request.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse discount request: %w", err)
	}
	return dataToDomain(&data)
}
