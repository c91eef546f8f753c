package http

import (
	"time"

	"github.com/light-bringer/optics-discounts/internal/app/discount/contracts"
	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/models/m_outbox"
)

// DiscountRequest is the JSON shape of a discount request.
type DiscountRequest struct {
	ID                 string  `json:"id"`
	ProductID          string  `json:"product_id"`
	PatientID          *string `json:"patient_id"`
	IsGlobal           bool    `json:"is_global"`
	DiscountPercentage string  `json:"discount_percentage"`
	Reason             string  `json:"reason"`
	ExpiryDate         *string `json:"expiry_date"`
	Status             string  `json:"status"`
	RequestedBy        string  `json:"requested_by"`
	ApprovedBy         *string `json:"approved_by"`
	ApprovalNotes      *string `json:"approval_notes"`
	DecidedAt          *string `json:"decided_at"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

// ListDiscountRequestsResponse is one page of requests.
type ListDiscountRequestsResponse struct {
	Requests      []*DiscountRequest `json:"requests"`
	NextPageToken string             `json:"next_page_token,omitempty"`
	TotalCount    int64              `json:"total_count"`
}

// PriceResult is the JSON shape of a priced line.
type PriceResult struct {
	ProductID          string  `json:"product_id"`
	PatientID          *string `json:"patient_id"`
	UnitPrice          string  `json:"unit_price"`
	Quantity           int64   `json:"quantity"`
	OriginalTotal      string  `json:"original_total"`
	DiscountPercentage string  `json:"discount_percentage"`
	DiscountAmount     string  `json:"discount_amount"`
	FinalTotal         string  `json:"final_total"`
	DiscountApplied    bool    `json:"discount_applied"`
	DiscountRequestID  *string `json:"discount_request_id"`
}

// Event represents a domain event in the HTTP response.
type Event struct {
	EventID     string  `json:"event_id"`
	EventType   string  `json:"event_type"`
	AggregateID string  `json:"aggregate_id"`
	Payload     string  `json:"payload"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
	ProcessedAt *string `json:"processed_at,omitempty"`
}

// ListEventsResponse represents the HTTP response for listing events.
type ListEventsResponse struct {
	Events     []Event `json:"events"`
	TotalCount int64   `json:"total_count"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// toDiscountRequest converts the aggregate to its JSON shape.
func toDiscountRequest(dr *domain.DiscountRequest) *DiscountRequest {
	if dr == nil {
		return nil
	}

	out := &DiscountRequest{
		ID:                 dr.ID(),
		ProductID:          dr.ProductID(),
		PatientID:          optionalString(dr.Scope().PatientID()),
		IsGlobal:           dr.Scope().IsGlobal(),
		DiscountPercentage: dr.Percentage().String(),
		Reason:             dr.Reason(),
		Status:             string(dr.Status()),
		RequestedBy:        dr.RequestedBy(),
		ApprovedBy:         optionalString(dr.ApprovedBy()),
		ApprovalNotes:      optionalString(dr.ApprovalNotes()),
		CreatedAt:          formatTime(dr.CreatedAt()),
		UpdatedAt:          formatTime(dr.UpdatedAt()),
	}
	if d := dr.ExpiryDate(); d != nil {
		s := d.String()
		out.ExpiryDate = &s
	}
	if t := dr.DecidedAt(); t != nil {
		s := formatTime(*t)
		out.DecidedAt = &s
	}
	return out
}

func toDiscountRequests(reqs []*domain.DiscountRequest) []*DiscountRequest {
	out := make([]*DiscountRequest, 0, len(reqs))
	for _, dr := range reqs {
		out = append(out, toDiscountRequest(dr))
	}
	return out
}

// toVisibleDiscountRequest hides who asked for a request and why from
// callers who may not read the request itself.
func toVisibleDiscountRequest(viewer domain.Actor, dr *domain.DiscountRequest) *DiscountRequest {
	out := toDiscountRequest(dr)
	if out == nil || domain.CanView(viewer, dr) {
		return out
	}
	out.Reason = ""
	out.RequestedBy = ""
	out.ApprovalNotes = nil
	return out
}

func toVisibleDiscountRequests(viewer domain.Actor, reqs []*domain.DiscountRequest) []*DiscountRequest {
	out := make([]*DiscountRequest, 0, len(reqs))
	for _, dr := range reqs {
		out = append(out, toVisibleDiscountRequest(viewer, dr))
	}
	return out
}

func toListResponse(res *contracts.ListResult) *ListDiscountRequestsResponse {
	return &ListDiscountRequestsResponse{
		Requests:      toDiscountRequests(res.Requests),
		NextPageToken: res.NextPageToken,
		TotalCount:    res.TotalCount,
	}
}

func toPriceResult(productID, patientID string, res *domain.PriceResult) *PriceResult {
	pct := "0.00"
	if !res.DiscountPercentage.IsZero() {
		pct = res.DiscountPercentage.String()
	}
	return &PriceResult{
		ProductID:          productID,
		PatientID:          optionalString(patientID),
		UnitPrice:          res.UnitPrice.String(),
		Quantity:           res.Quantity,
		OriginalTotal:      res.OriginalTotal.String(),
		DiscountPercentage: pct,
		DiscountAmount:     res.DiscountAmount.String(),
		FinalTotal:         res.FinalTotal.String(),
		DiscountApplied:    res.DiscountApplied,
		DiscountRequestID:  optionalString(res.DiscountRequestID),
	}
}

func toEvent(e *m_outbox.Data) Event {
	event := Event{
		EventID:     e.EventID,
		EventType:   e.EventType,
		AggregateID: e.AggregateID,
		Status:      e.Status,
		CreatedAt:   formatTime(e.CreatedAt),
	}
	if e.Payload.Valid {
		event.Payload = e.Payload.String()
	}
	if e.ProcessedAt.Valid {
		processedAt := formatTime(e.ProcessedAt.Time)
		event.ProcessedAt = &processedAt
	}
	return event
}
