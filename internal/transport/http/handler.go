package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/calculate_price"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/get_request"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/list_active"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/list_requests"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/resolve_discount"
	"github.com/light-bringer/optics-discounts/internal/app/discount/usecases/approve_request"
	"github.com/light-bringer/optics-discounts/internal/app/discount/usecases/create_request"
	"github.com/light-bringer/optics-discounts/internal/app/discount/usecases/reject_request"
	"github.com/light-bringer/optics-discounts/internal/app/discount/usecases/update_request"
)

// Handler serves the discount request API.
// It's a thin coordinator that delegates to use cases and queries.
type Handler struct {
	// Commands
	createRequest  *create_request.Interactor
	updateRequest  *update_request.Interactor
	approveRequest *approve_request.Interactor
	rejectRequest  *reject_request.Interactor

	// Queries
	getRequest      *get_request.Query
	listRequests    *list_requests.Query
	listActive      *list_active.Query
	resolveDiscount *resolve_discount.Query
	calculatePrice  *calculate_price.Query
}

// NewHandler creates a new discount request HTTP handler.
func NewHandler(
	createRequest *create_request.Interactor,
	updateRequest *update_request.Interactor,
	approveRequest *approve_request.Interactor,
	rejectRequest *reject_request.Interactor,
	getRequest *get_request.Query,
	listRequests *list_requests.Query,
	listActive *list_active.Query,
	resolveDiscount *resolve_discount.Query,
	calculatePrice *calculate_price.Query,
) *Handler {
	return &Handler{
		createRequest:   createRequest,
		updateRequest:   updateRequest,
		approveRequest:  approveRequest,
		rejectRequest:   rejectRequest,
		getRequest:      getRequest,
		listRequests:    listRequests,
		listActive:      listActive,
		resolveDiscount: resolveDiscount,
		calculatePrice:  calculatePrice,
	}
}

// actor returns the caller set by the auth middleware. Routes are only
// mounted behind it, so a missing actor is a wiring bug.
func actor(r *http.Request) domain.Actor {
	a, _ := ActorFrom(r.Context())
	return a
}

// CreateRequest handles POST /discount-requests.
func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	var body createRequestBody
	if err := decodeJSON(r, &body, false); err != nil {
		writeError(w, r, err)
		return
	}

	dr, err := h.createRequest.Execute(r.Context(), &create_request.Request{
		ProductID:  body.ProductID,
		PatientID:  body.PatientID,
		IsGlobal:   body.IsGlobal,
		Percentage: string(body.DiscountPercentage),
		Reason:     body.Reason,
		ExpiryDate: body.ExpiryDate,
		Actor:      actor(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respondData(w, http.StatusCreated, toDiscountRequest(dr))
}

// UpdateRequest handles PUT /discount-requests/{id}.
func (h *Handler) UpdateRequest(w http.ResponseWriter, r *http.Request) {
	var body updateRequestBody
	if err := decodeJSON(r, &body, false); err != nil {
		writeError(w, r, err)
		return
	}

	patch := domain.RequestPatch{
		ProductID:   body.ProductID,
		IsGlobal:    body.IsGlobal,
		PatientID:   body.PatientID,
		Reason:      body.Reason,
		ExpiryDate:  body.ExpiryDate.Value,
		ClearExpiry: body.ExpiryDate.Set && body.ExpiryDate.Value == nil,
	}
	if body.DiscountPercentage != nil {
		pct := string(*body.DiscountPercentage)
		patch.Percentage = &pct
	}

	dr, err := h.updateRequest.Execute(r.Context(), &update_request.Request{
		RequestID: chi.URLParam(r, "id"),
		Patch:     patch,
		Actor:     actor(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, toDiscountRequest(dr))
}

// ApproveRequest handles POST /discount-requests/{id}/approve.
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	var body decisionBody
	if err := decodeJSON(r, &body, true); err != nil {
		writeError(w, r, err)
		return
	}

	dr, err := h.approveRequest.Execute(r.Context(), &approve_request.Request{
		RequestID:     chi.URLParam(r, "id"),
		ApprovalNotes: body.ApprovalNotes,
		Actor:         actor(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, toDiscountRequest(dr))
}

// RejectRequest handles POST /discount-requests/{id}/reject.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	var body decisionBody
	if err := decodeJSON(r, &body, true); err != nil {
		writeError(w, r, err)
		return
	}

	dr, err := h.rejectRequest.Execute(r.Context(), &reject_request.Request{
		RequestID:     chi.URLParam(r, "id"),
		ApprovalNotes: body.ApprovalNotes,
		Actor:         actor(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, toDiscountRequest(dr))
}

// GetRequest handles GET /discount-requests/{id}.
func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	dr, err := h.getRequest.Execute(r.Context(), &get_request.Request{
		RequestID: chi.URLParam(r, "id"),
		Actor:     actor(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, toDiscountRequest(dr))
}

// ListRequests handles GET /discount-requests.
func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	pageSize, err := queryInt(r, "page_size", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	query := r.URL.Query()
	res, err := h.listRequests.Execute(r.Context(), &list_requests.Request{
		Status:    query.Get("status"),
		ProductID: query.Get("product_id"),
		PatientID: query.Get("patient_id"),
		PageSize:  int(pageSize),
		PageToken: query.Get("page_token"),
		Actor:     actor(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, toListResponse(res))
}

// ListActive handles GET /discount-requests/active.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	reqs, err := h.listActive.Execute(r.Context(), &list_active.Request{
		ProductID: query.Get("product_id"),
		PatientID: query.Get("patient_id"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, toVisibleDiscountRequests(actor(r), reqs))
}

// ActiveDiscount handles GET /active-discounts and returns the winning
// discount for the scope, or null when none applies.
func (h *Handler) ActiveDiscount(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	dr, err := h.resolveDiscount.Execute(r.Context(), &resolve_discount.Request{
		ProductID: query.Get("product_id"),
		PatientID: query.Get("patient_id"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, toVisibleDiscountRequest(actor(r), dr))
}

// CalculatePrice handles GET /products/{id}/calculate-price.
func (h *Handler) CalculatePrice(w http.ResponseWriter, r *http.Request) {
	quantity, err := queryInt(r, "quantity", 1)
	if err != nil {
		writeError(w, r, err)
		return
	}

	productID := chi.URLParam(r, "id")
	patientID := r.URL.Query().Get("patient_id")

	res, err := h.calculatePrice.Execute(r.Context(), &calculate_price.Request{
		ProductID: productID,
		PatientID: patientID,
		Quantity:  quantity,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	respondData(w, http.StatusOK, toPriceResult(productID, patientID, res))
}
