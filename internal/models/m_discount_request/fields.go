package m_discount_request

// Field name constants for the discount_requests table.
const (
	TableName = "discount_requests"

	RequestID          = "request_id"
	ProductID          = "product_id"
	PatientID          = "patient_id"
	IsGlobal           = "is_global"
	DiscountPercentage = "discount_percentage"
	Reason             = "reason"
	ExpiryDate         = "expiry_date"
	Status             = "status"
	RequestedBy        = "requested_by"
	ApprovedBy         = "approved_by"
	ApprovalNotes      = "approval_notes"
	DecidedAt          = "decided_at"
	CreatedAt          = "created_at"
	UpdatedAt          = "updated_at"
)

// Columns lists every column in the order Data declares them.
var Columns = []string{
	RequestID,
	ProductID,
	PatientID,
	IsGlobal,
	DiscountPercentage,
	Reason,
	ExpiryDate,
	Status,
	RequestedBy,
	ApprovedBy,
	ApprovalNotes,
	DecidedAt,
	CreatedAt,
	UpdatedAt,
}

// StatusPending mirrors the domain status stored for undecided requests.
const StatusPending = "pending"
