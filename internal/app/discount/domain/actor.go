package domain

// Role is the caller's role as asserted by the authentication layer.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Actor identifies who performs a lifecycle operation.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// ApprovalPolicy holds the configurable rules for deciding requests.
type ApprovalPolicy struct {
	// SelfServiceEnabled allows a requester to approve or reject their own
	// patient-scoped requests.
	SelfServiceEnabled bool
}

// CanDecide reports whether actor may approve or reject the request.
func (p ApprovalPolicy) CanDecide(actor Actor, req *DiscountRequest) bool {
	if actor.IsAdmin() {
		return true
	}
	return p.SelfServiceEnabled &&
		!req.Scope().IsGlobal() &&
		actor.UserID != "" &&
		actor.UserID == req.RequestedBy()
}

// CanView reports whether actor may read the request.
func CanView(actor Actor, req *DiscountRequest) bool {
	return actor.IsAdmin() || (actor.UserID != "" && actor.UserID == req.RequestedBy())
}
