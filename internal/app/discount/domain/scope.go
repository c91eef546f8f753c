package domain

// Scope tells which patients a discount request applies to. The zero value
// is the global scope.
type Scope struct {
	patientID string
}

// GlobalScope applies to every patient buying the product.
func GlobalScope() Scope {
	return Scope{}
}

// PatientScope applies to exactly one patient.
func PatientScope(patientID string) Scope {
	return Scope{patientID: patientID}
}

// NewScope builds a scope from the wire representation. A global request
// drops any supplied patient; a non-global request must name one.
func NewScope(isGlobal bool, patientID *string) (Scope, error) {
	if isGlobal {
		return GlobalScope(), nil
	}
	if patientID == nil || *patientID == "" {
		return Scope{}, ErrPatientRequired
	}
	return PatientScope(*patientID), nil
}

func (s Scope) IsGlobal() bool { return s.patientID == "" }

// PatientID returns the targeted patient, or "" for the global scope.
func (s Scope) PatientID() string { return s.patientID }

// Targets reports whether the scope is specific to the given patient.
func (s Scope) Targets(patientID string) bool {
	return patientID != "" && s.patientID == patientID
}

// AppliesTo reports whether a purchase by patientID ("" for anonymous) may use the discount.
func (s Scope) AppliesTo(patientID string) bool {
	return s.IsGlobal() || s.Targets(patientID)
}
