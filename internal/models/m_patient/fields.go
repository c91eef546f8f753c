package m_patient

// Field name constants for the patients table. The table is owned by the
// patient service; this service only reads it.
const (
	TableName = "patients"

	PatientID = "patient_id"
	FullName  = "full_name"
	CreatedAt = "created_at"
)
