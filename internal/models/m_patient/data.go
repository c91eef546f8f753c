package m_patient

import "time"

// Data represents the database model for the patients table.
type Data struct {
	PatientID string    `spanner:"patient_id"`
	FullName  string    `spanner:"full_name"`
	CreatedAt time.Time `spanner:"created_at"`
}
