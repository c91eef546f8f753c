package m_patient

import "cloud.google.com/go/spanner"

// Model provides a facade for type-safe operations on the patients table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a Spanner mutation for inserting a patient. Used to seed
// fixtures; production rows come from the patient service.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.InsertOrUpdate(
		TableName,
		[]string{PatientID, FullName, CreatedAt},
		[]interface{}{data.PatientID, data.FullName, spanner.CommitTimestamp},
	)
}
