package m_discount_request

import (
	"fmt"

	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the discount_requests table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a Spanner mutation for inserting a discount request.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.Insert(
		TableName,
		Columns,
		[]interface{}{
			data.RequestID,
			data.ProductID,
			data.PatientID,
			data.IsGlobal,
			data.DiscountPercentage,
			data.Reason,
			data.ExpiryDate,
			data.Status,
			data.RequestedBy,
			data.ApprovedBy,
			data.ApprovalNotes,
			data.DecidedAt,
			data.CreatedAt,
			spanner.CommitTimestamp,
		},
	)
}

// UpdateMut creates a Spanner mutation for updating specific columns.
func (m *Model) UpdateMut(requestID string, updates map[string]interface{}) *spanner.Mutation {
	if len(updates) == 0 {
		return nil
	}

	updates[UpdatedAt] = spanner.CommitTimestamp

	columns := make([]string, 0, len(updates)+1)
	values := make([]interface{}, 0, len(updates)+1)

	columns = append(columns, RequestID)
	values = append(values, requestID)

	for col, val := range updates {
		columns = append(columns, col)
		values = append(values, val)
	}

	return spanner.Update(TableName, columns, values)
}

// DecideStmt records a decision only if the row is still pending. The
// statement affects zero rows when another transaction decided first.
func (m *Model) DecideStmt(data *Data) spanner.Statement {
	return spanner.Statement{
		SQL: fmt.Sprintf(
			"UPDATE %s SET %s = @status, %s = @approved_by, %s = @approval_notes, %s = @decided_at, %s = PENDING_COMMIT_TIMESTAMP() "+
				"WHERE %s = @request_id AND %s = @pending",
			TableName, Status, ApprovedBy, ApprovalNotes, DecidedAt, UpdatedAt,
			RequestID, Status,
		),
		Params: map[string]interface{}{
			"status":         data.Status,
			"approved_by":    data.ApprovedBy,
			"approval_notes": data.ApprovalNotes,
			"decided_at":     data.DecidedAt,
			"request_id":     data.RequestID,
			"pending":        StatusPending,
		},
	}
}

// PendingLockStmt touches the row only while it is pending. Edits run it in
// the same transaction as their buffered mutation.
func (m *Model) PendingLockStmt(requestID string) spanner.Statement {
	return spanner.Statement{
		SQL: fmt.Sprintf(
			"UPDATE %s SET %s = PENDING_COMMIT_TIMESTAMP() WHERE %s = @request_id AND %s = @pending",
			TableName, UpdatedAt, RequestID, Status,
		),
		Params: map[string]interface{}{
			"request_id": requestID,
			"pending":    StatusPending,
		},
	}
}
