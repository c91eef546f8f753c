package m_outbox

import (
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the outbox_events table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a Spanner mutation for inserting an outbox event.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.Insert(
		TableName,
		[]string{
			EventID,
			EventType,
			AggregateID,
			Payload,
			Status,
			CreatedAt,
			ProcessedAt,
			RetryCount,
			ErrorMessage,
		},
		[]interface{}{
			data.EventID,
			data.EventType,
			data.AggregateID,
			data.Payload,
			data.Status,
			spanner.CommitTimestamp,
			data.ProcessedAt,
			data.RetryCount,
			data.ErrorMessage,
		},
	)
}

const purgeFilter = "(%[2]s = @completed AND %[3]s < @completedCutoff) OR (%[2]s = @failed AND %[3]s < @failedCutoff)"

func purgeParams(completedCutoff, failedCutoff time.Time) map[string]interface{} {
	return map[string]interface{}{
		"completed":       StatusCompleted,
		"failed":          StatusFailed,
		"completedCutoff": completedCutoff,
		"failedCutoff":    failedCutoff,
	}
}

// PurgeStmt deletes processed events older than their retention cutoff.
func (m *Model) PurgeStmt(completedCutoff, failedCutoff time.Time) spanner.Statement {
	return spanner.Statement{
		SQL:    fmt.Sprintf("DELETE FROM %[1]s WHERE "+purgeFilter, TableName, Status, ProcessedAt),
		Params: purgeParams(completedCutoff, failedCutoff),
	}
}

// PurgeCountStmt counts what PurgeStmt would delete, grouped by status.
func (m *Model) PurgeCountStmt(completedCutoff, failedCutoff time.Time) spanner.Statement {
	return spanner.Statement{
		SQL: fmt.Sprintf("SELECT %[2]s, COUNT(*) FROM %[1]s WHERE "+purgeFilter+" GROUP BY %[2]s",
			TableName, Status, ProcessedAt),
		Params: purgeParams(completedCutoff, failedCutoff),
	}
}
