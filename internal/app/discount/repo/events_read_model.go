package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/list_events"
	"github.com/light-bringer/optics-discounts/internal/models/m_outbox"
	"github.com/light-bringer/optics-discounts/internal/pkg/query"
)

// EventsReadModel implements list_events.EventsReadModel for Spanner.
type EventsReadModel struct {
	client *spanner.Client
}

// NewEventsReadModel creates a new EventsReadModel.
func NewEventsReadModel(client *spanner.Client) *EventsReadModel {
	return &EventsReadModel{
		client: client,
	}
}

// EventsStatement builds the filtered outbox query.
func EventsStatement(req *list_events.Request) spanner.Statement {
	q := query.From(m_outbox.TableName).Select(
		m_outbox.EventID,
		m_outbox.EventType,
		m_outbox.AggregateID,
		m_outbox.Payload,
		m_outbox.Status,
		m_outbox.CreatedAt,
		m_outbox.ProcessedAt,
		m_outbox.RetryCount,
		m_outbox.ErrorMessage,
	)

	if req.EventType != "" {
		q = q.Where(query.Eq(m_outbox.EventType, req.EventType))
	}
	if req.AggregateID != "" {
		q = q.Where(query.Eq(m_outbox.AggregateID, req.AggregateID))
	}
	if req.Status != "" {
		q = q.Where(query.Eq(m_outbox.Status, req.Status))
	}

	return q.OrderBy(m_outbox.CreatedAt, query.Desc).
		OrderBy(m_outbox.EventID, query.Asc).
		Limit(int64(req.Limit)).
		Build()
}

// ListEvents retrieves events from the outbox_events table with filtering.
func (r *EventsReadModel) ListEvents(ctx context.Context, req *list_events.Request) ([]*m_outbox.Data, error) {
	iter := r.client.Single().Query(ctx, EventsStatement(req))
	defer iter.Stop()

	events := make([]*m_outbox.Data, 0)
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate events: %w", err)
		}

		var event m_outbox.Data
		if err := row.ToStruct(&event); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}

		events = append(events, &event)
	}

	return events, nil
}
