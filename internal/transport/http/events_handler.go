package http

import (
	"net/http"

	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/list_events"
)

// EventsHandler serves the outbox audit trail.
type EventsHandler struct {
	listEvents *list_events.Query
}

// NewEventsHandler creates a new HTTP events handler.
func NewEventsHandler(listEvents *list_events.Query) *EventsHandler {
	return &EventsHandler{
		listEvents: listEvents,
	}
}

// ServeHTTP handles GET /events requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}

	query := r.URL.Query()
	rows, err := h.listEvents.Execute(r.Context(), &list_events.Request{
		EventType:   query.Get("event_type"),
		AggregateID: query.Get("aggregate_id"),
		Status:      query.Get("status"),
		Limit:       int(limit),
		Actor:       actor(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, toEvent(row))
	}

	respondData(w, http.StatusOK, ListEventsResponse{
		Events:     events,
		TotalCount: int64(len(events)),
	})
}
