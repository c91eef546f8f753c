package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/list_events"
	"github.com/light-bringer/optics-discounts/internal/app/discount/repo"
	"github.com/light-bringer/optics-discounts/internal/pkg/config"
)

// check_events prints the newest outbox rows, optionally for one discount request.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	aggregateID := flag.String("request", "", "Only show events for this discount request id")
	eventType := flag.String("type", "", "Only show this event type, e.g. discount_request.approved")
	limit := flag.Int("limit", 10, "Maximum number of events")
	flag.Parse()

	ctx := context.Background()
	client, err := spanner.NewClient(ctx, cfg.SpannerDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create client: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	query := list_events.NewQuery(repo.NewEventsReadModel(client))
	events, err := query.Execute(ctx, &list_events.Request{
		EventType:   *eventType,
		AggregateID: *aggregateID,
		Limit:       *limit,
		Actor:       domain.Actor{UserID: "check-events", Role: domain.RoleAdmin},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to list events: %v\n", err)
		os.Exit(1)
	}

	if len(events) == 0 {
		fmt.Println("No events found!")
		return
	}

	fmt.Println("Events in outbox_events table:")
	for i, event := range events {
		fmt.Printf("%d. %s - %s (request: %s, status: %s)\n", i+1, event.EventType, event.EventID, event.AggregateID, event.Status)
		if event.Payload.Valid {
			fmt.Printf("   %s\n", event.Payload.String())
		}
	}
	fmt.Printf("\nTotal: %d events\n", len(events))
}
