package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/optics-discounts/internal/models/m_outbox"
	"github.com/light-bringer/optics-discounts/internal/pkg/config"
	"github.com/light-bringer/optics-discounts/internal/pkg/logger"
)

// Options for the outbox cleanup job
type Options struct {
	SpannerDB              string
	CompletedRetentionDays int
	FailedRetentionDays    int
	DryRun                 bool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: "outbox-cleanup",
		Version:     cfg.Version,
	})

	// Parse command-line flags
	opts := Options{}
	flag.StringVar(&opts.SpannerDB, "database", cfg.SpannerDB, "Spanner database (format: projects/PROJECT/instances/INSTANCE/databases/DATABASE)")
	flag.IntVar(&opts.CompletedRetentionDays, "completed-retention", 30, "Retention days for completed events")
	flag.IntVar(&opts.FailedRetentionDays, "failed-retention", 90, "Retention days for failed events")
	flag.BoolVar(&opts.DryRun, "dry-run", false, "Show what would be deleted without actually deleting")
	flag.Parse()

	if err := opts.validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid flags")
	}

	ctx := log.WithContext(context.Background())
	if err := cleanupOutbox(ctx, opts, time.Now()); err != nil {
		log.Fatal().Err(err).Msg("Cleanup failed")
	}

	log.Info().Msg("Cleanup completed successfully")
}

func (o Options) validate() error {
	if o.SpannerDB == "" {
		return errors.New("-database is required")
	}
	if o.CompletedRetentionDays < 1 || o.FailedRetentionDays < 1 {
		return errors.New("retention must be at least one day")
	}
	return nil
}

// cutoffs returns the processed_at limits for completed and failed events.
func (o Options) cutoffs(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	return now.AddDate(0, 0, -o.CompletedRetentionDays), now.AddDate(0, 0, -o.FailedRetentionDays)
}

func cleanupOutbox(ctx context.Context, opts Options, now time.Time) error {
	client, err := spanner.NewClient(ctx, opts.SpannerDB)
	if err != nil {
		return fmt.Errorf("failed to create Spanner client: %w", err)
	}
	defer client.Close()

	completedCutoff, failedCutoff := opts.cutoffs(now)

	zerolog.Ctx(ctx).Info().
		Time("completed_cutoff", completedCutoff).
		Time("failed_cutoff", failedCutoff).
		Bool("dry_run", opts.DryRun).
		Msg("Starting outbox cleanup")

	model := m_outbox.NewModel()
	if opts.DryRun {
		return dryRunCleanup(ctx, client, model, completedCutoff, failedCutoff)
	}
	return performCleanup(ctx, client, model, completedCutoff, failedCutoff)
}

// countByStatus drains the rows of a purge count query.
func countByStatus(iter *spanner.RowIterator) (map[string]int64, int64, error) {
	defer iter.Stop()

	counts := make(map[string]int64)
	var total int64
	for {
		row, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to count events: %w", err)
		}

		var status string
		var count int64
		if err := row.Columns(&status, &count); err != nil {
			return nil, 0, fmt.Errorf("failed to parse row: %w", err)
		}
		counts[status] = count
		total += count
	}
	return counts, total, nil
}

func dryRunCleanup(ctx context.Context, client *spanner.Client, model *m_outbox.Model, completedCutoff, failedCutoff time.Time) error {
	counts, total, err := countByStatus(client.Single().Query(ctx, model.PurgeCountStmt(completedCutoff, failedCutoff)))
	if err != nil {
		return err
	}

	log := zerolog.Ctx(ctx)
	for status, count := range counts {
		log.Info().Str("status", status).Int64("count", count).Msg("Would delete events")
	}
	log.Info().Int64("total", total).Msg("DRY RUN: run without -dry-run to delete")
	return nil
}

func performCleanup(ctx context.Context, client *spanner.Client, model *m_outbox.Model, completedCutoff, failedCutoff time.Time) error {
	log := zerolog.Ctx(ctx)

	_, err := client.ReadWriteTransaction(ctx, func(ctx context.Context, txn *spanner.ReadWriteTransaction) error {
		_, total, err := countByStatus(txn.Query(ctx, model.PurgeCountStmt(completedCutoff, failedCutoff)))
		if err != nil {
			return err
		}
		if total == 0 {
			log.Info().Msg("No old events to delete")
			return nil
		}

		log.Info().Int64("count", total).Msg("Deleting old events")

		rowCount, err := txn.Update(ctx, model.PurgeStmt(completedCutoff, failedCutoff))
		if err != nil {
			return fmt.Errorf("failed to delete events: %w", err)
		}

		log.Info().Int64("deleted", rowCount).Msg("Deleted events")
		return nil
	})
	if err != nil {
		return fmt.Errorf("cleanup transaction failed: %w", err)
	}

	return nil
}
