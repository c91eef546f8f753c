//go:build integration

package e2e

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/app/discount/usecases/approve_request"
	"github.com/light-bringer/optics-discounts/internal/app/discount/usecases/create_request"
	"github.com/light-bringer/optics-discounts/internal/app/discount/usecases/reject_request"
	"github.com/light-bringer/optics-discounts/internal/testutil"
)

// TestConcurrentDecisions races an approval against a rejection.
// Expected: exactly one decision lands, the other sees a conflict.
func TestConcurrentDecisions(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTest(t)
	defer cleanup()

	testutil.SeedProduct(t, s.Client, "prod-1", "100.00")

	created, err := s.CreateRequest.Execute(ctx, &create_request.Request{
		ProductID:  "prod-1",
		IsGlobal:   true,
		Percentage: "10",
		Actor:      testutil.Requester,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var approveErr, rejectErr error

	wg.Add(2)

	go func() {
		defer wg.Done()
		_, approveErr = s.ApproveRequest.Execute(ctx, &approve_request.Request{
			RequestID: created.ID(),
			Actor:     testutil.Admin,
		})
	}()

	go func() {
		defer wg.Done()
		_, rejectErr = s.RejectRequest.Execute(ctx, &reject_request.Request{
			RequestID: created.ID(),
			Actor:     testutil.Admin,
		})
	}()

	wg.Wait()

	successCount := 0
	for _, err := range []error{approveErr, rejectErr} {
		if err == nil {
			successCount++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrConflict)
	}
	assert.Equal(t, 1, successCount, "exactly one decision should succeed")

	approvedEvents := testutil.CountRows(t, s.Client, "outbox_events",
		"aggregate_id = @id AND event_type IN UNNEST(@types)",
		map[string]interface{}{
			"id":    created.ID(),
			"types": []string{domain.EventRequestApproved, domain.EventRequestRejected},
		})
	assert.Equal(t, int64(1), approvedEvents, "only the winning decision writes an event")
}

// TestConcurrentApprovals fires several approvals at one pending request.
func TestConcurrentApprovals(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTest(t)
	defer cleanup()

	testutil.SeedProduct(t, s.Client, "prod-1", "100.00")

	created, err := s.CreateRequest.Execute(ctx, &create_request.Request{
		ProductID:  "prod-1",
		IsGlobal:   true,
		Percentage: "10",
		Actor:      testutil.Requester,
	})
	require.NoError(t, err)

	const workers = 5
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, errs[idx] = s.ApproveRequest.Execute(ctx, &approve_request.Request{
				RequestID: created.ID(),
				Actor:     testutil.Admin,
			})
		}(i)
	}
	wg.Wait()

	successCount := 0
	for _, err := range errs {
		if err == nil {
			successCount++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyDecided)
	}
	assert.Equal(t, 1, successCount)
	testutil.AssertOutboxEventCount(t, s.Client, created.ID(), domain.EventRequestApproved, 1)
}
