package update_request

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/app/discount/references"
	"github.com/light-bringer/optics-discounts/internal/testutil"
)

func setup(t *testing.T) (*Interactor, *testutil.Store) {
	t.Helper()
	store := testutil.NewStore()
	store.AddProduct("prod-1", "100.00")
	store.AddProduct("prod-2", "50.00")
	store.AddPatient("pat-1")
	store.PutRequest(testutil.PendingRequest("req-1", testutil.ForPatient("pat-1")))

	interactor := NewInteractor(
		store.RequestRepo(),
		store.Outbox(),
		references.NewChecker(store.Catalog(), store.Patients()),
		store,
		testutil.NewFixedClock(),
		time.UTC,
	)
	return interactor, store
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestUpdateRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("requester changes percentage and product", func(t *testing.T) {
		interactor, store := setup(t)

		dr, err := interactor.Execute(ctx, &Request{
			RequestID: "req-1",
			Patch:     domain.RequestPatch{Percentage: strPtr("25"), ProductID: strPtr("prod-2")},
			Actor:     testutil.Requester,
		})
		require.NoError(t, err)
		assert.Equal(t, "25.00", dr.Percentage().String())

		stored, _ := store.Request("req-1")
		assert.Equal(t, "prod-2", stored.ProductID)
		assert.Equal(t, "25.00", stored.Percentage.String())
		assert.Equal(t, testutil.ReferenceTime, stored.UpdatedAt)
		assert.Equal(t, []string{domain.EventRequestUpdated}, store.EventTypes())
	})

	t.Run("admin switches to global", func(t *testing.T) {
		interactor, store := setup(t)

		_, err := interactor.Execute(ctx, &Request{
			RequestID: "req-1",
			Patch:     domain.RequestPatch{IsGlobal: boolPtr(true)},
			Actor:     testutil.Admin,
		})
		require.NoError(t, err)

		stored, _ := store.Request("req-1")
		assert.True(t, stored.Scope.IsGlobal())
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		interactor, store := setup(t)

		_, err := interactor.Execute(ctx, &Request{
			RequestID: "req-1",
			Patch:     domain.RequestPatch{Percentage: strPtr("50")},
			Actor:     testutil.Stranger,
		})
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Zero(t, store.Commits())
	})

	t.Run("decided request is forbidden", func(t *testing.T) {
		interactor, store := setup(t)
		store.PutRequest(testutil.ApprovedRequest("req-2"))

		_, err := interactor.Execute(ctx, &Request{
			RequestID: "req-2",
			Patch:     domain.RequestPatch{Percentage: strPtr("50")},
			Actor:     testutil.Requester,
		})
		assert.ErrorIs(t, err, domain.ErrRequestNotEditable)
	})

	t.Run("unknown new patient", func(t *testing.T) {
		interactor, store := setup(t)

		_, err := interactor.Execute(ctx, &Request{
			RequestID: "req-1",
			Patch:     domain.RequestPatch{PatientID: strPtr("ghost")},
			Actor:     testutil.Requester,
		})
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "patient_id")

		stored, _ := store.Request("req-1")
		assert.Equal(t, "pat-1", stored.Scope.PatientID())
	})

	t.Run("not found", func(t *testing.T) {
		interactor, _ := setup(t)

		_, err := interactor.Execute(ctx, &Request{RequestID: "missing", Actor: testutil.Admin})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unchanged patch commits nothing", func(t *testing.T) {
		interactor, store := setup(t)

		_, err := interactor.Execute(ctx, &Request{
			RequestID: "req-1",
			Patch:     domain.RequestPatch{Percentage: strPtr("10")},
			Actor:     testutil.Requester,
		})
		require.NoError(t, err)
		assert.Zero(t, store.Commits())
		assert.Empty(t, store.Events())
	})

	t.Run("request decided while editing", func(t *testing.T) {
		interactor, store := setup(t)
		store.BeforeCommit = func() {
			store.BeforeCommit = nil
			store.PutRequest(testutil.ApprovedRequest("req-1", testutil.ForPatient("pat-1")))
		}

		_, err := interactor.Execute(ctx, &Request{
			RequestID: "req-1",
			Patch:     domain.RequestPatch{Percentage: strPtr("90")},
			Actor:     testutil.Requester,
		})
		assert.ErrorIs(t, err, domain.ErrRequestNotEditable)

		stored, _ := store.Request("req-1")
		assert.Equal(t, domain.StatusApproved, stored.Status)
		assert.Equal(t, "10.00", stored.Percentage.String())
		assert.Empty(t, store.Events())
	})
}
