package create_request

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/app/discount/references"
	"github.com/light-bringer/optics-discounts/internal/testutil"
)

func setup(t *testing.T) (*Interactor, *testutil.Store) {
	t.Helper()
	store := testutil.NewStore()
	store.AddProduct("prod-1", "199.99")
	store.AddPatient("pat-1")

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

func TestCreateRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("stores pending request and outbox event", func(t *testing.T) {
		interactor, store := setup(t)

		expiry := civil.DateOf(testutil.ReferenceTime).AddDays(30)
		dr, err := interactor.Execute(ctx, &Request{
			ProductID:  "prod-1",
			PatientID:  strPtr("pat-1"),
			Percentage: "15",
			Reason:     "returning patient",
			ExpiryDate: &expiry,
			Actor:      testutil.Requester,
		})
		require.NoError(t, err)

		assert.NotEmpty(t, dr.ID())
		assert.Equal(t, domain.StatusPending, dr.Status())
		assert.Equal(t, testutil.Requester.UserID, dr.RequestedBy())

		stored, ok := store.Request(dr.ID())
		require.True(t, ok)
		assert.Equal(t, "pat-1", stored.Scope.PatientID())
		assert.Equal(t, "15.00", stored.Percentage.String())
		assert.Equal(t, []string{domain.EventRequestCreated}, store.EventTypes())
		assert.Equal(t, dr.ID(), store.Events()[0].AggregateID)
	})

	t.Run("global request drops patient", func(t *testing.T) {
		interactor, store := setup(t)

		dr, err := interactor.Execute(ctx, &Request{
			ProductID:  "prod-1",
			PatientID:  strPtr("someone-unknown"),
			IsGlobal:   true,
			Percentage: "5",
			Actor:      testutil.Requester,
		})
		require.NoError(t, err)

		stored, _ := store.Request(dr.ID())
		assert.True(t, stored.Scope.IsGlobal())
		assert.Empty(t, stored.Scope.PatientID())
	})

	invalid := []struct {
		name  string
		req   Request
		field string
	}{
		{"zero percentage", Request{ProductID: "prod-1", IsGlobal: true, Percentage: "0"}, "discount_percentage"},
		{"over 100", Request{ProductID: "prod-1", IsGlobal: true, Percentage: "101"}, "discount_percentage"},
		{"unknown product", Request{ProductID: "nope", IsGlobal: true, Percentage: "10"}, "product_id"},
		{"unknown patient", Request{ProductID: "prod-1", PatientID: strPtr("nobody"), Percentage: "10"}, "patient_id"},
		{"missing patient", Request{ProductID: "prod-1", Percentage: "10"}, "patient_id"},
		{"past expiry", Request{ProductID: "prod-1", IsGlobal: true, Percentage: "10",
			ExpiryDate: func() *civil.Date { d := civil.DateOf(testutil.ReferenceTime).AddDays(-1); return &d }()}, "expiry_date"},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			interactor, store := setup(t)
			req := tt.req
			req.Actor = testutil.Requester

			dr, err := interactor.Execute(ctx, &req)
			assert.Nil(t, dr)
			require.ErrorIs(t, err, domain.ErrValidation)

			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
			assert.Zero(t, store.Commits())
			assert.Empty(t, store.Events())
		})
	}

	t.Run("storage failure is wrapped", func(t *testing.T) {
		interactor, store := setup(t)
		store.CommitErr = errors.New("spanner unavailable")

		_, err := interactor.Execute(ctx, &Request{ProductID: "prod-1", IsGlobal: true, Percentage: "10", Actor: testutil.Requester})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to commit transaction")
		assert.NotErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("lookup failure is not a validation error", func(t *testing.T) {
		interactor, store := setup(t)
		store.ReadErr = errors.New("deadline exceeded")

		_, err := interactor.Execute(ctx, &Request{ProductID: "prod-1", IsGlobal: true, Percentage: "10", Actor: testutil.Requester})
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrValidation)
	})
}
