//go:build integration

package e2e

import (
	"context"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/list_active"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/list_requests"
	"github.com/light-bringer/optics-discounts/internal/app/discount/repo"
	"github.com/light-bringer/optics-discounts/internal/app/discount/usecases/approve_request"
	"github.com/light-bringer/optics-discounts/internal/app/discount/usecases/create_request"
	"github.com/light-bringer/optics-discounts/internal/app/discount/usecases/reject_request"
	"github.com/light-bringer/optics-discounts/internal/app/discount/usecases/update_request"
	"github.com/light-bringer/optics-discounts/internal/models/m_discount_request"
	"github.com/light-bringer/optics-discounts/internal/models/m_product"
	"github.com/light-bringer/optics-discounts/internal/testutil"
)

func TestRequestLifecycle_CreateUpdateApprove(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTest(t)
	defer cleanup()

	testutil.SeedProduct(t, s.Client, "prod-1", "199.99")
	testutil.SeedProduct(t, s.Client, "prod-2", "50.00")
	testutil.SeedPatient(t, s.Client, "pat-1")

	created, err := s.CreateRequest.Execute(ctx, &create_request.Request{
		ProductID:  "prod-1",
		PatientID:  strPtr("pat-1"),
		Percentage: "12.5",
		Reason:     "loyal customer",
		Actor:      testutil.Requester,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, created.Status())
	testutil.AssertOutboxEventCount(t, s.Client, created.ID(), domain.EventRequestCreated, 1)

	newProduct := "prod-2"
	newPct := "15"
	updated, err := s.UpdateRequest.Execute(ctx, &update_request.Request{
		RequestID: created.ID(),
		Patch:     domain.RequestPatch{ProductID: &newProduct, Percentage: &newPct},
		Actor:     testutil.Requester,
	})
	require.NoError(t, err)
	assert.Equal(t, "prod-2", updated.ProductID())
	assert.Equal(t, "15.00", updated.Percentage().String())
	testutil.AssertOutboxEventCount(t, s.Client, created.ID(), domain.EventRequestUpdated, 1)

	approved, err := s.ApproveRequest.Execute(ctx, &approve_request.Request{
		RequestID:     created.ID(),
		ApprovalNotes: "ok",
		Actor:         testutil.Admin,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, approved.Status())
	assert.Equal(t, testutil.Admin.UserID, approved.ApprovedBy())
	testutil.AssertOutboxEventCount(t, s.Client, created.ID(), domain.EventRequestApproved, 1)

	// Reload from storage to confirm the persisted state.
	stored, err := repo.NewDiscountRequestRepo(s.Client).GetByID(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, stored.Status())
	assert.Equal(t, "ok", stored.ApprovalNotes())
	require.NotNil(t, stored.DecidedAt())

	product, err := repo.NewProductCatalog(s.Client).GetProduct(ctx, "prod-2")
	require.NoError(t, err)
	assert.True(t, product.HasDiscounts)

	// Decided requests are immutable.
	_, err = s.UpdateRequest.Execute(ctx, &update_request.Request{
		RequestID: created.ID(),
		Patch:     domain.RequestPatch{Percentage: &newPct},
		Actor:     testutil.Requester,
	})
	assert.ErrorIs(t, err, domain.ErrRequestNotEditable)
}

func TestRequestLifecycle_Reject(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTest(t)
	defer cleanup()

	testutil.SeedProduct(t, s.Client, "prod-1", "100.00")

	created, err := s.CreateRequest.Execute(ctx, &create_request.Request{
		ProductID:  "prod-1",
		IsGlobal:   true,
		Percentage: "30",
		Actor:      testutil.Requester,
	})
	require.NoError(t, err)

	rejected, err := s.RejectRequest.Execute(ctx, &reject_request.Request{
		RequestID:     created.ID(),
		ApprovalNotes: "too generous",
		Actor:         testutil.Admin,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status())

	_, err = s.ApproveRequest.Execute(ctx, &approve_request.Request{RequestID: created.ID(), Actor: testutil.Admin})
	assert.ErrorIs(t, err, domain.ErrConflict)

	testutil.AssertOutboxEventCount(t, s.Client, created.ID(), domain.EventRequestRejected, 1)
	testutil.AssertOutboxEventCount(t, s.Client, created.ID(), domain.EventRequestApproved, 0)
	assert.Equal(t, int64(1), testutil.CountRows(t, s.Client, m_discount_request.TableName,
		"status = @status", map[string]interface{}{"status": string(domain.StatusRejected)}))
}

func TestCreateRequest_UnknownReferencesPersistNothing(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTest(t)
	defer cleanup()

	testutil.SeedProduct(t, s.Client, "prod-1", "100.00")

	_, err := s.CreateRequest.Execute(ctx, &create_request.Request{
		ProductID:  "prod-1",
		PatientID:  strPtr("nobody"),
		Percentage: "10",
		Actor:      testutil.Requester,
	})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "patient_id")
	testutil.AssertRowCount(t, s.Client, m_discount_request.TableName, 0)
}

func TestListActive_OrderingAndExpiry(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTest(t)
	defer cleanup()

	testutil.SeedProduct(t, s.Client, "prod-1", "100.00")
	testutil.SeedPatient(t, s.Client, "pat-1")

	yesterday := today().AddDays(-1)

	first := s.createApproved(t, &create_request.Request{
		ProductID: "prod-1", IsGlobal: true, Percentage: "20", Actor: testutil.Requester,
	})
	second := s.createApproved(t, &create_request.Request{
		ProductID: "prod-1", PatientID: strPtr("pat-1"), Percentage: "5",
		ExpiryDate: datePtr(today()), Actor: testutil.Requester,
	})

	expired, err := s.CreateRequest.Execute(ctx, &create_request.Request{
		ProductID: "prod-1", IsGlobal: true, Percentage: "40",
		ExpiryDate: datePtr(today().AddDays(1)), Actor: testutil.Requester,
	})
	require.NoError(t, err)
	_, err = s.ApproveRequest.Execute(ctx, &approve_request.Request{RequestID: expired.ID(), Actor: testutil.Admin})
	require.NoError(t, err)
	// Move the expiry into the past directly; the API refuses past dates.
	_, err = s.Client.Apply(ctx, []*spanner.Mutation{
		m_discount_request.NewModel().UpdateMut(expired.ID(), map[string]interface{}{
			m_discount_request.ExpiryDate: yesterday,
		}),
	})
	require.NoError(t, err)

	// A pending request is never active.
	_, err = s.CreateRequest.Execute(ctx, &create_request.Request{
		ProductID: "prod-1", IsGlobal: true, Percentage: "60", Actor: testutil.Requester,
	})
	require.NoError(t, err)

	all, err := s.ListActive.Execute(ctx, &list_active.Request{ProductID: "prod-1"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID(), all[0].ID(), "most recently decided first")
	assert.Equal(t, first.ID(), all[1].ID())

	walkIn, err := s.ListActive.Execute(ctx, &list_active.Request{ProductID: "prod-1", PatientID: "pat-2"})
	require.NoError(t, err)
	require.Len(t, walkIn, 1)
	assert.Equal(t, first.ID(), walkIn[0].ID())
}

func TestListRequests_PaginationAndVisibility(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTest(t)
	defer cleanup()

	testutil.SeedProduct(t, s.Client, "prod-1", "100.00")

	for i := 0; i < 5; i++ {
		_, err := s.CreateRequest.Execute(ctx, &create_request.Request{
			ProductID: "prod-1", IsGlobal: true, Percentage: "10", Actor: testutil.Requester,
		})
		require.NoError(t, err)
	}
	_, err := s.CreateRequest.Execute(ctx, &create_request.Request{
		ProductID: "prod-1", IsGlobal: true, Percentage: "10", Actor: testutil.Stranger,
	})
	require.NoError(t, err)

	page1, err := s.ListRequests.Execute(ctx, &list_requests.Request{PageSize: 4, Actor: testutil.Admin})
	require.NoError(t, err)
	assert.Len(t, page1.Requests, 4)
	assert.Equal(t, int64(6), page1.TotalCount)
	require.NotEmpty(t, page1.NextPageToken)

	page2, err := s.ListRequests.Execute(ctx, &list_requests.Request{
		PageSize: 4, PageToken: page1.NextPageToken, Actor: testutil.Admin,
	})
	require.NoError(t, err)
	assert.Len(t, page2.Requests, 2)
	assert.Empty(t, page2.NextPageToken)

	own, err := s.ListRequests.Execute(ctx, &list_requests.Request{Actor: testutil.Stranger})
	require.NoError(t, err)
	assert.Equal(t, int64(1), own.TotalCount)
	assert.Equal(t, testutil.Stranger.UserID, own.Requests[0].RequestedBy())
}

func TestApproveRequest_ProductRetired(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTest(t)
	defer cleanup()

	testutil.SeedProduct(t, s.Client, "prod-1", "100.00")

	created, err := s.CreateRequest.Execute(ctx, &create_request.Request{
		ProductID: "prod-1", IsGlobal: true, Percentage: "10", Actor: testutil.Requester,
	})
	require.NoError(t, err)

	_, err = s.Client.Apply(ctx, []*spanner.Mutation{spanner.Delete(m_product.TableName, spanner.Key{"prod-1"})})
	require.NoError(t, err)

	_, err = s.ApproveRequest.Execute(ctx, &approve_request.Request{RequestID: created.ID(), Actor: testutil.Admin})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	stored, err := repo.NewDiscountRequestRepo(s.Client).GetByID(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status())
	testutil.AssertOutboxEventCount(t, s.Client, created.ID(), domain.EventRequestApproved, 0)
}

func TestCatalogRefreshKeepsDiscountFlag(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTest(t)
	defer cleanup()

	testutil.SeedProduct(t, s.Client, "prod-1", "100.00")
	s.createApproved(t, &create_request.Request{
		ProductID: "prod-1", IsGlobal: true, Percentage: "10", Actor: testutil.Requester,
	})

	price, err := domain.ParseMoney("120.00")
	require.NoError(t, err)
	data, err := repo.ProductData("prod-1", "Renamed", price, nil)
	require.NoError(t, err)
	_, err = s.Client.Apply(ctx, []*spanner.Mutation{m_product.NewModel().UpdateCatalogMut(data)})
	require.NoError(t, err)

	product, err := repo.NewProductCatalog(s.Client).GetProduct(ctx, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, "120.00", product.Price.String())
	assert.True(t, product.HasDiscounts)
}
