//go:build integration

package e2e

import (
	"context"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/calculate_price"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/list_active"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/list_requests"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/resolve_discount"
	"github.com/light-bringer/optics-discounts/internal/app/discount/references"
	"github.com/light-bringer/optics-discounts/internal/app/discount/repo"
	"github.com/light-bringer/optics-discounts/internal/app/discount/usecases/approve_request"
	"github.com/light-bringer/optics-discounts/internal/app/discount/usecases/create_request"
	"github.com/light-bringer/optics-discounts/internal/app/discount/usecases/reject_request"
	"github.com/light-bringer/optics-discounts/internal/app/discount/usecases/update_request"
	"github.com/light-bringer/optics-discounts/internal/pkg/clock"
	"github.com/light-bringer/optics-discounts/internal/pkg/committer"
	"github.com/light-bringer/optics-discounts/internal/testutil"
)

// Services holds all use cases and queries for E2E tests.
type Services struct {
	// Commands
	CreateRequest  *create_request.Interactor
	UpdateRequest  *update_request.Interactor
	ApproveRequest *approve_request.Interactor
	RejectRequest  *reject_request.Interactor

	// Queries
	ListRequests    *list_requests.Query
	ListActive      *list_active.Query
	ResolveDiscount *resolve_discount.Query
	CalculatePrice  *calculate_price.Query

	// Infrastructure
	Clock  clock.Clock
	Client *spanner.Client
}

// setupTest initializes all dependencies against the emulator database.
func setupTest(t *testing.T) (*Services, func()) {
	t.Helper()

	client, cleanup := testutil.SetupSpannerTest(t)

	clk := clock.NewRealClock()
	comm := committer.NewCommitter(client)
	loc := time.UTC
	policy := domain.ApprovalPolicy{SelfServiceEnabled: true}

	requestRepo := repo.NewDiscountRequestRepo(client)
	outboxRepo := repo.NewOutboxRepo()
	readModel := repo.NewReadModel(client)
	catalog := repo.NewProductCatalog(client)
	patients := repo.NewPatientDirectory(client)
	refs := references.NewChecker(catalog, patients)

	resolver := resolve_discount.NewQuery(readModel, clk, loc)

	services := &Services{
		CreateRequest:   create_request.NewInteractor(requestRepo, outboxRepo, refs, comm, clk, loc),
		UpdateRequest:   update_request.NewInteractor(requestRepo, outboxRepo, refs, comm, clk, loc),
		ApproveRequest:  approve_request.NewInteractor(requestRepo, outboxRepo, catalog, comm, clk, policy),
		RejectRequest:   reject_request.NewInteractor(requestRepo, outboxRepo, comm, clk, policy),
		ListRequests:    list_requests.NewQuery(readModel),
		ListActive:      list_active.NewQuery(readModel, clk, loc),
		ResolveDiscount: resolver,
		CalculatePrice:  calculate_price.NewQuery(catalog, patients, resolver, domain.NewPriceCalculator()),
		Clock:           clk,
		Client:          client,
	}

	return services, cleanup
}

// createApproved creates a request and approves it as admin.
func (s *Services) createApproved(t *testing.T, req *create_request.Request) *domain.DiscountRequest {
	t.Helper()
	ctx := context.Background()

	created, err := s.CreateRequest.Execute(ctx, req)
	require.NoError(t, err)

	approved, err := s.ApproveRequest.Execute(ctx, &approve_request.Request{
		RequestID: created.ID(),
		Actor:     testutil.Admin,
	})
	require.NoError(t, err)
	return approved
}

func strPtr(s string) *string { return &s }

func datePtr(d civil.Date) *civil.Date { return &d }

func today() civil.Date {
	return civil.DateOf(time.Now().UTC())
}
