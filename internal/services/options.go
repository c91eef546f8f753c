package services

import (
	"context"
	"fmt"
	"net/http"

	"cloud.google.com/go/spanner"
	"github.com/rs/zerolog"

	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/calculate_price"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/get_request"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/list_active"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/list_events"
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
	"github.com/light-bringer/optics-discounts/internal/pkg/config"
	httptransport "github.com/light-bringer/optics-discounts/internal/transport/http"
)

// ServiceOptions holds all dependencies for the application.
type ServiceOptions struct {
	SpannerClient *spanner.Client
	Router        http.Handler
}

// NewServiceOptions creates and wires up all application dependencies.
func NewServiceOptions(ctx context.Context, cfg config.Config, log zerolog.Logger) (*ServiceOptions, error) {
	// 1. Initialize Spanner client
	spannerClient, err := spanner.NewClient(ctx, cfg.SpannerDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create Spanner client: %w", err)
	}

	// 2. Create infrastructure components
	clk := clock.NewRealClock()
	comm := committer.NewCommitter(spannerClient)
	loc := cfg.BusinessLocation
	policy := domain.ApprovalPolicy{SelfServiceEnabled: cfg.SelfServiceApproval}

	// 3. Create repositories
	requestRepo := repo.NewDiscountRequestRepo(spannerClient)
	outboxRepo := repo.NewOutboxRepo()
	readModel := repo.NewReadModel(spannerClient)
	eventsReadModel := repo.NewEventsReadModel(spannerClient)
	catalog := repo.NewProductCatalog(spannerClient)
	patients := repo.NewPatientDirectory(spannerClient)
	refs := references.NewChecker(catalog, patients)

	// 4. Create command use cases (write operations)
	createRequestUseCase := create_request.NewInteractor(requestRepo, outboxRepo, refs, comm, clk, loc)
	updateRequestUseCase := update_request.NewInteractor(requestRepo, outboxRepo, refs, comm, clk, loc)
	approveRequestUseCase := approve_request.NewInteractor(requestRepo, outboxRepo, catalog, comm, clk, policy)
	rejectRequestUseCase := reject_request.NewInteractor(requestRepo, outboxRepo, comm, clk, policy)

	// 5. Create query use cases (read operations)
	getRequestQuery := get_request.NewQuery(readModel)
	listRequestsQuery := list_requests.NewQuery(readModel)
	listActiveQuery := list_active.NewQuery(readModel, clk, loc)
	resolveDiscountQuery := resolve_discount.NewQuery(readModel, clk, loc)
	calculatePriceQuery := calculate_price.NewQuery(catalog, patients, resolveDiscountQuery, domain.NewPriceCalculator())
	listEventsQuery := list_events.NewQuery(eventsReadModel)

	// 6. Create HTTP handlers
	handler := httptransport.NewHandler(
		createRequestUseCase,
		updateRequestUseCase,
		approveRequestUseCase,
		rejectRequestUseCase,
		getRequestQuery,
		listRequestsQuery,
		listActiveQuery,
		resolveDiscountQuery,
		calculatePriceQuery,
	)
	eventsHandler := httptransport.NewEventsHandler(listEventsQuery)
	auth := httptransport.NewAuthenticator(cfg.JWTSecret)

	return &ServiceOptions{
		SpannerClient: spannerClient,
		Router:        httptransport.NewRouter(handler, eventsHandler, auth, log),
	}, nil
}

// Close closes all resources.
func (s *ServiceOptions) Close() {
	if s.SpannerClient != nil {
		s.SpannerClient.Close()
	}
}
