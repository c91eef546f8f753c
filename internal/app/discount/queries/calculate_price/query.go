package calculate_price

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/light-bringer/optics-discounts/internal/app/discount/contracts"
	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/app/discount/queries/resolve_discount"
)

// Request identifies the line item to price.
type Request struct {
	ProductID string
	PatientID string
	Quantity  int64
}

// Query handles the calculate price query.
type Query struct {
	catalog    contracts.ProductCatalog
	patients   contracts.PatientDirectory
	resolver   *resolve_discount.Query
	calculator *domain.PriceCalculator
}

// NewQuery creates a new calculate price query.
func NewQuery(
	catalog contracts.ProductCatalog,
	patients contracts.PatientDirectory,
	resolver *resolve_discount.Query,
	calculator *domain.PriceCalculator,
) *Query {
	return &Query{
		catalog:    catalog,
		patients:   patients,
		resolver:   resolver,
		calculator: calculator,
	}
}

// Execute resolves the applicable discount and prices the line. The product,
// patient and discount lookups run concurrently.
func (q *Query) Execute(ctx context.Context, req *Request) (*domain.PriceResult, error) {
	if req.Quantity < 1 {
		return nil, domain.FieldError("quantity", domain.ErrInvalidQuantity.Error())
	}

	var (
		product  *contracts.Product
		discount *domain.DiscountRequest
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := q.catalog.GetProduct(gctx, req.ProductID)
		if err != nil {
			return err
		}
		product = p
		return nil
	})
	if req.PatientID != "" {
		g.Go(func() error {
			ok, err := q.patients.Exists(gctx, req.PatientID)
			if err != nil {
				return fmt.Errorf("failed to look up patient: %w", err)
			}
			if !ok {
				return domain.ErrPatientNotFound
			}
			return nil
		})
	}
	g.Go(func() error {
		d, err := q.resolver.Execute(gctx, &resolve_discount.Request{
			ProductID: req.ProductID,
			PatientID: req.PatientID,
		})
		if err != nil {
			return err
		}
		discount = d
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return q.calculator.Calculate(product.Price, req.Quantity, discount)
}
