// Package references verifies that the product and patient a discount
// request points at exist in their owning services.
package references

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/light-bringer/optics-discounts/internal/app/discount/contracts"
	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
)

// Checker looks up referenced records concurrently.
type Checker struct {
	products contracts.ProductCatalog
	patients contracts.PatientDirectory
}

func NewChecker(products contracts.ProductCatalog, patients contracts.PatientDirectory) *Checker {
	return &Checker{products: products, patients: patients}
}

// Check verifies productID and patientID (either may be "" to skip it).
// Missing records come back as one ValidationError naming every bad field.
func (c *Checker) Check(ctx context.Context, productID, patientID string) error {
	var productFound, patientFound bool

	g, gctx := errgroup.WithContext(ctx)
	if productID != "" {
		g.Go(func() error {
			ok, err := c.products.Exists(gctx, productID)
			if err != nil {
				return fmt.Errorf("failed to look up product: %w", err)
			}
			productFound = ok
			return nil
		})
	}
	if patientID != "" {
		g.Go(func() error {
			ok, err := c.patients.Exists(gctx, patientID)
			if err != nil {
				return fmt.Errorf("failed to look up patient: %w", err)
			}
			patientFound = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	verr := domain.NewValidationError()
	if productID != "" && !productFound {
		verr.AddErr("product_id", domain.ErrProductNotFound)
	}
	if patientID != "" && !patientFound {
		verr.AddErr("patient_id", domain.ErrPatientNotFound)
	}
	return verr.OrNil()
}
