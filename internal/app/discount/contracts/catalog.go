package contracts

import (
	"context"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
)

// Product is the read-only catalog view needed for pricing.
type Product struct {
	ID           string
	Name         string
	Price        *domain.Money
	Cost         *domain.Money // nil when the catalog has no cost
	HasDiscounts bool
}

// ProductCatalog looks up products owned by the catalog service.
type ProductCatalog interface {
	// GetProduct returns domain.ErrProductNotFound for unknown ids
	GetProduct(ctx context.Context, productID string) (*Product, error)

	Exists(ctx context.Context, productID string) (bool, error)

	// HasDiscountsStmt marks the product as having an approved discount;
	// it affects no rows when the product no longer exists
	HasDiscountsStmt(productID string) spanner.Statement
}

// PatientDirectory checks patients owned by the patient service.
type PatientDirectory interface {
	Exists(ctx context.Context, patientID string) (bool, error)
}
