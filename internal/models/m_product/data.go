package m_product

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents the database model for the products table.
type Data struct {
	ProductID        string            `spanner:"product_id"`
	Name             string            `spanner:"name"`
	PriceNumerator   int64             `spanner:"price_numerator"`
	PriceDenominator int64             `spanner:"price_denominator"`
	CostNumerator    spanner.NullInt64 `spanner:"cost_numerator"`
	CostDenominator  spanner.NullInt64 `spanner:"cost_denominator"`
	HasDiscounts     bool              `spanner:"has_discounts"`
	CreatedAt        time.Time         `spanner:"created_at"`
	UpdatedAt        time.Time         `spanner:"updated_at"`
}
