package m_product

// Field name constants for the products table. The catalog service owns the
// table; this service reads prices and maintains has_discounts.
const (
	TableName = "products"

	ProductID        = "product_id"
	Name             = "name"
	PriceNumerator   = "price_numerator"
	PriceDenominator = "price_denominator"
	CostNumerator    = "cost_numerator"
	CostDenominator  = "cost_denominator"
	HasDiscounts     = "has_discounts"
	CreatedAt        = "created_at"
	UpdatedAt        = "updated_at"
)
