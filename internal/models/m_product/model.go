package m_product

import (
	"fmt"

	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the products table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// CatalogColumns are the columns the catalog owns. has_discounts and
// created_at are left alone when a catalog entry is refreshed.
var CatalogColumns = []string{
	ProductID,
	Name,
	PriceNumerator,
	PriceDenominator,
	CostNumerator,
	CostDenominator,
	UpdatedAt,
}

// InsertMut creates a Spanner mutation for inserting a new product. Used to
// seed fixtures; production rows come from the catalog service.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.Insert(
		TableName,
		[]string{
			ProductID,
			Name,
			PriceNumerator,
			PriceDenominator,
			CostNumerator,
			CostDenominator,
			HasDiscounts,
			CreatedAt,
			UpdatedAt,
		},
		[]interface{}{
			data.ProductID,
			data.Name,
			data.PriceNumerator,
			data.PriceDenominator,
			data.CostNumerator,
			data.CostDenominator,
			data.HasDiscounts,
			spanner.CommitTimestamp,
			spanner.CommitTimestamp,
		},
	)
}

// UpdateCatalogMut refreshes the catalog-owned columns of an existing product.
func (m *Model) UpdateCatalogMut(data *Data) *spanner.Mutation {
	return spanner.Update(
		TableName,
		CatalogColumns,
		[]interface{}{
			data.ProductID,
			data.Name,
			data.PriceNumerator,
			data.PriceDenominator,
			data.CostNumerator,
			data.CostDenominator,
			spanner.CommitTimestamp,
		},
	)
}

// HasDiscountsStmt flags a product as having at least one approved discount.
// It affects no rows when the product is gone from the catalog.
func (m *Model) HasDiscountsStmt(productID string) spanner.Statement {
	return spanner.Statement{
		SQL: fmt.Sprintf(
			"UPDATE %s SET %s = TRUE, %s = PENDING_COMMIT_TIMESTAMP() WHERE %s = @product_id",
			TableName, HasDiscounts, UpdatedAt, ProductID,
		),
		Params: map[string]interface{}{
			"product_id": productID,
		},
	}
}
