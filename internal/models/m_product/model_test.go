package m_product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalogColumns(t *testing.T) {
	assert.Equal(t, ProductID, CatalogColumns[0], "key column comes first")
	assert.Contains(t, CatalogColumns, UpdatedAt)
	assert.NotContains(t, CatalogColumns, HasDiscounts, "refreshing the catalog must keep the discount flag")
	assert.NotContains(t, CatalogColumns, CreatedAt)
}

func TestModel_Mutations(t *testing.T) {
	m := NewModel()
	data := &Data{ProductID: "prod-1", Name: "Frames", PriceNumerator: 19999, PriceDenominator: 100}

	assert.NotNil(t, m.InsertMut(data))
	assert.NotNil(t, m.UpdateCatalogMut(data))
}

func TestModel_HasDiscountsStmt(t *testing.T) {
	stmt := NewModel().HasDiscountsStmt("prod-1")

	assert.Equal(t,
		"UPDATE products SET has_discounts = TRUE, updated_at = PENDING_COMMIT_TIMESTAMP() WHERE product_id = @product_id",
		stmt.SQL)
	assert.Equal(t, map[string]interface{}{"product_id": "prod-1"}, stmt.Params)
}
