package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/grpc/codes"

	"github.com/light-bringer/optics-discounts/internal/app/discount/contracts"
	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/models/m_patient"
	"github.com/light-bringer/optics-discounts/internal/models/m_product"
)

// ProductCatalog implements contracts.ProductCatalog over the products table.
type ProductCatalog struct {
	client *spanner.Client
	model  *m_product.Model
}

// NewProductCatalog creates a new ProductCatalog.
func NewProductCatalog(client *spanner.Client) contracts.ProductCatalog {
	return &ProductCatalog{
		client: client,
		model:  m_product.NewModel(),
	}
}

// GetProduct reads a product and its prices.
func (c *ProductCatalog) GetProduct(ctx context.Context, productID string) (*contracts.Product, error) {
	row, err := c.client.Single().ReadRow(ctx, m_product.TableName, spanner.Key{productID}, []string{
		m_product.ProductID,
		m_product.Name,
		m_product.PriceNumerator,
		m_product.PriceDenominator,
		m_product.CostNumerator,
		m_product.CostDenominator,
		m_product.HasDiscounts,
	})
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to read product: %w", err)
	}

	var data m_product.Data
	if err := row.ToStruct(&data); err != nil {
		return nil, fmt.Errorf("failed to parse product: %w", err)
	}

	return dataToProduct(&data)
}

func dataToProduct(data *m_product.Data) (*contracts.Product, error) {
	price, err := domain.NewMoney(data.PriceNumerator, data.PriceDenominator)
	if err != nil {
		return nil, fmt.Errorf("invalid price for product %s: %w", data.ProductID, err)
	}

	product := &contracts.Product{
		ID:           data.ProductID,
		Name:         data.Name,
		Price:        price,
		HasDiscounts: data.HasDiscounts,
	}

	if data.CostNumerator.Valid && data.CostDenominator.Valid {
		cost, err := domain.NewMoney(data.CostNumerator.Int64, data.CostDenominator.Int64)
		if err != nil {
			return nil, fmt.Errorf("invalid cost for product %s: %w", data.ProductID, err)
		}
		product.Cost = cost
	}

	return product, nil
}

// ProductData converts a catalog entry into its storage row. Amounts must
// fit the INT64 numerator/denominator columns; cost is optional.
func ProductData(productID, name string, price, cost *domain.Money) (*m_product.Data, error) {
	if price == nil || price.IsNegative() {
		return nil, fmt.Errorf("invalid price for product %s", productID)
	}
	if !price.IsSafeForStorage() {
		return nil, fmt.Errorf("price for product %s exceeds storage precision", productID)
	}

	data := &m_product.Data{
		ProductID:        productID,
		Name:             name,
		PriceNumerator:   price.Numerator(),
		PriceDenominator: price.Denominator(),
	}

	if cost != nil {
		if !cost.IsSafeForStorage() {
			return nil, fmt.Errorf("cost for product %s exceeds storage precision", productID)
		}
		data.CostNumerator = spanner.NullInt64{Int64: cost.Numerator(), Valid: true}
		data.CostDenominator = spanner.NullInt64{Int64: cost.Denominator(), Valid: true}
	}

	return data, nil
}

// Exists checks if a product exists.
func (c *ProductCatalog) Exists(ctx context.Context, productID string) (bool, error) {
	return rowExists(ctx, c.client, m_product.TableName, productID, m_product.ProductID)
}

// HasDiscountsStmt marks the product as having an approved discount.
func (c *ProductCatalog) HasDiscountsStmt(productID string) spanner.Statement {
	return c.model.HasDiscountsStmt(productID)
}

// PatientDirectory implements contracts.PatientDirectory over the patients table.
type PatientDirectory struct {
	client *spanner.Client
}

// NewPatientDirectory creates a new PatientDirectory.
func NewPatientDirectory(client *spanner.Client) contracts.PatientDirectory {
	return &PatientDirectory{client: client}
}

// Exists checks if a patient exists.
func (d *PatientDirectory) Exists(ctx context.Context, patientID string) (bool, error) {
	return rowExists(ctx, d.client, m_patient.TableName, patientID, m_patient.PatientID)
}

func rowExists(ctx context.Context, client *spanner.Client, table, key, keyColumn string) (bool, error) {
	_, err := client.Single().ReadRow(ctx, table, spanner.Key{key}, []string{keyColumn})
	if err != nil {
		if spanner.ErrCode(err) == codes.NotFound {
			return false, nil
		}
		return false, fmt.Errorf("failed to check %s existence: %w", table, err)
	}
	return true, nil
}
