package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"

	"cloud.google.com/go/spanner"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/optics-discounts/internal/app/discount/domain"
	"github.com/light-bringer/optics-discounts/internal/app/discount/repo"
	"github.com/light-bringer/optics-discounts/internal/models/m_discount_request"
	"github.com/light-bringer/optics-discounts/internal/models/m_outbox"
	"github.com/light-bringer/optics-discounts/internal/models/m_patient"
	"github.com/light-bringer/optics-discounts/internal/models/m_product"
)

// SetupSpannerTest creates a Spanner client against a clean test database and
// returns a cleanup function. It skips the test when no emulator is configured.
func SetupSpannerTest(t *testing.T) (*spanner.Client, func()) {
	t.Helper()

	if os.Getenv("SPANNER_EMULATOR_HOST") == "" {
		t.Skip("SPANNER_EMULATOR_HOST not set")
	}

	ctx := context.Background()
	client, err := spanner.NewClient(ctx, GetTestSpannerDB())
	require.NoError(t, err, "failed to create Spanner client")

	// Clean database before test
	CleanDatabase(t, client)

	cleanup := func() {
		CleanDatabase(t, client)
		client.Close()
	}

	return client, cleanup
}

// GetTestSpannerDB returns the test Spanner database string.
func GetTestSpannerDB() string {
	if db := os.Getenv("SPANNER_TEST_DATABASE"); db != "" {
		return db
	}
	return "projects/test-project/instances/test-instance/databases/optical-db-test"
}

// CleanDatabase truncates all tables for test isolation.
func CleanDatabase(t *testing.T, client *spanner.Client) {
	t.Helper()

	mutations := []*spanner.Mutation{
		spanner.Delete(m_outbox.TableName, spanner.AllKeys()),
		spanner.Delete(m_discount_request.TableName, spanner.AllKeys()),
		spanner.Delete(m_product.TableName, spanner.AllKeys()),
		spanner.Delete(m_patient.TableName, spanner.AllKeys()),
	}

	_, err := client.Apply(context.Background(), mutations)
	require.NoError(t, err, "failed to clean database")
}

// SeedProduct inserts a product priced at price (a decimal string).
func SeedProduct(t *testing.T, client *spanner.Client, productID, price string) {
	t.Helper()

	p, err := domain.ParseMoney(price)
	require.NoError(t, err)

	data, err := repo.ProductData(productID, "Product "+productID, p, nil)
	require.NoError(t, err)
	_, err = client.Apply(context.Background(), []*spanner.Mutation{m_product.NewModel().InsertMut(data)})
	require.NoError(t, err, "failed to seed product")
}

// SeedPatient inserts a patient.
func SeedPatient(t *testing.T, client *spanner.Client, patientID string) {
	t.Helper()

	data := &m_patient.Data{PatientID: patientID, FullName: "Patient " + patientID}
	_, err := client.Apply(context.Background(), []*spanner.Mutation{m_patient.NewModel().InsertMut(data)})
	require.NoError(t, err, "failed to seed patient")
}

// CountRows returns the number of rows in a table matching an optional
// WHERE clause.
func CountRows(t *testing.T, client *spanner.Client, table, where string, params map[string]interface{}) int64 {
	t.Helper()

	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	if where != "" {
		sql += " WHERE " + where
	}

	iter := client.Single().Query(context.Background(), spanner.Statement{SQL: sql, Params: params})
	defer iter.Stop()

	row, err := iter.Next()
	require.NoError(t, err, "failed to query row count")

	var count int64
	require.NoError(t, row.Columns(&count), "failed to parse count")
	return count
}

// AssertRowCount asserts the number of rows in a table.
func AssertRowCount(t *testing.T, client *spanner.Client, table string, expectedCount int) {
	t.Helper()
	require.Equal(t, int64(expectedCount), CountRows(t, client, table, "", nil), "unexpected row count in table %s", table)
}

// AssertOutboxEventCount verifies how many events of eventType were written
// for aggregateID.
func AssertOutboxEventCount(t *testing.T, client *spanner.Client, aggregateID, eventType string, expected int) {
	t.Helper()

	count := CountRows(t, client, m_outbox.TableName,
		"aggregate_id = @aggregateID AND event_type = @eventType",
		map[string]interface{}{"aggregateID": aggregateID, "eventType": eventType})
	require.Equal(t, int64(expected), count, "unexpected %s event count", eventType)
}
