package main

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDBPath(t *testing.T) {
	p, err := parseDBPath("projects/test-project/instances/dev-instance/databases/optical-db")
	require.NoError(t, err)
	assert.Equal(t, dbPath{Project: "test-project", Instance: "dev-instance", Database: "optical-db"}, p)
	assert.Equal(t, "projects/test-project/instances/dev-instance", p.instanceName())
	assert.Equal(t, "projects/test-project/instances/dev-instance/databases/optical-db", p.String())

	for _, bad := range []string{"", "optical-db", "projects/p/instances/i", "projects/p/instances/i/databases/d/extra"} {
		_, err := parseDBPath(bad)
		assert.Error(t, err, bad)
	}
}

func TestSplitDDLStatements(t *testing.T) {
	content := `
-- header comment
CREATE TABLE a (
  id STRING(36) NOT NULL,
) PRIMARY KEY (id);

CREATE INDEX idx_a ON a(id);
`
	got := splitDDLStatements(content)
	require.Len(t, got, 2)
	assert.Equal(t, "CREATE TABLE a (\nid STRING(36) NOT NULL,\n) PRIMARY KEY (id)", got[0])
	assert.Equal(t, "CREATE INDEX idx_a ON a(id)", got[1])
}

func TestPendingStatements(t *testing.T) {
	existing := objectNames([]string{
		"CREATE TABLE discount_requests (\n  request_id STRING(36) NOT NULL\n) PRIMARY KEY (request_id)",
		"CREATE INDEX idx_discount_requests_product_status ON discount_requests(product_id)",
	})

	statements := []string{
		"CREATE TABLE discount_requests (request_id STRING(36) NOT NULL) PRIMARY KEY (request_id)",
		"CREATE INDEX idx_discount_requests_product_status ON discount_requests(product_id)",
		"CREATE UNIQUE INDEX idx_new ON discount_requests(request_id)",
		"create table outbox_events (event_id STRING(36) NOT NULL) PRIMARY KEY (event_id)",
		"ALTER TABLE discount_requests ADD COLUMN note STRING(10)",
	}

	got := pendingStatements(statements, existing)
	assert.Equal(t, statements[2:], got)
}

func TestMigrationFileIsSplittable(t *testing.T) {
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)

	content, err := os.ReadFile(filepath.Join(filepath.Dir(file), "..", "..", "migrations", "001_initial_schema.sql"))
	require.NoError(t, err)

	names := objectNames(splitDDLStatements(string(content)))
	for _, want := range []string{"table:products", "table:patients", "table:discount_requests", "table:outbox_events"} {
		assert.True(t, names[want], want)
	}
}
