package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	database "cloud.google.com/go/spanner/admin/database/apiv1"
	"cloud.google.com/go/spanner/admin/database/apiv1/databasepb"
	instance "cloud.google.com/go/spanner/admin/instance/apiv1"
	"cloud.google.com/go/spanner/admin/instance/apiv1/instancepb"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/light-bringer/optics-discounts/internal/pkg/config"
	"github.com/light-bringer/optics-discounts/internal/pkg/logger"
)

// dbPath identifies a Spanner database.
type dbPath struct {
	Project  string
	Instance string
	Database string
}

func (p dbPath) instanceName() string {
	return fmt.Sprintf("projects/%s/instances/%s", p.Project, p.Instance)
}

func (p dbPath) String() string {
	return fmt.Sprintf("%s/databases/%s", p.instanceName(), p.Database)
}

var dbPathPattern = regexp.MustCompile(`^projects/([^/]+)/instances/([^/]+)/databases/([^/]+)$`)

// parseDBPath splits a fully qualified database name.
func parseDBPath(s string) (dbPath, error) {
	m := dbPathPattern.FindStringSubmatch(s)
	if m == nil {
		return dbPath{}, fmt.Errorf("invalid database name %q, want projects/P/instances/I/databases/D", s)
	}
	return dbPath{Project: m[1], Instance: m[2], Database: m[3]}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Environment,
		ServiceName: "migrate",
		Version:     cfg.Version,
	})

	dbName := flag.String("database", cfg.SpannerDB, "Spanner database (projects/P/instances/I/databases/D)")
	migrateDir := flag.String("migrations", "migrations", "Directory containing migration SQL files")
	flag.Parse()

	path, err := parseDBPath(*dbName)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid database")
	}

	// Check if using emulator
	emulator := os.Getenv("SPANNER_EMULATOR_HOST") != ""
	if emulator {
		log.Info().Str("host", os.Getenv("SPANNER_EMULATOR_HOST")).Msg("Using Spanner emulator")
	}

	ctx := log.WithContext(context.Background())
	if err := run(ctx, path, *migrateDir, emulator); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}

	log.Info().Msg("Migrations completed successfully")
}

func run(ctx context.Context, path dbPath, migrateDir string, emulator bool) error {
	// The instance only needs creating on the emulator; real instances are provisioned.
	if emulator {
		if err := ensureInstance(ctx, path); err != nil {
			return fmt.Errorf("failed to ensure instance: %w", err)
		}
	}

	adminClient, err := database.NewDatabaseAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer adminClient.Close()

	if err := ensureDatabase(ctx, adminClient, path); err != nil {
		return fmt.Errorf("failed to ensure database: %w", err)
	}

	if err := applyMigrations(ctx, adminClient, path, migrateDir); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}

func ensureInstance(ctx context.Context, path dbPath) error {
	log := zerolog.Ctx(ctx)

	instanceAdmin, err := instance.NewInstanceAdminClient(ctx)
	if err != nil {
		return fmt.Errorf("failed to create instance admin client: %w", err)
	}
	defer instanceAdmin.Close()

	_, err = instanceAdmin.GetInstance(ctx, &instancepb.GetInstanceRequest{Name: path.instanceName()})
	if err == nil {
		log.Debug().Str("instance", path.Instance).Msg("Instance already exists")
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to check instance: %w", err)
	}

	log.Info().Str("instance", path.Instance).Msg("Creating instance")
	op, err := instanceAdmin.CreateInstance(ctx, &instancepb.CreateInstanceRequest{
		Parent:     "projects/" + path.Project,
		InstanceId: path.Instance,
		Instance: &instancepb.Instance{
			Config:      fmt.Sprintf("projects/%s/instanceConfigs/emulator-config", path.Project),
			DisplayName: "Development Instance",
			NodeCount:   1,
		},
	})
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create instance: %w", err)
	}

	if _, err := op.Wait(ctx); err != nil && status.Code(err) != codes.AlreadyExists {
		return fmt.Errorf("failed to wait for instance creation: %w", err)
	}
	return nil
}

func ensureDatabase(ctx context.Context, adminClient *database.DatabaseAdminClient, path dbPath) error {
	log := zerolog.Ctx(ctx)

	_, err := adminClient.GetDatabase(ctx, &databasepb.GetDatabaseRequest{Name: path.String()})
	if err == nil {
		log.Debug().Str("database", path.Database).Msg("Database already exists")
		return nil
	}
	if status.Code(err) != codes.NotFound {
		return fmt.Errorf("failed to check database: %w", err)
	}

	log.Info().Str("database", path.Database).Msg("Creating database")
	op, err := adminClient.CreateDatabase(ctx, &databasepb.CreateDatabaseRequest{
		Parent:          path.instanceName(),
		CreateStatement: fmt.Sprintf("CREATE DATABASE `%s`", path.Database),
	})
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	if _, err := op.Wait(ctx); err != nil {
		return fmt.Errorf("failed to wait for database creation: %w", err)
	}
	return nil
}

// applyMigrations runs every *.sql file in name order, skipping statements
// whose table or index already exists so reruns are harmless.
func applyMigrations(ctx context.Context, adminClient *database.DatabaseAdminClient, path dbPath, migrateDir string) error {
	log := zerolog.Ctx(ctx)

	files, err := filepath.Glob(filepath.Join(migrateDir, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to list migration files: %w", err)
	}
	if len(files) == 0 {
		log.Warn().Str("dir", migrateDir).Msg("No migration files found")
		return nil
	}
	sort.Strings(files)

	ddl, err := adminClient.GetDatabaseDdl(ctx, &databasepb.GetDatabaseDdlRequest{Database: path.String()})
	if err != nil {
		return fmt.Errorf("failed to read current schema: %w", err)
	}
	existing := objectNames(ddl.GetStatements())

	for _, file := range files {
		migrationName := filepath.Base(file)

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", file, err)
		}

		statements := pendingStatements(splitDDLStatements(string(content)), existing)
		if len(statements) == 0 {
			log.Info().Str("migration", migrationName).Msg("Already applied")
			continue
		}

		op, err := adminClient.UpdateDatabaseDdl(ctx, &databasepb.UpdateDatabaseDdlRequest{
			Database:   path.String(),
			Statements: statements,
		})
		if err != nil {
			return fmt.Errorf("failed to start DDL update for %s: %w", migrationName, err)
		}
		if err := op.Wait(ctx); err != nil {
			return fmt.Errorf("failed to apply DDL for %s: %w", migrationName, err)
		}

		for name := range objectNames(statements) {
			existing[name] = true
		}
		log.Info().Str("migration", migrationName).Int("statements", len(statements)).Msg("Applied migration")
	}

	return nil
}

func splitDDLStatements(content string) []string {
	// Remove comments and empty lines
	lines := strings.Split(content, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		cleaned = append(cleaned, line)
	}

	content = strings.Join(cleaned, "\n")

	// Split by semicolon
	statements := strings.Split(content, ";")
	var result []string
	for _, stmt := range statements {
		stmt = strings.TrimSpace(stmt)
		if stmt != "" {
			result = append(result, stmt)
		}
	}

	return result
}

var createPattern = regexp.MustCompile(`(?i)^CREATE\s+(?:UNIQUE\s+|NULL_FILTERED\s+)*(TABLE|INDEX)\s+` + "`?" + `(\w+)`)

// objectName returns "table:x" or "index:x" for CREATE statements, "" otherwise.
func objectName(stmt string) string {
	m := createPattern.FindStringSubmatch(strings.TrimSpace(stmt))
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1]) + ":" + strings.ToLower(m[2])
}

func objectNames(statements []string) map[string]bool {
	names := make(map[string]bool)
	for _, stmt := range statements {
		if name := objectName(stmt); name != "" {
			names[name] = true
		}
	}
	return names
}

// pendingStatements drops CREATE statements for objects that already exist.
// Other statements (ALTER, DROP) are always kept.
func pendingStatements(statements []string, existing map[string]bool) []string {
	var out []string
	for _, stmt := range statements {
		if name := objectName(stmt); name != "" && existing[name] {
			continue
		}
		out = append(out, stmt)
	}
	return out
}
