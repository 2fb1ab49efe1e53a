package integration

import (
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zkmarket/broker/pkg/config"
	"github.com/zkmarket/broker/pkg/server"
	"github.com/zkmarket/broker/pkg/server/endpoints"
	"github.com/zkmarket/broker/pkg/server/middleware"
	gormstore "github.com/zkmarket/broker/pkg/store/gorm"
)

// TestContext holds the resources shared by the integration tests: a
// PostgreSQL testcontainer with migrations applied, a gorm-backed store and
// an in-process status API.
type TestContext struct {
	Container   *tcpostgres.PostgresContainer
	DB          *gorm.DB
	Store       *gormstore.Store
	DatabaseURL string

	Auth      *middleware.APIAuthenticator
	APIServer *httptest.Server
}

// NewTestContext starts a PostgreSQL container, runs the migrations and
// serves the status API in-process.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}
	migrationsDir := filepath.Join(projectRoot, "db", "migrations")

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("broker"),
		tcpostgres.WithUsername("broker"),
		tcpostgres.WithPassword("broker"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	if err := runMigrations(migrationsDir, dbURL); err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(
		gormpostgres.New(gormpostgres.Config{DSN: dbURL, PreferSimpleProtocol: true}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	ordersStore := gormstore.NewStore(gdb)
	auth := middleware.NewAPIAuthenticatorWithSecret([]byte("integration-test-secret"))

	health := func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}

	s := server.NewServer(ordersStore, config.NewHandle(&config.Config{}), health, "127.0.0.1", "0")
	endpoints.RegisterEndpoints(s, auth)

	return &TestContext{
		Container:   container,
		DB:          gdb,
		Store:       ordersStore,
		DatabaseURL: dbURL,
		Auth:        auth,
		APIServer:   httptest.NewServer(s.Router),
	}, nil
}

// Close tears down the API server and the database container.
func (tc *TestContext) Close(ctx context.Context) {
	if tc.APIServer != nil {
		tc.APIServer.Close()
	}
	if tc.Container != nil {
		timeout := 10 * time.Second
		_ = tc.Container.Stop(ctx, &timeout)
	}
}

func runMigrations(migrationsDir, dbURL string) error {
	m, err := migrate.New("file://"+migrationsDir, dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found above %s", dir)
		}
		dir = parent
	}
}
