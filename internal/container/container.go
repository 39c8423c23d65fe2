package container

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"alignbench/adapters/postgres"
	"alignbench/app"
	"alignbench/internal/config"
	"alignbench/internal/errors"
	"alignbench/internal/logging"
	"alignbench/internal/migration"
	"alignbench/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	RunRepo ports.RunRepository

	// Services
	Scoring *app.ScoringService

	logger *zap.Logger
}

// New creates a container without persistence
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		logger: logging.New("container"),
	}
	c.Scoring = app.NewScoringService(cfg, nil)
	return c, nil
}

// Connect opens the configured database, migrates it and wires the run
// repository. It is a no-op when DATABASE_URL is empty.
func (c *Container) Connect(ctx context.Context) error {
	if !c.Config.Database.Enabled() {
		c.logger.Info("DATABASE_URL not set, persistence disabled")
		return nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", c.Config.Database.URL)
	if err != nil {
		return errors.DatabaseError("failed to connect to database", err)
	}
	return c.InitWithDatabase(ctx, db)
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	// Test database connection
	if err := db.PingContext(ctx); err != nil {
		return errors.DatabaseError("database connection test failed", err)
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		return errors.Wrap(err, "database migration failed")
	}

	c.RunRepo = postgres.NewRunRepository(db)
	c.Scoring = app.NewScoringService(c.Config, c.RunRepo)

	c.logger.Info("container initialized with database", zap.String("schema_version", migrator.Version()))
	return nil
}

// Shutdown releases the database connection
func (c *Container) Shutdown(ctx context.Context) error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
