package container

import (
	"context"
	"fmt"
	"log"

	"statcalc/adapters/sqlstore"
	"statcalc/adapters/stats/reference"
	"statcalc/app"
	"statcalc/internal"
	"statcalc/internal/api"
	"statcalc/internal/config"
	"statcalc/internal/errors"
	"statcalc/internal/migration"
	"statcalc/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	DatasetRepo     ports.DatasetRepository
	CalculationRepo ports.CalculationRepository

	// Services
	Calculator *app.CalculatorService
	Datasets   *app.DatasetService
	Batch      *app.BatchService

	SSEHub *api.SSEHub
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	return &Container{
		Config: cfg,
		Logger: internal.NewLogger(internal.ParseLogLevel(cfg.Calc.LogLevel)),
	}, nil
}

// InitWithDatabase opens the configured database, applies migrations and wires the services
func (c *Container) InitWithDatabase(ctx context.Context) error {
	db, err := sqlstore.Open(ctx, c.Config.Database.Driver, c.Config.Database.URL)
	if err != nil {
		return errors.DatabaseError("failed to connect to database", err)
	}
	c.DB = db

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return errors.Wrap(err, "database migration failed")
	}

	c.DatasetRepo = sqlstore.NewDatasetRepository(db)
	c.CalculationRepo = sqlstore.NewCalculationRepository(db)
	c.initServices()

	log.Printf("[Container] Initialized with %s database", c.Config.Database.Driver)
	return nil
}

// InitWithoutDatabase wires the services for callers that only compute, like the UI
func (c *Container) InitWithoutDatabase() {
	c.initServices()
	log.Printf("[Container] Initialized without database")
}

func (c *Container) initServices() {
	c.SSEHub = api.NewSSEHub()

	c.Calculator = app.NewCalculatorService(c.DatasetRepo, c.CalculationRepo)
	c.Calculator.SetDefaultLevel(c.Config.Calc.DefaultLevel)
	c.Calculator.SetStrictLevels(c.Config.Calc.StrictLevels)
	c.Calculator.SetSummarizer(reference.NewSummarizer())
	c.Calculator.SetPublisher(c.SSEHub)
	c.Calculator.SetLogger(c.Logger)
	if c.DatasetRepo != nil {
		c.Datasets = app.NewDatasetService(c.DatasetRepo, c.CalculationRepo)
	}
	c.Batch = app.NewBatchService(c.Calculator, c.Config.Calc.BatchConcurrency)
}

// APIHandler builds the JSON API handler from the wired services
func (c *Container) APIHandler() *api.Handler {
	// a nil *sqlx.DB must not become a non-nil Pinger
	var pinger api.Pinger
	if c.DB != nil {
		pinger = c.DB
	}
	return api.NewHandler(c.Calculator, c.Datasets, c.Batch, c.SSEHub, pinger, api.HandlerConfig{
		StrictParsing: c.Config.Calc.StrictParsing,
		RemoteTimeout: c.Config.Remote.Timeout,
	})
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.SSEHub != nil {
		c.SSEHub.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
