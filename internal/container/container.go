// Package container provides dependency injection for the bank-import application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"

	"fjacquet/bank-import/internal/categorizer"
	"fjacquet/bank-import/internal/common"
	"fjacquet/bank-import/internal/config"
	"fjacquet/bank-import/internal/factory"
	"fjacquet/bank-import/internal/importer"
	"fjacquet/bank-import/internal/logging"
	"fjacquet/bank-import/internal/store"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	store    store.Store
	rules    *store.CategoryStore
	engine   *categorizer.Engine
	detector *factory.Detector
	importer *importer.Service
}

// Option overrides a dependency, mostly for tests.
type Option func(*options)

type options struct {
	logger logging.Logger
	store  store.Store
}

// WithLogger uses logger instead of one built from the configuration.
func WithLogger(logger logging.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithStore uses st instead of opening the configured SQLite database.
func WithStore(st store.Store) Option {
	return func(o *options) { o.store = st }
}

// NewContainer creates and wires all application dependencies:
// config, logger, stores, engine, detector and the import service.
func NewContainer(ctx context.Context, cfg *config.Config, opts ...Option) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	// Create logger first as it's needed by other components
	logger := o.logger
	if logger == nil {
		logger = config.NewLogger(cfg)
	}
	common.SetLogger(logger)
	if len(cfg.CSV.Delimiter) == 1 {
		common.SetDelimiter(rune(cfg.CSV.Delimiter[0]))
	}

	rules := store.NewCategoryStore(cfg.Rules.Directory, logger)
	engine, err := categorizer.NewEngineFromStore(rules, logger,
		categorizer.WithBoxMapping(categorizer.NewBoxMapping(cfg.Categorization.TravelMileageBox)))
	if err != nil {
		return nil, fmt.Errorf("failed to build categorization engine: %w", err)
	}

	st := o.store
	if st == nil {
		st, err = store.OpenSQLite(ctx, cfg.Database.Path, logger)
		if err != nil {
			return nil, err
		}
	}

	detector := factory.NewDetector(logger)
	svc := importer.NewService(st, detector, engine, logger, importer.WithOptions(importer.Options{
		Tolerant:       cfg.Import.Tolerant,
		AutoCategorize: cfg.Import.AutoCategorize,
		MaxFileSize:    cfg.Import.MaxFileSize,
	}))

	logger.Debug("Container initialized successfully",
		logging.F("parsers_count", len(detector.AvailableBankNames())),
		logging.F("database", cfg.Database.Path))

	return &Container{
		logger:   logger,
		config:   cfg,
		store:    st,
		rules:    rules,
		engine:   engine,
		detector: detector,
		importer: svc,
	}, nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetStore returns the transaction store.
func (c *Container) GetStore() store.Store {
	return c.store
}

// GetRuleStore returns the YAML rule and mapping-profile store.
func (c *Container) GetRuleStore() *store.CategoryStore {
	return c.rules
}

// GetEngine returns the categorization engine.
func (c *Container) GetEngine() *categorizer.Engine {
	return c.engine
}

// GetDetector returns the format detector.
func (c *Container) GetDetector() *factory.Detector {
	return c.detector
}

// GetImporter returns the import service.
func (c *Container) GetImporter() *importer.Service {
	return c.importer
}

// Close releases the store.
func (c *Container) Close() error {
	if err := c.store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	c.logger.Debug("Container closed")
	return nil
}
