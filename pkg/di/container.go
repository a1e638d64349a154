// Package di provides dependency injection container
package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ssargent/keepsake/pkg/codec"
	"github.com/ssargent/keepsake/pkg/config"
	"github.com/ssargent/keepsake/pkg/lifecycle"
	"github.com/ssargent/keepsake/pkg/store"
)

// KindStore is the registry kind of the process-wide record store.
const KindStore = "store"

// Container holds all the dependencies for the application
type Container struct {
	registry *lifecycle.Registry
	metrics  *prometheus.Registry
	logger   *zap.Logger
}

// NewContainer creates a new dependency injection container
func NewContainer(logger *zap.Logger) *Container {
	if logger == nil {
		logger = zap.NewNop()
	}
	registry := lifecycle.NewRegistry()
	registry.Register(KindStore, lifecycle.PolicyKeepFirst)

	return &Container{
		registry: registry,
		metrics:  prometheus.NewRegistry(),
		logger:   logger,
	}
}

// storeComponent lets the registry own a store.
type storeComponent struct {
	store  *store.Store
	logger *zap.Logger
}

func (c *storeComponent) Destroy() {
	c.logger.Debug("record store released", zap.String("root", c.store.Root()))
}

// Store returns the process-wide record store, building it from cfg the
// first time. Later calls return the same store whatever cfg they pass.
func (c *Container) Store(cfg *config.Config) (*store.Store, error) {
	comp, err := lifecycle.Get(c.registry, KindStore, func() (*storeComponent, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		cd, err := codec.ByName(cfg.Codec, cfg.Security.Passphrase)
		if err != nil {
			return nil, err
		}
		s, err := store.New(cd, cfg.DataDir,
			store.WithExtension(cfg.Extension),
			store.WithLogger(c.logger),
			store.WithMetrics(store.NewMetrics(c.metrics)),
		)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("record store ready",
			zap.String("root", s.Root()),
			zap.String("codec", cd.Name()),
			zap.String("extension", s.Extension()))
		return &storeComponent{store: s, logger: c.logger}, nil
	})
	if err != nil {
		return nil, err
	}
	return comp.store, nil
}

// Registry returns the lifecycle registry
func (c *Container) Registry() *lifecycle.Registry {
	return c.registry
}

// Metrics returns the registry store metrics are recorded on
func (c *Container) Metrics() *prometheus.Registry {
	return c.metrics
}

// Logger returns the application logger
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// Close releases everything the container owns
func (c *Container) Close() {
	c.registry.Shutdown()
	_ = c.logger.Sync()
}
