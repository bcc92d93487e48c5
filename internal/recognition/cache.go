package recognition

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"xscribe/internal/logging"
	"xscribe/internal/modelconfig"
	"xscribe/internal/services"
)

// Factory builds an engine for a tier. Called under the cache lock.
type Factory func(tier modelconfig.Tier) (Engine, error)

// Cache leases out at most one engine at a time. Acquire with the same
// tier reuses the cached engine; a different tier tears the old one down
// first. Acquiring while a lease is outstanding is a caller bug and
// fails rather than handing out a shared engine.
type Cache struct {
	mu      sync.Mutex
	factory Factory
	logger  *slog.Logger
	engine  Engine
	leased  bool
}

// NewCache builds an empty cache around factory.
func NewCache(factory Factory, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Cache{
		factory: factory,
		logger:  logging.WithComponent(logger, "recognition"),
	}
}

// Acquire returns an engine for tier, building one if the cached engine
// is missing or has a different tier. The caller must Release before the
// next Acquire.
func (c *Cache) Acquire(tier modelconfig.Tier) (Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.leased {
		return nil, services.Wrap(services.ErrValidation, "recognize", "acquire",
			"engine already leased", nil)
	}
	if c.engine != nil && c.engine.Tier() != tier {
		c.teardownLocked()
	}
	if c.engine == nil {
		engine, err := c.factory(tier)
		if err != nil {
			return nil, fmt.Errorf("build engine for tier %s: %w", tier, err)
		}
		c.engine = engine
		c.logger.Info("engine loaded", logging.String(logging.FieldEngine, string(tier)))
	}
	c.leased = true
	return c.engine, nil
}

// Release returns the lease, keeping the engine cached for the next
// Acquire of the same tier.
func (c *Cache) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leased = false
}

// Drop releases the lease and tears down the cached engine. Used after
// an out-of-memory failure so the next Acquire starts from a clean
// slate.
func (c *Cache) Drop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leased = false
	c.teardownLocked()
	runtime.GC()
}

func (c *Cache) teardownLocked() {
	if c.engine == nil {
		return
	}
	if err := c.engine.Close(); err != nil {
		c.logger.Warn("engine close failed", logging.Error(err))
	}
	c.logger.Info("engine released", logging.String(logging.FieldEngine, string(c.engine.Tier())))
	c.engine = nil
}
