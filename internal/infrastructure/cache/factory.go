package cache

import (
	"fmt"
	"io"

	"github.com/tafa/dashboard/internal/domain/ledger"
	"github.com/tafa/dashboard/internal/infrastructure/config"
	"go.uber.org/zap"
)

// TableStoreFactory creates table stores based on configuration
type TableStoreFactory struct {
	cacheConfig           config.CacheConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// TableStoreFactoryOption is a functional option for configuring the factory
type TableStoreFactoryOption func(*TableStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) TableStoreFactoryOption {
	return func(f *TableStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) TableStoreFactoryOption {
	return func(f *TableStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewTableStoreFactory creates a new factory
func NewTableStoreFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...TableStoreFactoryOption) *TableStoreFactory {
	f := &TableStoreFactory{
		cacheConfig:           cacheCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateRedisStore creates a Redis-backed table store
func (f *TableStoreFactory) CreateRedisStore() (*RedisTableStore, error) {
	store, err := NewRedisTableStore(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, f.cacheConfig.KeyPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis table store: %w", err)
	}
	return store, nil
}

// CreateStore returns the store selected by cache.backend.
// The redis backend is fronted by an in-memory L1 tier. When Redis cannot be
// reached the factory falls back to memory only, unless fallback is disabled.
func (f *TableStoreFactory) CreateStore() (ledger.TableStore, error) {
	if f.cacheConfig.Backend != "redis" {
		f.logger.Info("using in-memory table cache")
		return NewMemoryTableStore(), nil
	}

	l2, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using tiered table cache",
			zap.String("redis_host", f.redisConfig.Host),
			zap.Int("redis_port", f.redisConfig.Port))
		return NewTieredTableStore(NewMemoryTableStore(), l2, WithTieredLogger(f.logger)), nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for table cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory table cache. "+
		"Instances will load tables independently.",
		zap.Error(err),
	)
	return NewMemoryTableStore(), nil
}

// Close releases store's connections when it holds any
func Close(store ledger.TableStore) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
