package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/storefront/cart/internal/domain/cart"
	"github.com/storefront/cart/internal/infrastructure/config"
	"go.uber.org/zap"
)

// s3CheckTimeout bounds the bucket check, matching the redis PING timeout
const s3CheckTimeout = 5 * time.Second

// Backend is an opened cart storage together with its resources
type Backend struct {
	cart.Storage
	// Driver is the driver actually in use; it is "memory" after a fallback
	Driver   string
	Fallback bool
	closer   io.Closer
}

// Close releases the backend's connections
func (b *Backend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

// Factory opens the storage backend selected by configuration
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// FactoryOption is a functional option for configuring the Factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory and the backends it opens
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// NewFactory creates a new storage factory
func NewFactory(cfg *config.Config, opts ...FactoryOption) *Factory {
	f := &Factory{cfg: cfg, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Open opens the configured backend. When it is unreachable and
// storage.fallback_to_memory is set, an in-memory backend is returned instead.
func (f *Factory) Open(ctx context.Context) (*Backend, error) {
	driver := f.cfg.Storage.Driver
	backend, err := f.open(ctx, driver)
	if err == nil {
		f.logger.Info("cart storage opened", zap.String("driver", driver))
		return backend, nil
	}

	if driver == config.DriverMemory || !f.cfg.Storage.FallbackToMemory {
		return nil, fmt.Errorf("failed to open %s cart storage: %w", driver, err)
	}

	f.logger.Warn("cart storage unavailable, falling back to in-memory storage. "+
		"Carts will not survive a restart.",
		zap.String("driver", driver),
		zap.Error(err),
	)
	return &Backend{
		Storage:  NewMemoryStorage(f.cfg.Storage.QuotaBytes),
		Driver:   config.DriverMemory,
		Fallback: true,
	}, nil
}

func (f *Factory) open(ctx context.Context, driver string) (*Backend, error) {
	switch driver {
	case config.DriverMemory:
		return &Backend{Storage: NewMemoryStorage(f.cfg.Storage.QuotaBytes), Driver: driver}, nil

	case config.DriverRedis:
		s, err := NewRedisStorage(ctx, f.cfg.Redis)
		if err != nil {
			return nil, err
		}
		return &Backend{Storage: s, Driver: driver, closer: s}, nil

	case config.DriverSQLite, config.DriverPostgres:
		s, err := f.openSQL(ctx, driver)
		if err != nil {
			return nil, err
		}
		return &Backend{Storage: s, Driver: driver, closer: s}, nil

	case config.DriverS3:
		s, err := NewS3Storage(ctx, &f.cfg.S3, WithS3Logger(f.logger.Named("s3")))
		if err != nil {
			return nil, err
		}
		checkCtx, cancel := context.WithTimeout(ctx, s3CheckTimeout)
		defer cancel()
		if err := s.EnsureBucket(checkCtx); err != nil {
			return nil, err
		}
		return &Backend{Storage: s, Driver: driver}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

func (f *Factory) openSQL(ctx context.Context, driver string) (*GormStorage, error) {
	var (
		s   *GormStorage
		err error
	)
	if driver == config.DriverSQLite {
		db, openErr := OpenSQLite(f.cfg.Database.SQLitePath, f.logger, f.cfg.Log.Level)
		if openErr != nil {
			return nil, openErr
		}
		s = NewGormStorage(db, f.cfg.Database.Table)
	} else {
		db, openErr := OpenPostgres(ctx, f.cfg.Database, f.logger, f.cfg.Log.Level)
		if openErr != nil {
			return nil, openErr
		}
		s = NewGormStorage(db, f.cfg.Database.Table)
	}

	if err = s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}
