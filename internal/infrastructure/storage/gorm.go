package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/storefront/cart/internal/domain/cart"
	"github.com/storefront/cart/internal/infrastructure/config"
	applog "github.com/storefront/cart/internal/infrastructure/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultCartTable = "cart_storage"

// CartBlobModel is one stored cart blob
type CartBlobModel struct {
	Key       string    `gorm:"column:cart_key;primaryKey;size:255"`
	Payload   string    `gorm:"column:payload;type:text;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

// GormStorage keeps cart blobs in a SQL table, one row per storage key
type GormStorage struct {
	db    *gorm.DB
	table string
}

// NewGormStorage creates a GormStorage on an open connection. The table is
// not created; call Migrate for that.
func NewGormStorage(db *gorm.DB, table string) *GormStorage {
	if table == "" {
		table = defaultCartTable
	}
	return &GormStorage{db: db, table: table}
}

// Migrate creates or updates the cart table
func (s *GormStorage) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Table(s.table).AutoMigrate(&CartBlobModel{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", s.table, err)
	}
	return nil
}

// Get implements cart.Storage
func (s *GormStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var model CartBlobModel
	err := s.db.WithContext(ctx).Table(s.table).Where("cart_key = ?", key).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cart %q: %w", key, err)
	}
	return model.Payload, true, nil
}

// Set implements cart.Storage as an upsert on the key
func (s *GormStorage) Set(ctx context.Context, key, value string) error {
	model := CartBlobModel{Key: key, Payload: value, UpdatedAt: time.Now().UTC()}
	err := s.db.WithContext(ctx).Table(s.table).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cart_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&model).Error
	if err != nil {
		return fmt.Errorf("failed to write cart %q: %w", key, err)
	}
	return nil
}

// Remove implements cart.Storage
func (s *GormStorage) Remove(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).Table(s.table).Where("cart_key = ?", key).Delete(&CartBlobModel{}).Error
	if err != nil {
		return fmt.Errorf("failed to remove cart %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying connection pool
func (s *GormStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// OpenSQLite opens (creating if needed) a SQLite database file
func OpenSQLite(path string, logger *zap.Logger, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), gormConfig(logger, logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	// SQLite allows a single writer
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// OpenPostgres connects to PostgreSQL and pings it
func OpenPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig(logger, logLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func gormConfig(logger *zap.Logger, logLevel string) *gorm.Config {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gorm.Config{
		Logger:                 applog.NewGormLogger(logger, logLevel, 200*time.Millisecond),
		SkipDefaultTransaction: true,
	}
}

var _ cart.Storage = (*GormStorage)(nil)
