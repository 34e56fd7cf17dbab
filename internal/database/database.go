package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/config"
	"github.com/Lixing-Zhang/kart-challenge/meal-orders/internal/models"
)

// DB wraps the GORM handle and the underlying connection pool
type DB struct {
	Gorm *gorm.DB
	sql  *sql.DB
}

// Open connects to the configured relational store.
// The returned handle is safe for concurrent use and must be closed by the caller.
func Open(cfg config.DatabaseConfig, log *slog.Logger) (*DB, error) {
	sqlDB, dialector, err := openPool(cfg)
	if err != nil {
		return nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newGormLogger(log),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	return &DB{Gorm: gdb, sql: sqlDB}, nil
}

func openPool(cfg config.DatabaseConfig) (*sql.DB, gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		connConfig, err := pgx.ParseConfig(cfg.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse database config: %w", err)
		}
		sqlDB := stdlib.OpenDB(*connConfig)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
		return sqlDB, postgres.New(postgres.Config{Conn: sqlDB}), nil

	case config.DriverSQLite:
		sqlDB, err := sql.Open("sqlite3", cfg.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open database: %w", err)
		}
		// sqlite allows a single writer; a single connection also keeps
		// in-memory databases alive for the lifetime of the pool.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(0)
		sqlDB.SetConnMaxIdleTime(0)
		return sqlDB, sqlite.Dialector{Conn: sqlDB}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

// newGormLogger routes GORM's statement log through the application logger
func newGormLogger(log *slog.Logger) gormlogger.Interface {
	return gormlogger.New(
		slog.NewLogLogger(log.Handler(), slog.LevelWarn),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Migrate creates or updates the meals, orders and order_meals tables
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.Gorm.WithContext(ctx).AutoMigrate(&models.Meal{}, &models.Order{}, &models.OrderMeal{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Ping runs a trivial query against the store
func (db *DB) Ping(ctx context.Context) error {
	var one int
	if err := db.Gorm.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error; err != nil {
		return err
	}
	if one != 1 {
		return fmt.Errorf("unexpected health query result: %d", one)
	}
	return nil
}

// Close closes the connection pool
func (db *DB) Close() error {
	if db.sql != nil {
		return db.sql.Close()
	}
	return nil
}
