// Package db owns the Postgres connection used by the submission store.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"contact-service/internal/config"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

// Pool defaults, applied when the corresponding config field is zero.
const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxLifetime = 300
	defaultConnMaxIdleTime = 60
)

// Open connects to Postgres, verifies the connection and applies the pool
// settings. The caller decides whether a failure here is fatal.
func Open(cfg config.DatabaseConfig) (*bun.DB, error) {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName, sslMode,
	)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	db := bun.NewDB(sqldb, pgdialect.New())

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	maxOpen := orDefault(cfg.MaxOpenConns, defaultMaxOpenConns)
	maxIdle := orDefault(cfg.MaxIdleConns, defaultMaxIdleConns)
	connMaxLifetime := orDefault(cfg.ConnMaxLifetime, defaultConnMaxLifetime)
	connMaxIdleTime := orDefault(cfg.ConnMaxIdleTime, defaultConnMaxIdleTime)

	sqldb.SetMaxOpenConns(maxOpen)
	sqldb.SetMaxIdleConns(maxIdle)
	sqldb.SetConnMaxLifetime(time.Duration(connMaxLifetime) * time.Second)
	sqldb.SetConnMaxIdleTime(time.Duration(connMaxIdleTime) * time.Second)

	slog.Info("database connected",
		"host", cfg.Host,
		"name", cfg.DBName,
		"max_open_conns", maxOpen,
		"max_idle_conns", maxIdle,
	)

	return db, nil
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func Close(db *bun.DB) {
	if db != nil {
		db.Close()
	}
}

// RunMigrations creates the tables for the given models if they do not exist
// yet. The schema is small enough that bun's model-driven DDL is sufficient;
// there is no separate migration history.
func RunMigrations(ctx context.Context, db *bun.DB, models ...interface{}) error {
	for _, model := range models {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for model: %w", err)
		}
	}
	slog.Info("database migrations completed")
	return nil
}
