// Package database manages the PostgreSQL connection pool for the
// application portal and runs schema migrations at startup.
package database

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBInterface is the slice of pgxpool.Pool the repositories depend on.
// Tests swap in a pgxmock pool through the package-level DB variable.
type DBInterface interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)

	// Begin starts a transaction. Used by operations that must apply
	// multiple statements atomically (status change + history append,
	// assignment delete + bulk insert).
	Begin(ctx context.Context) (pgx.Tx, error)

	Ping(ctx context.Context) error
	Close()
}

// DB is the process-wide connection pool. Connect sets it; tests may
// replace it with a mock.
var DB DBInterface

// Config holds connection pool settings.
type Config struct {
	URL      string // postgres:// connection string
	MaxConns int32
	MinConns int32
}

// DefaultConfig builds a Config from the DATABASE_URL environment
// variable with default pool sizing. Startup refuses to guess a
// connection string, so a missing DATABASE_URL is an error.
func DefaultConfig() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	return &Config{
		URL:      dbURL,
		MaxConns: 25,
		MinConns: 5,
	}, nil
}

// Connect opens the pool, verifies connectivity with a ping, and assigns
// the global DB. Passing nil uses DefaultConfig.
func Connect(cfg *Config) error {
	if cfg == nil {
		var err error
		cfg, err = DefaultConfig()
		if err != nil {
			return fmt.Errorf("failed to get default config: %w", err)
		}
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	DB = pool
	log.Println("Database connected successfully")
	return nil
}

// Close shuts down the pool. Safe to call twice or before Connect.
func Close() {
	if DB != nil {
		DB.Close()
		log.Println("Database connection closed")
		DB = nil
	}
}

// MustConnect is Connect for startup paths that cannot proceed without
// a database.
func MustConnect(cfg *Config) {
	if err := Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
}

// IsConnected reports whether the pool is up and answering pings.
func IsConnected() bool {
	if DB == nil {
		return false
	}
	return DB.Ping(context.Background()) == nil
}
