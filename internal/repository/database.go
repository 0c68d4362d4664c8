package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // postgres:// migration driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// DB is the query executor every repository depends on. *sqlx.DB satisfies it.
type DB interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// PoolConfig tunes the shared connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnectTimeout  time.Duration
}

// NewPostgresDB establishes a new connection pool to the PostgreSQL database.
func NewPostgresDB(dataSourceName string, pool PoolConfig, logger *zap.Logger) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if pool.MaxOpenConns > 0 {
		db.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		db.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	}

	timeout := pool.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info("Successfully connected to the database",
		zap.Int("max_open_conns", pool.MaxOpenConns),
		zap.Duration("conn_max_idle_time", pool.ConnMaxIdleTime),
	)
	return db, nil
}

// Migrate brings the schema up to date with the embedded migrations.
// Only "no change" is tolerated; a dirty or failed migration is returned.
// A positive or negative steps value migrates by that many versions instead.
func Migrate(databaseURL string, steps int, log migrate.Logger) error {
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer m.Close()
	m.Log = log

	if steps != 0 {
		err = m.Steps(steps)
	} else {
		err = m.Up()
	}

	var dirty migrate.ErrDirty
	switch {
	case err == nil:
	case errors.Is(err, migrate.ErrNoChange):
		log.Printf("schema is up to date")
	case errors.As(err, &dirty):
		return fmt.Errorf("database schema is dirty at version %d, fix it and force the version: %w", dirty.Version, err)
	default:
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, isDirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	log.Printf("schema version %d (dirty=%t)", version, isDirty)
	return nil
}

// ZapMigrateLogger adapts a zap logger to migrate.Logger.
type ZapMigrateLogger struct {
	Logger *zap.Logger
}

func (l ZapMigrateLogger) Printf(format string, v ...interface{}) {
	l.Logger.Sugar().Infof(format, v...)
}

func (l ZapMigrateLogger) Verbose() bool {
	return l.Logger.Core().Enabled(zap.DebugLevel)
}

const pgForeignKeyViolation = "23503"

func isPgError(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
