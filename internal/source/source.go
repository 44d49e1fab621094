// Package source serves configured extra schemas from a database/sql
// driver. Each source appears under its schema name so routed text such as
// "SELECT * FROM logs.events" resolves.
package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/sidosera/ttl/internal/database"
	"github.com/sidosera/ttl/internal/executor"
	"github.com/sidosera/ttl/internal/logging"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite3"
	DriverDuckDB = "duckdb"
)

// Config describes one source.
type Config struct {
	Name   string
	Driver string
	DSN    string
}

// Executor runs queries for one source on a single pinned connection.
type Executor struct {
	name   string
	db     *sql.DB
	conn   *sql.Conn
	logger *slog.Logger
	mu     sync.Mutex
}

var _ executor.Executor = (*Executor)(nil)

// Open connects cfg and makes its schema name resolvable.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Executor, error) {
	logger = logging.OrNop(logger)
	if !database.ValidIdent(cfg.Name) {
		return nil, fmt.Errorf("source %q: invalid name", cfg.Name)
	}
	if cfg.Name == executor.CatalogSchema {
		return nil, fmt.Errorf("source %q: name is reserved", cfg.Name)
	}

	var (
		db  *sql.DB
		err error
	)
	switch cfg.Driver {
	case DriverDuckDB:
		db, err = database.Open(DriverDuckDB, cfg.DSN)
		if err == nil {
			_, err = db.ExecContext(ctx, "CREATE SCHEMA IF NOT EXISTS "+cfg.Name)
		}
	case DriverSQLite:
		db, err = database.OpenMemory()
		if err == nil {
			path := cfg.DSN
			if path == "" {
				path = ":memory:"
			}
			err = database.Attach(ctx, db, path, cfg.Name)
		}
	default:
		return nil, fmt.Errorf("source %q: unsupported driver %q", cfg.Name, cfg.Driver)
	}
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("open source %s: %w", cfg.Name, err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pin source %s connection: %w", cfg.Name, err)
	}
	logger.Debug("source attached", "schema", cfg.Name, "driver", cfg.Driver)
	return &Executor{name: cfg.Name, db: db, conn: conn, logger: logger}, nil
}

// Schema implements executor.Executor.
func (e *Executor) Schema() string { return e.name }

// Query runs query in one transaction.
func (e *Executor) Query(ctx context.Context, query string, args ...any) (*executor.DataFrame, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var df *executor.DataFrame
	err := database.WithTx(ctx, e.conn, func(tx *sql.Tx) error {
		var err error
		df, err = database.RunBatch(ctx, tx, query, args...)
		return err
	})
	if err != nil {
		e.logger.Debug("source query failed", "schema", e.name, "error", err)
		return nil, &executor.EngineError{Schema: e.name, Query: query, Err: err}
	}
	e.logger.Debug("source query", "schema", e.name, "rows", df.Len())
	return df, nil
}

// Close releases the connection, then the database.
func (e *Executor) Close() error {
	return errors.Join(e.conn.Close(), e.db.Close())
}

// OpenAll opens every source in order. On failure the ones already opened
// are closed.
func OpenAll(ctx context.Context, cfgs []Config, logger *slog.Logger) ([]*Executor, error) {
	out := make([]*Executor, 0, len(cfgs))
	for _, c := range cfgs {
		e, err := Open(ctx, c, logger)
		if err != nil {
			for _, o := range out {
				_ = o.Close()
			}
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
