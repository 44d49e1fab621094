// Package catalog implements the in-memory store behind the "catalog"
// schema: pane layout, runtime keys, command history and macros. Every
// query is bracketed by a content fingerprint and subscribers are told when
// it moved.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sidosera/ttl/internal/database"
	"github.com/sidosera/ttl/internal/executor"
	"github.com/sidosera/ttl/internal/logging"
)

const listTablesQuery = `SELECT name FROM catalog.sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`

// Executor is the catalog schema's executor. It owns one in-memory sqlite
// database and holds a single connection to it for its whole lifetime.
type Executor struct {
	db        *sql.DB
	conn      *sql.Conn
	logger    *slog.Logger
	mu        sync.Mutex // one statement at a time on conn
	listeners listeners
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger; nil keeps the no-op default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.logger = logging.OrNop(l) }
}

var _ executor.Executor = (*Executor)(nil)

// New creates the catalog namespace, applies the bootstrap migrations
// (tables, root pane, runtime keys, built-in macros) and pins the
// connection.
func New(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(e)
	}

	db, err := database.OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if err := database.Attach(ctx, db, ":memory:", executor.CatalogSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := database.RunMigrations(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap catalog: %w", err)
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pin catalog connection: %w", err)
	}
	e.db = db
	e.conn = conn
	e.logger.Debug("catalog bootstrapped")
	return e, nil
}

// Schema implements executor.Executor.
func (e *Executor) Schema() string { return executor.CatalogSchema }

// Query runs query as one transaction. When the catalog fingerprint differs
// before and after, every subscriber is called in registration order once
// the statement has completed.
func (e *Executor) Query(ctx context.Context, query string, args ...any) (*executor.DataFrame, error) {
	df, changed, err := e.run(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if changed {
		n := e.listeners.notify()
		e.logger.Debug("catalog changed", "listeners", n)
	}
	return df, nil
}

func (e *Executor) run(ctx context.Context, query string, args ...any) (*executor.DataFrame, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	before, err := e.fingerprint(ctx)
	if err != nil {
		return nil, false, err
	}
	var df *executor.DataFrame
	err = database.WithTx(ctx, e.conn, func(tx *sql.Tx) error {
		var err error
		df, err = database.RunBatch(ctx, tx, query, args...)
		return err
	})
	if err != nil {
		e.logger.Debug("catalog query failed", "query", query, "error", err)
		return nil, false, &executor.EngineError{Schema: executor.CatalogSchema, Query: query, Err: err}
	}
	after, err := e.fingerprint(ctx)
	if err != nil {
		return nil, false, err
	}
	e.logger.Debug("catalog query", "rows", df.Len(), "before", before, "after", after)
	return df, before != after, nil
}

// Subscribe registers fn for change notifications and returns the function
// that removes it.
func (e *Executor) Subscribe(fn Listener) (unsubscribe func()) {
	return e.listeners.add(fn)
}

// Fingerprint returns the current content fingerprint of all catalog tables.
func (e *Executor) Fingerprint(ctx context.Context) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fingerprint(ctx)
}

func (e *Executor) fingerprint(ctx context.Context) (uint64, error) {
	names, err := database.RunBatch(ctx, e.conn, listTablesQuery)
	if err != nil {
		return 0, fmt.Errorf("fingerprint: list tables: %w", err)
	}
	digests := make([]TableDigest, 0, names.Len())
	for i := range names.Rows {
		name := names.String(i, "name")
		df, err := database.RunBatch(ctx, e.conn, "SELECT * FROM catalog."+quoteIdent(name))
		if err != nil {
			return 0, fmt.Errorf("fingerprint: read %s: %w", name, err)
		}
		digests = append(digests, DigestTable(name, df))
	}
	return Combine(digests), nil
}

// Close releases the connection, then the database. Call it once.
func (e *Executor) Close() error {
	return errors.Join(e.conn.Close(), e.db.Close())
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
