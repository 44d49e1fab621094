package database

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/mattn/go-sqlite3"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdent reports whether name is usable as a bare schema identifier.
func ValidIdent(name string) bool {
	return identRe.MatchString(name)
}

// Open opens driver/dsn restricted to a single connection. In-memory
// databases live as long as that connection, so it is never recycled.
func Open(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	return db, nil
}

// OpenMemory opens a private in-memory sqlite database.
func OpenMemory() (*sql.DB, error) {
	return Open("sqlite3", ":memory:?_foreign_keys=on")
}

// Attach attaches the sqlite database at path under alias. Use ":memory:"
// for a fresh in-memory namespace.
func Attach(ctx context.Context, db *sql.DB, path, alias string) error {
	if !ValidIdent(alias) {
		return fmt.Errorf("attach: invalid alias %q", alias)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("ATTACH DATABASE ? AS %s", alias), path); err != nil {
		return fmt.Errorf("attach %s: %w", alias, err)
	}
	return nil
}

// TxBeginner is satisfied by *sql.DB and *sql.Conn.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// WithTx runs fn in a transaction.
func WithTx(ctx context.Context, b TxBeginner, fn func(tx *sql.Tx) error) error {
	tx, err := b.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
