// Package executor defines the uniform query capability every schema is
// served through, the tabular result it returns, and the Runtime that maps
// schema names to executors.
package executor

import (
	"context"
	"fmt"
)

// CatalogSchema is the schema name of the session-state store.
const CatalogSchema = "catalog"

// Executor runs query text against one data source.
type Executor interface {
	// Schema is the routing name. It is never interpreted syntactically.
	Schema() string
	// Query executes query and returns its result set. Args are bound
	// positionally; routed operator text is always passed without args.
	Query(ctx context.Context, query string, args ...any) (*DataFrame, error)
}

// Record is one result row keyed by column name.
type Record map[string]any

// DataFrame is the result of one query.
type DataFrame struct {
	Columns []string
	Rows    []Record
}

// Len returns the number of rows.
func (df *DataFrame) Len() int {
	if df == nil {
		return 0
	}
	return len(df.Rows)
}

// Value returns column col of row i, or nil when either is out of range.
func (df *DataFrame) Value(i int, col string) any {
	if df == nil || i < 0 || i >= len(df.Rows) {
		return nil
	}
	return df.Rows[i][col]
}

// String returns column col of row i formatted as text. Nil yields "".
func (df *DataFrame) String(i int, col string) string {
	v := df.Value(i, col)
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}

// EngineError wraps a failure reported by a backing store while executing a
// statement.
type EngineError struct {
	Schema string
	Query  string
	Err    error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %v", e.Schema, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }
