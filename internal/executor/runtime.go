package executor

import (
	"errors"
	"fmt"
	"sort"
)

// Runtime maps schema names to executors. It is built once and never
// modified, so concurrent lookups need no locking. It does not own the
// executors; each one is closed by whoever opened it.
type Runtime struct {
	executors map[string]Executor
}

// NewRuntime registers execs under their schema names.
func NewRuntime(execs ...Executor) (*Runtime, error) {
	m := make(map[string]Executor, len(execs))
	for _, e := range execs {
		if e == nil {
			return nil, errors.New("runtime: nil executor")
		}
		name := e.Schema()
		if name == "" {
			return nil, errors.New("runtime: executor with empty schema")
		}
		if _, dup := m[name]; dup {
			return nil, fmt.Errorf("runtime: duplicate schema %q", name)
		}
		m[name] = e
	}
	return &Runtime{executors: m}, nil
}

// Lookup returns the executor registered for schema.
func (r *Runtime) Lookup(schema string) (Executor, bool) {
	if r == nil {
		return nil, false
	}
	e, ok := r.executors[schema]
	return e, ok
}

// Catalog returns the executor registered under CatalogSchema.
func (r *Runtime) Catalog() (Executor, bool) {
	return r.Lookup(CatalogSchema)
}

// Schemas lists registered schema names in sorted order.
func (r *Runtime) Schemas() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.executors))
	for name := range r.executors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
