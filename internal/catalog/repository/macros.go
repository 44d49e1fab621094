package repository

import (
	"context"

	"github.com/sidosera/ttl/internal/executor"
)

// MacroRepo reads and defines macros.
type MacroRepo struct {
	exec executor.Executor
}

func NewMacroRepo(exec executor.Executor) *MacroRepo { return &MacroRepo{exec: exec} }

// Get returns the named macro, or nil when none exists.
func (r *MacroRepo) Get(ctx context.Context, name string) (*Macro, error) {
	df, err := r.exec.Query(ctx, `SELECT name, query FROM catalog.macro WHERE name = ?`, name)
	if err != nil {
		return nil, err
	}
	if df.Len() == 0 {
		return nil, nil
	}
	return &Macro{Name: df.String(0, "name"), Query: df.String(0, "query")}, nil
}

// Names lists macro names in order.
func (r *MacroRepo) Names(ctx context.Context) ([]string, error) {
	df, err := r.exec.Query(ctx, `SELECT name FROM catalog.macro ORDER BY name`)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, df.Len())
	for i := 0; i < df.Len(); i++ {
		out = append(out, df.String(i, "name"))
	}
	return out, nil
}

// Upsert defines or replaces a macro.
func (r *MacroRepo) Upsert(ctx context.Context, m Macro) error {
	_, err := r.exec.Query(ctx, `
	INSERT INTO catalog.macro(name, query) VALUES (?, ?)
	ON CONFLICT(name) DO UPDATE SET query=excluded.query
	`, m.Name, m.Query)
	return err
}
