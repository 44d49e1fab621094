// Package repository reads and appends catalog rows through the catalog
// executor, so every write is fingerprinted like operator input.
package repository

import (
	"context"

	"github.com/sidosera/ttl/internal/executor"
	"github.com/sidosera/ttl/internal/pane"
)

// PaneRepo reads pane rows.
type PaneRepo struct {
	exec executor.Executor
}

func NewPaneRepo(exec executor.Executor) *PaneRepo { return &PaneRepo{exec: exec} }

// List returns every pane in insertion order.
func (r *PaneRepo) List(ctx context.Context) ([]pane.Pane, error) {
	df, err := r.exec.Query(ctx, `SELECT id, parent_id, type, direction, size, widget_type, widget_config FROM catalog.pane ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	return pane.FromFrame(df)
}
