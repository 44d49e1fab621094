package repository

import (
	"context"

	"github.com/sidosera/ttl/internal/executor"
)

// Runtime keys seeded at bootstrap.
const (
	KeyFocusedPane = "focused_pane"
	KeyLastPaneID  = "last_pane_id"
)

// RuntimeRepo reads runtime keys.
type RuntimeRepo struct {
	exec executor.Executor
}

func NewRuntimeRepo(exec executor.Executor) *RuntimeRepo { return &RuntimeRepo{exec: exec} }

// Get returns the value stored under key. ok is false when the key is absent.
func (r *RuntimeRepo) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	df, err := r.exec.Query(ctx, `SELECT value FROM catalog.runtime WHERE key = ?`, key)
	if err != nil {
		return "", false, err
	}
	if df.Len() == 0 {
		return "", false, nil
	}
	return df.String(0, "value"), true, nil
}

// FocusedPane returns the id of the focused pane.
func (r *RuntimeRepo) FocusedPane(ctx context.Context) (string, error) {
	v, _, err := r.Get(ctx, KeyFocusedPane)
	return v, err
}
