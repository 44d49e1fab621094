package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/sidosera/ttl/internal/executor"
)

// HistoryRepo appends and reads command history.
type HistoryRepo struct {
	exec executor.Executor
}

func NewHistoryRepo(exec executor.Executor) *HistoryRepo { return &HistoryRepo{exec: exec} }

// Append stores command with at as its epoch-millisecond timestamp.
func (r *HistoryRepo) Append(ctx context.Context, command string, at time.Time) error {
	_, err := r.exec.Query(ctx, `INSERT INTO catalog.history (command, timestamp) VALUES (?, ?)`, command, at.UnixMilli())
	return err
}

// Commands returns command texts newest first.
func (r *HistoryRepo) Commands(ctx context.Context) ([]string, error) {
	df, err := r.exec.Query(ctx, `SELECT command FROM catalog.history ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, df.Len())
	for i := 0; i < df.Len(); i++ {
		out = append(out, df.String(i, "command"))
	}
	return out, nil
}

// List returns up to limit entries, newest first. limit <= 0 means all.
func (r *HistoryRepo) List(ctx context.Context, limit int) ([]HistoryEntry, error) {
	q := `SELECT id, command, timestamp FROM catalog.history ORDER BY id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	df, err := r.exec.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	out := make([]HistoryEntry, 0, df.Len())
	for i := 0; i < df.Len(); i++ {
		id, err := toInt64(df.Value(i, "id"))
		if err != nil {
			return nil, fmt.Errorf("history id: %w", err)
		}
		ts, err := toInt64(df.Value(i, "timestamp"))
		if err != nil {
			return nil, fmt.Errorf("history timestamp: %w", err)
		}
		out = append(out, HistoryEntry{ID: id, Command: df.String(i, "command"), Timestamp: time.UnixMilli(ts)})
	}
	return out, nil
}
