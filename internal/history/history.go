// Package history backs the input line's up/down recall with the catalog
// history table.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/sidosera/ttl/internal/catalog/repository"
	"github.com/sidosera/ttl/internal/executor"
)

// Direction is a navigation step.
type Direction int

const (
	Up Direction = iota
	Down
)

// History tracks a recall cursor over the stored commands. Cursor -1 is the
// fresh input line; 0 is the newest command.
type History struct {
	repo *repository.HistoryRepo
	now  func() time.Time

	mu     sync.Mutex
	cursor int
}

// New returns a History writing through the catalog executor.
func New(catalog executor.Executor) *History {
	return &History{
		repo:   repository.NewHistoryRepo(catalog),
		now:    time.Now,
		cursor: -1,
	}
}

// Add appends command and resets the cursor.
func (h *History) Add(ctx context.Context, command string) error {
	h.mu.Lock()
	h.cursor = -1
	h.mu.Unlock()
	return h.repo.Append(ctx, command, h.now())
}

// Navigate moves the cursor one step and returns the command under it. ok
// is false when there is no history at all. Moving down past the newest
// command yields "".
func (h *History) Navigate(ctx context.Context, dir Direction) (command string, ok bool, err error) {
	cmds, err := h.repo.Commands(ctx)
	if err != nil {
		return "", false, err
	}
	if len(cmds) == 0 {
		return "", false, nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	switch dir {
	case Up:
		h.cursor = min(h.cursor+1, len(cmds)-1)
	case Down:
		h.cursor = max(-1, h.cursor-1)
	}
	if h.cursor < 0 {
		return "", true, nil
	}
	return cmds[h.cursor], true, nil
}

// List returns up to limit entries, newest first.
func (h *History) List(ctx context.Context, limit int) ([]repository.HistoryEntry, error) {
	return h.repo.List(ctx, limit)
}
