package catalog

import (
	"container/list"
	"sync"
)

// Listener is invoked with no payload after the catalog contents changed.
type Listener func()

// listeners is an ordered registry. Each subscription keeps its list
// element, so removal is O(1) and never disturbs the order of the others.
type listeners struct {
	mu sync.Mutex
	l  list.List
}

func (r *listeners) add(fn Listener) (unsubscribe func()) {
	r.mu.Lock()
	el := r.l.PushBack(fn)
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			r.l.Remove(el)
			r.mu.Unlock()
		})
	}
}

// notify calls every listener in registration order on the caller's
// goroutine. A listener that panics stops the fan-out.
func (r *listeners) notify() int {
	r.mu.Lock()
	snapshot := make([]Listener, 0, r.l.Len())
	for el := r.l.Front(); el != nil; el = el.Next() {
		snapshot = append(snapshot, el.Value.(Listener))
	}
	r.mu.Unlock()

	for _, fn := range snapshot {
		fn()
	}
	return len(snapshot)
}
