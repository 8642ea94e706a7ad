package registry

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tinoosan/tunegrab/internal/data"
)

// Registry owns the set of live tasks. All mutation goes through Update so
// readers only ever observe fully-applied states via Clone snapshots.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*data.Task
	now   func() time.Time
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		tasks: make(map[string]*data.Task),
		now:   time.Now,
	}
}

// Create allocates a fresh task in Pending state and returns its id.
func (r *Registry) Create(source string) string {
	id := uuid.NewString()
	t := &data.Task{
		ID:        id,
		Source:    source,
		Status:    data.StatusPending,
		Message:   "Task created",
		CreatedAt: r.now(),
	}
	r.mu.Lock()
	r.tasks[id] = t
	r.mu.Unlock()
	return id
}

// Get returns a snapshot of the task or data.ErrNotFound. Callers must treat
// NotFound as "no longer trackable", not as an error to retry.
func (r *Registry) Get(id string) (*data.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, data.ErrNotFound
	}
	return t.Clone(), nil
}

// Update applies mutate to the task under the registry lock. Terminal tasks
// never leave their terminal status; a late status write is dropped.
func (r *Registry) Update(id string, mutate func(*data.Task)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return data.ErrNotFound
	}
	prev := t.Status
	mutate(t)
	if prev.Terminal() && t.Status != prev {
		t.Status = prev
	}
	if t.Status.Terminal() && t.DoneAt.IsZero() {
		t.DoneAt = r.now()
	}
	return nil
}

// Evict removes the task. It refuses to drop a task that has not reached a
// terminal state.
func (r *Registry) Evict(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return data.ErrNotFound
	}
	if !t.Status.Terminal() {
		return data.ErrBusy
	}
	delete(r.tasks, id)
	return nil
}

// Len reports the number of tracked tasks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// Sweep evicts terminal tasks older than retention and returns how many were
// removed. The janitor calls this periodically; streams get their grace
// window from the retention default being much larger than the poll
// interval.
func (r *Registry) Sweep(retention time.Duration) int {
	cutoff := r.now().Add(-retention)
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, t := range r.tasks {
		if t.Status.Terminal() && !t.DoneAt.IsZero() && t.DoneAt.Before(cutoff) {
			delete(r.tasks, id)
			n++
		}
	}
	return n
}

// Janitor runs Sweep on the given interval until stop is closed.
func (r *Registry) Janitor(interval, retention time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.Sweep(retention)
		}
	}
}
