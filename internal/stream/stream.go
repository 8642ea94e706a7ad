package stream

import (
	"context"
	"time"

	"github.com/tinoosan/tunegrab/internal/data"
	"github.com/tinoosan/tunegrab/internal/registry"
)

// Update is one notification delivered to a progress observer.
type Update struct {
	TaskID     string  `json:"taskId"`
	Status     string  `json:"status"`
	Percentage float64 `json:"percentage"`
	Downloaded string  `json:"downloaded,omitempty"`
	Total      string  `json:"total,omitempty"`
	Speed      string  `json:"speed,omitempty"`
	Filename   string  `json:"filename,omitempty"`
	Message    string  `json:"message,omitempty"`
	// NotFound marks the single terminal update emitted when the task is no
	// longer trackable.
	NotFound bool `json:"-"`
}

// Streamer produces per-observer progress sequences by sampling the
// registry on a fixed interval.
type Streamer struct {
	reg      *registry.Registry
	interval time.Duration
	grace    time.Duration
}

// New creates a Streamer polling every interval. After a terminal update
// the stream lingers for grace before closing, so an observer that
// reconnects right at completion can still catch the event.
func New(reg *registry.Registry, interval, grace time.Duration) *Streamer {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Streamer{reg: reg, interval: interval, grace: grace}
}

// Follow returns a finite sequence of updates for taskID. The channel
// closes after a terminal status, a not-found condition, or ctx
// cancellation. Updates are emitted when the status changed since the last
// emit, or continuously while Running. Following an already-terminal task
// yields that terminal update once. The stream never evicts the task;
// eviction is registry housekeeping.
func (s *Streamer) Follow(ctx context.Context, taskID string) <-chan Update {
	ch := make(chan Update, 1)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		var last data.TaskStatus
		for {
			t, err := s.reg.Get(taskID)
			if err != nil {
				select {
				case ch <- Update{TaskID: taskID, NotFound: true, Message: "Task not found"}:
				case <-ctx.Done():
				}
				return
			}

			if t.Status != last || t.Status == data.StatusRunning {
				select {
				case ch <- snapshot(t):
				case <-ctx.Done():
					return
				}
				last = t.Status

				if t.Status.Terminal() {
					select {
					case <-time.After(s.grace):
					case <-ctx.Done():
					}
					return
				}
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
	return ch
}

func snapshot(t *data.Task) Update {
	return Update{
		TaskID:     t.ID,
		Status:     string(t.Status),
		Percentage: t.Percentage,
		Downloaded: t.Downloaded,
		Total:      t.Total,
		Speed:      t.Speed,
		Filename:   t.Filename,
		Message:    t.Message,
	}
}
