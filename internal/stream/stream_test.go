package stream

import (
	"context"
	"testing"
	"time"

	"github.com/tinoosan/tunegrab/internal/data"
	"github.com/tinoosan/tunegrab/internal/registry"
)

const source = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"

func collect(t *testing.T, ch <-chan Update, max int, timeout time.Duration) []Update {
	t.Helper()
	var out []Update
	deadline := time.After(timeout)
	for {
		select {
		case u, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, u)
			if len(out) >= max {
				return out
			}
		case <-deadline:
			t.Fatalf("timed out after %d updates: %+v", len(out), out)
		}
	}
}

func TestFollowUnknownTask(t *testing.T) {
	s := New(registry.New(), 10*time.Millisecond, 0)
	ch := s.Follow(context.Background(), "nope")

	u, ok := <-ch
	if !ok {
		t.Fatalf("channel closed before the not-found update")
	}
	if !u.NotFound || u.Message != "Task not found" {
		t.Fatalf("unexpected update %+v", u)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected exactly one update for an unknown task")
	}
}

func TestFollowTracksLifecycle(t *testing.T) {
	reg := registry.New()
	id := reg.Create(source)
	s := New(reg, 10*time.Millisecond, 0)

	ch := s.Follow(context.Background(), id)

	// Pending emits once and then stays quiet until the status moves.
	first := collect(t, ch, 1, time.Second)[0]
	if first.Status != string(data.StatusPending) {
		t.Fatalf("first update status = %q", first.Status)
	}

	if err := reg.Update(id, func(task *data.Task) {
		task.Status = data.StatusRunning
		task.Percentage = 50
		task.Speed = "1.0 MB/s"
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	running := collect(t, ch, 1, time.Second)[0]
	if running.Status != string(data.StatusRunning) || running.Percentage != 50 {
		t.Fatalf("unexpected running update %+v", running)
	}

	if err := reg.Update(id, func(task *data.Task) {
		task.Status = data.StatusFinished
		task.Percentage = 100
		task.Filename = "song.mp3"
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// Drain to the terminal update. Running re-emits on every tick so
	// intermediate updates are expected.
	var final Update
	deadline := time.After(time.Second)
	for final.Status != string(data.StatusFinished) {
		select {
		case u, ok := <-ch:
			if !ok {
				t.Fatalf("stream closed before the terminal update")
			}
			final = u
		case <-deadline:
			t.Fatalf("never saw the terminal update")
		}
	}
	if final.Filename != "song.mp3" || final.Percentage != 100 {
		t.Fatalf("unexpected terminal update %+v", final)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("stream stayed open after the terminal update")
	}
}

func TestFollowAlreadyTerminal(t *testing.T) {
	reg := registry.New()
	id := reg.Create(source)
	if err := reg.Update(id, func(task *data.Task) {
		task.Status = data.StatusFailed
		task.ErrorCause = "network went away"
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	s := New(reg, 10*time.Millisecond, 0)
	ch := s.Follow(context.Background(), id)

	u := collect(t, ch, 1, time.Second)[0]
	if u.Status != string(data.StatusFailed) {
		t.Fatalf("status = %q", u.Status)
	}
	if _, ok := <-ch; ok {
		t.Fatalf("expected exactly one update for a terminal task")
	}
}

func TestFollowHonorsCancellation(t *testing.T) {
	reg := registry.New()
	id := reg.Create(source)
	s := New(reg, 10*time.Millisecond, 0)

	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Follow(ctx, id)
	collect(t, ch, 1, time.Second)
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("stream did not close after cancellation")
		}
	}
}

func TestTerminalGraceDelaysClose(t *testing.T) {
	reg := registry.New()
	id := reg.Create(source)
	if err := reg.Update(id, func(task *data.Task) {
		task.Status = data.StatusFinished
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	grace := 100 * time.Millisecond
	s := New(reg, 10*time.Millisecond, grace)
	start := time.Now()
	ch := s.Follow(context.Background(), id)
	collect(t, ch, 1, time.Second)
	if _, ok := <-ch; ok {
		t.Fatalf("expected close after the terminal update")
	}
	if elapsed := time.Since(start); elapsed < grace {
		t.Fatalf("stream closed after %v, before the %v grace", elapsed, grace)
	}
}
