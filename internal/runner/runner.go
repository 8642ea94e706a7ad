package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tinoosan/tunegrab/internal/artifact"
	"github.com/tinoosan/tunegrab/internal/data"
	"github.com/tinoosan/tunegrab/internal/engine"
	"github.com/tinoosan/tunegrab/internal/history"
	"github.com/tinoosan/tunegrab/internal/meta"
	"github.com/tinoosan/tunegrab/internal/metrics"
	"github.com/tinoosan/tunegrab/internal/registry"
	"github.com/tinoosan/tunegrab/internal/validate"
)

// Options tunes the runner. Zero values keep the reference behavior:
// unbounded concurrent fetches and no fetch timeout.
type Options struct {
	Dir           string
	MaxConcurrent int
	FetchTimeout  time.Duration
}

// Runner accepts submissions, drives the fetch engine concurrently and
// finalizes each task into the history store.
type Runner struct {
	log       *slog.Logger
	reg       *registry.Registry
	fetcher   engine.Fetcher
	store     history.Writer
	extractor meta.Extractor

	dir     string
	sem     chan struct{}
	timeout time.Duration
	wg      sync.WaitGroup
}

// New creates a Runner. extractor may be nil, in which case enrichment is
// skipped and records carry the engine's title only.
func New(log *slog.Logger, reg *registry.Registry, fetcher engine.Fetcher, store history.Writer, extractor meta.Extractor, opts Options) *Runner {
	if log == nil {
		log = slog.Default()
	}
	r := &Runner{
		log:       log,
		reg:       reg,
		fetcher:   fetcher,
		store:     store,
		extractor: extractor,
		dir:       opts.Dir,
		timeout:   opts.FetchTimeout,
	}
	if opts.MaxConcurrent > 0 {
		r.sem = make(chan struct{}, opts.MaxConcurrent)
	}
	return r
}

// Submit validates and normalizes source, creates a registry entry and
// schedules the fetch. It returns before the fetch starts. An invalid
// source is rejected synchronously and no task is created.
func (r *Runner) Submit(ctx context.Context, source string) (string, error) {
	if !validate.IsValid(source) {
		return "", fmt.Errorf("%w: %s", data.ErrInvalidSource, source)
	}
	normalized := validate.Normalize(source)
	id := r.reg.Create(normalized)
	metrics.TasksSubmitted.Inc()
	r.wg.Add(1)
	go r.run(id, normalized)
	return id, nil
}

// run is the asynchronous task body. Every failure inside it becomes the
// task's terminal Failed state; nothing escapes to crash the process.
func (r *Runner) run(id, source string) {
	defer r.wg.Done()
	defer func() {
		if p := recover(); p != nil {
			r.fail(id, fmt.Errorf("task panic: %v", p))
		}
	}()

	if r.sem != nil {
		r.sem <- struct{}{}
		defer func() { <-r.sem }()
	}

	metrics.ActiveTasks.Inc()
	defer metrics.ActiveTasks.Dec()

	_ = r.reg.Update(id, func(t *data.Task) {
		t.Status = data.StatusRunning
		t.Message = "Starting download..."
	})

	ctx := context.Background()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := r.fetcher.Fetch(ctx, source, r.progressFunc(id))
	metrics.FetchDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		r.fail(id, err)
		return
	}

	filename, size := res.Filename, int64(0)
	if resolved, ok := artifact.Resolve(r.dir, res.Filename); ok {
		filename, size = resolved.Filename, resolved.Size
	} else {
		r.log.Warn("artifact not resolved", "task_id", id, "expected", res.Filename)
		filename = ""
	}

	info := r.enrich(ctx, id, source)

	_ = r.reg.Update(id, func(t *data.Task) {
		t.Status = data.StatusFinished
		t.Percentage = 100
		t.Filename = filename
		t.Message = "Download completed successfully"
		t.Downloaded, t.Total, t.Speed = "", "", ""
	})
	metrics.TasksCompleted.WithLabelValues("finished").Inc()

	rec := r.buildRecord(source, filename, size, res, info)
	if err := r.store.Insert(context.Background(), rec); err != nil {
		r.log.Error("insert history", "task_id", id, "err", err)
	}
	r.log.Info("task finished", "task_id", id, "filename", filename, "bytes", size)
}

// progressFunc maps engine events onto registry updates. Status stays
// untouched here; only the runner moves the state machine.
func (r *Runner) progressFunc(id string) engine.ProgressFunc {
	return func(p engine.Progress) {
		metrics.ProgressEvents.Inc()
		_ = r.reg.Update(id, func(t *data.Task) {
			t.Percentage = clamp(p.Percentage)
			if p.Downloaded != "" {
				t.Downloaded = p.Downloaded
			}
			if p.Total != "" {
				t.Total = p.Total
			}
			if p.Speed != "" {
				t.Speed = p.Speed
			}
			if p.Filename != "" {
				t.Filename = p.Filename
			}
		})
	}
}

// enrich pulls extended metadata and saves the sidecar. Both steps are
// best-effort: failures are logged and the task still succeeds.
func (r *Runner) enrich(ctx context.Context, id, source string) *data.VideoInfo {
	if r.extractor == nil {
		return nil
	}
	info, err := r.extractor.Extract(ctx, source)
	if err != nil {
		r.log.Warn("metadata extraction failed", "task_id", id, "err", err)
		return nil
	}
	if path, err := r.extractor.SaveSidecar(info); err != nil {
		r.log.Warn("sidecar save failed", "task_id", id, "err", err)
	} else {
		r.log.Info("sidecar saved", "task_id", id, "path", path)
	}
	return info
}

func (r *Runner) buildRecord(source, filename string, size int64, res *engine.Result, info *data.VideoInfo) *data.HistoryRecord {
	rec := &data.HistoryRecord{
		Source:      source,
		Title:       res.Title,
		Filename:    filename,
		CompletedAt: time.Now(),
		Uploader:    res.Uploader,
		FileSize:    size,
		Duration:    data.FormatDuration(res.Duration),
	}
	if info != nil {
		if rec.Title == "" {
			rec.Title = info.Title
		}
		if rec.Uploader == "" {
			rec.Uploader = info.Uploader
		}
		if info.DurationFormatted != "" {
			rec.Duration = info.DurationFormatted
		}
		rec.VideoID = info.VideoID
	}
	if rec.Title == "" {
		rec.Title = "Unknown"
	}
	if id, ok := validate.VideoID(source); ok && rec.VideoID == "" {
		rec.VideoID = id
	}
	return rec
}

func (r *Runner) fail(id string, err error) {
	_ = r.reg.Update(id, func(t *data.Task) {
		t.Status = data.StatusFailed
		t.ErrorCause = err.Error()
		t.Message = "Error: " + err.Error()
	})
	metrics.TasksCompleted.WithLabelValues("failed").Inc()
	r.log.Error("task failed", "task_id", id, "err", err)
}

// Shutdown waits for in-flight tasks to finish or the context to expire.
func (r *Runner) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func clamp(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
