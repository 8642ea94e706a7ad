package router

import (
    "context"
    "io"
    "log/slog"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    v1 "github.com/tinoosan/tunegrab/api/v1"
    "github.com/tinoosan/tunegrab/internal/data"
    "github.com/tinoosan/tunegrab/internal/engine"
    "github.com/tinoosan/tunegrab/internal/history"
    "github.com/tinoosan/tunegrab/internal/metrics"
    "github.com/tinoosan/tunegrab/internal/registry"
    "github.com/tinoosan/tunegrab/internal/runner"
    "github.com/tinoosan/tunegrab/internal/stream"
)

type fakeExtractor struct{}

func (f *fakeExtractor) Extract(ctx context.Context, url string) (*data.VideoInfo, error) {
    return &data.VideoInfo{Title: "Song"}, nil
}
func (f *fakeExtractor) SaveSidecar(info *data.VideoInfo) (string, error) { return "", nil }

func newDownloads(t *testing.T) *v1.Downloads {
    t.Helper()
    l := slog.New(slog.NewTextHandler(io.Discard, nil))
    reg := registry.New()
    store := history.NewInMemStore()
    run := runner.New(l, reg, engine.NewNoop(), store, nil, runner.Options{Dir: t.TempDir()})
    str := stream.New(reg, 10*time.Millisecond, 0)
    return v1.NewDownloads(l, run, str, store, &fakeExtractor{}, t.TempDir())
}

func TestHealthzOK(t *testing.T) {
    r := New(slog.Default(), newDownloads(t))

    req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
    w := httptest.NewRecorder()
    r.ServeHTTP(w, req)

    if w.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", w.Code)
    }
    if got := w.Body.String(); got != "ok" {
        t.Fatalf("expected body 'ok', got %q", got)
    }
}

func TestProtectedRouteRequiresToken(t *testing.T) {
    t.Setenv("TUNEGRAB_API_TOKEN", "sekrit")
    r := New(slog.New(slog.NewTextHandler(io.Discard, nil)), newDownloads(t))

    req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
    w := httptest.NewRecorder()
    r.ServeHTTP(w, req)
    if w.Code != http.StatusUnauthorized {
        t.Fatalf("expected 401 without token, got %d", w.Code)
    }

    req = httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
    req.Header.Set("Authorization", "Bearer sekrit")
    w = httptest.NewRecorder()
    r.ServeHTTP(w, req)
    if w.Code != http.StatusOK {
        t.Fatalf("expected 200 with token, got %d", w.Code)
    }
}

func TestMetricsEndpointEmitsFamilies(t *testing.T) {
    // Register collectors and prime a couple of samples
    metrics.Register()
    metrics.TasksSubmitted.Inc()
    metrics.FetchDuration.Observe(0.02)
    metrics.ActiveTasks.Set(2)

    r := New(slog.New(slog.NewTextHandler(io.Discard, nil)), newDownloads(t))

    req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
    w := httptest.NewRecorder()
    r.ServeHTTP(w, req)

    if w.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d", w.Code)
    }
    body := w.Body.String()
    if !strings.Contains(body, "tunegrab_tasks_submitted_total") {
        t.Fatalf("missing tasks_submitted_total in metrics: %s", body)
    }
    if !strings.Contains(body, "tunegrab_fetch_duration_seconds_count") {
        t.Fatalf("missing fetch duration histogram in metrics: %s", body)
    }
    if !strings.Contains(body, "tunegrab_active_tasks") {
        t.Fatalf("missing active_tasks gauge in metrics: %s", body)
    }
}
