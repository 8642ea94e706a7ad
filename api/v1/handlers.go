package v1

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/tinoosan/tunegrab/internal/data"
	"github.com/tinoosan/tunegrab/internal/history"
	"github.com/tinoosan/tunegrab/internal/meta"
	"github.com/tinoosan/tunegrab/internal/reqid"
	"github.com/tinoosan/tunegrab/internal/runner"
	"github.com/tinoosan/tunegrab/internal/stream"
	"github.com/tinoosan/tunegrab/internal/validate"
)

// Downloads bundles the HTTP handlers for submissions, progress streams,
// history queries and artifact retrieval.
type Downloads struct {
	l         *slog.Logger
	runner    *runner.Runner
	streamer  *stream.Streamer
	store     history.Reader
	extractor meta.Extractor
	dir       string
}

type submitBody struct {
	URL string `json:"url"`
}

type submitResponse struct {
	TaskID  string `json:"taskId"`
	Message string `json:"message"`
	URL     string `json:"url"`
}

type errorBody struct {
	Error string `json:"error"`
}

type rwLogger struct {
	http.ResponseWriter
	status int
	bytes  int
	err    error
}

func (w *rwLogger) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *rwLogger) SetErr(err error) {
	w.err = err
}

func (w *rwLogger) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Flush lets streaming handlers push buffered events through the logger
// wrapper.
func (w *rwLogger) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack exposes the underlying connection so WebSocket upgrades work
// behind the logger wrapper.
func (w *rwLogger) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hj, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

type errorSetter interface {
	SetErr(error)
}

func markErr(w http.ResponseWriter, err error) {
	if es, ok := w.(errorSetter); ok {
		es.SetErr(err)
	}
}

// context keys
type ctxKeySubmit struct{}

// NewDownloads wires the handler set.
func NewDownloads(l *slog.Logger, r *runner.Runner, s *stream.Streamer, store history.Reader, extractor meta.Extractor, dir string) *Downloads {
	return &Downloads{l: l, runner: r, streamer: s, store: store, extractor: extractor, dir: dir}
}

// Submit accepts a download request and schedules the fetch. The validation
// middleware has already decoded and sanity-checked the body.
func (d *Downloads) Submit(w http.ResponseWriter, r *http.Request) {
	v := r.Context().Value(ctxKeySubmit{})
	body, ok := v.(submitBody)
	if !ok || body.URL == "" {
		markErr(w, ErrSubmitCtx)
		http.Error(w, ErrSubmitCtx.Error(), http.StatusInternalServerError)
		return
	}

	id, err := d.runner.Submit(r.Context(), body.URL)
	if err != nil {
		markErr(w, err)
		if errors.Is(err, data.ErrInvalidSource) {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: ErrInvalidURL.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "failed to submit"})
		return
	}

	writeJSON(w, http.StatusAccepted, submitResponse{
		TaskID:  id,
		Message: "Download started",
		URL:     validate.Normalize(body.URL),
	})
}

// Info returns descriptive metadata without creating a task.
func (d *Downloads) Info(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if !validate.IsValid(url) {
		markErr(w, ErrInvalidURL)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ErrInvalidURL.Error()})
		return
	}

	info, err := d.extractor.Extract(r.Context(), validate.Normalize(url))
	if err != nil {
		markErr(w, err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "error extracting video info"})
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// History returns completed downloads, most recent first.
func (d *Downloads) History(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	recs, err := d.store.Query(r.Context(), limit, offset)
	if err != nil {
		markErr(w, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "error getting history"})
		return
	}
	if recs == nil {
		recs = []data.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

// Stats returns aggregate counts and sizes from the history store.
func (d *Downloads) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := d.store.Stats(r.Context())
	if err != nil {
		markErr(w, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "error getting stats"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// File serves a previously produced artifact from the download directory.
func (d *Downloads) File(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	name := vars["filename"]
	// Reject anything that could escape the download directory.
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		markErr(w, ErrBadFilename)
		http.Error(w, ErrBadFilename.Error(), http.StatusBadRequest)
		return
	}

	path := filepath.Join(d.dir, name)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, path)
}

// Log is the access-log middleware.
func (d *Downloads) Log(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		startTime := time.Now()
		rw := &rwLogger{ResponseWriter: w}
		next.ServeHTTP(rw, r)
		if rw.status == 0 {
			rw.status = http.StatusOK
		}
		timeElapsed := time.Since(startTime)
		hErr := rw.err
		if hErr != nil {
			d.l.Error(hErr.Error(),
				"method", r.Method,
				"url", r.URL.Path,
				"status", rw.status,
				"remote", r.RemoteAddr,
				"ua", r.UserAgent(),
				"dur_ms", timeElapsed.Milliseconds(),
				"bytes", rw.bytes,
				reqid.Attr(r.Context()))
			return
		}

		d.l.Info("", "method", r.Method,
			"url", r.URL.Path,
			"status", rw.status,
			"remote", r.RemoteAddr,
			"ua", r.UserAgent(),
			"dur_ms", timeElapsed.Milliseconds(),
			"bytes", rw.bytes,
			reqid.Attr(r.Context()))
	})
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
