package v1

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// Progress streams task updates as Server-Sent Events until the task
// reaches a terminal state or becomes untrackable. Each update is one
// `progress` event; a vanished task produces a single `error` event.
func (d *Downloads) Progress(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	taskID := mux.Vars(r)["taskId"]

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for u := range d.streamer.Follow(r.Context(), taskID) {
		event := "progress"
		if u.NotFound {
			event = "error"
		}
		b, err := json.Marshal(u)
		if err != nil {
			markErr(w, err)
			return
		}
		if _, err := w.Write([]byte("event: " + event + "\ndata: " + string(b) + "\n\n")); err != nil {
			markErr(w, err)
			return
		}
		flusher.Flush()
	}
}
