package v1

import (
	"net/http"

	"github.com/gorilla/mux"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// ProgressWS delivers the same progress sequence as Progress over a
// WebSocket. The connection closes normally once the stream ends; a client
// going away cancels the stream but never the fetch.
func (d *Downloads) ProgressWS(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		markErr(w, err)
		return
	}
	defer func() { _ = conn.Close(websocket.StatusInternalError, "stream aborted") }()

	ctx := r.Context()
	for u := range d.streamer.Follow(ctx, taskID) {
		if err := wsjson.Write(ctx, conn, u); err != nil {
			return
		}
	}
	_ = conn.Close(websocket.StatusNormalClosure, "done")
}
