package v1

import (
    "net/http"

    "github.com/google/uuid"
    "github.com/tinoosan/tunegrab/internal/reqid"
)

const headerRequestID = "X-Request-ID"

// RequestID gives every request a correlation ID: an incoming X-Request-ID
// is honored, otherwise a fresh UUIDv4 is generated. The ID is stored in
// the request context and echoed on the response so clients can quote it
// when reporting a failed submission.
func RequestID(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        id := r.Header.Get(headerRequestID)
        if id == "" {
            id = uuid.NewString()
        }
        w.Header().Set(headerRequestID, id)
        next.ServeHTTP(w, r.WithContext(reqid.With(r.Context(), id)))
    })
}
