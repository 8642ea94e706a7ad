package router

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	v1 "github.com/tinoosan/tunegrab/api/v1"
	"github.com/tinoosan/tunegrab/internal/auth"
)

// New sets up the application routes and required middleware.
func New(logger *slog.Logger, downloads *v1.Downloads) *mux.Router {

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("ok")); err != nil {
			logger.Error("write healthz response", "err", err)
		}
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.Use(v1.RequestID)
	r.Use(downloads.Log)
	r.Use(auth.Middleware)

	api := r.PathPrefix("/v1").Subrouter()

	// GETs
	get := api.Methods("GET").Subrouter()
	get.HandleFunc("/info", downloads.Info)
	get.HandleFunc("/progress/{taskId}", downloads.Progress)
	get.HandleFunc("/progress/{taskId}/ws", downloads.ProgressWS)
	get.HandleFunc("/history", downloads.History)
	get.HandleFunc("/files/{filename}", downloads.File)
	get.HandleFunc("/stats", downloads.Stats)

	// POSTs
	post := api.Methods("POST").Subrouter()
	post.HandleFunc("/downloads", downloads.Submit)
	post.Use(v1.MiddlewareSubmitValidation)

	return r
}
