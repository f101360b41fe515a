package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"game-trigger-service/internal/metrics"
)

// NewRouter registers the ops routes behind the logging middleware.
func NewRouter(handler *Handler, logger *slog.Logger, recorder *metrics.Recorder) nethttp.Handler {
	r := chi.NewRouter()
	r.Use(LoggingMiddleware(logger, recorder))

	r.Get("/health", handler.Health)
	r.Get("/ready", handler.Ready)
	r.Get("/status", handler.Status)
	r.Get("/events/recent", handler.RecentEvents)
	return r
}
