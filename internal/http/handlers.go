package http

import (
	"encoding/json"
	"log/slog"
	nethttp "net/http"
	"time"

	"game-trigger-service/internal/domain"
	"game-trigger-service/internal/fetch"
	"game-trigger-service/internal/monitor"
)

type nowFunc func() time.Time

// MonitorStatus is the slice of the monitor the ops surface reads.
type MonitorStatus interface {
	Status() monitor.Status
	Replay() []domain.GameEvent
}

// SourceHealth exposes breaker and limiter state per configured provider.
type SourceHealth interface {
	Health() []fetch.SourceHealth
}

// Handler wires HTTP routes to the monitor and fetch layers.
type Handler struct {
	monitor MonitorStatus
	sources SourceHealth
	logger  *slog.Logger
	now     nowFunc
}

// NewHandler constructs a Handler with defaults.
func NewHandler(mon MonitorStatus, sources SourceHealth, logger *slog.Logger) *Handler {
	return &Handler{
		monitor: mon,
		sources: sources,
		logger:  logger,
		now:     time.Now,
	}
}

// Health reports the service health.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	h.writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the monitor loops are running.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	status := h.monitor.Status()
	if !status.IsReady() {
		h.writeError(w, r, nethttp.StatusServiceUnavailable, "monitor not running")
		return
	}
	h.writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"})
}

type statusResponse struct {
	Time    time.Time            `json:"time"`
	Monitor monitor.Status       `json:"monitor"`
	Sources []fetch.SourceHealth `json:"sources"`
}

// Status returns monitor activity plus breaker and limiter state per source.
func (h *Handler) Status(w nethttp.ResponseWriter, r *nethttp.Request) {
	resp := statusResponse{
		Time:    h.now().UTC(),
		Monitor: h.monitor.Status(),
	}
	if h.sources != nil {
		resp.Sources = h.sources.Health()
	}
	h.writeJSON(w, nethttp.StatusOK, resp)
}

type recentEventsResponse struct {
	Count  int                `json:"count"`
	Events []domain.GameEvent `json:"events"`
}

// RecentEvents returns the replay buffer contents, oldest first.
func (h *Handler) RecentEvents(w nethttp.ResponseWriter, r *nethttp.Request) {
	events := h.monitor.Replay()
	h.writeJSON(w, nethttp.StatusOK, recentEventsResponse{
		Count:  len(events),
		Events: events,
	})
}

func (h *Handler) writeJSON(w nethttp.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w nethttp.ResponseWriter, r *nethttp.Request, status int, message string) {
	body := map[string]string{"error": message}
	if reqID := requestIDFromContext(r.Context()); reqID != "" {
		body["requestId"] = reqID
	}
	h.writeJSON(w, status, body)
}
