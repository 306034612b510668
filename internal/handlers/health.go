package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"media-search-bot/internal/logging"
	"media-search-bot/internal/metrics"
)

// HealthStatus is the response body for the health endpoint.
type HealthStatus struct {
	Status         string    `json:"status"`
	Uptime         string    `json:"uptime"`
	TotalRecords   int       `json:"totalRecords"`
	TotalAudio     int       `json:"totalAudio"`
	TotalVideo     int       `json:"totalVideo"`
	TotalChats     int       `json:"totalChats"`
	ActiveSessions int       `json:"activeSessions"`
	LastIndexed    time.Time `json:"lastIndexed,omitempty"`
}

// HealthCheck reports service health plus catalog and session counts.
func (b *Bot) HealthCheck(w http.ResponseWriter, r *http.Request) {
	stats, err := b.store.CalculateStats(r.Context())
	if err != nil {
		logging.Error("Health check failed to read stats: %v", err)
		http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
		return
	}

	status := HealthStatus{
		Status:         "healthy",
		Uptime:         time.Since(b.startTime).Round(time.Second).String(),
		TotalRecords:   stats.TotalRecords,
		TotalAudio:     stats.TotalAudio,
		TotalVideo:     stats.TotalVideo,
		TotalChats:     stats.TotalChats,
		ActiveSessions: b.sessions.ActiveCount(),
		LastIndexed:    stats.LastIndexed,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		logging.Error("Failed to encode health response: %v", err)
	}
}

// LivenessCheck reports that the process is up.
func (b *Bot) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// ReadinessCheck reports whether the catalog is reachable.
func (b *Bot) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if _, err := b.store.CalculateStats(r.Context()); err != nil {
		logging.Error("Readiness check failed: %v", err)
		http.Error(w, "Not ready", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// GetStats feeds the metrics collector with current catalog and
// session counts.
func (b *Bot) GetStats() metrics.Stats {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	b.store.UpdateDBMetrics()

	out := metrics.Stats{ActiveSessions: b.sessions.ActiveCount()}

	stats, err := b.store.CalculateStats(ctx)
	if err != nil {
		logging.Debug("Stats collection failed: %v", err)
		return out
	}
	out.TotalRecords = stats.TotalRecords
	out.TotalAudio = stats.TotalAudio
	out.TotalVideo = stats.TotalVideo
	return out
}
