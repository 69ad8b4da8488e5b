package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"photosbridge/internal/config"
	"photosbridge/internal/status"
)

// Monitor is the HTTP surface that consumes the status tracker: health,
// lifecycle status with recent events, and Prometheus metrics. It runs on
// its own port and never touches the bridge's raw TCP path.
type Monitor struct {
	server  *http.Server
	logger  *slog.Logger
	tracker *status.Tracker
	bridge  *Server
}

// NewMonitor creates the monitoring server.
func NewMonitor(cfg config.MonitorConfig, logger *slog.Logger, tracker *status.Tracker,
	bridge *Server, gatherer prometheus.Gatherer) *Monitor {

	m := &Monitor{
		logger:  logger,
		tracker: tracker,
		bridge:  bridge,
	}

	m.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Address, cfg.Port),
		Handler:      m.handler(gatherer),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return m
}

func (m *Monitor) handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", m.handleHealth)
	mux.HandleFunc("/status", m.handleStatus)
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}

// statusResponse is the JSON payload returned by /status.
type statusResponse struct {
	Status            status.Status  `json:"status"`
	ActiveConnections int            `json:"active_connections"`
	Events            []status.Event `json:"events"`
}

func (m *Monitor) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":"%s"}`, time.Now().Format(time.RFC3339))
}

func (m *Monitor) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Status:            m.tracker.Snapshot(),
		ActiveConnections: m.bridge.ActiveConnections(),
		Events:            m.tracker.Events(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		m.logger.Error("Failed to encode status response", slog.String("error", err.Error()))
	}
}

// Start launches the monitoring server in the background.
func (m *Monitor) Start() {
	m.logger.Info("Starting monitoring server", slog.String("address", m.server.Addr))

	go func() {
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.logger.Error("Monitoring server error", slog.String("error", err.Error()))
		}
	}()
}

// Stop gracefully stops the monitoring server.
func (m *Monitor) Stop(ctx context.Context) error {
	m.logger.Info("Stopping monitoring server...")
	return m.server.Shutdown(ctx)
}
