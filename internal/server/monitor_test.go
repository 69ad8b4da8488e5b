package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"photosbridge/internal/config"
	"photosbridge/internal/metrics"
	"photosbridge/internal/status"
)

func newTestMonitor(t *testing.T) (*Monitor, *status.Tracker, *Server) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracker := status.NewTracker()
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)

	cfg := &config.ServerConfig{Port: 0, BindAddress: "127.0.0.1", MaxRequestBytes: 4096}
	bridge := New(cfg, logger, tracker, &fakeFetcher{}, m)

	monitorCfg := config.MonitorConfig{Enabled: true, Port: 9724, Address: "127.0.0.1"}
	return NewMonitor(monitorCfg, logger, tracker, bridge, reg), tracker, bridge
}

func TestMonitorHealth(t *testing.T) {
	monitor, _, _ := newTestMonitor(t)
	reg := prometheus.NewRegistry()

	ts := httptest.NewServer(monitor.handler(reg))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestMonitorStatus(t *testing.T) {
	monitor, tracker, _ := newTestMonitor(t)
	reg := prometheus.NewRegistry()

	tracker.SetRunning(8724)
	tracker.Eventf("Server ready on port %d", 8724)

	ts := httptest.NewServer(monitor.handler(reg))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()

	var payload statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decoding status payload: %v", err)
	}

	if payload.Status.State != status.StateRunning {
		t.Errorf("state = %v, want running", payload.Status.State)
	}
	if payload.Status.Port != 8724 {
		t.Errorf("port = %d, want 8724", payload.Status.Port)
	}
	if payload.ActiveConnections != 0 {
		t.Errorf("active_connections = %d, want 0", payload.ActiveConnections)
	}
	if len(payload.Events) != 1 {
		t.Errorf("events = %d, want 1", len(payload.Events))
	}
}

func TestMonitorMetricsEndpoint(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tracker := status.NewTracker()
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	m.ConnectionsAccepted.Inc()

	cfg := &config.ServerConfig{Port: 0, BindAddress: "127.0.0.1", MaxRequestBytes: 4096}
	bridge := New(cfg, logger, tracker, &fakeFetcher{}, m)
	monitor := NewMonitor(config.MonitorConfig{Port: 9724, Address: "127.0.0.1"}, logger, tracker, bridge, reg)

	ts := httptest.NewServer(monitor.handler(reg))
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading metrics body: %v", err)
	}
	if want := "photosbridge_connections_accepted_total 1"; !strings.Contains(string(body), want) {
		t.Errorf("metrics output missing %q", want)
	}
}
