package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"photosbridge/internal/assets"
	"photosbridge/internal/config"
	"photosbridge/internal/metrics"
	"photosbridge/internal/protocol"
	"photosbridge/internal/status"
)

// AssetFetcher resolves an asset ID to bytes and a content type. Satisfied
// by *assets.Fetcher.
type AssetFetcher interface {
	Fetch(ctx context.Context, id string) (*assets.Result, error)
}

// Server owns the bound socket and the active-connection registry.
type Server struct {
	cfg     *config.ServerConfig
	logger  *slog.Logger
	tracker *status.Tracker
	fetcher AssetFetcher
	metrics *metrics.Metrics

	listener net.Listener
	conns    *registry

	// Concurrency management
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a server. Call Start to bind and begin accepting.
func New(cfg *config.ServerConfig, logger *slog.Logger, tracker *status.Tracker,
	fetcher AssetFetcher, m *metrics.Metrics) *Server {

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		cfg:     cfg,
		logger:  logger,
		tracker: tracker,
		fetcher: fetcher,
		metrics: m,
		conns:   newRegistry(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start binds the listener and launches the accept loop. It does not block.
// A bind failure is terminal: the tracker moves to ListenerError and the
// server never retries.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.BindAddress, s.cfg.Port)
	s.tracker.Eventf("Starting server on %s", addr)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		s.tracker.SetError(status.StateListenerError, err.Error())
		s.tracker.Eventf("Failed to listen on %s: %v", addr, err)
		s.logger.Error("Failed to listen",
			slog.String("address", addr),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.listener = listener
	port := listener.Addr().(*net.TCPAddr).Port
	s.tracker.SetRunning(port)
	s.tracker.Eventf("Server ready on port %d", port)
	s.logger.Info("Server started",
		slog.String("address", listener.Addr().String()),
		slog.Int("port", port),
	)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// ActiveConnections returns the current registry size.
func (s *Server) ActiveConnections() int {
	return s.conns.count()
}

// Stop closes the listener, tears down in-flight connections, and waits for
// all handler goroutines, bounded by ctx.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping server...")
	s.cancel()

	if s.listener != nil {
		if err := s.listener.Close(); err != nil {
			s.logger.Warn("Error closing listener", slog.String("error", err.Error()))
		}
	}

	for _, c := range s.conns.all() {
		c.close(s)
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Server stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown wait: %w", ctx.Err())
	}
}

// acceptLoop accepts connections until the listener closes. Each accepted
// connection gets its own goroutine so one slow client cannot block the
// rest.
func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		netConn, err := s.listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			s.tracker.Eventf("Accept failed: %v", err)
			s.logger.Error("Failed to accept connection", slog.String("error", err.Error()))
			continue
		}

		c := newConn(netConn)
		s.addConn(c)
		s.tracker.Eventf("Accepted connection from %s", netConn.RemoteAddr())
		s.logger.Debug("Connection accepted",
			slog.String("conn_id", c.id.String()),
			slog.String("remote_addr", netConn.RemoteAddr().String()),
		)

		s.wg.Add(1)
		go s.handleConn(c)
	}
}

func (s *Server) addConn(c *conn) {
	s.conns.add(c)
	s.metrics.ConnectionsAccepted.Inc()
	s.metrics.ActiveConnections.Inc()
}

func (s *Server) removeConn(c *conn) {
	s.conns.remove(c)
	s.metrics.ActiveConnections.Dec()
}

// handleConn runs the read, dispatch, respond sequence for one connection.
// Teardown happens exactly once through conn.close regardless of which
// branch terminates the connection.
func (s *Server) handleConn(c *conn) {
	defer s.wg.Done()
	defer c.close(s)

	c.setPhase(PhaseReading)
	if t := s.cfg.GetReadTimeout(); t > 0 {
		_ = c.netConn.SetReadDeadline(time.Now().Add(t))
	}

	// A single bounded read: only the request line matters, and it is
	// assumed to arrive whole. No reassembly across reads.
	buf := make([]byte, s.cfg.MaxRequestBytes)
	n, err := c.netConn.Read(buf)
	if err != nil {
		s.tracker.Eventf("Read failed: %v", err)
		s.logger.Debug("Connection read failed",
			slog.String("conn_id", c.id.String()),
			slog.String("error", err.Error()),
		)
		return
	}

	req, err := protocol.ParseRequest(buf[:n])
	if err != nil && !errors.Is(err, protocol.ErrMalformedURL) {
		// Not even a METHOD SP PATH line: drop without a response.
		s.metrics.ParseErrors.Inc()
		s.tracker.Eventf("Dropped connection with unparseable request: %v", err)
		return
	}

	if req.Method != "GET" {
		// Only GET is supported; everything else gets an idle close.
		s.metrics.ParseErrors.Inc()
		s.tracker.Eventf("Dropped connection with method %s", req.Method)
		return
	}

	if errors.Is(err, protocol.ErrMalformedURL) {
		s.respond(c, protocol.StatusBadRequest, "text/plain", []byte(invalidURLBody))
		return
	}

	c.setPhase(PhaseDispatching)
	outcome := route(req.Path, req.Query)

	switch outcome.kind {
	case routeLiveness:
		s.respond(c, protocol.StatusOK, "text/plain", []byte(livenessBody))
	case routeImage:
		s.respondImage(c, outcome.assetID)
	default:
		s.respond(c, protocol.StatusNotFound, "text/plain", []byte(notFoundBody))
	}
}

// respondImage resolves the asset and maps the fetch error taxonomy onto
// HTTP statuses. Errors stay local to this connection.
func (s *Server) respondImage(c *conn, assetID string) {
	start := time.Now()
	result, err := s.fetcher.Fetch(s.ctx, assetID)
	s.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.tracker.Eventf("Image request for %q failed: %v", assetID, err)
		switch {
		case errors.Is(err, assets.ErrAccessDenied):
			s.metrics.FetchErrors.WithLabelValues("access_denied").Inc()
			s.respond(c, protocol.StatusForbidden, "text/plain", []byte(accessDeniedBody))
		case errors.Is(err, assets.ErrNotFound):
			s.metrics.FetchErrors.WithLabelValues("not_found").Inc()
			s.respond(c, protocol.StatusNotFound, "text/plain", []byte(imageNotFoundBody))
		default:
			s.metrics.FetchErrors.WithLabelValues("load_failure").Inc()
			s.respond(c, protocol.StatusInternalServerError, "text/plain", []byte(loadFailureBody))
		}
		return
	}

	s.respond(c, protocol.StatusOK, result.ContentType, result.Bytes)
}

// respond frames one response and closes the connection. The write-failure
// path reuses the same teardown as every other branch.
func (s *Server) respond(c *conn, statusCode int, contentType string, body []byte) {
	c.setPhase(PhaseWriting)
	if t := s.cfg.GetWriteTimeout(); t > 0 {
		_ = c.netConn.SetWriteDeadline(time.Now().Add(t))
	}

	if err := protocol.WriteResponse(c.netConn, statusCode, contentType, body); err != nil {
		s.tracker.Eventf("Write failed: %v", err)
		s.logger.Debug("Connection write failed",
			slog.String("conn_id", c.id.String()),
			slog.String("error", err.Error()),
		)
		return
	}

	s.metrics.Responses.WithLabelValues(fmt.Sprintf("%d", statusCode)).Inc()
	s.metrics.ResponseSize.Observe(float64(len(body)))
	s.logger.Debug("Response written",
		slog.String("conn_id", c.id.String()),
		slog.Int("status", statusCode),
		slog.String("content_type", contentType),
		slog.Int("body_size", len(body)),
	)
}
