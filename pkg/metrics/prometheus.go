package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/dbehnke/adlog-decoder/pkg/logger"
)

// PrometheusConfig holds Prometheus server configuration.
type PrometheusConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// PrometheusHandler handles Prometheus metrics HTTP requests.
type PrometheusHandler struct {
	collector *Collector
}

// NewPrometheusHandler creates a new Prometheus handler.
func NewPrometheusHandler(collector *Collector) *PrometheusHandler {
	return &PrometheusHandler{collector: collector}
}

// ServeHTTP handles HTTP requests for metrics, exposing the six gauges/
// counters SPEC_FULL.md §6 names.
func (h *PrometheusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	var output strings.Builder

	output.WriteString("# HELP adlog_runs_total Total number of decode runs started\n")
	output.WriteString("# TYPE adlog_runs_total counter\n")
	output.WriteString(fmt.Sprintf("adlog_runs_total %d\n", h.collector.GetRunsTotal()))

	output.WriteString("# HELP adlog_runs_failed_total Total number of decode runs that failed\n")
	output.WriteString("# TYPE adlog_runs_failed_total counter\n")
	output.WriteString(fmt.Sprintf("adlog_runs_failed_total %d\n", h.collector.GetRunsFailed()))

	output.WriteString("# HELP adlog_messages_decoded_total Total number of messages decoded\n")
	output.WriteString("# TYPE adlog_messages_decoded_total counter\n")
	output.WriteString(fmt.Sprintf("adlog_messages_decoded_total %d\n", h.collector.GetMessagesTotal()))

	output.WriteString("# HELP adlog_warnings_total Total number of decode warnings emitted\n")
	output.WriteString("# TYPE adlog_warnings_total counter\n")
	output.WriteString(fmt.Sprintf("adlog_warnings_total %d\n", h.collector.GetWarningsTotal()))

	output.WriteString("# HELP adlog_active_workers Number of workers in the currently running decode, 0 if idle\n")
	output.WriteString("# TYPE adlog_active_workers gauge\n")
	output.WriteString(fmt.Sprintf("adlog_active_workers %d\n", h.collector.GetActiveWorkers()))

	output.WriteString("# HELP adlog_last_run_duration_seconds Wall-clock duration of the most recently completed run\n")
	output.WriteString("# TYPE adlog_last_run_duration_seconds gauge\n")
	output.WriteString(fmt.Sprintf("adlog_last_run_duration_seconds %f\n", h.collector.GetLastRunSeconds()))

	w.Write([]byte(output.String()))
}

// PrometheusServer is an HTTP server for Prometheus metrics.
type PrometheusServer struct {
	config    PrometheusConfig
	collector *Collector
	log       *logger.Logger
	server    *http.Server
}

// NewPrometheusServer creates a new Prometheus metrics server.
func NewPrometheusServer(config PrometheusConfig, collector *Collector, log *logger.Logger) *PrometheusServer {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}
	return &PrometheusServer{
		config:    config,
		collector: collector,
		log:       log.WithComponent("metrics"),
	}
}

// Start starts the Prometheus metrics server, blocking until ctx is
// cancelled or the server errors.
func (s *PrometheusServer) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Info("Prometheus metrics server disabled")
		return nil
	}

	handler := NewPrometheusHandler(s.collector)
	mux := http.NewServeMux()
	mux.Handle(s.config.Path, handler)

	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	actualPort := listener.Addr().(*net.TCPAddr).Port

	s.server = &http.Server{Handler: mux}

	s.log.Info("Starting Prometheus metrics server",
		logger.Int("port", actualPort),
		logger.String("path", s.config.Path))

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Shutting down Prometheus metrics server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown error: %w", err)
		}
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// Stop stops the Prometheus metrics server.
func (s *PrometheusServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}
}
