package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server serves /metrics over HTTP.
type Server struct {
	addr     string
	metrics  *Metrics
	logger   logging.Logger
	listener net.Listener
	http     *http.Server
}

// NewServer binds addr immediately so that a bad address fails at startup.
func NewServer(addr string, m *Metrics, logger logging.Logger) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(m))

	return &Server{
		addr:     addr,
		metrics:  m,
		logger:   logger.With("module", "metrics"),
		listener: lis,
		http: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler returns the Prometheus handler for m's registry.
func Handler(m *Metrics) http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Addr is the bound listen address.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "metrics server started", "addr", s.Addr())
		if err := s.http.Serve(s.listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := s.http.Shutdown(shutdownCtx)
		<-errCh
		s.logger.Info(ctx, "metrics server stopped")
		return err
	case err := <-errCh:
		return err
	}
}
