package prometheusmetrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server serves prometheus metrics on its own listener
type Server struct {
	http.Server

	Host   string
	Port   int
	Path   string
	Logger *zap.Logger
}

// New create new metrics Server
func New(options ...Option) *Server {
	s := &Server{
		Port:   9000,
		Path:   "/metrics",
		Logger: zap.NewNop(),
	}
	for _, option := range options {
		option(s)
	}
	if s.Addr == "" {
		s.Addr = s.Host + ":" + strconv.Itoa(s.Port)
	}

	mux := http.NewServeMux()
	mux.Handle(s.Path, promhttp.Handler())
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, s.Path, http.StatusPermanentRedirect)
	})
	s.Handler = mux
	return s
}

// Startup starts the metrics listener in the background
func (s *Server) Startup(_ context.Context) error {
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("prometheus listen", zap.Error(err))
		}
	}()
	s.Logger.Info("prometheus listen", zap.String("addr", s.Addr), zap.String("path", s.Path))
	return nil
}

// Option Server option
type Option func(s *Server)

// WithAddr with listen address option, overrides host and port
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.Addr = addr
	}
}

// WithHost with server host option
func WithHost(host string) Option {
	return func(s *Server) {
		s.Host = host
	}
}

// WithPort with port option
func WithPort(port int) Option {
	return func(s *Server) {
		if port > 0 {
			s.Port = port
		}
	}
}

// WithPath with path option
func WithPath(path string) Option {
	return func(s *Server) {
		if path != "" {
			s.Path = path
		}
	}
}

// WithLogger with logger option
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}
