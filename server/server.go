package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
	"go.uber.org/zap"
)

// Service http.Handler with Startup and Shutdown lifecycle
type Service interface {
	http.Handler

	// Startup controls app startup
	Startup(ctx context.Context) error

	// Shutdown controls app shutdown
	Shutdown(ctx context.Context) error
}

// Metrics represents metrics Startup and Shutdown lifecycle
type Metrics interface {
	Startup(ctx context.Context) error
	Shutdown(ctx context.Context) error
}

// Middleware wraps a http.Handler
type Middleware func(http.Handler) http.Handler

// Server wraps the Service with additional http and app lifecycle handling
type Server struct {
	http.Server
	App             Service
	Address         string
	Port            int
	CertFile        string
	KeyFile         string
	PathPrefix      string
	SentryDsn       string
	StartupTimeout  time.Duration
	ShutdownTimeout time.Duration
	Logger          *zap.Logger
	Debug           bool
	Metrics         Metrics
}

// New creates Server from Service
func New(app Service, options ...Option) *Server {
	s := &Server{}
	s.App = app
	s.Port = 8000
	s.MaxHeaderBytes = 1 << 20
	s.StartupTimeout = time.Second * 10
	s.ShutdownTimeout = time.Second * 10
	s.Logger = zap.NewNop()

	s.Handler = handleOK(http.MethodGet, "/favicon.ico")(s.App)
	s.Handler = handleHealthcheck(s.Handler)

	for _, option := range options {
		option(s)
	}
	s.ErrorLog = newServerErrorLog(s.Logger)

	if s.PathPrefix != "" {
		s.Handler = http.StripPrefix(s.PathPrefix, s.Handler)
	}
	s.Handler = s.panicHandler(s.Handler)
	if s.SentryDsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: s.SentryDsn}); err != nil {
			s.Logger.Error("sentry init", zap.Error(err))
		} else {
			s.Handler = sentryhttp.New(sentryhttp.Options{Repanic: true}).Handle(s.Handler)
		}
	}
	if s.Addr == "" {
		s.Addr = s.Address + ":" + strconv.Itoa(s.Port)
	}
	return s
}

// Run server that terminates on SIGINT, SIGTERM signals
func (s *Server) Run() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	s.RunContext(ctx)
}

// RunContext run server with context
func (s *Server) RunContext(ctx context.Context) {
	s.startup(ctx)

	go func() {
		if err := s.listenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Fatal("listen", zap.Error(err))
		}
	}()
	s.Logger.Info("listen", zap.String("addr", s.Addr))

	<-ctx.Done()

	s.shutdown(context.Background())
}

func (s *Server) startup(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.StartupTimeout)
	defer cancel()
	if err := s.App.Startup(ctx); err != nil {
		s.Logger.Fatal("app-startup", zap.Error(err))
	}
	if !isNil(s.Metrics) {
		if err := s.Metrics.Startup(ctx); err != nil {
			s.Logger.Fatal("metrics-startup", zap.Error(err))
		}
	}
}

func (s *Server) shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.ShutdownTimeout)
	defer cancel()
	s.Logger.Info("shutdown")
	if err := s.Shutdown(ctx); err != nil {
		s.Logger.Error("server-shutdown", zap.Error(err))
	}
	if !isNil(s.Metrics) {
		if err := s.Metrics.Shutdown(ctx); err != nil {
			s.Logger.Error("metrics-shutdown", zap.Error(err))
		}
	}
	if err := s.App.Shutdown(ctx); err != nil {
		s.Logger.Error("app-shutdown", zap.Error(err))
	}
	if s.SentryDsn != "" {
		sentry.Flush(time.Second * 2)
	}
}

func (s *Server) listenAndServe() error {
	if s.CertFile != "" && s.KeyFile != "" {
		return s.ListenAndServeTLS(s.CertFile, s.KeyFile)
	}
	return s.ListenAndServe()
}

type serverErrorLogWriter struct {
	Logger *zap.Logger
}

// Write routes net/http server errors to zap, TLS handshake noise at debug
func (w *serverErrorLogWriter) Write(p []byte) (int, error) {
	m := strings.TrimSpace(string(p))
	if strings.HasPrefix(m, "http: TLS handshake error") {
		w.Logger.Debug("server", zap.String("log", m))
	} else {
		w.Logger.Warn("server", zap.String("log", m))
	}
	return len(p), nil
}

func newServerErrorLog(logger *zap.Logger) *log.Logger {
	return log.New(&serverErrorLogWriter{logger}, "", 0)
}

func isNil(c interface{}) bool {
	if c == nil {
		return true
	}
	v := reflect.ValueOf(c)
	return v.Kind() == reflect.Ptr && v.IsNil()
}
