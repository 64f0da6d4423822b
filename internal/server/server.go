// Package server exposes the strategy, portfolio and forecast engines as a JSON
// API for dashboards.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/rxtech-lab/argo-analytics/internal/config"
	"github.com/rxtech-lab/argo-analytics/internal/logger"
	"github.com/rxtech-lab/argo-analytics/internal/types"
	"github.com/rxtech-lab/argo-analytics/pkg/errors"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata"
	"github.com/rxtech-lab/argo-analytics/pkg/marketdata/provider"
)

// Fetcher is the part of marketdata.Client the handlers need.
type Fetcher interface {
	FetchSeries(ctx context.Context, params marketdata.FetchParams) (types.PriceSeries, error)
	FetchMany(ctx context.Context, symbols []string, interval provider.Timespan, start, end time.Time) (map[string]types.PriceSeries, error)
	Quote(ctx context.Context, symbol string) (types.Quote, error)
}

// Server serves the dashboard API.
type Server struct {
	fetcher Fetcher
	cfg     config.Config
	logger  *logger.Logger
	router  *mux.Router
	now     func() time.Time

	httpServer *http.Server
	listener   net.Listener
}

// New creates a Server. Handlers read prices through fetcher, which should be
// backed by the cached provider.
func New(fetcher Fetcher, cfg config.Config, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNopLogger()
	}

	s := &Server{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  log.Component("server"),
		router:  mux.NewRouter(),
		now:     time.Now,
	}

	s.router.Use(s.logRequests)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/api/strategy/{symbol}", s.handleStrategy).Methods(http.MethodGet)
	s.router.HandleFunc("/api/portfolio", s.handlePortfolio).Methods(http.MethodGet)
	s.router.HandleFunc("/api/forecast/{symbol}", s.handleForecast).Methods(http.MethodGet)
	s.router.HandleFunc("/api/quote/{symbol}", s.handleQuote).Methods(http.MethodGet)

	return s
}

// Handler returns the router, e.g. for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on address (":0" when empty) and serves in the background.
func (s *Server) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to listen on %s", address)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server stopped", zap.Error(err))
		}
	}()

	s.logger.Info("server listening", zap.String("address", s.Address()))

	return nil
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Address returns the address the server is listening on.
func (s *Server) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
