package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/UnknownOlympus/compass/internal/geocoding"
	"github.com/UnknownOlympus/compass/internal/metrics"
	"github.com/UnknownOlympus/compass/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	readTimeout     = 5 * time.Second
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 10 * time.Second

	statusBody       = "ok."
	notFoundBody     = "Result not found"
	internalErrBody  = "An internal error occurred."
	healthyBody      = "OK"
	dbUnhealthyBody  = "DB ping failed"
	addressQueryName = "address"
)

// Resolver answers geocode requests; *geocoding.Dispatcher implements it.
type Resolver interface {
	Resolve(ctx context.Context, address string) (*models.Coordinates, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server exposes the geocoding API together with the health and metrics endpoints.
type Server struct {
	resolver Resolver
	gatherer prometheus.Gatherer
	metrics  *metrics.Metrics
	pinger   Pinger
	log      *slog.Logger
}

// Option customizes a Server.
type Option func(*Server)

// WithPinger makes /healthz fail with 503 when the pinger does.
func WithPinger(p Pinger) Option {
	return func(s *Server) { s.pinger = p }
}

// New creates a server. resolver may be nil when only the monitoring endpoints are served.
func New(resolver Resolver, gatherer prometheus.Gatherer, m *metrics.Metrics, log *slog.Logger, opts ...Option) *Server {
	s := &Server{
		resolver: resolver,
		gatherer: gatherer,
		metrics:  m,
		log:      log,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Router builds the gin engine serving every endpoint.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	if s.resolver != nil {
		router.GET("/status", s.status)
		router.GET("/location/geocode", s.geocode)
	}

	return router
}

// Run listens on port until ctx is cancelled, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Router(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Starting HTTP server", "port", port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	s.log.InfoContext(ctx, "Shutting down HTTP server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}

	return nil
}

func (s *Server) status(c *gin.Context) {
	c.String(http.StatusOK, statusBody)
}

func (s *Server) healthz(c *gin.Context) {
	ctx := c.Request.Context()
	s.log.DebugContext(ctx, "Performing health checks...")

	status, body := http.StatusOK, healthyBody
	if s.pinger != nil {
		if err := s.pinger.Ping(ctx); err != nil {
			s.log.ErrorContext(ctx, "Health check failed", "error", err)
			status, body = http.StatusServiceUnavailable, dbUnhealthyBody
		}
	}

	c.String(status, body)
	s.log.DebugContext(ctx, "Health checks completed", "status", status)
}

func (s *Server) geocode(c *gin.Context) {
	ctx := c.Request.Context()
	address := c.Query(addressQueryName)

	coords, err := s.resolver.Resolve(ctx, address)

	var geoErr *geocoding.Error
	switch {
	case errors.As(err, &geoErr):
		s.log.InfoContext(ctx, "Geocode request rejected", "address", address, "error", err)
		s.reply(c, geoErr.Status, err.Error())
	case err != nil:
		s.log.ErrorContext(ctx, "Geocode request failed", "address", address, "error", err)
		s.reply(c, http.StatusInternalServerError, internalErrBody)
	case coords == nil:
		s.reply(c, http.StatusNotFound, notFoundBody)
	default:
		s.metrics.HTTPRequests.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
		c.JSON(http.StatusOK, coords)
	}
}

func (s *Server) reply(c *gin.Context, status int, body string) {
	s.metrics.HTTPRequests.WithLabelValues(strconv.Itoa(status)).Inc()
	c.String(status, body)
}
