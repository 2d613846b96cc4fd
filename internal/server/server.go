// Package server exposes search views over HTTP and health over gRPC
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/nainya/simplesearch/internal/listing"
	"github.com/nainya/simplesearch/internal/logger"
	"github.com/nainya/simplesearch/internal/metrics"
)

// Options configures a Server
type Options struct {
	Views   []*listing.View
	Logger  *logger.Logger
	Metrics *metrics.Metrics
	// Gatherer backs /metrics; defaults to prometheus.DefaultGatherer
	Gatherer  prometheus.Gatherer
	RateLimit int // requests per minute per IP, 0 disables
	Burst     int
}

// Server serves listings and explanations over HTTP
type Server struct {
	views   map[string]*listing.View
	names   []string
	log     *logger.Logger
	metrics *metrics.Metrics
	ready   atomic.Bool

	router *gin.Engine
	http   *http.Server
	grpc   *grpc.Server
	health *health.Server
}

// New creates a server. View names must be unique.
func New(opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	if opts.Metrics == nil {
		return nil, errors.New("server: metrics are required")
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		views:   make(map[string]*listing.View, len(opts.Views)),
		log:     opts.Logger,
		metrics: opts.Metrics,
	}
	for _, v := range opts.Views {
		if _, dup := s.views[v.Name()]; dup {
			return nil, fmt.Errorf("server: duplicate view %q", v.Name())
		}
		s.views[v.Name()] = v
		s.names = append(s.names, v.Name())
	}
	sort.Strings(s.names)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(Observe(s.metrics, s.log))
	if opts.RateLimit > 0 {
		router.Use(NewRateLimiter(opts.RateLimit, opts.Burst).Middleware())
	}

	router.GET("/health", s.handleHealth)
	router.GET("/ready", s.handleReady)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))

	api := router.Group("/api/v1")
	{
		api.GET("/views", s.handleViews)
		api.GET("/views/:name", s.handleList)
		api.GET("/explain/:name", s.handleExplain)
	}
	s.router = router

	s.http = &http.Server{
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.grpc, s.health = newGRPCServer(s.metrics, s.log, s.names)
	return s, nil
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler { return s.router }

// Views returns the sorted view names
func (s *Server) Views() []string { return s.names }

// MarkReady flips /ready and the gRPC health services to serving
func (s *Server) MarkReady() {
	s.ready.Store(true)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	for _, name := range s.names {
		s.health.SetServingStatus(viewService(name), healthpb.HealthCheckResponse_SERVING)
	}
}

// ServeHTTP accepts HTTP connections on lis until Shutdown
func (s *Server) ServeHTTP(lis net.Listener) error {
	if err := s.http.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// ServeGRPC accepts gRPC connections on lis until Shutdown
func (s *Server) ServeGRPC(lis net.Listener) error {
	if err := s.grpc.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("grpc server failed: %w", err)
	}
	return nil
}

// Shutdown drains both servers
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.LogServerShutdown()
	s.ready.Store(false)
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(done)
	}()

	err := s.http.Shutdown(ctx)
	select {
	case <-done:
	case <-ctx.Done():
		s.grpc.Stop()
	}
	return err
}
