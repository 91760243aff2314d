package apiserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/envtest/energy-planner/internal/config"
	handlers "github.com/envtest/energy-planner/internal/handlers/v1alpha1"
	"github.com/envtest/energy-planner/internal/service"
	"github.com/envtest/energy-planner/pkg/metrics"
	"github.com/envtest/energy-planner/pkg/middleware"
	"go.uber.org/zap"
)

const (
	gracefulShutdownTimeout = 5 * time.Second

	calculateEnergyPath     = "/api/calculate-energy/"
	calculateTestEnergyPath = "/api/calculate-test-energy/"
	healthPath              = "/health"
)

var (
	metricMiddleware     *metrics.Middleware
	metricMiddlewareOnce sync.Once
)

type Server struct {
	cfg       *config.Config
	energySrv *service.EnergyService
	listener  net.Listener
}

// New returns a new instance of an energy-planner server.
func New(
	cfg *config.Config,
	energySrv *service.EnergyService,
	listener net.Listener,
) *Server {
	return &Server{
		cfg:       cfg,
		energySrv: energySrv,
		listener:  listener,
	}
}

// NewRouter wires the middleware stack and the lookup routes. The request metrics
// collectors are registered on the default registry once per process.
func NewRouter(cfg *config.Config, energySrv *service.EnergyService) http.Handler {
	metricMiddlewareOnce.Do(func() {
		metricMiddleware = metrics.NewMiddleware("api_server")
		metricMiddleware.MustRegisterDefault()
	})

	router := chi.NewRouter()
	router.Use(
		metricMiddleware.Handler,
		cors.Handler(cors.Options{
			AllowedOrigins: cfg.Service.CorsOrigins,
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"*"},
			MaxAge:         300,
		}),
		middleware.RequestID,
		middleware.Logger(),
		chiMiddleware.Recoverer,
		maxBytes(cfg.Service.MaxRequestBytes),
	)

	h := handlers.NewServiceHandler(energySrv)
	router.MethodNotAllowed(handlers.MethodNotAllowed)
	router.Get(healthPath, h.Health)
	router.Post(calculateEnergyPath, h.CalculateEnergy)
	router.Post(calculateTestEnergyPath, h.CalculateTestEnergy)

	return router
}

func maxBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) Run(ctx context.Context) error {
	zap.S().Named("api_server").Info("Initializing API server")

	srv := http.Server{Addr: s.cfg.Service.Address, Handler: NewRouter(s.cfg, s.energySrv)}

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		<-ctx.Done()
		zap.S().Named("api_server").Infof("Shutdown signal received: %s", ctx.Err())
		ctxTimeout, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		_ = srv.Shutdown(ctxTimeout)
		zap.S().Named("api_server").Info("api server terminated")
	}()

	zap.S().Named("api_server").Infof("Listening on %s...", s.listener.Addr().String())
	if err := srv.Serve(s.listener); err != nil && !errors.Is(err, net.ErrClosed) && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	// Serve returns as soon as Shutdown starts; in-flight requests are drained after.
	<-shutdownDone
	return nil
}
