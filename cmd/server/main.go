package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"kinship/internal/family/discovery"
	"kinship/internal/family/handler"
	"kinship/internal/family/matching"
	familymetrics "kinship/internal/family/metrics"
	"kinship/internal/family/store"
	jwttoken "kinship/internal/jwt_token"
	"kinship/internal/platform/config"
	"kinship/internal/platform/httpserver"
	"kinship/internal/platform/logger"
	"kinship/internal/platform/metrics"
	"kinship/internal/platform/middleware"
	"kinship/internal/platform/redis"
	"kinship/pkg/platform/httputil"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal/family packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer backend.Close()
	if err := backend.EnsureSchema(ctx); err != nil {
		return err
	}

	var persons store.Store = backend
	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		persons = store.NewCachedPersons(backend, redisClient, cfg.Redis.PersonTTL, store.WithCacheLogger(log))
		log.Info("person cache enabled", "ttl", cfg.Redis.PersonTTL)
	}

	httpMetrics := metrics.New()
	familyMetrics := familymetrics.New()

	discoverySvc := discovery.New(persons,
		discovery.WithLogger(log),
		discovery.WithMetrics(familyMetrics),
	)
	matchingSvc := matching.New(persons,
		matching.WithLogger(log),
		matching.WithMetrics(familyMetrics),
	)

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)
	throttle := middleware.NewThrottle(cfg.Match.RatePerSecond, cfg.Match.Burst, "/family/matches", log, httpMetrics)
	familyHandler := handler.New(discoverySvc, matchingSvc, log, handler.WithMatchThrottle(throttle.Middleware))

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.LatencyMiddleware(httpMetrics))
	r.Use(middleware.ContentTypeJSON)

	r.Get("/healthz", healthz(redisClient))
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(jwttoken.NewJWTServiceAdapter(jwtService), log))
		familyHandler.Register(r)
	})

	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	apiServer := httpserver.New(cfg.Addr, r, cfg.RequestTimeout)
	metricsServer := httpserver.New(cfg.MetricsAddr, metricsRouter, 0)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting kinship api", "addr", cfg.Addr, "store", cfg.Store.Driver)
		return serve(apiServer)
	})
	g.Go(func() error {
		log.Info("starting metrics listener", "addr", cfg.MetricsAddr)
		return serve(metricsServer)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return errors.Join(
			apiServer.Shutdown(shutdownCtx),
			metricsServer.Shutdown(shutdownCtx),
		)
	})
	return g.Wait()
}

func serve(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// healthz reports liveness plus the cache connection when one is configured.
func healthz(cache *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := map[string]string{"status": "ok"}
		if cache != nil {
			if err := cache.Health(r.Context()); err != nil {
				status["cache"] = "unavailable"
			} else {
				status["cache"] = "ok"
			}
		}
		httputil.WriteJSON(w, http.StatusOK, status)
	}
}
