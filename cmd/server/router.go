package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"donorprofile/internal/gate/handler"
	"donorprofile/internal/platform/config"
	"donorprofile/internal/platform/metrics"
	"donorprofile/internal/platform/middleware"
	"donorprofile/internal/platform/redis"
	"donorprofile/internal/web"
	"donorprofile/pkg/platform/httputil"
	"donorprofile/pkg/platform/middleware/metadata"
	"donorprofile/pkg/platform/middleware/requesttime"
	"donorprofile/pkg/platform/middleware/session"
)

const requestTimeout = 30 * time.Second

type routerDeps struct {
	handler *handler.Handler
	logger  *slog.Logger
	metrics *metrics.Metrics
	redis   *redis.Client
	proxies metadata.TrustedProxies
	cfg     config.Server
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.logger, d.metrics))
	r.Use(middleware.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata(d.proxies))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.Logger(d.logger))
	r.Use(middleware.LatencyMiddleware(d.metrics))

	r.Get("/healthz", healthHandler(d.redis))
	r.Handle("/metrics", promhttp.Handler())
	r.Handle("/static/*", web.Static())

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Use(session.Middleware(session.Config{Secure: d.cfg.SessionCookieSecure}))
		d.handler.Register(r)

		r.Route("/api", func(r chi.Router) {
			if len(d.cfg.CORSAllowedOrigins) > 0 {
				r.Use(cors.Handler(cors.Options{
					AllowedOrigins:   d.cfg.CORSAllowedOrigins,
					AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
					AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
					ExposedHeaders:   []string{middleware.RequestIDHeader, "Retry-After"},
					AllowCredentials: true,
					MaxAge:           300,
				}))
			}
			d.handler.RegisterAPI(r)
		})
	})
	return r
}

func healthHandler(rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rdb != nil {
			if err := rdb.Health(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "redis": "down"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
