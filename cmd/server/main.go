package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"donorprofile/internal/captcha"
	"donorprofile/internal/gate"
	"donorprofile/internal/gate/handler"
	gatemetrics "donorprofile/internal/gate/metrics"
	"donorprofile/internal/platform/config"
	"donorprofile/internal/platform/httpserver"
	"donorprofile/internal/platform/logger"
	"donorprofile/internal/platform/metrics"
	"donorprofile/internal/platform/redis"
	"donorprofile/internal/profile/fetcher"
	profilemetrics "donorprofile/internal/profile/metrics"
	ratelimit "donorprofile/internal/ratelimit/middleware"
	"donorprofile/internal/ratelimit/store/bucket"
	"donorprofile/internal/verification/cache"
	"donorprofile/internal/verification/store"
	"donorprofile/internal/web"
	"donorprofile/pkg/platform/circuit"
	"donorprofile/pkg/platform/middleware/metadata"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
	verifyWindow    = time.Minute
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := redis.New(ctx, redis.Config{URL: cfg.RedisURL})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
	}
	sessions := sessionStore(cfg, rdb, log)

	profiles := fetcher.New(cfg.APIBaseURL,
		fetcher.WithTimeout(cfg.UpstreamTimeout),
		fetcher.WithBreaker(circuit.New("profile-api")),
		fetcher.WithMetrics(profilemetrics.New()),
		fetcher.WithLogger(log),
	)
	captchaClient := captcha.New(cfg.RecaptchaSecretKey,
		captcha.WithHTTPClient(&http.Client{Timeout: cfg.UpstreamTimeout}),
		captcha.WithMetrics(captcha.NewMetrics()),
		captcha.WithLogger(log),
	)
	if cfg.RecaptchaSecretKey == "" {
		log.Warn("RECAPTCHA_SECRET_KEY is not set; every verification will fail the captcha check")
	}

	svc := gate.NewService(profiles, cache.New(sessions, cache.WithLogger(log)), captchaClient,
		gate.WithMetrics(gatemetrics.New()),
		gate.WithLogger(log),
	)

	pages, err := web.New(cfg.RecaptchaSiteKey, web.WithLogger(log))
	if err != nil {
		return err
	}

	proxies, err := metadata.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}

	httpMetrics := metrics.New()
	buckets := bucket.NewInMemoryBucketStore()
	limiter := ratelimit.New(buckets, cfg.VerifyRateLimit, verifyWindow, log, ratelimit.WithMetrics(httpMetrics))

	h := handler.New(svc, pages, log, handler.WithSubmitMiddleware(limiter.RateLimit("verify")))
	srv := httpserver.New(cfg.Addr, newRouter(routerDeps{
		handler: h,
		logger:  log,
		metrics: httpMetrics,
		redis:   rdb,
		proxies: proxies,
		cfg:     cfg,
	}))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		buckets.RunSweeper(gctx, sweepInterval)
		return nil
	})
	g.Go(func() error {
		log.Info("starting donor profile server",
			"addr", cfg.Addr,
			"api_base_url", cfg.APIBaseURL,
			"redis", rdb != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func sessionStore(cfg config.Server, rdb *redis.Client, log *slog.Logger) store.Store {
	if rdb != nil {
		log.Info("using redis session store")
		return store.NewRedisStore(rdb.Client, store.WithRedisTTL(cfg.SessionTTL))
	}
	log.Info("using in-memory session store")
	return store.NewInMemoryStore(cfg.SessionTTL)
}
