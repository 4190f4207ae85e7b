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

	"github.com/AladdinMagdy/whispr-sub000/safety/cachestore"
	"github.com/AladdinMagdy/whispr-sub000/safety/countstore"
	"github.com/AladdinMagdy/whispr-sub000/safety/docstore"
	"github.com/AladdinMagdy/whispr-sub000/safety/flagstore"
	"github.com/AladdinMagdy/whispr-sub000/safety/keyword"
	"github.com/AladdinMagdy/whispr-sub000/safety/moderation"
	"github.com/AladdinMagdy/whispr-sub000/safety/report"
	"github.com/AladdinMagdy/whispr-sub000/safety/reputation"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	slogecho "github.com/samber/slog-echo"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

type Server struct {
	logger        *slog.Logger
	echo          *echo.Echo
	httpd         *http.Server
	scorer        *moderation.Scorer
	reputation    *reputation.Engine
	reports       *report.Engine
	store         docstore.Store
	reportLimiter *rate.Limiter
}

type Config struct {
	Logger          *slog.Logger
	RedisURL        string
	Bind            string
	ReportRateLimit float64
}

func NewServer(db *gorm.DB, config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	var counters countstore.CountStore
	var cache cachestore.CacheStore
	var flags flagstore.FlagStore
	if config.RedisURL != "" {
		// check redis connection before wiring the stores to it
		opt, err := redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis URL: %v", err)
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.TODO()).Result(); err != nil {
			return nil, fmt.Errorf("redis ping failed: %v", err)
		}

		cnt, err := countstore.NewRedisCountStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis countstore: %v", err)
		}
		counters = cnt

		csh, err := cachestore.NewRedisCacheStore(config.RedisURL, 30*time.Minute)
		if err != nil {
			return nil, fmt.Errorf("initializing redis cachestore: %v", err)
		}
		cache = csh

		flg, err := flagstore.NewRedisFlagStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis flagstore: %v", err)
		}
		flags = flg
	} else {
		counters = countstore.NewMemCountStore()
		cache = cachestore.NewMemCacheStore(5_000, 30*time.Minute)
		flags = flagstore.NewMemFlagStore()
	}

	store, err := docstore.NewGormStore(db)
	if err != nil {
		return nil, err
	}

	scorer := moderation.NewScorer(keyword.DefaultCatalog(), logger)
	repEngine := reputation.NewEngine(store, cache, logger)
	reportEngine := report.NewEngine(store, counters, flags, repEngine, nil, logger)

	limit := config.ReportRateLimit
	if limit <= 0 {
		limit = 20
	}

	srv := &Server{
		logger:        logger,
		scorer:        scorer,
		reputation:    repEngine,
		reports:       reportEngine,
		store:         store,
		reportLimiter: rate.NewLimiter(rate.Limit(limit), int(limit)),
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(logger))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))
	e.HTTPErrorHandler = srv.errorHandler
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         31536000, // 365 days
	}))

	e.GET("/_health", srv.HandleHealthCheck)
	e.POST("/api/moderation/score", srv.HandleScoreText)
	e.POST("/api/reports", srv.HandleSubmitReport)
	e.POST("/api/reports/:id/resolve", srv.HandleResolveReport)
	e.POST("/api/reports/:id/dismiss", srv.HandleDismissReport)
	e.GET("/api/reports/stats", srv.HandleReportStats)
	e.GET("/api/users/:id/reputation", srv.HandleGetReputation)
	e.POST("/api/admin/users/:id/score", srv.HandleAdminSetScore)
	e.GET("/api/admin/stats", srv.HandleAdminStats)

	var (
		httpTimeout        = 1 * time.Minute
		httpMaxHeaderBytes = 1 * (1024 * 1024)
	)
	srv.echo = e
	srv.httpd = &http.Server{
		Handler:        srv,
		Addr:           config.Bind,
		WriteTimeout:   httpTimeout,
		ReadTimeout:    httpTimeout,
		MaxHeaderBytes: httpMaxHeaderBytes,
	}

	return srv, nil
}

func (srv *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	srv.echo.ServeHTTP(rw, req)
}

func (srv *Server) RunAPI() error {
	srv.logger.Info("starting server", "bind", srv.httpd.Addr)
	go func() {
		if err := srv.httpd.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				srv.logger.Error("HTTP server shutting down unexpectedly", "err", err)
			}
		}
	}()

	quit := make(chan struct{})
	exitSignals := make(chan os.Signal, 1)
	signal.Notify(exitSignals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-exitSignals
		srv.logger.Info("received OS exit signal", "signal", sig)
		if err := srv.Shutdown(); err != nil {
			srv.logger.Error("HTTP server shutdown error", "err", err)
		}
		close(quit)
	}()
	<-quit
	srv.logger.Info("graceful shutdown complete")
	return nil
}

func (srv *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

func (srv *Server) Shutdown() error {
	srv.logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.httpd.Shutdown(ctx)
}
