package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/coffeetron832/cautious-couscous/handlers"
	"github.com/coffeetron832/cautious-couscous/internal/archive"
	"github.com/coffeetron832/cautious-couscous/internal/collab"
	"github.com/coffeetron832/cautious-couscous/internal/config"
	"github.com/coffeetron832/cautious-couscous/internal/document"
	"github.com/coffeetron832/cautious-couscous/internal/names"
	"github.com/coffeetron832/cautious-couscous/pkg/logger"
	"github.com/coffeetron832/cautious-couscous/pkg/metrics"
	"github.com/coffeetron832/cautious-couscous/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: redis=%v rate_limit=%v", cfg.Redis.Host != "", cfg.RateLimit.Enabled)

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Disposition")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	// Connect to Redis early so the rate limiter and export cache can use it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password})
		if err := redisClient.Ping(context.Background()).Err(); err == nil {
			logger.Infof("Connected to Redis for optional features: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		} else {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		}
	}

	// Optional global rate limiter (per-IP; sessions are anonymous)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// core collaboration wiring: in-memory store + alias generator + room manager
	store := document.NewStore()
	gen := names.New()
	mgr := collab.NewManager(store, gen, cfg.Collab.SendQueueSize)

	// optional Redis-backed cache for rendered exports
	var exportCache *archive.Cache
	if redisClient != nil && cfg.Export.CacheTTL > 0 {
		exportCache = archive.NewCache(redisClient, "export:", cfg.Export.CacheTTL)
		logger.Infof("export cache enabled (ttl=%s)", cfg.Export.CacheTTL)
	}

	// readiness endpoint — return 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		// document storage is in-memory; the store existing is enough
		deps["storage"] = store != nil

		// Redis readiness only matters when a feature actually depends on it
		if cfg.Redis.Host != "" && (cfg.RateLimit.UseRedis || cfg.Export.CacheTTL > 0) {
			deps["redis"] = redisClient != nil
			if !deps["redis"] {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		if !ready {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime)), "documents": store.Len()})
	})

	// Register minimal Swagger UI + JSON for API documentation
	handlers.RegisterSwagger(r)

	// document lifecycle + transcript export/import
	handlers.RegisterDocumentRoutes(r, store, exportCache)

	// live collaboration: SSE stream + session edit endpoint
	handlers.RegisterRealtimeRoutes(r, mgr)

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting collab service on %s", addr)
	// run server in goroutine and keep process alive — defensive: prevents
	// the container from exiting silently if r.Run ever returns.
	go func() {
		if err := r.Run(addr); err != nil {
			logger.Fatalf("server failed: %v", err)
		}
	}()
	select {}
}
