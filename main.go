package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/linglong/blog-admin/handlers"
	"github.com/linglong/blog-admin/internal/assets"
	"github.com/linglong/blog-admin/internal/build"
	"github.com/linglong/blog-admin/internal/config"
	"github.com/linglong/blog-admin/internal/database"
	"github.com/linglong/blog-admin/internal/posts"
	"github.com/linglong/blog-admin/internal/ratelimit"
	"github.com/linglong/blog-admin/internal/sessions"
	"github.com/linglong/blog-admin/internal/users"
	"github.com/linglong/blog-admin/pkg/logger"
	"github.com/linglong/blog-admin/pkg/metrics"
	"github.com/linglong/blog-admin/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: env=%s mongo=%v redis=%v content=%s",
		cfg.Server.Environment, cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Content.Dir)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(gin.Logger(), gin.Recovery())

	if cfg.RateLimit.Enabled {
		r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	}

	// Redis is optional; without it logout keeps tokens valid until expiry
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			sessions.SetBlacklistClient(redisClient)
			logger.Infof("connected to Redis for token blacklist: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	ctx := context.Background()
	var userSvc *users.Service

	// MongoDB-backed admin user store, with retry/backoff to tolerate
	// container startup races
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			col := client.Database(cfg.MongoDB.Database).Collection("users")
			userSvc = users.NewService(users.NewMongoRepository(col))
		}
	}

	if userSvc != nil && cfg.Admin.Password != "" {
		if err := userSvc.EnsureAdmin(ctx, cfg.Admin.Username, cfg.Admin.Password); err != nil {
			logger.Errorf("failed to ensure admin account: %v", err)
		}
	}

	store := posts.NewStore(posts.NewFSStorage(cfg.Content.Dir), build.NewTrigger(cfg))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// ready only when login can actually succeed
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"users":   userSvc != nil,
			"redis":   cfg.Redis.Host == "" || redisClient != nil,
			"content": dirExists(cfg.Content.Dir),
		}
		ready := deps["users"] && deps["redis"]
		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	if userSvc != nil {
		gate := ratelimit.NewGate(cfg.Login.MaxAttempts, cfg.Login.LockoutDuration)
		handlers.NewAuthHandler(cfg, userSvc, gate).Register(r)
	} else {
		logger.Warnf("auth endpoints not registered because the user store is unavailable")
	}
	handlers.NewPostsHandler(cfg, store).Register(r)

	// object storage for covers and images, optional
	if mcfg := assets.LoadMinIOConfig(); mcfg.Endpoint != "" {
		if assetStore, err := assets.NewStore(mcfg); err != nil {
			logger.Warnf("object storage unavailable, asset uploads disabled: %v", err)
		} else {
			handlers.NewAssetsHandler(cfg, assetStore).Register(r)
			logger.Infof("asset uploads enabled, bucket %q", mcfg.Bucket)
		}
	}

	handlers.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting blog admin service on %s", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}

// corsMiddleware reflects configured origins; with none configured it
// allows any origin, which suits local development.
func corsMiddleware(allowed []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allow := "*"
		if len(allowed) > 0 {
			allow = ""
			for _, o := range allowed {
				if strings.EqualFold(o, origin) {
					allow = origin
					break
				}
			}
		}
		if allow != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allow)
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
			c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, Retry-After")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
