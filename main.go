package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	apirest "github.com/moonveil-games/friendserver/api/rest"
	"github.com/moonveil-games/friendserver/account"
	"github.com/moonveil-games/friendserver/audit"
	"github.com/moonveil-games/friendserver/block"
	"github.com/moonveil-games/friendserver/cache"
	"github.com/moonveil-games/friendserver/config"
	dbadapter "github.com/moonveil-games/friendserver/db"
	"github.com/moonveil-games/friendserver/friend"
	"github.com/moonveil-games/friendserver/metrics"
	mw "github.com/moonveil-games/friendserver/middleware"
	"github.com/moonveil-games/friendserver/model"
	"github.com/moonveil-games/friendserver/scheduler"
)

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	// Warn loudly if admin endpoints will be disabled.
	if cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized")

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop(context.Background())

	// ---- Cache ----
	c, err := cache.NewCache(cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	logger.Info("Cache initialized")

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	if cfg.Audit.Retention > 0 {
		sched.AddTicker("audit_purge", time.Hour, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			n, err := auditSvc.Purge(ctx, cfg.Audit.Retention)
			if err != nil {
				logger.Warn("audit purge failed", zap.Error(err))
				return
			}
			if n > 0 {
				logger.Info("audit purge done", zap.Int64("rows", n))
			}
		})
	}

	// ---- Services ----
	stats := metrics.NewRegistry()
	accountSvc := account.NewService(db, logger)
	blockSvc := block.NewService(db, logger)
	listCache := friend.NewListCache(c, cfg.Friends.ListCacheTTL, logger)
	friendSvc := friend.NewService(db, blockSvc, listCache, logger)

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	// Health check
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	authH := apirest.NewAuthHandler(accountSvc, c, cfg.Security, stats)
	accountH := apirest.NewAccountHandler(accountSvc, stats)
	friendH := apirest.NewFriendHandler(friendSvc, auditSvc, stats)
	blockH := apirest.NewBlockHandler(blockSvc, auditSvc)
	adminH := apirest.NewAdminHandler(accountSvc, auditSvc, stats, sched, logger)

	api := r.Group("/api")
	{
		authG := api.Group("/auth")
		authG.POST("/register", authH.Register)
		authG.POST("/login", authH.Login)
		authG.POST("/logout", mw.Auth(cfg.Security, c), authH.Logout)
		authG.POST("/refresh", mw.Auth(cfg.Security, c), authH.Refresh)

		friendsG := api.Group("/friends")
		friendsG.Use(mw.Auth(cfg.Security, c))
		friendsG.GET("/:id", friendH.ListFriends)
		friendsG.DELETE("/:id", friendH.RemoveFriend)
		friendsG.POST("/status", friendH.UpdateStatus)
		friendsG.POST("/status/batch", friendH.BatchStatus)

		requestsG := api.Group("/friend-requests")
		requestsG.Use(mw.Auth(cfg.Security, c))
		requestsG.POST("", friendH.SendRequest)
		requestsG.POST("/:id/accept", friendH.AcceptRequest)
		requestsG.POST("/:id/reject", friendH.RejectRequest)
		requestsG.GET("/:id/pending", friendH.ListPending)

		accountsG := api.Group("/accounts")
		accountsG.POST("", accountH.Create)
		accountsG.GET("/:id", mw.Auth(cfg.Security, c), accountH.Get)
		accountsG.PUT("/:id", mw.Auth(cfg.Security, c), accountH.Update)

		searchG := api.Group("/search")
		searchG.Use(mw.Auth(cfg.Security, c))
		searchG.GET("/accounts", accountH.SearchByUsername)
		searchG.GET("/accounts/:id", accountH.SearchByID)

		blocksG := api.Group("/blocks")
		blocksG.Use(mw.Auth(cfg.Security, c))
		blocksG.POST("", blockH.Create)
		blocksG.DELETE("/:id", blockH.Remove)
		blocksG.GET("/:id", blockH.List)

		adminG := api.Group("/admin")
		adminG.Use(mw.IPWhitelist(cfg.Security.AdminIPs))
		adminG.Use(apirest.AdminAuth(cfg.Server.AdminKey))
		adminG.GET("/metrics", adminH.Metrics)
		adminG.GET("/audit", adminH.AuditTail)
		adminG.POST("/accounts/:id/ban", adminH.BanAccount)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
