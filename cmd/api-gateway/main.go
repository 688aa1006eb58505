package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/ecoquest/gamification-api/api/swagger"
	"github.com/ecoquest/gamification-api/internal/handler"
	"github.com/ecoquest/gamification-api/internal/middleware"
	"github.com/ecoquest/gamification-api/internal/models"
	"github.com/ecoquest/gamification-api/internal/repository"
	"github.com/ecoquest/gamification-api/internal/service"
	"github.com/ecoquest/gamification-api/pkg/cache"
	"github.com/ecoquest/gamification-api/pkg/config"
	"github.com/ecoquest/gamification-api/pkg/database"
	"github.com/ecoquest/gamification-api/pkg/export"
	"github.com/ecoquest/gamification-api/pkg/logger"
	corsmiddleware "github.com/ecoquest/gamification-api/pkg/middleware/cors"
	reqidmiddleware "github.com/ecoquest/gamification-api/pkg/middleware/requestid"
)

// @title EcoQuest Gamification API
// @version 1.0.0
// @description Eco-points, badges and leaderboards for the EcoQuest platform
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	if redisClient != nil {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Leaderboard.CacheTTL, logr, true)
	} else {
		cacheService = service.NewCacheService(nil, metricsService, cfg.Leaderboard.CacheTTL, logr, false)
	}

	userRepo := repository.NewUserRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	gamificationService := service.NewGamificationService(userRepo, badgeRepo, cacheService, metricsService, validate, logr, service.GamificationServiceConfig{
		MaxPointsPerAward: cfg.Gamification.MaxPointsPerAward,
		NextBadgesLimit:   cfg.Gamification.NextBadgesLimit,
	})
	leaderboardService := service.NewLeaderboardService(userRepo, cacheService, logr, service.LeaderboardServiceConfig{
		CacheTTL:     cfg.Leaderboard.CacheTTL,
		DefaultLimit: cfg.Leaderboard.DefaultLimit,
		MaxLimit:     cfg.Leaderboard.MaxLimit,
	})
	catalogService := service.NewBadgeCatalogService(badgeRepo, validate, logr)

	authHandler := handler.NewAuthHandler(authService)
	gamificationHandler := handler.NewGamificationHandler(gamificationService)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService, export.NewCSVExporter(), export.NewPDFExporter())
	badgeHandler := handler.NewBadgeHandler(catalogService)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	badges := api.Group("/badges")
	{
		badges.GET("", badgeHandler.List)
		badges.GET("/:id", badgeHandler.Get)
		badges.POST("", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin), badgeHandler.Create)
		badges.PUT("/:id", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin), badgeHandler.Update)
		badges.DELETE("/:id", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin), badgeHandler.Deactivate)
	}

	gamification := api.Group("/gamification")
	{
		gamification.POST("/points", middleware.JWT(authService), middleware.RequireRoles(models.RoleTeacher, models.RoleNGO, models.RoleAdmin), gamificationHandler.AwardPoints)
		gamification.POST("/badges/unlock", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin), gamificationHandler.UnlockBadge)
		gamification.GET("/stats", middleware.JWT(authService), gamificationHandler.Stats)
		gamification.GET("/badges/available", middleware.JWT(authService), gamificationHandler.AvailableBadges)
	}

	leaderboard := api.Group("/leaderboard")
	{
		leaderboard.GET("", middleware.OptionalJWT(authService), leaderboardHandler.List)
		leaderboard.GET("/school", leaderboardHandler.BySchool)
		leaderboard.GET("/role/:role", leaderboardHandler.ByRole)
		leaderboard.GET("/rank", middleware.JWT(authService), leaderboardHandler.Rank)
		leaderboard.GET("/export", middleware.JWT(authService), middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin), leaderboardHandler.Export)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
