package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	chatHandler "fridge-chef/internal/api/handlers/chat"
	"fridge-chef/internal/api/handlers/health"
	recipeHandler "fridge-chef/internal/api/handlers/recipe"
	"fridge-chef/internal/api/middleware"
	"fridge-chef/internal/core/ai/cache"
	"fridge-chef/internal/core/ai/service"
	chatCore "fridge-chef/internal/core/chat"
	"fridge-chef/internal/core/corpus"
	recipeCore "fridge-chef/internal/core/recipe"
	"fridge-chef/internal/infrastructure/config"
	"fridge-chef/internal/pkg/common"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	// 超時設置
	timeoutDuration = 120 * time.Second
	// 請求體大小限制 (1MB，純文字 API 不需要更大)
	maxBodySize = 1 << 20
)

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, cacheManager *cache.CacheManager, redisClient *redis.Client) (*gin.Engine, error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// 創建路由引擎
	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(requestid.New()) // 自動生成請求 ID

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(maxBodySize))

	// 請求限流與去重
	router.Use(middleware.RateLimit(cfg))
	router.Use(middleware.Deduplication(cfg))

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", cfg.Cache.Enabled),
		zap.String("model", cfg.OpenRouter.Model),
		zap.Bool("redis_enabled", redisClient != nil),
		zap.Duration("timeout", timeoutDuration),
	)

	// 初始化生成服務
	aiService, err := service.NewService(cfg, cacheManager)
	if err != nil || aiService == nil {
		common.LogError("Failed to initialize AI service", zap.Error(err))
		return nil, fmt.Errorf("failed to initialize AI service: %w", err)
	}

	// 初始化語料庫與對話紀錄：有 Redis 用 Redis，否則退回記憶體
	var store corpus.Store
	var chatLog chatCore.Log
	if redisClient != nil {
		store = corpus.NewRedisStore(redisClient, cfg.Redis.KeyPrefix)
		chatLog = chatCore.NewRedisLog(redisClient, cfg.Redis.KeyPrefix)
	} else {
		store = corpus.NewMemoryStore(nil)
		chatLog = chatCore.NewMemoryLog()
	}

	// 初始化比對與對話服務
	lexicon := recipeCore.NewLexicon(cfg.Lexicon)
	matcher := recipeCore.NewMatcher(lexicon, cfg.Match.CoverageThreshold)
	classifier := chatCore.NewAIClassifier(aiService)
	session := chatCore.NewSession(cfg, store, matcher, classifier, aiService, chatLog)

	common.LogInfo("Services initialized successfully",
		zap.Bool("ai_service_initialized", aiService != nil),
		zap.Bool("cache_manager_initialized", cacheManager != nil),
		zap.Float64("coverage_threshold", cfg.Match.CoverageThreshold),
		zap.String("environment", cfg.App.Env),
	)

	// 全局中間件：設置超時和服務
	router.Use(func(c *gin.Context) {
		// 設置請求超時
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeoutDuration)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)

		// 健康檢查會用到配置與快取統計
		c.Set("config", cfg)
		c.Set("cache_manager", cacheManager)

		// 處理請求
		c.Next()

		// 檢查是否超時
		if ctx.Err() == context.DeadlineExceeded {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", c.GetHeader("X-Request-ID")),
				zap.Duration("timeout", timeoutDuration),
			)
			c.JSON(http.StatusGatewayTimeout, gin.H{
				"error": "Request timeout",
				"code":  "REQUEST_TIMEOUT",
				"details": gin.H{
					"timeout": timeoutDuration.String(),
				},
			})
			c.Abort()
			return
		}
	})

	// 健康檢查路由
	router.GET("/health", health.HealthCheck)
	router.GET("/ready", health.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	// API 路由組
	api := router.Group("/api/v1")
	{
		recipeHandlerInstance := recipeHandler.NewHandler(cfg, store, matcher)
		chatHandlerInstance := chatHandler.NewHandler(session)

		// 食譜比對與編解碼
		recipeGroup := api.Group("/recipes")
		{
			recipeGroup.POST("/match", recipeHandlerInstance.HandleMatch)
			recipeGroup.POST("/decode", recipeHandlerInstance.HandleDecode)
			recipeGroup.POST("/encode", recipeHandlerInstance.HandleEncode)
		}

		// 對話
		chatGroup := api.Group("/chat")
		{
			chatGroup.POST("/message", chatHandlerInstance.HandleMessage)
		}
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
		zap.Duration("timeout", timeoutDuration),
		zap.Int64("max_body_size", maxBodySize),
	)

	return router, nil
}
