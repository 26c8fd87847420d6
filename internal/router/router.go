package router

import (
	"fmt"
	"strings"

	"github.com/kucun-next/internal/cache"
	"github.com/kucun-next/internal/config"
	"github.com/kucun-next/internal/http/handlers"
	"github.com/kucun-next/internal/logger"
	"github.com/kucun-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	handler := handlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "kc"
	}
	redisClient := cache.Client()
	loginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 登录前接口
		auth := apiV1.Group("/auth")
		{
			auth.GET("/captcha", handler.GetCaptcha)
			auth.POST("/sign-in", RateLimitMiddleware(redisClient, loginRule, KeyByIPAndJSONField("email")), handler.SignIn)
		}

		// 业务接口（需鉴权）
		authorized := apiV1.Group("")
		authorized.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.OperatorRepo))
		{
			authorized.POST("/auth/sign-out", handler.SignOut)
			authorized.GET("/me", handler.GetProfile)
			authorized.PUT("/me/password", handler.ChangePassword)

			// 服装档案
			authorized.GET("/clothes", handler.GetClothes)
			authorized.GET("/clothes/:id", handler.GetClothing)
			authorized.GET("/clothes/by-code/:code", handler.GetClothingByCode)
			authorized.POST("/clothes", handler.CreateClothing)
			authorized.PUT("/clothes/:id", handler.UpdateClothing)
			authorized.DELETE("/clothes/:id", handler.DeleteClothing)
			authorized.GET("/categories", handler.GetCategories)

			// 库存与出入库
			authorized.GET("/inventory", handler.GetInventories)
			authorized.GET("/inventory/:id", handler.GetInventoryQuantity)
			authorized.POST("/stock-in", handler.CreateStockIn)
			authorized.POST("/stock-in/batch", handler.CreateStockInBatch)
			authorized.GET("/stock-in", handler.GetStockIns)
			authorized.POST("/stock-out", handler.CreateStockOut)
			authorized.POST("/stock-out/batch", handler.CreateStockOutBatch)
			authorized.GET("/stock-out", handler.GetStockOuts)

			// 报表
			authorized.GET("/reports/inventory", handler.GetInventorySummary)
			authorized.GET("/reports/low-stock", handler.GetLowStockItems)
			authorized.GET("/reports/sales", handler.GetSalesSummary)
			authorized.GET("/reports/dashboard", handler.GetDashboard)

			// 设置
			authorized.GET("/settings", handler.GetSettings)
			authorized.PUT("/settings", handler.UpdateSettings)

			// 备份
			authorized.GET("/backup/export", handler.ExportBackup)
			authorized.POST("/backup/import", handler.ImportBackup)

			// 云同步
			authorized.GET("/sync/status", handler.GetSyncStatus)
			authorized.POST("/sync/run", handler.RunSync)
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
