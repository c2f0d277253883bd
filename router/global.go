package router

import (
	"net/http"

	"github.com/Xushengqwer/go-common/core"
	commonMiddleware "github.com/Xushengqwer/go-common/middleware"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	appConfig "github.com/Xushengqwer/confession_service/config"
	"github.com/Xushengqwer/confession_service/constant"
	"github.com/Xushengqwer/confession_service/controller"
)

// SetupRouter 配置 Gin 引擎、全局中间件和各控制器路由。
func SetupRouter(
	logger *core.ZapLogger,
	cfg *appConfig.ConfessionConfig,
	moderationController *controller.ModerationController,
	deletionController *controller.DeletionController,
	rankingController *controller.RankingController,
	messagingController *controller.AdminMessagingController,
	toolsController *controller.AdminToolsController,
) *gin.Engine {
	logger.Info("开始设置 Gin 路由...")

	router := gin.New()

	// 顺序：追踪 -> panic 恢复 -> 访问日志 -> 超时
	router.Use(otelgin.Middleware(constant.ServiceName))
	router.Use(commonMiddleware.ErrorHandlingMiddleware(logger))
	router.Use(commonMiddleware.RequestLoggerMiddleware(logger.Logger()))
	if cfg.ServerConfig.RequestTimeout > 0 {
		router.Use(commonMiddleware.RequestTimeoutMiddleware(logger, cfg.ServerConfig.RequestTimeout))
	}

	v1 := router.Group("/api/v1/confession")
	moderationController.RegisterRoutes(v1)
	deletionController.RegisterRoutes(v1)
	rankingController.RegisterRoutes(v1)
	messagingController.RegisterRoutes(v1)
	toolsController.RegisterRoutes(v1)
	logger.Info("所有控制器路由已注册到 /api/v1/confession 分组")

	swaggerURL := ginSwagger.URL("/swagger/doc.json")
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))

	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})

	logger.Info("Gin 路由器设置完成")
	return router
}
