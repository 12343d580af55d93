package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/lvtian/agrostock/docs" // swagger文档
	appinventory "github.com/lvtian/agrostock/internal/application/inventory"
	appuser "github.com/lvtian/agrostock/internal/application/user"
	"github.com/lvtian/agrostock/internal/domain/inventory"
	"github.com/lvtian/agrostock/internal/domain/user"
	"github.com/lvtian/agrostock/internal/infrastructure/config"
	inframq "github.com/lvtian/agrostock/internal/infrastructure/mq"
	"github.com/lvtian/agrostock/internal/infrastructure/persistence/mysql"
	"github.com/lvtian/agrostock/internal/infrastructure/persistence/redis"
	"github.com/lvtian/agrostock/internal/interface/http/handler"
	"github.com/lvtian/agrostock/internal/interface/http/middleware"
	"github.com/lvtian/agrostock/pkg/jwt"
	"github.com/lvtian/agrostock/pkg/metrics"
	"github.com/lvtian/agrostock/pkg/mq"
	"github.com/lvtian/agrostock/pkg/response"
	"github.com/lvtian/agrostock/pkg/tracing"
)

const serviceName = "agrostock-api"

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	fmt.Printf("✓ 配置加载成功\n")
	fmt.Printf("  - 服务端口: %d\n", cfg.Server.Port)
	fmt.Printf("  - 运行模式: %s\n", cfg.Server.Mode)
	fmt.Printf("  - 数据库: %s:%d/%s\n", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	fmt.Printf("  - Redis: %s\n", cfg.Redis.Addr())

	// 2. 初始化Prometheus指标
	metrics.InitMetrics()

	// 3. 初始化链路追踪(可选)
	var tracerShutdown func(context.Context) error
	if cfg.Tracing.Enabled {
		tracerShutdown, err = tracing.InitTracer(serviceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			log.Fatalf("初始化链路追踪失败: %v", err)
		}
	}

	// 4. 初始化数据库连接
	db, err := mysql.NewDB(cfg)
	if err != nil {
		log.Fatalf("初始化数据库失败: %v", err)
	}

	// 5. 初始化Redis连接
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		log.Fatalf("初始化Redis失败: %v", err)
	}

	// 6. 初始化RabbitMQ告警发布器(可选,不可用时降级为不发告警)
	var notifier inventory.AlertNotifier
	var mqPublisher *mq.Publisher
	if cfg.MQ.Enabled {
		mqPublisher, err = mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
		if err != nil {
			log.Printf("RabbitMQ连接失败,库存告警不可用: %v", err)
		} else {
			notifier = inframq.NewAlertPublisher(mqPublisher)
			fmt.Println("✓ RabbitMQ连接成功")
		}
	}

	// 7. 依赖注入(手动组装)
	// Repository ← Service ← UseCase ← Handler

	// 基础设施层
	itemRepo := mysql.NewItemRepository(db)
	stockLogRepo := mysql.NewStockLogRepository(db)
	userRepo := mysql.NewUserRepository(db)
	txManager := mysql.NewTxManager(db)
	sessionStore := redis.NewSessionStore(redisClient)
	itemCache := redis.NewItemCache(redisClient, 10*time.Minute)
	jwtManager := jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)

	// 领域层
	inventoryService := inventory.NewService(itemRepo, stockLogRepo, txManager, notifier)
	userService := user.NewService(userRepo)

	// 应用层
	createItemUseCase := appinventory.NewCreateItemUseCase(inventoryService)
	getItemUseCase := appinventory.NewGetItemUseCase(inventoryService, itemCache)
	getItemBySKUUseCase := appinventory.NewGetItemBySKUUseCase(inventoryService)
	listItemsUseCase := appinventory.NewListItemsUseCase(inventoryService)
	updateItemUseCase := appinventory.NewUpdateItemUseCase(inventoryService, itemCache)
	deleteItemUseCase := appinventory.NewDeleteItemUseCase(inventoryService, itemCache)
	addBatchUseCase := appinventory.NewAddBatchUseCase(inventoryService, itemCache)
	updateBatchUseCase := appinventory.NewUpdateBatchUseCase(inventoryService, itemCache)
	removeBatchUseCase := appinventory.NewRemoveBatchUseCase(inventoryService, itemCache)
	exportItemsUseCase := appinventory.NewExportItemsUseCase(inventoryService)
	listExpiringUseCase := appinventory.NewListExpiringUseCase(inventoryService)
	listStockLogsUseCase := appinventory.NewListStockLogsUseCase(inventoryService)

	registerUseCase := appuser.NewRegisterUseCase(userService)
	loginUseCase := appuser.NewLoginUseCase(userService, jwtManager, sessionStore)
	logoutUseCase := appuser.NewLogoutUseCase(sessionStore)

	// 接口层
	inventoryHandler := handler.NewInventoryHandler(
		createItemUseCase,
		getItemUseCase,
		getItemBySKUUseCase,
		listItemsUseCase,
		updateItemUseCase,
		deleteItemUseCase,
		addBatchUseCase,
		updateBatchUseCase,
		removeBatchUseCase,
		exportItemsUseCase,
		listExpiringUseCase,
		listStockLogsUseCase,
	)
	userHandler := handler.NewUserHandler(registerUseCase, loginUseCase, logoutUseCase)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, sessionStore)

	// 8. 初始化Gin引擎
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.Metrics())
	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing(serviceName))
	}

	registerRoutes(r, userHandler, inventoryHandler, authMiddleware)

	// 9. 启动服务(支持优雅关闭)
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		fmt.Printf("\n🚀 服务启动成功！\n")
		fmt.Printf("   访问地址: http://localhost%s\n", addr)
		fmt.Printf("   健康检查: http://localhost%s/ping\n", addr)
		fmt.Printf("   API文档: http://localhost%s/swagger/index.html\n", addr)
		fmt.Printf("   监控指标: http://localhost%s/metrics\n", addr)
		fmt.Printf("\n按Ctrl+C停止服务\n\n")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("启动服务失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Println("\n正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("关闭HTTP服务失败: %v", err)
	}
	if mqPublisher != nil {
		if err := mqPublisher.Close(); err != nil {
			log.Printf("关闭RabbitMQ连接失败: %v", err)
		}
	}
	if tracerShutdown != nil {
		if err := tracerShutdown(ctx); err != nil {
			log.Printf("关闭链路追踪失败: %v", err)
		}
	}

	fmt.Println("服务已退出")
}

// registerRoutes 注册路由
func registerRoutes(
	r *gin.Engine,
	userHandler *handler.UserHandler,
	inventoryHandler *handler.InventoryHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// 健康检查
	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")
	{
		// 认证模块(公开接口)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
			auth.POST("/logout", authMiddleware.RequireAuth(), userHandler.Logout)
		}

		// 库存模块(需要登录)
		items := v1.Group("/items")
		items.Use(authMiddleware.RequireAuth())
		{
			items.POST("", inventoryHandler.CreateItem)
			items.GET("", inventoryHandler.ListItems)
			items.GET("/:id", inventoryHandler.GetItem)
			items.PUT("/:id", inventoryHandler.UpdateItem)
			items.DELETE("/:id", authMiddleware.RequireAdmin(), inventoryHandler.DeleteItem)

			// 批次操作
			items.POST("/:id/batches", inventoryHandler.AddBatch)
			items.PUT("/:id/batches/:batchId", inventoryHandler.UpdateBatch)
			items.DELETE("/:id/batches/:batchId", inventoryHandler.RemoveBatch)

			// 库存流水
			items.GET("/:id/logs", inventoryHandler.ListStockLogs)
		}

		// 按SKU查询(与/items/:id分开,避免路由冲突)
		v1.GET("/skus/:sku", authMiddleware.RequireAuth(), inventoryHandler.GetItemBySKU)

		// 报表模块(需要登录)
		v1.GET("/export/items", authMiddleware.RequireAuth(), inventoryHandler.ExportItems)
		v1.GET("/batches/expiring", authMiddleware.RequireAuth(), inventoryHandler.ListExpiring)
	}
}
