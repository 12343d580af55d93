//go:build wireinject
// +build wireinject

// Wire依赖注入配置
//
// 使用方式：
// 1. 修改Provider后运行 `wire gen ./cmd/api`
// 2. Wire生成wire_gen.go,包含完整的依赖创建代码
// 3. main.go可改为调用InitializeApp()

package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	goredis "github.com/redis/go-redis/v9"

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
	"github.com/lvtian/agrostock/pkg/mq"
)

// infrastructureSet 基础设施层依赖
var infrastructureSet = wire.NewSet(
	config.Load,
	mysql.NewDB,
	redis.NewClient,
)

// repositorySet 仓储层依赖
var repositorySet = wire.NewSet(
	mysql.NewItemRepository,
	mysql.NewStockLogRepository,
	mysql.NewUserRepository,
	provideTxManager,
)

// domainSet 领域层依赖
var domainSet = wire.NewSet(
	inventory.NewService,
	user.NewService,
)

// applicationSet 应用层依赖
var applicationSet = wire.NewSet(
	appinventory.NewCreateItemUseCase,
	appinventory.NewGetItemUseCase,
	appinventory.NewGetItemBySKUUseCase,
	appinventory.NewListItemsUseCase,
	appinventory.NewUpdateItemUseCase,
	appinventory.NewDeleteItemUseCase,
	appinventory.NewAddBatchUseCase,
	appinventory.NewUpdateBatchUseCase,
	appinventory.NewRemoveBatchUseCase,
	appinventory.NewExportItemsUseCase,
	appinventory.NewListExpiringUseCase,
	appinventory.NewListStockLogsUseCase,
	appuser.NewRegisterUseCase,
	appuser.NewLoginUseCase,
	appuser.NewLogoutUseCase,
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideSessionStore,
	provideItemCache,
	middleware.NewAuthMiddleware,
)

// handlerSet HTTP处理器依赖
var handlerSet = wire.NewSet(
	handler.NewInventoryHandler,
	handler.NewUserHandler,
)

// provideTxManager 事务管理器(以领域接口类型提供)
func provideTxManager(db *mysql.TxManager) inventory.TxManager {
	return db
}

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideSessionStore 从Redis客户端创建Session存储
func provideSessionStore(client *goredis.Client) *redis.SessionStore {
	return redis.NewSessionStore(client)
}

// provideItemCache 商品详情缓存(10分钟TTL)
func provideItemCache(client *goredis.Client) *redis.ItemCache {
	return redis.NewItemCache(client, 10*time.Minute)
}

// provideAlertNotifier 库存告警发布器
// MQ未启用或连接失败时返回nil,领域服务会跳过告警
func provideAlertNotifier(cfg *config.Config) inventory.AlertNotifier {
	if !cfg.MQ.Enabled {
		return nil
	}
	publisher, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		log.Printf("RabbitMQ连接失败,库存告警不可用: %v", err)
		return nil
	}
	return inframq.NewAlertPublisher(publisher)
}

// provideGinEngine 创建并配置Gin引擎
func provideGinEngine(
	cfg *config.Config,
	userHandler *handler.UserHandler,
	inventoryHandler *handler.InventoryHandler,
	authMiddleware *middleware.AuthMiddleware,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.Metrics())

	registerRoutes(r, userHandler, inventoryHandler, authMiddleware)

	return r
}

// InitializeApp 初始化整个应用
func InitializeApp() (*gin.Engine, error) {
	wire.Build(
		infrastructureSet,
		mysql.NewTxManager,
		repositorySet,
		provideAlertNotifier,
		domainSet,
		applicationSet,
		middlewareSet,
		handlerSet,
		provideGinEngine,
	)

	return nil, nil
}
