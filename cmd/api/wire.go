//go:build wireinject
// +build wireinject

// Wire依赖注入配置
//
// 修改Provider后重新生成：
//
//	wire gen ./cmd/api
//
// 依赖链：Config → Repositories → UseCase → Handler → *gin.Engine

package main

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"

	appcatalog "github.com/xiebiao/bookstore-core/internal/application/catalog"
	appinventory "github.com/xiebiao/bookstore-core/internal/application/inventory"
	apporder "github.com/xiebiao/bookstore-core/internal/application/order"
	apprental "github.com/xiebiao/bookstore-core/internal/application/rental"
	"github.com/xiebiao/bookstore-core/internal/domain/promotion"
	"github.com/xiebiao/bookstore-core/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-core/internal/infrastructure/persistence"
	"github.com/xiebiao/bookstore-core/internal/interface/http/handler"
	"github.com/xiebiao/bookstore-core/internal/interface/http/router"
)

// infrastructureSet 存储、缓存、消息
// 仓储从Repositories中按字段取出，保证共享同一个事务管理器
var infrastructureSet = wire.NewSet(
	persistence.Open,
	wire.FieldsOf(new(*persistence.Repositories),
		"Tx", "Copies", "Items", "Batches", "Catalog", "Stats", "Orders", "Rentals", "Promotions"),
	provideClock,
	providePromotionCache,
	provideEventPublisher,
)

// domainSet 领域服务
var domainSet = wire.NewSet(
	providePromotionResolver,
	wire.Bind(new(apporder.PromotionResolver), new(*promotion.Resolver)),
)

// applicationSet 用例
var applicationSet = wire.NewSet(
	appinventory.NewManager,
	wire.Bind(new(apporder.CopyReserver), new(*appinventory.Manager)),
	apporder.NewCreateOrderUseCase,
	apporder.NewQueryOrdersUseCase,
	provideCreateRentalUseCase,
	apprental.NewReturnRentalUseCase,
	apprental.NewListRentalsUseCase,
	appcatalog.NewQueryService,
)

// handlerSet HTTP处理器
var handlerSet = wire.NewSet(
	handler.NewInventoryHandler,
	handler.NewRentalHandler,
	handler.NewOrderHandler,
	handler.NewCatalogHandler,
	handler.NewPromotionHandler,
	handler.NewStatsHandler,
	wire.Struct(new(router.Handlers), "*"),
)

// InitializeApp 组装整个应用
// 返回的cleanup按创建的逆序关闭消息连接、Redis和数据库
func InitializeApp(cfg *config.Config, log *slog.Logger) (*gin.Engine, func(), error) {
	wire.Build(
		infrastructureSet,
		domainSet,
		applicationSet,
		handlerSet,
		router.New,
	)
	return nil, nil, nil
}
