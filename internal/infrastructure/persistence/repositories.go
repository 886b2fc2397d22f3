// Package persistence 按配置选择存储实现
package persistence

import (
	"fmt"
	"log/slog"

	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
	"github.com/xiebiao/bookstore-core/internal/domain/order"
	"github.com/xiebiao/bookstore-core/internal/domain/promotion"
	"github.com/xiebiao/bookstore-core/internal/domain/rental"
	"github.com/xiebiao/bookstore-core/internal/domain/shared"
	"github.com/xiebiao/bookstore-core/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-core/internal/infrastructure/persistence/inmemory"
	"github.com/xiebiao/bookstore-core/internal/infrastructure/persistence/rdb"
)

// Repositories 一组共享同一事务边界的仓储
type Repositories struct {
	Tx         shared.Transactor
	Copies     inventory.CopyRepository
	Items      inventory.ItemRepository
	Batches    inventory.BatchRepository
	Catalog    catalog.Repository
	Stats      catalog.StatsRepository
	Orders     order.Repository
	Rentals    rental.Repository
	Promotions promotion.Repository
}

// Open 根据database.driver创建仓储，返回的cleanup负责关闭连接
func Open(cfg *config.Config, log *slog.Logger) (*Repositories, func(), error) {
	switch cfg.Database.Driver {
	case config.DriverMemory:
		store, err := inmemory.NewStore()
		if err != nil {
			return nil, nil, err
		}
		log.Warn("using in-memory store, data will be lost on restart")
		return NewInMemory(store), func() {}, nil

	case config.DriverMySQL, config.DriverPostgres:
		db, err := rdb.NewDB(cfg, log)
		if err != nil {
			return nil, nil, err
		}
		cleanup := func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		}
		return &Repositories{
			Tx:         rdb.NewTxManager(db),
			Copies:     rdb.NewCopyRepository(db, cfg.Business.SkipLocked),
			Items:      rdb.NewItemRepository(db),
			Batches:    rdb.NewBatchRepository(db),
			Catalog:    rdb.NewCatalogRepository(db),
			Stats:      rdb.NewStatsRepository(db),
			Orders:     rdb.NewOrderRepository(db),
			Rentals:    rdb.NewRentalRepository(db),
			Promotions: rdb.NewPromotionRepository(db),
		}, cleanup, nil

	default:
		return nil, nil, fmt.Errorf("不支持的数据库驱动: %q", cfg.Database.Driver)
	}
}

// NewInMemory 基于内存数据库的仓储（本地开发与测试）
func NewInMemory(store *inmemory.Store) *Repositories {
	return &Repositories{
		Tx:         store,
		Copies:     inmemory.NewCopyRepository(store),
		Items:      inmemory.NewItemRepository(store),
		Batches:    inmemory.NewBatchRepository(store),
		Catalog:    inmemory.NewCatalogRepository(store),
		Stats:      inmemory.NewStatsRepository(store),
		Orders:     inmemory.NewOrderRepository(store),
		Rentals:    inmemory.NewRentalRepository(store),
		Promotions: inmemory.NewPromotionRepository(store),
	}
}
