package order

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository 订单仓储接口
type Repository interface {
	// Create 插入订单头，回填ID
	Create(ctx context.Context, order *Order) error

	// AddItems 为订单插入明细，每个itemID一行
	AddItems(ctx context.Context, orderID uint, itemIDs []uint) error

	// UpdateTotals 回写订单金额与明细数
	UpdateTotals(ctx context.Context, orderID uint, amount decimal.Decimal, itemCount int) error

	// FindByID 查询订单及明细（明细带商品描述、价格、ISBN）
	FindByID(ctx context.Context, id uint) (*Order, error)

	// List 分页查询订单头，按下单时间倒序
	List(ctx context.Context, filter ListFilter) ([]*Order, int64, error)
}
