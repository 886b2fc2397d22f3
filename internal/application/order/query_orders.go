package order

import (
	"context"

	"github.com/xiebiao/bookstore-core/internal/domain/order"
)

// QueryOrdersUseCase 订单查询
type QueryOrdersUseCase struct {
	orders order.Repository
}

// NewQueryOrdersUseCase 创建订单查询用例
func NewQueryOrdersUseCase(orders order.Repository) *QueryOrdersUseCase {
	return &QueryOrdersUseCase{orders: orders}
}

// Get 订单详情，图书按ISBN合并展示
func (uc *QueryOrdersUseCase) Get(ctx context.Context, id uint) (*OrderDetail, error) {
	o, err := uc.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDetail(o), nil
}

// List 分页查询，返回当前页和总数
func (uc *QueryOrdersUseCase) List(ctx context.Context, filter order.ListFilter) ([]*OrderSummary, int64, error) {
	filter.Normalize()
	orders, total, err := uc.orders.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	list := make([]*OrderSummary, len(orders))
	for i, o := range orders {
		list[i] = toSummary(o)
	}
	return list, total, nil
}
