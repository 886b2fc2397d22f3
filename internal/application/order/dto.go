package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-core/internal/domain/order"
)

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	CustomerID  uint
	PromotionID *uint
	Lines       []order.LineRequest
}

// OrderDetail 订单详情（下单结果与订单查询共用）
// 图书按ISBN合并为一行，其他商品逐条列出
type OrderDetail struct {
	ID              uint             `json:"order_id"`
	OrderNo         string           `json:"order_no"`
	CustomerID      uint             `json:"customer_id"`
	PromotionID     *uint            `json:"promotion_id,omitempty"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	Amount          decimal.Decimal  `json:"amount"`
	ItemCount       int              `json:"item_count"`
	OrderDate       time.Time        `json:"order_date"`
	Lines           []order.Line     `json:"lines"`
}

// OrderSummary 订单列表项
type OrderSummary struct {
	ID          uint            `json:"order_id"`
	OrderNo     string          `json:"order_no"`
	CustomerID  uint            `json:"customer_id"`
	PromotionID *uint           `json:"promotion_id,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	ItemCount   int             `json:"item_count"`
	OrderDate   time.Time       `json:"order_date"`
}

func toDetail(o *order.Order) *OrderDetail {
	return &OrderDetail{
		ID:          o.ID,
		OrderNo:     o.OrderNo,
		CustomerID:  o.CustomerID,
		PromotionID: o.PromotionID,
		Amount:      o.Amount,
		ItemCount:   o.ItemCount,
		OrderDate:   o.OrderDate,
		Lines:       o.Lines(),
	}
}

func toSummary(o *order.Order) *OrderSummary {
	return &OrderSummary{
		ID:          o.ID,
		OrderNo:     o.OrderNo,
		CustomerID:  o.CustomerID,
		PromotionID: o.PromotionID,
		Amount:      o.Amount,
		ItemCount:   o.ItemCount,
		OrderDate:   o.OrderDate,
	}
}
