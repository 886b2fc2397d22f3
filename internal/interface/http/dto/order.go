package dto

import (
	"github.com/xiebiao/bookstore-core/internal/domain/order"
)

// CreateOrderRequest HTTP下单请求
// 每一行给出isbn或item_id之一
type CreateOrderRequest struct {
	CustomerID  uint               `json:"customer_id" binding:"required" example:"1"`
	PromotionID *uint              `json:"promotion_id" example:"2"`
	Lines       []OrderLineRequest `json:"lines" binding:"required,min=1,max=100,dive"`
}

// OrderLineRequest 下单行
type OrderLineRequest struct {
	ISBN     string `json:"isbn" binding:"omitempty,max=20" example:"9787115428028"`
	ItemID   uint   `json:"item_id" example:"0"`
	Quantity int    `json:"quantity" binding:"required,min=1,max=999" example:"2"`
}

// ToLineRequests 转换为领域层的下单行
func (r *CreateOrderRequest) ToLineRequests() []order.LineRequest {
	lines := make([]order.LineRequest, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = order.LineRequest{
			ISBN:     l.ISBN,
			ItemID:   l.ItemID,
			Quantity: l.Quantity,
		}
	}
	return lines
}

// ListOrdersRequest 订单列表查询
type ListOrdersRequest struct {
	CustomerID uint `form:"customer_id" example:"1"`
	Page       int  `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize   int  `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
}
