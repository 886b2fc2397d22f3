package handler

import (
	"github.com/gin-gonic/gin"

	apporder "github.com/xiebiao/bookstore-core/internal/application/order"
	"github.com/xiebiao/bookstore-core/internal/domain/order"
	"github.com/xiebiao/bookstore-core/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-core/pkg/response"
)

// OrderHandler 订单HTTP处理器
type OrderHandler struct {
	createOrderUseCase *apporder.CreateOrderUseCase
	queryOrdersUseCase *apporder.QueryOrdersUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(
	createOrderUseCase *apporder.CreateOrderUseCase,
	queryOrdersUseCase *apporder.QueryOrdersUseCase,
) *OrderHandler {
	return &OrderHandler{
		createOrderUseCase: createOrderUseCase,
		queryOrdersUseCase: queryOrdersUseCase,
	}
}

// CreateOrder 创建订单
// @Summary      创建订单
// @Description  每行给出isbn或item_id之一。图书按入库顺序锁定可用副本并标记为已售，
// @Description  任何一行失败整单回滚；promotion_id无效或不在有效期内时按原价结算。
// @Tags         订单
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateOrderRequest true "订单信息"
// @Success      201 {object} response.Response{data=apporder.OrderDetail} "下单成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "顾客、图书或商品不存在"
// @Failure      409 {object} response.Response "可用副本不足"
// @Failure      503 {object} response.Response "锁冲突，可重试"
// @Router       /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	// 1. 参数绑定与验证
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	// 2. 调用应用层用例
	result, err := h.createOrderUseCase.Execute(c.Request.Context(), apporder.CreateOrderRequest{
		CustomerID:  req.CustomerID,
		PromotionID: req.PromotionID,
		Lines:       req.ToLineRequests(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// GetOrder 订单详情
// @Summary      订单详情
// @Description  图书明细按ISBN合并为一行，其他商品逐条列出
// @Tags         订单
// @Produce      json
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderDetail}
// @Failure      404 {object} response.Response "订单不存在"
// @Router       /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.queryOrdersUseCase.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail)
}

// ListOrders 订单列表
// @Summary      订单列表
// @Tags         订单
// @Produce      json
// @Param        customer_id query int false "顾客ID"
// @Param        page        query int false "页码" default(1)
// @Param        page_size   query int false "每页数量" default(20)
// @Success      200 {object} response.Response{data=response.PageData{list=[]apporder.OrderSummary}}
// @Router       /api/v1/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var req dto.ListOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	filter := order.ListFilter{CustomerID: req.CustomerID, Page: req.Page, PageSize: req.PageSize}
	filter.Normalize()
	list, total, err := h.queryOrdersUseCase.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, list, total, filter.Page, filter.PageSize)
}
