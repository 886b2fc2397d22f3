package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/bookstore-core/internal/application/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-core/pkg/response"
)

// StatsHandler 运营统计
type StatsHandler struct {
	svc *appcatalog.QueryService
}

// NewStatsHandler 创建统计处理器
func NewStatsHandler(svc *appcatalog.QueryService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// Dashboard 运营概览
// @Summary      运营概览
// @Tags         统计
// @Produce      json
// @Success      200 {object} response.Response{data=catalog.Dashboard}
// @Router       /api/v1/stats/dashboard [get]
func (h *StatsHandler) Dashboard(c *gin.Context) {
	d, err := h.svc.Dashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, d)
}

// PopularBooks 热门图书
// @Summary      热门图书
// @Description  按租借次数排序
// @Tags         统计
// @Produce      json
// @Param        limit query int false "数量" default(10)
// @Success      200 {object} response.Response{data=[]catalog.PopularBook}
// @Router       /api/v1/stats/popular-books [get]
func (h *StatsHandler) PopularBooks(c *gin.Context) {
	var req dto.PopularBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	list, err := h.svc.PopularBooks(c.Request.Context(), req.Limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if list == nil {
		list = []*catalog.PopularBook{}
	}
	response.Success(c, list)
}

// RevenueByMonth 月度营收
// @Summary      月度营收
// @Description  最近12个月（含当月），没有订单的月份不返回
// @Tags         统计
// @Produce      json
// @Success      200 {object} response.Response{data=[]catalog.MonthlyRevenue}
// @Router       /api/v1/stats/revenue [get]
func (h *StatsHandler) RevenueByMonth(c *gin.Context) {
	list, err := h.svc.RevenueByMonth(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if list == nil {
		list = []*catalog.MonthlyRevenue{}
	}
	response.Success(c, list)
}
