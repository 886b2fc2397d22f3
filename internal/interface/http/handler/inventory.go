package handler

import (
	"github.com/gin-gonic/gin"

	appinventory "github.com/xiebiao/bookstore-core/internal/application/inventory"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
	"github.com/xiebiao/bookstore-core/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
	"github.com/xiebiao/bookstore-core/pkg/response"
)

// InventoryHandler 库存HTTP处理器
type InventoryHandler struct {
	manager *appinventory.Manager
}

// NewInventoryHandler 创建库存处理器
func NewInventoryHandler(manager *appinventory.Manager) *InventoryHandler {
	return &InventoryHandler{manager: manager}
}

// ProvisionCopies 图书入库
// @Summary      图书入库
// @Description  为已存在的ISBN新增quantity本副本，每本副本生成一个商品，编号接着已有副本数往后排
// @Tags         库存
// @Accept       json
// @Produce      json
// @Param        isbn    path string                     true "ISBN"
// @Param        request body dto.ProvisionCopiesRequest true "入库信息"
// @Success      201 {object} response.Response{data=dto.ProvisionCopiesResponse}
// @Failure      400 {object} response.Response "数量或价格不合法"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{isbn}/copies [post]
func (h *InventoryHandler) ProvisionCopies(c *gin.Context) {
	var req dto.ProvisionCopiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !req.UnitPrice.IsPositive() {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: unit_price必须大于0")
		return
	}

	ctx := c.Request.Context()
	isbn := c.Param("isbn")
	ids, err := h.manager.ProvisionCopies(ctx, isbn, req.Quantity, req.UnitPrice, req.Rentable)
	if err != nil {
		response.Error(c, err)
		return
	}

	available, err := h.manager.AvailableCount(ctx, isbn)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, &dto.ProvisionCopiesResponse{
		ISBN:      isbn,
		CopyIDs:   ids,
		Available: available,
	})
}

// AvailableCount 可用副本数
// @Summary      可用副本数
// @Tags         库存
// @Produce      json
// @Param        isbn path string true "ISBN"
// @Success      200 {object} response.Response{data=dto.AvailableResponse}
// @Router       /api/v1/books/{isbn}/available [get]
func (h *InventoryHandler) AvailableCount(c *gin.Context) {
	isbn := c.Param("isbn")
	n, err := h.manager.AvailableCount(c.Request.Context(), isbn)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.AvailableResponse{ISBN: isbn, Available: n})
}

// ListCopies 某ISBN的全部副本
// @Summary      副本列表
// @Tags         库存
// @Produce      json
// @Param        isbn path string true "ISBN"
// @Success      200 {object} response.Response{data=[]dto.CopyResponse}
// @Router       /api/v1/books/{isbn}/copies [get]
func (h *InventoryHandler) ListCopies(c *gin.Context) {
	copies, err := h.manager.ListCopies(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewCopyResponses(copies))
}

// Summary 库存统计
// @Summary      库存统计
// @Description  按ISBN统计副本总数与各状态数量，isbn为空时返回全部图书
// @Tags         库存
// @Produce      json
// @Param        isbn query string false "ISBN"
// @Success      200 {object} response.Response{data=[]inventory.StockSummary}
// @Router       /api/v1/inventory/summary [get]
func (h *InventoryHandler) Summary(c *gin.Context) {
	list, err := h.manager.Summary(c.Request.Context(), c.Query("isbn"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if list == nil {
		list = []*inventory.StockSummary{}
	}
	response.Success(c, list)
}
