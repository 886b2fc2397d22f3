package handler

import (
	"github.com/gin-gonic/gin"

	apprental "github.com/xiebiao/bookstore-core/internal/application/rental"
	"github.com/xiebiao/bookstore-core/internal/domain/rental"
	"github.com/xiebiao/bookstore-core/internal/domain/shared"
	"github.com/xiebiao/bookstore-core/internal/interface/http/dto"
	"github.com/xiebiao/bookstore-core/pkg/response"
)

// RentalHandler 租借HTTP处理器
type RentalHandler struct {
	createRental *apprental.CreateRentalUseCase
	returnRental *apprental.ReturnRentalUseCase
	listRentals  *apprental.ListRentalsUseCase
	clock        shared.Clock
}

// NewRentalHandler 创建租借处理器
func NewRentalHandler(
	createRental *apprental.CreateRentalUseCase,
	returnRental *apprental.ReturnRentalUseCase,
	listRentals *apprental.ListRentalsUseCase,
	clock shared.Clock,
) *RentalHandler {
	return &RentalHandler{
		createRental: createRental,
		returnRental: returnRental,
		listRentals:  listRentals,
		clock:        clock,
	}
}

// CreateRental 租借图书
// @Summary      租借图书
// @Description  按ISBN（或某本副本的copy_id）租借一本可租借的副本，同一副本同时只能有一条未归还记录
// @Tags         租借
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateRentalRequest true "租借信息"
// @Success      201 {object} response.Response{data=dto.RentalResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      404 {object} response.Response "顾客或副本不存在"
// @Failure      409 {object} response.Response "没有可租借的副本"
// @Router       /api/v1/rentals [post]
func (h *RentalHandler) CreateRental(c *gin.Context) {
	var req dto.CreateRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	detail, err := h.createRental.Execute(c.Request.Context(), apprental.CreateRentalRequest{
		CustomerID: req.CustomerID,
		ISBN:       req.ISBN,
		CopyID:     req.CopyID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewRentalResponse(detail, h.clock()))
}

// ReturnRental 归还图书
// @Summary      归还图书
// @Tags         租借
// @Produce      json
// @Param        id path int true "租借ID"
// @Success      200 {object} response.Response{data=dto.RentalResponse}
// @Failure      404 {object} response.Response "租借记录不存在"
// @Failure      409 {object} response.Response "已归还"
// @Router       /api/v1/rentals/{id}/return [post]
func (h *RentalHandler) ReturnRental(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.returnRental.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewRentalResponse(detail, h.clock()))
}

// GetRental 租借详情
// @Summary      租借详情
// @Tags         租借
// @Produce      json
// @Param        id path int true "租借ID"
// @Success      200 {object} response.Response{data=dto.RentalResponse}
// @Failure      404 {object} response.Response "租借记录不存在"
// @Router       /api/v1/rentals/{id} [get]
func (h *RentalHandler) GetRental(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.listRentals.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewRentalResponse(detail, h.clock()))
}

// ListRentals 租借列表
// @Summary      租借列表
// @Description  按租借时间倒序；open=true只返回未归还的记录
// @Tags         租借
// @Produce      json
// @Param        customer_id query int  false "顾客ID"
// @Param        open        query bool false "只看未归还"
// @Success      200 {object} response.Response{data=[]dto.RentalResponse}
// @Router       /api/v1/rentals [get]
func (h *RentalHandler) ListRentals(c *gin.Context) {
	var req dto.ListRentalsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}

	list, err := h.listRentals.List(c.Request.Context(), rental.ListFilter{
		CustomerID: req.CustomerID,
		OpenOnly:   req.Open,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewRentalResponses(list, h.clock()))
}
