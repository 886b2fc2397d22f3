package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/bookstore-core/internal/application/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/promotion"
	"github.com/xiebiao/bookstore-core/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
	"github.com/xiebiao/bookstore-core/pkg/response"
)

// PromotionHandler 促销
type PromotionHandler struct {
	svc *appcatalog.QueryService
}

// NewPromotionHandler 创建促销处理器
func NewPromotionHandler(svc *appcatalog.QueryService) *PromotionHandler {
	return &PromotionHandler{svc: svc}
}

// ListActive 当天有效的促销
// @Summary      有效促销
// @Description  按折扣从高到低；查询失败时返回空列表
// @Tags         促销
// @Produce      json
// @Success      200 {object} response.Response{data=[]promotion.Promotion}
// @Router       /api/v1/promotions/active [get]
func (h *PromotionHandler) ListActive(c *gin.Context) {
	response.Success(c, h.svc.ActivePromotions(c.Request.Context()))
}

// List 全部促销
// @Summary      促销列表
// @Tags         促销
// @Produce      json
// @Success      200 {object} response.Response{data=[]promotion.Promotion}
// @Router       /api/v1/promotions [get]
func (h *PromotionHandler) List(c *gin.Context) {
	list, err := h.svc.ListPromotions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if list == nil {
		list = []*promotion.Promotion{}
	}
	response.Success(c, list)
}

// Create 新建促销
// @Summary      新建促销
// @Tags         促销
// @Accept       json
// @Produce      json
// @Param        request body dto.CreatePromotionRequest true "促销信息"
// @Success      201 {object} response.Response{data=promotion.Promotion}
// @Failure      400 {object} response.Response "折扣不在(0,100]或日期不合法"
// @Router       /api/v1/promotions [post]
func (h *PromotionHandler) Create(c *gin.Context) {
	var req dto.CreatePromotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	p, err := req.ToPromotion()
	if err != nil {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: "+err.Error())
		return
	}
	if err := h.svc.CreatePromotion(c.Request.Context(), p); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p)
}
