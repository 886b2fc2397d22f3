package handler

import (
	"github.com/gin-gonic/gin"

	appcatalog "github.com/xiebiao/bookstore-core/internal/application/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
	"github.com/xiebiao/bookstore-core/internal/interface/http/dto"
	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
	"github.com/xiebiao/bookstore-core/pkg/response"
)

// CatalogHandler 图书目录、商品、顾客与评价
type CatalogHandler struct {
	svc *appcatalog.QueryService
}

// NewCatalogHandler 创建目录处理器
func NewCatalogHandler(svc *appcatalog.QueryService) *CatalogHandler {
	return &CatalogHandler{svc: svc}
}

// CreateBook 新建图书
// @Summary      新建图书
// @Description  作者按姓名复用，不存在时自动创建
// @Tags         图书
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateBookRequest true "图书信息"
// @Success      201 {object} response.Response{data=dto.BookResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "ISBN已存在"
// @Router       /api/v1/books [post]
func (h *CatalogHandler) CreateBook(c *gin.Context) {
	var req dto.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	authors := make([]appcatalog.AuthorInput, len(req.Authors))
	for i, a := range req.Authors {
		authors[i] = appcatalog.AuthorInput{Name: a.Name, Role: a.Role}
	}
	book, err := h.svc.CreateBook(c.Request.Context(), appcatalog.CreateBookRequest{
		ISBN:            req.ISBN,
		Title:           req.Title,
		PublicationYear: req.PublicationYear,
		Authors:         authors,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewBookResponse(book))
}

// GetBook 图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        isbn path string true "ISBN"
// @Success      200 {object} response.Response{data=dto.BookResponse}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{isbn} [get]
func (h *CatalogHandler) GetBook(c *gin.Context) {
	book, err := h.svc.GetBook(c.Request.Context(), c.Param("isbn"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookResponse(book))
}

// ListBooks 图书列表
// @Summary      图书列表
// @Description  keyword按书名模糊匹配（不区分大小写）
// @Tags         图书
// @Produce      json
// @Param        keyword query string false "关键字"
// @Success      200 {object} response.Response{data=[]dto.BookResponse}
// @Router       /api/v1/books [get]
func (h *CatalogHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	books, err := h.svc.ListBooks(c.Request.Context(), req.Keyword)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewBookResponses(books))
}

// CreateItem 新建周边商品
// @Summary      新建周边商品
// @Tags         商品
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateItemRequest true "商品信息"
// @Success      201 {object} response.Response{data=dto.ItemResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Router       /api/v1/items [post]
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if !req.Price.IsPositive() {
		response.ErrorWithCode(c, apperrors.ErrCodeInvalidParams, "参数错误: price必须大于0")
		return
	}

	item, err := h.svc.CreateItem(c.Request.Context(), req.Description, req.Price)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewItemResponse(item))
}

// ListItems 商品列表
// @Summary      商品列表
// @Tags         商品
// @Produce      json
// @Param        type query string false "Book或Merchandise"
// @Success      200 {object} response.Response{data=[]dto.ItemResponse}
// @Router       /api/v1/items [get]
func (h *CatalogHandler) ListItems(c *gin.Context) {
	var req dto.ListItemsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	items, err := h.svc.ListItems(c.Request.Context(), inventory.ItemType(req.Type))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewItemResponses(items))
}

// GetItem 商品详情
// @Summary      商品详情
// @Tags         商品
// @Produce      json
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=dto.ItemResponse}
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/items/{id} [get]
func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	item, err := h.svc.GetItem(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewItemResponse(item))
}

// CreateCustomer 新建顾客
// @Summary      新建顾客
// @Tags         顾客
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateCustomerRequest true "顾客信息"
// @Success      201 {object} response.Response{data=dto.CustomerResponse}
// @Failure      400 {object} response.Response "姓名为空"
// @Router       /api/v1/customers [post]
func (h *CatalogHandler) CreateCustomer(c *gin.Context) {
	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	customer := req.ToCustomer()
	if err := h.svc.CreateCustomer(c.Request.Context(), customer); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewCustomerResponse(customer))
}

// GetCustomer 顾客详情
// @Summary      顾客详情
// @Tags         顾客
// @Produce      json
// @Param        id path int true "顾客ID"
// @Success      200 {object} response.Response{data=dto.CustomerResponse}
// @Failure      404 {object} response.Response "顾客不存在"
// @Router       /api/v1/customers/{id} [get]
func (h *CatalogHandler) GetCustomer(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	customer, err := h.svc.GetCustomer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewCustomerResponse(customer))
}

// CreateReview 评价商品
// @Summary      评价商品
// @Tags         评价
// @Accept       json
// @Produce      json
// @Param        id      path int                     true "商品ID"
// @Param        request body dto.CreateReviewRequest true "评价内容"
// @Success      201 {object} response.Response{data=dto.ReviewResponse}
// @Failure      400 {object} response.Response "评分超出0-5"
// @Failure      404 {object} response.Response "商品不存在"
// @Router       /api/v1/items/{id}/reviews [post]
func (h *CatalogHandler) CreateReview(c *gin.Context) {
	itemID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	var req dto.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	review := &catalog.Review{
		ItemID:   itemID,
		Reviewer: req.Reviewer,
		Content:  req.Content,
		Rating:   req.Rating,
	}
	if err := h.svc.CreateReview(c.Request.Context(), review); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewReviewResponse(review))
}

// ListReviews 商品评价列表
// @Summary      商品评价列表
// @Tags         评价
// @Produce      json
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=[]dto.ReviewResponse}
// @Router       /api/v1/items/{id}/reviews [get]
func (h *CatalogHandler) ListReviews(c *gin.Context) {
	itemID, ok := uintParam(c, "id")
	if !ok {
		return
	}
	reviews, err := h.svc.ListReviews(c.Request.Context(), itemID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewReviewResponses(reviews))
}
