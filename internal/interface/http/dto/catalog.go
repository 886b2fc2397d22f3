package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
)

// =========================================
// 图书
// =========================================

// CreateBookRequest 建书请求
type CreateBookRequest struct {
	ISBN            string          `json:"isbn" binding:"required,max=20" example:"9787115428028"`
	Title           string          `json:"title" binding:"required,max=200" example:"Go程序设计语言"`
	PublicationYear int             `json:"publication_year" binding:"omitempty,min=1000,max=9999" example:"2016"`
	Authors         []AuthorRequest `json:"authors" binding:"omitempty,max=20,dive"`
}

// AuthorRequest role为空时为Author
type AuthorRequest struct {
	Name string `json:"name" binding:"required,max=100" example:"Alan A. A. Donovan"`
	Role string `json:"role" binding:"omitempty,max=30" example:"Author"`
}

// ListBooksRequest 图书列表查询
type ListBooksRequest struct {
	Keyword string `form:"keyword" binding:"omitempty,max=100" example:"Go"`
}

// AuthorResponse 作者
type AuthorResponse struct {
	Name string `json:"name" example:"Alan A. A. Donovan"`
	Role string `json:"role" example:"Author"`
}

// BookResponse 图书
type BookResponse struct {
	ISBN            string           `json:"isbn" example:"9787115428028"`
	Title           string           `json:"title" example:"Go程序设计语言"`
	PublicationYear int              `json:"publication_year" example:"2016"`
	Authors         []AuthorResponse `json:"authors"`
	CopyCount       int64            `json:"copy_count" example:"5"`
}

// NewBookResponse 领域对象转换为响应
func NewBookResponse(b *catalog.Book) *BookResponse {
	authors := make([]AuthorResponse, 0, len(b.Authors))
	for _, a := range b.Authors {
		authors = append(authors, AuthorResponse{Name: a.Name, Role: a.Role})
	}
	return &BookResponse{
		ISBN:            b.ISBN,
		Title:           b.Title,
		PublicationYear: b.PublicationYear,
		Authors:         authors,
		CopyCount:       b.CopyCount,
	}
}

// NewBookResponses 列表转换
func NewBookResponses(books []*catalog.Book) []*BookResponse {
	list := make([]*BookResponse, 0, len(books))
	for _, b := range books {
		list = append(list, NewBookResponse(b))
	}
	return list
}

// =========================================
// 商品
// =========================================

// CreateItemRequest 新建周边商品
type CreateItemRequest struct {
	Description string          `json:"description" binding:"required,max=255" example:"帆布袋"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"25.00"`
}

// ListItemsRequest type为Book或Merchandise，为空返回全部
type ListItemsRequest struct {
	Type string `form:"type" binding:"omitempty,oneof=Book Merchandise" example:"Merchandise"`
}

// ItemResponse 商品
type ItemResponse struct {
	ID          uint            `json:"item_id" example:"1"`
	Description string          `json:"description" example:"帆布袋"`
	Price       decimal.Decimal `json:"price" swaggertype:"string" example:"25.00"`
	Type        string          `json:"type" example:"Merchandise"`
}

// NewItemResponse 领域对象转换为响应
func NewItemResponse(it *inventory.Item) *ItemResponse {
	return &ItemResponse{
		ID:          it.ID,
		Description: it.Description,
		Price:       it.Price,
		Type:        string(it.Type),
	}
}

// NewItemResponses 列表转换
func NewItemResponses(items []*inventory.Item) []*ItemResponse {
	list := make([]*ItemResponse, 0, len(items))
	for _, it := range items {
		list = append(list, NewItemResponse(it))
	}
	return list
}

// =========================================
// 顾客与评价
// =========================================

// CreateCustomerRequest 新建顾客
type CreateCustomerRequest struct {
	FirstName    string `json:"first_name" binding:"max=50" example:"三"`
	LastName     string `json:"last_name" binding:"max=50" example:"张"`
	CustomerType string `json:"customer_type" binding:"omitempty,max=20" example:"Regular"`
	Phone        string `json:"phone" binding:"omitempty,max=30" example:"13800000000"`
	ZipCode      string `json:"zip_code" binding:"omitempty,max=10" example:"100000"`
}

// ToCustomer 转换为领域对象
func (r *CreateCustomerRequest) ToCustomer() *catalog.Customer {
	return &catalog.Customer{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		CustomerType: r.CustomerType,
		Phone:        r.Phone,
		ZipCode:      r.ZipCode,
	}
}

// CustomerResponse 顾客
type CustomerResponse struct {
	ID           uint   `json:"customer_id" example:"1"`
	FirstName    string `json:"first_name" example:"三"`
	LastName     string `json:"last_name" example:"张"`
	FullName     string `json:"full_name" example:"三 张"`
	CustomerType string `json:"customer_type" example:"Regular"`
	Phone        string `json:"phone,omitempty" example:"13800000000"`
	ZipCode      string `json:"zip_code,omitempty" example:"100000"`
}

// NewCustomerResponse 领域对象转换为响应
func NewCustomerResponse(c *catalog.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:           c.ID,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		FullName:     c.FullName(),
		CustomerType: c.CustomerType,
		Phone:        c.Phone,
		ZipCode:      c.ZipCode,
	}
}

// CreateReviewRequest 评价，rating范围0-5
type CreateReviewRequest struct {
	Reviewer string          `json:"reviewer" binding:"required,max=100" example:"读者A"`
	Content  string          `json:"content" binding:"max=2000" example:"讲解清晰"`
	Rating   decimal.Decimal `json:"rating" swaggertype:"string" example:"4.5"`
}

// ReviewResponse 评价
type ReviewResponse struct {
	ID        uint            `json:"review_id" example:"1"`
	ItemID    uint            `json:"item_id" example:"12"`
	Reviewer  string          `json:"reviewer" example:"读者A"`
	Content   string          `json:"content" example:"讲解清晰"`
	Rating    decimal.Decimal `json:"rating" swaggertype:"string" example:"4.5"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewReviewResponse 领域对象转换为响应
func NewReviewResponse(r *catalog.Review) *ReviewResponse {
	return &ReviewResponse{
		ID:        r.ID,
		ItemID:    r.ItemID,
		Reviewer:  r.Reviewer,
		Content:   r.Content,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt,
	}
}

// NewReviewResponses 列表转换
func NewReviewResponses(reviews []*catalog.Review) []*ReviewResponse {
	list := make([]*ReviewResponse, 0, len(reviews))
	for _, r := range reviews {
		list = append(list, NewReviewResponse(r))
	}
	return list
}
