package dto

import (
	"time"

	"github.com/xiebiao/bookstore-core/internal/domain/rental"
)

// CreateRentalRequest 租借请求，isbn与copy_id至少给出一个
type CreateRentalRequest struct {
	CustomerID uint   `json:"customer_id" binding:"required" example:"1"`
	ISBN       string `json:"isbn" binding:"omitempty,max=20" example:"9787115428028"`
	CopyID     uint   `json:"copy_id" example:"0"`
}

// ListRentalsRequest 租借列表查询
type ListRentalsRequest struct {
	CustomerID uint `form:"customer_id" example:"1"`
	Open       bool `form:"open" example:"true"`
}

// RentalResponse 租借记录
type RentalResponse struct {
	ID           uint       `json:"rental_id" example:"1"`
	CustomerID   uint       `json:"customer_id" example:"1"`
	CustomerName string     `json:"customer_name" example:"张 三"`
	CopyID       uint       `json:"copy_id" example:"12"`
	ISBN         string     `json:"isbn" example:"9787115428028"`
	BookTitle    string     `json:"book_title" example:"Go程序设计语言"`
	RentDate     time.Time  `json:"rent_date"`
	DueDate      time.Time  `json:"due_date"`
	ReturnDate   *time.Time `json:"return_date,omitempty"`
	Overdue      bool       `json:"overdue" example:"false"`
}

// NewRentalResponse now用于计算是否逾期
func NewRentalResponse(d *rental.Detail, now time.Time) *RentalResponse {
	return &RentalResponse{
		ID:           d.ID,
		CustomerID:   d.CustomerID,
		CustomerName: d.CustomerName,
		CopyID:       d.CopyID,
		ISBN:         d.ISBN,
		BookTitle:    d.BookTitle,
		RentDate:     d.RentDate,
		DueDate:      d.DueDate,
		ReturnDate:   d.ReturnDate,
		Overdue:      d.IsOverdue(now),
	}
}

// NewRentalResponses 列表转换
func NewRentalResponses(details []*rental.Detail, now time.Time) []*RentalResponse {
	list := make([]*RentalResponse, 0, len(details))
	for _, d := range details {
		list = append(list, NewRentalResponse(d, now))
	}
	return list
}
