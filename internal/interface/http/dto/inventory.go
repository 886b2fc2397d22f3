package dto

import (
	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
)

// ProvisionCopiesRequest 入库请求
// UnitPrice使用decimal，validator无法对结构体做gt校验，正数检查在handler中完成
type ProvisionCopiesRequest struct {
	Quantity  int             `json:"quantity" binding:"required,gt=0,max=1000" example:"5"`
	UnitPrice decimal.Decimal `json:"unit_price" swaggertype:"string" example:"59.00"`
	Rentable  bool            `json:"rentable" example:"true"`
}

// ProvisionCopiesResponse 入库结果
type ProvisionCopiesResponse struct {
	ISBN      string `json:"isbn" example:"9787115428028"`
	CopyIDs   []uint `json:"copy_ids"`
	Available int64  `json:"available" example:"5"`
}

// AvailableResponse 可用副本数
type AvailableResponse struct {
	ISBN      string `json:"isbn" example:"9787115428028"`
	Available int64  `json:"available" example:"3"`
}

// CopyResponse 图书副本
type CopyResponse struct {
	ID       uint   `json:"copy_id" example:"12"`
	ISBN     string `json:"isbn" example:"9787115428028"`
	BatchID  uint   `json:"batch_id" example:"1"`
	Rentable bool   `json:"rentable" example:"true"`
	Status   string `json:"status" example:"available"`
}

// NewCopyResponses 副本列表转换
func NewCopyResponses(copies []*inventory.BookCopy) []CopyResponse {
	list := make([]CopyResponse, 0, len(copies))
	for _, c := range copies {
		list = append(list, CopyResponse{
			ID:       c.ID,
			ISBN:     c.ISBN,
			BatchID:  c.BatchID,
			Rentable: c.Rentable,
			Status:   string(c.Status),
		})
	}
	return list
}
