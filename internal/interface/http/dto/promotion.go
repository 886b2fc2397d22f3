package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-core/internal/domain/promotion"
)

// DateLayout 促销起止日期格式
const DateLayout = "2006-01-02"

// CreatePromotionRequest 新建促销，日期两端包含
type CreatePromotionRequest struct {
	Code            string          `json:"code" binding:"required,max=50" example:"SPRING10"`
	Description     string          `json:"description" binding:"max=255" example:"春季九折"`
	DiscountPercent decimal.Decimal `json:"discount_percent" swaggertype:"string" example:"10"`
	StartDate       string          `json:"start_date" binding:"required,datetime=2006-01-02" example:"2025-03-01"`
	EndDate         string          `json:"end_date" binding:"required,datetime=2006-01-02" example:"2025-03-31"`
}

// ToPromotion 日期按UTC解析；格式已由binding校验
func (r *CreatePromotionRequest) ToPromotion() (*promotion.Promotion, error) {
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := time.Parse(DateLayout, r.EndDate)
	if err != nil {
		return nil, err
	}
	return &promotion.Promotion{
		Code:            r.Code,
		Description:     r.Description,
		DiscountPercent: r.DiscountPercent,
		StartDate:       start,
		EndDate:         end,
	}, nil
}
