package promotion

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Promotion 限时百分比折扣
type Promotion struct {
	ID              uint            `json:"id"`
	Code            string          `json:"code"`
	Description     string          `json:"description"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
}

// IsActive at所在日期是否落在[StartDate, EndDate]内（按天比较，两端包含）
// 起止日期是日历日期，只取年月日，不做时区换算
func (p *Promotion) IsActive(at time.Time) bool {
	day := civilDay(at)
	return day >= civilDay(p.StartDate) && day <= civilDay(p.EndDate)
}

var hundred = decimal.NewFromInt(100)

// Validate 折扣在(0, 100]内，结束日期不早于开始日期
func (p *Promotion) Validate() error {
	if strings.TrimSpace(p.Code) == "" {
		return ErrInvalidCode
	}
	if !p.DiscountPercent.IsPositive() || p.DiscountPercent.GreaterThan(hundred) {
		return ErrInvalidDiscount
	}
	if p.EndDate.Before(p.StartDate) {
		return ErrInvalidPeriod
	}
	return nil
}

// civilDay 20240601形式的日期序号
func civilDay(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// Policy 下单时促销的生效策略
type Policy string

const (
	// PolicyAny 只要促销存在就生效
	PolicyAny Policy = "any"
	// PolicyActive 仅在有效期内生效
	PolicyActive Policy = "active"
)

// IsValid 是否为已知策略
func (p Policy) IsValid() bool {
	return p == PolicyAny || p == PolicyActive
}
