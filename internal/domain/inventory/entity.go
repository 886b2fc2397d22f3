package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ItemType 商品类型
type ItemType string

const (
	ItemTypeBook        ItemType = "Book"
	ItemTypeMerchandise ItemType = "Merchandise"
)

// IsValid 是否为已知类型
func (t ItemType) IsValid() bool {
	return t == ItemTypeBook || t == ItemTypeMerchandise
}

// Item 可售卖单元
// 每一本实体书副本都有自己的Item（类型为Book），周边商品的Item可被重复售卖
type Item struct {
	ID          uint
	Description string
	Price       decimal.Decimal
	Type        ItemType
}

// NewItem 创建商品
func NewItem(description string, price decimal.Decimal, itemType ItemType) (*Item, error) {
	if price.IsNegative() {
		return nil, ErrInvalidPrice
	}
	if !itemType.IsValid() {
		return nil, ErrInvalidItemType
	}
	return &Item{Description: description, Price: price, Type: itemType}, nil
}

// CopyDescription 副本商品描述，如 "Go程序设计语言 - Copy 3"
func CopyDescription(title string, n int) string {
	return fmt.Sprintf("%s - Copy %d", title, n)
}

// CopyStatus 副本状态
//
//	available --sell--> sold (终态)
//	available --rent--> rented --return--> available
type CopyStatus string

const (
	CopyStatusAvailable CopyStatus = "available"
	CopyStatusSold      CopyStatus = "sold"
	CopyStatusRented    CopyStatus = "rented"
)

// CanTransitionTo 状态转换是否合法
func (s CopyStatus) CanTransitionTo(to CopyStatus) bool {
	switch s {
	case CopyStatusAvailable:
		return to == CopyStatusSold || to == CopyStatusRented
	case CopyStatusRented:
		return to == CopyStatusAvailable
	default:
		return false
	}
}

// BookCopy 一本实体书副本，ID与其Item的ID相同
type BookCopy struct {
	ID       uint
	ISBN     string
	BatchID  uint
	Rentable bool
	Status   CopyStatus
}

// NewBookCopy 新入库副本，状态为available
func NewBookCopy(itemID uint, isbn string, batchID uint, rentable bool) *BookCopy {
	return &BookCopy{
		ID:       itemID,
		ISBN:     isbn,
		BatchID:  batchID,
		Rentable: rentable,
		Status:   CopyStatusAvailable,
	}
}

// Transition 校验并修改状态
func (c *BookCopy) Transition(to CopyStatus) error {
	if !c.Status.CanTransitionTo(to) {
		return ErrInvalidCopyStatus.WithMessagef("副本%d状态为%s，不能变更为%s", c.ID, c.Status, to)
	}
	c.Status = to
	return nil
}

// Batch 库存批次，归属一名员工
type Batch struct {
	ID         uint
	Code       string
	EmployeeID uint
}

const (
	// DefaultBatchCode 默认库存批次编码
	DefaultBatchCode = "DEFAULT"
	// DefaultEmployeeName 默认批次负责人
	DefaultEmployeeName = "System Admin"
)

// StockSummary 单个ISBN的库存统计
type StockSummary struct {
	ISBN      string `json:"isbn"`
	Title     string `json:"title"`
	Total     int64  `json:"total"`
	Available int64  `json:"available"`
	Sold      int64  `json:"sold"`
	Rented    int64  `json:"rented"`
}

// Balanced 三种状态的数量之和等于副本总数
func (s StockSummary) Balanced() bool {
	return s.Available+s.Sold+s.Rented == s.Total
}
