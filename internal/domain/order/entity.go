package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
)

// Order 订单聚合根
// Amount和ItemCount是派生字段，只在创建时根据已预留的商品重新计算，不接受调用方传入
type Order struct {
	ID          uint
	OrderNo     string // 订单号(业务主键,全局唯一)
	CustomerID  uint
	PromotionID *uint
	Amount      decimal.Decimal
	ItemCount   int
	OrderDate   time.Time
	Items       []OrderItem
	CreatedAt   time.Time
}

// OrderItem 订单明细，每行对应一个具体Item（图书即具体副本）
type OrderItem struct {
	ID      uint
	OrderID uint
	ItemID  uint

	// 以下字段仅在读取时填充
	Description string
	Price       decimal.Decimal
	ItemType    inventory.ItemType
	ISBN        string
	Title       string
}

// NewOrder 新订单头，金额与数量先置0
func NewOrder(orderNo string, customerID uint, orderDate time.Time) *Order {
	return &Order{
		OrderNo:    orderNo,
		CustomerID: customerID,
		Amount:     decimal.Zero,
		OrderDate:  orderDate,
		CreatedAt:  orderDate,
	}
}

var hundred = decimal.NewFromInt(100)

// ApplyDiscount total × (1 − percent/100)，保留两位小数
// percent超出[0,100]时截断
func ApplyDiscount(total, percent decimal.Decimal) decimal.Decimal {
	if percent.IsNegative() {
		percent = decimal.Zero
	}
	if percent.GreaterThan(hundred) {
		percent = hundred
	}
	factor := decimal.NewFromInt(1).Sub(percent.Div(hundred))
	return total.Mul(factor).Round(2)
}

// Recalculate 根据明细价格重新计算金额与数量
// discountPercent为nil表示无促销
func (o *Order) Recalculate(prices []decimal.Decimal, discountPercent *decimal.Decimal) {
	total := decimal.Zero
	for _, p := range prices {
		total = total.Add(p)
	}
	if discountPercent != nil {
		total = ApplyDiscount(total, *discountPercent)
	}
	o.Amount = total.Round(2)
	o.ItemCount = len(prices)
}

// LineKind 展示行类型
type LineKind string

const (
	LineKindBook LineKind = "book"
	LineKindItem LineKind = "item"
)

// Line 订单展示行
// 图书按ISBN合并为一行；其他商品每个明细一行
type Line struct {
	Kind        LineKind        `json:"kind"`
	ISBN        string          `json:"isbn,omitempty"`
	Title       string          `json:"title,omitempty"`
	ItemID      uint            `json:"item_id,omitempty"`
	Description string          `json:"description,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	CopyIDs     []uint          `json:"copy_ids,omitempty"`
}

// Lines 按首次出现顺序生成展示行
// 同一ISBN的副本价格可能不同，UnitPrice取平均值
func (o *Order) Lines() []Line {
	lines := make([]Line, 0, len(o.Items))
	bookIdx := make(map[string]int)

	for _, it := range o.Items {
		if it.ItemType == inventory.ItemTypeBook && it.ISBN != "" {
			if i, ok := bookIdx[it.ISBN]; ok {
				lines[i].Quantity++
				lines[i].Subtotal = lines[i].Subtotal.Add(it.Price)
				lines[i].CopyIDs = append(lines[i].CopyIDs, it.ItemID)
				continue
			}
			bookIdx[it.ISBN] = len(lines)
			lines = append(lines, Line{
				Kind:     LineKindBook,
				ISBN:     it.ISBN,
				Title:    it.Title,
				Quantity: 1,
				Subtotal: it.Price,
				CopyIDs:  []uint{it.ItemID},
			})
			continue
		}
		lines = append(lines, Line{
			Kind:        LineKindItem,
			ItemID:      it.ItemID,
			Description: it.Description,
			Quantity:    1,
			UnitPrice:   it.Price,
			Subtotal:    it.Price,
		})
	}

	for i := range lines {
		if lines[i].Kind == LineKindBook {
			lines[i].UnitPrice = lines[i].Subtotal.Div(decimal.NewFromInt(int64(lines[i].Quantity))).Round(2)
		}
	}
	return lines
}

// LineRequest 下单请求行：{isbn, quantity} 或 {item_id, quantity}
type LineRequest struct {
	ISBN     string
	ItemID   uint
	Quantity int
}

// IsBook 是否为图书行
func (l LineRequest) IsBook() bool {
	return l.ISBN != ""
}

// Validate 必须且只能指定ISBN或ItemID之一，数量大于0
func (l LineRequest) Validate() error {
	if (l.ISBN == "") == (l.ItemID == 0) {
		return ErrInvalidLine
	}
	if l.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// ListFilter 订单列表条件
type ListFilter struct {
	CustomerID uint // 0表示全部
	Page       int
	PageSize   int
}

// Normalize 分页参数默认值
func (f *ListFilter) Normalize() {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 20
	}
}

// CreatedEvent order.created 消息体
type CreatedEvent struct {
	OrderID     uint   `json:"order_id"`
	OrderNo     string `json:"order_no"`
	CustomerID  uint   `json:"customer_id"`
	Amount      string `json:"amount"`
	ItemCount   int    `json:"item_count"`
	PromotionID *uint  `json:"promotion_id,omitempty"`
}
