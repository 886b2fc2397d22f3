package rdb

import (
	"time"

	"github.com/shopspring/decimal"
)

// GORM数据模型
// 设计说明：
// 1. 这是infrastructure层的数据模型，包含GORM tag
// 2. 领域实体不依赖GORM，Repository负责两者之间的转换
// 3. 金额统一使用decimal(10,2)，对应shopspring/decimal

// ItemModel 可售卖单元
type ItemModel struct {
	ID          uint            `gorm:"primaryKey"`
	Description string          `gorm:"size:255;not null;comment:商品描述"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;check:chk_items_price,price >= 0;comment:价格"`
	ItemType    string          `gorm:"size:20;index;not null;check:chk_items_type,item_type IN ('Book','Merchandise');comment:Book或Merchandise"`
}

func (ItemModel) TableName() string { return "items" }

// EmployeeModel 员工（库存批次负责人）
type EmployeeModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;uniqueIndex;not null"`
}

func (EmployeeModel) TableName() string { return "employees" }

// BatchModel 库存批次
type BatchModel struct {
	ID         uint   `gorm:"primaryKey"`
	Code       string `gorm:"size:32;uniqueIndex;not null;comment:批次编码"`
	EmployeeID uint   `gorm:"index;not null"`

	Employee EmployeeModel `gorm:"foreignKey:EmployeeID;constraint:OnDelete:RESTRICT"`
}

func (BatchModel) TableName() string { return "inventory_batches" }

// BookModel 图书目录
type BookModel struct {
	ISBN            string `gorm:"primaryKey;size:20"`
	Title           string `gorm:"size:200;index;not null;comment:书名"`
	PublicationYear int    `gorm:"comment:出版年份"`
	PublisherID     *uint  `gorm:"index"`
	CategoryID      *uint  `gorm:"index"`
}

func (BookModel) TableName() string { return "books" }

// AuthorModel 作者，姓名唯一
type AuthorModel struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;uniqueIndex;not null"`
}

func (AuthorModel) TableName() string { return "authors" }

// BookAuthorModel 著作关系
type BookAuthorModel struct {
	ISBN     string `gorm:"primaryKey;size:20"`
	AuthorID uint   `gorm:"primaryKey"`
	Role     string `gorm:"size:50;not null;default:Author"`
	Position int    `gorm:"not null;default:0;comment:作者顺序"`

	Book   BookModel   `gorm:"foreignKey:ISBN;references:ISBN"`
	Author AuthorModel `gorm:"foreignKey:AuthorID"`
}

func (BookAuthorModel) TableName() string { return "book_authors" }

// BookCopyModel 实体书副本，主键即Item的ID
// idx_copies_pick覆盖锁定可用副本的查询：WHERE isbn=? AND status='available' ORDER BY item_id
type BookCopyModel struct {
	ItemID   uint   `gorm:"primaryKey;autoIncrement:false"`
	ISBN     string `gorm:"size:20;not null;index:idx_copies_pick,priority:1"`
	Status   string `gorm:"size:20;not null;default:available;index:idx_copies_pick,priority:2;check:chk_copies_status,status IN ('available','sold','rented')"`
	Rentable bool   `gorm:"not null;default:true"`
	BatchID  uint   `gorm:"index;not null"`

	Item  ItemModel  `gorm:"foreignKey:ItemID"`
	Book  BookModel  `gorm:"foreignKey:ISBN;references:ISBN"`
	Batch BatchModel `gorm:"foreignKey:BatchID"`
}

func (BookCopyModel) TableName() string { return "book_copies" }

// CustomerModel 顾客
type CustomerModel struct {
	ID           uint   `gorm:"primaryKey"`
	FirstName    string `gorm:"size:50;not null"`
	LastName     string `gorm:"size:50;not null"`
	CustomerType string `gorm:"size:20"`
	Phone        string `gorm:"size:20"`
	ZipCode      string `gorm:"size:10"`
}

func (CustomerModel) TableName() string { return "customers" }

// ReviewModel 商品评价
type ReviewModel struct {
	ID        uint            `gorm:"primaryKey"`
	ItemID    uint            `gorm:"index;not null"`
	Reviewer  string          `gorm:"size:100;not null"`
	Content   string          `gorm:"type:text"`
	Rating    decimal.Decimal `gorm:"type:decimal(2,1);not null;check:chk_reviews_rating,rating BETWEEN 0 AND 5"`
	CreatedAt time.Time       `gorm:"index"`

	Item ItemModel `gorm:"foreignKey:ItemID"`
}

func (ReviewModel) TableName() string { return "reviews" }

// PromotionModel 限时折扣
type PromotionModel struct {
	ID              uint            `gorm:"primaryKey"`
	Code            string          `gorm:"size:32;not null"`
	Description     string          `gorm:"size:255"`
	DiscountPercent decimal.Decimal `gorm:"type:decimal(5,2);not null;check:chk_promotions_discount,discount_percent > 0 AND discount_percent <= 100"`
	StartDate       time.Time       `gorm:"type:date;not null"`
	EndDate         time.Time       `gorm:"type:date;not null"`
}

func (PromotionModel) TableName() string { return "promotions" }

// OrderModel 订单头
type OrderModel struct {
	ID          uint            `gorm:"primaryKey"`
	OrderNo     string          `gorm:"uniqueIndex;size:32;not null;comment:订单号"`
	CustomerID  uint            `gorm:"index;not null"`
	PromotionID *uint           `gorm:"index"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0;check:chk_orders_amount,amount >= 0"`
	ItemCount   int             `gorm:"not null;default:0"`
	OrderDate   time.Time       `gorm:"index;not null"`
	CreatedAt   time.Time       `gorm:"index"`

	Customer  CustomerModel   `gorm:"foreignKey:CustomerID"`
	Promotion *PromotionModel `gorm:"foreignKey:PromotionID"`
}

func (OrderModel) TableName() string { return "orders" }

// OrderItemModel 订单明细，一行一个Item
type OrderItemModel struct {
	ID      uint `gorm:"primaryKey"`
	OrderID uint `gorm:"index;not null"`
	ItemID  uint `gorm:"index;not null"`

	Order OrderModel `gorm:"foreignKey:OrderID"`
	Item  ItemModel  `gorm:"foreignKey:ItemID"`
}

func (OrderItemModel) TableName() string { return "order_items" }

// RentalModel 租借记录
type RentalModel struct {
	ID         uint       `gorm:"primaryKey"`
	CustomerID uint       `gorm:"index;not null"`
	CopyID     uint       `gorm:"index:idx_rentals_copy_open,priority:1;not null"`
	RentDate   time.Time  `gorm:"index;not null"`
	DueDate    time.Time  `gorm:"not null"`
	ReturnDate *time.Time `gorm:"index:idx_rentals_copy_open,priority:2;check:chk_rents_return,return_date IS NULL OR return_date > rent_date"`

	Customer CustomerModel `gorm:"foreignKey:CustomerID"`
	Copy     BookCopyModel `gorm:"foreignKey:CopyID;references:ItemID"`
}

func (RentalModel) TableName() string { return "book_rents" }

// allModels 迁移顺序：被引用的表在前
func allModels() []interface{} {
	return []interface{}{
		&ItemModel{},
		&EmployeeModel{},
		&BatchModel{},
		&BookModel{},
		&AuthorModel{},
		&BookAuthorModel{},
		&BookCopyModel{},
		&CustomerModel{},
		&ReviewModel{},
		&PromotionModel{},
		&OrderModel{},
		&OrderItemModel{},
		&RentalModel{},
	}
}
