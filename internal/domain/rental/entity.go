package rental

import "time"

// DefaultLoanPeriod 默认借期：14天
const DefaultLoanPeriod = 14 * 24 * time.Hour

// Rental 一次租借，对应唯一一本副本
// 不变量：ReturnDate非空时必须晚于RentDate；同一副本同时最多一条未归还记录
type Rental struct {
	ID         uint
	CustomerID uint
	CopyID     uint
	RentDate   time.Time
	DueDate    time.Time
	ReturnDate *time.Time
}

// NewRental 创建租借记录，到期日 = 租借日 + period
func NewRental(customerID, copyID uint, rentDate time.Time, period time.Duration) *Rental {
	if period <= 0 {
		period = DefaultLoanPeriod
	}
	return &Rental{
		CustomerID: customerID,
		CopyID:     copyID,
		RentDate:   rentDate,
		DueDate:    rentDate.Add(period),
	}
}

// IsOpen 是否未归还
func (r *Rental) IsOpen() bool {
	return r.ReturnDate == nil
}

// IsOverdue at时刻是否已逾期（已归还的按归还时间判断）
func (r *Rental) IsOverdue(at time.Time) bool {
	if r.ReturnDate != nil {
		return r.ReturnDate.After(r.DueDate)
	}
	return at.After(r.DueDate)
}

// Return 归还
func (r *Rental) Return(at time.Time) error {
	if !r.IsOpen() {
		return ErrAlreadyReturned
	}
	if !at.After(r.RentDate) {
		return ErrInvalidReturnDate
	}
	r.ReturnDate = &at
	return nil
}

// Detail 租借记录及展示字段
type Detail struct {
	Rental
	ISBN         string `json:"isbn"`
	BookTitle    string `json:"book_title"`
	CustomerName string `json:"customer_name"`
}

// ListFilter 列表过滤条件，零值表示不过滤
type ListFilter struct {
	CustomerID uint
	OpenOnly   bool
}

// CreatedEvent rental.created 消息体
type CreatedEvent struct {
	RentalID   uint      `json:"rental_id"`
	CustomerID uint      `json:"customer_id"`
	CopyID     uint      `json:"copy_id"`
	ISBN       string    `json:"isbn"`
	DueDate    time.Time `json:"due_date"`
}

// ReturnedEvent rental.returned 消息体
type ReturnedEvent struct {
	RentalID   uint      `json:"rental_id"`
	CopyID     uint      `json:"copy_id"`
	ReturnDate time.Time `json:"return_date"`
	Overdue    bool      `json:"overdue"`
}
