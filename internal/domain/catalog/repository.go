package catalog

import (
	"context"
	"time"
)

// Repository 目录仓储（图书、顾客、评价）
type Repository interface {
	// CreateBook 创建图书及作者关系，作者按姓名复用
	CreateBook(ctx context.Context, b *Book) error
	FindBookByISBN(ctx context.Context, isbn string) (*Book, error)
	// ListBooks 按书名关键字过滤，填充CopyCount
	ListBooks(ctx context.Context, keyword string) ([]*Book, error)

	CreateCustomer(ctx context.Context, c *Customer) error
	FindCustomerByID(ctx context.Context, id uint) (*Customer, error)

	CreateReview(ctx context.Context, r *Review) error
	// ListReviews itemID为0时返回全部，按创建时间倒序
	ListReviews(ctx context.Context, itemID uint) ([]*Review, error)
}

// StatsRepository 统计查询
type StatsRepository interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	PopularBooks(ctx context.Context, limit int) ([]*PopularBook, error)
	// RevenueByMonth 统计since之后（含）的月度营收，按月份升序
	RevenueByMonth(ctx context.Context, since time.Time) ([]*MonthlyRevenue, error)
}
