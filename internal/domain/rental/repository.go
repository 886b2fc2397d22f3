package rental

import (
	"context"
	"time"
)

// Repository 租借仓储
type Repository interface {
	Create(ctx context.Context, r *Rental) error
	FindByID(ctx context.Context, id uint) (*Rental, error)

	// LockByID 加行锁读取（归还时防止并发重复归还）
	LockByID(ctx context.Context, id uint) (*Rental, error)

	// MarkReturned 条件更新：仅更新return_date为空的记录，返回受影响行数
	MarkReturned(ctx context.Context, id uint, at time.Time) (int64, error)

	// CountOpenByCopy 副本的未归还租借数
	CountOpenByCopy(ctx context.Context, copyID uint) (int64, error)

	FindDetail(ctx context.Context, id uint) (*Detail, error)
	// List 按租借时间倒序
	List(ctx context.Context, filter ListFilter) ([]*Detail, error)
}
