package rental

import (
	"context"

	"github.com/xiebiao/bookstore-core/internal/domain/rental"
)

// ListRentalsUseCase 租借记录查询
type ListRentalsUseCase struct {
	rentals rental.Repository
}

// NewListRentalsUseCase 创建查询用例
func NewListRentalsUseCase(rentals rental.Repository) *ListRentalsUseCase {
	return &ListRentalsUseCase{rentals: rentals}
}

// List 按租借时间倒序
func (uc *ListRentalsUseCase) List(ctx context.Context, filter rental.ListFilter) ([]*rental.Detail, error) {
	return uc.rentals.List(ctx, filter)
}

// Get 单条租借记录
func (uc *ListRentalsUseCase) Get(ctx context.Context, id uint) (*rental.Detail, error) {
	return uc.rentals.FindDetail(ctx, id)
}
