package promotion

//go:generate mockgen -source=repository.go -destination=mocks/repository_mock.go -package=mocks

import (
	"context"
	"time"

	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
)

var (
	// ErrPromotionNotFound 促销不存在
	ErrPromotionNotFound = apperrors.New(apperrors.ErrCodePromotionNotFound, "促销不存在")

	ErrInvalidCode     = apperrors.New(apperrors.ErrCodeInvalidParams, "促销码不能为空")
	ErrInvalidDiscount = apperrors.New(apperrors.ErrCodeInvalidParams, "折扣必须在0到100之间")
	ErrInvalidPeriod   = apperrors.New(apperrors.ErrCodeInvalidParams, "结束日期不能早于开始日期")
)

// Repository 促销仓储（事务核心只读）
type Repository interface {
	Create(ctx context.Context, p *Promotion) error
	FindByID(ctx context.Context, id uint) (*Promotion, error)
	// ListActive on当天有效的促销，按折扣从高到低
	ListActive(ctx context.Context, on time.Time) ([]*Promotion, error)
	List(ctx context.Context) ([]*Promotion, error)
}

// Cache 促销缓存，未命中时返回(nil, nil)
type Cache interface {
	Get(ctx context.Context, id uint) (*Promotion, error)
	Set(ctx context.Context, p *Promotion) error
}
