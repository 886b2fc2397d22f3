package promotion_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/xiebiao/bookstore-core/internal/domain/promotion"
	"github.com/xiebiao/bookstore-core/internal/domain/promotion/mocks"
	"github.com/xiebiao/bookstore-core/pkg/logger"
)

var today = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return today }

func springSale() *promotion.Promotion {
	return &promotion.Promotion{
		ID:              3,
		Code:            "SPRING10",
		DiscountPercent: decimal.NewFromInt(10),
		StartDate:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestPromotion_IsActive(t *testing.T) {
	p := springSale()
	assert.True(t, p.IsActive(today), "结束日当天仍有效")
	assert.True(t, p.IsActive(time.Date(2024, 6, 1, 0, 0, 1, 0, time.UTC)))
	assert.False(t, p.IsActive(time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.IsActive(time.Date(2024, 5, 31, 23, 59, 0, 0, time.UTC)))
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("缓存未命中时查库并回填缓存", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockRepository(ctrl)
		cache := mocks.NewMockCache(ctrl)

		cache.EXPECT().Get(gomock.Any(), uint(3)).Return(nil, nil)
		repo.EXPECT().FindByID(gomock.Any(), uint(3)).Return(springSale(), nil)
		cache.EXPECT().Set(gomock.Any(), gomock.Any()).Return(nil)

		r := promotion.NewResolver(repo, cache, promotion.PolicyActive, fixedClock, logger.Discard())
		p, ok := r.Resolve(ctx, 3)
		require.True(t, ok)
		assert.True(t, p.DiscountPercent.Equal(decimal.NewFromInt(10)))
	})

	t.Run("缓存命中不查库", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockRepository(ctrl)
		cache := mocks.NewMockCache(ctrl)

		cache.EXPECT().Get(gomock.Any(), uint(3)).Return(springSale(), nil)

		r := promotion.NewResolver(repo, cache, promotion.PolicyActive, fixedClock, logger.Discard())
		_, ok := r.Resolve(ctx, 3)
		assert.True(t, ok)
	})

	t.Run("不存在或查询失败时不打折", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := mocks.NewMockRepository(ctrl)
		cache := mocks.NewMockCache(ctrl)

		cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, errors.New("redis: connection refused")).Times(2)
		repo.EXPECT().FindByID(gomock.Any(), uint(8)).Return(nil, promotion.ErrPromotionNotFound)
		repo.EXPECT().FindByID(gomock.Any(), uint(9)).Return(nil, errors.New("Error 1146: Table 'promotions' doesn't exist"))

		r := promotion.NewResolver(repo, cache, promotion.PolicyActive, fixedClock, logger.Discard())
		_, ok := r.Resolve(ctx, 8)
		assert.False(t, ok)
		_, ok = r.Resolve(ctx, 9)
		assert.False(t, ok)
	})

	t.Run("过期促销按策略处理", func(t *testing.T) {
		expired := springSale()
		expired.EndDate = time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

		ctrl := gomock.NewController(t)
		repo := mocks.NewMockRepository(ctrl)
		repo.EXPECT().FindByID(gomock.Any(), uint(3)).Return(expired, nil).Times(2)

		active := promotion.NewResolver(repo, nil, promotion.PolicyActive, fixedClock, logger.Discard())
		_, ok := active.Resolve(ctx, 3)
		assert.False(t, ok)

		anyPolicy := promotion.NewResolver(repo, nil, promotion.PolicyAny, fixedClock, logger.Discard())
		_, ok = anyPolicy.Resolve(ctx, 3)
		assert.True(t, ok)
	})

	t.Run("未指定促销", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		r := promotion.NewResolver(mocks.NewMockRepository(ctrl), nil, promotion.PolicyAny, fixedClock, logger.Discard())
		_, ok := r.Resolve(ctx, 0)
		assert.False(t, ok)
	})
}
