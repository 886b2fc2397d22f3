package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xiebiao/bookstore-core/internal/domain/promotion"
	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
	"github.com/xiebiao/bookstore-core/pkg/metrics"
)

// PromotionCache 促销缓存
// Key设计：promotion:{id}，值为JSON，过期时间由business.promotion_cache_ttl控制。
// 促销创建后不再修改，缓存不需要主动失效。
type PromotionCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewPromotionCache 创建促销缓存
func NewPromotionCache(client redis.Cmdable, ttl time.Duration) *PromotionCache {
	return &PromotionCache{client: client, ttl: ttl}
}

func promotionKey(id uint) string {
	return fmt.Sprintf("promotion:%d", id)
}

// Get 未命中时返回(nil, nil)
func (c *PromotionCache) Get(ctx context.Context, id uint) (*promotion.Promotion, error) {
	data, err := c.client.Get(ctx, promotionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.IncCounterVec(metrics.PromotionCacheTotal, map[string]string{"result": "miss"})
		return nil, nil
	}
	if err != nil {
		metrics.IncCounterVec(metrics.PromotionCacheTotal, map[string]string{"result": "error"})
		return nil, apperrors.ErrRedisError.WithErr(err)
	}

	var p promotion.Promotion
	if err := json.Unmarshal(data, &p); err != nil {
		metrics.IncCounterVec(metrics.PromotionCacheTotal, map[string]string{"result": "error"})
		return nil, apperrors.ErrRedisError.WithErr(err)
	}
	metrics.IncCounterVec(metrics.PromotionCacheTotal, map[string]string{"result": "hit"})
	return &p, nil
}

func (c *PromotionCache) Set(ctx context.Context, p *promotion.Promotion) error {
	data, err := json.Marshal(p)
	if err != nil {
		return apperrors.ErrRedisError.WithErr(err)
	}
	if err := c.client.Set(ctx, promotionKey(p.ID), data, c.ttl).Err(); err != nil {
		return apperrors.ErrRedisError.WithErr(err)
	}
	return nil
}
