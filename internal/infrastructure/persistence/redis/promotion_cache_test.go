package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookstore-core/internal/domain/promotion"
	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
)

func newCache(t *testing.T, ttl time.Duration) (*PromotionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPromotionCache(client, ttl), mr
}

func TestPromotionCache_RoundTrip(t *testing.T) {
	cache, mr := newCache(t, 5*time.Minute)
	ctx := context.Background()

	got, err := cache.Get(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, got, "未命中返回nil")

	p := &promotion.Promotion{
		ID:              3,
		Code:            "SPRING10",
		DiscountPercent: decimal.RequireFromString("12.50"),
		StartDate:       time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, cache.Set(ctx, p))
	assert.Equal(t, 5*time.Minute, mr.TTL("promotion:3"))

	got, err = cache.Get(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "SPRING10", got.Code)
	assert.True(t, got.DiscountPercent.Equal(p.DiscountPercent))
	assert.True(t, got.EndDate.Equal(p.EndDate))

	mr.FastForward(6 * time.Minute)
	got, err = cache.Get(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, got, "过期后未命中")
}

func TestPromotionCache_CorruptValue(t *testing.T) {
	cache, mr := newCache(t, time.Minute)
	require.NoError(t, mr.Set("promotion:7", "not-json"))

	_, err := cache.Get(context.Background(), 7)
	assert.ErrorIs(t, err, apperrors.ErrRedisError)
}

func TestPromotionCache_ServerDown(t *testing.T) {
	cache, mr := newCache(t, time.Minute)
	mr.Close()

	_, err := cache.Get(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrRedisError)
}
