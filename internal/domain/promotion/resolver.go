package promotion

import (
	"context"
	"log/slog"

	"github.com/xiebiao/bookstore-core/internal/domain/shared"
	"github.com/xiebiao/bookstore-core/pkg/logger"
)

// Resolver 把促销ID解析为折扣
// 解析失败（不存在、查询出错、未生效）一律视为无折扣，不会中断下单
type Resolver struct {
	repo   Repository
	cache  Cache
	policy Policy
	clock  shared.Clock
	log    *slog.Logger
}

// NewResolver cache可以为nil
func NewResolver(repo Repository, cache Cache, policy Policy, clock shared.Clock, log *slog.Logger) *Resolver {
	if !policy.IsValid() {
		policy = PolicyActive
	}
	return &Resolver{repo: repo, cache: cache, policy: policy, clock: clock, log: log}
}

// Resolve 返回可用的促销；ok为false表示不打折
func (r *Resolver) Resolve(ctx context.Context, id uint) (p *Promotion, ok bool) {
	if id == 0 {
		return nil, false
	}
	log := logger.FromContext(ctx, r.log).With("promotion_id", id)

	if r.cache != nil {
		cached, err := r.cache.Get(ctx, id)
		if err != nil {
			log.Warn("promotion cache read failed", "error", err)
		}
		p = cached
	}

	if p == nil {
		found, err := r.repo.FindByID(ctx, id)
		if err != nil {
			log.Info("promotion not applied", "reason", err.Error())
			return nil, false
		}
		p = found
		if r.cache != nil {
			if err := r.cache.Set(ctx, p); err != nil {
				log.Warn("promotion cache write failed", "error", err)
			}
		}
	}

	if r.policy == PolicyActive && !p.IsActive(r.clock()) {
		log.Info("promotion not applied", "reason", "outside validity window")
		return nil, false
	}
	return p, true
}
