package main

import (
	"context"
	"log/slog"

	"github.com/xiebiao/bookstore-core/internal/application/rental"
	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
	"github.com/xiebiao/bookstore-core/internal/domain/promotion"
	domainrental "github.com/xiebiao/bookstore-core/internal/domain/rental"
	"github.com/xiebiao/bookstore-core/internal/domain/shared"
	"github.com/xiebiao/bookstore-core/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-core/internal/infrastructure/messaging"
	"github.com/xiebiao/bookstore-core/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bookstore-core/pkg/circuitbreaker"
	"github.com/xiebiao/bookstore-core/pkg/mq"
)

// 这些Provider需要从Config中取参数，或者根据开关选择实现，Wire无法直接推导

func provideClock() shared.Clock {
	return shared.SystemClock()
}

// providePromotionCache redis.enabled=false时不使用缓存
func providePromotionCache(cfg *config.Config, log *slog.Logger) (promotion.Cache, func(), error) {
	if !cfg.Redis.Enabled {
		return nil, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Redis.DialTimeout)
	defer cancel()
	client, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warn("close redis client failed", "error", err)
		}
	}
	return redis.NewPromotionCache(client, cfg.Business.PromotionCacheTTL), cleanup, nil
}

func providePromotionResolver(
	repo promotion.Repository,
	cache promotion.Cache,
	cfg *config.Config,
	clock shared.Clock,
	log *slog.Logger,
) *promotion.Resolver {
	return promotion.NewResolver(repo, cache, promotion.Policy(cfg.Business.PromotionPolicy), clock, log)
}

// provideEventPublisher rabbitmq.enabled=false时事件只记日志
func provideEventPublisher(cfg *config.Config, log *slog.Logger) (shared.EventPublisher, func(), error) {
	if !cfg.RabbitMQ.Enabled {
		return messaging.NewNoopPublisher(log), func() {}, nil
	}

	sender, err := mq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, "topic", log)
	if err != nil {
		return nil, nil, err
	}
	breaker := circuitbreaker.NewCircuitBreaker("event-publisher", circuitbreaker.DefaultConfig())
	cleanup := func() {
		if err := sender.Close(); err != nil {
			log.Warn("close message publisher failed", "error", err)
		}
	}
	return messaging.NewEventPublisher(sender, breaker, log), cleanup, nil
}

func provideCreateRentalUseCase(
	tx shared.Transactor,
	copies inventory.CopyRepository,
	rentals domainrental.Repository,
	customers catalog.Repository,
	publisher shared.EventPublisher,
	clock shared.Clock,
	cfg *config.Config,
	log *slog.Logger,
) *rental.CreateRentalUseCase {
	return rental.NewCreateRentalUseCase(tx, copies, rentals, customers, publisher, clock, cfg.Business.RentalPeriod, log)
}
