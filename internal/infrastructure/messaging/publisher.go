// Package messaging 领域事件发布
package messaging

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/xiebiao/bookstore-core/internal/domain/shared"
	"github.com/xiebiao/bookstore-core/pkg/circuitbreaker"
	"github.com/xiebiao/bookstore-core/pkg/metrics"
)

const defaultPublishTimeout = 3 * time.Second

// Sender 底层消息发送（*mq.Publisher）
type Sender interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// EventPublisher 带熔断的事件发布
// 事件在事务提交之后发布：请求ctx可能随响应结束被取消，这里脱离其取消信号，另设超时。
// RabbitMQ不可用时熔断器打开，后续事件直接丢弃并计数，不阻塞业务请求。
type EventPublisher struct {
	sender  Sender
	breaker *circuitbreaker.CircuitBreaker
	timeout time.Duration
	log     *slog.Logger
}

var _ shared.EventPublisher = (*EventPublisher)(nil)

// NewEventPublisher 创建事件发布者
func NewEventPublisher(sender Sender, breaker *circuitbreaker.CircuitBreaker, log *slog.Logger) *EventPublisher {
	breaker.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		metrics.SetGaugeVec(metrics.CircuitBreakerState, map[string]string{"name": name}, float64(to))
		log.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
	})
	return &EventPublisher{sender: sender, breaker: breaker, timeout: defaultPublishTimeout, log: log}
}

func (p *EventPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	err := p.breaker.Execute(func() error {
		return p.sender.Publish(ctx, routingKey, payload)
	})

	result := metrics.ResultSuccess
	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		result = metrics.ResultRejected
	case err != nil:
		result = metrics.ResultFailure
	}
	metrics.IncCounterVec(metrics.MessagesPublishedTotal, map[string]string{"routing_key": routingKey, "result": result})
	metrics.IncCounterVec(metrics.CircuitBreakerRequests, map[string]string{"name": p.breaker.Name(), "result": result})
	return err
}

// NoopPublisher 未启用RabbitMQ时使用，只记录日志
type NoopPublisher struct {
	log *slog.Logger
}

// NewNoopPublisher 创建空发布者
func NewNoopPublisher(log *slog.Logger) *NoopPublisher {
	return &NoopPublisher{log: log}
}

func (p *NoopPublisher) Publish(_ context.Context, routingKey string, _ interface{}) error {
	p.log.Debug("event dropped, messaging disabled", "routing_key", routingKey)
	return nil
}
