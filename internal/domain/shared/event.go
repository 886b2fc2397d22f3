package shared

import "context"

// 事件路由键
const (
	EventOrderCreated   = "order.created"
	EventRentalCreated  = "rental.created"
	EventRentalReturned = "rental.returned"
)

// EventPublisher 领域事件发布
// 在事务提交之后调用；发布失败只记录日志，不影响已提交的业务结果
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload interface{}) error
}

