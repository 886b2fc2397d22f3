package shared

import "context"

// Transactor 事务边界
// fn内通过ctx执行的仓储操作处于同一事务；fn返回error时回滚，返回nil时提交。
// 实现需支持嵌套调用：ctx已携带事务时复用（或以savepoint嵌套）外层事务。
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}
