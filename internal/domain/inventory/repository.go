package inventory

import "context"

// CopyRepository 图书副本仓储
// 所有修改副本状态的方法都应在事务内、持有行锁时调用
type CopyRepository interface {
	Create(ctx context.Context, c *BookCopy) error
	FindByID(ctx context.Context, id uint) (*BookCopy, error)

	// LockAvailable 按入库顺序锁定至多limit个可用副本（SELECT ... FOR UPDATE）
	// rentableOnly为true时只选择可租借副本
	LockAvailable(ctx context.Context, isbn string, limit int, rentableOnly bool) ([]*BookCopy, error)

	// TransitionStatus 条件更新：仅把当前状态为from的副本改为to，返回受影响行数
	TransitionStatus(ctx context.Context, ids []uint, from, to CopyStatus) (int64, error)

	// CountAvailable 可用副本数量（不加锁）
	CountAvailable(ctx context.Context, isbn string) (int64, error)

	ListByISBN(ctx context.Context, isbn string) ([]*BookCopy, error)

	// Summarize 按ISBN统计各状态数量，isbn为空时统计全部
	Summarize(ctx context.Context, isbn string) ([]*StockSummary, error)
}

// ItemRepository 商品仓储
type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	FindByID(ctx context.Context, id uint) (*Item, error)
	// FindByIDs 按ID批量查询，返回顺序与ids无关
	FindByIDs(ctx context.Context, ids []uint) ([]*Item, error)
	// List itemType为空时返回全部
	List(ctx context.Context, itemType ItemType) ([]*Item, error)
}

// BatchRepository 库存批次
type BatchRepository interface {
	// EnsureDefault 获取默认批次，不存在时连同默认员工一起创建（幂等）
	EnsureDefault(ctx context.Context) (*Batch, error)
}
