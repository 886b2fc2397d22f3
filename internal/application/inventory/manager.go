package inventory

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
	"github.com/xiebiao/bookstore-core/internal/domain/shared"
	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
	"github.com/xiebiao/bookstore-core/pkg/logger"
	"github.com/xiebiao/bookstore-core/pkg/metrics"
	"github.com/xiebiao/bookstore-core/pkg/tracing"
)

const tracerName = "inventory"

// Manager 库存管理
// 副本状态只在持有行锁的事务内修改：先LockAvailable锁定，再条件更新状态。
// 所有方法都可以在调用方的事务中执行（ctx携带事务时自动加入）。
type Manager struct {
	tx      shared.Transactor
	copies  inventory.CopyRepository
	items   inventory.ItemRepository
	batches inventory.BatchRepository
	books   catalog.Repository
	log     *slog.Logger
}

// NewManager 创建库存管理器
func NewManager(
	tx shared.Transactor,
	copies inventory.CopyRepository,
	items inventory.ItemRepository,
	batches inventory.BatchRepository,
	books catalog.Repository,
	log *slog.Logger,
) *Manager {
	return &Manager{
		tx:      tx,
		copies:  copies,
		items:   items,
		batches: batches,
		books:   books,
		log:     log,
	}
}

// ReserveCopies 锁定并售出quantity本可用副本，返回副本ID（按入库顺序）
//
// 流程：
//  1. 确认图书存在，SELECT ... FOR UPDATE 锁定至多quantity个可用副本
//  2. 数量不足返回InsufficientInventoryError
//  3. 条件更新 available → sold，受影响行数必须等于锁定数量
func (m *Manager) ReserveCopies(ctx context.Context, isbn string, quantity int, rentableOnly bool) (ids []uint, err error) {
	if quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "ReserveCopies")
	span.SetAttributes(attribute.String("isbn", isbn), attribute.Int("quantity", quantity))
	defer func() { tracing.EndSpan(span, err) }()

	err = m.tx.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := m.books.FindBookByISBN(txCtx, isbn); err != nil {
			return err
		}
		locked, err := m.copies.LockAvailable(txCtx, isbn, quantity, rentableOnly)
		if err != nil {
			return err
		}
		if len(locked) < quantity {
			metrics.IncCounter(metrics.InsufficientInventoryTotal)
			return &inventory.InsufficientInventoryError{
				ISBN:      isbn,
				Requested: quantity,
				Available: int64(len(locked)),
			}
		}

		ids = make([]uint, len(locked))
		for i, c := range locked {
			ids[i] = c.ID
		}

		affected, err := m.copies.TransitionStatus(txCtx, ids, inventory.CopyStatusAvailable, inventory.CopyStatusSold)
		if err != nil {
			return err
		}
		if affected != int64(len(ids)) {
			logger.FromContext(txCtx, m.log).Error("locked copies changed status",
				"isbn", isbn, "locked", len(ids), "updated", affected)
			return apperrors.ErrInvariantViolation.WithMessagef("ISBN %s 的副本状态在锁定后发生变化", isbn)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.AddCounter(metrics.CopiesReservedTotal, len(ids))
	return ids, nil
}

// ProvisionCopies 为已有图书入库quantity本副本
// 每本副本先创建Item（类型Book，描述"{书名} - Copy {n}"），再创建状态为available的BookCopy。
// 副本归属默认库存批次，批次和负责人不存在时一并创建。
func (m *Manager) ProvisionCopies(ctx context.Context, isbn string, quantity int, unitPrice decimal.Decimal, rentable bool) (ids []uint, err error) {
	if quantity <= 0 {
		return nil, inventory.ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return nil, inventory.ErrInvalidPrice
	}

	ctx, span := tracing.StartSpan(ctx, tracerName, "ProvisionCopies")
	span.SetAttributes(attribute.String("isbn", isbn), attribute.Int("quantity", quantity))
	defer func() { tracing.EndSpan(span, err) }()

	err = m.tx.Transaction(ctx, func(txCtx context.Context) error {
		book, err := m.books.FindBookByISBN(txCtx, isbn)
		if err != nil {
			return err
		}
		batch, err := m.batches.EnsureDefault(txCtx)
		if err != nil {
			return err
		}
		existing, err := m.copies.ListByISBN(txCtx, isbn)
		if err != nil {
			return err
		}

		ids = make([]uint, 0, quantity)
		for i := 1; i <= quantity; i++ {
			item, err := inventory.NewItem(inventory.CopyDescription(book.Title, len(existing)+i), unitPrice, inventory.ItemTypeBook)
			if err != nil {
				return err
			}
			if err := m.items.Create(txCtx, item); err != nil {
				return err
			}
			if err := m.copies.Create(txCtx, inventory.NewBookCopy(item.ID, isbn, batch.ID, rentable)); err != nil {
				return err
			}
			ids = append(ids, item.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.AddCounter(metrics.CopiesProvisionedTotal, len(ids))
	logger.FromContext(ctx, m.log).Info("copies provisioned", "isbn", isbn, "count", len(ids))
	return ids, nil
}

// AvailableCount 可用副本数（不加锁，仅供参考）
func (m *Manager) AvailableCount(ctx context.Context, isbn string) (int64, error) {
	return m.copies.CountAvailable(ctx, isbn)
}

// Summary 按ISBN统计库存，isbn为空时返回全部
func (m *Manager) Summary(ctx context.Context, isbn string) ([]*inventory.StockSummary, error) {
	return m.copies.Summarize(ctx, isbn)
}

// ListCopies 某ISBN的全部副本
func (m *Manager) ListCopies(ctx context.Context, isbn string) ([]*inventory.BookCopy, error) {
	if _, err := m.books.FindBookByISBN(ctx, isbn); err != nil {
		return nil, err
	}
	return m.copies.ListByISBN(ctx, isbn)
}
