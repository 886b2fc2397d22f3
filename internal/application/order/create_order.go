package order

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
	"github.com/xiebiao/bookstore-core/internal/domain/order"
	"github.com/xiebiao/bookstore-core/internal/domain/promotion"
	"github.com/xiebiao/bookstore-core/internal/domain/shared"
	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
	"github.com/xiebiao/bookstore-core/pkg/logger"
	"github.com/xiebiao/bookstore-core/pkg/metrics"
	"github.com/xiebiao/bookstore-core/pkg/tracing"
)

const tracerName = "order"

// CopyReserver 图书副本预留（由库存管理器实现）
type CopyReserver interface {
	AvailableCount(ctx context.Context, isbn string) (int64, error)
	ReserveCopies(ctx context.Context, isbn string, quantity int, rentableOnly bool) ([]uint, error)
}

// PromotionResolver 促销解析，解析失败视为不打折
type PromotionResolver interface {
	Resolve(ctx context.Context, id uint) (*promotion.Promotion, bool)
}

// CreateOrderUseCase 创建订单用例
//
// 整个下单过程在一个事务内完成，任何一步失败都整体回滚：
//  1. 图书行：确认图书存在，先做不加锁的数量预检，再由库存管理器加锁预留（available → sold）
//  2. 商品行：校验商品存在，数量为n则重复n次
//  3. 插入金额为0的订单头，每个预留到的Item插入一条明细
//  4. 按明细价格重新计算金额和数量，应用促销折扣后回写
//
// 促销在事务开始前解析：查询失败不会让事务进入不可用状态。
type CreateOrderUseCase struct {
	tx         shared.Transactor
	reserver   CopyReserver
	items      inventory.ItemRepository
	orders     order.Repository
	catalog    catalog.Repository
	promotions PromotionResolver
	publisher  shared.EventPublisher
	clock      shared.Clock
	log        *slog.Logger
}

// NewCreateOrderUseCase 创建下单用例
func NewCreateOrderUseCase(
	tx shared.Transactor,
	reserver CopyReserver,
	items inventory.ItemRepository,
	orders order.Repository,
	catalogRepo catalog.Repository,
	promotions PromotionResolver,
	publisher shared.EventPublisher,
	clock shared.Clock,
	log *slog.Logger,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		tx:         tx,
		reserver:   reserver,
		items:      items,
		orders:     orders,
		catalog:    catalogRepo,
		promotions: promotions,
		publisher:  publisher,
		clock:      clock,
		log:        log,
	}
}

// Execute 执行下单
func (uc *CreateOrderUseCase) Execute(ctx context.Context, req CreateOrderRequest) (result *OrderDetail, err error) {
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateOrder")
	span.SetAttributes(
		attribute.Int("customer_id", int(req.CustomerID)),
		attribute.Int("line_count", len(req.Lines)),
	)
	defer func() {
		tracing.EndSpan(span, err)
		metrics.IncCounterVec(metrics.OrdersTotal, map[string]string{"result": resultLabel(err)})
		metrics.ObserveHistogram(metrics.OrderCreationDuration, time.Since(start).Seconds())
	}()

	if len(req.Lines) == 0 {
		return nil, order.ErrInvalidOrderItems
	}
	for _, line := range req.Lines {
		if err := line.Validate(); err != nil {
			return nil, err
		}
	}

	var (
		promo    *promotion.Promotion
		discount *decimal.Decimal
	)
	if req.PromotionID != nil {
		if p, ok := uc.promotions.Resolve(ctx, *req.PromotionID); ok {
			promo = p
			discount = &p.DiscountPercent
		}
	}

	log := logger.FromContext(ctx, uc.log).With("customer_id", req.CustomerID)
	now := uc.clock()

	var created *order.Order
	err = uc.tx.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := uc.catalog.FindCustomerByID(txCtx, req.CustomerID); err != nil {
			return err
		}

		itemIDs, err := uc.reserveLines(txCtx, req.Lines)
		if err != nil {
			return err
		}

		o := order.NewOrder(order.GenerateOrderNo(now), req.CustomerID, now)
		if promo != nil {
			id := promo.ID
			o.PromotionID = &id
		}
		if err := uc.orders.Create(txCtx, o); err != nil {
			return err
		}
		if err := uc.orders.AddItems(txCtx, o.ID, itemIDs); err != nil {
			return err
		}

		prices, err := uc.pricesOf(txCtx, itemIDs)
		if err != nil {
			return err
		}
		o.Recalculate(prices, discount)
		if err := uc.orders.UpdateTotals(txCtx, o.ID, o.Amount, o.ItemCount); err != nil {
			return err
		}

		created, err = uc.orders.FindByID(txCtx, o.ID)
		return err
	})
	if err != nil {
		if apperrors.IsClientError(err) {
			log.Info("order rejected", "error", err.Error())
		}
		return nil, err
	}

	log.Info("order created",
		"order_id", created.ID,
		"order_no", created.OrderNo,
		"amount", created.Amount.StringFixed(2),
		"item_count", created.ItemCount,
	)
	publishOrderCreated(ctx, uc.publisher, log, created)

	result = toDetail(created)
	result.DiscountPercent = discount
	return result, nil
}

// reserveLines 依次处理每一行，返回全部Item ID（含重复的商品ID）
func (uc *CreateOrderUseCase) reserveLines(ctx context.Context, lines []order.LineRequest) ([]uint, error) {
	var itemIDs []uint
	for _, line := range lines {
		if line.IsBook() {
			if _, err := uc.catalog.FindBookByISBN(ctx, line.ISBN); err != nil {
				return nil, err
			}
			// 预检只为尽早给出友好的错误，真正的判断在加锁预留时完成
			available, err := uc.reserver.AvailableCount(ctx, line.ISBN)
			if err != nil {
				return nil, err
			}
			if available < int64(line.Quantity) {
				metrics.IncCounter(metrics.InsufficientInventoryTotal)
				return nil, &inventory.InsufficientInventoryError{
					ISBN:      line.ISBN,
					Requested: line.Quantity,
					Available: available,
				}
			}
			ids, err := uc.reserver.ReserveCopies(ctx, line.ISBN, line.Quantity, false)
			if err != nil {
				return nil, err
			}
			itemIDs = append(itemIDs, ids...)
			continue
		}

		item, err := uc.items.FindByID(ctx, line.ItemID)
		if err != nil {
			return nil, err
		}
		if item.Type == inventory.ItemTypeBook {
			return nil, order.ErrCopyAsItem.WithMessagef("商品%d是图书副本，请按isbn下单", item.ID)
		}
		for i := 0; i < line.Quantity; i++ {
			itemIDs = append(itemIDs, item.ID)
		}
	}
	return itemIDs, nil
}

// pricesOf 按itemIDs顺序返回价格
func (uc *CreateOrderUseCase) pricesOf(ctx context.Context, itemIDs []uint) ([]decimal.Decimal, error) {
	items, err := uc.items.FindByIDs(ctx, itemIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]decimal.Decimal, len(items))
	for _, it := range items {
		byID[it.ID] = it.Price
	}

	prices := make([]decimal.Decimal, len(itemIDs))
	for i, id := range itemIDs {
		p, ok := byID[id]
		if !ok {
			return nil, apperrors.ErrInvariantViolation.WithMessagef("订单明细引用的商品%d不存在", id)
		}
		prices[i] = p
	}
	return prices, nil
}

func publishOrderCreated(ctx context.Context, p shared.EventPublisher, log *slog.Logger, o *order.Order) {
	event := order.CreatedEvent{
		OrderID:     o.ID,
		OrderNo:     o.OrderNo,
		CustomerID:  o.CustomerID,
		Amount:      o.Amount.StringFixed(2),
		ItemCount:   o.ItemCount,
		PromotionID: o.PromotionID,
	}
	if err := p.Publish(ctx, shared.EventOrderCreated, event); err != nil {
		log.Warn("publish event failed", "routing_key", shared.EventOrderCreated, "error", err)
	}
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.ResultSuccess
	case apperrors.IsClientError(err):
		return metrics.ResultRejected
	default:
		return metrics.ResultFailure
	}
}
