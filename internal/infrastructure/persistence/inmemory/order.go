package inmemory

import (
	"context"
	"sort"
	"time"

	"github.com/hashicorp/go-memdb"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
	"github.com/xiebiao/bookstore-core/internal/domain/order"
	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
)

type orderRecord struct {
	ID          uint
	OrderNo     string
	CustomerID  uint
	PromotionID *uint
	Amount      decimal.Decimal
	ItemCount   int
	OrderDate   time.Time
	CreatedAt   time.Time
}

type orderItemRecord struct {
	ID      uint
	OrderID uint
	ItemID  uint
}

// orderRepository 订单仓储
type orderRepository struct {
	s *Store
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(s *Store) order.Repository {
	return &orderRepository{s: s}
}

func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	err := r.s.write(ctx, func(txn *memdb.Txn) error {
		customer, err := first[customerRecord](txn, tableCustomers, "id", o.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return catalog.ErrCustomerNotFound
		}
		dup, err := first[orderRecord](txn, tableOrders, "order_no", o.OrderNo)
		if err != nil {
			return err
		}
		if dup != nil {
			return apperrors.ErrConflict.WithMessagef("订单号冲突，请重试")
		}

		id, err := nextID(txn, tableOrders)
		if err != nil {
			return err
		}
		if err := txn.Insert(tableOrders, &orderRecord{
			ID:          id,
			OrderNo:     o.OrderNo,
			CustomerID:  o.CustomerID,
			PromotionID: o.PromotionID,
			Amount:      o.Amount,
			ItemCount:   o.ItemCount,
			OrderDate:   o.OrderDate,
			CreatedAt:   o.CreatedAt,
		}); err != nil {
			return err
		}
		o.ID = id
		return nil
	})
	return wrapErr(err, "创建订单失败")
}

func (r *orderRepository) AddItems(ctx context.Context, orderID uint, itemIDs []uint) error {
	err := r.s.write(ctx, func(txn *memdb.Txn) error {
		for _, itemID := range itemIDs {
			item, err := first[itemRecord](txn, tableItems, "id", itemID)
			if err != nil {
				return err
			}
			if item == nil {
				return inventory.ErrItemNotFound
			}
			id, err := nextID(txn, tableOrderItems)
			if err != nil {
				return err
			}
			if err := txn.Insert(tableOrderItems, &orderItemRecord{ID: id, OrderID: orderID, ItemID: itemID}); err != nil {
				return err
			}
		}
		return nil
	})
	return wrapErr(err, "创建订单明细失败")
}

func (r *orderRepository) UpdateTotals(ctx context.Context, orderID uint, amount decimal.Decimal, itemCount int) error {
	err := r.s.write(ctx, func(txn *memdb.Txn) error {
		rec, err := first[orderRecord](txn, tableOrders, "id", orderID)
		if err != nil {
			return err
		}
		if rec == nil {
			return order.ErrOrderNotFound
		}
		updated := *rec
		updated.Amount = amount
		updated.ItemCount = itemCount
		return txn.Insert(tableOrders, &updated)
	})
	return wrapErr(err, "更新订单金额失败")
}

func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	txn, done := r.s.read(ctx)
	defer done()

	rec, err := first[orderRecord](txn, tableOrders, "id", id)
	if err != nil {
		return nil, dbError(err, "查询订单失败")
	}
	if rec == nil {
		return nil, order.ErrOrderNotFound
	}

	o := toOrder(rec)
	lines, err := collect[orderItemRecord](txn, tableOrderItems, "order", id)
	if err != nil {
		return nil, dbError(err, "查询订单明细失败")
	}
	sortByID(lines, func(l *orderItemRecord) uint { return l.ID })

	for _, l := range lines {
		oi := order.OrderItem{ID: l.ID, OrderID: l.OrderID, ItemID: l.ItemID}
		if item, _ := first[itemRecord](txn, tableItems, "id", l.ItemID); item != nil {
			oi.Description = item.Description
			oi.Price = item.Price
			oi.ItemType = inventory.ItemType(item.Type)
		}
		if c, _ := first[copyRecord](txn, tableCopies, "id", l.ItemID); c != nil {
			oi.ISBN = c.ISBN
			if b, _ := first[bookRecord](txn, tableBooks, "id", c.ISBN); b != nil {
				oi.Title = b.Title
			}
		}
		o.Items = append(o.Items, oi)
	}
	return o, nil
}

func (r *orderRepository) List(ctx context.Context, filter order.ListFilter) ([]*order.Order, int64, error) {
	filter.Normalize()
	txn, done := r.s.read(ctx)
	defer done()

	var (
		recs []*orderRecord
		err  error
	)
	if filter.CustomerID != 0 {
		recs, err = collect[orderRecord](txn, tableOrders, "customer", filter.CustomerID)
	} else {
		recs, err = collect[orderRecord](txn, tableOrders, "id")
	}
	if err != nil {
		return nil, 0, dbError(err, "查询订单列表失败")
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].ID > recs[j].ID
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})

	total := int64(len(recs))
	start := (filter.Page - 1) * filter.PageSize
	if start > len(recs) {
		start = len(recs)
	}
	end := start + filter.PageSize
	if end > len(recs) {
		end = len(recs)
	}

	orders := make([]*order.Order, 0, end-start)
	for _, rec := range recs[start:end] {
		orders = append(orders, toOrder(rec))
	}
	return orders, total, nil
}

func toOrder(rec *orderRecord) *order.Order {
	return &order.Order{
		ID:          rec.ID,
		OrderNo:     rec.OrderNo,
		CustomerID:  rec.CustomerID,
		PromotionID: rec.PromotionID,
		Amount:      rec.Amount,
		ItemCount:   rec.ItemCount,
		OrderDate:   rec.OrderDate,
		CreatedAt:   rec.CreatedAt,
	}
}
