package rdb

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
	"github.com/xiebiao/bookstore-core/internal/domain/order"
	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
)

// orderRepository 订单仓储
// 订单头与明细分开写入：先插入金额为0的订单头，明细插入后再回写金额
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	db := conn(ctx, r.db)

	var n int64
	if err := db.Model(&CustomerModel{}).Where("id = ?", o.CustomerID).Count(&n).Error; err != nil {
		return classify(err, "创建订单失败")
	}
	if n == 0 {
		return catalog.ErrCustomerNotFound
	}

	model := &OrderModel{
		OrderNo:     o.OrderNo,
		CustomerID:  o.CustomerID,
		PromotionID: o.PromotionID,
		Amount:      o.Amount,
		ItemCount:   o.ItemCount,
		OrderDate:   o.OrderDate,
		CreatedAt:   o.CreatedAt,
	}
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		if isDuplicate(err) {
			return apperrors.ErrConflict.WithMessagef("订单号冲突，请重试").WithErr(err)
		}
		return classify(err, "创建订单失败")
	}
	o.ID = model.ID
	return nil
}

// AddItems 批量插入明细
func (r *orderRepository) AddItems(ctx context.Context, orderID uint, itemIDs []uint) error {
	if len(itemIDs) == 0 {
		return nil
	}
	db := conn(ctx, r.db)

	var found int64
	if err := db.Model(&ItemModel{}).Where("id IN ?", dedup(itemIDs)).Count(&found).Error; err != nil {
		return classify(err, "创建订单明细失败")
	}
	if int(found) != len(dedup(itemIDs)) {
		return inventory.ErrItemNotFound
	}

	rows := make([]OrderItemModel, len(itemIDs))
	for i, id := range itemIDs {
		rows[i] = OrderItemModel{OrderID: orderID, ItemID: id}
	}
	if err := db.Omit(clause.Associations).CreateInBatches(rows, 100).Error; err != nil {
		return classify(err, "创建订单明细失败")
	}
	return nil
}

func (r *orderRepository) UpdateTotals(ctx context.Context, orderID uint, amount decimal.Decimal, itemCount int) error {
	result := conn(ctx, r.db).Model(&OrderModel{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"amount":     amount,
		"item_count": itemCount,
	})
	if result.Error != nil {
		return classify(result.Error, "更新订单金额失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

type orderLineRow struct {
	ID          uint
	OrderID     uint
	ItemID      uint
	Description string
	Price       decimal.Decimal
	ItemType    string
	ISBN        *string
	Title       *string
}

// FindByID 订单头加明细，明细关联商品、副本和图书
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	db := conn(ctx, r.db)

	var model OrderModel
	if err := db.First(&model, id).Error; err != nil {
		return nil, notFound(err, order.ErrOrderNotFound, "查询订单失败")
	}

	var rows []orderLineRow
	err := db.Table("order_items AS oi").
		Select(`oi.id AS id, oi.order_id AS order_id, oi.item_id AS item_id,
			i.description AS description, i.price AS price, i.item_type AS item_type,
			bc.isbn AS isbn, b.title AS title`).
		Joins("JOIN items AS i ON i.id = oi.item_id").
		Joins("LEFT JOIN book_copies AS bc ON bc.item_id = oi.item_id").
		Joins("LEFT JOIN books AS b ON b.isbn = bc.isbn").
		Where("oi.order_id = ?", id).
		Order("oi.id").
		Scan(&rows).Error
	if err != nil {
		return nil, classify(err, "查询订单明细失败")
	}

	o := toOrder(&model)
	o.Items = make([]order.OrderItem, len(rows))
	for i, row := range rows {
		o.Items[i] = order.OrderItem{
			ID:          row.ID,
			OrderID:     row.OrderID,
			ItemID:      row.ItemID,
			Description: row.Description,
			Price:       row.Price,
			ItemType:    inventory.ItemType(row.ItemType),
			ISBN:        deref(row.ISBN),
			Title:       deref(row.Title),
		}
	}
	return o, nil
}

func (r *orderRepository) List(ctx context.Context, filter order.ListFilter) ([]*order.Order, int64, error) {
	filter.Normalize()
	q := conn(ctx, r.db).Model(&OrderModel{})
	if filter.CustomerID != 0 {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, classify(err, "查询订单总数失败")
	}

	var models []OrderModel
	err := q.Order("created_at DESC, id DESC").
		Limit(filter.PageSize).
		Offset((filter.Page - 1) * filter.PageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, classify(err, "查询订单列表失败")
	}

	orders := make([]*order.Order, len(models))
	for i := range models {
		orders[i] = toOrder(&models[i])
	}
	return orders, total, nil
}

func toOrder(m *OrderModel) *order.Order {
	return &order.Order{
		ID:          m.ID,
		OrderNo:     m.OrderNo,
		CustomerID:  m.CustomerID,
		PromotionID: m.PromotionID,
		Amount:      m.Amount,
		ItemCount:   m.ItemCount,
		OrderDate:   m.OrderDate,
		CreatedAt:   m.CreatedAt,
	}
}

func dedup(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
