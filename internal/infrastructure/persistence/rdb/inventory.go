package rdb

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
)

// copyRepository 图书副本仓储
type copyRepository struct {
	db         *gorm.DB
	skipLocked bool
}

// NewCopyRepository skipLocked为true时锁定可用副本使用FOR UPDATE SKIP LOCKED，
// 并发下单时各事务直接拿到不同的副本，不在同一行上排队
func NewCopyRepository(db *gorm.DB, skipLocked bool) inventory.CopyRepository {
	return &copyRepository{db: db, skipLocked: skipLocked}
}

func (r *copyRepository) Create(ctx context.Context, c *inventory.BookCopy) error {
	model := &BookCopyModel{
		ItemID:   c.ID,
		ISBN:     c.ISBN,
		Status:   string(c.Status),
		Rentable: c.Rentable,
		BatchID:  c.BatchID,
	}
	if err := conn(ctx, r.db).Omit(clause.Associations).Create(model).Error; err != nil {
		return classify(err, "创建副本失败")
	}
	return nil
}

func (r *copyRepository) FindByID(ctx context.Context, id uint) (*inventory.BookCopy, error) {
	var model BookCopyModel
	if err := conn(ctx, r.db).First(&model, "item_id = ?", id).Error; err != nil {
		return nil, notFound(err, inventory.ErrCopyNotFound, "查询副本失败")
	}
	return toCopy(&model), nil
}

// LockAvailable 按item_id顺序锁定，多个事务以相同顺序加锁，避免相互死锁
func (r *copyRepository) LockAvailable(ctx context.Context, isbn string, limit int, rentableOnly bool) ([]*inventory.BookCopy, error) {
	var models []BookCopyModel
	err := lockAvailableQuery(conn(ctx, r.db), isbn, limit, rentableOnly, r.skipLocked).Find(&models).Error
	if err != nil {
		return nil, classify(err, "锁定可用副本失败")
	}
	copies := make([]*inventory.BookCopy, len(models))
	for i := range models {
		copies[i] = toCopy(&models[i])
	}
	return copies, nil
}

func lockAvailableQuery(db *gorm.DB, isbn string, limit int, rentableOnly, skipLocked bool) *gorm.DB {
	locking := clause.Locking{Strength: clause.LockingStrengthUpdate}
	if skipLocked {
		locking.Options = clause.LockingOptionsSkipLocked
	}
	q := db.Model(&BookCopyModel{}).
		Clauses(locking).
		Where("isbn = ? AND status = ?", isbn, string(inventory.CopyStatusAvailable))
	if rentableOnly {
		q = q.Where("rentable = ?", true)
	}
	return q.Order("item_id").Limit(limit)
}

// TransitionStatus UPDATE ... WHERE item_id IN ? AND status = from
func (r *copyRepository) TransitionStatus(ctx context.Context, ids []uint, from, to inventory.CopyStatus) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	if !from.CanTransitionTo(to) {
		return 0, inventory.ErrInvalidCopyStatus.WithMessagef("副本状态不能从%s变更为%s", from, to)
	}
	result := conn(ctx, r.db).Model(&BookCopyModel{}).
		Where("item_id IN ? AND status = ?", ids, string(from)).
		Update("status", string(to))
	if result.Error != nil {
		return 0, classify(result.Error, "更新副本状态失败")
	}
	return result.RowsAffected, nil
}

func (r *copyRepository) CountAvailable(ctx context.Context, isbn string) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&BookCopyModel{}).
		Where("isbn = ? AND status = ?", isbn, string(inventory.CopyStatusAvailable)).
		Count(&n).Error
	if err != nil {
		return 0, classify(err, "统计可用副本失败")
	}
	return n, nil
}

func (r *copyRepository) ListByISBN(ctx context.Context, isbn string) ([]*inventory.BookCopy, error) {
	var models []BookCopyModel
	if err := conn(ctx, r.db).Where("isbn = ?", isbn).Order("item_id").Find(&models).Error; err != nil {
		return nil, classify(err, "查询副本失败")
	}
	copies := make([]*inventory.BookCopy, len(models))
	for i := range models {
		copies[i] = toCopy(&models[i])
	}
	return copies, nil
}

type summaryRow struct {
	ISBN      string
	Title     string
	Total     int64
	Available int64
	Sold      int64
	Rented    int64
}

func (r *copyRepository) Summarize(ctx context.Context, isbn string) ([]*inventory.StockSummary, error) {
	q := conn(ctx, r.db).Table("book_copies AS bc").
		Select(`bc.isbn AS isbn, b.title AS title, COUNT(*) AS total,
			SUM(CASE WHEN bc.status = ? THEN 1 ELSE 0 END) AS available,
			SUM(CASE WHEN bc.status = ? THEN 1 ELSE 0 END) AS sold,
			SUM(CASE WHEN bc.status = ? THEN 1 ELSE 0 END) AS rented`,
			string(inventory.CopyStatusAvailable), string(inventory.CopyStatusSold), string(inventory.CopyStatusRented)).
		Joins("JOIN books AS b ON b.isbn = bc.isbn").
		Group("bc.isbn, b.title").
		Order("bc.isbn")
	if isbn != "" {
		q = q.Where("bc.isbn = ?", isbn)
	}

	var rows []summaryRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, classify(err, "统计库存失败")
	}
	out := make([]*inventory.StockSummary, len(rows))
	for i, row := range rows {
		out[i] = &inventory.StockSummary{
			ISBN:      row.ISBN,
			Title:     row.Title,
			Total:     row.Total,
			Available: row.Available,
			Sold:      row.Sold,
			Rented:    row.Rented,
		}
	}
	return out, nil
}

func toCopy(m *BookCopyModel) *inventory.BookCopy {
	return &inventory.BookCopy{
		ID:       m.ItemID,
		ISBN:     m.ISBN,
		BatchID:  m.BatchID,
		Rentable: m.Rentable,
		Status:   inventory.CopyStatus(m.Status),
	}
}

// itemRepository 商品仓储
type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository 创建商品仓储
func NewItemRepository(db *gorm.DB) inventory.ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) Create(ctx context.Context, item *inventory.Item) error {
	model := &ItemModel{Description: item.Description, Price: item.Price, ItemType: string(item.Type)}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return classify(err, "创建商品失败")
	}
	item.ID = model.ID
	return nil
}

func (r *itemRepository) FindByID(ctx context.Context, id uint) (*inventory.Item, error) {
	var model ItemModel
	if err := conn(ctx, r.db).First(&model, id).Error; err != nil {
		return nil, notFound(err, inventory.ErrItemNotFound, "查询商品失败")
	}
	return toItem(&model), nil
}

func (r *itemRepository) FindByIDs(ctx context.Context, ids []uint) ([]*inventory.Item, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []ItemModel
	if err := conn(ctx, r.db).Where("id IN ?", ids).Order("id").Find(&models).Error; err != nil {
		return nil, classify(err, "查询商品失败")
	}
	items := make([]*inventory.Item, len(models))
	for i := range models {
		items[i] = toItem(&models[i])
	}
	return items, nil
}

func (r *itemRepository) List(ctx context.Context, itemType inventory.ItemType) ([]*inventory.Item, error) {
	q := conn(ctx, r.db).Order("id")
	if itemType != "" {
		q = q.Where("item_type = ?", string(itemType))
	}
	var models []ItemModel
	if err := q.Find(&models).Error; err != nil {
		return nil, classify(err, "查询商品列表失败")
	}
	items := make([]*inventory.Item, len(models))
	for i := range models {
		items[i] = toItem(&models[i])
	}
	return items, nil
}

func toItem(m *ItemModel) *inventory.Item {
	return &inventory.Item{
		ID:          m.ID,
		Description: m.Description,
		Price:       m.Price,
		Type:        inventory.ItemType(m.ItemType),
	}
}

// batchRepository 库存批次
type batchRepository struct {
	db *gorm.DB
}

// NewBatchRepository 创建批次仓储
func NewBatchRepository(db *gorm.DB) inventory.BatchRepository {
	return &batchRepository{db: db}
}

// EnsureDefault INSERT ... ON CONFLICT DO NOTHING 后再读取，
// 并发初始化时只有一个事务真正插入，其余读到同一行
func (r *batchRepository) EnsureDefault(ctx context.Context) (*inventory.Batch, error) {
	db := conn(ctx, r.db)

	var batch BatchModel
	err := db.Where("code = ?", inventory.DefaultBatchCode).Take(&batch).Error
	if err == nil {
		return toBatch(&batch), nil
	}
	if !isNotFound(err) {
		return nil, classify(err, "查询默认库存批次失败")
	}

	employee := EmployeeModel{Name: inventory.DefaultEmployeeName}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&employee).Error; err != nil {
		return nil, classify(err, "创建默认员工失败")
	}
	if err := db.Where("name = ?", inventory.DefaultEmployeeName).Take(&employee).Error; err != nil {
		return nil, classify(err, "查询默认员工失败")
	}

	batch = BatchModel{Code: inventory.DefaultBatchCode, EmployeeID: employee.ID}
	if err := db.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&batch).Error; err != nil {
		return nil, classify(err, "创建默认库存批次失败")
	}
	if err := db.Where("code = ?", inventory.DefaultBatchCode).Take(&batch).Error; err != nil {
		return nil, classify(err, "查询默认库存批次失败")
	}
	return toBatch(&batch), nil
}

func toBatch(m *BatchModel) *inventory.Batch {
	return &inventory.Batch{ID: m.ID, Code: m.Code, EmployeeID: m.EmployeeID}
}
