package inmemory

import (
	"context"
	"sort"

	"github.com/hashicorp/go-memdb"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
)

type itemRecord struct {
	ID          uint
	Description string
	Price       decimal.Decimal
	Type        string
}

type copyRecord struct {
	ID       uint
	ISBN     string
	BatchID  uint
	Rentable bool
	Status   string
}

type employeeRecord struct {
	ID   uint
	Name string
}

type batchRecord struct {
	ID         uint
	Code       string
	EmployeeID uint
}

func toCopy(r *copyRecord) *inventory.BookCopy {
	return &inventory.BookCopy{
		ID:       r.ID,
		ISBN:     r.ISBN,
		BatchID:  r.BatchID,
		Rentable: r.Rentable,
		Status:   inventory.CopyStatus(r.Status),
	}
}

func toItem(r *itemRecord) *inventory.Item {
	return &inventory.Item{ID: r.ID, Description: r.Description, Price: r.Price, Type: inventory.ItemType(r.Type)}
}

// copyRepository 副本仓储
type copyRepository struct {
	s *Store
}

// NewCopyRepository 创建副本仓储
func NewCopyRepository(s *Store) inventory.CopyRepository {
	return &copyRepository{s: s}
}

func (r *copyRepository) Create(ctx context.Context, c *inventory.BookCopy) error {
	err := r.s.write(ctx, func(txn *memdb.Txn) error {
		item, err := first[itemRecord](txn, tableItems, "id", c.ID)
		if err != nil {
			return err
		}
		if item == nil {
			return inventory.ErrItemNotFound
		}
		return txn.Insert(tableCopies, &copyRecord{
			ID: c.ID, ISBN: c.ISBN, BatchID: c.BatchID, Rentable: c.Rentable, Status: string(c.Status),
		})
	})
	if err != nil {
		return wrapErr(err, "创建副本失败")
	}
	return nil
}

func (r *copyRepository) FindByID(ctx context.Context, id uint) (*inventory.BookCopy, error) {
	txn, done := r.s.read(ctx)
	defer done()
	rec, err := first[copyRecord](txn, tableCopies, "id", id)
	if err != nil {
		return nil, dbError(err, "查询副本失败")
	}
	if rec == nil {
		return nil, inventory.ErrCopyNotFound
	}
	return toCopy(rec), nil
}

// LockAvailable 写事务本身是排他的，这里只需按ID顺序挑选
func (r *copyRepository) LockAvailable(ctx context.Context, isbn string, limit int, rentableOnly bool) ([]*inventory.BookCopy, error) {
	txn, done := r.s.read(ctx)
	defer done()

	recs, err := collect[copyRecord](txn, tableCopies, "isbn_status", isbn, string(inventory.CopyStatusAvailable))
	if err != nil {
		return nil, dbError(err, "查询可用副本失败")
	}
	sortByID(recs, func(c *copyRecord) uint { return c.ID })

	copies := make([]*inventory.BookCopy, 0, limit)
	for _, rec := range recs {
		if len(copies) == limit {
			break
		}
		if rentableOnly && !rec.Rentable {
			continue
		}
		copies = append(copies, toCopy(rec))
	}
	return copies, nil
}

func (r *copyRepository) TransitionStatus(ctx context.Context, ids []uint, from, to inventory.CopyStatus) (int64, error) {
	var affected int64
	err := r.s.write(ctx, func(txn *memdb.Txn) error {
		for _, id := range ids {
			rec, err := first[copyRecord](txn, tableCopies, "id", id)
			if err != nil {
				return err
			}
			if rec == nil || rec.Status != string(from) {
				continue
			}
			updated := *rec
			updated.Status = string(to)
			if err := txn.Insert(tableCopies, &updated); err != nil {
				return err
			}
			affected++
		}
		return nil
	})
	if err != nil {
		return 0, dbError(err, "更新副本状态失败")
	}
	return affected, nil
}

func (r *copyRepository) CountAvailable(ctx context.Context, isbn string) (int64, error) {
	txn, done := r.s.read(ctx)
	defer done()
	recs, err := collect[copyRecord](txn, tableCopies, "isbn_status", isbn, string(inventory.CopyStatusAvailable))
	if err != nil {
		return 0, dbError(err, "统计可用副本失败")
	}
	return int64(len(recs)), nil
}

func (r *copyRepository) ListByISBN(ctx context.Context, isbn string) ([]*inventory.BookCopy, error) {
	txn, done := r.s.read(ctx)
	defer done()
	recs, err := collect[copyRecord](txn, tableCopies, "isbn", isbn)
	if err != nil {
		return nil, dbError(err, "查询副本列表失败")
	}
	sortByID(recs, func(c *copyRecord) uint { return c.ID })
	copies := make([]*inventory.BookCopy, len(recs))
	for i, rec := range recs {
		copies[i] = toCopy(rec)
	}
	return copies, nil
}

func (r *copyRepository) Summarize(ctx context.Context, isbn string) ([]*inventory.StockSummary, error) {
	txn, done := r.s.read(ctx)
	defer done()

	var (
		recs []*copyRecord
		err  error
	)
	if isbn != "" {
		recs, err = collect[copyRecord](txn, tableCopies, "isbn", isbn)
	} else {
		recs, err = collect[copyRecord](txn, tableCopies, "id")
	}
	if err != nil {
		return nil, dbError(err, "统计库存失败")
	}

	byISBN := make(map[string]*inventory.StockSummary)
	for _, rec := range recs {
		s, ok := byISBN[rec.ISBN]
		if !ok {
			s = &inventory.StockSummary{ISBN: rec.ISBN}
			if book, _ := first[bookRecord](txn, tableBooks, "id", rec.ISBN); book != nil {
				s.Title = book.Title
			}
			byISBN[rec.ISBN] = s
		}
		s.Total++
		switch inventory.CopyStatus(rec.Status) {
		case inventory.CopyStatusAvailable:
			s.Available++
		case inventory.CopyStatusSold:
			s.Sold++
		case inventory.CopyStatusRented:
			s.Rented++
		}
	}

	out := make([]*inventory.StockSummary, 0, len(byISBN))
	for _, s := range byISBN {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ISBN < out[j].ISBN })
	return out, nil
}

// itemRepository 商品仓储
type itemRepository struct {
	s *Store
}

// NewItemRepository 创建商品仓储
func NewItemRepository(s *Store) inventory.ItemRepository {
	return &itemRepository{s: s}
}

func (r *itemRepository) Create(ctx context.Context, item *inventory.Item) error {
	err := r.s.write(ctx, func(txn *memdb.Txn) error {
		id, err := nextID(txn, tableItems)
		if err != nil {
			return err
		}
		if err := txn.Insert(tableItems, &itemRecord{
			ID: id, Description: item.Description, Price: item.Price, Type: string(item.Type),
		}); err != nil {
			return err
		}
		item.ID = id
		return nil
	})
	if err != nil {
		return dbError(err, "创建商品失败")
	}
	return nil
}

func (r *itemRepository) FindByID(ctx context.Context, id uint) (*inventory.Item, error) {
	txn, done := r.s.read(ctx)
	defer done()
	rec, err := first[itemRecord](txn, tableItems, "id", id)
	if err != nil {
		return nil, dbError(err, "查询商品失败")
	}
	if rec == nil {
		return nil, inventory.ErrItemNotFound
	}
	return toItem(rec), nil
}

func (r *itemRepository) FindByIDs(ctx context.Context, ids []uint) ([]*inventory.Item, error) {
	txn, done := r.s.read(ctx)
	defer done()
	items := make([]*inventory.Item, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		rec, err := first[itemRecord](txn, tableItems, "id", id)
		if err != nil {
			return nil, dbError(err, "查询商品失败")
		}
		if rec != nil {
			items = append(items, toItem(rec))
		}
	}
	return items, nil
}

func (r *itemRepository) List(ctx context.Context, itemType inventory.ItemType) ([]*inventory.Item, error) {
	txn, done := r.s.read(ctx)
	defer done()

	var (
		recs []*itemRecord
		err  error
	)
	if itemType != "" {
		recs, err = collect[itemRecord](txn, tableItems, "type", string(itemType))
	} else {
		recs, err = collect[itemRecord](txn, tableItems, "id")
	}
	if err != nil {
		return nil, dbError(err, "查询商品列表失败")
	}
	sortByID(recs, func(i *itemRecord) uint { return i.ID })
	items := make([]*inventory.Item, len(recs))
	for i, rec := range recs {
		items[i] = toItem(rec)
	}
	return items, nil
}

// batchRepository 库存批次
type batchRepository struct {
	s *Store
}

// NewBatchRepository 创建批次仓储
func NewBatchRepository(s *Store) inventory.BatchRepository {
	return &batchRepository{s: s}
}

func (r *batchRepository) EnsureDefault(ctx context.Context) (*inventory.Batch, error) {
	var batch *inventory.Batch
	err := r.s.write(ctx, func(txn *memdb.Txn) error {
		rec, err := first[batchRecord](txn, tableBatches, "code", inventory.DefaultBatchCode)
		if err != nil {
			return err
		}
		if rec == nil {
			emp, err := first[employeeRecord](txn, tableEmployees, "name", inventory.DefaultEmployeeName)
			if err != nil {
				return err
			}
			if emp == nil {
				id, err := nextID(txn, tableEmployees)
				if err != nil {
					return err
				}
				emp = &employeeRecord{ID: id, Name: inventory.DefaultEmployeeName}
				if err := txn.Insert(tableEmployees, emp); err != nil {
					return err
				}
			}
			id, err := nextID(txn, tableBatches)
			if err != nil {
				return err
			}
			rec = &batchRecord{ID: id, Code: inventory.DefaultBatchCode, EmployeeID: emp.ID}
			if err := txn.Insert(tableBatches, rec); err != nil {
				return err
			}
		}
		batch = &inventory.Batch{ID: rec.ID, Code: rec.Code, EmployeeID: rec.EmployeeID}
		return nil
	})
	if err != nil {
		return nil, dbError(err, "初始化默认库存批次失败")
	}
	return batch, nil
}
