// Package inmemory 基于hashicorp/go-memdb的存储实现
//
// 用于本地开发(database.driver=memory)和测试。go-memdb同一时刻只允许一个写事务，
// 因此Transaction内的所有读写天然串行化，等价于对全部行持有排他锁；
// 读事务基于不可变快照，不会阻塞。
package inmemory

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-memdb"

	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
)

const (
	tableSeq        = "seq"
	tableItems      = "items"
	tableCopies     = "copies"
	tableEmployees  = "employees"
	tableBatches    = "batches"
	tableBooks      = "books"
	tableAuthors    = "authors"
	tableCustomers  = "customers"
	tableReviews    = "reviews"
	tableOrders     = "orders"
	tableOrderItems = "order_items"
	tableRentals    = "rentals"
	tablePromotions = "promotions"
)

// Store 内存数据库
type Store struct {
	db *memdb.MemDB
}

func idIndex() *memdb.IndexSchema {
	return &memdb.IndexSchema{Name: "id", Unique: true, Indexer: &memdb.UintFieldIndex{Field: "ID"}}
}

func uintIndex(name, field string) *memdb.IndexSchema {
	return &memdb.IndexSchema{Name: name, Indexer: &memdb.UintFieldIndex{Field: field}}
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableSeq: {
				Name: tableSeq,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Table"}},
				},
			},
			tableItems: {
				Name: tableItems,
				Indexes: map[string]*memdb.IndexSchema{
					"id":   idIndex(),
					"type": {Name: "type", Indexer: &memdb.StringFieldIndex{Field: "Type"}},
				},
			},
			tableCopies: {
				Name: tableCopies,
				Indexes: map[string]*memdb.IndexSchema{
					"id":   idIndex(),
					"isbn": {Name: "isbn", Indexer: &memdb.StringFieldIndex{Field: "ISBN"}},
					"isbn_status": {
						Name: "isbn_status",
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "ISBN"},
								&memdb.StringFieldIndex{Field: "Status"},
							},
						},
					},
				},
			},
			tableEmployees: {
				Name: tableEmployees,
				Indexes: map[string]*memdb.IndexSchema{
					"id":   idIndex(),
					"name": {Name: "name", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Name"}},
				},
			},
			tableBatches: {
				Name: tableBatches,
				Indexes: map[string]*memdb.IndexSchema{
					"id":   idIndex(),
					"code": {Name: "code", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Code"}},
				},
			},
			tableBooks: {
				Name: tableBooks,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ISBN"}},
				},
			},
			tableAuthors: {
				Name: tableAuthors,
				Indexes: map[string]*memdb.IndexSchema{
					"id":   idIndex(),
					"name": {Name: "name", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "Name"}},
				},
			},
			tableCustomers: {
				Name:    tableCustomers,
				Indexes: map[string]*memdb.IndexSchema{"id": idIndex()},
			},
			tableReviews: {
				Name: tableReviews,
				Indexes: map[string]*memdb.IndexSchema{
					"id":   idIndex(),
					"item": uintIndex("item", "ItemID"),
				},
			},
			tableOrders: {
				Name: tableOrders,
				Indexes: map[string]*memdb.IndexSchema{
					"id":       idIndex(),
					"order_no": {Name: "order_no", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "OrderNo"}},
					"customer": uintIndex("customer", "CustomerID"),
				},
			},
			tableOrderItems: {
				Name: tableOrderItems,
				Indexes: map[string]*memdb.IndexSchema{
					"id":    idIndex(),
					"order": uintIndex("order", "OrderID"),
				},
			},
			tableRentals: {
				Name: tableRentals,
				Indexes: map[string]*memdb.IndexSchema{
					"id":       idIndex(),
					"copy":     uintIndex("copy", "CopyID"),
					"customer": uintIndex("customer", "CustomerID"),
				},
			},
			tablePromotions: {
				Name:    tablePromotions,
				Indexes: map[string]*memdb.IndexSchema{"id": idIndex()},
			},
		},
	}
}

// NewStore 创建内存数据库
func NewStore() (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("初始化内存数据库失败: %w", err)
	}
	return &Store{db: db}, nil
}

type txKey struct{}

func txFrom(ctx context.Context) (*memdb.Txn, bool) {
	txn, ok := ctx.Value(txKey{}).(*memdb.Txn)
	return txn, ok
}

// Transaction 在一个写事务中执行fn
// ctx已携带事务时直接加入外层事务，由最外层决定提交或回滚
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return apperrors.ErrConflict.WithErr(err)
	}

	txn := s.db.Txn(true)
	defer txn.Abort()

	if err := fn(context.WithValue(ctx, txKey{}, txn)); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// read 返回当前事务或一个只读快照
func (s *Store) read(ctx context.Context) (*memdb.Txn, func()) {
	if txn, ok := txFrom(ctx); ok {
		return txn, func() {}
	}
	txn := s.db.Txn(false)
	return txn, txn.Abort
}

// write 在当前事务中执行；没有事务时单独开启并提交
func (s *Store) write(ctx context.Context, fn func(txn *memdb.Txn) error) error {
	if txn, ok := txFrom(ctx); ok {
		return fn(txn)
	}
	txn := s.db.Txn(true)
	defer txn.Abort()
	if err := fn(txn); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

type seqRecord struct {
	Table string
	Next  uint
}

// nextID 表内自增ID，从1开始
func nextID(txn *memdb.Txn, table string) (uint, error) {
	next := uint(1)
	raw, err := txn.First(tableSeq, "id", table)
	if err != nil {
		return 0, err
	}
	if raw != nil {
		next = raw.(*seqRecord).Next
	}
	if err := txn.Insert(tableSeq, &seqRecord{Table: table, Next: next + 1}); err != nil {
		return 0, err
	}
	return next, nil
}

// collect 读取迭代器中的全部记录
func collect[T any](txn *memdb.Txn, table, index string, args ...interface{}) ([]*T, error) {
	it, err := txn.Get(table, index, args...)
	if err != nil {
		return nil, err
	}
	var out []*T
	for raw := it.Next(); raw != nil; raw = it.Next() {
		out = append(out, raw.(*T))
	}
	return out, nil
}

// first 按索引读取单条记录，不存在时返回nil
func first[T any](txn *memdb.Txn, table, index string, args ...interface{}) (*T, error) {
	raw, err := txn.First(table, index, args...)
	if err != nil || raw == nil {
		return nil, err
	}
	return raw.(*T), nil
}

func sortByID[T any](records []*T, id func(*T) uint) {
	sort.Slice(records, func(i, j int) bool { return id(records[i]) < id(records[j]) })
}

func dbError(err error, message string) error {
	return apperrors.ErrDatabaseError.WithMessagef("%s", message).WithErr(err)
}

// wrapErr 领域错误原样返回，其他错误包装为数据库错误
func wrapErr(err error, message string) error {
	if err == nil || apperrors.IsAppError(err) {
		return err
	}
	return dbError(err, message)
}
