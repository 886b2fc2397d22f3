package inmemory

import (
	"context"
	"sort"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
	"github.com/xiebiao/bookstore-core/internal/domain/rental"
)

type rentalRecord struct {
	ID         uint
	CustomerID uint
	CopyID     uint
	RentDate   time.Time
	DueDate    time.Time
	ReturnDate *time.Time
}

func toRental(rec *rentalRecord) *rental.Rental {
	rt := &rental.Rental{
		ID:         rec.ID,
		CustomerID: rec.CustomerID,
		CopyID:     rec.CopyID,
		RentDate:   rec.RentDate,
		DueDate:    rec.DueDate,
	}
	if rec.ReturnDate != nil {
		at := *rec.ReturnDate
		rt.ReturnDate = &at
	}
	return rt
}

// rentalRepository 租借仓储
type rentalRepository struct {
	s *Store
}

// NewRentalRepository 创建租借仓储
func NewRentalRepository(s *Store) rental.Repository {
	return &rentalRepository{s: s}
}

func (r *rentalRepository) Create(ctx context.Context, rt *rental.Rental) error {
	err := r.s.write(ctx, func(txn *memdb.Txn) error {
		customer, err := first[customerRecord](txn, tableCustomers, "id", rt.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			return catalog.ErrCustomerNotFound
		}
		c, err := first[copyRecord](txn, tableCopies, "id", rt.CopyID)
		if err != nil {
			return err
		}
		if c == nil {
			return inventory.ErrCopyNotFound
		}

		id, err := nextID(txn, tableRentals)
		if err != nil {
			return err
		}
		if err := txn.Insert(tableRentals, &rentalRecord{
			ID:         id,
			CustomerID: rt.CustomerID,
			CopyID:     rt.CopyID,
			RentDate:   rt.RentDate,
			DueDate:    rt.DueDate,
		}); err != nil {
			return err
		}
		rt.ID = id
		return nil
	})
	return wrapErr(err, "创建租借记录失败")
}

func (r *rentalRepository) FindByID(ctx context.Context, id uint) (*rental.Rental, error) {
	txn, done := r.s.read(ctx)
	defer done()
	rec, err := first[rentalRecord](txn, tableRentals, "id", id)
	if err != nil {
		return nil, dbError(err, "查询租借记录失败")
	}
	if rec == nil {
		return nil, rental.ErrRentalNotFound
	}
	return toRental(rec), nil
}

// LockByID 写事务内读取即持有排他访问
func (r *rentalRepository) LockByID(ctx context.Context, id uint) (*rental.Rental, error) {
	return r.FindByID(ctx, id)
}

func (r *rentalRepository) MarkReturned(ctx context.Context, id uint, at time.Time) (int64, error) {
	var affected int64
	err := r.s.write(ctx, func(txn *memdb.Txn) error {
		rec, err := first[rentalRecord](txn, tableRentals, "id", id)
		if err != nil {
			return err
		}
		if rec == nil || rec.ReturnDate != nil {
			return nil
		}
		updated := *rec
		updated.ReturnDate = &at
		if err := txn.Insert(tableRentals, &updated); err != nil {
			return err
		}
		affected = 1
		return nil
	})
	if err != nil {
		return 0, dbError(err, "更新归还时间失败")
	}
	return affected, nil
}

func (r *rentalRepository) CountOpenByCopy(ctx context.Context, copyID uint) (int64, error) {
	txn, done := r.s.read(ctx)
	defer done()
	recs, err := collect[rentalRecord](txn, tableRentals, "copy", copyID)
	if err != nil {
		return 0, dbError(err, "查询租借记录失败")
	}
	var n int64
	for _, rec := range recs {
		if rec.ReturnDate == nil {
			n++
		}
	}
	return n, nil
}

func (r *rentalRepository) detail(txn *memdb.Txn, rec *rentalRecord) *rental.Detail {
	d := &rental.Detail{Rental: *toRental(rec)}
	if c, _ := first[copyRecord](txn, tableCopies, "id", rec.CopyID); c != nil {
		d.ISBN = c.ISBN
		if b, _ := first[bookRecord](txn, tableBooks, "id", c.ISBN); b != nil {
			d.BookTitle = b.Title
		}
	}
	if cu, _ := first[customerRecord](txn, tableCustomers, "id", rec.CustomerID); cu != nil {
		d.CustomerName = (&catalog.Customer{FirstName: cu.FirstName, LastName: cu.LastName}).FullName()
	}
	return d
}

func (r *rentalRepository) FindDetail(ctx context.Context, id uint) (*rental.Detail, error) {
	txn, done := r.s.read(ctx)
	defer done()
	rec, err := first[rentalRecord](txn, tableRentals, "id", id)
	if err != nil {
		return nil, dbError(err, "查询租借记录失败")
	}
	if rec == nil {
		return nil, rental.ErrRentalNotFound
	}
	return r.detail(txn, rec), nil
}

func (r *rentalRepository) List(ctx context.Context, filter rental.ListFilter) ([]*rental.Detail, error) {
	txn, done := r.s.read(ctx)
	defer done()

	var (
		recs []*rentalRecord
		err  error
	)
	if filter.CustomerID != 0 {
		recs, err = collect[rentalRecord](txn, tableRentals, "customer", filter.CustomerID)
	} else {
		recs, err = collect[rentalRecord](txn, tableRentals, "id")
	}
	if err != nil {
		return nil, dbError(err, "查询租借列表失败")
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].RentDate.Equal(recs[j].RentDate) {
			return recs[i].ID > recs[j].ID
		}
		return recs[i].RentDate.After(recs[j].RentDate)
	})

	out := make([]*rental.Detail, 0, len(recs))
	for _, rec := range recs {
		if filter.OpenOnly && rec.ReturnDate != nil {
			continue
		}
		out = append(out, r.detail(txn, rec))
	}
	return out, nil
}
