package inmemory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-memdb"
	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
)

type bookRecord struct {
	ISBN            string
	Title           string
	PublicationYear int
	PublisherID     *uint
	CategoryID      *uint
	Authors         []catalog.Authorship
}

type authorRecord struct {
	ID   uint
	Name string
}

type customerRecord struct {
	ID           uint
	FirstName    string
	LastName     string
	CustomerType string
	Phone        string
	ZipCode      string
}

type reviewRecord struct {
	ID        uint
	ItemID    uint
	Reviewer  string
	Content   string
	Rating    decimal.Decimal
	CreatedAt time.Time
}

// catalogRepository 目录仓储
type catalogRepository struct {
	s *Store
}

// NewCatalogRepository 创建目录仓储
func NewCatalogRepository(s *Store) catalog.Repository {
	return &catalogRepository{s: s}
}

func (r *catalogRepository) CreateBook(ctx context.Context, b *catalog.Book) error {
	err := r.s.write(ctx, func(txn *memdb.Txn) error {
		existing, err := first[bookRecord](txn, tableBooks, "id", b.ISBN)
		if err != nil {
			return err
		}
		if existing != nil {
			return catalog.ErrISBNDuplicate
		}

		authors := make([]catalog.Authorship, len(b.Authors))
		for i, a := range b.Authors {
			rec, err := first[authorRecord](txn, tableAuthors, "name", a.Name)
			if err != nil {
				return err
			}
			if rec == nil {
				id, err := nextID(txn, tableAuthors)
				if err != nil {
					return err
				}
				rec = &authorRecord{ID: id, Name: a.Name}
				if err := txn.Insert(tableAuthors, rec); err != nil {
					return err
				}
			}
			authors[i] = catalog.Authorship{AuthorID: rec.ID, Name: rec.Name, Role: a.Role}
		}

		if err := txn.Insert(tableBooks, &bookRecord{
			ISBN:            b.ISBN,
			Title:           b.Title,
			PublicationYear: b.PublicationYear,
			PublisherID:     b.PublisherID,
			CategoryID:      b.CategoryID,
			Authors:         authors,
		}); err != nil {
			return err
		}
		b.Authors = authors
		return nil
	})
	return wrapErr(err, "创建图书失败")
}

func (r *catalogRepository) toBook(txn *memdb.Txn, rec *bookRecord) (*catalog.Book, error) {
	copies, err := collect[copyRecord](txn, tableCopies, "isbn", rec.ISBN)
	if err != nil {
		return nil, err
	}
	authors := make([]catalog.Authorship, len(rec.Authors))
	copy(authors, rec.Authors)
	return &catalog.Book{
		ISBN:            rec.ISBN,
		Title:           rec.Title,
		PublicationYear: rec.PublicationYear,
		PublisherID:     rec.PublisherID,
		CategoryID:      rec.CategoryID,
		Authors:         authors,
		CopyCount:       int64(len(copies)),
	}, nil
}

func (r *catalogRepository) FindBookByISBN(ctx context.Context, isbn string) (*catalog.Book, error) {
	txn, done := r.s.read(ctx)
	defer done()
	rec, err := first[bookRecord](txn, tableBooks, "id", isbn)
	if err != nil {
		return nil, dbError(err, "查询图书失败")
	}
	if rec == nil {
		return nil, catalog.ErrBookNotFound
	}
	b, err := r.toBook(txn, rec)
	if err != nil {
		return nil, dbError(err, "查询图书失败")
	}
	return b, nil
}

func (r *catalogRepository) ListBooks(ctx context.Context, keyword string) ([]*catalog.Book, error) {
	txn, done := r.s.read(ctx)
	defer done()
	recs, err := collect[bookRecord](txn, tableBooks, "id")
	if err != nil {
		return nil, dbError(err, "查询图书列表失败")
	}

	keyword = strings.ToLower(strings.TrimSpace(keyword))
	books := make([]*catalog.Book, 0, len(recs))
	for _, rec := range recs {
		if keyword != "" && !strings.Contains(strings.ToLower(rec.Title), keyword) {
			continue
		}
		b, err := r.toBook(txn, rec)
		if err != nil {
			return nil, dbError(err, "查询图书列表失败")
		}
		books = append(books, b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	return books, nil
}

func (r *catalogRepository) CreateCustomer(ctx context.Context, c *catalog.Customer) error {
	err := r.s.write(ctx, func(txn *memdb.Txn) error {
		id, err := nextID(txn, tableCustomers)
		if err != nil {
			return err
		}
		if err := txn.Insert(tableCustomers, &customerRecord{
			ID: id, FirstName: c.FirstName, LastName: c.LastName,
			CustomerType: c.CustomerType, Phone: c.Phone, ZipCode: c.ZipCode,
		}); err != nil {
			return err
		}
		c.ID = id
		return nil
	})
	return wrapErr(err, "创建顾客失败")
}

func (r *catalogRepository) FindCustomerByID(ctx context.Context, id uint) (*catalog.Customer, error) {
	txn, done := r.s.read(ctx)
	defer done()
	rec, err := first[customerRecord](txn, tableCustomers, "id", id)
	if err != nil {
		return nil, dbError(err, "查询顾客失败")
	}
	if rec == nil {
		return nil, catalog.ErrCustomerNotFound
	}
	return &catalog.Customer{
		ID: rec.ID, FirstName: rec.FirstName, LastName: rec.LastName,
		CustomerType: rec.CustomerType, Phone: rec.Phone, ZipCode: rec.ZipCode,
	}, nil
}

func (r *catalogRepository) CreateReview(ctx context.Context, rv *catalog.Review) error {
	err := r.s.write(ctx, func(txn *memdb.Txn) error {
		item, err := first[itemRecord](txn, tableItems, "id", rv.ItemID)
		if err != nil {
			return err
		}
		if item == nil {
			return inventory.ErrItemNotFound
		}
		id, err := nextID(txn, tableReviews)
		if err != nil {
			return err
		}
		if err := txn.Insert(tableReviews, &reviewRecord{
			ID: id, ItemID: rv.ItemID, Reviewer: rv.Reviewer, Content: rv.Content,
			Rating: rv.Rating, CreatedAt: rv.CreatedAt,
		}); err != nil {
			return err
		}
		rv.ID = id
		return nil
	})
	return wrapErr(err, "创建评价失败")
}

func (r *catalogRepository) ListReviews(ctx context.Context, itemID uint) ([]*catalog.Review, error) {
	txn, done := r.s.read(ctx)
	defer done()

	var (
		recs []*reviewRecord
		err  error
	)
	if itemID != 0 {
		recs, err = collect[reviewRecord](txn, tableReviews, "item", itemID)
	} else {
		recs, err = collect[reviewRecord](txn, tableReviews, "id")
	}
	if err != nil {
		return nil, dbError(err, "查询评价失败")
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].CreatedAt.Equal(recs[j].CreatedAt) {
			return recs[i].ID > recs[j].ID
		}
		return recs[i].CreatedAt.After(recs[j].CreatedAt)
	})

	reviews := make([]*catalog.Review, len(recs))
	for i, rec := range recs {
		reviews[i] = &catalog.Review{
			ID: rec.ID, ItemID: rec.ItemID, Reviewer: rec.Reviewer, Content: rec.Content,
			Rating: rec.Rating, CreatedAt: rec.CreatedAt,
		}
	}
	return reviews, nil
}

// statsRepository 统计查询
type statsRepository struct {
	s *Store
}

// NewStatsRepository 创建统计仓储
func NewStatsRepository(s *Store) catalog.StatsRepository {
	return &statsRepository{s: s}
}

func (r *statsRepository) Dashboard(ctx context.Context) (*catalog.Dashboard, error) {
	txn, done := r.s.read(ctx)
	defer done()

	count := func(table string) (int64, error) {
		it, err := txn.Get(table, "id")
		if err != nil {
			return 0, err
		}
		var n int64
		for raw := it.Next(); raw != nil; raw = it.Next() {
			n++
		}
		return n, nil
	}

	d := &catalog.Dashboard{TotalRevenue: decimal.Zero}
	var err error
	if d.TotalBooks, err = count(tableBooks); err != nil {
		return nil, dbError(err, "统计失败")
	}
	if d.TotalCustomers, err = count(tableCustomers); err != nil {
		return nil, dbError(err, "统计失败")
	}
	if d.TotalReviews, err = count(tableReviews); err != nil {
		return nil, dbError(err, "统计失败")
	}

	orders, err := collect[orderRecord](txn, tableOrders, "id")
	if err != nil {
		return nil, dbError(err, "统计失败")
	}
	d.TotalOrders = int64(len(orders))
	for _, o := range orders {
		d.TotalRevenue = d.TotalRevenue.Add(o.Amount)
	}

	rentals, err := collect[rentalRecord](txn, tableRentals, "id")
	if err != nil {
		return nil, dbError(err, "统计失败")
	}
	for _, rt := range rentals {
		if rt.ReturnDate == nil {
			d.ActiveRentals++
		}
	}
	return d, nil
}

func (r *statsRepository) PopularBooks(ctx context.Context, limit int) ([]*catalog.PopularBook, error) {
	txn, done := r.s.read(ctx)
	defer done()

	rentals, err := collect[rentalRecord](txn, tableRentals, "id")
	if err != nil {
		return nil, dbError(err, "统计热门图书失败")
	}
	counts := make(map[string]int64)
	for _, rt := range rentals {
		c, err := first[copyRecord](txn, tableCopies, "id", rt.CopyID)
		if err != nil {
			return nil, dbError(err, "统计热门图书失败")
		}
		if c != nil {
			counts[c.ISBN]++
		}
	}

	out := make([]*catalog.PopularBook, 0, len(counts))
	for isbn, n := range counts {
		pb := &catalog.PopularBook{ISBN: isbn, RentalCount: n}
		if b, _ := first[bookRecord](txn, tableBooks, "id", isbn); b != nil {
			pb.Title = b.Title
		}
		out = append(out, pb)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RentalCount == out[j].RentalCount {
			return out[i].ISBN < out[j].ISBN
		}
		return out[i].RentalCount > out[j].RentalCount
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *statsRepository) RevenueByMonth(ctx context.Context, since time.Time) ([]*catalog.MonthlyRevenue, error) {
	txn, done := r.s.read(ctx)
	defer done()

	orders, err := collect[orderRecord](txn, tableOrders, "id")
	if err != nil {
		return nil, dbError(err, "统计月度营收失败")
	}
	byMonth := make(map[string]*catalog.MonthlyRevenue)
	for _, o := range orders {
		if o.OrderDate.Before(since) {
			continue
		}
		month := o.OrderDate.Format("2006-01")
		m, ok := byMonth[month]
		if !ok {
			m = &catalog.MonthlyRevenue{Month: month, Revenue: decimal.Zero}
			byMonth[month] = m
		}
		m.OrderCount++
		m.Revenue = m.Revenue.Add(o.Amount)
	}

	out := make([]*catalog.MonthlyRevenue, 0, len(byMonth))
	for _, m := range byMonth {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}
