package rdb

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
)

// catalogRepository 目录仓储（图书、作者、顾客、评价）
type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository 创建目录仓储
func NewCatalogRepository(db *gorm.DB) catalog.Repository {
	return &catalogRepository{db: db}
}

// CreateBook 插入图书与著作关系，作者按姓名复用
func (r *catalogRepository) CreateBook(ctx context.Context, b *catalog.Book) error {
	err := conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		book := &BookModel{
			ISBN:            b.ISBN,
			Title:           b.Title,
			PublicationYear: b.PublicationYear,
			PublisherID:     b.PublisherID,
			CategoryID:      b.CategoryID,
		}
		if err := tx.Create(book).Error; err != nil {
			if isDuplicate(err) {
				return catalog.ErrISBNDuplicate
			}
			return err
		}

		for i, a := range b.Authors {
			author := AuthorModel{Name: a.Name}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&author).Error; err != nil {
				return err
			}
			if err := tx.Where("name = ?", a.Name).Take(&author).Error; err != nil {
				return err
			}
			link := &BookAuthorModel{ISBN: b.ISBN, AuthorID: author.ID, Role: a.Role, Position: i}
			if err := tx.Omit(clause.Associations).Create(link).Error; err != nil {
				return err
			}
			b.Authors[i].AuthorID = author.ID
		}
		return nil
	})
	return classify(err, "创建图书失败")
}

func (r *catalogRepository) FindBookByISBN(ctx context.Context, isbn string) (*catalog.Book, error) {
	var model BookModel
	if err := conn(ctx, r.db).First(&model, "isbn = ?", isbn).Error; err != nil {
		return nil, notFound(err, catalog.ErrBookNotFound, "查询图书失败")
	}
	books, err := r.fill(ctx, []BookModel{model})
	if err != nil {
		return nil, err
	}
	return books[0], nil
}

// ListBooks 按书名关键字过滤
func (r *catalogRepository) ListBooks(ctx context.Context, keyword string) ([]*catalog.Book, error) {
	q := conn(ctx, r.db).Order("title")
	if keyword = strings.TrimSpace(keyword); keyword != "" {
		q = q.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(keyword)+"%")
	}
	var models []BookModel
	if err := q.Find(&models).Error; err != nil {
		return nil, classify(err, "查询图书列表失败")
	}
	return r.fill(ctx, models)
}

type authorRow struct {
	ISBN     string
	AuthorID uint
	Name     string
	Role     string
}

type countRow struct {
	ISBN  string
	Total int64
}

// fill 批量加载作者与副本数，避免N+1查询
func (r *catalogRepository) fill(ctx context.Context, models []BookModel) ([]*catalog.Book, error) {
	books := make([]*catalog.Book, len(models))
	if len(models) == 0 {
		return books, nil
	}
	isbns := make([]string, len(models))
	byISBN := make(map[string]*catalog.Book, len(models))
	for i, m := range models {
		isbns[i] = m.ISBN
		books[i] = &catalog.Book{
			ISBN:            m.ISBN,
			Title:           m.Title,
			PublicationYear: m.PublicationYear,
			PublisherID:     m.PublisherID,
			CategoryID:      m.CategoryID,
		}
		byISBN[m.ISBN] = books[i]
	}

	db := conn(ctx, r.db)
	var authors []authorRow
	err := db.Table("book_authors AS ba").
		Select("ba.isbn AS isbn, a.id AS author_id, a.name AS name, ba.role AS role").
		Joins("JOIN authors AS a ON a.id = ba.author_id").
		Where("ba.isbn IN ?", isbns).
		Order("ba.isbn, ba.position").
		Scan(&authors).Error
	if err != nil {
		return nil, classify(err, "查询作者失败")
	}
	for _, a := range authors {
		b := byISBN[a.ISBN]
		b.Authors = append(b.Authors, catalog.Authorship{AuthorID: a.AuthorID, Name: a.Name, Role: a.Role})
	}

	var counts []countRow
	err = db.Model(&BookCopyModel{}).
		Select("isbn, COUNT(*) AS total").
		Where("isbn IN ?", isbns).
		Group("isbn").
		Scan(&counts).Error
	if err != nil {
		return nil, classify(err, "统计副本数失败")
	}
	for _, c := range counts {
		byISBN[c.ISBN].CopyCount = c.Total
	}
	return books, nil
}

func (r *catalogRepository) CreateCustomer(ctx context.Context, c *catalog.Customer) error {
	model := &CustomerModel{
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		CustomerType: c.CustomerType,
		Phone:        c.Phone,
		ZipCode:      c.ZipCode,
	}
	if err := conn(ctx, r.db).Create(model).Error; err != nil {
		return classify(err, "创建顾客失败")
	}
	c.ID = model.ID
	return nil
}

func (r *catalogRepository) FindCustomerByID(ctx context.Context, id uint) (*catalog.Customer, error) {
	var m CustomerModel
	if err := conn(ctx, r.db).First(&m, id).Error; err != nil {
		return nil, notFound(err, catalog.ErrCustomerNotFound, "查询顾客失败")
	}
	return &catalog.Customer{
		ID:           m.ID,
		FirstName:    m.FirstName,
		LastName:     m.LastName,
		CustomerType: m.CustomerType,
		Phone:        m.Phone,
		ZipCode:      m.ZipCode,
	}, nil
}

func (r *catalogRepository) CreateReview(ctx context.Context, rv *catalog.Review) error {
	db := conn(ctx, r.db)
	var n int64
	if err := db.Model(&ItemModel{}).Where("id = ?", rv.ItemID).Count(&n).Error; err != nil {
		return classify(err, "创建评价失败")
	}
	if n == 0 {
		return inventory.ErrItemNotFound
	}

	model := &ReviewModel{
		ItemID:    rv.ItemID,
		Reviewer:  rv.Reviewer,
		Content:   rv.Content,
		Rating:    rv.Rating,
		CreatedAt: rv.CreatedAt,
	}
	if err := db.Omit(clause.Associations).Create(model).Error; err != nil {
		return classify(err, "创建评价失败")
	}
	rv.ID = model.ID
	return nil
}

func (r *catalogRepository) ListReviews(ctx context.Context, itemID uint) ([]*catalog.Review, error) {
	q := conn(ctx, r.db).Order("created_at DESC, id DESC")
	if itemID != 0 {
		q = q.Where("item_id = ?", itemID)
	}
	var models []ReviewModel
	if err := q.Find(&models).Error; err != nil {
		return nil, classify(err, "查询评价失败")
	}
	reviews := make([]*catalog.Review, len(models))
	for i, m := range models {
		reviews[i] = &catalog.Review{
			ID:        m.ID,
			ItemID:    m.ItemID,
			Reviewer:  m.Reviewer,
			Content:   m.Content,
			Rating:    m.Rating,
			CreatedAt: m.CreatedAt,
		}
	}
	return reviews, nil
}

// statsRepository 统计查询
type statsRepository struct {
	db *gorm.DB
}

// NewStatsRepository 创建统计仓储
func NewStatsRepository(db *gorm.DB) catalog.StatsRepository {
	return &statsRepository{db: db}
}

func (r *statsRepository) Dashboard(ctx context.Context) (*catalog.Dashboard, error) {
	db := conn(ctx, r.db)
	d := &catalog.Dashboard{}

	counts := []struct {
		model interface{}
		where string
		dest  *int64
	}{
		{&BookModel{}, "", &d.TotalBooks},
		{&CustomerModel{}, "", &d.TotalCustomers},
		{&OrderModel{}, "", &d.TotalOrders},
		{&ReviewModel{}, "", &d.TotalReviews},
		{&RentalModel{}, "return_date IS NULL", &d.ActiveRentals},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.where != "" {
			q = q.Where(c.where)
		}
		if err := q.Count(c.dest).Error; err != nil {
			return nil, classify(err, "统计失败")
		}
	}

	var revenue struct{ Total decimal.Decimal }
	if err := db.Model(&OrderModel{}).Select("COALESCE(SUM(amount), 0) AS total").Scan(&revenue).Error; err != nil {
		return nil, classify(err, "统计营收失败")
	}
	d.TotalRevenue = revenue.Total
	return d, nil
}

// PopularBooks 按租借次数排序
func (r *statsRepository) PopularBooks(ctx context.Context, limit int) ([]*catalog.PopularBook, error) {
	var out []*catalog.PopularBook
	err := conn(ctx, r.db).Table("book_rents AS br").
		Select("bc.isbn AS isbn, b.title AS title, COUNT(*) AS rental_count").
		Joins("JOIN book_copies AS bc ON bc.item_id = br.copy_id").
		Joins("JOIN books AS b ON b.isbn = bc.isbn").
		Group("bc.isbn, b.title").
		Order("rental_count DESC, bc.isbn").
		Limit(limit).
		Scan(&out).Error
	if err != nil {
		return nil, classify(err, "统计热门图书失败")
	}
	return out, nil
}

type revenueRow struct {
	Month      string
	OrderCount int64
	Revenue    decimal.Decimal
}

// RevenueByMonth 月份格式化函数因方言而异
func (r *statsRepository) RevenueByMonth(ctx context.Context, since time.Time) ([]*catalog.MonthlyRevenue, error) {
	db := conn(ctx, r.db)
	month := "DATE_FORMAT(order_date, '%Y-%m')"
	if db.Dialector.Name() == "postgres" {
		month = "TO_CHAR(order_date, 'YYYY-MM')"
	}

	var rows []revenueRow
	err := db.Model(&OrderModel{}).
		Select(month+" AS month, COUNT(*) AS order_count, COALESCE(SUM(amount), 0) AS revenue").
		Where("order_date >= ?", since).
		Group(month).
		Order("month").
		Scan(&rows).Error
	if err != nil {
		return nil, classify(err, "统计月度营收失败")
	}
	out := make([]*catalog.MonthlyRevenue, len(rows))
	for i, row := range rows {
		out[i] = &catalog.MonthlyRevenue{Month: row.Month, OrderCount: row.OrderCount, Revenue: row.Revenue}
	}
	return out, nil
}
