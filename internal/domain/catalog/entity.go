package catalog

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Book 图书目录信息，以ISBN为主键
type Book struct {
	ISBN            string
	Title           string
	PublicationYear int
	PublisherID     *uint
	CategoryID      *uint
	Authors         []Authorship
	CopyCount       int64 // 查询时填充
}

// Authorship 作者与著作关系
type Authorship struct {
	AuthorID uint
	Name     string
	Role     string // 如 Author / Translator / Editor
}

// NewBook 校验并创建图书
func NewBook(isbn, title string, year int, authors []Authorship) (*Book, error) {
	isbn = strings.TrimSpace(isbn)
	if isbn == "" || len(isbn) > 20 {
		return nil, ErrInvalidISBN
	}
	if strings.TrimSpace(title) == "" {
		return nil, ErrInvalidTitle
	}
	for i := range authors {
		if authors[i].Role == "" {
			authors[i].Role = "Author"
		}
	}
	return &Book{ISBN: isbn, Title: title, PublicationYear: year, Authors: authors}, nil
}

// AuthorNames 作者姓名，逗号分隔
func (b *Book) AuthorNames() string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		names = append(names, a.Name)
	}
	return strings.Join(names, ", ")
}

// Customer 顾客
type Customer struct {
	ID           uint
	FirstName    string
	LastName     string
	CustomerType string
	Phone        string
	ZipCode      string
}

// FullName 展示用姓名
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Validate 姓和名不能同时为空
func (c *Customer) Validate() error {
	if c.FullName() == "" {
		return ErrInvalidName
	}
	return nil
}

// Review 商品评价
type Review struct {
	ID        uint
	ItemID    uint
	Reviewer  string
	Content   string
	Rating    decimal.Decimal
	CreatedAt time.Time
}

var maxRating = decimal.NewFromInt(5)

// Validate 评分范围0-5
func (r *Review) Validate() error {
	if r.Rating.IsNegative() || r.Rating.GreaterThan(maxRating) {
		return ErrInvalidRating
	}
	if strings.TrimSpace(r.Reviewer) == "" {
		return ErrInvalidReviewer
	}
	return nil
}

// Dashboard 运营概览
type Dashboard struct {
	TotalBooks     int64           `json:"total_books"`
	TotalCustomers int64           `json:"total_customers"`
	TotalOrders    int64           `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	ActiveRentals  int64           `json:"active_rentals"`
	TotalReviews   int64           `json:"total_reviews"`
}

// PopularBook 按租借次数排序的热门图书
type PopularBook struct {
	ISBN        string `json:"isbn"`
	Title       string `json:"title"`
	RentalCount int64  `json:"rental_count"`
}

// MonthlyRevenue 月度营收，Month格式为2006-01
type MonthlyRevenue struct {
	Month      string          `json:"month"`
	OrderCount int64           `json:"order_count"`
	Revenue    decimal.Decimal `json:"revenue"`
}
