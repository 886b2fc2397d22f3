package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
	"github.com/xiebiao/bookstore-core/internal/domain/promotion"
	"github.com/xiebiao/bookstore-core/internal/domain/shared"
	"github.com/xiebiao/bookstore-core/pkg/logger"
)

const (
	defaultPopularLimit = 10
	maxPopularLimit     = 100
	revenueMonths       = 12
)

// QueryService 目录、促销与统计
// 设计说明:
// 1. 只读查询直接走仓储，不开启事务
// 2. 少量写操作（建书、建顾客、评价、促销）在这里做参数校验后落库
// 3. 与库存相关的写操作统一走inventory.Manager
type QueryService struct {
	books      catalog.Repository
	items      inventory.ItemRepository
	promotions promotion.Repository
	stats      catalog.StatsRepository
	clock      shared.Clock
	log        *slog.Logger
}

// NewQueryService 创建查询服务
func NewQueryService(
	books catalog.Repository,
	items inventory.ItemRepository,
	promotions promotion.Repository,
	stats catalog.StatsRepository,
	clock shared.Clock,
	log *slog.Logger,
) *QueryService {
	return &QueryService{
		books:      books,
		items:      items,
		promotions: promotions,
		stats:      stats,
		clock:      clock,
		log:        log,
	}
}

// AuthorInput 建书时的作者
type AuthorInput struct {
	Name string
	Role string
}

// CreateBookRequest 建书请求
type CreateBookRequest struct {
	ISBN            string
	Title           string
	PublicationYear int
	Authors         []AuthorInput
}

// CreateBook 创建图书，作者按姓名复用
func (s *QueryService) CreateBook(ctx context.Context, req CreateBookRequest) (*catalog.Book, error) {
	authors := make([]catalog.Authorship, 0, len(req.Authors))
	for _, a := range req.Authors {
		authors = append(authors, catalog.Authorship{Name: a.Name, Role: a.Role})
	}
	b, err := catalog.NewBook(req.ISBN, req.Title, req.PublicationYear, authors)
	if err != nil {
		return nil, err
	}
	if err := s.books.CreateBook(ctx, b); err != nil {
		return nil, err
	}
	logger.FromContext(ctx, s.log).Info("book created", "isbn", b.ISBN)
	return b, nil
}

func (s *QueryService) GetBook(ctx context.Context, isbn string) (*catalog.Book, error) {
	return s.books.FindBookByISBN(ctx, isbn)
}

func (s *QueryService) ListBooks(ctx context.Context, keyword string) ([]*catalog.Book, error) {
	return s.books.ListBooks(ctx, keyword)
}

// ListItems itemType为空时返回全部
func (s *QueryService) ListItems(ctx context.Context, itemType inventory.ItemType) ([]*inventory.Item, error) {
	if itemType != "" && !itemType.IsValid() {
		return nil, inventory.ErrInvalidItemType
	}
	return s.items.List(ctx, itemType)
}

func (s *QueryService) GetItem(ctx context.Context, id uint) (*inventory.Item, error) {
	return s.items.FindByID(ctx, id)
}

// CreateItem 创建周边商品；图书副本只能通过入库生成
func (s *QueryService) CreateItem(ctx context.Context, description string, price decimal.Decimal) (*inventory.Item, error) {
	item, err := inventory.NewItem(description, price, inventory.ItemTypeMerchandise)
	if err != nil {
		return nil, err
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *QueryService) CreateCustomer(ctx context.Context, c *catalog.Customer) error {
	if err := c.Validate(); err != nil {
		return err
	}
	return s.books.CreateCustomer(ctx, c)
}

func (s *QueryService) GetCustomer(ctx context.Context, id uint) (*catalog.Customer, error) {
	return s.books.FindCustomerByID(ctx, id)
}

// CreateReview 评分0-5，商品必须存在
func (s *QueryService) CreateReview(ctx context.Context, r *catalog.Review) error {
	if err := r.Validate(); err != nil {
		return err
	}
	r.CreatedAt = s.clock()
	return s.books.CreateReview(ctx, r)
}

// ListReviews itemID为0时返回全部评价
func (s *QueryService) ListReviews(ctx context.Context, itemID uint) ([]*catalog.Review, error) {
	return s.books.ListReviews(ctx, itemID)
}

// ActivePromotions 当天有效的促销，按折扣从高到低
// 查询失败时记录日志并返回空列表
func (s *QueryService) ActivePromotions(ctx context.Context) []*promotion.Promotion {
	list, err := s.promotions.ListActive(ctx, s.clock())
	if err != nil {
		logger.FromContext(ctx, s.log).Warn("list active promotions failed", "error", err)
		return []*promotion.Promotion{}
	}
	return list
}

func (s *QueryService) ListPromotions(ctx context.Context) ([]*promotion.Promotion, error) {
	return s.promotions.List(ctx)
}

func (s *QueryService) CreatePromotion(ctx context.Context, p *promotion.Promotion) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.promotions.Create(ctx, p)
}

func (s *QueryService) Dashboard(ctx context.Context) (*catalog.Dashboard, error) {
	return s.stats.Dashboard(ctx)
}

// PopularBooks 按租借次数排序，limit默认10，最大100
func (s *QueryService) PopularBooks(ctx context.Context, limit int) ([]*catalog.PopularBook, error) {
	if limit <= 0 {
		limit = defaultPopularLimit
	}
	if limit > maxPopularLimit {
		limit = maxPopularLimit
	}
	return s.stats.PopularBooks(ctx, limit)
}

// RevenueByMonth 最近12个月（含当月）的月度营收
func (s *QueryService) RevenueByMonth(ctx context.Context) ([]*catalog.MonthlyRevenue, error) {
	return s.stats.RevenueByMonth(ctx, revenueSince(s.clock()))
}

// revenueSince 11个月前的月初
func revenueSince(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m-(revenueMonths-1), 1, 0, 0, 0, 0, now.Location())
}
