package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
	"github.com/xiebiao/bookstore-core/internal/domain/order"
	"github.com/xiebiao/bookstore-core/internal/domain/promotion"
	"github.com/xiebiao/bookstore-core/internal/domain/promotion/mocks"
	"github.com/xiebiao/bookstore-core/internal/infrastructure/persistence/inmemory"
	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
	"github.com/xiebiao/bookstore-core/pkg/logger"
)

var now = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func newService(t *testing.T) (*QueryService, *inmemory.Store) {
	t.Helper()
	store, err := inmemory.NewStore()
	require.NoError(t, err)
	svc := NewQueryService(
		inmemory.NewCatalogRepository(store),
		inmemory.NewItemRepository(store),
		inmemory.NewPromotionRepository(store),
		inmemory.NewStatsRepository(store),
		clock,
		logger.Discard(),
	)
	return svc, store
}

func TestQueryService_Books(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	b, err := svc.CreateBook(ctx, CreateBookRequest{
		ISBN:            "9787111544937",
		Title:           "Go程序设计语言",
		PublicationYear: 2016,
		Authors:         []AuthorInput{{Name: "Alan Donovan"}, {Name: "Brian Kernighan"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Alan Donovan, Brian Kernighan", b.AuthorNames())
	assert.Equal(t, "Author", b.Authors[0].Role)

	_, err = svc.CreateBook(ctx, CreateBookRequest{ISBN: "9787111544937", Title: "重复"})
	assert.ErrorIs(t, err, catalog.ErrISBNDuplicate)

	_, err = svc.CreateBook(ctx, CreateBookRequest{ISBN: "9787111544938"})
	assert.ErrorIs(t, err, catalog.ErrInvalidTitle)

	got, err := svc.GetBook(ctx, "9787111544937")
	require.NoError(t, err)
	assert.Equal(t, "Go程序设计语言", got.Title)

	_, err = svc.GetBook(ctx, "0000000000")
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)

	list, err := svc.ListBooks(ctx, "程序设计")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestQueryService_CustomersAndReviews(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.CreateCustomer(ctx, &catalog.Customer{}), catalog.ErrInvalidName)

	c := &catalog.Customer{FirstName: "San", LastName: "Zhang", CustomerType: "Individual"}
	require.NoError(t, svc.CreateCustomer(ctx, c))
	got, err := svc.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "San Zhang", got.FullName())

	item, err := svc.CreateItem(ctx, "书签", decimal.RequireFromString("2.50"))
	require.NoError(t, err)
	assert.Equal(t, inventory.ItemTypeMerchandise, item.Type)

	rv := &catalog.Review{ItemID: item.ID, Reviewer: "San", Rating: decimal.NewFromInt(4), Content: "好用"}
	require.NoError(t, svc.CreateReview(ctx, rv))
	assert.Equal(t, now, rv.CreatedAt)

	err = svc.CreateReview(ctx, &catalog.Review{ItemID: item.ID, Reviewer: "San", Rating: decimal.NewFromInt(6)})
	assert.ErrorIs(t, err, catalog.ErrInvalidRating)

	err = svc.CreateReview(ctx, &catalog.Review{ItemID: 999, Reviewer: "San", Rating: decimal.NewFromInt(3)})
	assert.ErrorIs(t, err, inventory.ErrItemNotFound)

	reviews, err := svc.ListReviews(ctx, item.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	items, err := svc.ListItems(ctx, inventory.ItemTypeMerchandise)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.ListItems(ctx, "Toy")
	assert.ErrorIs(t, err, inventory.ErrInvalidItemType)
}

func TestQueryService_Promotions(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	day := func(m time.Month, d int) time.Time { return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, svc.CreatePromotion(ctx, &promotion.Promotion{
		Code: "SPRING10", DiscountPercent: decimal.NewFromInt(10), StartDate: day(3, 1), EndDate: day(3, 31),
	}))
	require.NoError(t, svc.CreatePromotion(ctx, &promotion.Promotion{
		Code: "VIP20", DiscountPercent: decimal.NewFromInt(20), StartDate: day(3, 15), EndDate: day(3, 15),
	}))
	require.NoError(t, svc.CreatePromotion(ctx, &promotion.Promotion{
		Code: "NEWYEAR", DiscountPercent: decimal.NewFromInt(30), StartDate: day(1, 1), EndDate: day(1, 7),
	}))

	err := svc.CreatePromotion(ctx, &promotion.Promotion{
		Code: "BAD", DiscountPercent: decimal.NewFromInt(120), StartDate: day(3, 1), EndDate: day(3, 2),
	})
	assert.ErrorIs(t, err, promotion.ErrInvalidDiscount)
	err = svc.CreatePromotion(ctx, &promotion.Promotion{
		Code: "BAD", DiscountPercent: decimal.NewFromInt(5), StartDate: day(3, 2), EndDate: day(3, 1),
	})
	assert.ErrorIs(t, err, promotion.ErrInvalidPeriod)

	active := svc.ActivePromotions(ctx)
	require.Len(t, active, 2)
	assert.Equal(t, "VIP20", active[0].Code)
	assert.Equal(t, "SPRING10", active[1].Code)

	all, err := svc.ListPromotions(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestQueryService_ActivePromotionsOnError(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockRepository(ctrl)
	repo.EXPECT().ListActive(gomock.Any(), now).Return(nil, apperrors.ErrDatabaseError)

	svc := NewQueryService(nil, nil, repo, nil, clock, logger.Discard())
	active := svc.ActivePromotions(context.Background())
	assert.NotNil(t, active)
	assert.Empty(t, active)
}

func TestQueryService_Stats(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	c := &catalog.Customer{FirstName: "Wu", LastName: "Wang"}
	require.NoError(t, svc.CreateCustomer(ctx, c))

	orders := inmemory.NewOrderRepository(store)
	for _, o := range []struct {
		no     string
		date   time.Time
		amount string
	}{
		{"ORD-OLD", time.Date(2024, 3, 31, 23, 0, 0, 0, time.UTC), "99.00"},
		{"ORD-A", time.Date(2024, 4, 2, 8, 0, 0, 0, time.UTC), "10.00"},
		{"ORD-B", time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC), "20.50"},
		{"ORD-C", time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC), "4.50"},
	} {
		ord := order.NewOrder(o.no, c.ID, o.date)
		require.NoError(t, orders.Create(ctx, ord))
		require.NoError(t, orders.UpdateTotals(ctx, ord.ID, decimal.RequireFromString(o.amount), 1))
	}

	revenue, err := svc.RevenueByMonth(ctx)
	require.NoError(t, err)
	require.Len(t, revenue, 2)
	assert.Equal(t, "2024-04", revenue[0].Month)
	assert.Equal(t, "2025-03", revenue[1].Month)
	assert.EqualValues(t, 2, revenue[1].OrderCount)
	assert.True(t, revenue[1].Revenue.Equal(decimal.NewFromInt(25)))

	d, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, d.TotalOrders)
	assert.EqualValues(t, 1, d.TotalCustomers)
	assert.True(t, d.TotalRevenue.Equal(decimal.NewFromInt(134)))

	popular, err := svc.PopularBooks(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, popular)
}

func TestRevenueSince(t *testing.T) {
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), revenueSince(now))
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		revenueSince(time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)))
}
