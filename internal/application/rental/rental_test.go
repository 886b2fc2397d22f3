package rental

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appinventory "github.com/xiebiao/bookstore-core/internal/application/inventory"
	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
	"github.com/xiebiao/bookstore-core/internal/domain/rental"
	"github.com/xiebiao/bookstore-core/internal/domain/shared"
	"github.com/xiebiao/bookstore-core/internal/infrastructure/persistence/inmemory"
	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
	"github.com/xiebiao/bookstore-core/pkg/logger"
)

const testISBN = "9787115546081"

// stepClock 每次调用前进一小时
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Hour)
	return c.now
}

type recordingPublisher struct {
	mu       sync.Mutex
	payloads map[string][]interface{}
}

func (p *recordingPublisher) Publish(_ context.Context, key string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.payloads == nil {
		p.payloads = make(map[string][]interface{})
	}
	p.payloads[key] = append(p.payloads[key], payload)
	return nil
}

type fixture struct {
	manager    *appinventory.Manager
	copies     inventory.CopyRepository
	rentals    rental.Repository
	create     *CreateRentalUseCase
	ret        *ReturnRentalUseCase
	list       *ListRentalsUseCase
	publisher  *recordingPublisher
	customerID uint
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store, err := inmemory.NewStore()
	require.NoError(t, err)

	books := inmemory.NewCatalogRepository(store)
	b, err := catalog.NewBook(testISBN, "Go语言设计与实现", 2021, nil)
	require.NoError(t, err)
	require.NoError(t, books.CreateBook(ctx, b))
	customer := &catalog.Customer{FirstName: "Si", LastName: "Li"}
	require.NoError(t, books.CreateCustomer(ctx, customer))

	clock := &stepClock{now: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
	f := &fixture{
		copies:     inmemory.NewCopyRepository(store),
		rentals:    inmemory.NewRentalRepository(store),
		publisher:  &recordingPublisher{},
		customerID: customer.ID,
	}
	items := inmemory.NewItemRepository(store)
	f.manager = appinventory.NewManager(store, f.copies, items, inmemory.NewBatchRepository(store), books, logger.Discard())
	f.create = NewCreateRentalUseCase(store, f.copies, f.rentals, books, f.publisher, clock.Now, 0, logger.Discard())
	f.ret = NewReturnRentalUseCase(store, f.copies, f.rentals, f.publisher, clock.Now, logger.Discard())
	f.list = NewListRentalsUseCase(f.rentals)
	return f
}

func (f *fixture) provision(t *testing.T, n int, rentable bool) []uint {
	t.Helper()
	ids, err := f.manager.ProvisionCopies(context.Background(), testISBN, n, decimal.NewFromInt(30), rentable)
	require.NoError(t, err)
	return ids
}

func (f *fixture) status(t *testing.T, id uint) inventory.CopyStatus {
	t.Helper()
	c, err := f.copies.FindByID(context.Background(), id)
	require.NoError(t, err)
	return c.Status
}

func TestRentReturnRerent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ids := f.provision(t, 1, true)

	first, err := f.create.Execute(ctx, CreateRentalRequest{CustomerID: f.customerID, ISBN: testISBN})
	require.NoError(t, err)
	assert.Equal(t, ids[0], first.CopyID)
	assert.Equal(t, "Go语言设计与实现", first.BookTitle)
	assert.Equal(t, "Si Li", first.CustomerName)
	assert.Equal(t, rental.DefaultLoanPeriod, first.DueDate.Sub(first.RentDate))
	assert.Equal(t, inventory.CopyStatusRented, f.status(t, ids[0]))

	_, err = f.create.Execute(ctx, CreateRentalRequest{CustomerID: f.customerID, ISBN: testISBN})
	assert.ErrorIs(t, err, rental.ErrNotRentable)

	returned, err := f.ret.Execute(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, returned.ReturnDate)
	assert.True(t, returned.ReturnDate.After(returned.RentDate))
	assert.Equal(t, inventory.CopyStatusAvailable, f.status(t, ids[0]))

	_, err = f.ret.Execute(ctx, first.ID)
	assert.ErrorIs(t, err, rental.ErrAlreadyReturned)

	second, err := f.create.Execute(ctx, CreateRentalRequest{CustomerID: f.customerID, ISBN: testISBN})
	require.NoError(t, err)
	assert.Equal(t, ids[0], second.CopyID)
	assert.NotEqual(t, first.ID, second.ID)

	assert.Len(t, f.publisher.payloads[shared.EventRentalCreated], 2)
	assert.Len(t, f.publisher.payloads[shared.EventRentalReturned], 1)
}

func TestCreateRental_SkipsNonRentableCopies(t *testing.T) {
	f := setup(t)
	f.provision(t, 2, false)

	_, err := f.create.Execute(context.Background(), CreateRentalRequest{CustomerID: f.customerID, ISBN: testISBN})
	assert.ErrorIs(t, err, rental.ErrNotRentable)

	rentable := f.provision(t, 1, true)
	got, err := f.create.Execute(context.Background(), CreateRentalRequest{CustomerID: f.customerID, ISBN: testISBN})
	require.NoError(t, err)
	assert.Equal(t, rentable[0], got.CopyID)
}

func TestCreateRental_ByCopyID(t *testing.T) {
	f := setup(t)
	ids := f.provision(t, 2, true)

	got, err := f.create.Execute(context.Background(), CreateRentalRequest{CustomerID: f.customerID, CopyID: ids[1]})
	require.NoError(t, err)
	assert.Equal(t, testISBN, got.ISBN)

	_, err = f.create.Execute(context.Background(), CreateRentalRequest{CustomerID: f.customerID, CopyID: 999})
	assert.ErrorIs(t, err, inventory.ErrCopyNotFound)

	_, err = f.create.Execute(context.Background(), CreateRentalRequest{CustomerID: f.customerID})
	assert.ErrorIs(t, err, apperrors.ErrInvalidParams)
}

func TestCreateRental_UnknownCustomer(t *testing.T) {
	f := setup(t)
	ids := f.provision(t, 1, true)

	_, err := f.create.Execute(context.Background(), CreateRentalRequest{CustomerID: 999, ISBN: testISBN})
	assert.ErrorIs(t, err, catalog.ErrCustomerNotFound)
	assert.Equal(t, inventory.CopyStatusAvailable, f.status(t, ids[0]))
}

func TestCreateRental_OpenRentalOnAvailableCopy(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	ids := f.provision(t, 1, true)

	// 人为制造不一致：副本仍为available，但已有未归还记录
	require.NoError(t, f.rentals.Create(ctx, rental.NewRental(f.customerID, ids[0], time.Now(), 0)))

	_, err := f.create.Execute(ctx, CreateRentalRequest{CustomerID: f.customerID, ISBN: testISBN})
	assert.ErrorIs(t, err, apperrors.ErrInvariantViolation)
	assert.Equal(t, inventory.CopyStatusAvailable, f.status(t, ids[0]))
}

func TestReturnRental_NotFound(t *testing.T) {
	f := setup(t)
	_, err := f.ret.Execute(context.Background(), 404)
	assert.ErrorIs(t, err, rental.ErrRentalNotFound)
}

func TestCreateRental_ConcurrentSingleOpenRental(t *testing.T) {
	f := setup(t)
	const copies = 3
	f.provision(t, copies, true)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		rejected  int
	)
	for i := 0; i < copies+1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.create.Execute(context.Background(), CreateRentalRequest{CustomerID: f.customerID, ISBN: testISBN})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, rental.ErrNotRentable)
				rejected++
				return
			}
			succeeded++
		}()
	}
	wg.Wait()

	assert.Equal(t, copies, succeeded)
	assert.Equal(t, 1, rejected)

	open, err := f.list.List(context.Background(), rental.ListFilter{OpenOnly: true})
	require.NoError(t, err)
	seen := make(map[uint]bool)
	for _, r := range open {
		assert.False(t, seen[r.CopyID], "副本%d存在多条未归还记录", r.CopyID)
		seen[r.CopyID] = true
	}
	assert.Len(t, seen, copies)
}

func TestListRentals_Filters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.provision(t, 2, true)

	r1, err := f.create.Execute(ctx, CreateRentalRequest{CustomerID: f.customerID, ISBN: testISBN})
	require.NoError(t, err)
	_, err = f.create.Execute(ctx, CreateRentalRequest{CustomerID: f.customerID, ISBN: testISBN})
	require.NoError(t, err)
	_, err = f.ret.Execute(ctx, r1.ID)
	require.NoError(t, err)

	all, err := f.list.List(ctx, rental.ListFilter{CustomerID: f.customerID})
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.True(t, all[0].RentDate.After(all[1].RentDate), "按租借时间倒序")

	open, err := f.list.List(ctx, rental.ListFilter{OpenOnly: true})
	require.NoError(t, err)
	assert.Len(t, open, 1)

	got, err := f.list.Get(ctx, r1.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.ReturnDate)
}
