package inventory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookstore-core/internal/domain/catalog"
	"github.com/xiebiao/bookstore-core/internal/domain/inventory"
	"github.com/xiebiao/bookstore-core/internal/infrastructure/persistence/inmemory"
	"github.com/xiebiao/bookstore-core/pkg/logger"
)

const testISBN = "9787111544357"

type fixture struct {
	store   *inmemory.Store
	manager *Manager
	copies  inventory.CopyRepository
	items   inventory.ItemRepository
}

func setup(t *testing.T) *fixture {
	t.Helper()
	store, err := inmemory.NewStore()
	require.NoError(t, err)

	books := inmemory.NewCatalogRepository(store)
	book, err := catalog.NewBook(testISBN, "Go程序设计语言", 2016, []catalog.Authorship{{Name: "Alan Donovan"}})
	require.NoError(t, err)
	require.NoError(t, books.CreateBook(context.Background(), book))

	f := &fixture{
		store:  store,
		copies: inmemory.NewCopyRepository(store),
		items:  inmemory.NewItemRepository(store),
	}
	f.manager = NewManager(store, f.copies, f.items, inmemory.NewBatchRepository(store), books, logger.Discard())
	return f
}

func (f *fixture) summary(t *testing.T) *inventory.StockSummary {
	t.Helper()
	s, err := f.manager.Summary(context.Background(), testISBN)
	require.NoError(t, err)
	require.Len(t, s, 1)
	return s[0]
}

func TestProvisionThenReserve(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	provisioned, err := f.manager.ProvisionCopies(ctx, testISBN, 3, decimal.RequireFromString("25.50"), true)
	require.NoError(t, err)
	require.Len(t, provisioned, 3)

	item, err := f.items.FindByID(ctx, provisioned[2])
	require.NoError(t, err)
	assert.Equal(t, "Go程序设计语言 - Copy 3", item.Description)
	assert.Equal(t, inventory.ItemTypeBook, item.Type)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("25.5")))

	reserved, err := f.manager.ReserveCopies(ctx, testISBN, 2, false)
	require.NoError(t, err)
	assert.Equal(t, provisioned[:2], reserved, "按入库顺序预留")

	count, err := f.manager.AvailableCount(ctx, testISBN)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	s := f.summary(t)
	assert.EqualValues(t, 3, s.Total)
	assert.EqualValues(t, 2, s.Sold)
	assert.True(t, s.Balanced())
}

func TestProvisionCopies_NumberingContinues(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.manager.ProvisionCopies(ctx, testISBN, 2, decimal.NewFromInt(10), false)
	require.NoError(t, err)
	ids, err := f.manager.ProvisionCopies(ctx, testISBN, 1, decimal.NewFromInt(10), false)
	require.NoError(t, err)

	item, err := f.items.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, "Go程序设计语言 - Copy 3", item.Description)

	copies, err := f.manager.ListCopies(ctx, testISBN)
	require.NoError(t, err)
	require.Len(t, copies, 3)
	assert.Equal(t, copies[0].BatchID, copies[2].BatchID, "多次入库共用同一个默认批次")
}

func TestProvisionCopies_Validation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.manager.ProvisionCopies(ctx, "9780000000000", 1, decimal.NewFromInt(10), false)
	assert.ErrorIs(t, err, catalog.ErrBookNotFound)

	_, err = f.manager.ProvisionCopies(ctx, testISBN, 0, decimal.NewFromInt(10), false)
	assert.ErrorIs(t, err, inventory.ErrInvalidQuantity)

	_, err = f.manager.ProvisionCopies(ctx, testISBN, 1, decimal.NewFromInt(-1), false)
	assert.ErrorIs(t, err, inventory.ErrInvalidPrice)
}

func TestReserveCopies_Insufficient(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.manager.ProvisionCopies(ctx, testISBN, 2, decimal.NewFromInt(10), false)
	require.NoError(t, err)

	_, err = f.manager.ReserveCopies(ctx, testISBN, 3, false)
	require.Error(t, err)

	var insufficient *inventory.InsufficientInventoryError
	require.True(t, errors.As(err, &insufficient))
	assert.Equal(t, 3, insufficient.Requested)
	assert.EqualValues(t, 2, insufficient.Available)
	assert.ErrorIs(t, err, inventory.ErrInsufficientInventory)

	// 失败时不改变任何副本
	assert.EqualValues(t, 2, f.summary(t).Available)

	_, err = f.manager.ReserveCopies(ctx, "9780000000000", 1, false)
	assert.ErrorIs(t, err, catalog.ErrBookNotFound, "未登记的ISBN按图书不存在处理")
	assert.False(t, errors.As(err, &insufficient))
}

func TestReserveCopies_RentableOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.manager.ProvisionCopies(ctx, testISBN, 2, decimal.NewFromInt(10), false)
	require.NoError(t, err)
	rentable, err := f.manager.ProvisionCopies(ctx, testISBN, 1, decimal.NewFromInt(10), true)
	require.NoError(t, err)

	ids, err := f.manager.ReserveCopies(ctx, testISBN, 1, true)
	require.NoError(t, err)
	assert.Equal(t, rentable, ids)

	_, err = f.manager.ReserveCopies(ctx, testISBN, 1, true)
	assert.ErrorIs(t, err, inventory.ErrInsufficientInventory)
}

func TestReserveCopies_JoinsCallerTransaction(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	_, err := f.manager.ProvisionCopies(ctx, testISBN, 2, decimal.NewFromInt(10), false)
	require.NoError(t, err)

	boom := errors.New("later step failed")
	err = f.store.Transaction(ctx, func(txCtx context.Context) error {
		if _, err := f.manager.ReserveCopies(txCtx, testISBN, 2, false); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.EqualValues(t, 2, f.summary(t).Available, "外层回滚后副本恢复可用")
}

func TestReserveCopies_ConcurrentNoDoubleAllocation(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	const copies, buyers = 5, 12
	_, err := f.manager.ProvisionCopies(ctx, testISBN, copies, decimal.NewFromInt(10), false)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		sold     = make(map[uint]int)
		rejected int
	)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids, err := f.manager.ReserveCopies(ctx, testISBN, 1, false)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, inventory.ErrInsufficientInventory)
				rejected++
				return
			}
			for _, id := range ids {
				sold[id]++
			}
		}()
	}
	wg.Wait()

	assert.Len(t, sold, copies)
	for id, n := range sold {
		assert.Equal(t, 1, n, "副本%d被重复售出", id)
	}
	assert.Equal(t, buyers-copies, rejected)

	s := f.summary(t)
	assert.EqualValues(t, copies, s.Sold)
	assert.True(t, s.Balanced())
}
