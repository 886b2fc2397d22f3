package inventory

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
)

func TestCopyStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to CopyStatus
		want     bool
	}{
		{CopyStatusAvailable, CopyStatusSold, true},
		{CopyStatusAvailable, CopyStatusRented, true},
		{CopyStatusRented, CopyStatusAvailable, true},
		{CopyStatusRented, CopyStatusSold, false},
		{CopyStatusSold, CopyStatusAvailable, false},
		{CopyStatusSold, CopyStatusRented, false},
		{CopyStatusAvailable, CopyStatusAvailable, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s→%s", tt.from, tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestBookCopy_Transition(t *testing.T) {
	c := NewBookCopy(1, "9787111558422", 1, true)
	require.Equal(t, CopyStatusAvailable, c.Status)

	require.NoError(t, c.Transition(CopyStatusSold))
	err := c.Transition(CopyStatusAvailable)
	assert.ErrorIs(t, err, ErrInvalidCopyStatus)
	assert.Equal(t, CopyStatusSold, c.Status)
}

func TestNewItem(t *testing.T) {
	_, err := NewItem("帆布袋", decimal.NewFromInt(-1), ItemTypeMerchandise)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = NewItem("帆布袋", decimal.Zero, ItemType("Food"))
	assert.ErrorIs(t, err, ErrInvalidItemType)

	item, err := NewItem("帆布袋", decimal.RequireFromString("25.50"), ItemTypeMerchandise)
	require.NoError(t, err)
	assert.True(t, item.Price.Equal(decimal.RequireFromString("25.5")))
}

func TestInsufficientInventoryError(t *testing.T) {
	err := fmt.Errorf("预留副本: %w", &InsufficientInventoryError{ISBN: "ISBN1", Requested: 3, Available: 1})

	assert.ErrorIs(t, err, ErrInsufficientInventory)

	var target *InsufficientInventoryError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, 3, target.Requested)
	assert.EqualValues(t, 1, target.Available)

	appErr := apperrors.GetAppError(err)
	assert.Equal(t, apperrors.ErrCodeInsufficientInventory, appErr.Code)
	assert.Contains(t, appErr.Message, "仅有1本可用，但请求了3本")
}

func TestStockSummary_Balanced(t *testing.T) {
	assert.True(t, StockSummary{Total: 5, Available: 2, Sold: 2, Rented: 1}.Balanced())
	assert.False(t, StockSummary{Total: 5, Available: 2, Sold: 2}.Balanced())
}

func TestCopyDescription(t *testing.T) {
	assert.Equal(t, "Go程序设计语言 - Copy 2", CopyDescription("Go程序设计语言", 2))
}
