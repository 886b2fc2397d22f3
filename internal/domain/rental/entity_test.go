package rental

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRental_DueDate(t *testing.T) {
	rentAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	r := NewRental(1, 2, rentAt, 0)

	assert.Equal(t, time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC), r.DueDate)
	assert.True(t, r.IsOpen())
}

func TestRental_Return(t *testing.T) {
	rentAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("归还时间必须晚于租借时间", func(t *testing.T) {
		r := NewRental(1, 2, rentAt, DefaultLoanPeriod)
		assert.ErrorIs(t, r.Return(rentAt), ErrInvalidReturnDate)
		assert.True(t, r.IsOpen())
	})

	t.Run("重复归还", func(t *testing.T) {
		r := NewRental(1, 2, rentAt, DefaultLoanPeriod)
		require.NoError(t, r.Return(rentAt.Add(time.Hour)))
		assert.False(t, r.IsOpen())
		assert.ErrorIs(t, r.Return(rentAt.Add(2*time.Hour)), ErrAlreadyReturned)
	})

	t.Run("逾期判断", func(t *testing.T) {
		r := NewRental(1, 2, rentAt, DefaultLoanPeriod)
		assert.False(t, r.IsOverdue(rentAt.Add(24*time.Hour)))
		require.NoError(t, r.Return(rentAt.Add(15*24*time.Hour)))
		assert.True(t, r.IsOverdue(rentAt))
	})
}
