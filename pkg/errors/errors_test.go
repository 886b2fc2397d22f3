package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Is(t *testing.T) {
	sentinel := New(ErrCodeBookNotFound, "图书不存在")

	t.Run("派生错误按错误码匹配", func(t *testing.T) {
		derived := sentinel.WithMessagef("图书不存在: %s", "978-0")
		assert.True(t, errors.Is(derived, sentinel))
		assert.Equal(t, "图书不存在: 978-0", derived.Message)
	})

	t.Run("fmt包装后仍可匹配", func(t *testing.T) {
		wrapped := fmt.Errorf("rent: %w", sentinel.WithErr(errors.New("record not found")))
		assert.True(t, errors.Is(wrapped, sentinel))
		assert.False(t, errors.Is(wrapped, ErrNotFound))
	})

	t.Run("不同错误码不匹配", func(t *testing.T) {
		assert.False(t, errors.Is(ErrConflict, sentinel))
	})
}

func TestGetAppError(t *testing.T) {
	raw := errors.New("driver: bad connection")
	appErr := GetAppError(raw)
	assert.Equal(t, ErrCodeInternal, appErr.Code)
	assert.ErrorIs(t, appErr, raw)

	inner := Newf(ErrCodeInsufficientInventory, "仅剩%d本", 1)
	assert.Same(t, inner, GetAppError(fmt.Errorf("order: %w", inner)))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[int]int{
		ErrCodeBookNotFound:          http.StatusNotFound,
		ErrCodeRentalNotFound:        http.StatusNotFound,
		ErrCodeInsufficientInventory: http.StatusConflict,
		ErrCodeNotRentable:           http.StatusConflict,
		ErrCodeInvalidParams:         http.StatusBadRequest,
		ErrCodeConflict:              http.StatusServiceUnavailable,
		ErrCodeInvariantViolation:    http.StatusInternalServerError,
		ErrCodeDatabaseError:         http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), "code %d", code)
	}
	assert.True(t, IsClientError(New(ErrCodeNotRentable, "x")))
	assert.False(t, IsClientError(ErrConflict))
}
