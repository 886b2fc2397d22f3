package inventory

import (
	"fmt"

	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
)

// 库存领域错误定义
var (
	ErrItemNotFound = apperrors.New(apperrors.ErrCodeItemNotFound, "商品不存在")
	ErrCopyNotFound = apperrors.New(apperrors.ErrCodeCopyNotFound, "图书副本不存在")

	// ErrInsufficientInventory 可用副本不足（errors.Is匹配用）
	ErrInsufficientInventory = apperrors.New(apperrors.ErrCodeInsufficientInventory, "可用副本不足")

	ErrInvalidCopyStatus = apperrors.New(apperrors.ErrCodeInvalidCopyStatus, "副本状态不允许此操作")
	ErrInvalidQuantity   = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")
	ErrInvalidPrice      = apperrors.New(apperrors.ErrCodeInvalidParams, "价格不能为负数")
	ErrInvalidItemType   = apperrors.New(apperrors.ErrCodeInvalidParams, "商品类型必须为Book或Merchandise")
)

// InsufficientInventoryError 携带请求数量与实际可用数量
type InsufficientInventoryError struct {
	ISBN      string
	Requested int
	Available int64
}

func (e *InsufficientInventoryError) Error() string {
	return e.appError().Error()
}

// Unwrap 暴露为AppError，便于统一响应与errors.Is(err, ErrInsufficientInventory)
func (e *InsufficientInventoryError) Unwrap() error {
	return e.appError()
}

func (e *InsufficientInventoryError) appError() *apperrors.AppError {
	return apperrors.New(apperrors.ErrCodeInsufficientInventory,
		fmt.Sprintf("ISBN %s 仅有%d本可用，但请求了%d本", e.ISBN, e.Available, e.Requested))
}
