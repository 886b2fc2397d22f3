package rental

import (
	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
)

// 租借领域错误定义
var (
	ErrRentalNotFound = apperrors.New(apperrors.ErrCodeRentalNotFound, "租借记录不存在")

	// ErrNotRentable 没有可租借的副本
	ErrNotRentable = apperrors.New(apperrors.ErrCodeNotRentable, "该图书暂无可租借副本")

	ErrAlreadyReturned   = apperrors.New(apperrors.ErrCodeRentalReturned, "该租借已归还")
	ErrInvalidReturnDate = apperrors.New(apperrors.ErrCodeBusinessError, "归还时间必须晚于租借时间")
)
