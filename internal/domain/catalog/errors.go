package catalog

import (
	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
)

// 目录领域错误定义
var (
	ErrBookNotFound     = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")
	ErrCustomerNotFound = apperrors.New(apperrors.ErrCodeCustomerNotFound, "顾客不存在")
	ErrISBNDuplicate    = apperrors.New(apperrors.ErrCodeISBNDuplicate, "ISBN号已存在")

	ErrInvalidISBN     = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")
	ErrInvalidTitle    = apperrors.New(apperrors.ErrCodeInvalidParams, "书名不能为空")
	ErrInvalidRating   = apperrors.New(apperrors.ErrCodeInvalidParams, "评分必须在0到5之间")
	ErrInvalidReviewer = apperrors.New(apperrors.ErrCodeInvalidParams, "评价人不能为空")
	ErrInvalidName     = apperrors.New(apperrors.ErrCodeInvalidParams, "顾客姓名不能为空")
)
