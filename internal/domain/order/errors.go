package order

import (
	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrInvalidOrderItems 订单明细不合法
	ErrInvalidOrderItems = apperrors.New(apperrors.ErrCodeInvalidParams, "订单明细不能为空")

	// ErrInvalidQuantity 购买数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")

	// ErrInvalidLine 明细行必须指定isbn或item_id之一
	ErrInvalidLine = apperrors.New(apperrors.ErrCodeInvalidParams, "每行必须且只能指定isbn或item_id")

	// ErrCopyAsItem 图书副本只能通过isbn行预留，不能按item_id重复售卖
	ErrCopyAsItem = apperrors.New(apperrors.ErrCodeInvalidParams, "图书请按isbn下单")
)
