package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 应用错误
// 设计说明：
// 1. Code用于客户端判断错误类型，同时决定HTTP状态码（见HTTPStatus）
// 2. Message是用户可见的提示信息
// 3. Err是内部错误，仅写日志，不返回给客户端
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较
// 领域包声明的哨兵错误经过Newf/WithErr派生后，仍然可以用errors.Is(err, ErrXxx)判断
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf 格式化消息创建AppError
func Newf(code int, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装系统错误（数据库、网络等），隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WithErr 复制错误码和消息，附加内部原因
func (e *AppError) WithErr(err error) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Err: err}
}

// WithMessagef 复制错误码，替换消息（用于补充ISBN、订单号等上下文）
func (e *AppError) WithMessagef(format string, args ...interface{}) *AppError {
	return &AppError{Code: e.Code, Message: fmt.Sprintf(format, args...), Err: e.Err}
}

// =========================================
// 错误码定义
// =========================================
// 规范：
// - 4xxxx: 客户端错误（参数错误、业务规则校验失败）
// - 5xxxx: 服务端错误（数据库异常、锁冲突、不变量被破坏）

const (
	// 系统级错误码（50000-50099）
	ErrCodeInternal           = 50000 // 内部错误
	ErrCodeDatabaseError      = 50001 // 数据库错误
	ErrCodeRedisError         = 50002 // Redis错误
	ErrCodeConflict           = 50003 // 锁等待超时、死锁、约束冲突（可重试）
	ErrCodeInvariantViolation = 50004 // 数据不变量被破坏

	// 资源错误（40400-40499）
	ErrCodeNotFound          = 40400 // 资源不存在(通用)
	ErrCodeCustomerNotFound  = 40401 // 顾客不存在
	ErrCodeBookNotFound      = 40402 // 图书不存在
	ErrCodeOrderNotFound     = 40403 // 订单不存在
	ErrCodeItemNotFound      = 40404 // 商品不存在
	ErrCodeRentalNotFound    = 40405 // 租借记录不存在
	ErrCodePromotionNotFound = 40406 // 促销不存在
	ErrCodeCopyNotFound      = 40407 // 图书副本不存在

	// 业务规则错误（40000-40099）
	ErrCodeBusinessError         = 40000 // 业务错误(通用)
	ErrCodeInsufficientInventory = 40001 // 可用副本不足
	ErrCodeInvalidCopyStatus     = 40002 // 副本状态不允许此操作
	ErrCodeISBNDuplicate         = 40004 // ISBN已存在
	ErrCodeDuplicateEntry        = 40009 // 重复记录(通用)
	ErrCodeNotRentable           = 40010 // 无可租借副本
	ErrCodeRentalReturned        = 40011 // 租借已归还

	// 参数错误（40900-40999）
	ErrCodeInvalidParams = 40900 // 参数错误
	ErrCodeBindError     = 40901 // 参数绑定失败
)

var (
	ErrInternal           = New(ErrCodeInternal, "系统内部错误")
	ErrDatabaseError      = New(ErrCodeDatabaseError, "数据库错误")
	ErrRedisError         = New(ErrCodeRedisError, "缓存服务错误")
	ErrConflict           = New(ErrCodeConflict, "资源繁忙，请稍后重试")
	ErrInvariantViolation = New(ErrCodeInvariantViolation, "数据状态异常")

	ErrNotFound      = New(ErrCodeNotFound, "资源不存在")
	ErrInvalidParams = New(ErrCodeInvalidParams, "参数错误")
	ErrBindError     = New(ErrCodeBindError, "参数格式错误")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "系统内部错误")
}

// IsClientError 4xxxx错误码属于调用方问题
func IsClientError(err error) bool {
	code := GetAppError(err).Code
	return code >= 40000 && code < 50000
}

// HTTPStatus 错误码映射为HTTP状态码
func HTTPStatus(code int) int {
	switch {
	case code == ErrCodeInsufficientInventory,
		code == ErrCodeNotRentable,
		code == ErrCodeRentalReturned,
		code == ErrCodeInvalidCopyStatus,
		code == ErrCodeDuplicateEntry,
		code == ErrCodeISBNDuplicate:
		return http.StatusConflict
	case code == ErrCodeConflict:
		return http.StatusServiceUnavailable
	case code >= 40400 && code < 40500:
		return http.StatusNotFound
	case code >= 40000 && code < 50000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
