package rdb

import (
	"context"
	"errors"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperrors "github.com/xiebiao/bookstore-core/pkg/errors"
	"github.com/xiebiao/bookstore-core/pkg/metrics"
)

// 可重试的冲突类错误
// MySQL:
//   - 1213: Deadlock found when trying to get lock
//   - 1205: Lock wait timeout exceeded
//   - 1062: Duplicate entry
//   - 1451/1452: 外键约束失败
//   - 3819: Check constraint is violated
var mysqlConflictCodes = map[uint16]bool{
	1213: true,
	1205: true,
	1062: true,
	1451: true,
	1452: true,
	3819: true,
}

// PostgreSQL SQLSTATE:
//   - 40P01 deadlock_detected, 40001 serialization_failure
//   - 55P03 lock_not_available（lock_timeout触发）
//   - 23505 unique_violation, 23503 foreign_key_violation, 23514 check_violation
var pgConflictCodes = map[string]bool{
	"40P01": true,
	"40001": true,
	"55P03": true,
	"23505": true,
	"23503": true,
	"23514": true,
}

// classify 把驱动错误转换为AppError
// 领域错误原样返回；死锁、锁等待超时、约束冲突和ctx超时归为ErrConflict；其余为数据库错误
func classify(err error, message string) error {
	if err == nil || apperrors.IsAppError(err) {
		return err
	}
	if isConflict(err) {
		metrics.IncCounter(metrics.TxConflictsTotal)
		return apperrors.ErrConflict.WithErr(err)
	}
	return apperrors.ErrDatabaseError.WithMessagef("%s", message).WithErr(err)
}

func isConflict(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) || errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}
	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		return mysqlConflictCodes[myErr.Number]
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgConflictCodes[pgErr.Code]
	}
	return false
}

// isDuplicate 唯一索引冲突
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *gomysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// notFound gorm.ErrRecordNotFound转换为领域错误
func notFound(err error, domainErr error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return classify(err, message)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
