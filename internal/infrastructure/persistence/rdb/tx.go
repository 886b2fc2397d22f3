package rdb

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager 事务管理器
// 1. fn内的所有Repository操作都会在同一事务中执行
// 2. fn返回error时ROLLBACK，返回nil时COMMIT
// 3. ctx已携带事务时在外层事务内开启savepoint，内层失败只回滚到savepoint
type TxManager struct {
	db *gorm.DB
}

// NewTxManager 创建事务管理器
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// Transaction 执行事务
//
//	err := txManager.Transaction(ctx, func(ctx context.Context) error {
//	    copies, err := copyRepo.LockAvailable(ctx, isbn, 2, false)
//	    if err != nil {
//	        return err
//	    }
//	    _, err = copyRepo.TransitionStatus(ctx, ids(copies), inventory.CopyStatusAvailable, inventory.CopyStatusSold)
//	    return err
//	})
func (m *TxManager) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return classify(err, "开启事务失败")
	}
	err := conn(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	return classify(err, "事务执行失败")
}

// conn 从context获取事务DB，没有则使用默认DB
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
