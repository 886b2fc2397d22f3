// Package rdb 关系型数据库存储（GORM，支持MySQL与PostgreSQL）
//
// 事务通过context传递：Transactor把*gorm.DB事务放入ctx，仓储从ctx取出，
// 因此同一个Transaction回调内的所有仓储调用处于同一事务。
// 副本状态的修改依赖行锁（SELECT ... FOR UPDATE）加条件更新。
package rdb

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/xiebiao/bookstore-core/internal/infrastructure/config"
)

// NewDB 创建数据库连接
// 设计说明：
// 1. 按database.driver选择MySQL或PostgreSQL方言
// 2. 行锁等待上限通过连接参数下发（MySQL innodb_lock_wait_timeout，PostgreSQL lock_timeout）
// 3. 开发环境打印SQL，生产环境只打印慢查询
// 4. auto_migrate为true时自动迁移表结构
func NewDB(cfg *config.Config, log *slog.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Database)
	if err != nil {
		return nil, err
	}

	logLevel := gormlogger.Warn
	if cfg.Server.Mode == "debug" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(slogWriter{log: log}, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logLevel,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("连接数据库失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取SQL DB失败: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库连接测试失败: %w", err)
	}
	log.Info("database connected", "driver", cfg.Database.Driver, "host", cfg.Database.Host, "dbname", cfg.Database.DBName)

	if cfg.Database.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("数据库迁移失败: %w", err)
		}
	}
	return db, nil
}

// AutoMigrate 自动迁移表结构
// 注意：生产环境应使用版本化的迁移脚本
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(allModels()...)
}

func dialectorFor(d config.DatabaseConfig) (gorm.Dialector, error) {
	switch d.Driver {
	case config.DriverMySQL:
		return mysql.Open(mysqlDSN(d)), nil
	case config.DriverPostgres:
		return postgres.Open(postgresDSN(d)), nil
	default:
		return nil, fmt.Errorf("不支持的数据库驱动: %q", d.Driver)
	}
}

// mysqlDSN go-sql-driver会把未知参数作为会话变量在建连时SET
func mysqlDSN(d config.DatabaseConfig) string {
	dsn := d.DSN()
	if secs := int(d.LockWaitTimeout / time.Second); secs > 0 {
		dsn += "&innodb_lock_wait_timeout=" + url.QueryEscape(fmt.Sprint(secs))
	}
	return dsn
}

// postgresDSN pgx把未知参数作为运行时参数下发
func postgresDSN(d config.DatabaseConfig) string {
	dsn := d.DSN()
	if ms := d.LockWaitTimeout.Milliseconds(); ms > 0 {
		dsn += fmt.Sprintf(" lock_timeout=%d", ms)
	}
	return dsn
}

// slogWriter 把GORM日志转到slog
type slogWriter struct {
	log *slog.Logger
}

func (w slogWriter) Printf(format string, args ...interface{}) {
	w.log.Info(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "gorm")
}
