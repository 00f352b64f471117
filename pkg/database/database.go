package database

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/anon-forum/config"
	"github.com/d60-Lab/anon-forum/internal/model"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// InitDB 按配置打开数据库连接
func InitDB(cfg *config.Config) (*gorm.DB, error) {
	return Open(cfg.Database, cfg.Server.Mode == "debug")
}

// Open 打开 gorm 连接；TranslateError 使唯一约束冲突统一为 gorm.ErrDuplicatedKey
func Open(cfg config.DatabaseConfig, verbose bool) (*gorm.DB, error) {
	driver, dsn := ResolveDriver(cfg.Driver, cfg.DSN)

	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(withForeignKeys(dsn))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	logLevel := gormlogger.Warn
	if verbose {
		logLevel = gormlogger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(logLevel),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// sqlite 单写者；内存库每个连接都是独立的库
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		}
		sqlDB.SetConnMaxLifetime(time.Hour)
	}
	return db, nil
}

// withForeignKeys sqlite 默认不检查外键，通过 DSN 参数在每个连接上开启
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on"
}

// ResolveDriver 推断驱动并规范化 DSN
func ResolveDriver(driver, dsn string) (string, string) {
	if strings.HasPrefix(dsn, "sqlite:///") {
		return DriverSQLite, strings.TrimPrefix(dsn, "sqlite:///")
	}
	if driver != "" {
		return driver, dsn
	}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return DriverPostgres, dsn
	}
	return DriverSQLite, dsn
}

// AutoMigrate 建表（users, posts, replies）
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.User{}, &model.Post{}, &model.Reply{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Close 关闭底层连接池
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
