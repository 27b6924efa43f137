// Package dao 实现数据访问层
package dao

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/haierkeys/watermelon-notes/internal/model"
	"github.com/haierkeys/watermelon-notes/pkg/util"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DatabaseConfig 数据库配置（dao 层使用，与 app 配置解耦）
type DatabaseConfig struct {
	Type            string
	Path            string
	UserName        string
	Password        string
	Host            string
	Name            string
	TablePrefix     string
	AutoMigrate     bool
	Charset         string
	ParseTime       bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string
	ConnMaxIdleTime string
	RunMode         string
}

// Dao 数据访问对象，持有连接和迁移状态
type Dao struct {
	Db     *gorm.DB
	config *DatabaseConfig
	logger *zap.Logger

	migrateOnce sync.Once
	migrateErr  error
}

// Option Dao 选项
type Option func(*Dao)

// WithConfig 设置数据库配置
func WithConfig(c *DatabaseConfig) Option {
	return func(d *Dao) {
		d.config = c
	}
}

// WithLogger 设置日志器
func WithLogger(l *zap.Logger) Option {
	return func(d *Dao) {
		d.logger = l
	}
}

// New 创建 Dao 实例
func New(db *gorm.DB, opts ...Option) *Dao {
	d := &Dao{Db: db}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	if d.config == nil {
		d.config = &DatabaseConfig{AutoMigrate: true}
	}
	return d
}

// Logger 获取日志器
func (d *Dao) Logger() *zap.Logger {
	return d.logger
}

// Migrate runs the schema migration once per Dao
// Migrate 每个 Dao 只执行一次表结构迁移
func (d *Dao) Migrate() error {
	d.migrateOnce.Do(func() {
		if !d.config.AutoMigrate {
			return
		}
		if err := model.AutoMigrate(d.Db, ""); err != nil {
			d.migrateErr = errors.Wrap(err, "auto migrate failed")
			d.logger.Error("auto migrate failed", zap.Error(err))
		}
	})
	return d.migrateErr
}

// conn returns a context bound session after making sure the schema exists
// conn 确保表结构存在后返回绑定 context 的会话
func (d *Dao) conn(ctx context.Context) (*gorm.DB, error) {
	if err := d.Migrate(); err != nil {
		return nil, err
	}
	return d.Db.WithContext(ctx), nil
}

// Transaction 在事务中执行 fn
func (d *Dao) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db, err := d.conn(ctx)
	if err != nil {
		return err
	}
	return db.Transaction(fn)
}

// NewDBEngineWithConfig 根据配置创建数据库连接
func NewDBEngineWithConfig(c DatabaseConfig, lg *zap.Logger) (*gorm.DB, error) {
	dialector, err := useDialector(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix, // 表名前缀
			SingularTable: true,          // 使用单数表名，模型通过 TableName 指定真实表名
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database failed")
	}

	if c.RunMode == "debug" {
		db.Config.Logger = logger.Default.LogMode(logger.Info)
	}

	// 获取通用数据库对象 sql.DB ，然后使用其提供的功能
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if c.Type == "sqlite" {
		// SQLite 只允许单写连接，避免 database is locked
		sqlDB.SetMaxOpenConns(1)
	} else {
		// SetMaxIdleConns 用于设置连接池中空闲连接的最大数量。
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
		// SetMaxOpenConns 设置打开数据库连接的最大数量。
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}

	// SetConnMaxLifetime 设置了连接可复用的最大时间。
	sqlDB.SetConnMaxLifetime(parseDurationOr(c.ConnMaxLifetime, 30*time.Minute))
	sqlDB.SetConnMaxIdleTime(parseDurationOr(c.ConnMaxIdleTime, 10*time.Minute))

	if lg != nil {
		lg.Info("database connected", zap.String("type", c.Type))
	}
	return db, nil
}

func parseDurationOr(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := util.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}

func useDialector(c DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			c.Charset,
			c.ParseTime,
		)), nil
	case "postgres":
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
			c.Host,
			c.UserName,
			c.Password,
			c.Name,
		)), nil
	case "sqlite", "":
		if c.Path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(c.Path), os.ModePerm); err != nil {
				return nil, errors.Wrap(err, "create database directory failed")
			}
		}
		return sqlite.Open(c.Path), nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", c.Type)
}
