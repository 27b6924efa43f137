// Package upgrade applies versioned data migrations on top of the gorm auto migration
// Package upgrade 在 gorm 自动迁移之上执行带版本号的数据升级
package upgrade

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/haierkeys/watermelon-notes/internal/dao"

	"go.uber.org/zap"
	"golang.org/x/mod/semver"
	"gorm.io/gorm"
)

// SchemaVersion 数据库版本记录表
type SchemaVersion struct {
	ID          int       `gorm:"primaryKey;autoIncrement" json:"id"`
	Version     string    `gorm:"not null;uniqueIndex;type:varchar(64)" json:"version"`
	Description string    `gorm:"type:text" json:"description"`
	AppliedAt   time.Time `gorm:"not null" json:"applied_at"`
}

// TableName 指定表名
func (SchemaVersion) TableName() string {
	return "schema_version"
}

// Migration 定义升级接口
type Migration interface {
	Version() string
	Description() string
	Up(ctx context.Context, tx *gorm.DB) error
}

// MigrationManager 升级管理器
type MigrationManager struct {
	dao        *dao.Dao
	logger     *zap.Logger
	migrations []Migration
}

// NewMigrationManager 创建升级管理器
func NewMigrationManager(d *dao.Dao, logger *zap.Logger, migrations ...Migration) *MigrationManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(migrations) == 0 {
		// 在这里注册所有的升级脚本
		migrations = []Migration{
			&FolderNameTrimMigrate{},
			&UpdatedAtBackfillMigrate{},
		}
	}
	return &MigrationManager{dao: d, logger: logger, migrations: migrations}
}

// canonical 补全 "v" 前缀，semver 库需要
func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// Run applies, in version order, every migration not yet recorded whose version
// is not newer than runningVersion. Each migration runs in its own transaction.
// Run 按版本顺序执行尚未记录、且不高于当前运行版本的升级，每个升级在独立事务中执行
func (m *MigrationManager) Run(ctx context.Context, runningVersion string) (int, error) {
	m.logger.Info("Migration started")
	if err := m.dao.Migrate(); err != nil {
		return 0, fmt.Errorf("failed to dao db auto migrate: %w", err)
	}

	db := m.dao.Db.WithContext(ctx)
	// 确保 schema_version 表存在
	if err := db.AutoMigrate(&SchemaVersion{}); err != nil {
		return 0, fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var records []SchemaVersion
	if err := db.Find(&records).Error; err != nil {
		return 0, fmt.Errorf("failed to get applied versions: %w", err)
	}
	applied := make(map[string]bool, len(records))
	for _, r := range records {
		applied[canonical(r.Version)] = true
	}

	running := canonical(runningVersion)
	if !semver.IsValid(running) {
		m.logger.Warn("running version is not a valid semver, applying every migration", zap.String("version", runningVersion))
		running = ""
	}

	pending := make([]Migration, 0, len(m.migrations))
	for _, migration := range m.migrations {
		v := canonical(migration.Version())
		if !semver.IsValid(v) {
			return 0, fmt.Errorf("migration %q has an invalid version", migration.Version())
		}
		if applied[v] {
			continue
		}
		if running != "" && semver.Compare(v, running) > 0 {
			m.logger.Info("skip migration newer than running version",
				zap.String("scriptVersion", v),
				zap.String("runningVersion", running))
			continue
		}
		pending = append(pending, migration)
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return semver.Compare(canonical(pending[i].Version()), canonical(pending[j].Version())) < 0
	})

	for _, migration := range pending {
		m.logger.Info("applying migration",
			zap.String("scriptVersion", migration.Version()),
			zap.String("desc", migration.Description()))

		// 在事务中执行升级
		if err := db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(ctx, tx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			record := &SchemaVersion{
				Version:     canonical(migration.Version()),
				Description: migration.Description(),
				AppliedAt:   time.Now(),
			}
			if err := tx.Create(record).Error; err != nil {
				return fmt.Errorf("failed to record version: %w", err)
			}
			return nil
		}); err != nil {
			return 0, fmt.Errorf("failed to apply migration %s: %w", migration.Version(), err)
		}
		m.logger.Info("migration applied successfully", zap.String("scriptVersion", migration.Version()))
	}

	if len(pending) == 0 {
		m.logger.Info("database is already up to date")
	} else {
		m.logger.Info("upgrade completed", zap.Int("migrations_applied", len(pending)))
	}
	return len(pending), nil
}

// Execute 执行升级(便捷方法)
func Execute(ctx context.Context, d *dao.Dao, logger *zap.Logger, runningVersion string) error {
	if d == nil || d.Db == nil {
		return fmt.Errorf("database not initialized")
	}
	_, err := NewMigrationManager(d, logger).Run(ctx, runningVersion)
	return err
}
