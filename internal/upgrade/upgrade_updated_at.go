package upgrade

import (
	"context"
	"time"

	"github.com/haierkeys/watermelon-notes/internal/model"
	"github.com/haierkeys/watermelon-notes/pkg/timex"

	"gorm.io/gorm"
)

// UpdatedAtBackfillMigrate fills blank timestamps so that every stored note parses and sorts
// UpdatedAtBackfillMigrate 补全空白时间戳，保证每条笔记都能解析并参与排序
type UpdatedAtBackfillMigrate struct {
	// Now 测试用时钟
	Now func() time.Time
}

func (m *UpdatedAtBackfillMigrate) Version() string {
	return "0.3.0"
}

func (m *UpdatedAtBackfillMigrate) Description() string {
	return "Backfill blank note timestamps"
}

func (m *UpdatedAtBackfillMigrate) Up(ctx context.Context, tx *gorm.DB) error {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	stamp := timex.Format(now())

	if err := tx.Model(&model.Note{}).Where("created_at = ''").Update("created_at", stamp).Error; err != nil {
		return err
	}
	return tx.Model(&model.Note{}).Where("updated_at = ''").Update("updated_at", gorm.Expr("created_at")).Error
}
