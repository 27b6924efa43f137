package dao

import (
	"context"
	"time"

	"github.com/haierkeys/watermelon-notes/internal/domain"
	"github.com/haierkeys/watermelon-notes/internal/model"
	"github.com/haierkeys/watermelon-notes/pkg/logger"
	"github.com/haierkeys/watermelon-notes/pkg/timex"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
	now func() time.Time
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao, now: func() time.Time { return time.Now().UTC() }}
}

// toDomain converts a row; a malformed id or timestamp falls back to a fresh value
// toDomain 将数据库模型转换为领域模型；格式错误的 id 或时间回退为新值
func (r *noteRepository) toDomain(m *model.Note) *domain.Note {
	if m == nil {
		return nil
	}

	id, err := uuid.Parse(m.ID)
	if err != nil {
		id = uuid.New()
		r.dao.logger.Warn("malformed note id, using fresh identity",
			zap.String("raw", m.ID),
			zap.String(logger.FieldNoteID, id.String()),
			zap.Error(err))
	}

	note := &domain.Note{
		ID:        id,
		Title:     m.Title,
		Content:   m.Content,
		CreatedAt: r.parseTime(m.CreatedAt, "created_at", id),
		UpdatedAt: r.parseTime(m.UpdatedAt, "updated_at", id),
	}
	if m.Folder != nil {
		f := *m.Folder
		note.Folder = &f
	}
	// 保证 UpdatedAt >= CreatedAt
	note.UpdatedAt = timex.Later(note.CreatedAt, note.UpdatedAt)
	return note
}

func (r *noteRepository) parseTime(raw, column string, id uuid.UUID) time.Time {
	t, err := timex.Parse(raw)
	if err != nil {
		t = r.now()
		r.dao.logger.Warn("malformed note timestamp, using current time",
			zap.String("column", column),
			zap.String("raw", raw),
			zap.String(logger.FieldNoteID, id.String()),
			zap.Error(err))
	}
	return t
}

// toModel 将领域模型转换为数据库模型
func (r *noteRepository) toModel(note *domain.Note) *model.Note {
	if note == nil {
		return nil
	}
	m := &model.Note{
		ID:        note.ID.String(),
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: timex.Format(note.CreatedAt),
		UpdatedAt: timex.Format(note.UpdatedAt),
	}
	if note.Folder != nil {
		f := *note.Folder
		m.Folder = &f
	}
	return m
}

// LoadAll 读取全部笔记，按 updated_at 降序
func (r *noteRepository) LoadAll(ctx context.Context) ([]*domain.Note, error) {
	db, err := r.dao.conn(ctx)
	if err != nil {
		return nil, err
	}
	var ms []*model.Note
	if err := db.Order("updated_at DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	res := make([]*domain.Note, 0, len(ms))
	for _, m := range ms {
		note := r.toDomain(m)
		if note.ID.String() != m.ID {
			// 行的主键必须与内存中的身份一致，否则后续写入和删除都找不到该行
			if err := r.rekey(db, m.ID, note.ID); err != nil {
				return nil, err
			}
		}
		res = append(res, note)
	}
	return res, nil
}

// rekey stores the fresh identity given to a row whose id could not be parsed
// rekey 把为格式错误的 id 生成的新身份写回存储
func (r *noteRepository) rekey(db *gorm.DB, raw string, id uuid.UUID) error {
	result := db.Model(&model.Note{}).Where("id = ?", raw).Update("id", id.String())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	r.dao.logger.Warn("malformed note id rewritten",
		zap.String("raw", raw),
		zap.String(logger.FieldNoteID, id.String()))
	return nil
}

// Insert 插入新笔记
func (r *noteRepository) Insert(ctx context.Context, note *domain.Note) error {
	db, err := r.dao.conn(ctx)
	if err != nil {
		return err
	}
	return db.Create(r.toModel(note)).Error
}

// Replace overwrites every column of the row, including a nil folder
// Replace 覆盖整行，包括 nil 的 folder
func (r *noteRepository) Replace(ctx context.Context, note *domain.Note) error {
	db, err := r.dao.conn(ctx)
	if err != nil {
		return err
	}
	m := r.toModel(note)
	result := db.Model(&model.Note{}).
		Where("id = ?", m.ID).
		Select("title", "content", "created_at", "updated_at", "folder").
		Updates(m)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// MySQL 对未变化的行返回 0，需要再确认是否存在
		var n int64
		if err := db.Model(&model.Note{}).Where("id = ?", m.ID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

// Remove 按标识删除
func (r *noteRepository) Remove(ctx context.Context, id uuid.UUID) error {
	db, err := r.dao.conn(ctx)
	if err != nil {
		return err
	}
	result := db.Where("id = ?", id.String()).Delete(&model.Note{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Count 笔记数量
func (r *noteRepository) Count(ctx context.Context) (int64, error) {
	db, err := r.dao.conn(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	err = db.Model(&model.Note{}).Count(&n).Error
	return n, err
}
