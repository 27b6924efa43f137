package dao

import (
	"context"

	"github.com/haierkeys/watermelon-notes/internal/domain"
	"github.com/haierkeys/watermelon-notes/internal/model"
	"github.com/haierkeys/watermelon-notes/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type folderRepository struct {
	*Dao
}

func NewFolderRepository(d *Dao) domain.FolderRepository {
	return &folderRepository{Dao: d}
}

func (r *folderRepository) modelToDomain(m *model.Folder) *domain.Folder {
	if m == nil {
		return nil
	}
	return &domain.Folder{Name: m.Name}
}

func (r *folderRepository) domainToModel(f *domain.Folder) *model.Folder {
	if f == nil {
		return nil
	}
	return &model.Folder{Name: f.Name}
}

func (r *folderRepository) List(ctx context.Context) ([]*domain.Folder, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return nil, err
	}
	var ms []*model.Folder
	if err := db.Order("name ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	res := make([]*domain.Folder, 0, len(ms))
	for _, m := range ms {
		res = append(res, r.modelToDomain(m))
	}
	return res, nil
}

func (r *folderRepository) exists(tx *gorm.DB, name string) (bool, error) {
	var n int64
	if err := tx.Model(&model.Folder{}).Where("name = ?", name).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *folderRepository) Insert(ctx context.Context, folder *domain.Folder) error {
	return r.Transaction(ctx, func(tx *gorm.DB) error {
		ok, err := r.exists(tx, folder.Name)
		if err != nil {
			return err
		}
		if ok {
			return gorm.ErrDuplicatedKey
		}
		return tx.Create(r.domainToModel(folder)).Error
	})
}

// RenameCascade 在同一事务中重命名文件夹并改写笔记引用
func (r *folderRepository) RenameCascade(ctx context.Context, oldName, newName string) (int64, error) {
	var affected int64
	err := r.Transaction(ctx, func(tx *gorm.DB) error {
		ok, err := r.exists(tx, oldName)
		if err != nil {
			return err
		}
		if !ok {
			return gorm.ErrRecordNotFound
		}
		ok, err = r.exists(tx, newName)
		if err != nil {
			return err
		}
		if ok {
			return gorm.ErrDuplicatedKey
		}

		if err := tx.Model(&model.Folder{}).Where("name = ?", oldName).Update("name", newName).Error; err != nil {
			return err
		}
		result := tx.Model(&model.Note{}).Where("folder = ?", oldName).Update("folder", newName)
		if result.Error != nil {
			return result.Error
		}
		affected = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	r.logger.Info("folder renamed",
		zap.String(logger.FieldFolder, newName),
		zap.String("from", oldName),
		zap.Int64(logger.FieldCount, affected))
	return affected, nil
}

func (r *folderRepository) Count(ctx context.Context) (int64, error) {
	db, err := r.conn(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	err = db.Model(&model.Folder{}).Count(&n).Error
	return n, err
}
