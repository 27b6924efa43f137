package upgrade

import (
	"context"
	"strings"

	"github.com/haierkeys/watermelon-notes/internal/model"

	"gorm.io/gorm"
)

// FolderNameTrimMigrate trims whitespace around folder names and note folder references.
// Folders that collapse onto an existing name are merged; a blank reference becomes untagged.
// FolderNameTrimMigrate 去除文件夹名称与笔记文件夹引用两端的空白；重名的文件夹合并，空引用改为未归类
type FolderNameTrimMigrate struct{}

func (m *FolderNameTrimMigrate) Version() string {
	return "0.2.0"
}

func (m *FolderNameTrimMigrate) Description() string {
	return "Trim whitespace in folder names and note folder references"
}

func (m *FolderNameTrimMigrate) Up(ctx context.Context, tx *gorm.DB) error {
	var folders []model.Folder
	if err := tx.Find(&folders).Error; err != nil {
		return err
	}

	exists := make(map[string]bool, len(folders))
	for _, f := range folders {
		if strings.TrimSpace(f.Name) == f.Name {
			exists[f.Name] = true
		}
	}
	for _, f := range folders {
		trimmed := strings.TrimSpace(f.Name)
		if trimmed == f.Name {
			continue
		}
		if err := tx.Where("name = ?", f.Name).Delete(&model.Folder{}).Error; err != nil {
			return err
		}
		if trimmed == "" || exists[trimmed] {
			continue
		}
		if err := tx.Create(&model.Folder{Name: trimmed}).Error; err != nil {
			return err
		}
		exists[trimmed] = true
	}

	var notes []model.Note
	if err := tx.Where("folder IS NOT NULL").Find(&notes).Error; err != nil {
		return err
	}
	for _, n := range notes {
		trimmed := strings.TrimSpace(*n.Folder)
		if trimmed == *n.Folder {
			continue
		}
		var folder any = trimmed
		if trimmed == "" {
			folder = nil
		}
		if err := tx.Model(&model.Note{}).Where("id = ?", n.ID).Update("folder", folder).Error; err != nil {
			return err
		}
	}
	return nil
}
