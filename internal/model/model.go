package model

import (
	"gorm.io/gorm"
)

// AutoMigrate 按模型名执行迁移，key 为空时迁移全部
func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "Note":
		return db.AutoMigrate(Note{})

	case "Folder":
		return db.AutoMigrate(Folder{})

	case "":
		return db.AutoMigrate(Note{}, Folder{})
	}
	return nil
}
