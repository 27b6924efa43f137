// Package domain 定义领域模型和接口
package domain

import (
	"context"

	"github.com/google/uuid"
)

// NoteRepository 笔记仓储接口
type NoteRepository interface {
	// LoadAll 读取全部笔记，按 updated_at 降序
	LoadAll(ctx context.Context) ([]*Note, error)

	// Insert 插入新笔记
	Insert(ctx context.Context, note *Note) error

	// Replace 按标识整行覆盖；不存在时返回 gorm.ErrRecordNotFound
	Replace(ctx context.Context, note *Note) error

	// Remove 按标识删除；不存在时返回 gorm.ErrRecordNotFound
	Remove(ctx context.Context, id uuid.UUID) error

	// Count 笔记数量
	Count(ctx context.Context) (int64, error)
}

// FolderRepository 文件夹仓储接口
type FolderRepository interface {
	// List 按名称字典序列出文件夹
	List(ctx context.Context) ([]*Folder, error)

	// Insert 插入文件夹；已存在时返回 gorm.ErrDuplicatedKey
	Insert(ctx context.Context, folder *Folder) error

	// RenameCascade renames the folder record and rewrites every note that references it,
	// all inside one transaction
	// RenameCascade 在同一事务中重命名文件夹并改写所有引用它的笔记
	// 旧名称不存在返回 gorm.ErrRecordNotFound，新名称已存在返回 gorm.ErrDuplicatedKey
	RenameCascade(ctx context.Context, oldName, newName string) (affectedNotes int64, err error)

	// Count 文件夹数量
	Count(ctx context.Context) (int64, error)
}
