// Package domain 定义领域模型和接口
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
)

// Note 笔记领域模型
type Note struct {
	ID        uuid.UUID
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
	// Folder is a loose reference by folder name; nil means untagged
	// Folder 按名称松散引用文件夹；nil 表示未归类
	Folder *string
}

// NewNote creates a note with a fresh identity and equal timestamps
// NewNote 创建带新标识的笔记，创建时间与更新时间相同
func NewNote(title, content string, now time.Time) Note {
	return Note{
		ID:        uuid.New(),
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy, the folder pointer is not shared
// Clone 深拷贝，不共享 folder 指针
func (n Note) Clone() Note {
	c := n
	if n.Folder != nil {
		f := *n.Folder
		c.Folder = &f
	}
	return c
}

// FolderName 返回文件夹名称，未归类时返回空串
func (n *Note) FolderName() string {
	if n.Folder == nil {
		return ""
	}
	return *n.Folder
}

// IsUntagged 判断笔记是否未归类
func (n *Note) IsUntagged() bool {
	return n.Folder == nil || *n.Folder == ""
}

// InFolder 判断笔记是否属于指定文件夹
func (n *Note) InFolder(name string) bool {
	return n.Folder != nil && *n.Folder == name
}

// Touch bumps UpdatedAt, never moving it backwards
// Touch 更新 UpdatedAt，不会倒退
func (n *Note) Touch(now time.Time) {
	if now.After(n.UpdatedAt) {
		n.UpdatedAt = now
	}
}

// Matches reports a substring match on title or content under Unicode case folding
// Matches 在 Unicode 大小写折叠下对标题或内容做子串匹配
func (n *Note) Matches(search string) bool {
	if search == "" {
		return true
	}
	fold := cases.Fold()
	q := fold.String(search)
	return strings.Contains(fold.String(n.Title), q) ||
		strings.Contains(fold.String(n.Content), q)
}

// FolderRef 把文件夹名称转换为引用，空串表示未归类
func FolderRef(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}
