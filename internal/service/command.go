package service

import (
	"github.com/haierkeys/watermelon-notes/pkg/markup"

	"github.com/google/uuid"
)

// Command is an intent from the presentation layer
// Command 展示层发出的意图
type Command interface {
	CommandName() string
}

// CreateNote 新建笔记并选中；Title 为空时使用默认标题
type CreateNote struct {
	Title   string
	Content string
}

// DeleteSelected 删除当前笔记
type DeleteSelected struct{}

// SelectAt selects the note at a view position.
// A non-nil ViewVersion must equal the current view version.
// SelectAt 选中视图位置上的笔记；ViewVersion 非空时必须与当前视图版本一致
type SelectAt struct {
	Position    int
	ViewVersion *uint64
}

// SelectNote 按标识选中笔记
type SelectNote struct {
	ID uuid.UUID
}

// SetSearchText 修改搜索文本
type SetSearchText struct {
	Text string
}

// SetFolderScope 修改文件夹范围
type SetFolderScope struct {
	Scope Scope
}

// EditTitle 修改当前笔记标题
type EditTitle struct {
	Title string
}

// EditContent 用完整内容替换当前笔记内容
type EditContent struct {
	Content string
}

// PatchContent 用 diff-match-patch 补丁修改当前笔记内容
type PatchContent struct {
	Patch string
}

// ApplyMarkup 在当前选区应用标记
type ApplyMarkup struct {
	Kind markup.Kind
}

// ApplyShortcut 按快捷键应用标记，未知快捷键忽略
type ApplyShortcut struct {
	Chord string
}

// SetSelection 设置编辑选区
type SetSelection struct {
	Start int
	End   int
}

// ToggleCheckboxAt 切换偏移附近的复选框
type ToggleCheckboxAt struct {
	Offset int
}

// InsertImage 在选区插入图片
type InsertImage struct {
	Path string
}

// MoveNoteToFolder moves a note; an empty Folder means untagged
// MoveNoteToFolder 移动笔记；Folder 为空表示未归类
type MoveNoteToFolder struct {
	ID     uuid.UUID
	Folder string
}

// RenameFolder 重命名文件夹
type RenameFolder struct {
	Old string
	New string
}

// AddFolder 新增文件夹
type AddFolder struct {
	Name string
}

// Flush 保存所有待保存内容
type Flush struct{}

func (CreateNote) CommandName() string       { return "CreateNote" }
func (DeleteSelected) CommandName() string   { return "DeleteSelected" }
func (SelectAt) CommandName() string         { return "SelectAt" }
func (SelectNote) CommandName() string       { return "SelectNote" }
func (SetSearchText) CommandName() string    { return "SetSearchText" }
func (SetFolderScope) CommandName() string   { return "SetFolderScope" }
func (EditTitle) CommandName() string        { return "EditTitle" }
func (EditContent) CommandName() string      { return "EditContent" }
func (PatchContent) CommandName() string     { return "PatchContent" }
func (ApplyMarkup) CommandName() string      { return "ApplyMarkup" }
func (ApplyShortcut) CommandName() string    { return "ApplyShortcut" }
func (SetSelection) CommandName() string     { return "SetSelection" }
func (ToggleCheckboxAt) CommandName() string { return "ToggleCheckboxAt" }
func (InsertImage) CommandName() string      { return "InsertImage" }
func (MoveNoteToFolder) CommandName() string { return "MoveNoteToFolder" }
func (RenameFolder) CommandName() string     { return "RenameFolder" }
func (AddFolder) CommandName() string        { return "AddFolder" }
func (Flush) CommandName() string            { return "Flush" }
