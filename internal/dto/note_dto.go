// Package dto Defines data transfer objects (request parameters and response structs)
// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

import (
	"github.com/haierkeys/watermelon-notes/internal/domain"
	"github.com/haierkeys/watermelon-notes/internal/service"
	"github.com/haierkeys/watermelon-notes/pkg/convert"
	"github.com/haierkeys/watermelon-notes/pkg/markup"
	"github.com/haierkeys/watermelon-notes/pkg/timex"
)

// NoteDTO Note data transfer object
// NoteDTO 笔记数据传输对象
type NoteDTO struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Content   string     `json:"content"`
	Folder    *string    `json:"folder"`
	CreatedAt timex.Time `json:"createdAt"`
	UpdatedAt timex.Time `json:"updatedAt"`
}

// ViewEntryDTO one row of the note list
// ViewEntryDTO 笔记列表中的一行
type ViewEntryDTO struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Preview   string     `json:"preview"`
	Folder    *string    `json:"folder"`
	UpdatedAt timex.Time `json:"updatedAt"`
}

// ScopeDTO folder scope of a view
// ScopeDTO 视图的文件夹范围
type ScopeDTO struct {
	Kind   string `json:"kind"`
	Folder string `json:"folder,omitempty"`
}

// ViewDTO filtered and searched note list
// ViewDTO 经过范围与搜索过滤后的笔记列表
type ViewDTO struct {
	Version    uint64         `json:"version"`
	Scope      ScopeDTO       `json:"scope"`
	ScopeLabel string         `json:"scopeLabel"`
	Search     string         `json:"search"`
	Entries    []ViewEntryDTO `json:"entries"`
}

// SelectionDTO active note; id is null when nothing is selected
// SelectionDTO 当前笔记；无选中时 id 为 null
type SelectionDTO struct {
	ID      *string `json:"id"`
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Folder  *string `json:"folder"`
}

// FolderListDTO folder names in lexicographic order
// FolderListDTO 按字典序排列的文件夹名称
type FolderListDTO struct {
	Names []string `json:"names"`
}

// BufferDTO editor buffer state
// BufferDTO 编辑缓冲区状态
type BufferDTO struct {
	Content        string       `json:"content"`
	SelectionStart int          `json:"selectionStart"`
	SelectionEnd   int          `json:"selectionEnd"`
	Tags           []markup.Tag `json:"tags"`
}

// EmbedDTO embedded object anchored in the buffer
// EmbedDTO 锚定在缓冲区中的嵌入对象
type EmbedDTO struct {
	Kind   string `json:"kind"`
	Offset int    `json:"offset"`
	Source string `json:"source"`
}

// ErrorDTO failed command
// ErrorDTO 命令失败信息
type ErrorDTO struct {
	Kind    string   `json:"kind"`
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// NoteGetRequest 单条笔记请求参数
type NoteGetRequest struct {
	ID string `json:"id" form:"id" binding:"required,uuid"`
}

// NotePreviewRequest Request parameters for the rendered note preview
// NotePreviewRequest 笔记渲染预览请求参数
type NotePreviewRequest struct {
	ID string `json:"id" form:"id" binding:"required,uuid"`
}

// NotePreviewDTO rendered note
// NotePreviewDTO 渲染后的笔记
type NotePreviewDTO struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// NewNoteDTO 领域笔记转换为 DTO
func NewNoteDTO(n domain.Note) *NoteDTO {
	d := &NoteDTO{}
	_ = convert.StructAssign(&n, d)
	return d
}

// NewViewDTO 视图转换为 DTO
func NewViewDTO(v *service.View) *ViewDTO {
	d := &ViewDTO{Entries: []ViewEntryDTO{}}
	if v == nil {
		return d
	}
	d.Version = v.Version
	d.Scope = ScopeDTO{Kind: string(v.Scope.Kind), Folder: v.Scope.Folder}
	d.ScopeLabel = v.ScopeLabel
	d.Search = v.Search
	for i := range v.Entries {
		var e ViewEntryDTO
		_ = convert.StructAssign(&v.Entries[i], &e)
		d.Entries = append(d.Entries, e)
	}
	return d
}

// NewSelectionDTO 选中状态转换为 DTO
func NewSelectionDTO(s service.SelectionChanged) *SelectionDTO {
	d := &SelectionDTO{Title: s.Title, Content: s.Content, Folder: s.Folder}
	if s.ID != nil {
		id := s.ID.String()
		d.ID = &id
	}
	return d
}

// NewBufferDTO 缓冲区状态转换为 DTO
func NewBufferDTO(b service.BufferChanged) *BufferDTO {
	d := &BufferDTO{
		Content:        b.Content,
		SelectionStart: b.SelectionStart,
		SelectionEnd:   b.SelectionEnd,
		Tags:           b.Tags,
	}
	if d.Tags == nil {
		d.Tags = []markup.Tag{}
	}
	return d
}
