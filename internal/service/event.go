package service

import (
	"github.com/haierkeys/watermelon-notes/internal/domain"
	"github.com/haierkeys/watermelon-notes/pkg/markup"

	"github.com/google/uuid"
)

// Event names as they appear on the wire
// 事件在传输中的名称
const (
	EventViewChanged       = "ViewChanged"
	EventSelectionChanged  = "SelectionChanged"
	EventFolderListChanged = "FolderListChanged"
	EventError             = "Error"
	EventBufferChanged     = "BufferChanged"
	EventEmbedInserted     = "EmbedInserted"
)

// Event is produced by the session for the presentation layer
// Event 会话产生、供展示层消费的事件
type Event interface {
	EventName() string
}

// EventSink receives events in the order they are produced
// EventSink 按产生顺序接收事件
type EventSink interface {
	Emit(e Event)
}

// EventSinkFunc adapts a function to EventSink
type EventSinkFunc func(e Event)

func (f EventSinkFunc) Emit(e Event) { f(e) }

// ViewChanged 列表视图变化
type ViewChanged struct {
	View *View
}

// SelectionChanged carries the newly active note; ID is nil for no selection
// SelectionChanged 当前笔记变化；ID 为 nil 表示无选中
type SelectionChanged struct {
	ID      *uuid.UUID
	Title   string
	Content string
	Folder  *string
}

// FolderListChanged 文件夹列表变化
type FolderListChanged struct {
	Names []string
}

// ErrorOccurred 命令失败
type ErrorOccurred struct {
	Kind    string
	Code    int
	Message string
	Details []string
}

// BufferChanged 编辑缓冲区内容、选区或样式变化
type BufferChanged struct {
	Content        string
	SelectionStart int
	SelectionEnd   int
	Tags           []markup.Tag
}

// EmbedInserted 插入了嵌入对象
type EmbedInserted struct {
	Embed markup.Embed
}

func (ViewChanged) EventName() string       { return EventViewChanged }
func (SelectionChanged) EventName() string  { return EventSelectionChanged }
func (FolderListChanged) EventName() string { return EventFolderListChanged }
func (ErrorOccurred) EventName() string     { return EventError }
func (BufferChanged) EventName() string     { return EventBufferChanged }
func (EmbedInserted) EventName() string     { return EventEmbedInserted }

func selectionOf(n *domain.Note) SelectionChanged {
	if n == nil {
		return SelectionChanged{}
	}
	id := n.ID
	c := n.Clone()
	return SelectionChanged{ID: &id, Title: c.Title, Content: c.Content, Folder: c.Folder}
}
