package service

import (
	"context"
	"strings"
	"time"

	"github.com/haierkeys/watermelon-notes/internal/domain"
	"github.com/haierkeys/watermelon-notes/pkg/code"
	"github.com/haierkeys/watermelon-notes/pkg/diff"
	"github.com/haierkeys/watermelon-notes/pkg/logger"
	"github.com/haierkeys/watermelon-notes/pkg/markup"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session drives the note components for one editing surface.
// It is not safe for concurrent use; callers serialize Dispatch.
// Session 为一个编辑界面驱动各笔记组件；非并发安全，调用方需串行调用 Dispatch
type Session struct {
	store     NoteStore
	folders   FolderService
	filter    *ViewFilter
	selection *SelectionCoordinator
	buffer    *markup.TextBuffer
	sink      EventSink
	logger    *zap.Logger
	config    *ServiceConfig

	view *View
}

// NewSession 创建会话
func NewSession(notes domain.NoteRepository, folders domain.FolderRepository, sink EventSink, logger *zap.Logger, config *ServiceConfig) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = EventSinkFunc(func(Event) {})
	}
	config = config.orDefault()
	store := NewNoteStore(notes, logger, config)
	return &Session{
		store:     store,
		folders:   NewFolderService(folders, store, logger),
		filter:    NewViewFilter(),
		selection: NewSelectionCoordinator(store, logger),
		buffer:    markup.NewTextBuffer(""),
		sink:      sink,
		logger:    logger,
		config:    config,
	}
}

// Start loads the store and publishes the initial state.
// A load failure is fatal for the caller.
// Start 加载笔记并发布初始状态；加载失败由调用方视为致命错误
func (s *Session) Start(ctx context.Context) error {
	if err := s.store.Load(ctx); err != nil {
		return err
	}
	if err := s.folders.EnsureDefaults(ctx, s.config.DefaultFolders); err != nil {
		return err
	}
	if err := s.emitFolders(ctx); err != nil {
		return err
	}
	s.emitView()
	s.sink.Emit(SelectionChanged{})
	return nil
}

// Close 保存所有待保存内容
func (s *Session) Close(ctx context.Context) error {
	return s.store.FlushAll(ctx)
}

// View 返回最近一次发布的视图
func (s *Session) View() *View {
	if s.view == nil {
		s.view = s.filter.Apply(s.store.Notes())
	}
	return s.view
}

// Notes 返回规范列表副本
func (s *Session) Notes() []domain.Note {
	return s.store.Notes()
}

// Note 按标识获取笔记副本
func (s *Session) Note(id uuid.UUID) (domain.Note, bool) {
	return s.store.Get(id)
}

// Folders 返回文件夹名称
func (s *Session) Folders(ctx context.Context) ([]string, error) {
	return s.folders.List(ctx)
}

// ActiveNote 返回当前笔记
func (s *Session) ActiveNote() (domain.Note, bool) {
	return s.selection.ActiveNote()
}

// Buffer 返回当前编辑缓冲区状态
func (s *Session) Buffer() BufferChanged {
	return s.bufferState()
}

// Dispatch handles one command to completion.
// Failures are returned and, except for missing targets, emitted as Error events.
// Dispatch 完整处理一条命令；失败会返回，除目标不存在外也会作为 Error 事件发出
func (s *Session) Dispatch(ctx context.Context, cmd Command) error {
	start := time.Now()
	name := "unknown"
	if cmd != nil {
		name = cmd.CommandName()
	}

	err := s.handle(ctx, cmd)

	kind := code.KindOf(err)
	commandsTotal.WithLabelValues(name, string(kind)).Inc()
	if err == nil {
		s.logger.Debug("command handled", zap.String(logger.FieldCommand, name), zap.Duration(logger.FieldDuration, time.Since(start)))
		return nil
	}

	if kind == code.KindNotFound {
		s.logger.Debug("command target not found", zap.String(logger.FieldCommand, name), zap.Error(err))
		return err
	}
	s.logger.Warn("command failed", zap.String(logger.FieldCommand, name), zap.Error(err))
	s.sink.Emit(errorEvent(err))
	return err
}

func (s *Session) handle(ctx context.Context, cmd Command) error {
	switch c := cmd.(type) {
	case CreateNote:
		return s.createNote(ctx, c)
	case DeleteSelected:
		return s.deleteSelected(ctx)
	case SelectAt:
		return s.selectAt(ctx, c)
	case SelectNote:
		n, err := s.selection.Select(ctx, c.ID)
		if err != nil {
			return err
		}
		s.selected(&n)
		return nil
	case SetSearchText:
		s.filter.SetSearch(c.Text)
		s.emitView()
		return nil
	case SetFolderScope:
		s.filter.SetScope(c.Scope)
		s.emitView()
		return nil
	case EditTitle:
		return s.editTitle(ctx, c)
	case EditContent:
		return s.editContent(c)
	case PatchContent:
		return s.patchContent(c)
	case ApplyMarkup:
		return s.applyMarkup(c.Kind)
	case ApplyShortcut:
		kind, ok := markup.KindForShortcut(c.Chord)
		if !ok {
			return nil
		}
		return s.applyMarkup(kind)
	case SetSelection:
		if _, ok := s.selection.Active(); !ok {
			return nil
		}
		s.buffer.Select(c.Start, c.End)
		return nil
	case ToggleCheckboxAt:
		return s.toggleCheckbox(c)
	case InsertImage:
		return s.insertImage(c)
	case MoveNoteToFolder:
		return s.moveNote(ctx, c)
	case RenameFolder:
		return s.renameFolder(ctx, c)
	case AddFolder:
		if _, err := s.folders.Add(ctx, c.Name); err != nil {
			return err
		}
		return s.emitFolders(ctx)
	case Flush:
		return s.store.FlushAll(ctx)
	default:
		name := "<nil>"
		if cmd != nil {
			name = cmd.CommandName()
		}
		return code.ErrorCommandInvalid.WithDetails(name)
	}
}

func (s *Session) createNote(ctx context.Context, c CreateNote) error {
	title := c.Title
	if strings.TrimSpace(title) == "" {
		title = s.config.DefaultNoteTitle
	}
	n, err := s.selection.CreateAndSelect(ctx, title, c.Content)
	if err != nil {
		return err
	}
	s.emitView()
	s.selected(&n)
	return nil
}

func (s *Session) deleteSelected(ctx context.Context) error {
	next, hasNext, deleted, err := s.selection.DeleteSelected(ctx)
	if err != nil || !deleted {
		return err
	}
	s.emitView()
	if hasNext {
		s.selected(&next)
	} else {
		s.selected(nil)
	}
	return nil
}

func (s *Session) selectAt(ctx context.Context, c SelectAt) error {
	view := s.View()
	if c.ViewVersion != nil && *c.ViewVersion != view.Version {
		return code.ErrorStaleView.WithDetails(
			"view version", uint64String(*c.ViewVersion), "current", uint64String(view.Version))
	}
	n, err := s.selection.SelectAt(ctx, view, c.Position)
	if err != nil {
		return err
	}
	s.selected(&n)
	return nil
}

func (s *Session) editTitle(ctx context.Context, c EditTitle) error {
	id, ok := s.selection.Active()
	if !ok {
		return nil
	}
	if strings.ContainsAny(c.Title, "\r\n") {
		return code.ErrorNoteTitleInvalid.WithDetails("title must be a single line")
	}
	if _, err := s.store.SetTitle(ctx, id, c.Title); err != nil {
		return err
	}
	s.emitView()
	return nil
}

func (s *Session) editContent(c EditContent) error {
	id, ok := s.selection.Active()
	if !ok {
		return nil
	}
	if _, err := s.store.SetContent(id, c.Content); err != nil {
		return err
	}
	s.buffer.SetText(c.Content)
	s.refreshSearch()
	return nil
}

func (s *Session) patchContent(c PatchContent) error {
	id, ok := s.selection.Active()
	if !ok {
		return nil
	}
	next, err := diff.ApplyPatch(s.buffer.String(), c.Patch)
	if err != nil {
		return code.ErrorPatchInvalid.WithCause(err)
	}
	if _, err := s.store.SetContent(id, next); err != nil {
		return err
	}
	s.buffer.SetText(next)
	s.sink.Emit(s.bufferState())
	s.refreshSearch()
	return nil
}

func (s *Session) applyMarkup(kind markup.Kind) error {
	if _, ok := s.selection.Active(); !ok {
		return nil
	}
	if err := markup.Apply(s.buffer, kind); err != nil {
		return err
	}
	return s.syncBuffer()
}

func (s *Session) toggleCheckbox(c ToggleCheckboxAt) error {
	if _, ok := s.selection.Active(); !ok {
		return nil
	}
	if !markup.ToggleCheckboxAt(s.buffer, c.Offset) {
		return nil
	}
	return s.syncBuffer()
}

func (s *Session) insertImage(c InsertImage) error {
	if _, ok := s.selection.Active(); !ok {
		return nil
	}
	if strings.TrimSpace(c.Path) == "" {
		return code.ErrorInvalidParams.WithDetails("image path is empty")
	}
	embed := markup.InsertImage(s.buffer, c.Path)
	if err := s.syncBuffer(); err != nil {
		return err
	}
	s.sink.Emit(EmbedInserted{Embed: embed})
	return nil
}

func (s *Session) moveNote(ctx context.Context, c MoveNoteToFolder) error {
	folder := domain.NormalizeFolderName(c.Folder)
	if folder != "" {
		ok, err := s.folders.Exists(ctx, folder)
		if err != nil {
			return err
		}
		if !ok {
			return code.ErrorFolderNotFound.WithDetails(folder)
		}
	}
	if _, err := s.store.SetFolder(ctx, c.ID, domain.FolderRef(folder)); err != nil {
		return err
	}
	s.emitView()
	return nil
}

func (s *Session) renameFolder(ctx context.Context, c RenameFolder) error {
	oldName := domain.NormalizeFolderName(c.Old)
	newName, err := s.folders.Rename(ctx, oldName, c.New)
	if err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	s.filter.RenameFolder(oldName, newName)
	if err := s.emitFolders(ctx); err != nil {
		return err
	}
	s.emitView()
	return nil
}

// syncBuffer 把缓冲区内容写回当前笔记并发出 BufferChanged
func (s *Session) syncBuffer() error {
	id, ok := s.selection.Active()
	if !ok {
		return nil
	}
	if _, err := s.store.SetContent(id, s.buffer.String()); err != nil {
		return err
	}
	s.sink.Emit(s.bufferState())
	s.refreshSearch()
	return nil
}

// selected 加载笔记到缓冲区并发出 SelectionChanged
func (s *Session) selected(n *domain.Note) {
	if n == nil {
		s.buffer.SetText("")
	} else {
		s.buffer.SetText(n.Content)
	}
	s.sink.Emit(selectionOf(n))
}

func (s *Session) emitView() {
	s.view = s.filter.Apply(s.store.Notes())
	s.sink.Emit(ViewChanged{View: s.view})
}

// refreshSearch republishes the view after a content edit when search membership changed.
// An unchanged membership keeps the current version so positions a client holds stay valid.
// refreshSearch 内容编辑后若搜索结果成员变化则重新发布视图；成员不变时保留当前版本
func (s *Session) refreshSearch() {
	if s.filter.Search() == "" {
		return
	}
	next := s.filter.Apply(s.store.Notes())
	if sameMembers(s.View(), next) {
		return
	}
	s.view = next
	s.sink.Emit(ViewChanged{View: s.view})
}

func sameMembers(a, b *View) bool {
	if a.Len() != b.Len() {
		return false
	}
	for i := range a.Entries {
		if a.Entries[i].ID != b.Entries[i].ID {
			return false
		}
	}
	return true
}

func (s *Session) emitFolders(ctx context.Context) error {
	names, err := s.folders.List(ctx)
	if err != nil {
		return err
	}
	s.sink.Emit(FolderListChanged{Names: names})
	return nil
}

func (s *Session) bufferState() BufferChanged {
	start, end := s.buffer.SelectionBounds()
	return BufferChanged{
		Content:        s.buffer.String(),
		SelectionStart: start,
		SelectionEnd:   end,
		Tags:           s.buffer.Tags(),
	}
}

func errorEvent(err error) ErrorOccurred {
	var c *code.Code
	if !asCode(err, &c) {
		c = code.ErrorServerInternal.WithDetails(err.Error())
	}
	return ErrorOccurred{
		Kind:    string(c.Kind()),
		Code:    c.Code(),
		Message: c.Msg(),
		Details: c.Details(),
	}
}
