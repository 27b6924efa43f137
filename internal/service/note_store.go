package service

import (
	"context"
	"errors"
	"sort"

	"github.com/haierkeys/watermelon-notes/internal/domain"
	"github.com/haierkeys/watermelon-notes/pkg/code"
	"github.com/haierkeys/watermelon-notes/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NoteStore is the canonical ordered note list and the only writer of note rows.
// Readers get copies; positions in the list are never handed out as handles.
// NoteStore 规范有序的笔记列表，也是笔记行的唯一写入者；读取返回副本
type NoteStore interface {
	// Load 从仓储读取全部笔记；空库时创建欢迎笔记
	Load(ctx context.Context) error
	// Len 笔记数量
	Len() int
	// Notes 按规范顺序返回全部笔记副本
	Notes() []domain.Note
	// Get 按标识获取笔记副本
	Get(id uuid.UUID) (domain.Note, bool)
	// At 按规范位置获取笔记副本
	At(index int) (domain.Note, bool)
	// IndexOf 返回标识的规范位置，不存在返回 -1
	IndexOf(id uuid.UUID) int
	// Create 在头部插入新笔记并持久化；失败时回滚
	Create(ctx context.Context, title, content string) (domain.Note, error)
	// Update 整行持久化并替换内存中的笔记；失败时回滚
	Update(ctx context.Context, note domain.Note) error
	// SetTitle 修改标题并立即持久化
	SetTitle(ctx context.Context, id uuid.UUID, title string) (domain.Note, error)
	// SetFolder 修改文件夹并立即持久化，nil 表示未归类
	SetFolder(ctx context.Context, id uuid.UUID, folder *string) (domain.Note, error)
	// SetContent 只修改内存中的内容并标记为待保存
	SetContent(id uuid.UUID, content string) (domain.Note, error)
	// Delete 删除并持久化，返回删除前的位置；失败时回滚
	Delete(ctx context.Context, id uuid.UUID) (int, error)
	// Flush 持久化该笔记的待保存内容
	Flush(ctx context.Context, id uuid.UUID) error
	// FlushAll 持久化所有待保存内容
	FlushAll(ctx context.Context) error
	// IsDirty 是否有待保存内容
	IsDirty(id uuid.UUID) bool
	// RenameFolderRefs 仓储级联成功后更新内存引用，返回受影响数量
	RenameFolderRefs(oldName, newName string) int
}

type noteStore struct {
	repo   domain.NoteRepository
	config *ServiceConfig
	logger *zap.Logger

	notes []domain.Note
	dirty map[uuid.UUID]struct{}
}

// NewNoteStore 创建 NoteStore 实例
func NewNoteStore(repo domain.NoteRepository, logger *zap.Logger, config *ServiceConfig) NoteStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &noteStore{
		repo:   repo,
		config: config.orDefault(),
		logger: logger,
		dirty:  make(map[uuid.UUID]struct{}),
	}
}

func (s *noteStore) Load(ctx context.Context) error {
	rows, err := s.repo.LoadAll(ctx)
	if err != nil {
		return storageError(code.ErrorStorageLoad, "load", err)
	}

	notes := make([]domain.Note, 0, len(rows))
	seen := make(map[uuid.UUID]struct{}, len(rows))
	for _, r := range rows {
		if r == nil {
			continue
		}
		if _, ok := seen[r.ID]; ok {
			s.logger.Warn("duplicate note identity in storage, keeping first", zap.String(logger.FieldNoteID, r.ID.String()))
			continue
		}
		seen[r.ID] = struct{}{}
		notes = append(notes, r.Clone())
	}
	// 仓储已按 updated_at 降序返回；这里再稳定排序一次，保证顺序只依赖于时间
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})

	s.notes = notes
	s.dirty = make(map[uuid.UUID]struct{})
	s.logger.Info("notes loaded", zap.Int(logger.FieldCount, len(notes)))

	if len(s.notes) == 0 {
		if _, err := s.Create(ctx, s.config.SeedTitle, s.config.SeedContent); err != nil {
			return err
		}
		s.logger.Info("seed note created")
	}
	notesGauge.Set(float64(len(s.notes)))
	return nil
}

func (s *noteStore) Len() int {
	return len(s.notes)
}

func (s *noteStore) Notes() []domain.Note {
	out := make([]domain.Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.Clone()
	}
	return out
}

func (s *noteStore) Get(id uuid.UUID) (domain.Note, bool) {
	i := s.IndexOf(id)
	if i < 0 {
		return domain.Note{}, false
	}
	return s.notes[i].Clone(), true
}

func (s *noteStore) At(index int) (domain.Note, bool) {
	if index < 0 || index >= len(s.notes) {
		return domain.Note{}, false
	}
	return s.notes[index].Clone(), true
}

func (s *noteStore) IndexOf(id uuid.UUID) int {
	for i := range s.notes {
		if s.notes[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *noteStore) Create(ctx context.Context, title, content string) (domain.Note, error) {
	n := domain.NewNote(title, content, s.config.now())

	s.notes = append([]domain.Note{n}, s.notes...)
	if err := s.repo.Insert(ctx, &n); err != nil {
		// 回滚头部插入
		s.notes = s.notes[1:]
		s.logger.Error("note insert failed, rolled back", zap.String(logger.FieldNoteID, n.ID.String()), zap.Error(err))
		return domain.Note{}, storageError(code.ErrorStorageWrite, "insert", err)
	}

	notesCreatedTotal.Inc()
	notesGauge.Set(float64(len(s.notes)))
	return n.Clone(), nil
}

func (s *noteStore) Update(ctx context.Context, note domain.Note) error {
	i := s.IndexOf(note.ID)
	if i < 0 {
		return code.ErrorNoteNotFound.WithDetails(note.ID.String())
	}

	prev := s.notes[i]
	next := note.Clone()
	next.CreatedAt = prev.CreatedAt
	if next.UpdatedAt.Before(prev.UpdatedAt) {
		next.UpdatedAt = prev.UpdatedAt
	}

	s.notes[i] = next
	if err := s.repo.Replace(ctx, &next); err != nil {
		s.notes[i] = prev
		s.logger.Error("note replace failed, rolled back", zap.String(logger.FieldNoteID, note.ID.String()), zap.Error(err))
		return storageError(code.ErrorStorageWrite, "replace", err)
	}
	// 整行已写入，待保存内容一并落盘
	delete(s.dirty, note.ID)
	return nil
}

func (s *noteStore) SetTitle(ctx context.Context, id uuid.UUID, title string) (domain.Note, error) {
	n, ok := s.Get(id)
	if !ok {
		return domain.Note{}, code.ErrorNoteNotFound.WithDetails(id.String())
	}
	n.Title = title
	n.Touch(s.config.now())
	if err := s.Update(ctx, n); err != nil {
		return domain.Note{}, err
	}
	return s.mustGet(id), nil
}

func (s *noteStore) SetFolder(ctx context.Context, id uuid.UUID, folder *string) (domain.Note, error) {
	n, ok := s.Get(id)
	if !ok {
		return domain.Note{}, code.ErrorNoteNotFound.WithDetails(id.String())
	}
	if folder != nil && *folder == "" {
		folder = nil
	}
	if folder != nil {
		f := *folder
		folder = &f
	}
	n.Folder = folder
	n.Touch(s.config.now())
	if err := s.Update(ctx, n); err != nil {
		return domain.Note{}, err
	}
	return s.mustGet(id), nil
}

func (s *noteStore) SetContent(id uuid.UUID, content string) (domain.Note, error) {
	i := s.IndexOf(id)
	if i < 0 {
		return domain.Note{}, code.ErrorNoteNotFound.WithDetails(id.String())
	}
	if s.notes[i].Content == content {
		return s.notes[i].Clone(), nil
	}
	s.notes[i].Content = content
	s.notes[i].Touch(s.config.now())
	s.dirty[id] = struct{}{}
	return s.notes[i].Clone(), nil
}

func (s *noteStore) Delete(ctx context.Context, id uuid.UUID) (int, error) {
	i := s.IndexOf(id)
	if i < 0 {
		return -1, code.ErrorNoteNotFound.WithDetails(id.String())
	}

	removed := s.notes[i]
	s.notes = append(s.notes[:i:i], s.notes[i+1:]...)

	if err := s.repo.Remove(ctx, id); err != nil {
		if isNotFound(err) {
			// 行已不存在，内存删除与仓储一致
			s.logger.Warn("note row already absent on delete", zap.String(logger.FieldNoteID, id.String()))
		} else {
			// 放回原位置，避免内存与仓储不一致
			restored := make([]domain.Note, 0, len(s.notes)+1)
			restored = append(restored, s.notes[:i]...)
			restored = append(restored, removed)
			restored = append(restored, s.notes[i:]...)
			s.notes = restored
			s.logger.Error("note remove failed, rolled back", zap.String(logger.FieldNoteID, id.String()), zap.Error(err))
			return -1, storageError(code.ErrorStorageWrite, "remove", err)
		}
	}

	delete(s.dirty, id)
	notesDeletedTotal.Inc()
	notesGauge.Set(float64(len(s.notes)))
	return i, nil
}

func (s *noteStore) Flush(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.dirty[id]; !ok {
		return nil
	}
	i := s.IndexOf(id)
	if i < 0 {
		delete(s.dirty, id)
		return nil
	}

	n := s.notes[i].Clone()
	if err := s.repo.Replace(ctx, &n); err != nil {
		flushTotal.WithLabelValues("error").Inc()
		s.logger.Error("flush failed", zap.String(logger.FieldNoteID, id.String()), zap.Error(err))
		return storageError(code.ErrorFlushFailed, "flush", err)
	}
	delete(s.dirty, id)
	flushTotal.WithLabelValues("ok").Inc()
	s.logger.Debug("note flushed", zap.String(logger.FieldNoteID, id.String()))
	return nil
}

func (s *noteStore) FlushAll(ctx context.Context) error {
	var errs []error
	// 按规范顺序刷新，结果可预期
	for _, n := range s.Notes() {
		if !s.IsDirty(n.ID) {
			continue
		}
		if err := s.Flush(ctx, n.ID); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (s *noteStore) IsDirty(id uuid.UUID) bool {
	_, ok := s.dirty[id]
	return ok
}

func (s *noteStore) RenameFolderRefs(oldName, newName string) int {
	count := 0
	for i := range s.notes {
		if s.notes[i].InFolder(oldName) {
			f := newName
			s.notes[i].Folder = &f
			count++
		}
	}
	return count
}

func (s *noteStore) mustGet(id uuid.UUID) domain.Note {
	n, _ := s.Get(id)
	return n
}
