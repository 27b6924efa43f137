package service

import (
	"context"
	"fmt"

	"github.com/haierkeys/watermelon-notes/internal/domain"
	"github.com/haierkeys/watermelon-notes/pkg/code"
	"github.com/haierkeys/watermelon-notes/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SelectionCoordinator tracks the active note by identity.
// Pending content of the previous note is flushed before any switch.
// SelectionCoordinator 按标识跟踪当前笔记；切换前先保存上一篇的待保存内容
type SelectionCoordinator struct {
	store  NoteStore
	logger *zap.Logger

	active uuid.UUID
	has    bool
}

// NewSelectionCoordinator 创建无选中状态的协调器
func NewSelectionCoordinator(store NoteStore, logger *zap.Logger) *SelectionCoordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionCoordinator{store: store, logger: logger}
}

// Active 返回当前选中的标识
func (c *SelectionCoordinator) Active() (uuid.UUID, bool) {
	return c.active, c.has
}

// ActiveNote 返回当前选中笔记的副本
func (c *SelectionCoordinator) ActiveNote() (domain.Note, bool) {
	if !c.has {
		return domain.Note{}, false
	}
	n, ok := c.store.Get(c.active)
	if !ok {
		// 笔记已不存在，回到无选中状态
		c.Clear()
		return domain.Note{}, false
	}
	return n, true
}

// SelectAt resolves a view position and selects the note found there
// SelectAt 解析视图位置并选中对应笔记
func (c *SelectionCoordinator) SelectAt(ctx context.Context, view *View, pos int) (domain.Note, error) {
	id, ok := view.IdentityAt(pos)
	if !ok {
		return domain.Note{}, code.ErrorPositionInvalid.WithDetails(positionDetail(pos, view.Len()))
	}
	return c.Select(ctx, id)
}

// Select 按标识选中笔记
func (c *SelectionCoordinator) Select(ctx context.Context, id uuid.UUID) (domain.Note, error) {
	n, ok := c.store.Get(id)
	if !ok {
		return domain.Note{}, code.ErrorNoteNotFound.WithDetails(id.String())
	}
	if c.has && c.active == id {
		return n, nil
	}
	if err := c.FlushActive(ctx); err != nil {
		// 保存失败则不切换
		return domain.Note{}, err
	}
	c.active, c.has = id, true
	c.logger.Debug("note selected", zap.String(logger.FieldNoteID, id.String()))
	return n, nil
}

// CreateAndSelect 保存当前笔记，新建笔记并选中
func (c *SelectionCoordinator) CreateAndSelect(ctx context.Context, title, content string) (domain.Note, error) {
	if err := c.FlushActive(ctx); err != nil {
		return domain.Note{}, err
	}
	n, err := c.store.Create(ctx, title, content)
	if err != nil {
		return domain.Note{}, err
	}
	c.active, c.has = n.ID, true
	return n, nil
}

// DeleteSelected removes the active note and selects its successor.
// The successor is the note now at the same canonical position, or the last one.
// DeleteSelected 删除当前笔记并选中后继；后继为同位置的笔记或最后一篇
func (c *SelectionCoordinator) DeleteSelected(ctx context.Context) (next domain.Note, hasNext bool, deleted bool, err error) {
	if !c.has {
		return domain.Note{}, false, false, nil
	}
	idx, err := c.store.Delete(ctx, c.active)
	if err != nil {
		return domain.Note{}, false, false, err
	}

	n := c.store.Len()
	if n == 0 {
		c.Clear()
		return domain.Note{}, false, true, nil
	}
	if idx >= n {
		idx = n - 1
	}
	next, _ = c.store.At(idx)
	c.active, c.has = next.ID, true
	return next, true, true, nil
}

// Clear 进入无选中状态
func (c *SelectionCoordinator) Clear() {
	c.active, c.has = uuid.Nil, false
}

// FlushActive 保存当前笔记的待保存内容
func (c *SelectionCoordinator) FlushActive(ctx context.Context) error {
	if !c.has {
		return nil
	}
	return c.store.Flush(ctx, c.active)
}

func positionDetail(pos, size int) string {
	return fmt.Sprintf("position %d of %d", pos, size)
}
