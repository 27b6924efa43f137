package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/haierkeys/watermelon-notes/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var errDisk = errors.New("disk I/O error")

// memNoteRepo 内存笔记仓储，字段可注入失败
type memNoteRepo struct {
	domain.NoteRepository

	rows map[uuid.UUID]domain.Note

	failLoad    error
	failInsert  error
	failReplace error
	failRemove  error

	replaces int
}

func newMemNoteRepo(notes ...domain.Note) *memNoteRepo {
	r := &memNoteRepo{rows: make(map[uuid.UUID]domain.Note)}
	for _, n := range notes {
		r.rows[n.ID] = n.Clone()
	}
	return r
}

func (r *memNoteRepo) LoadAll(ctx context.Context) ([]*domain.Note, error) {
	if r.failLoad != nil {
		return nil, r.failLoad
	}
	out := make([]*domain.Note, 0, len(r.rows))
	for _, n := range r.rows {
		c := n.Clone()
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *memNoteRepo) Insert(ctx context.Context, n *domain.Note) error {
	if r.failInsert != nil {
		return r.failInsert
	}
	r.rows[n.ID] = n.Clone()
	return nil
}

func (r *memNoteRepo) Replace(ctx context.Context, n *domain.Note) error {
	if r.failReplace != nil {
		return r.failReplace
	}
	if _, ok := r.rows[n.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.replaces++
	r.rows[n.ID] = n.Clone()
	return nil
}

func (r *memNoteRepo) Remove(ctx context.Context, id uuid.UUID) error {
	if r.failRemove != nil {
		return r.failRemove
	}
	if _, ok := r.rows[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *memNoteRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(r.rows)), nil
}

// memFolderRepo 内存文件夹仓储，改名时级联到 notes
type memFolderRepo struct {
	domain.FolderRepository

	names map[string]struct{}
	notes *memNoteRepo

	failList   error
	failInsert error
	failRename error
}

func newMemFolderRepo(notes *memNoteRepo, names ...string) *memFolderRepo {
	r := &memFolderRepo{names: make(map[string]struct{}), notes: notes}
	for _, n := range names {
		r.names[n] = struct{}{}
	}
	return r
}

func (r *memFolderRepo) List(ctx context.Context) ([]*domain.Folder, error) {
	if r.failList != nil {
		return nil, r.failList
	}
	out := make([]*domain.Folder, 0, len(r.names))
	for n := range r.names {
		out = append(out, &domain.Folder{Name: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memFolderRepo) Insert(ctx context.Context, f *domain.Folder) error {
	if r.failInsert != nil {
		return r.failInsert
	}
	if _, ok := r.names[f.Name]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.names[f.Name] = struct{}{}
	return nil
}

func (r *memFolderRepo) RenameCascade(ctx context.Context, oldName, newName string) (int64, error) {
	if r.failRename != nil {
		return 0, r.failRename
	}
	if _, ok := r.names[oldName]; !ok {
		return 0, gorm.ErrRecordNotFound
	}
	if _, ok := r.names[newName]; ok {
		return 0, gorm.ErrDuplicatedKey
	}
	delete(r.names, oldName)
	r.names[newName] = struct{}{}

	var n int64
	if r.notes != nil {
		for id, row := range r.notes.rows {
			if row.InFolder(oldName) {
				f := newName
				row.Folder = &f
				r.notes.rows[id] = row
				n++
			}
		}
	}
	return n, nil
}

func (r *memFolderRepo) Count(ctx context.Context) (int64, error) {
	if r.failList != nil {
		return 0, r.failList
	}
	return int64(len(r.names)), nil
}

// tickClock 每次调用前进一秒的时钟
func tickClock() func() time.Time {
	t := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func testConfig() *ServiceConfig {
	c := DefaultServiceConfig()
	c.Now = tickClock()
	return c
}

// noteAt 构造指定更新时间的笔记
func noteAt(title string, updated time.Time, folder string) domain.Note {
	n := domain.NewNote(title, title+" body", updated.Add(-time.Hour))
	n.UpdatedAt = updated
	n.Folder = domain.FolderRef(folder)
	return n
}

// recorder 记录会话事件
type recorder struct {
	events []Event
}

func (r *recorder) Emit(e Event) { r.events = append(r.events, e) }

func (r *recorder) names() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventName())
	}
	return out
}

func (r *recorder) reset() { r.events = nil }

func (r *recorder) last(name string) Event {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].EventName() == name {
			return r.events[i]
		}
	}
	return nil
}
