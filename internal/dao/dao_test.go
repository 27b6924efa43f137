package dao

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/haierkeys/watermelon-notes/internal/domain"
	"github.com/haierkeys/watermelon-notes/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDao(t *testing.T) *Dao {
	t.Helper()
	cfg := DatabaseConfig{
		Type:        "sqlite",
		Path:        filepath.Join(t.TempDir(), "notes.sqlite3"),
		AutoMigrate: true,
	}
	db, err := NewDBEngineWithConfig(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return New(db, WithConfig(&cfg))
}

func strPtr(s string) *string { return &s }

func TestNoteRepository_InsertLoadOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDao(t))

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	older := domain.NewNote("older", "a", base)
	newer := domain.NewNote("newer", "b", base.Add(time.Hour))
	newer.Folder = strPtr("Work")

	require.NoError(t, repo.Insert(ctx, &older))
	require.NoError(t, repo.Insert(ctx, &newer))

	notes, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 2)

	assert.Equal(t, newer.ID, notes[0].ID)
	assert.Equal(t, "Work", notes[0].FolderName())
	assert.True(t, notes[0].UpdatedAt.Equal(newer.UpdatedAt))
	assert.Equal(t, older.ID, notes[1].ID)
	assert.Nil(t, notes[1].Folder)
}

func TestNoteRepository_ReplaceOverwritesFolder(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDao(t))

	n := domain.NewNote("t", "c", time.Now().UTC())
	n.Folder = strPtr("Personal")
	require.NoError(t, repo.Insert(ctx, &n))

	n.Title = "t2"
	n.Folder = nil
	require.NoError(t, repo.Replace(ctx, &n))

	notes, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "t2", notes[0].Title)
	assert.Nil(t, notes[0].Folder)
}

func TestNoteRepository_MissingRows(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDao(t))

	n := domain.NewNote("ghost", "", time.Now().UTC())
	assert.ErrorIs(t, repo.Replace(ctx, &n), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, repo.Remove(ctx, uuid.New()), gorm.ErrRecordNotFound)
}

func TestNoteRepository_Remove(t *testing.T) {
	ctx := context.Background()
	repo := NewNoteRepository(newTestDao(t))

	n := domain.NewNote("bye", "", time.Now().UTC())
	require.NoError(t, repo.Insert(ctx, &n))
	require.NoError(t, repo.Remove(ctx, n.ID))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNoteRepository_MalformedRowsTolerated(t *testing.T) {
	ctx := context.Background()
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	require.NoError(t, d.Migrate())

	bad := &model.Note{ID: "not-a-uuid", Title: "legacy", Content: "x", CreatedAt: "garbage", UpdatedAt: "2020-01-01T00:00:00Z"}
	require.NoError(t, d.Db.Create(bad).Error)

	notes, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.NotEqual(t, uuid.Nil, notes[0].ID)
	assert.Equal(t, "legacy", notes[0].Title)
	assert.False(t, notes[0].CreatedAt.IsZero())
	assert.False(t, notes[0].UpdatedAt.Before(notes[0].CreatedAt))
}

func TestNoteRepository_MalformedIDRewritten(t *testing.T) {
	ctx := context.Background()
	d := newTestDao(t)
	repo := NewNoteRepository(d)
	require.NoError(t, d.Migrate())

	bad := &model.Note{ID: "not-a-uuid", Title: "legacy", Content: "x", CreatedAt: "2020-01-01T00:00:00Z", UpdatedAt: "2020-01-01T00:00:00Z"}
	require.NoError(t, d.Db.Create(bad).Error)

	notes, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	note := notes[0]

	// 新身份已写回，编辑可以落库
	note.Title = "renamed"
	require.NoError(t, repo.Replace(ctx, note))

	again, err := repo.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, note.ID, again[0].ID)
	assert.Equal(t, "renamed", again[0].Title)

	require.NoError(t, repo.Remove(ctx, note.ID))
	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestFolderRepository_InsertListDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewFolderRepository(newTestDao(t))

	require.NoError(t, repo.Insert(ctx, &domain.Folder{Name: "Work"}))
	require.NoError(t, repo.Insert(ctx, &domain.Folder{Name: "Personal"}))
	assert.ErrorIs(t, repo.Insert(ctx, &domain.Folder{Name: "Work"}), gorm.ErrDuplicatedKey)

	folders, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Equal(t, "Personal", folders[0].Name)
	assert.Equal(t, "Work", folders[1].Name)
}

func TestFolderRepository_RenameCascade(t *testing.T) {
	ctx := context.Background()
	d := newTestDao(t)
	folders := NewFolderRepository(d)
	notes := NewNoteRepository(d)

	require.NoError(t, folders.Insert(ctx, &domain.Folder{Name: "Work"}))
	require.NoError(t, folders.Insert(ctx, &domain.Folder{Name: "Home"}))

	now := time.Now().UTC()
	a := domain.NewNote("a", "", now)
	a.Folder = strPtr("Work")
	b := domain.NewNote("b", "", now)
	b.Folder = strPtr("Work")
	c := domain.NewNote("c", "", now)
	c.Folder = strPtr("Home")
	for _, n := range []*domain.Note{&a, &b, &c} {
		require.NoError(t, notes.Insert(ctx, n))
	}

	affected, err := folders.RenameCascade(ctx, "Work", "Job")
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	all, err := notes.LoadAll(ctx)
	require.NoError(t, err)
	for _, n := range all {
		assert.NotEqual(t, "Work", n.FolderName())
	}

	list, err := folders.List(ctx)
	require.NoError(t, err)
	names := []string{list[0].Name, list[1].Name}
	assert.Equal(t, []string{"Home", "Job"}, names)
}

func TestFolderRepository_RenameCascadeErrors(t *testing.T) {
	ctx := context.Background()
	repo := NewFolderRepository(newTestDao(t))
	require.NoError(t, repo.Insert(ctx, &domain.Folder{Name: "Work"}))
	require.NoError(t, repo.Insert(ctx, &domain.Folder{Name: "Home"}))

	_, err := repo.RenameCascade(ctx, "Missing", "X")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.RenameCascade(ctx, "Work", "Home")
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestUseDialector_Unsupported(t *testing.T) {
	_, err := useDialector(DatabaseConfig{Type: "oracle"})
	assert.Error(t, err)
}
