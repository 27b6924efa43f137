package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/haierkeys/watermelon-notes/internal/domain"
	"github.com/haierkeys/watermelon-notes/pkg/code"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedStore(t *testing.T, repo *memNoteRepo) NoteStore {
	t.Helper()
	s := NewNoteStore(repo, nil, testConfig())
	require.NoError(t, s.Load(context.Background()))
	return s
}

func titles(notes []domain.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Title)
	}
	return out
}

func TestNoteStore_LoadOrdersByUpdatedDesc(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := newMemNoteRepo(
		noteAt("old", base, ""),
		noteAt("newest", base.Add(2*time.Hour), "Work"),
		noteAt("middle", base.Add(time.Hour), ""),
	)
	s := loadedStore(t, repo)

	assert.Equal(t, []string{"newest", "middle", "old"}, titles(s.Notes()))
}

func TestNoteStore_LoadSeedsEmptyStore(t *testing.T) {
	repo := newMemNoteRepo()
	s := loadedStore(t, repo)

	require.Equal(t, 1, s.Len())
	n, _ := s.At(0)
	assert.Equal(t, "Welcome to Watermelon", n.Title)
	assert.Equal(t, "This is your first note.", n.Content)
	assert.Len(t, repo.rows, 1)
}

func TestNoteStore_LoadFailure(t *testing.T) {
	repo := newMemNoteRepo()
	repo.failLoad = errDisk
	s := NewNoteStore(repo, nil, testConfig())

	err := s.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, code.KindStorage, code.KindOf(err))
	assert.True(t, errors.Is(err, errDisk))
}

func TestNoteStore_CreateInsertsAtHead(t *testing.T) {
	repo := newMemNoteRepo(noteAt("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ""))
	s := loadedStore(t, repo)

	n, err := s.Create(context.Background(), "fresh", "")
	require.NoError(t, err)
	assert.Equal(t, 0, s.IndexOf(n.ID))
	assert.Equal(t, []string{"fresh", "a"}, titles(s.Notes()))
	assert.Equal(t, n.CreatedAt, n.UpdatedAt)
	assert.Contains(t, repo.rows, n.ID)
}

func TestNoteStore_CreateRollsBack(t *testing.T) {
	repo := newMemNoteRepo(noteAt("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), ""))
	s := loadedStore(t, repo)
	repo.failInsert = errDisk

	_, err := s.Create(context.Background(), "fresh", "")
	require.Error(t, err)
	assert.Equal(t, code.KindStorage, code.KindOf(err))
	assert.Equal(t, []string{"a"}, titles(s.Notes()))
}

func TestNoteStore_SetTitlePersistsAndTouches(t *testing.T) {
	orig := noteAt("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "")
	repo := newMemNoteRepo(orig)
	s := loadedStore(t, repo)

	n, err := s.SetTitle(context.Background(), orig.ID, "renamed")
	require.NoError(t, err)
	assert.Equal(t, "renamed", n.Title)
	assert.True(t, n.UpdatedAt.After(orig.UpdatedAt))
	assert.Equal(t, "renamed", repo.rows[orig.ID].Title)
}

func TestNoteStore_UpdateRollsBack(t *testing.T) {
	orig := noteAt("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Work")
	repo := newMemNoteRepo(orig)
	s := loadedStore(t, repo)
	repo.failReplace = errDisk

	_, err := s.SetFolder(context.Background(), orig.ID, nil)
	require.Error(t, err)

	n, ok := s.Get(orig.ID)
	require.True(t, ok)
	assert.Equal(t, "Work", n.FolderName())
	assert.Equal(t, orig.UpdatedAt, n.UpdatedAt)
}

func TestNoteStore_SetFolderEmptyMeansUntagged(t *testing.T) {
	orig := noteAt("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Work")
	repo := newMemNoteRepo(orig)
	s := loadedStore(t, repo)

	empty := ""
	n, err := s.SetFolder(context.Background(), orig.ID, &empty)
	require.NoError(t, err)
	assert.Nil(t, n.Folder)
	assert.Nil(t, repo.rows[orig.ID].Folder)
}

func TestNoteStore_SetContentStaysInMemoryUntilFlush(t *testing.T) {
	orig := noteAt("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "")
	repo := newMemNoteRepo(orig)
	s := loadedStore(t, repo)
	ctx := context.Background()

	n, err := s.SetContent(orig.ID, "draft")
	require.NoError(t, err)
	assert.True(t, n.UpdatedAt.After(orig.UpdatedAt))
	assert.True(t, s.IsDirty(orig.ID))
	assert.Equal(t, "a body", repo.rows[orig.ID].Content)

	require.NoError(t, s.Flush(ctx, orig.ID))
	assert.False(t, s.IsDirty(orig.ID))
	assert.Equal(t, "draft", repo.rows[orig.ID].Content)

	// 干净的笔记不会再写
	writes := repo.replaces
	require.NoError(t, s.Flush(ctx, orig.ID))
	assert.Equal(t, writes, repo.replaces)
}

func TestNoteStore_SetContentUnchangedIsNotDirty(t *testing.T) {
	orig := noteAt("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "")
	s := loadedStore(t, newMemNoteRepo(orig))

	_, err := s.SetContent(orig.ID, orig.Content)
	require.NoError(t, err)
	assert.False(t, s.IsDirty(orig.ID))
}

func TestNoteStore_FlushFailureKeepsDirty(t *testing.T) {
	orig := noteAt("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "")
	repo := newMemNoteRepo(orig)
	s := loadedStore(t, repo)
	_, _ = s.SetContent(orig.ID, "draft")
	repo.failReplace = errDisk

	err := s.FlushAll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, code.ErrorFlushFailed))
	assert.True(t, s.IsDirty(orig.ID))
}

func TestNoteStore_DeleteRollsBackToSamePosition(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a, b, c := noteAt("a", base.Add(2*time.Hour), ""), noteAt("b", base.Add(time.Hour), ""), noteAt("c", base, "")
	repo := newMemNoteRepo(a, b, c)
	s := loadedStore(t, repo)
	repo.failRemove = errDisk

	_, err := s.Delete(context.Background(), b.ID)
	require.Error(t, err)
	assert.Equal(t, code.KindStorage, code.KindOf(err))
	assert.Equal(t, []string{"a", "b", "c"}, titles(s.Notes()))
}

func TestNoteStore_DeleteReturnsFormerIndex(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a, b := noteAt("a", base.Add(time.Hour), ""), noteAt("b", base, "")
	repo := newMemNoteRepo(a, b)
	s := loadedStore(t, repo)

	idx, err := s.Delete(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, []string{"b"}, titles(s.Notes()))
	assert.NotContains(t, repo.rows, a.ID)
}

func TestNoteStore_DeleteMissing(t *testing.T) {
	s := loadedStore(t, newMemNoteRepo())

	_, err := s.Delete(context.Background(), domain.NewNote("x", "", time.Now()).ID)
	assert.Equal(t, code.KindNotFound, code.KindOf(err))
}

func TestNoteStore_NotesReturnsCopies(t *testing.T) {
	orig := noteAt("a", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "Work")
	s := loadedStore(t, newMemNoteRepo(orig))

	list := s.Notes()
	list[0].Title = "mutated"
	*list[0].Folder = "Other"

	n, _ := s.Get(orig.ID)
	assert.Equal(t, "a", n.Title)
	assert.Equal(t, "Work", n.FolderName())
}

// 任意创建/删除序列后，内存列表大小与仓储行数一致
func TestProperty_ListMatchesRepository(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("len(notes) == rows", prop.ForAll(
		func(ops []int) bool {
			repo := newMemNoteRepo()
			s := NewNoteStore(repo, nil, testConfig())
			ctx := context.Background()
			if s.Load(ctx) != nil {
				return false
			}
			for _, op := range ops {
				switch {
				case op%4 == 3:
					repo.failInsert = errDisk
					_, _ = s.Create(ctx, "x", "")
					repo.failInsert = nil
				case op%2 == 0 || s.Len() == 0:
					_, _ = s.Create(ctx, "x", "")
				default:
					n, _ := s.At(op % s.Len())
					if op%5 == 0 {
						repo.failRemove = errDisk
					}
					_, _ = s.Delete(ctx, n.ID)
					repo.failRemove = nil
				}
				if s.Len() != len(repo.rows) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 99)),
	))

	properties.TestingRun(t)
}
