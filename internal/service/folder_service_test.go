package service

import (
	"context"
	"testing"
	"time"

	"github.com/haierkeys/watermelon-notes/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFolderFixture(t *testing.T, folders ...string) (FolderService, NoteStore, *memNoteRepo, *memFolderRepo) {
	t.Helper()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	notes := newMemNoteRepo(
		noteAt("w1", base.Add(2*time.Hour), "Work"),
		noteAt("p1", base.Add(time.Hour), "Personal"),
		noteAt("w2", base, "Work"),
	)
	frepo := newMemFolderRepo(notes, folders...)
	store := loadedStore(t, notes)
	return NewFolderService(frepo, store, nil), store, notes, frepo
}

func TestFolderService_AddValidation(t *testing.T) {
	svc, _, _, _ := newFolderFixture(t, "Work")
	ctx := context.Background()

	tests := []struct {
		name string
		in   string
		want code.Kind
	}{
		{"empty", "", code.KindValidation},
		{"blank", "   ", code.KindValidation},
		{"reserved all", "All Notes", code.KindValidation},
		{"reserved untagged", " Untagged ", code.KindValidation},
		{"duplicate", "Work", code.KindDuplicateFolder},
		{"duplicate after trim", "  Work ", code.KindDuplicateFolder},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.want, code.KindOf(err))
		})
	}
}

func TestFolderService_AddTrimsAndLists(t *testing.T) {
	svc, _, _, _ := newFolderFixture(t, "Work")
	ctx := context.Background()

	name, err := svc.Add(ctx, "  Ideas  ")
	require.NoError(t, err)
	assert.Equal(t, "Ideas", name)

	names, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ideas", "Work"}, names)
}

func TestFolderService_RenameCascades(t *testing.T) {
	svc, store, notes, _ := newFolderFixture(t, "Work", "Personal")
	ctx := context.Background()

	name, err := svc.Rename(ctx, "Work", " Job ")
	require.NoError(t, err)
	assert.Equal(t, "Job", name)

	for _, n := range store.Notes() {
		assert.False(t, n.InFolder("Work"), n.Title)
	}
	for _, row := range notes.rows {
		assert.False(t, row.InFolder("Work"), row.Title)
	}
	w1 := store.Notes()[0]
	assert.Equal(t, "Job", w1.FolderName())

	names, _ := svc.List(ctx)
	assert.Equal(t, []string{"Job", "Personal"}, names)
}

func TestFolderService_RenameKeepsNoteOrderAndTimestamps(t *testing.T) {
	svc, store, _, _ := newFolderFixture(t, "Work", "Personal")
	before := store.Notes()

	_, err := svc.Rename(context.Background(), "Work", "Job")
	require.NoError(t, err)

	after := store.Notes()
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].ID, after[i].ID)
		assert.Equal(t, before[i].UpdatedAt, after[i].UpdatedAt)
	}
}

func TestFolderService_RenameErrors(t *testing.T) {
	svc, _, _, _ := newFolderFixture(t, "Work", "Personal")
	ctx := context.Background()

	_, err := svc.Rename(ctx, "Missing", "Other")
	assert.Equal(t, code.KindNotFound, code.KindOf(err))

	_, err = svc.Rename(ctx, "Work", "Personal")
	assert.Equal(t, code.KindDuplicateFolder, code.KindOf(err))

	_, err = svc.Rename(ctx, "Work", "Untagged")
	assert.Equal(t, code.KindValidation, code.KindOf(err))

	name, err := svc.Rename(ctx, "Work", "Work")
	require.NoError(t, err)
	assert.Equal(t, "Work", name)
}

func TestFolderService_RenameStorageFailureLeavesMemory(t *testing.T) {
	svc, store, _, frepo := newFolderFixture(t, "Work")
	frepo.failRename = errDisk

	_, err := svc.Rename(context.Background(), "Work", "Job")
	require.Error(t, err)
	assert.Equal(t, code.KindStorage, code.KindOf(err))

	count := 0
	for _, n := range store.Notes() {
		if n.InFolder("Work") {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestFolderService_EnsureDefaults(t *testing.T) {
	svc, _, _, frepo := newFolderFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaults(ctx, []string{"Personal", "Work"}))
	names, _ := svc.List(ctx)
	assert.Equal(t, []string{"Personal", "Work"}, names)

	// 非空时不再插入
	delete(frepo.names, "Work")
	require.NoError(t, svc.EnsureDefaults(ctx, []string{"Personal", "Work"}))
	names, _ = svc.List(ctx)
	assert.Equal(t, []string{"Personal"}, names)
}

func TestFolderService_Exists(t *testing.T) {
	svc, _, _, _ := newFolderFixture(t, "Work")

	ok, err := svc.Exists(context.Background(), "Work")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = svc.Exists(context.Background(), "Home")
	assert.False(t, ok)
}
