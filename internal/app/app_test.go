package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/haierkeys/watermelon-notes/internal/dao"
	"github.com/haierkeys/watermelon-notes/internal/domain"
	"github.com/haierkeys/watermelon-notes/internal/service"
	"github.com/haierkeys/watermelon-notes/pkg/code"

	"github.com/creasty/defaults"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T, dbPath string) *AppConfig {
	t.Helper()
	cfg := new(AppConfig)
	require.NoError(t, defaults.Set(cfg))
	cfg.Database.Path = dbPath
	return cfg
}

func newTestApp(t *testing.T, dbPath string) *App {
	t.Helper()
	cfg := testConfig(t, dbPath)
	db, err := dao.NewDBEngineWithConfig(cfg.DaoConfig(), nil)
	require.NoError(t, err)
	a, err := NewApp(cfg, zap.NewNop(), db)
	require.NoError(t, err)
	return a
}

func eventNames(events []service.Event) []string {
	out := make([]string, 0, len(events))
	for _, e := range events {
		out = append(out, e.EventName())
	}
	return out
}

func TestNewApp_RequiresDependencies(t *testing.T) {
	_, err := NewApp(nil, zap.NewNop(), nil)
	assert.Error(t, err)
	_, err = NewApp(&AppConfig{}, nil, nil)
	assert.Error(t, err)
	_, err = NewApp(&AppConfig{}, zap.NewNop(), nil)
	assert.Error(t, err)
}

func TestApp_StartDispatchShutdown(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.sqlite3")
	a := newTestApp(t, path)

	events, err := a.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"FolderListChanged", "ViewChanged", "SelectionChanged"}, eventNames(events))

	folders, err := a.Folders(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Personal", "Work"}, folders)

	var (
		mu       sync.Mutex
		received []string
	)
	unsubscribe := a.Subscribe(func(events []service.Event) {
		mu.Lock()
		received = append(received, eventNames(events)...)
		mu.Unlock()
	})

	events, err = a.Dispatch(ctx, service.CreateNote{Title: "Plan"})
	require.NoError(t, err)
	assert.Equal(t, []string{"ViewChanged", "SelectionChanged"}, eventNames(events))

	_, err = a.Dispatch(ctx, service.EditContent{Content: "unsaved body"})
	require.NoError(t, err)

	mu.Lock()
	assert.Equal(t, []string{"ViewChanged", "SelectionChanged"}, received)
	mu.Unlock()
	unsubscribe()
	unsubscribe()

	view, err := a.View(ctx)
	require.NoError(t, err)
	assert.Len(t, view.Entries, 2)

	require.NoError(t, a.Shutdown(ctx))
	assert.True(t, a.IsShuttingDown())
	require.NoError(t, a.Shutdown(ctx))

	// 重新打开同一个数据库，内容已保存
	b := newTestApp(t, path)
	_, err = b.Start(ctx)
	require.NoError(t, err)
	notes, err := b.Notes(ctx)
	require.NoError(t, err)
	var plan *domain.Note
	for i := range notes {
		if notes[i].Title == "Plan" {
			plan = &notes[i]
		}
	}
	require.NotNil(t, plan)
	assert.Equal(t, "unsaved body", plan.Content)
	require.NoError(t, b.Shutdown(ctx))
}

func TestApp_ErrorsAndEvents(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, filepath.Join(t.TempDir(), "notes.sqlite3"))
	t.Cleanup(func() { _ = a.Shutdown(ctx) })
	_, err := a.Start(ctx)
	require.NoError(t, err)

	events, err := a.Dispatch(ctx, service.AddFolder{Name: "Work"})
	assert.True(t, code.ErrorFolderExists.Is(err))
	assert.Equal(t, []string{"Error"}, eventNames(events))

	// 目标不存在不发出错误事件
	events, err = a.Dispatch(ctx, service.SelectNote{ID: uuid.New()})
	assert.Equal(t, code.KindNotFound, code.KindOf(err))
	assert.Empty(t, events)

	_, err = a.Dispatch(ctx, nil)
	assert.True(t, code.ErrorCommandInvalid.Is(err))

	_, err = a.Note(ctx, uuid.New())
	assert.True(t, code.ErrorNoteNotFound.Is(err))
}

func TestApp_SnapshotAndPreview(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, filepath.Join(t.TempDir(), "notes.sqlite3"))
	t.Cleanup(func() { _ = a.Shutdown(ctx) })
	_, err := a.Start(ctx)
	require.NoError(t, err)

	snap, err := a.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"FolderListChanged", "ViewChanged", "SelectionChanged"}, eventNames(snap))

	_, err = a.Dispatch(ctx, service.CreateNote{Title: "Doc", Content: "**hi**"})
	require.NoError(t, err)

	snap, err = a.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"FolderListChanged", "ViewChanged", "SelectionChanged", "BufferChanged"}, eventNames(snap))
	sel := snap[2].(service.SelectionChanged)
	require.NotNil(t, sel.ID)

	n, html, err := a.Preview(ctx, *sel.ID)
	require.NoError(t, err)
	assert.Equal(t, "Doc", n.Title)
	assert.Contains(t, html, "<strong>hi</strong>")
}

func TestApp_ClosedQueueIsBusy(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, filepath.Join(t.TempDir(), "notes.sqlite3"))
	_, err := a.Start(ctx)
	require.NoError(t, err)
	require.NoError(t, a.Shutdown(ctx))

	_, err = a.Dispatch(ctx, service.Flush{})
	assert.True(t, code.ErrorServiceBusy.Is(err))
}

func TestApp_CommandsAfterFinalFlushAreRefused(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, filepath.Join(t.TempDir(), "notes.sqlite3"))
	t.Cleanup(func() { _ = a.Shutdown(ctx) })
	_, err := a.Start(ctx)
	require.NoError(t, err)

	_, err = a.Dispatch(ctx, service.CreateNote{Title: "Draft"})
	require.NoError(t, err)
	_, err = a.Dispatch(ctx, service.EditContent{Content: "kept"})
	require.NoError(t, err)

	// 最终保存之后才到达队列的编辑被拒绝，不会留下未保存的内容
	_, err = a.run(ctx, "Close", a.finalFlush)
	require.NoError(t, err)
	_, err = a.Dispatch(ctx, service.EditContent{Content: "late"})
	assert.True(t, code.ErrorServiceBusy.Is(err))

	stored, err := a.NoteRepo.LoadAll(ctx)
	require.NoError(t, err)
	var found bool
	for _, n := range stored {
		if n.Title == "Draft" {
			found = true
			assert.Equal(t, "kept", n.Content)
		}
	}
	assert.True(t, found)
}

func TestApp_SnapshotToRunsBeforeLaterBroadcasts(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t, filepath.Join(t.TempDir(), "notes.sqlite3"))
	t.Cleanup(func() { _ = a.Shutdown(ctx) })
	_, err := a.Start(ctx)
	require.NoError(t, err)

	var mu sync.Mutex
	var seen []string
	unsubscribe := a.Subscribe(func(events []service.Event) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, "broadcast:"+events[0].EventName())
	})
	defer unsubscribe()

	require.NoError(t, a.SnapshotTo(ctx, func(events []service.Event) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, "snapshot:"+events[0].EventName())
	}))
	_, err = a.Dispatch(ctx, service.AddFolder{Name: "Ideas"})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Equal(t, "snapshot:FolderListChanged", seen[0])
	assert.Equal(t, "broadcast:FolderListChanged", seen[1])
	assert.NotZero(t, a.StartTime)
	assert.Equal(t, Version, a.Version().Version)
}
