// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/haierkeys/watermelon-notes/internal/dao"
	"github.com/haierkeys/watermelon-notes/internal/domain"
	"github.com/haierkeys/watermelon-notes/internal/service"
	pkgapp "github.com/haierkeys/watermelon-notes/pkg/app"
	"github.com/haierkeys/watermelon-notes/pkg/code"
	pkglogger "github.com/haierkeys/watermelon-notes/pkg/logger"
	"github.com/haierkeys/watermelon-notes/pkg/serialqueue"
	"github.com/haierkeys/watermelon-notes/pkg/storage"
	"github.com/haierkeys/watermelon-notes/pkg/workerpool"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Subscriber receives the events of one command, in emission order.
// It runs on the command worker and must not block.
// Subscriber 按产生顺序接收一条命令的事件；在命令 worker 上执行，不能阻塞
type Subscriber func(events []service.Event)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	DB     *gorm.DB
	Dao    *dao.Dao

	// 并发控制组件
	queue       *serialqueue.Queue
	previewPool *workerpool.Pool

	// Repository 层
	NoteRepo   domain.NoteRepository
	FolderRepo domain.FolderRepository

	// Service 层
	session        *service.Session
	PreviewService service.PreviewService
	Attachments    service.AttachmentService

	// pending 当前命令产生的事件，仅在命令 worker 上访问
	pending []service.Event
	// flushed 最终保存已执行，之后的命令一律拒绝；仅在命令 worker 上访问
	flushed bool

	subMu  sync.RWMutex
	subs   map[uint64]Subscriber
	nextID uint64

	// StartTime 应用启动时间
	StartTime time.Time

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// db: 数据库连接（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		DB:         db,
		subs:       make(map[uint64]Subscriber),
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
	}

	qConfig := cfg.GetCommandQueueConfig()
	a.queue = serialqueue.New(&qConfig, logger)

	pConfig := cfg.GetPreviewPoolConfig()
	a.previewPool = workerpool.New(&pConfig, logger)

	dbConfig := cfg.DaoConfig()
	a.Dao = dao.New(db, dao.WithConfig(&dbConfig), dao.WithLogger(logger))

	a.NoteRepo = dao.NewNoteRepository(a.Dao)
	a.FolderRepo = dao.NewFolderRepository(a.Dao)

	a.session = service.NewSession(a.NoteRepo, a.FolderRepo, service.EventSinkFunc(a.collect), logger, cfg.ServiceConfig())
	a.PreviewService = service.NewPreviewService(a.previewPool.Submit, logger)

	var store storage.Storager
	if cfg.Storage.IsEnabled {
		var err error
		if store, err = storage.NewClient(&cfg.Storage, logger); err != nil {
			return nil, fmt.Errorf("attachment storage %q: %w", cfg.Storage.Type, err)
		}
	}
	a.Attachments = service.NewAttachmentService(store, &cfg.Storage, cfg.AttachmentConfig(), logger)

	logger.Info("App container initialized successfully",
		zap.Int("commandQueueCapacity", qConfig.Capacity),
		zap.Int("previewWorkers", pConfig.Workers))

	return a, nil
}

// collect 会话事件收集器，运行在命令 worker 上
func (a *App) collect(e service.Event) {
	a.pending = append(a.pending, e)
}

// Start loads the notes and returns the initial events
// Start 加载笔记并返回初始事件
func (a *App) Start(ctx context.Context) ([]service.Event, error) {
	return a.run(ctx, "Start", func(ctx context.Context) error {
		return a.session.Start(ctx)
	})
}

// Dispatch runs one command on the command worker.
// The events it produced are returned and broadcast to subscribers.
// Dispatch 在命令 worker 上执行一条命令，返回其产生的事件并广播给订阅者
func (a *App) Dispatch(ctx context.Context, cmd service.Command) ([]service.Event, error) {
	if cmd == nil {
		return nil, code.ErrorCommandInvalid
	}
	if a.IsShuttingDown() {
		return nil, code.ErrorServiceBusy.WithDetails("shutting down")
	}
	return a.run(ctx, cmd.CommandName(), func(ctx context.Context) error {
		// 已在队列中但排在最终保存之后的命令
		if a.flushed {
			return serialqueue.ErrQueueClosed
		}
		return a.session.Dispatch(ctx, cmd)
	})
}

// finalFlush saves every pending edit; commands queued behind it are refused
// finalFlush 保存所有未提交内容，排在其后的命令被拒绝
func (a *App) finalFlush(ctx context.Context) error {
	a.flushed = true
	return a.session.Close(ctx)
}

func (a *App) run(ctx context.Context, name string, fn func(context.Context) error) ([]service.Event, error) {
	var events []service.Event
	err := a.queue.Execute(ctx, func(ctx context.Context) error {
		a.pending = nil
		err := fn(ctx)
		events, a.pending = a.pending, nil
		a.broadcast(events)
		return err
	})
	if qerr := queueError(ctx, err); qerr != nil {
		a.logger.Warn("command not handled", zap.String(pkglogger.FieldCommand, name), zap.Error(err))
		return nil, qerr
	}
	return events, err
}

// queueError maps failures of the queue itself; events of such a call are not observable
// queueError 转换队列自身的失败；此时无法读取事件
func queueError(ctx context.Context, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, serialqueue.ErrQueueFull), errors.Is(err, serialqueue.ErrTimeout):
		return code.ErrorServiceBusy.WithCause(err)
	case errors.Is(err, serialqueue.ErrQueueClosed):
		return code.ErrorServiceBusy.WithDetails("shutting down")
	case ctx.Err() != nil:
		return ctx.Err()
	}
	return nil
}

// query runs a read on the command worker
// query 在命令 worker 上执行读取
func query[T any](ctx context.Context, a *App, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := a.queue.Execute(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if qerr := queueError(ctx, err); qerr != nil {
		var zero T
		return zero, qerr
	}
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// View 当前视图
func (a *App) View(ctx context.Context) (*service.View, error) {
	return query(ctx, a, func(context.Context) (*service.View, error) {
		return a.session.View(), nil
	})
}

// Folders 文件夹名称列表
func (a *App) Folders(ctx context.Context) ([]string, error) {
	return query(ctx, a, a.session.Folders)
}

// Notes 规范列表副本
func (a *App) Notes(ctx context.Context) ([]domain.Note, error) {
	return query(ctx, a, func(context.Context) ([]domain.Note, error) {
		return a.session.Notes(), nil
	})
}

// Note 按标识获取笔记，包含未保存的内容
func (a *App) Note(ctx context.Context, id uuid.UUID) (domain.Note, error) {
	return query(ctx, a, func(context.Context) (domain.Note, error) {
		n, ok := a.session.Note(id)
		if !ok {
			return domain.Note{}, code.ErrorNoteNotFound.WithDetails(id.String())
		}
		return n, nil
	})
}

// Snapshot returns the events that bring a fresh client up to date
// Snapshot 返回让新客户端同步到当前状态的事件
func (a *App) Snapshot(ctx context.Context) ([]service.Event, error) {
	return query(ctx, a, a.snapshot)
}

// SnapshotTo hands the snapshot to fn on the command worker, ordered with every broadcast
// SnapshotTo 在命令 worker 上把快照交给 fn，与广播保持顺序
func (a *App) SnapshotTo(ctx context.Context, fn func(events []service.Event)) error {
	_, err := query(ctx, a, func(ctx context.Context) (struct{}, error) {
		events, err := a.snapshot(ctx)
		if err != nil {
			return struct{}{}, err
		}
		fn(events)
		return struct{}{}, nil
	})
	return err
}

func (a *App) snapshot(ctx context.Context) ([]service.Event, error) {
	names, err := a.session.Folders(ctx)
	if err != nil {
		return nil, err
	}
	events := []service.Event{
		service.FolderListChanged{Names: names},
		service.ViewChanged{View: a.session.View()},
	}
	n, ok := a.session.ActiveNote()
	if !ok {
		return append(events, service.SelectionChanged{}), nil
	}
	id := n.ID
	sel := service.SelectionChanged{ID: &id, Title: n.Title, Content: n.Content, Folder: n.Folder}
	return append(events, sel, a.session.Buffer()), nil
}

// Preview renders a note's current content off the command worker
// Preview 在命令 worker 之外渲染笔记当前内容
func (a *App) Preview(ctx context.Context, id uuid.UUID) (domain.Note, string, error) {
	n, err := a.Note(ctx, id)
	if err != nil {
		return domain.Note{}, "", err
	}
	html, err := a.PreviewService.Render(ctx, n)
	if err != nil {
		return n, "", err
	}
	return n, html, nil
}

// Subscribe registers fn for every later command's events
// Subscribe 注册 fn 接收之后每条命令的事件，返回取消函数
func (a *App) Subscribe(fn Subscriber) (unsubscribe func()) {
	a.subMu.Lock()
	a.nextID++
	id := a.nextID
	a.subs[id] = fn
	a.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			a.subMu.Lock()
			delete(a.subs, id)
			a.subMu.Unlock()
		})
	}
}

func (a *App) broadcast(events []service.Event) {
	if len(events) == 0 {
		return
	}
	a.subMu.RLock()
	defer a.subMu.RUnlock()
	for _, fn := range a.subs {
		fn(events)
	}
}

// Close 释放应用容器持有的资源
func (a *App) Close() error {
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err != nil {
			return fmt.Errorf("failed to get sql.DB: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.logger.Info("Database connection closed")
	}
	return nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// IsReturnSuccess 是否返回成功响应
func (a *App) IsReturnSuccess() bool {
	return a.config.App.IsReturnSussess
}

// IsProductionMode 是否为生产模式
// 根据日志配置中的 Production 字段判断
func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：后台操作 -> 保存未提交内容 -> Command Queue -> Preview Pool -> Database
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	select {
	case <-a.shutdownCh:
		return nil
	default:
		close(a.shutdownCh)
	}
	a.logger.Info("App container shutting down...")

	var errs []error

	// 1. 等待后台操作（定时保存等）完成
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		a.logger.Warn("Shutdown timeout waiting for background operations")
		errs = append(errs, fmt.Errorf("background operations timeout: %w", ctx.Err()))
	}

	// 2. 保存所有未提交的内容
	if _, err := a.run(ctx, "Close", a.finalFlush); err != nil {
		a.logger.Error("final flush failed", zap.Error(err))
		errs = append(errs, fmt.Errorf("final flush: %w", err))
	}

	// 3. 排空命令队列
	if err := a.queue.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("command queue shutdown: %w", err))
	}

	// 4. 关闭预览 Worker Pool
	if err := a.previewPool.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("preview pool shutdown: %w", err))
	}

	// 5. 关闭数据库连接
	if err := a.Close(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		a.logger.Warn("App container shutdown completed with errors", zap.Int("errorCount", len(errs)))
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// QueueLen 命令队列中等待执行的操作数
func (a *App) QueueLen() int {
	return a.queue.Len()
}

// PreviewStats 预览 Worker Pool 指标
func (a *App) PreviewStats() workerpool.Stats {
	return a.previewPool.Stats()
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownCh 返回关闭信号通道（用于监听关闭事件）
func (a *App) ShutdownCh() <-chan struct{} {
	return a.shutdownCh
}

// TrackOperation 跟踪后台操作（用于优雅关闭时等待）
// 返回一个函数，在操作完成时调用
func (a *App) TrackOperation() func() {
	a.wg.Add(1)
	return func() {
		a.wg.Done()
	}
}
