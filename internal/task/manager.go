package task

import (
	"context"

	"github.com/haierkeys/watermelon-notes/internal/app"
	"github.com/haierkeys/watermelon-notes/pkg/logger"

	"go.uber.org/zap"
)

// Manager 任务管理器,负责创建和管理所有任务
type Manager struct {
	scheduler *Scheduler
	logger    *zap.Logger
	app       *app.App
}

// NewManager 创建任务管理器
func NewManager(lg *zap.Logger, appContainer *app.App) *Manager {
	return &Manager{
		scheduler: NewScheduler(lg),
		logger:    lg,
		app:       appContainer,
	}
}

// RegisterTasks 创建所有已注册的任务
func (m *Manager) RegisterTasks() error {
	for _, factory := range GetFactories() {
		t, err := factory(m.app)
		if err != nil {
			return err
		}
		if t == nil {
			continue
		}
		m.logger.Info("task registered", zap.String(logger.FieldTask, t.Name()))
		m.scheduler.AddTask(t)
	}
	return nil
}

// Start 启动所有已注册的任务
func (m *Manager) Start(ctx context.Context) {
	m.scheduler.Start(ctx)
}

// Stop 停止所有任务
func (m *Manager) Stop() {
	m.scheduler.Stop()
}
