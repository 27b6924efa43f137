package task

import (
	"context"
	"sync"
	"time"

	"github.com/haierkeys/watermelon-notes/pkg/logger"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Task 定义任务接口
type Task interface {
	Name() string                  // 任务名称
	Run(ctx context.Context) error // 执行任务
	Schedule() cron.Schedule       // 执行计划，nil 表示不定时执行
	IsStartupRun() bool            // 是否立即执行一次
}

var scheduleParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule parses a five field cron expression or a descriptor such as "@every 5m"
// ParseSchedule 解析五段式 cron 表达式或 "@every 5m" 等描述符
func ParseSchedule(expr string) (cron.Schedule, error) {
	return scheduleParser.Parse(expr)
}

// Scheduler 任务调度器
type Scheduler struct {
	logger *zap.Logger
	tasks  []Task
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// NewScheduler 创建任务调度器
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		logger: logger,
		tasks:  make([]Task, 0),
	}
}

// AddTask 添加任务
func (s *Scheduler) AddTask(task Task) {
	s.tasks = append(s.tasks, task)
}

// Start 启动所有任务，ctx 取消或调用 Stop 时停止
func (s *Scheduler) Start(ctx context.Context) {
	if len(s.tasks) == 0 {
		s.logger.Info("no tasks to schedule")
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.logger.Info("tasks starting", zap.Int(logger.FieldCount, len(s.tasks)))

	for _, task := range s.tasks {
		s.wg.Add(1)
		go s.startTask(ctx, task)
	}
}

// Stop 停止调度并等待正在执行的任务结束
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// startTask 运行单个任务的调度循环
func (s *Scheduler) startTask(ctx context.Context, task Task) {
	defer s.wg.Done()

	if task.IsStartupRun() {
		s.runOnce(ctx, task, "startupRun")
	}

	schedule := task.Schedule()
	if schedule == nil {
		return
	}

	for {
		next := schedule.Next(time.Now())
		if next.IsZero() {
			return
		}
		timer := time.NewTimer(time.Until(next))
		select {
		case <-timer.C:
			s.runOnce(ctx, task, "loopRun")
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("task stopped", zap.String(logger.FieldTask, task.Name()))
			return
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, task Task, mode string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("task panic",
				zap.String(logger.FieldTask, task.Name()),
				zap.String("mode", mode),
				zap.Any("panic", r),
				zap.Stack("stack"))
		}
	}()
	s.logger.Debug("task running", zap.String(logger.FieldTask, task.Name()), zap.String("mode", mode))
	if err := task.Run(ctx); err != nil {
		s.logger.Error("task running error",
			zap.String(logger.FieldTask, task.Name()),
			zap.String("mode", mode),
			zap.Error(err))
	}
}
