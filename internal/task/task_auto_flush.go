package task

import (
	"context"
	"strings"

	"github.com/haierkeys/watermelon-notes/internal/app"
	"github.com/haierkeys/watermelon-notes/internal/service"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// AutoFlushTask periodically saves the pending edits of the active note
// AutoFlushTask 定时保存当前笔记未提交的编辑
type AutoFlushTask struct {
	app      *app.App
	schedule cron.Schedule
}

// Name 返回任务名称
func (t *AutoFlushTask) Name() string {
	return "AutoFlush"
}

func (t *AutoFlushTask) Schedule() cron.Schedule {
	return t.schedule
}

func (t *AutoFlushTask) IsStartupRun() bool {
	return false
}

// Run dispatches Flush through the command queue like any other command
// Run 通过命令队列执行 Flush
func (t *AutoFlushTask) Run(ctx context.Context) error {
	if t.app.IsShuttingDown() {
		return nil
	}
	done := t.app.TrackOperation()
	defer done()

	ctx, cancel := context.WithTimeout(ctx, t.app.Config().GetContextTimeout())
	defer cancel()

	_, err := t.app.Dispatch(ctx, service.Flush{})
	return err
}

// NewAutoFlushTask returns nil when app.auto-flush-cron is empty
// NewAutoFlushTask 未配置 app.auto-flush-cron 时返回 nil
func NewAutoFlushTask(appContainer *app.App) (Task, error) {
	expr := strings.TrimSpace(appContainer.Config().App.AutoFlushCron)
	if expr == "" {
		return nil, nil
	}
	schedule, err := ParseSchedule(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "parse auto-flush-cron %q", expr)
	}
	return &AutoFlushTask{app: appContainer, schedule: schedule}, nil
}

func init() {
	Register(NewAutoFlushTask)
}
