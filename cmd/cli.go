package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	internalApp "github.com/haierkeys/watermelon-notes/internal/app"
	"github.com/haierkeys/watermelon-notes/internal/dao"
	"github.com/haierkeys/watermelon-notes/internal/service"
	"github.com/haierkeys/watermelon-notes/internal/upgrade"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// withApp opens the configured database, runs fn and shuts the container down,
// which flushes whatever fn left unsaved.
// withApp 打开配置的数据库执行 fn，随后关闭容器并保存未提交内容
func withApp(ctx context.Context, fn func(ctx context.Context, a *internalApp.App) error) (err error) {
	configPath, err := resolveConfig(runEnv)
	if err != nil {
		return err
	}
	cfg, _, err := internalApp.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := initStorageWithConfig(cfg); err != nil {
		return err
	}

	lg := bootstrapLogger.WithOptions(zap.IncreaseLevel(zapcore.WarnLevel))
	db, err := dao.NewDBEngineWithConfig(cfg.DaoConfig(), lg)
	if err != nil {
		return errors.Wrap(err, "open database")
	}
	a, err := internalApp.NewApp(cfg, lg, db)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if serr := a.Shutdown(sctx); serr != nil && err == nil {
			err = serr
		}
	}()

	if err := upgrade.Execute(ctx, a.Dao, lg, internalApp.Version); err != nil {
		return err
	}
	if _, err := a.Start(ctx); err != nil {
		return err
	}
	return fn(ctx, a)
}

// selectedID 从事件中取出新选中笔记的标识
func selectedID(events []service.Event) (uuid.UUID, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if sel, ok := events[i].(service.SelectionChanged); ok && sel.ID != nil {
			return *sel.ID, true
		}
	}
	return uuid.Nil, false
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// printTable 以表格形式输出
func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
