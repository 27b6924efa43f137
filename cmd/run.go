package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/haierkeys/watermelon-notes/pkg/fileurl"
	pkglogger "github.com/haierkeys/watermelon-notes/pkg/logger"

	"github.com/radovskyb/watcher"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// configCandidates 未指定配置文件时按顺序查找
var configCandidates = []string{"config/config-dev.yaml", "config.yaml", "config/config.yaml"}

// resolveConfig returns the config file to use.
// Without -c the candidates are searched; when none exists the embedded default is written to config/config.yaml.
// resolveConfig 返回要使用的配置文件；未指定时按候选列表查找，都不存在则写出内置默认配置
func resolveConfig(env *runFlags) (string, error) {
	if len(env.config) > 0 {
		return env.config, nil
	}
	if found := fileurl.FirstExisting(configCandidates...); found != "" {
		return found, nil
	}

	path := configCandidates[len(configCandidates)-1]
	bootstrapLogger.Warn("no config file found, writing the embedded default", zap.String(pkglogger.FieldConfig, path))
	created, err := fileurl.WriteNew(path, []byte(configDefault))
	if err != nil {
		return "", err
	}
	if created {
		bootstrapLogger.Info("default config written", zap.String(pkglogger.FieldConfig, path))
	}
	return path, nil
}

// watchConfig sends on the returned channel whenever the config file is written
// watchConfig 配置文件被写入时向返回的通道发送通知
func watchConfig(path string, lg *zap.Logger) (<-chan struct{}, func()) {
	changed := make(chan struct{}, 1)
	w := watcher.New()

	// Set MaxEvents to 1 to receive at most 1 event in each listening cycle
	// 将 SetMaxEvents 设置为 1，以便在每个监听周期中至多接收 1 个事件
	w.SetMaxEvents(1)

	// Only notify write events.
	// 只通知写入事件。
	w.FilterOps(watcher.Write)

	go func() {
		for {
			select {
			case event := <-w.Event:
				lg.Info("config watcher change", zap.String("event", event.Op.String()), zap.String("file", event.Path))
				select {
				case changed <- struct{}{}:
				default:
				}
			case err := <-w.Error:
				lg.Error("config watcher error", zap.Error(err))
			case <-w.Closed:
				lg.Info("config watcher closed")
				return
			}
		}
	}()

	if err := w.Add(path); err != nil {
		lg.Error("config watcher file error", zap.Error(err))
		return changed, func() {}
	}
	go func() {
		if err := w.Start(time.Second * 5); err != nil {
			lg.Error("config watcher start error", zap.Error(err))
		}
	}()
	return changed, w.Close
}

func init() {
	var runCommand = &cobra.Command{
		Use:   "run [-c config_file] [-d working_dir] [-p port]",
		Short: "Run service",
		Run: func(cmd *cobra.Command, args []string) {
			configPath, err := resolveConfig(runEnv)
			if err != nil {
				bootstrapLogger.Error("config resolve failed", zap.Error(err))
				return
			}
			runEnv.config = configPath

			s, err := NewServer(runEnv)
			if err != nil {
				bootstrapLogger.Error("note service start failed", zap.String(pkglogger.FieldConfig, configPath), zap.Error(err))
				return
			}

			changed, stopWatch := watchConfig(configPath, bootstrapLogger)
			defer stopWatch()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			for {
				select {
				case <-quit:
					s.logger.Info("Received shutdown signal, initiating graceful shutdown...")
					s.sc.SendCloseSignal(nil)
					// Wait for all shutdown handlers to complete (including App Container graceful shutdown)
					// 等待所有关闭处理器完成（包括 App Container 的优雅关闭）
					if err := s.sc.WaitClosed(); err != nil {
						s.logger.Error("Shutdown completed with error", zap.Error(err))
					} else {
						s.logger.Info("Service has been shut down gracefully.")
					}
					return

				case <-changed:
					// The old server releases its ports and flushes its notes before the new one starts
					// 旧服务释放端口并保存笔记后再启动新服务
					s.sc.SendCloseSignal(nil)
					if err := s.sc.WaitClosed(); err != nil {
						s.logger.Error("Shutdown before reload completed with error", zap.Error(err))
					}
					next, err := NewServer(runEnv)
					if err != nil {
						bootstrapLogger.Error("note service restart failed", zap.String(pkglogger.FieldConfig, configPath), zap.Error(err))
						return
					}
					s = next

				case <-s.sc.Closed():
					// A listener failed
					// 监听失败
					if err := s.sc.WaitClosed(); err != nil {
						s.logger.Error("Service stopped", zap.Error(err))
					}
					return
				}
			}
		},
	}

	rootCmd.AddCommand(runCommand)
	fs := runCommand.Flags()
	fs.StringVarP(&runEnv.port, "port", "p", "", "run port")
	fs.StringVarP(&runEnv.runMode, "mode", "m", "", "run mode")
}
