package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configDefault string

// runFlags 全局命令行参数
type runFlags struct {
	dir     string // Project root directory // 项目根目录
	port    string // Startup port // 启动端口
	runMode string // Startup mode // 启动模式
	config  string // Specified configuration file path // 指定要使用的配置文件路径
}

var runEnv = new(runFlags)

var rootCmd = &cobra.Command{
	Use:   "watermelon-notes",
	Short: "Watermelon Notes",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if len(runEnv.dir) > 0 {
			if err := os.Chdir(runEnv.dir); err != nil {
				return fmt.Errorf("failed to change the current working directory: %w", err)
			}
			bootstrapLogger.Info("working directory changed", zap.String("dir", runEnv.dir))
		}
		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
	SilenceUsage: true,
}

func init() {
	fs := rootCmd.PersistentFlags()
	fs.StringVarP(&runEnv.dir, "dir", "d", "", "run dir")
	fs.StringVarP(&runEnv.config, "config", "c", "", "config file")
}

func Execute(c string) {
	configDefault = c
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
