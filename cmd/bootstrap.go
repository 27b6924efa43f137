package cmd

import (
	"io"
	"os"

	internalApp "github.com/haierkeys/watermelon-notes/internal/app"
	pkglogger "github.com/haierkeys/watermelon-notes/pkg/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// debugEnv raises the startup logger to debug when set
// debugEnv 设置后启动日志输出 debug 级别
const debugEnv = "WATERMELON_DEBUG"

// bootstrapLogger logs config resolution and restarts before the configured logger exists
// bootstrapLogger 在配置的日志器创建之前记录配置查找与重启
var bootstrapLogger = newBootstrapLogger(os.Stderr, os.Getenv(debugEnv) != "")

func newBootstrapLogger(w io.Writer, debug bool) *zap.Logger {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	ec.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core).Named("bootstrap").With(zap.String(pkglogger.FieldApp, internalApp.Name))
}
