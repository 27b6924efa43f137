// Package logger builds the zap logger used by every layer
// Package logger 构建各层共用的 zap 日志器
package logger

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config logger configuration
// Config 日志配置
type Config struct {
	// Level see zapcore.ParseLevel
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string
	// File log file path, empty means stderr only
	// File 日志文件路径，为空时只输出到 stderr
	File string
	// Production enables JSON output
	// Production 是否启用 JSON 输出
	Production bool
}

// NewLogger creates a logger that writes to stderr and, when configured, to a file
// NewLogger 创建日志器，输出到 stderr，配置了文件时同时写入文件
func NewLogger(c Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if c.Level != "" {
		l, err := zapcore.ParseLevel(c.Level)
		if err != nil {
			return nil, errors.Wrap(err, "parse log level failed")
		}
		level = l
	}

	var encoderConfig zapcore.EncoderConfig
	if c.Production {
		encoderConfig = zap.NewProductionEncoderConfig()
	} else {
		encoderConfig = zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	newEncoder := func() zapcore.Encoder {
		if c.Production {
			return zapcore.NewJSONEncoder(encoderConfig)
		}
		return zapcore.NewConsoleEncoder(encoderConfig)
	}

	cores := []zapcore.Core{
		zapcore.NewCore(newEncoder(), zapcore.Lock(os.Stderr), level),
	}

	if c.File != "" {
		if err := os.MkdirAll(filepath.Dir(c.File), 0754); err != nil {
			return nil, errors.Wrap(err, "create log directory failed")
		}
		f, err := os.OpenFile(c.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, errors.Wrap(err, "open log file failed")
		}
		// 文件中不使用颜色
		fileConfig := encoderConfig
		fileConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileConfig), zapcore.AddSync(f), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}
