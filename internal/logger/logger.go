package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 日志输出格式
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// NewLogger 创建 JSON 格式的日志记录器，输出到 stderr
func NewLogger(debug bool) *zap.Logger {
	return New(debug, FormatJSON)
}

// New 按格式创建日志记录器。命令行交互时使用 console，服务模式使用 json。
func New(debug bool, format string) *zap.Logger {
	config := zap.NewProductionConfig()

	if debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	if format == FormatConsole {
		config.Encoding = FormatConsole
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		config.EncoderConfig.EncodeCaller = nil
	}

	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	config.DisableStacktrace = true
	config.Sampling = nil

	logger, err := config.Build()
	if err != nil {
		panic("初始化日志系统失败: " + err.Error())
	}

	return logger
}
