package logger

import (
	"io"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Option zap原生选项
type Option = zap.Option

// AddCaller 在日志中记录调用位置
func AddCaller() Option {
	return zap.AddCaller()
}

// AddCallerSkip 调整调用位置的栈帧跳过层数
func AddCallerSkip(skip int) Option {
	return zap.AddCallerSkip(skip)
}

// AddStacktrace 在指定级别及以上记录堆栈
func AddStacktrace(level Level) Option {
	return zap.AddStacktrace(toZapLevel(level))
}

// RotateConfig 按大小滚动的日志文件配置
type RotateConfig struct {
	Filename   string // 日志文件路径
	MaxSize    int    // 单个文件最大尺寸（MB）
	MaxBackups int    // 保留的旧文件数量
	MaxAge     int    // 保留天数
	Compress   bool   // 是否压缩旧文件
}

// NewRotateWriter 创建按大小滚动的日志输出
func NewRotateWriter(cfg RotateConfig) io.Writer {
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}
}

// NewTimedRotateWriter 创建按时间滚动的日志输出
// pattern 为带时间占位符的文件名模板，如 "app.%Y%m%d.log"
func NewTimedRotateWriter(pattern string, maxAge, rotationTime time.Duration) (io.Writer, error) {
	return rotatelogs.New(
		pattern,
		rotatelogs.WithMaxAge(maxAge),
		rotatelogs.WithRotationTime(rotationTime),
	)
}
