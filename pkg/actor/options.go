package actor

import (
	"os"

	"github.com/junbin-yang/go-actorkit/pkg/config"
	"github.com/junbin-yang/go-actorkit/pkg/logger"
)

// Option 系统配置选项
type Option func(*System)

// WithSettings 设置宿主配置
func WithSettings(s *config.Settings) Option {
	return func(sys *System) {
		if s != nil {
			sys.settings = s
		}
	}
}

// WithLogger 设置日志实例
func WithLogger(l logger.Logger) Option {
	return func(sys *System) {
		if l != nil {
			sys.log = l
		}
	}
}

// WithSignals 设置 Run 监听的退出信号
func WithSignals(signals ...os.Signal) Option {
	return func(sys *System) {
		sys.signals = signals
	}
}

// spawnConfig 单个Actor的创建参数
type spawnConfig struct {
	mailboxSize int
}

// SpawnOption Actor创建选项
type SpawnOption func(*spawnConfig)

// WithMailboxSize 覆盖该Actor的邮箱缓冲长度
func WithMailboxSize(size int) SpawnOption {
	return func(sc *spawnConfig) {
		sc.mailboxSize = size
	}
}
