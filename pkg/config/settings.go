package config

import "time"

// Settings actorkit宿主配置，由 actor.System 在启动时读取
type Settings struct {
	Actor struct {
		// MailboxSize 每个Actor邮箱的缓冲长度
		MailboxSize int `yaml:"mailbox_size" json:"mailbox_size" ini:"mailbox_size" env:"ACTORKIT_MAILBOX_SIZE"`
		// ShutdownTimeoutSec 系统优雅退出的等待秒数
		ShutdownTimeoutSec int `yaml:"shutdown_timeout_sec" json:"shutdown_timeout_sec" ini:"shutdown_timeout_sec" env:"ACTORKIT_SHUTDOWN_TIMEOUT_SEC"`
		// FSMDebugEvents 为声明了 LoggingFSM 能力的状态机开启事件级调试日志
		FSMDebugEvents bool `yaml:"fsm_debug_events" json:"fsm_debug_events" ini:"fsm_debug_events" env:"ACTORKIT_FSM_DEBUG"`
	} `yaml:"actor" json:"actor" ini:"actor"`
	Logger struct {
		Level  string `yaml:"level" json:"level" ini:"level" env:"ACTORKIT_LOG_LEVEL"`
		Path   string `yaml:"path" json:"path" ini:"path" env:"ACTORKIT_LOG_PATH"`
		Rotate bool   `yaml:"rotate" json:"rotate" ini:"rotate"`
	} `yaml:"logger" json:"logger" ini:"logger"`
}

// DefaultSettings 返回各字段的内置默认值
func DefaultSettings() *Settings {
	s := &Settings{}
	s.Actor.MailboxSize = 128
	s.Actor.ShutdownTimeoutSec = 30
	s.Logger.Level = "info"
	return s
}

// ShutdownTimeout 以 time.Duration 返回优雅退出等待时间
func (s *Settings) ShutdownTimeout() time.Duration {
	if s.Actor.ShutdownTimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.Actor.ShutdownTimeoutSec) * time.Second
}

// LoadSettings 从指定路径加载宿主配置，未配置的字段保留默认值
// 返回的管理器可用于监听热更新，不需要时调用 Close
func LoadSettings(path string, options ...Option) (*Settings, *ConfigManager, error) {
	s := DefaultSettings()
	cm := NewConfigManager(s, append([]Option{WithAppName("actorkit")}, options...)...)
	if err := cm.LoadConfig(path); err != nil {
		return nil, nil, err
	}
	return s, cm, nil
}
