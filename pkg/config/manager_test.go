package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

type testConfig struct {
	Server struct {
		Port    int    `yaml:"port" json:"port" ini:"port" env:"TEST_SERVER_PORT"`
		Host    string `yaml:"host" json:"host" ini:"host"`
		Timeout int    `yaml:"timeout" json:"timeout" ini:"timeout"`
	} `yaml:"server" json:"server" ini:"server"`
	Logger struct {
		Level  string `yaml:"level" json:"level" ini:"level"`
		Rotate bool   `yaml:"rotate" json:"rotate" ini:"rotate"`
	} `yaml:"logger" json:"logger" ini:"logger"`
}

func writeTempConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}

// 场景1：基础使用（YAML格式）
func TestScenario1_BasicYAML(t *testing.T) {
	path := writeTempConfig(t, "test.yml", `
server:
  port: 8080
  host: 127.0.0.1
  timeout: 30
logger:
  level: debug
  rotate: true
`)

	cfg := &testConfig{}
	cm := NewConfigManager(cfg, WithAppName("test"))
	if err := cm.LoadConfig(path); err != nil {
		t.Fatalf("加载YAML配置失败: %v", err)
	}
	defer cm.Close()

	if cfg.Server.Port != 8080 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("服务配置解析错误: %+v", cfg.Server)
	}
	if cfg.Logger.Level != "debug" || !cfg.Logger.Rotate {
		t.Errorf("日志配置解析错误: %+v", cfg.Logger)
	}
}

// 场景2：JSON格式（按后缀自动选择序列化器）
func TestScenario2_JSON(t *testing.T) {
	path := writeTempConfig(t, "test.json", `{"server":{"port":9090,"host":"0.0.0.0"}}`)

	cfg := &testConfig{}
	cm := NewConfigManager(cfg)
	if err := cm.LoadConfig(path); err != nil {
		t.Fatalf("加载JSON配置失败: %v", err)
	}
	defer cm.Close()

	if cfg.Server.Port != 9090 {
		t.Errorf("期望端口9090，实际 %d", cfg.Server.Port)
	}
}

// 场景3：INI格式
func TestScenario3_INI(t *testing.T) {
	path := writeTempConfig(t, "test.ini", `
[server]
port = 7070
host = localhost
`)

	cfg := &testConfig{}
	cm := NewConfigManager(cfg)
	if err := cm.LoadConfig(path); err != nil {
		t.Fatalf("加载INI配置失败: %v", err)
	}
	defer cm.Close()

	if cfg.Server.Port != 7070 || cfg.Server.Host != "localhost" {
		t.Errorf("INI配置解析错误: %+v", cfg.Server)
	}
}

// 场景4：环境变量覆盖
func TestScenario4_EnvOverride(t *testing.T) {
	path := writeTempConfig(t, "test.yml", "server:\n  port: 8080\n")

	t.Setenv("TEST_SERVER_PORT", "6060")

	cfg := &testConfig{}
	cm := NewConfigManager(cfg)
	if err := cm.LoadConfig(path); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	defer cm.Close()

	if cfg.Server.Port != 6060 {
		t.Errorf("环境变量应覆盖文件值: got %d, want 6060", cfg.Server.Port)
	}
}

// 场景5：配置变更回调与自动重载
func TestScenario5_WatchReload(t *testing.T) {
	path := writeTempConfig(t, "test.yml", "server:\n  port: 8080\n")

	var changed int32
	cfg := &testConfig{}
	cm := NewConfigManager(cfg, WithConfigWatch(true, 50*time.Millisecond))
	cm.OnChange(func(old, new interface{}) {
		atomic.AddInt32(&changed, 1)
	})
	if err := cm.LoadConfig(path); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	defer cm.Close()

	if err := os.WriteFile(path, []byte("server:\n  port: 8081\n"), 0644); err != nil {
		t.Fatalf("修改配置文件失败: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&changed) == 0 && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	if atomic.LoadInt32(&changed) == 0 {
		t.Fatal("文件修改后应触发变更回调")
	}
}

// 场景6：保存配置
func TestScenario6_SaveConfig(t *testing.T) {
	path := writeTempConfig(t, "test.yml", "server:\n  port: 8080\n")

	cfg := &testConfig{}
	cm := NewConfigManager(cfg)
	if err := cm.LoadConfig(path); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	defer cm.Close()

	cfg.Server.Port = 8888
	if err := cm.SaveConfig(); err != nil {
		t.Fatalf("保存配置失败: %v", err)
	}

	data, _ := os.ReadFile(path)
	if len(data) == 0 {
		t.Fatal("保存后的配置文件不应为空")
	}
}

// 场景7：手动重载
func TestScenario7_ManualReload(t *testing.T) {
	path := writeTempConfig(t, "test.yml", "server:\n  port: 8080\n")

	cfg := &testConfig{}
	cm := NewConfigManager(cfg)
	if err := cm.LoadConfig(path); err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	defer cm.Close()

	if err := os.WriteFile(path, []byte("server:\n  port: 9999\n"), 0644); err != nil {
		t.Fatalf("修改配置文件失败: %v", err)
	}
	if err := cm.ReloadConfig(); err != nil {
		t.Fatalf("手动重载失败: %v", err)
	}

	reloaded, err := cm.GetConfig()
	if err != nil {
		t.Fatalf("获取配置失败: %v", err)
	}
	if reloaded.(*testConfig).Server.Port != 9999 {
		t.Errorf("重载后端口错误: got %d, want 9999", reloaded.(*testConfig).Server.Port)
	}
}

// 场景8：宿主配置默认值
func TestScenario8_SettingsDefaults(t *testing.T) {
	s := DefaultSettings()
	if s.Actor.MailboxSize != 128 {
		t.Errorf("默认邮箱长度错误: got %d, want 128", s.Actor.MailboxSize)
	}
	if s.ShutdownTimeout() != 30*time.Second {
		t.Errorf("默认退出超时错误: got %v", s.ShutdownTimeout())
	}
	if s.Actor.FSMDebugEvents {
		t.Error("FSM调试日志默认应关闭")
	}
}

// 场景9：加载宿主配置
func TestScenario9_LoadSettings(t *testing.T) {
	path := writeTempConfig(t, "actorkit.yml", `
actor:
  mailbox_size: 64
  shutdown_timeout_sec: 5
  fsm_debug_events: true
logger:
  level: debug
`)

	s, cm, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("加载宿主配置失败: %v", err)
	}
	defer cm.Close()

	if s.Actor.MailboxSize != 64 {
		t.Errorf("邮箱长度错误: got %d, want 64", s.Actor.MailboxSize)
	}
	if s.ShutdownTimeout() != 5*time.Second {
		t.Errorf("退出超时错误: got %v", s.ShutdownTimeout())
	}
	if !s.Actor.FSMDebugEvents {
		t.Error("fsm_debug_events 应为 true")
	}
}
